// Package classifier assigns curriculum tags to raw content sections. All
// functions are pure keyword rules over the section text, so tagging is
// deterministic and cheap enough to run at bootstrap for every section.
package classifier

import (
	"strings"

	"github.com/malharwork/agneez-poc/internal/model"
)

// Section is one titled block of curriculum material awaiting tags.
type Section struct {
	Title   string
	Content string
}

// Tags is the full classification result for one section.
type Tags struct {
	Subtopic      string
	SubMethod     string
	ContentType   model.ContentType
	Complexity    model.Complexity
	LearningStage model.LearningStage
	Language      model.Language

	MethodTags      []string
	ExcludedMethods []string

	SolutionApproach  string
	HasWorkedSolution bool
	HasHints          bool
	MediaType         string

	DifficultyScore  float64
	EstimatedTimeMin int
}

// Classify tags a section for one (level, board, grade) placement. The
// allowed set restricts subtopic matches to the topic's own subtopics.
func Classify(sec Section, allowed map[string]bool, level model.Level, board model.Board, grade int, gradeRange []int) Tags {
	title := strings.ToLower(sec.Title)
	content := strings.ToLower(sec.Content)

	t := Tags{
		Subtopic:  "general",
		SubMethod: "general",
		Language:  model.English,
	}

	t.Subtopic, t.SubMethod = categorize(title, content, allowed)
	t.ContentType = contentType(content)
	t.Complexity = complexity(content, level)
	t.LearningStage = learningStage(title, t.ContentType)
	t.MethodTags, t.ExcludedMethods = methodInfo(content, level, board)

	if strings.Contains(t.Subtopic, "method") {
		t.SolutionApproach = t.Subtopic
	} else {
		t.SolutionApproach = "conceptual"
	}

	t.HasWorkedSolution = strings.Contains(content, "solution") || strings.Contains(content, "example")
	t.HasHints = strings.Contains(content, "hint") || strings.Contains(content, "tip")
	t.MediaType = mediaType(sec.Content)

	if board == model.SSC && containsAny(sec.Content, marathiMarkers) {
		t.Language = model.Marathi
	}

	t.DifficultyScore = difficulty(level, grade, gradeRange)
	t.EstimatedTimeMin = estimateTime(string(t.ContentType), string(t.Complexity))
	return t
}

func categorize(title, content string, allowed map[string]bool) (string, string) {
	for _, rule := range subtopicRules {
		if allowed != nil && !allowed[rule.subtopic] {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(title, kw) || strings.Contains(content, kw) {
				for _, sm := range rule.subMethods {
					if containsAny(content, sm.keywords) {
						return rule.subtopic, sm.method
					}
				}
				return rule.subtopic, "general"
			}
		}
	}
	return "general", "general"
}

func contentType(content string) model.ContentType {
	for _, ct := range contentTypeMarkers {
		if containsAny(content, ct.markers) {
			return model.ContentType(ct.contentType)
		}
	}
	return model.GeneralContent
}

func complexity(content string, level model.Level) model.Complexity {
	switch level {
	case model.Elementary:
		return model.Simple
	case model.MiddleSchool:
		if containsAny(content, []string{"advanced", "complex", "difficult"}) {
			return model.ModerateComplex
		}
		return model.ModerateSimple
	default:
		if containsAny(content, []string{"proof", "derive", "advanced"}) {
			return model.Complex
		}
		return model.ModerateComplex
	}
}

func learningStage(title string, ct model.ContentType) model.LearningStage {
	switch {
	case strings.Contains(title, "introduction") || strings.Contains(title, "what is"):
		return model.StageIntroduction
	case strings.Contains(title, "practice") || ct == model.PracticeProblem:
		return model.StagePractice
	case strings.Contains(title, "advanced") || strings.Contains(title, "application"):
		return model.StageApplication
	case strings.Contains(title, "review") || strings.Contains(title, "summary"):
		return model.StageReview
	default:
		return model.StageLearning
	}
}

// methodInfo tags solving methods present in the content and records the
// ones that must be hidden from the student's grade band. The quadratic
// formula is high-school material, so younger bands get it excluded even
// when the text mentions it.
func methodInfo(content string, level model.Level, board model.Board) (tags, excluded []string) {
	if strings.Contains(content, "quadratic") {
		if strings.Contains(content, "factor") {
			tags = append(tags, "factorization")
		}
		if strings.Contains(content, "formula") {
			if level == model.HighSchool {
				tags = append(tags, "quadratic_formula")
			} else {
				excluded = append(excluded, "quadratic_formula")
			}
		}
		if strings.Contains(content, "complet") && strings.Contains(content, "square") {
			tags = append(tags, "completing_square")
		}
		if board == model.SSC && level == model.MiddleSchool {
			excluded = append(excluded, "complex_numbers", "advanced_factoring")
		}
	}

	if strings.Contains(content, "digest") {
		if strings.Contains(content, "enzyme") {
			tags = append(tags, "enzymatic_process")
		}
		if strings.Contains(content, "mechanical") {
			tags = append(tags, "mechanical_process")
		}
		if strings.Contains(content, "absorb") || strings.Contains(content, "absorption") {
			tags = append(tags, "absorption")
		}
	}
	return tags, excluded
}

func mediaType(content string) string {
	for _, r := range content {
		switch r {
		case '²', '×', '÷', '+', '-', '=':
			return "text_with_equations"
		}
	}
	return "text_only"
}

// difficulty maps a grade placement onto a 1-5 score: the level sets the
// base and each step up within the band adds 0.3.
func difficulty(level model.Level, grade int, gradeRange []int) float64 {
	base := map[model.Level]float64{
		model.Elementary:   1,
		model.MiddleSchool: 2,
		model.HighSchool:   3,
	}[level]

	position := 0
	for i, g := range gradeRange {
		if g == grade {
			position = i
			break
		}
	}

	score := base + float64(position)*0.3
	if score > 5 {
		score = 5
	}
	return score
}

func estimateTime(contentType, complexity string) int {
	if byComplexity, ok := timeMatrix[contentType]; ok {
		if minutes, ok := byComplexity[complexity]; ok {
			return minutes
		}
	}
	return defaultTimeMinutes
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
