// Package curriculum holds the static topic catalog: which topics exist,
// which vector namespace serves each one, the subtopic progressions and the
// grade bands per board.
package curriculum

import "github.com/malharwork/agneez-poc/internal/model"

// Subtopic is one teachable unit inside a topic.
type Subtopic struct {
	Key        string
	Name       string
	SubMethods []string
}

// Topic binds a subject area to its vector index and namespace.
type Topic struct {
	Key       string
	Name      string
	Subject   string
	Index     string
	Namespace string
	Subtopics []Subtopic
}

var topics = []Topic{
	{
		Key:       "quadratic_equations",
		Name:      "Quadratic Equations",
		Subject:   "mathematics",
		Index:     "math_index",
		Namespace: "algebra_quadratic_equations",
		Subtopics: []Subtopic{
			{Key: "patterns_introduction", Name: "Patterns and Square Numbers", SubMethods: []string{"visual_patterns", "number_sequences"}},
			{Key: "factorization_method", Name: "Solving by Factorization", SubMethods: []string{"simple_factoring", "splitting_middle_term", "grouping"}},
			{Key: "completing_square", Name: "Completing the Square", SubMethods: []string{"geometric_interpretation", "algebraic_method"}},
			{Key: "formula_method", Name: "Quadratic Formula", SubMethods: []string{"derivation", "application", "discriminant_analysis"}},
			{Key: "applications", Name: "Real-world Applications", SubMethods: []string{"physics_problems", "optimization", "geometry"}},
		},
	},
	{
		Key:       "digestive_system",
		Name:      "Digestive System",
		Subject:   "science",
		Index:     "science_index",
		Namespace: "biology_digestive_system",
		Subtopics: []Subtopic{
			{Key: "anatomy_structure", Name: "Anatomical Structure", SubMethods: []string{"organs", "tissues", "cellular_structure"}},
			{Key: "digestion_process", Name: "Process of Digestion", SubMethods: []string{"mechanical_digestion", "chemical_digestion", "peristalsis"}},
			{Key: "enzymes_secretions", Name: "Enzymes and Secretions", SubMethods: []string{"digestive_enzymes", "hormonal_control", "pH_regulation"}},
			{Key: "absorption_transport", Name: "Absorption and Transport", SubMethods: []string{"villi_function", "nutrient_transport", "water_absorption"}},
			{Key: "disorders_health", Name: "Disorders and Health", SubMethods: []string{"common_disorders", "prevention", "dietary_management"}},
		},
	},
}

// Topics returns the full catalog.
func Topics() []Topic {
	return topics
}

// TopicByKey looks a topic up by its key.
func TopicByKey(key string) (Topic, bool) {
	for _, t := range topics {
		if t.Key == key {
			return t, true
		}
	}
	return Topic{}, false
}

// SubtopicKeys returns the subtopic keys of a topic in progression order.
func (t Topic) SubtopicKeys() []string {
	keys := make([]string, len(t.Subtopics))
	for i, s := range t.Subtopics {
		keys[i] = s.Key
	}
	return keys
}

// HasSubtopic reports whether key names a subtopic of the topic.
func (t Topic) HasSubtopic(key string) bool {
	for _, s := range t.Subtopics {
		if s.Key == key {
			return true
		}
	}
	return false
}

// Levels in increasing academic order.
func Levels() []model.Level {
	return []model.Level{model.Elementary, model.MiddleSchool, model.HighSchool}
}

// Boards returns all supported examination boards.
func Boards() []model.Board {
	return []model.Board{model.CBSE, model.ICSE, model.SSC}
}

// GradeMapping returns the grades each board serves at a level. The bands
// are currently identical across boards but are kept per-board since SSC
// is expected to diverge.
func GradeMapping(level model.Level, board model.Board) []int {
	switch level {
	case model.Elementary:
		return []int{3, 4, 5}
	case model.MiddleSchool:
		return []int{6, 7, 8}
	case model.HighSchool:
		return []int{9, 10, 11, 12}
	}
	return nil
}

// DefaultGrade picks the middle grade of a level's band, used when a request
// names a level but no grade.
func DefaultGrade(level model.Level, board model.Board) int {
	grades := GradeMapping(level, board)
	if len(grades) == 0 {
		return 0
	}
	return grades[len(grades)/2]
}

// LevelForGrade maps a grade back to its academic band.
func LevelForGrade(grade int) model.Level {
	switch {
	case grade <= 5:
		return model.Elementary
	case grade <= 8:
		return model.MiddleSchool
	default:
		return model.HighSchool
	}
}
