package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ContentChunk is one retrievable unit of curriculum material together with
// the tags the classifier assigned to it. It round-trips to the flat metadata
// map stored alongside its vector.
type ContentChunk struct {
	ID   string
	Text string

	Subject       string
	Topic         string
	Subtopic      string
	SubMethod     string
	ContentType   ContentType
	Complexity    Complexity
	LearningStage LearningStage
	Level         Level
	Board         Board
	Grade         int
	Language      Language

	DifficultyScore    float64
	EstimatedTimeMin   int
	AdaptationWeight   float64
	AverageSuccessRate float64
	CommonErrors       []string

	MethodTags           []string
	ExcludedMethods      []string
	PrerequisiteConcepts []string
	LearningObjectives   []string
	SolutionApproach     string
	HasWorkedSolution    bool
	HasHints             bool
	MediaType            string
}

// Metadata flattens the chunk for the vector index. Tag lists stay lists so
// $in and $nin filters match individual elements.
func (c *ContentChunk) Metadata() map[string]interface{} {
	m := map[string]interface{}{
		"text":                 c.Text,
		"subject":              c.Subject,
		"topic":                c.Topic,
		"subtopic":             c.Subtopic,
		"content_type":         string(c.ContentType),
		"complexity":           string(c.Complexity),
		"learning_stage":       string(c.LearningStage),
		"level":                string(c.Level),
		"board":                string(c.Board),
		"grade":                strconv.Itoa(c.Grade),
		"language":             string(c.Language),
		"difficulty_score":     c.DifficultyScore,
		"estimated_time_min":   c.EstimatedTimeMin,
		"adaptation_weight":    c.AdaptationWeight,
		"average_success_rate": c.AverageSuccessRate,
		"has_worked_solution":  c.HasWorkedSolution,
		"has_hints":            c.HasHints,
	}
	if c.SubMethod != "" {
		m["sub_method"] = c.SubMethod
	}
	if c.SolutionApproach != "" {
		m["solution_approach"] = c.SolutionApproach
	}
	if c.MediaType != "" {
		m["media_type"] = c.MediaType
	}
	if len(c.MethodTags) > 0 {
		m["method_tags"] = c.MethodTags
	}
	if len(c.ExcludedMethods) > 0 {
		m["excluded_methods"] = c.ExcludedMethods
	}
	if len(c.PrerequisiteConcepts) > 0 {
		m["prerequisite_concepts"] = c.PrerequisiteConcepts
	}
	if len(c.LearningObjectives) > 0 {
		m["learning_objectives"] = c.LearningObjectives
	}
	if len(c.CommonErrors) > 0 {
		m["common_errors"] = c.CommonErrors
	}
	return m
}

// ChunkFromMetadata rebuilds a chunk from index metadata. Missing or
// malformed fields fall back to zero values rather than failing the query.
func ChunkFromMetadata(id string, meta map[string]interface{}) *ContentChunk {
	c := &ContentChunk{ID: id}
	c.Text = metaString(meta, "text")
	c.Subject = metaString(meta, "subject")
	c.Topic = metaString(meta, "topic")
	c.Subtopic = metaString(meta, "subtopic")
	c.SubMethod = metaString(meta, "sub_method")
	c.ContentType = ContentType(metaString(meta, "content_type"))
	c.Complexity = Complexity(metaString(meta, "complexity"))
	c.LearningStage = LearningStage(metaString(meta, "learning_stage"))
	c.Level = Level(metaString(meta, "level"))
	c.Board = Board(metaString(meta, "board"))
	c.Language = Language(metaString(meta, "language"))
	c.SolutionApproach = metaString(meta, "solution_approach")
	c.MediaType = metaString(meta, "media_type")
	c.Grade, _ = strconv.Atoi(metaString(meta, "grade"))
	c.DifficultyScore = metaFloat(meta, "difficulty_score")
	c.EstimatedTimeMin = int(metaFloat(meta, "estimated_time_min"))
	c.AdaptationWeight = metaFloat(meta, "adaptation_weight")
	c.AverageSuccessRate = metaFloat(meta, "average_success_rate")
	c.CommonErrors = metaStrings(meta, "common_errors")
	c.HasWorkedSolution = metaBool(meta, "has_worked_solution")
	c.HasHints = metaBool(meta, "has_hints")
	c.MethodTags = metaStrings(meta, "method_tags")
	c.ExcludedMethods = metaStrings(meta, "excluded_methods")
	c.PrerequisiteConcepts = metaStrings(meta, "prerequisite_concepts")
	c.LearningObjectives = metaStrings(meta, "learning_objectives")
	return c
}

func metaString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		switch t := v.(type) {
		case string:
			return t
		default:
			return fmt.Sprintf("%v", t)
		}
	}
	return ""
}

func metaStrings(m map[string]interface{}, key string) []string {
	switch t := m[key].(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return strings.Split(t, ",")
	}
	return nil
}

func metaFloat(m map[string]interface{}, key string) float64 {
	switch t := m[key].(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func metaBool(m map[string]interface{}, key string) bool {
	switch t := m[key].(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}
