package curriculum

import (
	"fmt"
	"strings"
)

// prerequisites names the concepts a learner should hold before starting a
// subtopic. Entries outside the subtopic list (basic_algebra, square_roots,
// basic_chemistry, ...) are foundational concepts from earlier grades.
var prerequisites = map[string]map[string][]string{
	"quadratic_equations": {
		"patterns_introduction": {},
		"factorization_method":  {"patterns_introduction", "basic_algebra"},
		"completing_square":     {"factorization_method", "algebraic_manipulation"},
		"formula_method":        {"completing_square", "square_roots"},
		"applications":          {"formula_method", "word_problems"},
	},
	"digestive_system": {
		"anatomy_structure":    {},
		"digestion_process":    {"anatomy_structure"},
		"enzymes_secretions":   {"digestion_process", "basic_chemistry"},
		"absorption_transport": {"anatomy_structure", "cell_biology"},
		"disorders_health":     {"digestion_process", "absorption_transport"},
	},
}

// Prerequisites returns the prerequisite concepts for a subtopic, nil when
// the subtopic has none or is unknown.
func Prerequisites(topic, subtopic string) []string {
	return prerequisites[topic][subtopic]
}

var commonErrors = map[string]map[string][]string{
	"quadratic_equations": {
		"factorization_method": {"sign_mistakes", "calculation_errors", "wrong_factors"},
		"formula_method":       {"calculation_errors", "discriminant_mistakes", "formula_memorization"},
		"default":              {"algebraic_manipulation", "arithmetic_errors"},
	},
	"digestive_system": {
		"anatomy_structure": {"organ_sequence_errors", "location_confusion"},
		"digestion_process": {"process_order_errors", "enzyme_function_confusion"},
		"default":           {"terminology_confusion", "process_understanding"},
	},
}

// CommonErrors returns the typical mistakes seen in a subtopic, falling back
// to the topic default.
func CommonErrors(topic, subtopic string) []string {
	byTopic, ok := commonErrors[topic]
	if !ok {
		return nil
	}
	if errs, ok := byTopic[subtopic]; ok {
		return errs
	}
	return byTopic["default"]
}

var suggestionTemplates = map[string]map[string][]string{
	"quadratic_equations": {
		"general": {
			"What are the methods to solve quadratic equations in grade %d?",
			"Show me %s board examples of quadratic equations",
			"How do I identify which method to use?",
		},
		"factorization_method": {
			"How do I factor x² + 5x + 6?",
			"What is splitting the middle term?",
			"When can I use simple factoring?",
		},
		"formula_method": {
			"What is the quadratic formula?",
			"How do I use the discriminant?",
			"Show me step-by-step formula application",
		},
	},
	"digestive_system": {
		"general": {
			"What parts of digestive system do we study in grade %d?",
			"Explain digestion process for %s board",
			"What are the main digestive organs?",
		},
		"anatomy_structure": {
			"What are the organs in order?",
			"Describe the structure of stomach",
			"What is the function of each organ?",
		},
		"digestion_process": {
			"How does mechanical digestion work?",
			"What is chemical digestion?",
			"Explain the complete digestion process",
		},
	},
}

// Suggestions returns follow-up questions to offer when retrieval comes back
// empty, preferring subtopic-specific prompts over the topic's general ones.
func Suggestions(topic, subtopic string, grade int, board string) []string {
	byTopic, ok := suggestionTemplates[topic]
	if !ok {
		return nil
	}
	templates, ok := byTopic[subtopic]
	if !ok {
		templates = byTopic["general"]
	}

	out := make([]string, 0, len(templates))
	for _, t := range templates {
		switch {
		case strings.Contains(t, "%d"):
			out = append(out, fmt.Sprintf(t, grade))
		case strings.Contains(t, "%s"):
			out = append(out, fmt.Sprintf(t, board))
		default:
			out = append(out, t)
		}
	}
	return out
}
