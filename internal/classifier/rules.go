package classifier

// subtopicRule matches a section to a subtopic by keyword, then narrows to a
// sub-method. Rules are checked in order and the first keyword hit wins, so
// the table order is part of the contract.
type subtopicRule struct {
	subtopic   string
	keywords   []string
	subMethods []subMethodRule
}

type subMethodRule struct {
	method   string
	keywords []string
}

// Marathi keywords let SSC sections written in Marathi land in the right
// subtopic without transliteration.
var subtopicRules = []subtopicRule{
	{
		subtopic: "patterns_introduction",
		keywords: []string{"pattern", "square number", "sequence", "वर्ग संख्या"},
		subMethods: []subMethodRule{
			{method: "visual_patterns", keywords: []string{"visual", "arrange", "dots", "blocks"}},
			{method: "number_sequences", keywords: []string{"sequence", "series", "differences"}},
		},
	},
	{
		subtopic: "factorization_method",
		keywords: []string{"factor", "factorization", "अवयव"},
		subMethods: []subMethodRule{
			{method: "simple_factoring", keywords: []string{"simple", "basic factor"}},
			{method: "splitting_middle_term", keywords: []string{"split", "middle term"}},
			{method: "grouping", keywords: []string{"group", "grouping method"}},
		},
	},
	{
		subtopic: "formula_method",
		keywords: []string{"formula", "quadratic formula", "सूत्र"},
		subMethods: []subMethodRule{
			{method: "derivation", keywords: []string{"derive", "proof"}},
			{method: "application", keywords: []string{"apply", "use formula"}},
			{method: "discriminant_analysis", keywords: []string{"discriminant", "nature of roots"}},
		},
	},
	{
		subtopic: "anatomy_structure",
		keywords: []string{"structure", "organ", "anatomy", "रचना"},
		subMethods: []subMethodRule{
			{method: "organs", keywords: []string{"stomach", "intestine", "liver"}},
			{method: "tissues", keywords: []string{"tissue", "epithelium", "muscle"}},
			{method: "cellular_structure", keywords: []string{"cell", "villi", "microvilli"}},
		},
	},
	{
		subtopic: "digestion_process",
		keywords: []string{"process", "digestion", "पचन"},
		subMethods: []subMethodRule{
			{method: "mechanical_digestion", keywords: []string{"chew", "mechanical", "physical"}},
			{method: "chemical_digestion", keywords: []string{"enzyme", "chemical", "breakdown"}},
			{method: "peristalsis", keywords: []string{"peristalsis", "movement", "wave"}},
		},
	},
}

// marathiMarkers flag SSC content written in Marathi.
var marathiMarkers = []string{"वर्ग", "पचन", "अवयव"}

// contentTypeMarkers in priority order. First marker found in the text
// decides the type.
var contentTypeMarkers = []struct {
	contentType string
	markers     []string
}{
	{"worked_example", []string{"example:", "solve:"}},
	{"practice_problem", []string{"problem:", "exercise:"}},
	{"concept_explanation", []string{"definition:", "what is"}},
	{"activity", []string{"activity:", "project:"}},
	{"theory", []string{"theorem:", "proof:"}},
}

// timeMatrix estimates minutes per (content type, complexity).
var timeMatrix = map[string]map[string]int{
	"concept_explanation": {"simple": 10, "moderate_simple": 15, "moderate_complex": 20, "complex": 30},
	"worked_example":      {"simple": 15, "moderate_simple": 20, "moderate_complex": 25, "complex": 35},
	"practice_problem":    {"simple": 10, "moderate_simple": 15, "moderate_complex": 20, "complex": 25},
	"activity":            {"simple": 20, "moderate_simple": 30, "moderate_complex": 40, "complex": 50},
	"theory":              {"simple": 15, "moderate_simple": 25, "moderate_complex": 35, "complex": 45},
}

const defaultTimeMinutes = 15
