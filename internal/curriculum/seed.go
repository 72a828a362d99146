package curriculum

import "github.com/malharwork/agneez-poc/internal/model"

// SeedSection is one block of built-in curriculum text. The seed set keeps
// the knowledge base usable before any curriculum bucket is wired up.
type SeedSection struct {
	Title   string
	Content string
}

// SeedDocument is the seed material for one (topic, level) pair, shared
// across boards.
type SeedDocument struct {
	Sections           []SeedSection
	Prerequisites      []string
	LearningObjectives []string
}

var seedDocs = map[string]map[model.Level]SeedDocument{
	"quadratic_equations": {
		model.Elementary: {
			Prerequisites:      []string{"multiplication", "counting"},
			LearningObjectives: []string{"recognize square numbers", "extend visual patterns"},
			Sections: []SeedSection{
				{
					Title:   "Introduction to Patterns",
					Content: "What is a square number? A square number is what you get when you multiply a number by itself. Activity: arrange dots into equal rows and columns to make a square shape. Count 1, 4, 9, 16 and notice the pattern.",
				},
				{
					Title:   "Number Sequences Practice",
					Content: "Problem: continue the sequence 1, 4, 9, 16, 25. Look at the differences between terms in the series. Hint: each difference grows by two.",
				},
				{
					Title:   "Square Numbers Around Us",
					Content: "Example: a chessboard has 8 rows and 8 columns, so it has 64 squares. Tiles on a floor often arrange into square patterns you can count.",
				},
			},
		},
		model.MiddleSchool: {
			Prerequisites:      []string{"basic_algebra", "integer_operations"},
			LearningObjectives: []string{"factor simple quadratics", "connect patterns to algebra"},
			Sections: []SeedSection{
				{
					Title:   "From Patterns to Equations",
					Content: "What is a quadratic expression? An expression like x² + 5x + 6 where the highest power of x is two. Square number patterns from earlier grades are the simplest quadratic patterns.",
				},
				{
					Title:   "Solving by Factorization",
					Content: "Example: solve x² + 5x + 6 = 0 by factorization. Split the middle term: x² + 2x + 3x + 6 = 0, then factor by grouping to get (x + 2)(x + 3) = 0. Solution: x = -2 or x = -3.",
				},
				{
					Title:   "Factoring Practice",
					Content: "Problem: factor x² + 7x + 12 using simple factoring of a quadratic. Exercise: find two numbers whose product is 12 and whose sum is 7. Hint: list the factor pairs of 12 first.",
				},
				{
					Title:   "वर्ग समीकरणांची ओळख",
					Content: "वर्ग संख्या आणि अवयव पाडून वर्ग समीकरण सोडवण्याची ओळख. x² + 5x + 6 = 0 या समीकरणाचे अवयव (x+2)(x+3) असे पडतात.",
				},
			},
		},
		model.HighSchool: {
			Prerequisites:      []string{"algebraic_manipulation", "square_roots"},
			LearningObjectives: []string{"apply the quadratic formula", "analyse the discriminant", "model word problems"},
			Sections: []SeedSection{
				{
					Title:   "Completing the Square",
					Content: "Example: solve a quadratic by completing the square. Rewrite x² + 6x + 5 = 0 as (x + 3)² = 4 using the algebraic method, then take square roots. The geometric interpretation shows the square being completed with unit tiles.",
				},
				{
					Title:   "The Quadratic Formula",
					Content: "Theorem: the roots of ax² + bx + c = 0 are x = (-b ± √(b² - 4ac)) / 2a. Proof: derive the quadratic formula by completing the square on the general equation.",
				},
				{
					Title:   "Discriminant Analysis",
					Content: "Definition: the discriminant of a quadratic equation is b² - 4ac. It decides the nature of roots: two real roots when positive, one repeated root at zero, no real roots when negative. Apply the formula after checking the discriminant.",
				},
				{
					Title:   "Applications and Word Problems",
					Content: "Problem: a ball is thrown upward and its height follows a quadratic in time. Advanced physics problems and optimization questions reduce to solving a quadratic equation. Use the quadratic formula when factorization fails.",
				},
			},
		},
	},
	"digestive_system": {
		model.Elementary: {
			Prerequisites:      []string{"body_parts"},
			LearningObjectives: []string{"name the main digestive organs", "describe the path of food"},
			Sections: []SeedSection{
				{
					Title:   "Introduction to Our Body",
					Content: "What is digestion? Digestion is how our body breaks food into tiny pieces it can use. Food travels from the mouth to the stomach and then to the intestine.",
				},
				{
					Title:   "Organs That Help Us Eat",
					Content: "The stomach churns food, and the intestine takes in the good parts. The liver helps too. Activity: draw the path food takes through the body and label each organ.",
				},
			},
		},
		model.MiddleSchool: {
			Prerequisites:      []string{"cells_introduction"},
			LearningObjectives: []string{"distinguish mechanical and chemical digestion", "explain peristalsis"},
			Sections: []SeedSection{
				{
					Title:   "Process of Digestion",
					Content: "Digestion has two parts. Mechanical digestion is the physical work: we chew food into smaller pieces. Chemical digestion is the enzyme-driven breakdown of food into nutrients.",
				},
				{
					Title:   "How Food Moves",
					Content: "Peristalsis is the wave-like movement of muscles that pushes food along the digestive tract. The muscle tissue in the wall of the gut contracts in sequence.",
				},
				{
					Title:   "अन्नपचनाची प्रक्रिया",
					Content: "पचन म्हणजे अन्नाचे लहान कणांमध्ये रूपांतर. पोट आणि आतडे हे पचनाचे मुख्य अवयव आहेत.",
				},
			},
		},
		model.HighSchool: {
			Prerequisites:      []string{"basic_chemistry", "cell_biology"},
			LearningObjectives: []string{"relate enzymes to substrates", "trace absorption through villi", "evaluate digestive disorders"},
			Sections: []SeedSection{
				{
					Title:   "Enzymes and Secretions",
					Content: "Definition: an enzyme is a protein that speeds up the chemical breakdown of food during digestion. Amylase, pepsin and lipase each act on one class of nutrient, with pH regulation and hormonal control deciding when each is secreted.",
				},
				{
					Title:   "Anatomy of Absorption",
					Content: "The structure of the small intestine maximises absorption. Each villi and its microvilli increase surface area, and the epithelium cell layer moves nutrients into the blood for transport.",
				},
				{
					Title:   "Disorders and Health",
					Content: "Problem: relate common digestive disorders to their causes. Acidity, ulcers and lactose intolerance each trace back to a specific enzyme or secretion. Prevention relies on dietary management.",
				},
			},
		},
	},
}

// SeedDocumentFor returns the built-in material for a topic at a level. The
// second return is false when the pair has no seed content.
func SeedDocumentFor(topicKey string, level model.Level) (SeedDocument, bool) {
	doc, ok := seedDocs[topicKey][level]
	return doc, ok
}
