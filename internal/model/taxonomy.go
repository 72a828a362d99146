package model

// Level is the broad academic band a piece of content is written for.
type Level string

const (
	Elementary   Level = "elementary"
	MiddleSchool Level = "middle_school"
	HighSchool   Level = "high_school"
)

// Board is the examination board a student follows.
type Board string

const (
	CBSE Board = "CBSE"
	ICSE Board = "ICSE"
	SSC  Board = "SSC"
)

type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Marathi Language = "marathi"
)

type ContentType string

const (
	WorkedExample      ContentType = "worked_example"
	PracticeProblem    ContentType = "practice_problem"
	ConceptExplanation ContentType = "concept_explanation"
	Activity           ContentType = "activity"
	Theory             ContentType = "theory"
	GeneralContent     ContentType = "general_content"
)

type Complexity string

const (
	Simple          Complexity = "simple"
	ModerateSimple  Complexity = "moderate_simple"
	ModerateComplex Complexity = "moderate_complex"
	Complex         Complexity = "complex"
)

type LearningStage string

const (
	StageIntroduction LearningStage = "introduction"
	StagePractice     LearningStage = "practice"
	StageApplication  LearningStage = "application"
	StageReview       LearningStage = "review"
	StageLearning     LearningStage = "learning"
)

func (l Level) Valid() bool {
	switch l {
	case Elementary, MiddleSchool, HighSchool:
		return true
	}
	return false
}

func (b Board) Valid() bool {
	switch b {
	case CBSE, ICSE, SSC:
		return true
	}
	return false
}
