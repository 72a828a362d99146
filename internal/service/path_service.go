package service

import (
	"fmt"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
)

const (
	advanceMastery     = 0.7
	remediationMastery = 0.4
)

// PathStep is one recommended unit of work.
type PathStep struct {
	Subtopic              string   `json:"subtopic"`
	Focus                 string   `json:"focus"`
	DifficultyAdjustment  float64  `json:"difficultyAdjustment,omitempty"`
	PrerequisitesToReview []string `json:"prerequisitesToReview,omitempty"`
}

// LearningPath is the generator's full recommendation.
type LearningPath struct {
	CurrentSubtopic string      `json:"currentSubtopic"`
	CurrentGrade    int         `json:"currentGrade"`
	Board           model.Board `json:"board"`
	MasteryLevel    float64     `json:"masteryLevel"`
	Recommendation  string      `json:"recommendation"`
	NextSteps       []PathStep  `json:"nextSteps"`
	Remediation     []string    `json:"remediation,omitempty"`
}

// PathService decides the next step through a topic's progression from the
// current subtopic and mastery alone. It holds no state and touches no
// stores.
type PathService struct{}

func NewPathService() *PathService {
	return &PathService{}
}

// GeneratePath walks the topic's subtopic sequence. Below 0.7 mastery the
// student stays and practices easier material; at or above they advance, or
// get enrichment when already at the end. Below 0.4 the current subtopic's
// prerequisites come back as remediation.
func (s *PathService) GeneratePath(topicKey string, grade int, board model.Board, currentSubtopic string, mastery float64) (*LearningPath, error) {
	topic, ok := curriculum.TopicByKey(topicKey)
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topicKey)
	}

	sequence := topic.SubtopicKeys()
	currentIndex := 0
	for i, key := range sequence {
		if key == currentSubtopic {
			currentIndex = i
			break
		}
	}
	if currentSubtopic == "" {
		currentSubtopic = sequence[0]
	}

	path := &LearningPath{
		CurrentSubtopic: currentSubtopic,
		CurrentGrade:    grade,
		Board:           board,
		MasteryLevel:    mastery,
	}

	if mastery < advanceMastery {
		path.Recommendation = "Continue practicing current topic"
		path.NextSteps = []PathStep{{
			Subtopic:             currentSubtopic,
			Focus:                "practice_problems",
			DifficultyAdjustment: -0.5,
		}}
	} else if currentIndex < len(sequence)-1 {
		next := sequence[currentIndex+1]
		path.Recommendation = fmt.Sprintf("Progress to %s", next)
		path.NextSteps = []PathStep{{
			Subtopic:              next,
			Focus:                 "introduction",
			PrerequisitesToReview: curriculum.Prerequisites(topicKey, next),
		}}
	} else {
		path.Recommendation = "Explore advanced applications"
		path.NextSteps = []PathStep{{
			Subtopic:             sequence[len(sequence)-1],
			Focus:                "advanced_problems",
			DifficultyAdjustment: 0.5,
		}}
	}

	if mastery < remediationMastery {
		if prereqs := curriculum.Prerequisites(topicKey, currentSubtopic); len(prereqs) > 0 {
			path.Remediation = prereqs
		}
	}
	return path, nil
}
