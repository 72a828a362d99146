package model

import (
	"time"

	"gorm.io/datatypes"
)

// LearningSession is one study sitting. SessionEnd stays nil while the
// session is open; the store allows at most one open session per student
// (starting a new one closes the previous).
type LearningSession struct {
	ID                 uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID          string                      `gorm:"index;type:varchar(36)" json:"studentId"`
	SessionStart       time.Time                   `json:"sessionStart"`
	SessionEnd         *time.Time                  `json:"sessionEnd,omitempty"`
	TopicsCovered      datatypes.JSONSlice[string] `json:"topicsCovered"`
	QuestionsAttempted int                         `gorm:"default:0" json:"questionsAttempted"`
	QuestionsCorrect   int                         `gorm:"default:0" json:"questionsCorrect"`
	TotalTimeMinutes   int                         `gorm:"default:0" json:"totalTimeMinutes"`
}

func (LearningSession) TableName() string {
	return "learning_sessions"
}
