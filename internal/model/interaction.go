package model

import (
	"time"

	"gorm.io/datatypes"
)

// Interaction is the append-only log of everything a student attempts. All
// mastery aggregates are derivable from this table alone.
type Interaction struct {
	ID              uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID       string                      `gorm:"index:idx_interactions_student_topic;type:varchar(36)" json:"studentId"`
	ContentID       string                      `gorm:"size:128" json:"contentId"`
	Topic           string                      `gorm:"index:idx_interactions_student_topic;size:64" json:"topic"`
	Subtopic        string                      `gorm:"size:64" json:"subtopic"`
	Success         bool                        `json:"success"`
	TimeTaken       int                         `gorm:"default:0" json:"timeTaken"` // minutes
	ErrorType       string                      `gorm:"size:64" json:"errorType,omitempty"`
	DifficultyLevel *float64                    `json:"difficultyLevel,omitempty"`
	MethodTags      datatypes.JSONSlice[string] `json:"methodTags"`
	QuestionText    string                      `gorm:"type:text" json:"questionText,omitempty"`
	UserAnswer      string                      `gorm:"type:text" json:"userAnswer,omitempty"`
	Timestamp       time.Time                   `gorm:"index;autoCreateTime" json:"timestamp"`
}

func (Interaction) TableName() string {
	return "interactions"
}
