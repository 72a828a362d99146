package model

import (
	"time"
)

// Student is one anonymous learner. The ID is server-issued and carried
// client-side inside the student token.
type Student struct {
	StudentID        string    `gorm:"primaryKey;type:varchar(36)" json:"studentId"`
	Grade            int       `json:"grade"`
	Board            Board     `gorm:"size:10" json:"board"`
	Language         Language  `gorm:"size:20;default:'english'" json:"language"`
	CreatedAt        time.Time `json:"createdAt"`
	LastActive       time.Time `json:"lastActive"`
	TotalQuestions   int       `gorm:"default:0" json:"totalQuestions"`
	TotalCorrect     int       `gorm:"default:0" json:"totalCorrect"`
	TotalTimeMinutes int       `gorm:"default:0" json:"totalTimeMinutes"`
}

func (Student) TableName() string {
	return "students"
}
