package model

import "time"

// ErrorPattern counts how often a student makes one kind of mistake in a
// topic. Rows only exist for failed interactions that carried an error type.
type ErrorPattern struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID      string    `gorm:"uniqueIndex:uniq_error_pattern;type:varchar(36)" json:"studentId"`
	Topic          string    `gorm:"uniqueIndex:uniq_error_pattern;size:64" json:"topic"`
	ErrorType      string    `gorm:"uniqueIndex:uniq_error_pattern;size:64" json:"errorType"`
	Frequency      int       `gorm:"default:1" json:"frequency"`
	LastOccurrence time.Time `json:"lastOccurrence"`
}

func (ErrorPattern) TableName() string {
	return "error_patterns"
}
