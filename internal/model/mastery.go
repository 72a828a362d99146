package model

import "time"

// TopicMastery is a materialized view over the interaction log, one row per
// (student, topic). MasteryLevel is always recomputed as correct/attempts
// inside the same transaction that bumps the counters.
type TopicMastery struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID       string    `gorm:"uniqueIndex:uniq_topic_mastery;index;type:varchar(36)" json:"studentId"`
	Topic           string    `gorm:"uniqueIndex:uniq_topic_mastery;size:64" json:"topic"`
	TotalAttempts   int       `gorm:"default:0" json:"totalAttempts"`
	CorrectAttempts int       `gorm:"default:0" json:"correctAttempts"`
	TotalTime       int       `gorm:"default:0" json:"totalTime"`
	MasteryLevel    float64   `gorm:"default:0" json:"masteryLevel"`
	LastAttempt     time.Time `json:"lastAttempt"`
}

func (TopicMastery) TableName() string {
	return "topic_mastery"
}

// SubtopicMastery mirrors TopicMastery at (student, topic, subtopic) grain.
type SubtopicMastery struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    string    `gorm:"uniqueIndex:uniq_subtopic_mastery;index:idx_subtopic_mastery_student;type:varchar(36)" json:"studentId"`
	Topic        string    `gorm:"uniqueIndex:uniq_subtopic_mastery;index:idx_subtopic_mastery_student;size:64" json:"topic"`
	Subtopic     string    `gorm:"uniqueIndex:uniq_subtopic_mastery;size:64" json:"subtopic"`
	Attempts     int       `gorm:"default:0" json:"attempts"`
	Correct      int       `gorm:"default:0" json:"correct"`
	MasteryLevel float64   `gorm:"default:0" json:"masteryLevel"`
	LastAttempt  time.Time `json:"lastAttempt"`
}

func (SubtopicMastery) TableName() string {
	return "subtopic_mastery"
}
