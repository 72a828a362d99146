package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/malharwork/agneez-poc/internal/model"
)

type MasteryRepository struct {
	db *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// RecordInteraction writes the interaction log entry and every aggregate it
// feeds in one transaction: student totals, topic mastery, subtopic mastery
// and the error pattern counter. Either all of them move or none do.
func (r *MasteryRepository) RecordInteraction(in *model.Interaction) error {
	now := time.Now()
	correct := 0
	if in.Success {
		correct = 1
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(in).Error; err != nil {
			return err
		}

		err := tx.Model(&model.Student{}).
			Where("student_id = ?", in.StudentID).
			Updates(map[string]interface{}{
				"total_questions":    gorm.Expr("total_questions + 1"),
				"total_correct":      gorm.Expr("total_correct + ?", correct),
				"total_time_minutes": gorm.Expr("total_time_minutes + ?", in.TimeTaken),
				"last_active":        now,
			}).Error
		if err != nil {
			return err
		}

		if err := upsertTopicMastery(tx, in, correct, now); err != nil {
			return err
		}
		if in.Subtopic != "" {
			if err := upsertSubtopicMastery(tx, in, correct, now); err != nil {
				return err
			}
		}
		if in.ErrorType != "" && !in.Success {
			if err := upsertErrorPattern(tx, in, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertTopicMastery(tx *gorm.DB, in *model.Interaction, correct int, now time.Time) error {
	var m model.TopicMastery
	err := tx.Where("student_id = ? AND topic = ?", in.StudentID, in.Topic).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = model.TopicMastery{StudentID: in.StudentID, Topic: in.Topic}
	} else if err != nil {
		return err
	}

	m.TotalAttempts++
	m.CorrectAttempts += correct
	m.TotalTime += in.TimeTaken
	m.MasteryLevel = float64(m.CorrectAttempts) / float64(m.TotalAttempts)
	m.LastAttempt = now
	return tx.Save(&m).Error
}

func upsertSubtopicMastery(tx *gorm.DB, in *model.Interaction, correct int, now time.Time) error {
	var m model.SubtopicMastery
	err := tx.Where("student_id = ? AND topic = ? AND subtopic = ?",
		in.StudentID, in.Topic, in.Subtopic).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = model.SubtopicMastery{StudentID: in.StudentID, Topic: in.Topic, Subtopic: in.Subtopic}
	} else if err != nil {
		return err
	}

	m.Attempts++
	m.Correct += correct
	m.MasteryLevel = float64(m.Correct) / float64(m.Attempts)
	m.LastAttempt = now
	return tx.Save(&m).Error
}

func upsertErrorPattern(tx *gorm.DB, in *model.Interaction, now time.Time) error {
	var p model.ErrorPattern
	err := tx.Where("student_id = ? AND topic = ? AND error_type = ?",
		in.StudentID, in.Topic, in.ErrorType).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = model.ErrorPattern{
			StudentID:      in.StudentID,
			Topic:          in.Topic,
			ErrorType:      in.ErrorType,
			Frequency:      1,
			LastOccurrence: now,
		}
		return tx.Create(&p).Error
	}
	if err != nil {
		return err
	}

	p.Frequency++
	p.LastOccurrence = now
	return tx.Save(&p).Error
}

// TopicMasteryLevel returns the mastery for a topic, zero for a student or
// topic that has never been attempted.
func (r *MasteryRepository) TopicMasteryLevel(studentID, topic string) (float64, error) {
	var m model.TopicMastery
	err := r.db.Where("student_id = ? AND topic = ?", studentID, topic).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return m.MasteryLevel, nil
}

func (r *MasteryRepository) ListTopicMastery(studentID string) ([]model.TopicMastery, error) {
	var out []model.TopicMastery
	err := r.db.Where("student_id = ?", studentID).
		Order("last_attempt DESC").
		Find(&out).Error
	return out, err
}

// ListSubtopicMastery returns subtopics weakest first.
func (r *MasteryRepository) ListSubtopicMastery(studentID, topic string) ([]model.SubtopicMastery, error) {
	var out []model.SubtopicMastery
	err := r.db.Where("student_id = ? AND topic = ?", studentID, topic).
		Order("mastery_level ASC").
		Find(&out).Error
	return out, err
}

func (r *MasteryRepository) SubtopicMasteryLevel(studentID, topic, subtopic string) (float64, error) {
	var m model.SubtopicMastery
	err := r.db.Where("student_id = ? AND topic = ? AND subtopic = ?",
		studentID, topic, subtopic).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return m.MasteryLevel, nil
}

func (r *MasteryRepository) ListErrorPatterns(studentID, topic string, limit int) ([]model.ErrorPattern, error) {
	var out []model.ErrorPattern
	err := r.db.Where("student_id = ? AND topic = ?", studentID, topic).
		Order("frequency DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// WeakTopics lists topics below the remediation threshold, weakest first.
func (r *MasteryRepository) WeakTopics(studentID string, threshold float64) ([]model.TopicMastery, error) {
	var out []model.TopicMastery
	err := r.db.Where("student_id = ? AND mastery_level < ?", studentID, threshold).
		Order("mastery_level ASC").
		Find(&out).Error
	return out, err
}

// StrongTopics lists topics at or above the advancement threshold,
// strongest first.
func (r *MasteryRepository) StrongTopics(studentID string, threshold float64) ([]model.TopicMastery, error) {
	var out []model.TopicMastery
	err := r.db.Where("student_id = ? AND mastery_level >= ?", studentID, threshold).
		Order("mastery_level DESC").
		Find(&out).Error
	return out, err
}

type ErrorFrequency struct {
	ErrorType      string `json:"errorType"`
	TotalFrequency int    `json:"totalFrequency"`
}

// TopErrors aggregates error patterns across all topics.
func (r *MasteryRepository) TopErrors(studentID string, limit int) ([]ErrorFrequency, error) {
	var out []ErrorFrequency
	err := r.db.Model(&model.ErrorPattern{}).
		Select("error_type, SUM(frequency) as total_frequency").
		Where("student_id = ?", studentID).
		Group("error_type").
		Order("total_frequency DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *MasteryRepository) RecentInteractions(studentID string, limit int) ([]model.Interaction, error) {
	var out []model.Interaction
	err := r.db.Where("student_id = ?", studentID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// InteractionsSince returns interactions after the cutoff in chronological
// order. Trend aggregation happens in the service so the query stays
// portable across MySQL and the sqlite test databases.
func (r *MasteryRepository) InteractionsSince(studentID string, cutoff time.Time) ([]model.Interaction, error) {
	var out []model.Interaction
	err := r.db.Where("student_id = ? AND timestamp >= ?", studentID, cutoff).
		Order("timestamp ASC").
		Find(&out).Error
	return out, err
}
