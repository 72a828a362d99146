package repository

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/malharwork/agneez-poc/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Start opens a session for the student. Any session still open is closed
// first so a student never has two running sessions.
func (r *SessionRepository) Start(studentID string) (*model.LearningSession, error) {
	now := time.Now()
	session := &model.LearningSession{
		StudentID:    studentID,
		SessionStart: now,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.LearningSession{}).
			Where("student_id = ? AND session_end IS NULL", studentID).
			Update("session_end", now).Error
		if err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// End closes a session and fills in its statistics from the interactions
// logged since it started.
func (r *SessionRepository) End(sessionID uint, topicsCovered []string) (*model.LearningSession, error) {
	var session model.LearningSession

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			return err
		}
		if session.SessionEnd != nil {
			// Already closed; ending again must not rewrite the stats.
			return gorm.ErrRecordNotFound
		}

		type sessionStats struct {
			Questions int
			Correct   int
			TotalTime int
		}
		var stats sessionStats
		err := tx.Model(&model.Interaction{}).
			Select("COUNT(*) as questions, COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) as correct, COALESCE(SUM(time_taken), 0) as total_time").
			Where("student_id = ? AND timestamp >= ?", session.StudentID, session.SessionStart).
			Scan(&stats).Error
		if err != nil {
			return err
		}

		now := time.Now()
		session.SessionEnd = &now
		session.TopicsCovered = datatypes.NewJSONSlice(topicsCovered)
		session.QuestionsAttempted = stats.Questions
		session.QuestionsCorrect = stats.Correct
		session.TotalTimeMinutes = stats.TotalTime
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) GetByID(sessionID uint) (*model.LearningSession, error) {
	var session model.LearningSession
	if err := r.db.First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListByStudent(studentID string, limit int) ([]model.LearningSession, error) {
	var out []model.LearningSession
	err := r.db.Where("student_id = ?", studentID).
		Order("session_start DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
