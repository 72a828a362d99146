package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/malharwork/agneez-poc/internal/model"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Upsert creates the student or refreshes the profile fields. Accumulated
// totals survive a profile update.
func (r *StudentRepository) Upsert(student *model.Student) error {
	student.LastActive = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"grade", "board", "language", "last_active",
		}),
	}).Create(student).Error
}

func (r *StudentRepository) GetByID(studentID string) (*model.Student, error) {
	var student model.Student
	err := r.db.Where("student_id = ?", studentID).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Exists(studentID string) (bool, error) {
	_, err := r.GetByID(studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
