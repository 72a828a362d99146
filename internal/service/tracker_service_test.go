package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/internal/repository"
)

func newTestTracker(t *testing.T) *TrackerService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Student{},
		&model.Interaction{},
		&model.TopicMastery{},
		&model.SubtopicMastery{},
		&model.LearningSession{},
		&model.ErrorPattern{},
	))

	return NewTrackerService(
		repository.NewStudentRepository(db),
		repository.NewMasteryRepository(db),
		repository.NewSessionRepository(db),
	)
}

func registerTestStudent(t *testing.T, svc *TrackerService) *model.Student {
	t.Helper()
	student, err := svc.RegisterStudent("", 10, model.CBSE, model.English)
	require.NoError(t, err)
	require.NotEmpty(t, student.StudentID)
	return student
}

func TestMasteryRecomputedPerInteraction(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	record := func(success bool) {
		require.NoError(t, svc.RecordInteraction(InteractionInput{
			StudentID: student.StudentID,
			Topic:     "quadratic_equations",
			Subtopic:  "factorization_method",
			Success:   success,
			TimeTaken: 5,
		}))
	}

	record(true)
	record(true)
	record(false)

	mastery, err := svc.Mastery(student.StudentID, "quadratic_equations")
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, mastery, 1e-9)

	record(true)

	mastery, err = svc.Mastery(student.StudentID, "quadratic_equations")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, mastery, 1e-9)

	sub, err := svc.SubtopicMastery(student.StudentID, "quadratic_equations", "factorization_method")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, sub, 1e-9)

	refreshed, err := svc.GetStudent(student.StudentID)
	require.NoError(t, err)
	assert.Equal(t, 4, refreshed.TotalQuestions)
	assert.Equal(t, 3, refreshed.TotalCorrect)
	assert.Equal(t, 20, refreshed.TotalTimeMinutes)
}

func TestMasteryColdStartIsZero(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	mastery, err := svc.Mastery(student.StudentID, "digestive_system")
	require.NoError(t, err)
	assert.Zero(t, mastery)
}

func TestErrorPatternFrequency(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	fail := func(errType string) {
		require.NoError(t, svc.RecordInteraction(InteractionInput{
			StudentID: student.StudentID,
			Topic:     "quadratic_equations",
			Success:   false,
			ErrorType: errType,
		}))
	}

	fail("sign_mistakes")
	fail("sign_mistakes")
	fail("calculation_errors")

	// A successful attempt with an error type must not count as an error.
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   true,
		ErrorType: "sign_mistakes",
	}))

	rec, err := svc.Recommendations(student.StudentID)
	require.NoError(t, err)
	require.NotEmpty(t, rec.FocusErrors)
	assert.Equal(t, "sign_mistakes", rec.FocusErrors[0].ErrorType)
	assert.Equal(t, 2, rec.FocusErrors[0].TotalFrequency)
}

func TestRecordInteractionValidation(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	err := svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "astronomy",
		Success:   true,
	})
	assert.ErrorContains(t, err, "unknown topic")

	err = svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Subtopic:  "enzymes_secretions",
		Success:   true,
	})
	assert.ErrorContains(t, err, "unknown subtopic")

	err = svc.RecordInteraction(InteractionInput{
		StudentID: "missing-student",
		Topic:     "quadratic_equations",
		Success:   true,
	})
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRecommendationsThresholds(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	// quadratic_equations: 1/4 correct, well under the 0.6 threshold.
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.RecordInteraction(InteractionInput{
			StudentID: student.StudentID,
			Topic:     "quadratic_equations",
			Success:   i == 0,
		}))
	}
	// digestive_system: 5/5 correct, above the 0.8 threshold.
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordInteraction(InteractionInput{
			StudentID: student.StudentID,
			Topic:     "digestive_system",
			Success:   true,
		}))
	}

	rec, err := svc.Recommendations(student.StudentID)
	require.NoError(t, err)

	require.Len(t, rec.WeakAreas, 1)
	assert.Equal(t, "quadratic_equations", rec.WeakAreas[0].Topic)
	require.Len(t, rec.StrongAreas, 1)
	assert.Equal(t, "digestive_system", rec.StrongAreas[0].Topic)

	require.NotEmpty(t, rec.PriorityActions)
	assert.Equal(t, "remediation", rec.PriorityActions[0].Action)
	assert.Equal(t, "high", rec.PriorityActions[0].Urgency)
}

func TestProgressSummary(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Subtopic:  "patterns_introduction",
		Success:   true,
		TimeTaken: 10,
	}))
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Subtopic:  "factorization_method",
		Success:   false,
		TimeTaken: 15,
		ErrorType: "sign_mistakes",
	}))

	summary, err := svc.ProgressSummary(student.StudentID)
	require.NoError(t, err)

	assert.Equal(t, student.StudentID, summary.StudentInfo.StudentID)
	assert.Equal(t, 2, summary.OverallStats.TotalQuestions)
	assert.Equal(t, "50.0%", summary.OverallStats.OverallAccuracy)
	assert.Equal(t, 1, summary.OverallStats.TopicsAttempted)

	tp, ok := summary.TopicProgress["quadratic_equations"]
	require.True(t, ok)
	assert.Equal(t, 25, tp.TimeSpentMinutes)
	assert.Len(t, tp.Subtopics, 2)
	require.NotNil(t, tp.WeakestSubtopic)
	assert.Equal(t, "factorization_method", tp.WeakestSubtopic.Subtopic)
	assert.Len(t, summary.RecentActivity, 2)
}

func TestProgressSummaryUnknownStudent(t *testing.T) {
	svc := newTestTracker(t)

	_, err := svc.ProgressSummary("nobody")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	session, err := svc.StartSession(student.StudentID)
	require.NoError(t, err)
	assert.Nil(t, session.SessionEnd)

	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   true,
		TimeTaken: 12,
	}))
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   false,
		TimeTaken: 8,
	}))

	ended, err := svc.EndSession(session.ID, []string{"quadratic_equations"})
	require.NoError(t, err)
	require.NotNil(t, ended.SessionEnd)
	assert.Equal(t, 2, ended.QuestionsAttempted)
	assert.Equal(t, 1, ended.QuestionsCorrect)
	assert.Equal(t, 20, ended.TotalTimeMinutes)
	assert.Equal(t, []string{"quadratic_equations"}, []string(ended.TopicsCovered))
}

func TestEndSessionTwiceChangesNothing(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	session, err := svc.StartSession(student.StudentID)
	require.NoError(t, err)

	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   true,
		TimeTaken: 5,
	}))

	ended, err := svc.EndSession(session.ID, []string{"quadratic_equations"})
	require.NoError(t, err)
	require.NotNil(t, ended.SessionEnd)

	// An interaction logged after the close must not be absorbed by a
	// second end call.
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   false,
		TimeTaken: 3,
	}))

	_, err = svc.EndSession(session.ID, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stored, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.QuestionsAttempted)
	assert.Equal(t, 5, stored.TotalTimeMinutes)
	require.NotNil(t, stored.SessionEnd)
	assert.Equal(t, ended.SessionEnd.Unix(), stored.SessionEnd.Unix())
}

func TestStartSessionClosesOpenSession(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	first, err := svc.StartSession(student.StudentID)
	require.NoError(t, err)

	second, err := svc.StartSession(student.StudentID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	sessions, err := svc.ListSessions(student.StudentID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	var open int
	for _, s := range sessions {
		if s.SessionEnd == nil {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestPerformanceAnalytics(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	easy := 2.0
	hard := 4.0
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID:       student.StudentID,
		Topic:           "quadratic_equations",
		Success:         true,
		TimeTaken:       10,
		DifficultyLevel: &easy,
	}))
	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID:       student.StudentID,
		Topic:           "quadratic_equations",
		Success:         false,
		TimeTaken:       20,
		DifficultyLevel: &hard,
	}))

	analytics, err := svc.PerformanceAnalytics(student.StudentID, 30)
	require.NoError(t, err)

	assert.Equal(t, 30, analytics.AnalysisPeriodDays)
	require.Len(t, analytics.DailyTrend, 1)
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, today, analytics.DailyTrend[0].Date)
	assert.Equal(t, 2, analytics.DailyTrend[0].Questions)
	assert.Equal(t, 1, analytics.DailyTrend[0].Correct)
	assert.InDelta(t, 15.0, analytics.DailyTrend[0].AvgTime, 1e-9)

	require.Len(t, analytics.DifficultyBreakdown, 2)
	assert.InDelta(t, 2.0, analytics.DifficultyBreakdown[0].DifficultyLevel, 1e-9)
	assert.InDelta(t, 1.0, analytics.DifficultyBreakdown[0].SuccessRate, 1e-9)
	assert.InDelta(t, 0.0, analytics.DifficultyBreakdown[1].SuccessRate, 1e-9)
}

func TestRegisterStudentPreservesTotals(t *testing.T) {
	svc := newTestTracker(t)
	student := registerTestStudent(t, svc)

	require.NoError(t, svc.RecordInteraction(InteractionInput{
		StudentID: student.StudentID,
		Topic:     "quadratic_equations",
		Success:   true,
	}))

	updated, err := svc.RegisterStudent(student.StudentID, 11, model.ICSE, model.Hindi)
	require.NoError(t, err)
	assert.Equal(t, 11, updated.Grade)
	assert.Equal(t, model.ICSE, updated.Board)
	assert.Equal(t, 1, updated.TotalQuestions)
}
