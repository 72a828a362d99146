package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/internal/repository"
)

const (
	remediationThreshold = 0.6
	advancementThreshold = 0.8
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrSessionNotFound = errors.New("session not found")
)

// TrackerService owns student profiles, the interaction log and everything
// derived from it.
type TrackerService struct {
	students *repository.StudentRepository
	mastery  *repository.MasteryRepository
	sessions *repository.SessionRepository
}

func NewTrackerService(students *repository.StudentRepository, mastery *repository.MasteryRepository, sessions *repository.SessionRepository) *TrackerService {
	return &TrackerService{students: students, mastery: mastery, sessions: sessions}
}

// RegisterStudent creates a student with a server-issued ID, or refreshes
// the profile when the ID is supplied and already known.
func (s *TrackerService) RegisterStudent(studentID string, grade int, board model.Board, language model.Language) (*model.Student, error) {
	if !board.Valid() {
		return nil, fmt.Errorf("unknown board %q", board)
	}
	if language == "" {
		language = model.English
	}
	if studentID == "" {
		studentID = model.GenerateUUID()
	}

	student := &model.Student{
		StudentID: studentID,
		Grade:     grade,
		Board:     board,
		Language:  language,
	}
	if err := s.students.Upsert(student); err != nil {
		return nil, err
	}
	return s.students.GetByID(studentID)
}

func (s *TrackerService) GetStudent(studentID string) (*model.Student, error) {
	student, err := s.students.GetByID(studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// InteractionInput is one attempt reported by the client.
type InteractionInput struct {
	StudentID       string   `json:"studentId"`
	ContentID       string   `json:"contentId"`
	Topic           string   `json:"topic" binding:"required"`
	Subtopic        string   `json:"subtopic"`
	Success         bool     `json:"success"`
	TimeTaken       int      `json:"timeTaken"`
	ErrorType       string   `json:"errorType"`
	DifficultyLevel *float64 `json:"difficultyLevel"`
	MethodTags      []string `json:"methodTags"`
	QuestionText    string   `json:"questionText"`
	UserAnswer      string   `json:"userAnswer"`
}

// RecordInteraction validates the attempt against the catalog and commits it
// with all its aggregates.
func (s *TrackerService) RecordInteraction(in InteractionInput) error {
	topic, ok := curriculum.TopicByKey(in.Topic)
	if !ok {
		return fmt.Errorf("unknown topic %q", in.Topic)
	}
	if in.Subtopic != "" && in.Subtopic != "general" && !topic.HasSubtopic(in.Subtopic) {
		return fmt.Errorf("unknown subtopic %q for topic %q", in.Subtopic, in.Topic)
	}
	if in.TimeTaken < 0 {
		return fmt.Errorf("time taken cannot be negative")
	}

	exists, err := s.students.Exists(in.StudentID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrStudentNotFound
	}

	return s.mastery.RecordInteraction(&model.Interaction{
		StudentID:       in.StudentID,
		ContentID:       in.ContentID,
		Topic:           in.Topic,
		Subtopic:        in.Subtopic,
		Success:         in.Success,
		TimeTaken:       in.TimeTaken,
		ErrorType:       in.ErrorType,
		DifficultyLevel: in.DifficultyLevel,
		MethodTags:      datatypes.NewJSONSlice(in.MethodTags),
		QuestionText:    in.QuestionText,
		UserAnswer:      in.UserAnswer,
	})
}

// Mastery returns topic mastery, zero for unattempted topics.
func (s *TrackerService) Mastery(studentID, topic string) (float64, error) {
	return s.mastery.TopicMasteryLevel(studentID, topic)
}

func (s *TrackerService) SubtopicMastery(studentID, topic, subtopic string) (float64, error) {
	return s.mastery.SubtopicMasteryLevel(studentID, topic, subtopic)
}

// PriorityAction is one recommended next step.
type PriorityAction struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

// Recommendations summarizes where the student should focus next.
type Recommendations struct {
	PriorityActions []PriorityAction            `json:"priorityActions"`
	WeakAreas       []model.TopicMastery        `json:"weakAreas"`
	StrongAreas     []model.TopicMastery        `json:"strongAreas"`
	FocusErrors     []repository.ErrorFrequency `json:"focusErrors"`
}

func (s *TrackerService) Recommendations(studentID string) (*Recommendations, error) {
	weak, err := s.mastery.WeakTopics(studentID, remediationThreshold)
	if err != nil {
		return nil, err
	}
	strong, err := s.mastery.StrongTopics(studentID, advancementThreshold)
	if err != nil {
		return nil, err
	}
	topErrors, err := s.mastery.TopErrors(studentID, 3)
	if err != nil {
		return nil, err
	}

	rec := &Recommendations{
		PriorityActions: []PriorityAction{},
		WeakAreas:       weak,
		StrongAreas:     strong,
		FocusErrors:     topErrors,
	}
	if len(weak) > 0 {
		rec.PriorityActions = append(rec.PriorityActions, PriorityAction{
			Action:      "remediation",
			Description: fmt.Sprintf("Focus on %s - current mastery: %.1f%%", weak[0].Topic, weak[0].MasteryLevel*100),
			Urgency:     "high",
		})
	}
	if len(strong) > 0 {
		rec.PriorityActions = append(rec.PriorityActions, PriorityAction{
			Action:      "advancement",
			Description: fmt.Sprintf("Try advanced problems in %s - current mastery: %.1f%%", strong[0].Topic, strong[0].MasteryLevel*100),
			Urgency:     "medium",
		})
	}
	if len(topErrors) > 0 {
		rec.PriorityActions = append(rec.PriorityActions, PriorityAction{
			Action:      "error_correction",
			Description: fmt.Sprintf("Practice to avoid %s errors", topErrors[0].ErrorType),
			Urgency:     "medium",
		})
	}
	return rec, nil
}

// TopicProgress is the per-topic slice of the progress summary.
type TopicProgress struct {
	MasteryLevel     float64                 `json:"masteryLevel"`
	TotalAttempts    int                     `json:"totalAttempts"`
	CorrectAttempts  int                     `json:"correctAttempts"`
	Accuracy         string                  `json:"accuracy"`
	TimeSpentMinutes int                     `json:"timeSpentMinutes"`
	LastAttempt      time.Time               `json:"lastAttempt"`
	Subtopics        []model.SubtopicMastery `json:"subtopics"`
	CommonErrors     []model.ErrorPattern    `json:"commonErrors"`
	WeakestSubtopic  *model.SubtopicMastery  `json:"weakestSubtopic,omitempty"`
}

// ProgressSummary is the full picture of one student's learning.
type ProgressSummary struct {
	StudentInfo     *model.Student           `json:"studentInfo"`
	OverallStats    OverallStats             `json:"overallStats"`
	TopicProgress   map[string]TopicProgress `json:"topicProgress"`
	RecentActivity  []model.Interaction      `json:"recentActivity"`
	Recommendations *Recommendations         `json:"recommendations"`
}

type OverallStats struct {
	TotalQuestions  int     `json:"totalQuestions"`
	TotalCorrect    int     `json:"totalCorrect"`
	OverallAccuracy string  `json:"overallAccuracy"`
	TotalTimeHours  float64 `json:"totalTimeHours"`
	TopicsAttempted int     `json:"topicsAttempted"`
}

func (s *TrackerService) ProgressSummary(studentID string) (*ProgressSummary, error) {
	student, err := s.GetStudent(studentID)
	if err != nil {
		return nil, err
	}

	topics, err := s.mastery.ListTopicMastery(studentID)
	if err != nil {
		return nil, err
	}

	progress := make(map[string]TopicProgress, len(topics))
	for _, t := range topics {
		subtopics, err := s.mastery.ListSubtopicMastery(studentID, t.Topic)
		if err != nil {
			return nil, err
		}
		patterns, err := s.mastery.ListErrorPatterns(studentID, t.Topic, 5)
		if err != nil {
			return nil, err
		}

		tp := TopicProgress{
			MasteryLevel:     t.MasteryLevel,
			TotalAttempts:    t.TotalAttempts,
			CorrectAttempts:  t.CorrectAttempts,
			Accuracy:         fmt.Sprintf("%.1f%%", accuracy(t.CorrectAttempts, t.TotalAttempts)),
			TimeSpentMinutes: t.TotalTime,
			LastAttempt:      t.LastAttempt,
			Subtopics:        subtopics,
			CommonErrors:     patterns,
		}
		if len(subtopics) > 0 {
			// Subtopics come back weakest first.
			weakest := subtopics[0]
			tp.WeakestSubtopic = &weakest
		}
		progress[t.Topic] = tp
	}

	recent, err := s.mastery.RecentInteractions(studentID, 10)
	if err != nil {
		return nil, err
	}
	recommendations, err := s.Recommendations(studentID)
	if err != nil {
		return nil, err
	}

	return &ProgressSummary{
		StudentInfo: student,
		OverallStats: OverallStats{
			TotalQuestions:  student.TotalQuestions,
			TotalCorrect:    student.TotalCorrect,
			OverallAccuracy: fmt.Sprintf("%.1f%%", accuracy(student.TotalCorrect, student.TotalQuestions)),
			TotalTimeHours:  float64(student.TotalTimeMinutes) / 60,
			TopicsAttempted: len(topics),
		},
		TopicProgress:   progress,
		RecentActivity:  recent,
		Recommendations: recommendations,
	}, nil
}

// DailyPerformance is one day in the performance trend.
type DailyPerformance struct {
	Date      string  `json:"date"`
	Questions int     `json:"questions"`
	Correct   int     `json:"correct"`
	AvgTime   float64 `json:"avgTime"`
}

// DifficultyPerformance is the success rate at one difficulty level.
type DifficultyPerformance struct {
	DifficultyLevel float64 `json:"difficultyLevel"`
	Attempts        int     `json:"attempts"`
	SuccessRate     float64 `json:"successRate"`
}

// HourlyPerformance is accuracy by hour of day.
type HourlyPerformance struct {
	Hour      int     `json:"hour"`
	Questions int     `json:"questions"`
	Accuracy  float64 `json:"accuracy"`
}

// Analytics is the trend report over a trailing window.
type Analytics struct {
	AnalysisPeriodDays  int                     `json:"analysisPeriodDays"`
	DailyTrend          []DailyPerformance      `json:"dailyTrend"`
	DifficultyBreakdown []DifficultyPerformance `json:"difficultyBreakdown"`
	HourlyPatterns      []HourlyPerformance     `json:"hourlyPatterns"`
}

// PerformanceAnalytics aggregates the interaction log over the last N days.
// Aggregation runs in Go so the underlying query stays dialect-neutral.
func (s *TrackerService) PerformanceAnalytics(studentID string, days int) (*Analytics, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	interactions, err := s.mastery.InteractionsSince(studentID, cutoff)
	if err != nil {
		return nil, err
	}

	type dayAgg struct {
		questions, correct, totalTime int
	}
	daily := map[string]*dayAgg{}
	type diffAgg struct {
		attempts, correct int
	}
	byDifficulty := map[float64]*diffAgg{}
	type hourAgg struct {
		questions, correct int
	}
	hourly := map[int]*hourAgg{}

	for _, in := range interactions {
		day := in.Timestamp.Format("2006-01-02")
		if daily[day] == nil {
			daily[day] = &dayAgg{}
		}
		daily[day].questions++
		daily[day].totalTime += in.TimeTaken

		hour := in.Timestamp.Hour()
		if hourly[hour] == nil {
			hourly[hour] = &hourAgg{}
		}
		hourly[hour].questions++

		var d *diffAgg
		if in.DifficultyLevel != nil {
			if byDifficulty[*in.DifficultyLevel] == nil {
				byDifficulty[*in.DifficultyLevel] = &diffAgg{}
			}
			d = byDifficulty[*in.DifficultyLevel]
			d.attempts++
		}

		if in.Success {
			daily[day].correct++
			hourly[hour].correct++
			if d != nil {
				d.correct++
			}
		}
	}

	out := &Analytics{AnalysisPeriodDays: days}
	for day, agg := range daily {
		out.DailyTrend = append(out.DailyTrend, DailyPerformance{
			Date:      day,
			Questions: agg.questions,
			Correct:   agg.correct,
			AvgTime:   float64(agg.totalTime) / float64(agg.questions),
		})
	}
	sort.Slice(out.DailyTrend, func(i, j int) bool {
		return out.DailyTrend[i].Date < out.DailyTrend[j].Date
	})

	for level, agg := range byDifficulty {
		out.DifficultyBreakdown = append(out.DifficultyBreakdown, DifficultyPerformance{
			DifficultyLevel: level,
			Attempts:        agg.attempts,
			SuccessRate:     float64(agg.correct) / float64(agg.attempts),
		})
	}
	sort.Slice(out.DifficultyBreakdown, func(i, j int) bool {
		return out.DifficultyBreakdown[i].DifficultyLevel < out.DifficultyBreakdown[j].DifficultyLevel
	})

	for hour, agg := range hourly {
		out.HourlyPatterns = append(out.HourlyPatterns, HourlyPerformance{
			Hour:      hour,
			Questions: agg.questions,
			Accuracy:  float64(agg.correct) / float64(agg.questions),
		})
	}
	sort.Slice(out.HourlyPatterns, func(i, j int) bool {
		return out.HourlyPatterns[i].Hour < out.HourlyPatterns[j].Hour
	})

	return out, nil
}

func (s *TrackerService) StartSession(studentID string) (*model.LearningSession, error) {
	exists, err := s.students.Exists(studentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStudentNotFound
	}
	return s.sessions.Start(studentID)
}

func (s *TrackerService) GetSession(sessionID uint) (*model.LearningSession, error) {
	session, err := s.sessions.GetByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	return session, err
}

// EndSession closes a running session. Unknown and already-closed sessions
// both come back as ErrSessionNotFound and nothing is changed.
func (s *TrackerService) EndSession(sessionID uint, topicsCovered []string) (*model.LearningSession, error) {
	session, err := s.sessions.End(sessionID, topicsCovered)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	return session, err
}

func (s *TrackerService) ListSessions(studentID string, limit int) ([]model.LearningSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessions.ListByStudent(studentID, limit)
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		total = 1
	}
	return float64(correct) / float64(total) * 100
}
