package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/config"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/internal/service"
	"github.com/malharwork/agneez-poc/internal/util"
)

// ProgressController serves student identity, the interaction log and the
// progress reports.
type ProgressController struct {
	Tracker *service.TrackerService
	JWT     config.JWTConfig
}

func NewProgressController(tracker *service.TrackerService, jwtCfg config.JWTConfig) *ProgressController {
	return &ProgressController{Tracker: tracker, JWT: jwtCfg}
}

type registerRequest struct {
	Grade    int    `json:"grade" binding:"required,min=3,max=12"`
	Board    string `json:"board" binding:"required"`
	Language string `json:"language"`
}

// Register creates an anonymous student and returns the token that carries
// the identity from then on.
func (ctl *ProgressController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	student, err := ctl.Tracker.RegisterStudent("", req.Grade, model.Board(req.Board), model.Language(req.Language))
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, err := util.GenerateStudentToken(student, ctl.JWT.Secret, ctl.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Created(c, gin.H{
		"student": student,
		"token":   token,
	})
}

// UpdateProfile refreshes grade, board or language for the authenticated
// student and reissues the token.
func (ctl *ProgressController) UpdateProfile(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	student, err := ctl.Tracker.RegisterStudent(claims.StudentID, req.Grade, model.Board(req.Board), model.Language(req.Language))
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	token, err := util.GenerateStudentToken(student, ctl.JWT.Secret, ctl.JWT.ExpireTime)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	util.Success(c, gin.H{
		"student": student,
		"token":   token,
	})
}

func (ctl *ProgressController) Me(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	student, err := ctl.Tracker.GetStudent(claims.StudentID)
	if errors.Is(err, service.ErrStudentNotFound) {
		util.NotFound(c, "student not found")
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, student)
}

// RecordInteraction logs one attempt for the authenticated student.
func (ctl *ProgressController) RecordInteraction(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var input service.InteractionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	input.StudentID = claims.StudentID

	if err := ctl.Tracker.RecordInteraction(input); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			util.NotFound(c, "student not found")
			return
		}
		util.BadRequest(c, err.Error())
		return
	}
	util.Success(c, gin.H{"status": "recorded"})
}

func (ctl *ProgressController) Mastery(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	topic := c.Param("topic")
	mastery, err := ctl.Tracker.Mastery(claims.StudentID, topic)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{
		"topic":        topic,
		"masteryLevel": mastery,
	})
}

func (ctl *ProgressController) Summary(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	summary, err := ctl.Tracker.ProgressSummary(claims.StudentID)
	if errors.Is(err, service.ErrStudentNotFound) {
		util.NotFound(c, "student not found")
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, summary)
}

func (ctl *ProgressController) Recommendations(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	rec, err := ctl.Tracker.Recommendations(claims.StudentID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, rec)
}

func (ctl *ProgressController) Analytics(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	analytics, err := ctl.Tracker.PerformanceAnalytics(claims.StudentID, days)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, analytics)
}

func (ctl *ProgressController) StartSession(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	session, err := ctl.Tracker.StartSession(claims.StudentID)
	if errors.Is(err, service.ErrStudentNotFound) {
		util.NotFound(c, "student not found")
		return
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, session)
}

type endSessionRequest struct {
	TopicsCovered []string `json:"topicsCovered"`
}

func (ctl *ProgressController) EndSession(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(c, "invalid session id")
		return
	}

	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	session, err := ctl.Tracker.GetSession(uint(sessionID))
	if err != nil || session.StudentID != claims.StudentID {
		util.NotFound(c, "session not found")
		return
	}

	ended, err := ctl.Tracker.EndSession(uint(sessionID), req.TopicsCovered)
	if errors.Is(err, service.ErrSessionNotFound) {
		util.NotFound(c, "session not found")
		return
	}
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	util.Success(c, ended)
}

func (ctl *ProgressController) ListSessions(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sessions, err := ctl.Tracker.ListSessions(claims.StudentID, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, sessions)
}
