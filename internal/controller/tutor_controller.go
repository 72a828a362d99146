package controller

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/internal/service"
	"github.com/malharwork/agneez-poc/internal/util"
)

// TutorController serves the question answering and content selection
// endpoints.
type TutorController struct {
	Retrieval *service.RetrievalService
	Tracker   *service.TrackerService
}

func NewTutorController(retrieval *service.RetrievalService, tracker *service.TrackerService) *TutorController {
	return &TutorController{Retrieval: retrieval, Tracker: tracker}
}

type chatRequest struct {
	Message          string   `json:"message" binding:"required"`
	Topic            string   `json:"topic" binding:"required"`
	Level            string   `json:"level"`
	Grade            int      `json:"grade"`
	Subtopic         string   `json:"subtopic"`
	MethodPreference string   `json:"methodPreference"`
	ExcludeMethods   []string `json:"excludeMethods"`
	Language         string   `json:"language"`
}

// resolveGrade prefers the explicit request grade, then the level's default
// band position, then the profile grade from the token.
func resolveGrade(req chatRequest, claims *util.StudentClaims) int {
	if req.Grade != 0 {
		return req.Grade
	}
	if req.Level != "" {
		if level := model.Level(req.Level); level.Valid() {
			return curriculum.DefaultGrade(level, claims.Board)
		}
	}
	return claims.Grade
}

func (ctl *TutorController) Chat(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	language := model.Language(req.Language)
	if language == "" {
		language = model.English
	}

	filter := service.MetadataFilter{
		Grade:            resolveGrade(req, claims),
		Board:            claims.Board,
		Language:         language,
		Subtopic:         req.Subtopic,
		MethodPreference: req.MethodPreference,
		ExcludeMethods:   req.ExcludeMethods,
	}

	answer, err := ctl.Retrieval.AnswerQuestion(c.Request.Context(), req.Message, req.Topic, filter)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	mastery, err := ctl.Tracker.Mastery(claims.StudentID, req.Topic)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	recommendations, err := ctl.Tracker.Recommendations(claims.StudentID)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	actions := recommendations.PriorityActions
	if len(actions) > 2 {
		actions = actions[:2]
	}

	util.Success(c, gin.H{
		"response":        answer,
		"studentMastery":  fmt.Sprintf("%.1f%%", mastery*100),
		"recommendations": actions,
	})
}

type adaptiveContentRequest struct {
	Topic       string   `json:"topic" binding:"required"`
	Performance *float64 `json:"performance"`
	Subtopic    string   `json:"subtopic"`
	Grade       int      `json:"grade"`
}

// AdaptiveContent serves content matched to performance. The effective
// performance is the higher of the caller-reported session value and the
// tracked mastery, so a strong history is never overridden by one bad
// session reading.
func (ctl *TutorController) AdaptiveContent(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req adaptiveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	performance, err := ctl.Tracker.Mastery(claims.StudentID, req.Topic)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	if req.Performance != nil && *req.Performance > performance {
		performance = *req.Performance
	}

	grade := req.Grade
	if grade == 0 {
		grade = claims.Grade
	}

	filter := service.MetadataFilter{
		Grade:    grade,
		Board:    claims.Board,
		Subtopic: req.Subtopic,
	}

	chunks, contentTypes, err := ctl.Retrieval.AdaptiveContent(c.Request.Context(), req.Topic, performance, filter)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	util.Success(c, gin.H{
		"adaptiveContent": chunks,
		"performance":     performance,
		"contentTypes":    contentTypes,
	})
}

type methodContentRequest struct {
	Topic          string   `json:"topic" binding:"required"`
	MethodTag      string   `json:"methodTag" binding:"required"`
	Grade          int      `json:"grade"`
	ExcludeMethods []string `json:"excludeMethods"`
}

func (ctl *TutorController) MethodContent(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req methodContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	grade := req.Grade
	if grade == 0 {
		grade = claims.Grade
	}

	filter := service.MetadataFilter{
		Grade:          grade,
		Board:          claims.Board,
		ExcludeMethods: req.ExcludeMethods,
	}

	grouped, err := ctl.Retrieval.MethodContent(c.Request.Context(), req.Topic, req.MethodTag, filter)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	util.Success(c, gin.H{
		"methodSpecificContent": grouped,
		"methodTag":             req.MethodTag,
		"excludedMethods":       req.ExcludeMethods,
	})
}

type prerequisiteContentRequest struct {
	Topic    string   `json:"topic" binding:"required"`
	Concepts []string `json:"concepts" binding:"required"`
	Grade    int      `json:"grade"`
}

func (ctl *TutorController) PrerequisiteContent(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req prerequisiteContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	grade := req.Grade
	if grade == 0 {
		grade = claims.Grade
	}

	filter := service.MetadataFilter{Grade: grade, Board: claims.Board}
	chunks, err := ctl.Retrieval.PrerequisiteContent(c.Request.Context(), req.Topic, req.Concepts, filter)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	util.Success(c, gin.H{
		"contentWithPrerequisites": chunks,
		"prerequisitesSearched":    req.Concepts,
	})
}

type performanceUpdateRequest struct {
	ContentID string `json:"contentId" binding:"required"`
	Success   bool   `json:"success"`
	ErrorType string `json:"errorType"`
	TimeTaken int    `json:"timeTaken"`
}

func (ctl *TutorController) PerformanceUpdate(c *gin.Context) {
	var req performanceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	ctl.Retrieval.RecordContentPerformance(req.ContentID, req.Success, req.ErrorType, req.TimeTaken)
	util.Success(c, gin.H{"status": "logged"})
}
