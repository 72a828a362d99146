package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/internal/service"
	"github.com/malharwork/agneez-poc/internal/util"
)

// TopicController exposes the curriculum catalog and the learning path
// generator.
type TopicController struct {
	Path    *service.PathService
	Tracker *service.TrackerService
}

func NewTopicController(path *service.PathService, tracker *service.TrackerService) *TopicController {
	return &TopicController{Path: path, Tracker: tracker}
}

// ListTopics returns the catalog with grades, boards and subtopics per
// topic. Public, no token needed.
func (ctl *TopicController) ListTopics(c *gin.Context) {
	out := map[string]interface{}{}
	for _, topic := range curriculum.Topics() {
		subtopics := map[string]string{}
		order := make([]string, 0, len(topic.Subtopics))
		for _, sub := range topic.Subtopics {
			subtopics[sub.Key] = sub.Name
			order = append(order, sub.Key)
		}

		grades := []int{}
		for _, level := range curriculum.Levels() {
			grades = append(grades, curriculum.GradeMapping(level, model.CBSE)...)
		}

		out[topic.Key] = gin.H{
			"name":          topic.Name,
			"subject":       topic.Subject,
			"index":         topic.Index,
			"namespace":     topic.Namespace,
			"subtopics":     subtopics,
			"subtopicOrder": order,
			"grades":        grades,
			"boards":        curriculum.Boards(),
			"languages":     []model.Language{model.English, model.Hindi, model.Marathi},
		}
	}
	util.Success(c, out)
}

type learningPathRequest struct {
	Topic           string   `json:"topic" binding:"required"`
	CurrentSubtopic string   `json:"currentSubtopic"`
	MasteryLevel    *float64 `json:"masteryLevel"`
	Grade           int      `json:"grade"`
}

// LearningPath generates the next-step recommendation. The effective mastery
// is the higher of the caller-supplied level and the tracked one.
func (ctl *TopicController) LearningPath(c *gin.Context) {
	claims := util.StudentFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	var req learningPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	var mastery float64
	var err error
	if req.CurrentSubtopic != "" {
		mastery, err = ctl.Tracker.SubtopicMastery(claims.StudentID, req.Topic, req.CurrentSubtopic)
	} else {
		mastery, err = ctl.Tracker.Mastery(claims.StudentID, req.Topic)
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	if req.MasteryLevel != nil && *req.MasteryLevel > mastery {
		mastery = *req.MasteryLevel
	}

	grade := req.Grade
	if grade == 0 {
		grade = claims.Grade
	}

	path, err := ctl.Path.GeneratePath(req.Topic, grade, claims.Board, req.CurrentSubtopic, mastery)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	util.Success(c, path)
}
