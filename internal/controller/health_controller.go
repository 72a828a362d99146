package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/service"
	"github.com/malharwork/agneez-poc/internal/util"
)

// HealthController reports liveness and the state of the vector namespaces.
type HealthController struct {
	Indexes map[string]service.VectorNamespace
}

func NewHealthController(indexes map[string]service.VectorNamespace) *HealthController {
	return &HealthController{Indexes: indexes}
}

func (ctl *HealthController) Health(c *gin.Context) {
	util.Success(c, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// KnowledgeBase reports vector counts per topic namespace, handy for
// checking that bootstrap ran.
func (ctl *HealthController) KnowledgeBase(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out := map[string]interface{}{}
	for _, topic := range curriculum.Topics() {
		idx, ok := ctl.Indexes[topic.Index]
		if !ok {
			out[topic.Key] = gin.H{"error": "index not configured"}
			continue
		}
		count, err := idx.NamespaceCount(ctx, topic.Namespace)
		if err != nil {
			out[topic.Key] = gin.H{"error": err.Error()}
			continue
		}
		out[topic.Key] = gin.H{
			"namespace":   topic.Namespace,
			"vectorCount": count,
		}
	}
	util.Success(c, out)
}
