package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/malharwork/agneez-poc/internal/classifier"
	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/pkg/logger"
	"github.com/malharwork/agneez-poc/pkg/vectorstore"
)

// VectorNamespace is the slice of the vector client the builder needs.
type VectorNamespace interface {
	Upsert(ctx context.Context, namespace string, items []vectorstore.Item) (int, error)
	NamespaceCount(ctx context.Context, namespace string) (int, error)
}

// KnowledgeBaseService populates each topic's namespace from the curriculum
// source on first start. The build is idempotent: a namespace that already
// holds vectors is never rebuilt.
type KnowledgeBaseService struct {
	indexes  map[string]VectorNamespace
	embedder Embedder
	source   ContentSource

	mu     sync.Mutex
	topics map[string]*sync.Mutex
}

func NewKnowledgeBaseService(indexes map[string]VectorNamespace, embedder Embedder, source ContentSource) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		indexes:  indexes,
		embedder: embedder,
		source:   source,
		topics:   map[string]*sync.Mutex{},
	}
}

func (s *KnowledgeBaseService) topicLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.topics[key]; !ok {
		s.topics[key] = &sync.Mutex{}
	}
	return s.topics[key]
}

// EnsurePopulated bootstraps every topic in the catalog. Topics that fail
// are logged and skipped so one bad index does not block the rest.
func (s *KnowledgeBaseService) EnsurePopulated(ctx context.Context) error {
	var firstErr error
	for _, topic := range curriculum.Topics() {
		if err := s.EnsureTopic(ctx, topic); err != nil {
			logger.Log.Error("knowledge base bootstrap failed",
				zap.String("topic", topic.Key), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// EnsureTopic populates one topic's namespace if it is empty. The guard is
// re-checked under the topic lock so concurrent callers cannot double-build.
func (s *KnowledgeBaseService) EnsureTopic(ctx context.Context, topic curriculum.Topic) error {
	idx, ok := s.indexes[topic.Index]
	if !ok {
		return fmt.Errorf("no vector index configured for %q", topic.Index)
	}

	lock := s.topicLock(topic.Key)
	lock.Lock()
	defer lock.Unlock()

	count, err := idx.NamespaceCount(ctx, topic.Namespace)
	if err != nil {
		return fmt.Errorf("check namespace %s: %w", topic.Namespace, err)
	}
	if count > 0 {
		logger.Log.Info("namespace already populated",
			zap.String("namespace", topic.Namespace), zap.Int("vectors", count))
		return nil
	}

	chunks, err := s.buildChunks(ctx, topic)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		logger.Log.Warn("no curriculum material for topic", zap.String("topic", topic.Key))
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %s chunks: %w", topic.Key, err)
	}

	items := make([]vectorstore.Item, len(chunks))
	for i, c := range chunks {
		items[i] = vectorstore.Item{
			ID:       c.ID,
			Values:   vectors[i],
			Metadata: c.Metadata(),
		}
	}

	n, err := idx.Upsert(ctx, topic.Namespace, items)
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", topic.Namespace, err)
	}
	logger.Log.Info("namespace populated",
		zap.String("namespace", topic.Namespace), zap.Int("vectors", n))
	return nil
}

// buildChunks fans the topic's material out across every (level, board,
// grade) placement, classifying each section per placement since tags like
// method exclusions depend on where the content lands.
func (s *KnowledgeBaseService) buildChunks(ctx context.Context, topic curriculum.Topic) ([]*model.ContentChunk, error) {
	allowed := map[string]bool{}
	for _, sub := range topic.Subtopics {
		allowed[sub.Key] = true
	}

	var chunks []*model.ContentChunk
	for _, level := range curriculum.Levels() {
		for _, board := range curriculum.Boards() {
			doc, ok, err := s.source.Document(ctx, topic.Key, level, board)
			if err != nil {
				return nil, fmt.Errorf("load %s/%s/%s: %w", topic.Key, level, board, err)
			}
			if !ok {
				logger.Log.Warn("no material for placement",
					zap.String("topic", topic.Key),
					zap.String("level", string(level)),
					zap.String("board", string(board)))
				continue
			}

			grades := curriculum.GradeMapping(level, board)
			for _, sec := range doc.Sections {
				for _, grade := range grades {
					tags := classifier.Classify(classifier.Section{
						Title:   sec.Title,
						Content: sec.Content,
					}, allowed, level, board, grade, grades)

					chunks = append(chunks, &model.ContentChunk{
						ID: fmt.Sprintf("%s_%s_%s_%s", topic.Key, tags.Subtopic, tags.SubMethod,
							strings.ReplaceAll(uuid.NewString(), "-", "")[:8]),
						Text:                 sec.Content,
						Subject:              topic.Subject,
						Topic:                topic.Key,
						Subtopic:             tags.Subtopic,
						SubMethod:            tags.SubMethod,
						ContentType:          tags.ContentType,
						Complexity:           tags.Complexity,
						LearningStage:        tags.LearningStage,
						Level:                level,
						Board:                board,
						Grade:                grade,
						Language:             tags.Language,
						DifficultyScore:      tags.DifficultyScore,
						EstimatedTimeMin:     tags.EstimatedTimeMin,
						AdaptationWeight:     1.0,
						AverageSuccessRate:   0.75,
						MethodTags:           tags.MethodTags,
						ExcludedMethods:      tags.ExcludedMethods,
						PrerequisiteConcepts: doc.Prerequisites,
						LearningObjectives:   doc.LearningObjectives,
						CommonErrors:         curriculum.CommonErrors(topic.Key, tags.Subtopic),
						SolutionApproach:     tags.SolutionApproach,
						HasWorkedSolution:    tags.HasWorkedSolution,
						HasHints:             tags.HasHints,
						MediaType:            tags.MediaType,
					})
				}
			}
		}
	}
	return chunks, nil
}
