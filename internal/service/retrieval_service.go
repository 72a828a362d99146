package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/pkg/logger"
	"github.com/malharwork/agneez-poc/pkg/monitoring"
	"github.com/malharwork/agneez-poc/pkg/vectorstore"
)

// VectorIndex is the slice of the vector client the retrieval path needs.
type VectorIndex interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Match, error)
}

// MetadataFilter is the student context applied to every search.
type MetadataFilter struct {
	Grade            int
	Board            model.Board
	Language         model.Language
	Subtopic         string
	MethodPreference string
	ExcludeMethods   []string
	DifficultyRange  map[string]interface{}
}

// Wire translates the filter into index predicates.
func (f MetadataFilter) Wire() vectorstore.Filter {
	out := vectorstore.Filter{
		"grade": strconv.Itoa(f.Grade),
		"board": string(f.Board),
	}
	if f.Language != "" {
		out["language"] = string(f.Language)
	}
	if f.Subtopic != "" {
		out["subtopic"] = f.Subtopic
	}
	if f.MethodPreference != "" {
		out["method_tags"] = vectorstore.In(f.MethodPreference)
	}
	if len(f.ExcludeMethods) > 0 {
		out["excluded_methods"] = vectorstore.NotIn(f.ExcludeMethods...)
	}
	if f.DifficultyRange != nil {
		out["difficulty_score"] = f.DifficultyRange
	}
	return out
}

// Relaxed keeps only board and grade, the floor every result must satisfy.
func (f MetadataFilter) Relaxed() vectorstore.Filter {
	return vectorstore.Filter{
		"grade": strconv.Itoa(f.Grade),
		"board": string(f.Board),
	}
}

// Answer is the response to a tutoring question.
type Answer struct {
	Answer        string                 `json:"answer"`
	Topic         string                 `json:"topic"`
	ContentUsed   []ContentRef           `json:"contentUsed,omitempty"`
	FilterApplied map[string]interface{} `json:"filterApplied"`
	FilterRelaxed bool                   `json:"filterRelaxed"`
	ResultsCount  int                    `json:"resultsCount"`
	Suggestions   []string               `json:"suggestions,omitempty"`
}

// ContentRef describes one retrieved chunk without its full text.
type ContentRef struct {
	ContentID       string   `json:"contentId"`
	Subtopic        string   `json:"subtopic"`
	SubMethod       string   `json:"subMethod"`
	MethodTags      []string `json:"methodTags"`
	DifficultyScore float64  `json:"difficultyScore"`
	ContentType     string   `json:"contentType"`
	Score           float64  `json:"score"`
}

const (
	answerTopK           = 5
	adaptiveTopK         = 10
	adaptiveKeep         = 5
	adaptiveFallbackKeep = 3
)

// RetrievalService runs metadata-filtered vector search and hands the
// retrieved context to the generator.
type RetrievalService struct {
	indexes   map[string]VectorIndex
	embedder  Embedder
	generator Generator
}

func NewRetrievalService(indexes map[string]VectorIndex, embedder Embedder, generator Generator) *RetrievalService {
	return &RetrievalService{
		indexes:   indexes,
		embedder:  embedder,
		generator: generator,
	}
}

func (s *RetrievalService) index(topicKey string) (curriculum.Topic, VectorIndex, error) {
	topic, ok := curriculum.TopicByKey(topicKey)
	if !ok {
		return curriculum.Topic{}, nil, fmt.Errorf("unknown topic %q", topicKey)
	}
	idx, ok := s.indexes[topic.Index]
	if !ok {
		return curriculum.Topic{}, nil, fmt.Errorf("no vector index configured for %q", topic.Index)
	}
	return topic, idx, nil
}

// AnswerQuestion retrieves context under the full filter, relaxes to board
// and grade once when nothing matches, and falls back to suggested questions
// when even the relaxed search is empty.
func (s *RetrievalService) AnswerQuestion(ctx context.Context, question, topicKey string, filter MetadataFilter) (*Answer, error) {
	topic, idx, err := s.index(topicKey)
	if err != nil {
		return nil, err
	}

	applied := map[string]interface{}(filter.Wire())

	// Embedding or index trouble degrades to the suggestion payload; the
	// student still gets a usable response.
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		logger.Log.Error("question embedding failed", zap.String("topic", topicKey), zap.Error(err))
		return s.degradedAnswer(topicKey, filter, applied, false), nil
	}

	relaxed := false
	matches, err := idx.Query(ctx, topic.Namespace, vector, answerTopK, filter.Wire())
	if err != nil {
		logger.Log.Error("vector search failed", zap.String("topic", topicKey), zap.Error(err))
		return s.degradedAnswer(topicKey, filter, applied, false), nil
	}
	if len(matches) == 0 {
		relaxed = true
		matches, err = idx.Query(ctx, topic.Namespace, vector, answerTopK, filter.Relaxed())
		if err != nil {
			logger.Log.Error("relaxed vector search failed", zap.String("topic", topicKey), zap.Error(err))
			return s.degradedAnswer(topicKey, filter, applied, true), nil
		}
	}

	if len(matches) == 0 {
		return s.degradedAnswer(topicKey, filter, applied, true), nil
	}

	if relaxed {
		monitoring.RetrievalQueries.WithLabelValues(topicKey, "relaxed").Inc()
	} else {
		monitoring.RetrievalQueries.WithLabelValues(topicKey, "filtered").Inc()
	}

	refs := make([]ContentRef, len(matches))
	contextParts := make([]string, len(matches))
	methodSet := map[string]bool{}
	typeSet := map[string]bool{}

	for i, m := range matches {
		c := model.ChunkFromMetadata(m.ID, m.Metadata)
		contextParts[i] = c.Text
		refs[i] = ContentRef{
			ContentID:       c.ID,
			Subtopic:        c.Subtopic,
			SubMethod:       c.SubMethod,
			MethodTags:      c.MethodTags,
			DifficultyScore: c.DifficultyScore,
			ContentType:     string(c.ContentType),
			Score:           m.Score,
		}
		for _, t := range c.MethodTags {
			methodSet[t] = true
		}
		typeSet[string(c.ContentType)] = true
	}

	answer, err := s.generator.GenerateAnswer(ctx, AnswerPrompt{
		Question:     question,
		Context:      strings.Join(contextParts, "\n\n"),
		Grade:        filter.Grade,
		Board:        filter.Board,
		Language:     filter.Language,
		MethodTags:   keys(methodSet),
		ContentTypes: keys(typeSet),
	})
	if err != nil {
		logger.Log.Error("answer generation failed", zap.String("topic", topicKey), zap.Error(err))
		answer = answerFallback
	}

	return &Answer{
		Answer:        answer,
		Topic:         topicKey,
		ContentUsed:   refs,
		FilterApplied: applied,
		FilterRelaxed: relaxed,
		ResultsCount:  len(matches),
	}, nil
}

func (s *RetrievalService) degradedAnswer(topicKey string, filter MetadataFilter, applied map[string]interface{}, relaxed bool) *Answer {
	monitoring.RetrievalQueries.WithLabelValues(topicKey, "empty").Inc()
	return &Answer{
		Answer:        "I couldn't find relevant content for your query with the specified filters.",
		Topic:         topicKey,
		FilterApplied: applied,
		FilterRelaxed: relaxed,
		Suggestions:   curriculum.Suggestions(topicKey, filter.Subtopic, filter.Grade, string(filter.Board)),
	}
}

// AdaptiveContent picks content matched to recent performance. Weak
// performance caps difficulty, strong performance raises the floor, and the
// final cut keeps one chunk per content type before filling up to the limit.
func (s *RetrievalService) AdaptiveContent(ctx context.Context, topicKey string, performance float64, filter MetadataFilter) ([]*model.ContentChunk, []string, error) {
	topic, idx, err := s.index(topicKey)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case performance < 0.4:
		filter.DifficultyRange = vectorstore.Lte(2)
	case performance > 0.8:
		filter.DifficultyRange = vectorstore.Gte(3)
	default:
		filter.DifficultyRange = vectorstore.Between(2, 4)
	}

	query := fmt.Sprintf("Practice problems for %s matched to the student's level", topicKey)
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("embed adaptive query: %w", err)
	}

	matches, err := idx.Query(ctx, topic.Namespace, vector, adaptiveTopK, filter.Wire())
	if err != nil {
		return nil, nil, fmt.Errorf("adaptive search: %w", err)
	}
	if len(matches) == 0 {
		// The band may exclude everything the namespace holds at this
		// grade. Retry without it and serve the top few rather than
		// nothing.
		filter.DifficultyRange = nil
		matches, err = idx.Query(ctx, topic.Namespace, vector, adaptiveTopK, filter.Wire())
		if err != nil {
			return nil, nil, fmt.Errorf("adaptive fallback search: %w", err)
		}
		if len(matches) > adaptiveFallbackKeep {
			matches = matches[:adaptiveFallbackKeep]
		}
	}

	chunks := make([]*model.ContentChunk, len(matches))
	for i, m := range matches {
		chunks[i] = model.ChunkFromMetadata(m.ID, m.Metadata)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].DifficultyScore != chunks[j].DifficultyScore {
			return chunks[i].DifficultyScore < chunks[j].DifficultyScore
		}
		return chunks[i].AdaptationWeight > chunks[j].AdaptationWeight
	})

	selected := make([]*model.ContentChunk, 0, adaptiveKeep)
	typesSeen := map[string]bool{}
	for _, c := range chunks {
		ct := string(c.ContentType)
		if !typesSeen[ct] || len(selected) < adaptiveKeep {
			selected = append(selected, c)
			typesSeen[ct] = true
		}
		if len(selected) == adaptiveKeep {
			break
		}
	}
	return selected, keys(typesSeen), nil
}

// MethodContent finds chunks teaching one solving method, grouped by
// subtopic.
func (s *RetrievalService) MethodContent(ctx context.Context, topicKey, methodTag string, filter MetadataFilter) (map[string][]*model.ContentChunk, error) {
	topic, idx, err := s.index(topicKey)
	if err != nil {
		return nil, err
	}

	filter.MethodPreference = methodTag
	query := fmt.Sprintf("Learn %s using %s method", topicKey, methodTag)
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed method query: %w", err)
	}

	matches, err := idx.Query(ctx, topic.Namespace, vector, adaptiveTopK, filter.Wire())
	if err != nil {
		return nil, fmt.Errorf("method search: %w", err)
	}

	grouped := map[string][]*model.ContentChunk{}
	for _, m := range matches {
		c := model.ChunkFromMetadata(m.ID, m.Metadata)
		key := c.Subtopic
		if key == "" {
			key = "general"
		}
		grouped[key] = append(grouped[key], c)
	}
	return grouped, nil
}

// PrerequisiteContent finds chunks that build on any of the given concepts.
func (s *RetrievalService) PrerequisiteContent(ctx context.Context, topicKey string, concepts []string, filter MetadataFilter) ([]*model.ContentChunk, error) {
	topic, idx, err := s.index(topicKey)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("Content requiring %s", strings.Join(concepts, ", "))
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed prerequisite query: %w", err)
	}

	wired := filter.Relaxed()
	wired["prerequisite_concepts"] = vectorstore.In(concepts...)

	matches, err := idx.Query(ctx, topic.Namespace, vector, adaptiveTopK, wired)
	if err != nil {
		return nil, fmt.Errorf("prerequisite search: %w", err)
	}

	chunks := make([]*model.ContentChunk, len(matches))
	for i, m := range matches {
		chunks[i] = model.ChunkFromMetadata(m.ID, m.Metadata)
	}
	return chunks, nil
}

// RecordContentPerformance notes how a piece of content performed. The
// vector metadata is not rewritten yet; the signal is logged so adaptation
// weights can be recomputed offline.
// TODO: fold these signals back into adaptation_weight during a periodic
// re-index.
func (s *RetrievalService) RecordContentPerformance(contentID string, success bool, errorType string, timeTaken int) {
	logger.Log.Info("content performance recorded",
		zap.String("contentId", contentID),
		zap.Bool("success", success),
		zap.String("errorType", errorType),
		zap.Int("timeTakenMin", timeTaken))
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
