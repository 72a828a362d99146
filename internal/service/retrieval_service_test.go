package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/pkg/logger"
	"github.com/malharwork/agneez-poc/pkg/vectorstore"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeIndex struct {
	// results per call, consumed in order; the last entry repeats.
	results [][]vectorstore.Match
	filters []vectorstore.Filter
	calls   int
}

func (f *fakeIndex) Query(_ context.Context, _ string, _ []float32, _ int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	f.filters = append(f.filters, filter)
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	if len(f.results) == 0 {
		return nil, nil
	}
	return f.results[i], nil
}

type fakeGenerator struct {
	prompt AnswerPrompt
	err    error
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, p AnswerPrompt) (string, error) {
	f.prompt = p
	if f.err != nil {
		return "", f.err
	}
	return "generated answer", nil
}

func match(id string, score float64, meta map[string]interface{}) vectorstore.Match {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	if _, ok := meta["text"]; !ok {
		meta["text"] = "chunk text for " + id
	}
	return vectorstore.Match{ID: id, Score: score, Metadata: meta}
}

func newRetrieval(idx *fakeIndex, gen *fakeGenerator) *RetrievalService {
	return NewRetrievalService(map[string]VectorIndex{
		"math_index":    idx,
		"science_index": idx,
	}, fakeEmbedder{}, gen)
}

func baseFilter() MetadataFilter {
	return MetadataFilter{
		Grade:    10,
		Board:    model.CBSE,
		Language: model.English,
	}
}

func TestAnswerQuestionFullFilterHit(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{{
		match("c1", 0.9, map[string]interface{}{
			"subtopic":     "factorization_method",
			"method_tags":  []interface{}{"factorization"},
			"content_type": "worked_example",
		}),
	}}}
	gen := &fakeGenerator{}
	svc := newRetrieval(idx, gen)

	filter := baseFilter()
	filter.Subtopic = "factorization_method"

	ans, err := svc.AnswerQuestion(context.Background(), "how do I factor?", "quadratic_equations", filter)
	require.NoError(t, err)

	assert.Equal(t, "generated answer", ans.Answer)
	assert.False(t, ans.FilterRelaxed)
	assert.Equal(t, 1, ans.ResultsCount)
	assert.Empty(t, ans.Suggestions)
	require.Len(t, ans.ContentUsed, 1)
	assert.Equal(t, "c1", ans.ContentUsed[0].ContentID)

	require.Len(t, idx.filters, 1)
	assert.Equal(t, "factorization_method", idx.filters[0]["subtopic"])
	assert.Equal(t, "10", idx.filters[0]["grade"])

	assert.Contains(t, gen.prompt.MethodTags, "factorization")
	assert.Contains(t, gen.prompt.Context, "chunk text for c1")
}

func TestAnswerQuestionRelaxesOnce(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{
		{}, // strict filter finds nothing
		{match("c2", 0.5, nil)},
	}}
	svc := newRetrieval(idx, &fakeGenerator{})

	filter := baseFilter()
	filter.Subtopic = "formula_method"
	filter.MethodPreference = "quadratic_formula"

	ans, err := svc.AnswerQuestion(context.Background(), "what is the formula?", "quadratic_equations", filter)
	require.NoError(t, err)

	assert.True(t, ans.FilterRelaxed)
	assert.Equal(t, 1, ans.ResultsCount)

	require.Len(t, idx.filters, 2)
	// The relaxed filter must keep only board and grade.
	relaxed := idx.filters[1]
	assert.Len(t, map[string]interface{}(relaxed), 2)
	assert.Equal(t, "CBSE", relaxed["board"])
	assert.Equal(t, "10", relaxed["grade"])
}

func TestAnswerQuestionEmptyReturnsSuggestions(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{{}, {}}}
	svc := newRetrieval(idx, &fakeGenerator{})

	filter := baseFilter()
	filter.Subtopic = "factorization_method"

	ans, err := svc.AnswerQuestion(context.Background(), "anything", "quadratic_equations", filter)
	require.NoError(t, err)

	assert.True(t, ans.FilterRelaxed)
	assert.Zero(t, ans.ResultsCount)
	assert.NotEmpty(t, ans.Suggestions)
	assert.Contains(t, ans.Suggestions, "How do I factor x² + 5x + 6?")
	assert.Contains(t, ans.Answer, "couldn't find relevant content")
}

func TestAnswerQuestionGeneratorFailureFallsBack(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{{match("c1", 0.9, nil)}}}
	svc := newRetrieval(idx, &fakeGenerator{err: fmt.Errorf("model overloaded")})

	ans, err := svc.AnswerQuestion(context.Background(), "q", "quadratic_equations", baseFilter())
	require.NoError(t, err)
	assert.Equal(t, answerFallback, ans.Answer)
	assert.Equal(t, 1, ans.ResultsCount)
}

func TestAnswerQuestionUnknownTopic(t *testing.T) {
	svc := newRetrieval(&fakeIndex{}, &fakeGenerator{})

	_, err := svc.AnswerQuestion(context.Background(), "q", "astronomy", baseFilter())
	assert.ErrorContains(t, err, "unknown topic")
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("embedding service unavailable")
}

func (failingEmbedder) EmbedTexts(_ context.Context, _ []string) ([][]float32, error) {
	return nil, fmt.Errorf("embedding service unavailable")
}

func TestAnswerQuestionEmbedFailureDegrades(t *testing.T) {
	svc := NewRetrievalService(map[string]VectorIndex{
		"math_index": &fakeIndex{},
	}, failingEmbedder{}, &fakeGenerator{})

	ans, err := svc.AnswerQuestion(context.Background(), "q", "quadratic_equations", baseFilter())
	require.NoError(t, err)
	assert.Zero(t, ans.ResultsCount)
	assert.NotEmpty(t, ans.Suggestions)
	// Failing before any relaxed query ran, the flag must stay false.
	assert.False(t, ans.FilterRelaxed)
}

func TestAdaptiveContentBandEmptyFallsBack(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{
		{}, // the difficulty band matches nothing
		{
			match("c1", 0.9, nil),
			match("c2", 0.8, nil),
			match("c3", 0.7, nil),
			match("c4", 0.6, nil),
		},
	}}
	svc := newRetrieval(idx, &fakeGenerator{})

	selected, _, err := svc.AdaptiveContent(context.Background(), "quadratic_equations", 0.2, baseFilter())
	require.NoError(t, err)
	assert.Len(t, selected, 3)

	require.Len(t, idx.filters, 2)
	assert.Contains(t, idx.filters[0], "difficulty_score")
	assert.NotContains(t, idx.filters[1], "difficulty_score")
}

func TestAdaptiveContentDifficultyBands(t *testing.T) {
	cases := []struct {
		performance float64
		want        map[string]interface{}
	}{
		{0.2, map[string]interface{}{"$lte": 2.0}},
		{0.9, map[string]interface{}{"$gte": 3.0}},
		{0.5, map[string]interface{}{"$gte": 2.0, "$lte": 4.0}},
	}

	for _, c := range cases {
		idx := &fakeIndex{results: [][]vectorstore.Match{{}}}
		svc := newRetrieval(idx, &fakeGenerator{})

		_, _, err := svc.AdaptiveContent(context.Background(), "quadratic_equations", c.performance, baseFilter())
		require.NoError(t, err)
		require.Len(t, idx.filters, 1)
		assert.Equal(t, c.want, idx.filters[0]["difficulty_score"], "performance %v", c.performance)
	}
}

func TestAdaptiveContentSortAndDiversity(t *testing.T) {
	mk := func(id string, difficulty, weight float64, contentType string) vectorstore.Match {
		return match(id, 0.8, map[string]interface{}{
			"difficulty_score":  difficulty,
			"adaptation_weight": weight,
			"content_type":      contentType,
		})
	}

	idx := &fakeIndex{results: [][]vectorstore.Match{{
		mk("hard", 4, 1.0, "theory"),
		mk("easy-low", 2, 0.5, "practice_problem"),
		mk("easy-high", 2, 1.5, "practice_problem"),
		mk("mid", 3, 1.0, "worked_example"),
	}}}
	svc := newRetrieval(idx, &fakeGenerator{})

	selected, types, err := svc.AdaptiveContent(context.Background(), "quadratic_equations", 0.5, baseFilter())
	require.NoError(t, err)

	// Ascending difficulty, heavier adaptation weight first within a tie.
	require.Len(t, selected, 4)
	assert.Equal(t, "easy-high", selected[0].ID)
	assert.Equal(t, "easy-low", selected[1].ID)
	assert.Equal(t, "mid", selected[2].ID)
	assert.Equal(t, "hard", selected[3].ID)
	assert.ElementsMatch(t, []string{"practice_problem", "worked_example", "theory"}, types)
}

func TestAdaptiveContentCapsAtFive(t *testing.T) {
	var matches []vectorstore.Match
	for i := 0; i < 10; i++ {
		matches = append(matches, match(fmt.Sprintf("c%d", i), 0.8, map[string]interface{}{
			"difficulty_score": float64(i%3 + 2),
			"content_type":     "practice_problem",
		}))
	}
	idx := &fakeIndex{results: [][]vectorstore.Match{matches}}
	svc := newRetrieval(idx, &fakeGenerator{})

	selected, _, err := svc.AdaptiveContent(context.Background(), "quadratic_equations", 0.5, baseFilter())
	require.NoError(t, err)
	assert.Len(t, selected, 5)
}

func TestMethodContentGroupsBySubtopic(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{{
		match("a", 0.9, map[string]interface{}{"subtopic": "factorization_method"}),
		match("b", 0.8, map[string]interface{}{"subtopic": "factorization_method"}),
		match("c", 0.7, map[string]interface{}{"subtopic": "applications"}),
		match("d", 0.6, nil),
	}}}
	svc := newRetrieval(idx, &fakeGenerator{})

	filter := baseFilter()
	filter.ExcludeMethods = []string{"complex_numbers"}

	grouped, err := svc.MethodContent(context.Background(), "quadratic_equations", "factorization", filter)
	require.NoError(t, err)

	assert.Len(t, grouped["factorization_method"], 2)
	assert.Len(t, grouped["applications"], 1)
	assert.Len(t, grouped["general"], 1)

	require.Len(t, idx.filters, 1)
	assert.Equal(t, map[string]interface{}{"$in": []interface{}{"factorization"}}, idx.filters[0]["method_tags"])
	assert.Equal(t, map[string]interface{}{"$nin": []interface{}{"complex_numbers"}}, idx.filters[0]["excluded_methods"])
}

func TestPrerequisiteContentFilter(t *testing.T) {
	idx := &fakeIndex{results: [][]vectorstore.Match{{match("p1", 0.9, nil)}}}
	svc := newRetrieval(idx, &fakeGenerator{})

	chunks, err := svc.PrerequisiteContent(context.Background(), "quadratic_equations",
		[]string{"basic_algebra", "square_roots"}, baseFilter())
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	require.Len(t, idx.filters, 1)
	assert.Equal(t, map[string]interface{}{
		"$in": []interface{}{"basic_algebra", "square_roots"},
	}, idx.filters[0]["prerequisite_concepts"])
}
