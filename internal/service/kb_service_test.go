package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malharwork/agneez-poc/internal/curriculum"
	"github.com/malharwork/agneez-poc/internal/model"
	"github.com/malharwork/agneez-poc/pkg/vectorstore"
)

type fakeNamespace struct {
	counts   map[string]int
	upserted map[string][]vectorstore.Item
}

func newFakeNamespace() *fakeNamespace {
	return &fakeNamespace{
		counts:   map[string]int{},
		upserted: map[string][]vectorstore.Item{},
	}
}

func (f *fakeNamespace) Upsert(_ context.Context, namespace string, items []vectorstore.Item) (int, error) {
	f.upserted[namespace] = append(f.upserted[namespace], items...)
	f.counts[namespace] += len(items)
	return len(items), nil
}

func (f *fakeNamespace) NamespaceCount(_ context.Context, namespace string) (int, error) {
	return f.counts[namespace], nil
}

func newKB(ns *fakeNamespace) *KnowledgeBaseService {
	return NewKnowledgeBaseService(map[string]VectorNamespace{
		"math_index":    ns,
		"science_index": ns,
	}, fakeEmbedder{}, SeedContentSource{})
}

func TestBootstrapPopulatesAllNamespaces(t *testing.T) {
	ns := newFakeNamespace()
	kb := newKB(ns)

	require.NoError(t, kb.EnsurePopulated(context.Background()))

	assert.NotEmpty(t, ns.upserted["algebra_quadratic_equations"])
	assert.NotEmpty(t, ns.upserted["biology_digestive_system"])

	// Every seed section fans out to one chunk per grade in its band, for
	// each of the three boards.
	var mathExpected int
	for _, level := range curriculum.Levels() {
		doc, ok := curriculum.SeedDocumentFor("quadratic_equations", level)
		require.True(t, ok)
		for _, board := range curriculum.Boards() {
			mathExpected += len(doc.Sections) * len(curriculum.GradeMapping(level, board))
		}
	}
	assert.Len(t, ns.upserted["algebra_quadratic_equations"], mathExpected)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	ns := newFakeNamespace()
	kb := newKB(ns)

	require.NoError(t, kb.EnsurePopulated(context.Background()))
	first := len(ns.upserted["algebra_quadratic_equations"])
	require.NotZero(t, first)

	// Second run sees non-empty namespaces and must upsert nothing.
	require.NoError(t, kb.EnsurePopulated(context.Background()))
	assert.Len(t, ns.upserted["algebra_quadratic_equations"], first)
}

func TestBootstrapSkipsAlreadyPopulatedNamespace(t *testing.T) {
	ns := newFakeNamespace()
	ns.counts["algebra_quadratic_equations"] = 42
	kb := newKB(ns)

	require.NoError(t, kb.EnsurePopulated(context.Background()))

	assert.Empty(t, ns.upserted["algebra_quadratic_equations"])
	assert.NotEmpty(t, ns.upserted["biology_digestive_system"])
}

func TestBootstrapChunkMetadata(t *testing.T) {
	ns := newFakeNamespace()
	kb := newKB(ns)

	require.NoError(t, kb.EnsurePopulated(context.Background()))

	var sawFactorization, sawMarathi, sawExcluded bool
	for _, item := range ns.upserted["algebra_quadratic_equations"] {
		require.NotEmpty(t, item.ID)
		require.NotEmpty(t, item.Values)

		c := model.ChunkFromMetadata(item.ID, item.Metadata)
		assert.Equal(t, "quadratic_equations", c.Topic)
		assert.NotZero(t, c.Grade)
		assert.InDelta(t, 1.0, c.AdaptationWeight, 1e-9)

		if c.Subtopic == "factorization_method" {
			sawFactorization = true
		}
		if c.Language == model.Marathi {
			sawMarathi = true
			assert.Equal(t, model.SSC, c.Board)
		}
		if len(c.ExcludedMethods) > 0 {
			sawExcluded = true
		}
	}
	assert.True(t, sawFactorization, "expected factorization_method chunks")
	assert.True(t, sawMarathi, "expected Marathi-tagged SSC chunks")
	assert.True(t, sawExcluded, "expected method exclusions for younger bands")
}
