package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malharwork/agneez-poc/internal/model"
)

func TestPathLowMasteryStays(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("quadratic_equations", 10, model.CBSE, "factorization_method", 0.5)
	require.NoError(t, err)

	assert.Equal(t, "Continue practicing current topic", path.Recommendation)
	require.Len(t, path.NextSteps, 1)
	assert.Equal(t, "factorization_method", path.NextSteps[0].Subtopic)
	assert.Equal(t, "practice_problems", path.NextSteps[0].Focus)
	assert.InDelta(t, -0.5, path.NextSteps[0].DifficultyAdjustment, 1e-9)
	assert.Empty(t, path.Remediation)
}

func TestPathHighMasteryAdvances(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("quadratic_equations", 10, model.CBSE, "factorization_method", 0.85)
	require.NoError(t, err)

	assert.Equal(t, "Progress to completing_square", path.Recommendation)
	require.Len(t, path.NextSteps, 1)
	assert.Equal(t, "completing_square", path.NextSteps[0].Subtopic)
	assert.Equal(t, "introduction", path.NextSteps[0].Focus)
	assert.Equal(t, []string{"factorization_method", "algebraic_manipulation"},
		path.NextSteps[0].PrerequisitesToReview)
}

func TestPathEndOfSequenceEnriches(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("quadratic_equations", 12, model.ICSE, "applications", 0.9)
	require.NoError(t, err)

	assert.Equal(t, "Explore advanced applications", path.Recommendation)
	require.Len(t, path.NextSteps, 1)
	assert.Equal(t, "applications", path.NextSteps[0].Subtopic)
	assert.Equal(t, "advanced_problems", path.NextSteps[0].Focus)
	assert.InDelta(t, 0.5, path.NextSteps[0].DifficultyAdjustment, 1e-9)
}

func TestPathVeryLowMasteryAddsRemediation(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("quadratic_equations", 9, model.SSC, "completing_square", 0.3)
	require.NoError(t, err)

	assert.Equal(t, "Continue practicing current topic", path.Recommendation)
	assert.Equal(t, []string{"factorization_method", "algebraic_manipulation"}, path.Remediation)
}

func TestPathFirstSubtopicHasNoRemediation(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("digestive_system", 6, model.CBSE, "anatomy_structure", 0.2)
	require.NoError(t, err)

	// The opening subtopic has no prerequisites to fall back to.
	assert.Empty(t, path.Remediation)
}

func TestPathEmptySubtopicDefaultsToFirst(t *testing.T) {
	svc := NewPathService()

	path, err := svc.GeneratePath("digestive_system", 7, model.CBSE, "", 0.8)
	require.NoError(t, err)

	assert.Equal(t, "anatomy_structure", path.CurrentSubtopic)
	// Position zero with high mastery advances to the second subtopic.
	require.Len(t, path.NextSteps, 1)
	assert.Equal(t, "digestion_process", path.NextSteps[0].Subtopic)
}

func TestPathUnknownTopic(t *testing.T) {
	svc := NewPathService()

	_, err := svc.GeneratePath("astronomy", 9, model.CBSE, "", 0.5)
	assert.ErrorContains(t, err, "unknown topic")
}
