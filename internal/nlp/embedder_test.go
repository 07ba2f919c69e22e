package nlp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewHashingEmbedder(0).Embed(ctx, []string{"revenue grew", "revenue grew", "", "revenue fell"})
	require.NoError(t, err)
	b, err := NewHashingEmbedder(DefaultEmbeddingDim).Embed(ctx, []string{"revenue grew"})
	require.NoError(t, err)

	assert.Len(t, a, 4)
	assert.Len(t, a[0], DefaultEmbeddingDim)
	assert.Equal(t, a[0], b[0])
	assert.InDelta(t, 1.0, CosineSimilarity(a[0], a[1]), 1e-6)
	assert.Equal(t, 0.0, CosineSimilarity(a[0], a[2]))

	sim := CosineSimilarity(a[0], a[3])
	assert.Greater(t, sim, 0.0)
	assert.Less(t, sim, 0.9)
}

func TestHashingEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHashingEmbedder(16).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosineSimilarity_MismatchedLengths(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 0}))
}

func TestTFIDFScorer(t *testing.T) {
	m, err := NewTFIDFScorer().LexicalSimilarity(context.Background(),
		[]string{"revenue grew strongly", "margin fell"},
		[]string{"revenue grew strongly", "weather was sunny", ""})
	require.NoError(t, err)

	require.Len(t, m, 2)
	require.Len(t, m[0], 3)
	assert.InDelta(t, 1.0, m[0][0], 1e-9)
	assert.Equal(t, 0.0, m[0][1])
	assert.Equal(t, 0.0, m[1][2])
	for _, row := range m {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestTFIDFScorer_SharedRareTokenScoresHigher(t *testing.T) {
	m, err := NewTFIDFScorer().LexicalSimilarity(context.Background(),
		[]string{"acme acquired zeta labs"},
		[]string{"zeta labs was acquired", "the company was sold"})
	require.NoError(t, err)
	assert.Greater(t, m[0][0], m[0][1])
}
