package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (e *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, append([]string(nil), texts...))
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 0.5, -1}
	}
	return out, nil
}

func openTestDB(t *testing.T) *EmbeddingCache {
	t.Helper()
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEmbeddingCache(&countingEmbedder{}, db, "test-model")
}

func TestEmbeddingCache_ForwardsOnlyMisses(t *testing.T) {
	inner := &countingEmbedder{}
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()
	c := NewEmbeddingCache(inner, db, "m")
	ctx := context.Background()

	first, err := c.Embed(ctx, []string{"alpha", "beta", "alpha"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"alpha", "beta"}}, inner.calls)
	assert.Equal(t, first[0], first[2])

	second, err := c.Embed(ctx, []string{"beta", "gamma", "alpha"})
	require.NoError(t, err)
	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"gamma"}, inner.calls[1])
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[2])
	assert.Equal(t, []float32{5, 0.5, -1}, second[1])
}

func TestEmbeddingCache_AllHitsSkipEmbedder(t *testing.T) {
	c := openTestDB(t)
	ctx := context.Background()

	_, err := c.Embed(ctx, []string{"x"})
	require.NoError(t, err)
	inner := c.inner.(*countingEmbedder)
	require.Len(t, inner.calls, 1)

	got, err := c.Embed(ctx, []string{"x", "x"})
	require.NoError(t, err)
	assert.Len(t, inner.calls, 1)
	assert.Len(t, got, 2)
}

func TestEmbeddingCache_NamespacesAreSeparate(t *testing.T) {
	inner := &countingEmbedder{}
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = NewEmbeddingCache(inner, db, "model-a").Embed(ctx, []string{"same"})
	require.NoError(t, err)
	_, err = NewEmbeddingCache(inner, db, "model-b").Embed(ctx, []string{"same"})
	require.NoError(t, err)
	assert.Len(t, inner.calls, 2)
}

func TestEmbeddingCache_EmbedderErrorPassesThrough(t *testing.T) {
	boom := errors.New("quota exceeded")
	db, err := Open("")
	require.NoError(t, err)
	defer db.Close()
	c := NewEmbeddingCache(&countingEmbedder{err: boom}, db, "m")

	_, err = c.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
}

func TestEmbeddingCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	require.NoError(t, err)
	first := &countingEmbedder{}
	_, err = NewEmbeddingCache(first, db, "m").Embed(ctx, []string{"kept"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	second := &countingEmbedder{}
	got, err := NewEmbeddingCache(second, db, "m").Embed(ctx, []string{"kept"})
	require.NoError(t, err)
	assert.Empty(t, second.calls)
	assert.Equal(t, []float32{4, 0.5, -1}, got[0])
}

func TestEncodeDecode(t *testing.T) {
	vec := []float32{0, 1.5, -2.25}
	got, ok := decode(encode(vec))
	require.True(t, ok)
	assert.Equal(t, vec, got)

	_, ok = decode([]byte{1, 2, 3})
	assert.False(t, ok)
}
