package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

type tableEmbedder map[string][]float32

func (e tableEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e[t]
	}
	return out, nil
}

type exactLexical struct{}

func (exactLexical) LexicalSimilarity(_ context.Context, a, b []string) ([][]float64, error) {
	m := make([][]float64, len(a))
	for i := range a {
		m[i] = make([]float64, len(b))
		for j := range b {
			if a[i] == b[j] {
				m[i][j] = 1
			}
		}
	}
	return m, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection refused")
}

type shortLexical struct{}

func (shortLexical) LexicalSimilarity(context.Context, []string, []string) ([][]float64, error) {
	return [][]float64{}, nil
}

func units(id string, texts ...string) []model.SemanticUnit {
	out := make([]model.SemanticUnit, len(texts))
	for i, t := range texts {
		out[i] = model.SemanticUnit{ParagraphID: id, Text: t, Kind: model.UnitNounPhrase}
	}
	return out
}

func defaultWeights() config.SimilarityWeights {
	return config.Default().Weights.Similarity
}

func TestCompare_IdenticalUnitsScoreOne(t *testing.T) {
	e := NewEngine(nlp.NewHashingEmbedder(nlp.DefaultEmbeddingDim), nlp.NewTFIDFScorer(), defaultWeights(), 0.8)
	u := units("r", "revenue was $2.5m in q4 2023, up 15%", "revenue", "margin")

	got, err := e.Compare(context.Background(), u, units("c", "revenue was $2.5m in q4 2023, up 15%", "revenue", "margin"))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, got.Embedding, 1e-6)
	assert.InDelta(t, 1.0, got.Lexical, 1e-6)
	assert.Equal(t, 1.0, got.Overlap)
	assert.InDelta(t, 1.0, got.Combined, 1e-6)
	assert.False(t, got.Degenerate)
	assert.Empty(t, got.MissingUnits)
	assert.Empty(t, got.ExtraUnits)
}

func TestCompare_MissingAndExtraUnits(t *testing.T) {
	emb := tableEmbedder{
		"revenue": {1, 0, 0},
		"margin":  {0, 1, 0},
		"growth":  {0, 0, 1},
	}
	e := NewEngine(emb, exactLexical{}, defaultWeights(), 0.8)

	got, err := e.Compare(context.Background(), units("r", "revenue", "margin"), units("c", "revenue", "growth"))
	require.NoError(t, err)

	assert.Equal(t, []string{"margin"}, got.MissingUnits)
	assert.Equal(t, []string{"growth"}, got.ExtraUnits)
	assert.InDelta(t, 0.5, got.Embedding, 1e-9)
	assert.InDelta(t, 0.5, got.Lexical, 1e-9)
	assert.InDelta(t, 1.0/3.0, got.Overlap, 1e-9)
	assert.InDelta(t, (0.5*0.5+0.3*0.5+0.2/3.0)/1.0, got.Combined, 1e-9)
}

func TestCompare_NegativeCosineClamped(t *testing.T) {
	emb := tableEmbedder{"up": {1, 0}, "down": {-1, 0}}
	e := NewEngine(emb, exactLexical{}, defaultWeights(), 0.8)

	got, err := e.Compare(context.Background(), units("r", "up"), units("c", "down"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Embedding)
	assert.Equal(t, 0.0, got.Combined)
}

func TestCompare_Degenerate(t *testing.T) {
	e := NewEngine(failingEmbedder{}, exactLexical{}, defaultWeights(), 0.8)

	got, err := e.Compare(context.Background(), nil, units("c", "revenue"))
	require.NoError(t, err)
	assert.True(t, got.Degenerate)
	assert.Zero(t, got.Combined)
}

func TestCompare_ProviderFailures(t *testing.T) {
	e := NewEngine(failingEmbedder{}, exactLexical{}, defaultWeights(), 0.8)
	_, err := e.Compare(context.Background(), units("r", "a"), units("c", "b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnavailable))

	e = NewEngine(tableEmbedder{"a": {1}, "b": {1}}, shortLexical{}, defaultWeights(), 0.8)
	_, err = e.Compare(context.Background(), units("r", "a"), units("c", "b"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnavailable))
}

func TestCompareEmbedded_ShapeMismatch(t *testing.T) {
	e := NewEngine(failingEmbedder{}, exactLexical{}, defaultWeights(), 0.8)
	_, err := e.CompareEmbedded(context.Background(), units("r", "a", "b"), units("c", "a"), [][]float32{{1}}, [][]float32{{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnavailable))
}

func TestPhraseMatrix(t *testing.T) {
	emb := tableEmbedder{
		"announce expansion": {1, 0},
		"improve margin":     {0, 1},
	}
	e := NewEngine(emb, exactLexical{}, defaultWeights(), 0.8)

	m, err := e.PhraseMatrix(context.Background(),
		[]string{"announce expansion", "improve margin"}, []string{"announce expansion"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.InDelta(t, 1.0, m[0][0], 1e-9)
	assert.InDelta(t, 0.0, m[1][0], 1e-9)

	m, err = e.PhraseMatrix(context.Background(), nil, []string{"x"}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}
