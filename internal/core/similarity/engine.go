// Package similarity scores how closely two sets of semantic units agree,
// combining embedding, lexical and token-overlap views.
package similarity

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

// Engine compares unit sets using an embedder and a lexical scorer.
type Engine struct {
	Embedder  provider.Embedder
	Lexical   provider.LexicalScorer
	Weights   config.SimilarityWeights
	UnitMatch float64
}

func NewEngine(embedder provider.Embedder, lexical provider.LexicalScorer, weights config.SimilarityWeights, unitMatch float64) *Engine {
	return &Engine{
		Embedder:  embedder,
		Lexical:   lexical,
		Weights:   weights,
		UnitMatch: unitMatch,
	}
}

// Compare embeds both unit sets and scores them.
func (e *Engine) Compare(ctx context.Context, src, tgt []model.SemanticUnit) (model.SimilarityTriple, error) {
	if len(src) == 0 || len(tgt) == 0 {
		return model.SimilarityTriple{Degenerate: true}, nil
	}
	srcVecs, err := e.embed(ctx, texts(src))
	if err != nil {
		return model.SimilarityTriple{}, err
	}
	tgtVecs, err := e.embed(ctx, texts(tgt))
	if err != nil {
		return model.SimilarityTriple{}, err
	}
	return e.CompareEmbedded(ctx, src, tgt, srcVecs, tgtVecs)
}

// CompareEmbedded scores two unit sets whose embeddings are already known.
// srcVecs[i] must be the embedding of src[i].
func (e *Engine) CompareEmbedded(ctx context.Context, src, tgt []model.SemanticUnit, srcVecs, tgtVecs [][]float32) (model.SimilarityTriple, error) {
	if len(src) == 0 || len(tgt) == 0 {
		return model.SimilarityTriple{Degenerate: true}, nil
	}
	if len(srcVecs) != len(src) || len(tgtVecs) != len(tgt) {
		return model.SimilarityTriple{}, eris.Wrap(
			provider.Unavailable("embedder", eris.Errorf("got %d/%d vectors for %d/%d units", len(srcVecs), len(tgtVecs), len(src), len(tgt))),
			"similarity: embedding shape")
	}
	a, b := texts(src), texts(tgt)

	cos := cosineMatrix(srcVecs, tgtVecs)
	lex, err := e.lexical(ctx, a, b)
	if err != nil {
		return model.SimilarityTriple{}, err
	}

	t := model.SimilarityTriple{
		Embedding: bidirectional(cos),
		Lexical:   bidirectional(lex),
		Overlap:   jaccard(a, b),
	}
	w := e.Weights
	if total := w.Embedding + w.Lexical + w.Overlap; total > 0 {
		t.Combined = clamp01((w.Embedding*t.Embedding + w.Lexical*t.Lexical + w.Overlap*t.Overlap) / total)
	}

	cells := e.cells(cos, lex)
	for i, u := range src {
		if rowMax(cells, i) < e.UnitMatch {
			t.MissingUnits = append(t.MissingUnits, u.Text)
		}
	}
	for j, u := range tgt {
		if colMax(cells, j) < e.UnitMatch {
			t.ExtraUnits = append(t.ExtraUnits, u.Text)
		}
	}
	return t, nil
}

// PhraseMatrix returns the per-cell similarity of two phrase lists, blending
// embedding and lexical scores the same way unit matching does. Vectors may
// be nil, in which case the phrases are embedded here.
func (e *Engine) PhraseMatrix(ctx context.Context, a, b []string, aVecs, bVecs [][]float32) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}
	var err error
	if aVecs == nil {
		if aVecs, err = e.embed(ctx, a); err != nil {
			return nil, err
		}
	}
	if bVecs == nil {
		if bVecs, err = e.embed(ctx, b); err != nil {
			return nil, err
		}
	}
	if len(aVecs) != len(a) || len(bVecs) != len(b) {
		return nil, eris.Wrap(provider.Unavailable("embedder", eris.New("vector count mismatch")), "similarity: phrase embedding shape")
	}
	lex, err := e.lexical(ctx, a, b)
	if err != nil {
		return nil, err
	}
	return e.cells(cosineMatrix(aVecs, bVecs), lex), nil
}

func (e *Engine) embed(ctx context.Context, in []string) ([][]float32, error) {
	vecs, err := e.Embedder.Embed(ctx, in)
	if err != nil {
		return nil, eris.Wrap(provider.Unavailable("embedder", err), "similarity: embed units")
	}
	if len(vecs) != len(in) {
		return nil, eris.Wrap(provider.Unavailable("embedder", eris.Errorf("got %d vectors for %d texts", len(vecs), len(in))), "similarity: embed units")
	}
	return vecs, nil
}

func (e *Engine) lexical(ctx context.Context, a, b []string) ([][]float64, error) {
	m, err := e.Lexical.LexicalSimilarity(ctx, a, b)
	if err != nil {
		return nil, eris.Wrap(provider.Unavailable("lexical", err), "similarity: lexical scores")
	}
	if len(m) != len(a) {
		return nil, eris.Wrap(provider.Unavailable("lexical", eris.Errorf("got %d rows for %d texts", len(m), len(a))), "similarity: lexical scores")
	}
	for i := range m {
		if len(m[i]) != len(b) {
			return nil, eris.Wrap(provider.Unavailable("lexical", eris.Errorf("row %d has %d columns, want %d", i, len(m[i]), len(b))), "similarity: lexical scores")
		}
		for j := range m[i] {
			m[i][j] = clamp01(m[i][j])
		}
	}
	return m, nil
}

// cells blends cosine and lexical matrices into unit-level match scores.
func (e *Engine) cells(cos, lex [][]float64) [][]float64 {
	wE, wL := e.Weights.Embedding, e.Weights.Lexical
	out := make([][]float64, len(cos))
	for i := range cos {
		out[i] = make([]float64, len(cos[i]))
		for j := range cos[i] {
			if wE+wL > 0 {
				out[i][j] = (wE*cos[i][j] + wL*lex[i][j]) / (wE + wL)
			}
		}
	}
	return out
}

func cosineMatrix(a, b [][]float32) [][]float64 {
	m := make([][]float64, len(a))
	for i := range a {
		m[i] = make([]float64, len(b))
		for j := range b {
			m[i][j] = clamp01(nlp.CosineSimilarity(a[i], b[j]))
		}
	}
	return m
}

// bidirectional averages the mean row maximum and the mean column maximum.
func bidirectional(m [][]float64) float64 {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0
	}
	var fwd, bwd float64
	for i := range m {
		fwd += rowMax(m, i)
	}
	for j := range m[0] {
		bwd += colMax(m, j)
	}
	return clamp01((fwd/float64(len(m)) + bwd/float64(len(m[0]))) / 2)
}

func rowMax(m [][]float64, i int) float64 {
	best := 0.0
	for _, v := range m[i] {
		if v > best {
			best = v
		}
	}
	return best
}

func colMax(m [][]float64, j int) float64 {
	best := 0.0
	for i := range m {
		if m[i][j] > best {
			best = m[i][j]
		}
	}
	return best
}

// jaccard compares the token sets of two unit lists.
func jaccard(a, b []string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0
	}
	inter := 0
	for t := range sa {
		if sb[t] {
			inter++
		}
	}
	return float64(inter) / float64(len(sa)+len(sb)-inter)
}

func tokenSet(texts []string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range texts {
		for _, tok := range nlp.Tokenize(t) {
			set[tok] = true
		}
	}
	return set
}

func texts(units []model.SemanticUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
