package nlp

import (
	"context"
	"math"
	"strings"
)

// TFIDFScorer is a local provider.LexicalScorer: cosine similarity over word
// n-gram TF-IDF vectors with smoothed IDF, fitted on the union of both inputs.
type TFIDFScorer struct {
	MaxN int
}

func NewTFIDFScorer() *TFIDFScorer {
	return &TFIDFScorer{MaxN: 2}
}

func (s *TFIDFScorer) LexicalSimilarity(ctx context.Context, a, b []string) ([][]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := make([]map[string]float64, 0, len(a)+len(b))
	df := make(map[string]int)
	for _, text := range append(append([]string{}, a...), b...) {
		tf := make(map[string]float64)
		for _, g := range ngrams(Tokenize(text), s.maxN()) {
			tf[g]++
		}
		for g := range tf {
			df[g]++
		}
		docs = append(docs, tf)
	}

	n := float64(len(docs))
	for _, tf := range docs {
		var norm float64
		for g, c := range tf {
			w := c * (math.Log((1+n)/(1+float64(df[g]))) + 1)
			tf[g] = w
			norm += w * w
		}
		norm = math.Sqrt(norm)
		for g := range tf {
			tf[g] /= norm
		}
	}

	out := make([][]float64, len(a))
	for i := range a {
		out[i] = make([]float64, len(b))
		for j := range b {
			out[i][j] = clamp01(dot(docs[i], docs[len(a)+j]))
		}
	}
	return out, nil
}

func (s *TFIDFScorer) maxN() int {
	if s.MaxN < 1 {
		return 1
	}
	return s.MaxN
}

func ngrams(tokens []string, maxN int) []string {
	var out []string
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for k, v := range a {
		sum += v * b[k]
	}
	return sum
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
