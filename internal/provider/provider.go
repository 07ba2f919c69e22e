// Package provider defines the contracts for the external models the
// detection engine relies on. Every method is batched so callers can issue
// one call per paragraph rather than one per unit.
package provider

import (
	"context"

	"github.com/agenthands/factcheck/internal/core/model"
)

// Embedder turns texts into vectors. It must be deterministic for identical
// input within a run.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LexicalScorer returns a len(a) x len(b) matrix of n-gram similarities in [0,1].
type LexicalScorer interface {
	LexicalSimilarity(ctx context.Context, a, b []string) ([][]float64, error)
}

// PhraseExtractor splits text into sentences, noun phrases and entity mentions.
type PhraseExtractor interface {
	Extract(ctx context.Context, text string) (model.Extraction, error)
}

// NLI scores whether premise entails, is neutral to, or contradicts hypothesis.
type NLI interface {
	Entailment(ctx context.Context, premise, hypothesis string) (model.EntailmentProbs, error)
}

// Set bundles the providers an evaluator needs.
type Set struct {
	Embedder  Embedder
	Lexical   LexicalScorer
	Extractor PhraseExtractor
	NLI       NLI
}

// Missing returns the names of unset providers.
func (s Set) Missing() []string {
	var out []string
	if s.Embedder == nil {
		out = append(out, "embedder")
	}
	if s.Lexical == nil {
		out = append(out, "lexical")
	}
	if s.Extractor == nil {
		out = append(out, "extractor")
	}
	if s.NLI == nil {
		out = append(out, "nli")
	}
	return out
}
