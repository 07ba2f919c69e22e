package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Provider names. [providers] entries are local or llm; [llm].provider picks the backend.
const (
	ProviderLocal  = "local"
	ProviderLLM    = "llm"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

// ErrInvalid is returned (wrapped) by Validate.
var ErrInvalid = eris.New("config: invalid configuration")

// Validate checks every threshold and weight. Values are never clamped; all
// problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("thresholds.%s=%g outside [0,1]", name, v))
		}
	}
	t := c.Thresholds
	unit("relevance", t.Relevance)
	unit("contradiction_high", t.ContradictionHigh)
	unit("fact_consistency_low", t.FactConsistencyLow)
	unit("unit_match", t.UnitMatch)
	unit("context", t.Context)
	unit("action_match", t.ActionMatch)
	unit("omission", t.Omission)
	unit("conflict_dominance", t.ConflictDominance)
	unit("extra", t.Extra)
	unit("numeric_tolerance", t.NumericTolerance)
	unit("edge_consistent", t.EdgeConsistent)
	unit("edge_partial", t.EdgePartial)
	if t.ContradictionHigh == 1 {
		errs = append(errs, "thresholds.contradiction_high must be below 1")
	}
	if t.Omission == 1 {
		errs = append(errs, "thresholds.omission must be below 1")
	}
	if t.EdgePartial > t.EdgeConsistent {
		errs = append(errs, "thresholds.edge_partial must not exceed thresholds.edge_consistent")
	}

	errs = append(errs, checkWeights("weights.similarity", map[string]float64{
		"embedding": c.Weights.Similarity.Embedding,
		"lexical":   c.Weights.Similarity.Lexical,
		"overlap":   c.Weights.Similarity.Overlap,
	})...)
	fw := c.Weights.Facts
	errs = append(errs, checkWeights("weights.facts", map[string]float64{
		"money":        fw.Money,
		"date":         fw.Date,
		"percentage":   fw.Percentage,
		"number":       fw.Number,
		"named_entity": fw.NamedEntity,
		"action":       fw.Action,
	})...)

	if c.Concurrency.Workers < 1 {
		errs = append(errs, fmt.Sprintf("concurrency.workers=%d must be >= 1", c.Concurrency.Workers))
	}
	if _, err := c.Concurrency.Timeout(); err != nil {
		errs = append(errs, err.Error())
	}
	if _, _, err := c.Evaluation.Anchor(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Graph.Damping < 0 || c.Graph.Damping >= 1 {
		errs = append(errs, fmt.Sprintf("graph.damping=%g outside [0,1)", c.Graph.Damping))
	}
	if c.Graph.MaxIterations < 1 {
		errs = append(errs, "graph.max_iterations must be >= 1")
	}
	if c.Graph.Convergence <= 0 {
		errs = append(errs, "graph.convergence must be > 0")
	}

	errs = append(errs, c.checkProviders()...)

	if len(errs) > 0 {
		return eris.Wrapf(ErrInvalid, "%s", strings.Join(errs, "; "))
	}
	return nil
}

func checkWeights(section string, weights map[string]float64) []string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []string
	var sum float64
	for _, name := range names {
		w := weights[name]
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s.%s=%g must not be negative", section, name, w))
		}
		sum += w
	}
	if sum <= 0 {
		errs = append(errs, section+" must not all be zero")
	}
	return errs
}

func (c *Config) checkProviders() []string {
	var errs []string
	remote := false
	for name, value := range map[string]string{
		"embedder":  c.Providers.Embedder,
		"lexical":   c.Providers.Lexical,
		"extractor": c.Providers.Extractor,
		"nli":       c.Providers.NLI,
	} {
		switch value {
		case ProviderLocal:
		case ProviderLLM:
			remote = true
		default:
			errs = append(errs, fmt.Sprintf("providers.%s=%q must be %q or %q", name, value, ProviderLocal, ProviderLLM))
		}
	}
	sort.Strings(errs)
	if c.Providers.Lexical == ProviderLLM {
		errs = append(errs, "providers.lexical has no LLM implementation")
	}
	if !remote {
		return errs
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderOllama:
	case ProviderClaude:
		if c.Providers.Embedder == ProviderLLM {
			errs = append(errs, "llm.provider=claude does not support embeddings")
		}
	default:
		errs = append(errs, fmt.Sprintf("llm.provider=%q must be one of openai, gemini, claude, ollama", c.LLM.Provider))
	}
	if c.LLM.Model == "" {
		errs = append(errs, "llm.model is required when a provider uses the LLM")
	}
	if c.LLM.RequestsPerSecond < 0 {
		errs = append(errs, "llm.requests_per_second must not be negative")
	}
	return errs
}
