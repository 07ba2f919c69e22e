package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/agenthands/factcheck/internal/cache"
	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

// NewClient builds the generator (and embedder, when the backend has one)
// for the configured LLM backend.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Generator, provider.Embedder, error) {
	backend := strings.ToLower(cfg.Provider)

	switch backend {
	case config.ProviderOpenAI:
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case config.ProviderClaude:
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, nil, nil

	case config.ProviderOllama:
		// Ollama speaks the OpenAI API under /v1.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama, required by the client
		}
		zap.L().Info("llm: using Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))

		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	default:
		return nil, nil, eris.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

// NewProviders assembles the provider set selected by cfg.Providers. The
// returned close function releases the LLM client and the embedding cache.
func NewProviders(ctx context.Context, cfg *config.Config) (provider.Set, func() error, error) {
	set := provider.Set{
		Embedder:  nlp.NewHashingEmbedder(nlp.DefaultEmbeddingDim),
		Lexical:   nlp.NewTFIDFScorer(),
		Extractor: nlp.NewRuleExtractor(),
		NLI:       nlp.NewHeuristicNLI(),
	}
	var closers []func() error
	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	p := cfg.Providers
	if p.Embedder == config.ProviderLLM || p.Extractor == config.ProviderLLM || p.NLI == config.ProviderLLM {
		gen, emb, err := NewClient(ctx, cfg.LLM)
		if err != nil {
			return provider.Set{}, nil, err
		}
		if c, ok := gen.(interface{ Close() error }); ok {
			closers = append(closers, c.Close)
		}

		limiter := NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)
		gen = NewRateLimitedGenerator(gen, limiter)

		if p.Embedder == config.ProviderLLM {
			if emb == nil {
				_ = closeAll()
				return provider.Set{}, nil, eris.Errorf("llm: provider %q cannot embed", cfg.LLM.Provider)
			}
			set.Embedder = NewRateLimitedEmbedder(emb, limiter)
		}
		if p.Extractor == config.ProviderLLM {
			set.Extractor = NewLLMExtractor(gen, cfg.Prompts.Extraction)
		}
		if p.NLI == config.ProviderLLM {
			set.NLI = NewLLMNLI(gen, cfg.Prompts.NLI)
		}
	}

	if cfg.Cache.Enabled {
		db, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			_ = closeAll()
			return provider.Set{}, nil, err
		}
		closers = append(closers, db.Close)
		set.Embedder = cache.NewEmbeddingCache(set.Embedder, db, cacheNamespace(cfg))
	}

	return set, closeAll, nil
}

func cacheNamespace(cfg *config.Config) string {
	if cfg.Providers.Embedder != config.ProviderLLM {
		return fmt.Sprintf("local/hashing/%d", nlp.DefaultEmbeddingDim)
	}
	return strings.ToLower(cfg.LLM.Provider) + "/" + cfg.LLM.EmbeddingModel
}
