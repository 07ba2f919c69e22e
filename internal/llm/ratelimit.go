package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/agenthands/factcheck/internal/provider"
)

// NewLimiter returns nil when rps is zero, meaning unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimitedGenerator waits on a shared limiter before each request.
type RateLimitedGenerator struct {
	Generator
	limiter *rate.Limiter
}

func NewRateLimitedGenerator(gen Generator, limiter *rate.Limiter) Generator {
	if limiter == nil {
		return gen
	}
	return &RateLimitedGenerator{Generator: gen, limiter: limiter}
}

func (g *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "llm: rate limit wait")
	}
	return g.Generator.Generate(ctx, prompt)
}

type RateLimitedEmbedder struct {
	provider.Embedder
	limiter *rate.Limiter
}

func NewRateLimitedEmbedder(emb provider.Embedder, limiter *rate.Limiter) provider.Embedder {
	if limiter == nil {
		return emb
	}
	return &RateLimitedEmbedder{Embedder: emb, limiter: limiter}
}

func (e *RateLimitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llm: rate limit wait")
	}
	return e.Embedder.Embed(ctx, texts)
}
