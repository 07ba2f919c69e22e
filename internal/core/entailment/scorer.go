// Package entailment scores contradiction between two texts with an NLI
// model run in both directions.
package entailment

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/provider"
)

type Scorer struct {
	NLI provider.NLI
}

func NewScorer(nli provider.NLI) *Scorer {
	return &Scorer{NLI: nli}
}

// Score returns the larger of the two directional contradiction probabilities.
func (s *Scorer) Score(ctx context.Context, reference, candidate string) (float64, error) {
	var forward, backward model.EntailmentProbs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.direction(gctx, reference, candidate)
		forward = p
		return err
	})
	g.Go(func() error {
		p, err := s.direction(gctx, candidate, reference)
		backward = p
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return math.Max(forward.Contradiction, backward.Contradiction), nil
}

func (s *Scorer) direction(ctx context.Context, premise, hypothesis string) (model.EntailmentProbs, error) {
	raw, err := s.NLI.Entailment(ctx, premise, hypothesis)
	if err != nil {
		return model.EntailmentProbs{}, eris.Wrap(provider.Unavailable("nli", err), "entailment: score direction")
	}
	p, ok := raw.Normalized()
	if !ok {
		return model.EntailmentProbs{}, eris.Wrap(
			provider.Unavailable("nli", eris.Errorf("invalid probabilities %+v", raw)),
			"entailment: normalize")
	}
	return p, nil
}
