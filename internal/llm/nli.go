package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/common"
	"github.com/agenthands/factcheck/internal/core/model"
)

const DefaultNLIPrompt = `You are a natural language inference model.
Decide whether the PREMISE entails, is neutral to, or contradicts the HYPOTHESIS.
Treat changed numbers, dates, names and reversed trends as contradictions.

PREMISE:
{{premise}}

HYPOTHESIS:
{{hypothesis}}

Respond with a single JSON object and nothing else:
{"entailment": <probability>, "neutral": <probability>, "contradiction": <probability>}
The three probabilities must sum to 1.`

// LLMNLI asks a Generator for an entailment distribution.
type LLMNLI struct {
	gen    Generator
	prompt string
}

// NewLLMNLI uses DefaultNLIPrompt when prompt is empty. A custom prompt must
// contain the {{premise}} and {{hypothesis}} placeholders.
func NewLLMNLI(gen Generator, prompt string) *LLMNLI {
	if prompt == "" {
		prompt = DefaultNLIPrompt
	}
	return &LLMNLI{gen: gen, prompt: prompt}
}

type nliResponse struct {
	Entailment    float64 `json:"entailment"`
	Neutral       float64 `json:"neutral"`
	Contradiction float64 `json:"contradiction"`
}

// Entailment returns the raw distribution; the entailment scorer validates
// and renormalizes it.
func (n *LLMNLI) Entailment(ctx context.Context, premise, hypothesis string) (model.EntailmentProbs, error) {
	prompt := strings.NewReplacer("{{premise}}", premise, "{{hypothesis}}", hypothesis).Replace(n.prompt)

	resp, err := n.gen.Generate(ctx, prompt)
	if err != nil {
		return model.EntailmentProbs{}, eris.Wrap(err, "llm: nli generate")
	}
	parsed, err := common.ParseJSON[nliResponse](resp)
	if err != nil {
		return model.EntailmentProbs{}, eris.Wrap(err, "llm: parse nli response")
	}
	return model.EntailmentProbs{
		Entailment:    parsed.Entailment,
		Neutral:       parsed.Neutral,
		Contradiction: parsed.Contradiction,
	}, nil
}
