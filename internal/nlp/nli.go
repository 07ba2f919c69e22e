package nlp

import (
	"context"
	"math"
	"sort"

	"github.com/agenthands/factcheck/internal/core/model"
)

const (
	baseContradiction = 0.02
	maxContradiction  = 0.95
	negationWindow    = 3
	actionKeyPrefix   = "act:"
)

// HeuristicNLI is a local provider.NLI. It extracts (subject, polarity)
// claims from trend words ("revenue declined") and action verbs. A single
// shared subject whose polarity flips drives contradiction to its maximum,
// however many other claims agree.
type HeuristicNLI struct{}

func NewHeuristicNLI() *HeuristicNLI {
	return &HeuristicNLI{}
}

func (n *HeuristicNLI) Entailment(ctx context.Context, premise, hypothesis string) (model.EntailmentProbs, error) {
	if err := ctx.Err(); err != nil {
		return model.EntailmentProbs{}, err
	}
	c := baseContradiction
	if len(Reversed(premise, hypothesis)) > 0 {
		c = maxContradiction
	}

	e := (1 - c) * coverage(premise, hypothesis)
	return model.EntailmentProbs{Entailment: e, Neutral: math.Max(0, 1-c-e), Contradiction: c}, nil
}

// Reversed lists the claim subjects present in both texts with opposite
// polarity, sorted.
func Reversed(premise, hypothesis string) []string {
	pc, hc := Claims(premise), Claims(hypothesis)
	var out []string
	for key, hp := range hc {
		if pp, ok := pc[key]; ok && pp != hp {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Claims maps claim subjects to polarity (+1/-1). Trend claims are keyed by
// the nearest preceding content word; action claims by "act:" + verb lemma.
func Claims(text string) map[string]int {
	claims := make(map[string]int)
	for _, sentence := range Sentences(text) {
		toks := Tokenize(sentence)
		for i, tok := range toks {
			if pol, ok := Direction(tok); ok {
				subject := subjectBefore(toks, i)
				if subject == "" {
					continue
				}
				if negated(toks, i) {
					pol = -pol
				}
				claims[subject] = pol
				continue
			}
			if lemma, ok := ActionLemma(tok); ok {
				pol := 1
				if negated(toks, i) {
					pol = -1
				}
				claims[actionKeyPrefix+lemma] = pol
			}
		}
	}
	return claims
}

func subjectBefore(toks []string, i int) string {
	for j := i - 1; j >= 0; j-- {
		t := toks[j]
		if !IsContentWord(t) {
			continue
		}
		if _, ok := Direction(t); ok {
			continue
		}
		if _, ok := ActionLemma(t); ok {
			continue
		}
		return t
	}
	return ""
}

func negated(toks []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
		if IsNegator(toks[j]) {
			return true
		}
	}
	return false
}

// coverage is the share of the hypothesis's content words found in the premise.
func coverage(premise, hypothesis string) float64 {
	hyp := ContentWords(Tokenize(hypothesis))
	if len(hyp) == 0 {
		return 0
	}
	prem := toSet(ContentWords(Tokenize(premise))...)
	hit := 0
	for _, w := range hyp {
		if prem[w] {
			hit++
		}
	}
	return float64(hit) / float64(len(hyp))
}
