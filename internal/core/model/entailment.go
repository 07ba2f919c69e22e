package model

// EntailmentProbs is the NLI distribution for a premise/hypothesis pair.
type EntailmentProbs struct {
	Entailment    float64 `json:"entailment"`
	Neutral       float64 `json:"neutral"`
	Contradiction float64 `json:"contradiction"`
}

// Normalized rescales the probabilities to sum to 1. It reports false when
// any component is negative or all of them are zero.
func (p EntailmentProbs) Normalized() (EntailmentProbs, bool) {
	if p.Entailment < 0 || p.Neutral < 0 || p.Contradiction < 0 {
		return EntailmentProbs{}, false
	}
	sum := p.Entailment + p.Neutral + p.Contradiction
	if sum <= 0 {
		return EntailmentProbs{}, false
	}
	return EntailmentProbs{
		Entailment:    p.Entailment / sum,
		Neutral:       p.Neutral / sum,
		Contradiction: p.Contradiction / sum,
	}, true
}
