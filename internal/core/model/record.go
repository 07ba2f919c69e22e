package model

type Classification string

const (
	Consistent    Classification = "Consistent"
	FactualError  Classification = "FactualError"
	Contradiction Classification = "Contradiction"
	Omission      Classification = "Omission"
	Fabrication   Classification = "Fabrication"
	Irrelevant    Classification = "Irrelevant"
	Unevaluated   Classification = "Unevaluated"

	// ReferenceClass labels the reference node in a consistency graph.
	ReferenceClass Classification = "Reference"
)

// IsHallucination reports whether c is one of the hallucination verdicts.
func (c Classification) IsHallucination() bool {
	switch c {
	case FactualError, Contradiction, Omission, Fabrication:
		return true
	}
	return false
}

// HallucinationRecord is the fusion result for one (reference, candidate) pair.
type HallucinationRecord struct {
	ReferenceID             string         `json:"reference_id"`
	CandidateID             string         `json:"candidate_id"`
	Classification          Classification `json:"classification"`
	Confidence              float64        `json:"confidence"`
	Reason                  string         `json:"reason"`
	CombinedSimilarity      float64        `json:"combined_similarity"`
	FactualConsistencyScore float64        `json:"factual_consistency_score"`
	ContradictionScore      float64        `json:"contradiction_score"`
	MissingUnits            []string       `json:"missing_units,omitempty"`
	ExtraUnits              []string       `json:"extra_units,omitempty"`
	Error                   string         `json:"error,omitempty"`
}

// Evaluated reports whether the pair was scored.
func (r HallucinationRecord) Evaluated() bool {
	return r.Classification != Unevaluated
}
