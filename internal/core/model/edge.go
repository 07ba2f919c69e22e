package model

type EdgeTag string

const (
	EdgeConsistent           EdgeTag = "Consistent"
	EdgePartialHallucination EdgeTag = "PartialHallucination"
	EdgeMutualHallucination  EdgeTag = "MutualHallucination"
)

// GraphEdge is an undirected edge between two arena indices.
// Weight + HallucinationScore == 1.
type GraphEdge struct {
	Source             int     `json:"source"`
	Target             int     `json:"target"`
	SourceID           string  `json:"source_id"`
	TargetID           string  `json:"target_id"`
	Weight             float64 `json:"weight"`
	HallucinationScore float64 `json:"hallucination_score"`
	Tag                EdgeTag `json:"tag"`
}
