package model

// SimilarityTriple holds the three similarity views for a pair of unit sets
// and their combined score. All scores are in [0,1].
type SimilarityTriple struct {
	Embedding float64 `json:"embedding_score"`
	Lexical   float64 `json:"lexical_score"`
	Overlap   float64 `json:"overlap_score"`
	Combined  float64 `json:"combined"`

	// Degenerate is set when either side had no extractable units.
	Degenerate bool `json:"degenerate,omitempty"`

	MissingUnits []string `json:"missing_units,omitempty"`
	ExtraUnits   []string `json:"extra_units,omitempty"`
}
