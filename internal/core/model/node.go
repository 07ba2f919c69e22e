package model

// Role tags a paragraph as the reference or one of the candidates under evaluation.
type Role string

const (
	RoleReference Role = "reference"
	RoleCandidate Role = "candidate"
)

// Paragraph is an immutable text blob owned by the caller.
type Paragraph struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Role Role   `json:"role"`
}

type UnitKind string

const (
	UnitSentence   UnitKind = "sentence"
	UnitNounPhrase UnitKind = "noun_phrase"
	UnitEntity     UnitKind = "entity"
)

// SemanticUnit is a normalized (trimmed, lower-cased) comparison item drawn from a paragraph.
type SemanticUnit struct {
	ParagraphID string   `json:"paragraph_id"`
	Text        string   `json:"text"`
	Kind        UnitKind `json:"kind"`
}

// GraphNode is one paragraph in a consistency graph. Index is the node's
// position in the graph arena and is stable for the lifetime of the graph.
type GraphNode struct {
	Index          int            `json:"index"`
	ID             string         `json:"id"`
	Role           Role           `json:"role"`
	NumFacts       int            `json:"num_facts"`
	NumEntities    int            `json:"num_entities"`
	LexicalEntropy float64        `json:"lexical_entropy"`
	Classification Classification `json:"classification"`
	Centrality     float64        `json:"centrality"`
}
