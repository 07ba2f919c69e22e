package model

// Entity categories produced by phrase extractors.
const (
	CategoryPerson   = "PERSON"
	CategoryOrg      = "ORG"
	CategoryLocation = "LOCATION"
	CategoryMisc     = "MISC"
)

type EntityMention struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Extraction is the output of a phrase extractor for one text.
type Extraction struct {
	Sentences   []string        `json:"sentences"`
	NounPhrases []string        `json:"noun_phrases"`
	Entities    []EntityMention `json:"entities"`
}
