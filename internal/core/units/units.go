// Package units turns paragraphs into normalized semantic units: sentences,
// noun phrases and entity mentions.
package units

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

type Extractor struct {
	Phrases provider.PhraseExtractor
}

func NewExtractor(phrases provider.PhraseExtractor) *Extractor {
	return &Extractor{Phrases: phrases}
}

// Extract returns the paragraph's semantic units. Empty paragraphs never reach
// the provider.
func (e *Extractor) Extract(ctx context.Context, p model.Paragraph) ([]model.SemanticUnit, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil
	}
	ext, err := e.Phrases.Extract(ctx, p.Text)
	if err != nil {
		return nil, eris.Wrap(provider.Unavailable("extractor", err), "units: extract phrases")
	}
	return FromExtraction(p, ext), nil
}

// FromExtraction normalizes an extraction into units, dropping duplicates and
// units without tokens while keeping first-occurrence order.
func FromExtraction(p model.Paragraph, ext model.Extraction) []model.SemanticUnit {
	var out []model.SemanticUnit
	seen := make(map[string]bool)
	add := func(text string, kind model.UnitKind) {
		text = nlp.Normalize(text)
		if seen[text] || len(nlp.Tokenize(text)) == 0 {
			return
		}
		seen[text] = true
		out = append(out, model.SemanticUnit{ParagraphID: p.ID, Text: text, Kind: kind})
	}
	for _, s := range ext.Sentences {
		add(s, model.UnitSentence)
	}
	for _, np := range ext.NounPhrases {
		add(np, model.UnitNounPhrase)
	}
	for _, ent := range ext.Entities {
		add(ent.Text, model.UnitEntity)
	}
	return out
}

// Texts returns the unit texts in order.
func Texts(units []model.SemanticUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Text
	}
	return out
}
