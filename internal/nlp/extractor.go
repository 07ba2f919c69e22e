package nlp

import (
	"context"

	"github.com/agenthands/factcheck/internal/core/model"
)

// RuleExtractor is a local provider.PhraseExtractor.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

func (e *RuleExtractor) Extract(ctx context.Context, text string) (model.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return model.Extraction{}, err
	}
	var ext model.Extraction
	seen := make(map[string]bool)
	for _, s := range Sentences(text) {
		ext.Sentences = append(ext.Sentences, s)
		for _, np := range NounPhrases(s) {
			if seen[np] {
				continue
			}
			seen[np] = true
			ext.NounPhrases = append(ext.NounPhrases, np)
		}
	}
	ext.Entities = Entities(text)
	return ext, nil
}
