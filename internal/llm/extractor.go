package llm

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/common"
	"github.com/agenthands/factcheck/internal/core/model"
)

const DefaultExtractionPrompt = `Split the following paragraph into linguistic units.

PARAGRAPH:
{{text}}

Return a single JSON object with:
- "sentences": every sentence, verbatim.
- "noun_phrases": the noun phrases, verbatim.
- "entities": named entities as {"text": ..., "category": ...} where category is
  one of PERSON, ORG, LOCATION, MISC.

Example:
{"sentences": ["Acme hired Jane Doe."], "noun_phrases": ["Acme", "Jane Doe"], "entities": [{"text": "Acme", "category": "ORG"}, {"text": "Jane Doe", "category": "PERSON"}]}`

// LLMExtractor implements provider.PhraseExtractor with a Generator.
type LLMExtractor struct {
	gen    Generator
	prompt string
}

// NewLLMExtractor uses DefaultExtractionPrompt when prompt is empty. A
// custom prompt must contain the {{text}} placeholder.
func NewLLMExtractor(gen Generator, prompt string) *LLMExtractor {
	if prompt == "" {
		prompt = DefaultExtractionPrompt
	}
	return &LLMExtractor{gen: gen, prompt: prompt}
}

func (e *LLMExtractor) Extract(ctx context.Context, text string) (model.Extraction, error) {
	if strings.TrimSpace(text) == "" {
		return model.Extraction{}, nil
	}
	prompt := strings.ReplaceAll(e.prompt, "{{text}}", text)

	resp, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return model.Extraction{}, eris.Wrap(err, "llm: extraction generate")
	}
	ext, err := common.ParseJSON[model.Extraction](resp)
	if err != nil {
		return model.Extraction{}, eris.Wrap(err, "llm: parse extraction response")
	}

	// Entity categories are compared verbatim by the fact matcher.
	for i := range ext.Entities {
		ext.Entities[i].Text = strings.TrimSpace(ext.Entities[i].Text)
		ext.Entities[i].Category = entityCategory(ext.Entities[i].Category)
	}
	return ext, nil
}

// entityCategory maps a model's label onto the rule extractor's category set.
func entityCategory(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case model.CategoryPerson, "PER":
		return model.CategoryPerson
	case model.CategoryOrg, "ORGANIZATION", "ORGANISATION", "COMPANY":
		return model.CategoryOrg
	case model.CategoryLocation, "LOC", "GPE", "FAC":
		return model.CategoryLocation
	}
	return model.CategoryMisc
}
