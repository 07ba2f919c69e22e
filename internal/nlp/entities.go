package nlp

import (
	"strings"
	"unicode"

	"github.com/agenthands/factcheck/internal/core/model"
)

// Entities tags capitalized token runs in text. A run preceded by a title
// (CEO, Dr, ...) is a PERSON; a run ending in a corporate suffix is an ORG;
// gazetteer hits are LOCATIONs; bare acronyms are ORGs; anything else is MISC.
// A single capitalized word at the start of a sentence is ignored.
func Entities(text string) []model.EntityMention {
	var out []model.EntityMention
	seen := make(map[string]bool)
	for _, span := range SentenceSpans(text) {
		sentence := text[span[0]:span[1]]
		for _, m := range sentenceEntities(sentence) {
			key := Fold(m.Text) + "|" + m.Category
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}

type run struct {
	words []string
	first int
}

func sentenceEntities(sentence string) []model.EntityMention {
	locs := wordRe.FindAllStringIndex(sentence, -1)
	var (
		runs []run
		cur  run
	)
	flush := func() {
		if len(cur.words) > 0 {
			runs = append(runs, cur)
		}
		cur = run{}
	}
	for i, loc := range locs {
		w := sentence[loc[0]:loc[1]]
		if i > 0 {
			sep := strings.TrimSpace(sentence[locs[i-1][1]:loc[0]])
			prev := Fold(sentence[locs[i-1][0]:locs[i-1][1]])
			if sep != "" && !(sep == "." && titles[prev]) {
				flush()
			}
		}
		if !isCapitalized(w) || IsTemporal(w) || IsStopword(Fold(w)) {
			flush()
			continue
		}
		if titles[Fold(w)] && len(cur.words) > 0 {
			flush()
		}
		if len(cur.words) == 0 {
			cur.first = i
		}
		cur.words = append(cur.words, w)
	}
	flush()

	var out []model.EntityMention
	for _, r := range runs {
		if m, ok := classifyRun(r); ok {
			out = append(out, m)
		}
	}
	return out
}

func classifyRun(r run) (model.EntityMention, bool) {
	words := r.words
	person := false
	for len(words) > 0 && titles[Fold(strings.TrimSuffix(words[0], "."))] {
		words = words[1:]
		person = true
	}
	if len(words) == 0 {
		return model.EntityMention{}, false
	}
	acronym := len(words) == 1 && isAcronym(words[0])
	if !person && r.first == 0 && len(r.words) == 1 && !acronym {
		return model.EntityMention{}, false
	}

	text := strings.Join(words, " ")
	folded := Fold(text)
	last := Fold(words[len(words)-1])
	var category string
	switch {
	case person:
		category = model.CategoryPerson
	case len(words) > 1 && orgSuffixes[last]:
		category = model.CategoryOrg
	case locations[folded]:
		category = model.CategoryLocation
	case acronym:
		category = model.CategoryOrg
	default:
		category = model.CategoryMisc
	}
	return model.EntityMention{Text: text, Category: category}, true
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func isAcronym(w string) bool {
	if len(w) < 2 {
		return false
	}
	for _, r := range w {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
