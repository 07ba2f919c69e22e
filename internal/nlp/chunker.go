package nlp

import (
	"strings"
)

// NounPhrases returns the noun-phrase-like chunks of a sentence: maximal runs
// of tokens that are neither stopwords nor verbs, broken at punctuation.
// A chunk is kept only if it contains at least one content word.
func NounPhrases(sentence string) []string {
	toks := Tokens(sentence)
	var (
		out   []string
		chunk []string
	)
	flush := func() {
		if len(ContentWords(chunk)) > 0 {
			out = append(out, strings.Join(chunk, " "))
		}
		chunk = chunk[:0]
	}
	for i, t := range toks {
		if i > 0 && strings.TrimSpace(sentence[toks[i-1].End:t.Start]) != "" {
			flush()
		}
		if IsStopword(t.Text) || IsVerb(t.Text) {
			flush()
			continue
		}
		chunk = append(chunk, t.Text)
	}
	flush()
	return out
}

var trendModifiers = toSet("growth", "higher", "lower", "up", "down")

// IsVerb is a lexicon and suffix heuristic for verb forms.
func IsVerb(tok string) bool {
	if _, ok := actionVerbs[tok]; ok {
		return true
	}
	if _, ok := directionWords[tok]; ok && !trendModifiers[tok] {
		return true
	}
	return len(tok) > 4 && strings.HasSuffix(tok, "ed")
}
