// Package nlp provides deterministic, dependency-light implementations of
// the provider contracts: a rule-based phrase extractor, a hashing embedder,
// an n-gram TF-IDF scorer and a polarity-based NLI heuristic.
package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/stat"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)?`)

// Token is a folded word with its byte span in the source text.
type Token struct {
	Text  string
	Start int
	End   int
}

// Fold applies NFKC normalization and Unicode case folding.
func Fold(s string) string {
	s = strings.ReplaceAll(norm.NFKC.String(s), "’", "'")
	return cases.Fold().String(s)
}

// Normalize folds s, collapses whitespace and strips trailing punctuation.
func Normalize(s string) string {
	s = strings.Join(strings.Fields(Fold(s)), " ")
	return strings.TrimRight(s, ".,;:!?")
}

// Tokens returns the word tokens of text with their spans.
func Tokens(text string) []Token {
	locs := wordRe.FindAllStringIndex(text, -1)
	out := make([]Token, 0, len(locs))
	for _, loc := range locs {
		out = append(out, Token{Text: Fold(text[loc[0]:loc[1]]), Start: loc[0], End: loc[1]})
	}
	return out
}

// Tokenize returns the folded word tokens of text.
func Tokenize(text string) []string {
	toks := Tokens(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

var stopwords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "then", "than", "so", "of", "in", "on", "at", "to",
	"for", "from", "by", "with", "about", "as", "into", "onto", "over", "under", "between", "through",
	"during", "before", "after", "above", "below", "up", "down", "out", "off", "again", "further",
	"is", "are", "was", "were", "be", "been", "being", "am", "has", "have", "had", "having", "do",
	"does", "did", "doing", "will", "would", "shall", "should", "can", "could", "may", "might", "must",
	"it", "its", "this", "that", "these", "those", "there", "here", "he", "she", "they", "we", "you",
	"i", "me", "him", "her", "them", "us", "our", "your", "their", "his", "my", "who", "whom", "which",
	"what", "when", "where", "why", "how", "all", "any", "both", "each", "few", "more", "most", "other",
	"some", "such", "no", "nor", "not", "only", "own", "same", "too", "very", "just", "also", "well",
	"now", "per", "via", "while", "yet", "still", "around", "approximately", "nearly", "almost",
)

func IsStopword(w string) bool {
	return stopwords[w]
}

// IsContentWord reports whether w is an alphabetic, non-stopword token of at least two letters.
func IsContentWord(w string) bool {
	if len(w) < 2 || stopwords[w] {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ContentWords filters tokens down to content words.
func ContentWords(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if IsContentWord(t) {
			out = append(out, t)
		}
	}
	return out
}

// Entropy returns the Shannon entropy in bits of the token distribution.
func Entropy(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	n := float64(len(tokens))
	probs := make([]float64, 0, len(counts))
	for _, c := range counts {
		probs = append(probs, float64(c)/n)
	}
	// Fixed order keeps the sum bit-identical across runs.
	sort.Float64s(probs)
	return stat.Entropy(probs) / math.Ln2
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
