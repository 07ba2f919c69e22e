package nlp

import (
	"strings"
	"unicode"
)

var abbreviations = toSet("mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "inc", "corp", "ltd", "co", "vs", "etc", "no", "approx", "jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec", "u.s", "e.g", "i.e")

// SentenceSpans splits text at '.', '!' or '?' followed by whitespace or the
// end of input, skipping common abbreviations and single-letter initials.
// Returned spans are trimmed of surrounding whitespace.
func SentenceSpans(text string) [][2]int {
	var spans [][2]int
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}
		if c == '.' && isAbbreviation(text[start:i]) {
			continue
		}
		spans = appendSpan(spans, text, start, i+1)
		start = i + 1
	}
	return appendSpan(spans, text, start, len(text))
}

// Sentences returns the trimmed sentences of text.
func Sentences(text string) []string {
	spans := SentenceSpans(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = text[s[0]:s[1]]
	}
	return out
}

func appendSpan(spans [][2]int, text string, start, end int) [][2]int {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	if start == end {
		return spans
	}
	return append(spans, [2]int{start, end})
}

func isAbbreviation(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimLeft(fields[len(fields)-1], "(\"'")
	if len([]rune(last)) == 1 && unicode.IsUpper([]rune(last)[0]) {
		return true
	}
	return abbreviations[strings.ToLower(last)]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}
