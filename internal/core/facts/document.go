package facts

import (
	"regexp"
	"strings"

	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
)

// document tracks a paragraph's tokens, sentence spans and the byte ranges
// already claimed by a recognizer.
type document struct {
	para      model.Paragraph
	tokens    []nlp.Token
	sentences [][2]int
	consumed  [][2]int
	window    int
	facts     []model.Fact
}

func newDocument(p model.Paragraph, window int) *document {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &document{
		para:      p,
		tokens:    nlp.Tokens(p.Text),
		sentences: nlp.SentenceSpans(p.Text),
		window:    window,
	}
}

func (d *document) recognize(re *regexp.Regexp, t model.FactType, parse func(groups []string) (model.FactValue, bool)) {
	for _, loc := range re.FindAllStringSubmatchIndex(d.para.Text, -1) {
		start, end := loc[0], loc[1]
		if d.overlaps(start, end) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = d.para.Text[loc[2*i]:loc[2*i+1]]
			}
		}
		v, ok := parse(groups)
		if !ok {
			continue
		}
		d.consumed = append(d.consumed, [2]int{start, end})
		d.add(t, v, start, end)
	}
}

func (d *document) add(t model.FactType, v model.FactValue, start, end int) {
	d.facts = append(d.facts, model.Fact{
		ParagraphID: d.para.ID,
		Type:        t,
		Value:       v,
		Raw:         strings.TrimSpace(d.para.Text[start:end]),
		Context:     d.context(start, end),
		Start:       start,
		End:         end,
	})
}

func (d *document) overlaps(start, end int) bool {
	for _, c := range d.consumed {
		if start < c[1] && c[0] < end {
			return true
		}
	}
	return false
}

// context returns up to window content words on each side of [start,end)
// within the enclosing sentence.
func (d *document) context(start, end int) []string {
	lo, hi := 0, len(d.para.Text)
	for _, s := range d.sentences {
		if start >= s[0] && start < s[1] {
			lo, hi = s[0], s[1]
			break
		}
	}
	var before, after []string
	for _, tok := range d.tokens {
		if tok.Start < lo || tok.End > hi || !nlp.IsContentWord(tok.Text) {
			continue
		}
		switch {
		case tok.End <= start:
			before = append(before, tok.Text)
		case tok.Start >= end && len(after) < d.window:
			after = append(after, tok.Text)
		}
	}
	if len(before) > d.window {
		before = before[len(before)-d.window:]
	}
	return append(before, after...)
}

func (d *document) addEntities(mentions []model.EntityMention) {
	lower := strings.ToLower(d.para.Text)
	for _, m := range mentions {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		start := strings.Index(lower, strings.ToLower(text))
		end := start + len(text)
		if start < 0 || end > len(d.para.Text) {
			start, end = 0, 0
		}
		category := strings.ToUpper(m.Category)
		if category == "" {
			category = model.CategoryMisc
		}
		f := model.Fact{
			ParagraphID: d.para.ID,
			Type:        model.FactNamedEntity,
			Value:       model.FactValue{Text: nlp.Normalize(text), Category: category},
			Raw:         text,
			Start:       start,
			End:         end,
		}
		if end > start {
			f.Context = d.context(start, end)
		}
		d.facts = append(d.facts, f)
	}
}

// addActions emits one Action per action verb: the verb lemma plus the next
// content word in the same clause, or the preceding one when nothing follows.
func (d *document) addActions() {
	seen := make(map[string]bool)
	for _, s := range d.sentences {
		var toks []nlp.Token
		for _, tok := range d.tokens {
			if tok.Start >= s[0] && tok.End <= s[1] {
				toks = append(toks, tok)
			}
		}
		for i, tok := range toks {
			lemma, ok := nlp.ActionLemma(tok.Text)
			if !ok {
				continue
			}
			obj := d.actionObject(toks, i)
			phrase := lemma
			start, end := tok.Start, tok.End
			if obj >= 0 {
				phrase += " " + toks[obj].Text
				start, end = min(start, toks[obj].Start), max(end, toks[obj].End)
			}
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			d.facts = append(d.facts, model.Fact{
				ParagraphID: d.para.ID,
				Type:        model.FactAction,
				Value:       model.FactValue{Phrase: phrase},
				Raw:         d.para.Text[start:end],
				Context:     d.context(tok.Start, tok.End),
				Start:       tok.Start,
				End:         tok.End,
			})
		}
	}
}

func (d *document) actionObject(toks []nlp.Token, verb int) int {
	for j := verb + 1; j < len(toks); j++ {
		if d.clauseBreak(toks[j-1], toks[j]) {
			break
		}
		if isObject(toks[j].Text) {
			return j
		}
	}
	for j := verb - 1; j >= 0; j-- {
		if d.clauseBreak(toks[j], toks[j+1]) {
			break
		}
		if isObject(toks[j].Text) {
			return j
		}
	}
	return -1
}

func (d *document) clauseBreak(a, b nlp.Token) bool {
	return strings.ContainsAny(d.para.Text[a.End:b.Start], ",;:()")
}

func isObject(tok string) bool {
	if !nlp.IsContentWord(tok) || nlp.IsTemporal(tok) || nlp.IsVerb(tok) {
		return false
	}
	return true
}
