// Package facts extracts typed facts (money, dates, percentages, numbers,
// named entities and actions) from paragraphs and matches them across a
// reference/candidate pair.
package facts

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

// DefaultContextWindow is the number of content words kept on each side of a fact.
const DefaultContextWindow = 4

const amount = `((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`

var (
	moneySymbolRe = regexp.MustCompile(`(?i)(us\$|[$€£¥])\s?` + amount + `(\s?(?:thousand|million|billion|trillion|bn|mn|mm)\b|[kmbt]\b)?`)
	moneyCodeRe   = regexp.MustCompile(`(?i)\b(usd|eur|gbp|jpy)\s?` + amount + `(\s?(?:thousand|million|billion|trillion|bn|mn|mm)\b|[kmbt]\b)?`)
	moneyWordRe   = regexp.MustCompile(`(?i)\b` + amount + `(\s?(?:thousand|million|billion|trillion|bn|mn)\b|[kmb]\b)?\s+(dollars?|usd|euros?|eur|pounds?|gbp|yen)\b`)
	percentRe     = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s?(%|percent\b|per cent\b|pct\b)`)
	numberRe      = regexp.MustCompile(`(?i)\b` + amount + `\b(\s?(?:thousand|million|billion|trillion)\b)?`)
)

// dateRecognizer parses one date form; recognizers run in declaration order
// and each consumes its span.
type dateRecognizer struct {
	re    *regexp.Regexp
	parse func(groups []string, anchor *time.Time) (model.CalendarValue, bool)
}

var dateRecognizers = buildDateRecognizers()

func buildDateRecognizers() []dateRecognizer {
	names := make([]string, 0, len(nlp.Months))
	for name := range nlp.Months {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	month := `(` + strings.Join(names, "|") + `)`
	fullMonth := `(january|february|march|april|june|july|august|september|october|november|december)`

	return []dateRecognizer{
		{regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(atoi(g[1]), atoi(g[2]), atoi(g[3]))
		}},
		{regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(atoi(g[3]), atoi(g[1]), atoi(g[2]))
		}},
		{regexp.MustCompile(`(?i)\b` + month + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(atoi(g[3]), nlp.Months[strings.ToLower(g[1])], atoi(g[2]))
		}},
		{regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + month + `\b\.?(?:,?\s+(\d{4})\b)?`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(atoi(g[3]), nlp.Months[strings.ToLower(g[2])], atoi(g[1]))
		}},
		{regexp.MustCompile(`(?i)\b` + month + `\.?,?\s+(\d{4})\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(atoi(g[2]), nlp.Months[strings.ToLower(g[1])], 0)
		}},
		{regexp.MustCompile(`(?i)\b(?:q([1-4])|([1-4])q|(first|second|third|fourth)\s+quarter)(?:\s+(?:of\s+)?(?:fy\s?)?(\d{4}))?\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			q := atoi(g[1])
			if q == 0 {
				q = atoi(g[2])
			}
			if q == 0 {
				q = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4}[strings.ToLower(g[3])]
			}
			return model.CalendarValue{Year: atoi(g[4]), Quarter: q}, q != 0
		}},
		{regexp.MustCompile(`(?i)\bfy\s?(\d{4})\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return model.CalendarValue{Year: atoi(g[1])}, true
		}},
		{regexp.MustCompile(`(?i)\b` + fullMonth + `\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return ymd(0, nlp.Months[strings.ToLower(g[1])], 0)
		}},
		{regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow|(?:last|next|this|previous|current)\s+(?:year|quarter|month))\b`), func(g []string, anchor *time.Time) (model.CalendarValue, bool) {
			return resolveRelative(g[1], anchor), true
		}},
		{regexp.MustCompile(`\b((?:19|20)\d{2})\b`), func(g []string, _ *time.Time) (model.CalendarValue, bool) {
			return model.CalendarValue{Year: atoi(g[1])}, true
		}},
	}
}

func ymd(year, month, day int) (model.CalendarValue, bool) {
	if month < 1 || month > 12 || day < 0 || day > 31 {
		return model.CalendarValue{}, false
	}
	return model.CalendarValue{Year: year, Quarter: quarterOf(month), Month: month, Day: day}, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Extractor turns paragraphs into typed facts. Value recognizers are local;
// named entities come from the phrase extractor.
type Extractor struct {
	Phrases       provider.PhraseExtractor
	Anchor        *time.Time
	ContextWindow int
}

func NewExtractor(phrases provider.PhraseExtractor, anchor *time.Time) *Extractor {
	return &Extractor{
		Phrases:       phrases,
		Anchor:        anchor,
		ContextWindow: DefaultContextWindow,
	}
}

// Extract runs the phrase extractor and returns the paragraph's facts.
func (e *Extractor) Extract(ctx context.Context, p model.Paragraph) ([]model.Fact, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, nil
	}
	ext, err := e.Phrases.Extract(ctx, p.Text)
	if err != nil {
		return nil, eris.Wrap(provider.Unavailable("extractor", err), "facts: extract phrases")
	}
	return e.FromExtraction(p, ext), nil
}

// FromExtraction extracts facts using an already computed phrase extraction.
func (e *Extractor) FromExtraction(p model.Paragraph, ext model.Extraction) []model.Fact {
	d := newDocument(p, e.ContextWindow)

	d.recognize(moneySymbolRe, model.FactMoney, func(g []string) (model.FactValue, bool) {
		v, ok := parseAmount(g[2], g[3])
		return model.FactValue{Amount: v, Currency: currencyCode(g[1])}, ok
	})
	d.recognize(moneyCodeRe, model.FactMoney, func(g []string) (model.FactValue, bool) {
		v, ok := parseAmount(g[2], g[3])
		return model.FactValue{Amount: v, Currency: currencyCode(g[1])}, ok
	})
	d.recognize(moneyWordRe, model.FactMoney, func(g []string) (model.FactValue, bool) {
		v, ok := parseAmount(g[1], g[2])
		return model.FactValue{Amount: v, Currency: currencyCode(g[3])}, ok
	})
	d.recognize(percentRe, model.FactPercentage, func(g []string) (model.FactValue, bool) {
		v, ok := parseAmount(g[1], "")
		return model.FactValue{Amount: v / 100}, ok
	})
	for _, r := range dateRecognizers {
		d.recognize(r.re, model.FactDate, func(g []string) (model.FactValue, bool) {
			cv, ok := r.parse(g, e.Anchor)
			if !ok {
				return model.FactValue{}, false
			}
			return model.FactValue{Date: &cv}, true
		})
	}
	d.recognize(numberRe, model.FactNumber, func(g []string) (model.FactValue, bool) {
		v, ok := parseAmount(g[1], g[2])
		return model.FactValue{Amount: v}, ok
	})

	d.addEntities(ext.Entities)
	d.addActions()

	sort.SliceStable(d.facts, func(i, j int) bool {
		if d.facts[i].Start != d.facts[j].Start {
			return d.facts[i].Start < d.facts[j].Start
		}
		return typeRank(d.facts[i].Type) < typeRank(d.facts[j].Type)
	})
	return d.facts
}

func typeRank(t model.FactType) int {
	for i, ft := range model.FactTypes {
		if ft == t {
			return i
		}
	}
	return len(model.FactTypes)
}

// Count returns the number of facts of type t.
func Count(facts []model.Fact, t model.FactType) int {
	n := 0
	for _, f := range facts {
		if f.Type == t {
			n++
		}
	}
	return n
}

// ActionPhrases returns the phrases of the action facts, in order.
func ActionPhrases(facts []model.Fact) []string {
	var out []string
	for _, f := range facts {
		if f.Type == model.FactAction {
			out = append(out, f.Value.Phrase)
		}
	}
	return out
}
