package facts

import (
	"sort"
	"strings"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
)

var keyFactTypes = []model.FactType{model.FactMoney, model.FactDate, model.FactNamedEntity, model.FactAction}

// Matcher compares reference and candidate facts type by type.
type Matcher struct {
	Thresholds config.Thresholds
	Weights    config.FactWeights
}

func NewMatcher(thresholds config.Thresholds, weights config.FactWeights) *Matcher {
	return &Matcher{Thresholds: thresholds, Weights: weights}
}

type pairCandidate struct {
	ref, cand int
	score     float64
	delta     float64
}

// Match pairs facts per type and scores factual consistency. actionScores
// is the phrase similarity matrix between the reference's and the
// candidate's action facts (in ActionPhrases order); when nil, actions match
// only on identical phrases. The result does not depend on input order.
func (m *Matcher) Match(ref, cand []model.Fact, actionScores [][]float64) model.FactMatchResult {
	refBy, candBy := groupByType(ref), groupByType(cand)
	res := model.FactMatchResult{ByType: make(map[model.FactType]*model.TypeMatch)}

	for _, t := range model.FactTypes {
		r, c := refBy[t], candBy[t]
		if len(r) == 0 && len(c) == 0 {
			continue
		}
		var pairs []pairCandidate
		for i := range r {
			for j := range c {
				if p, ok := m.eligible(t, r[i], c[j], i, j, actionScores); ok {
					pairs = append(pairs, p)
				}
			}
		}
		res.ByType[t] = assign(r, c, pairs)
	}

	res.Conflicts = m.conflicts(res.ByType)
	m.score(&res, len(cand))
	return res
}

func (m *Matcher) eligible(t model.FactType, r, c model.Fact, i, j int, actionScores [][]float64) (pairCandidate, bool) {
	p := pairCandidate{ref: i, cand: j}
	switch t {
	case model.FactMoney, model.FactPercentage, model.FactNumber:
		if t == model.FactMoney && r.Value.Currency != "" && c.Value.Currency != "" && r.Value.Currency != c.Value.Currency {
			return p, false
		}
		if !numericEqual(r.Value.Amount, c.Value.Amount, m.Thresholds.NumericTolerance) {
			return p, false
		}
		p.score = ContextSimilarity(r.Context, c.Context)
		p.delta = abs(r.Value.Amount - c.Value.Amount)
		return p, p.score >= m.Thresholds.Context
	case model.FactDate:
		if r.Value.Date == nil || c.Value.Date == nil || !r.Value.Date.Compatible(*c.Value.Date) {
			return p, false
		}
		p.score = 1
		p.delta = -float64(sharedComponents(*r.Value.Date, *c.Value.Date))
		return p, true
	case model.FactNamedEntity:
		p.score = 1
		return p, r.Value.Text == c.Value.Text && r.Value.Category == c.Value.Category
	case model.FactAction:
		if actionScores == nil {
			p.score = 0
			if r.Value.Phrase == c.Value.Phrase {
				p.score = 1
			}
		} else if i < len(actionScores) && j < len(actionScores[i]) {
			p.score = actionScores[i][j]
		}
		return p, p.score >= m.Thresholds.ActionMatch
	}
	return p, false
}

// assign greedily pairs the best-scoring eligible candidates. Ties break on
// the smaller value delta and then on fact keys, so input order never matters.
func assign(ref, cand []model.Fact, pairs []pairCandidate) *model.TypeMatch {
	sort.Slice(pairs, func(a, b int) bool {
		pa, pb := pairs[a], pairs[b]
		if pa.score != pb.score {
			return pa.score > pb.score
		}
		if pa.delta != pb.delta {
			return pa.delta < pb.delta
		}
		if ka, kb := ref[pa.ref].Key(), ref[pb.ref].Key(); ka != kb {
			return ka < kb
		}
		return cand[pa.cand].Key() < cand[pb.cand].Key()
	})

	usedRef := make([]bool, len(ref))
	usedCand := make([]bool, len(cand))
	tm := &model.TypeMatch{}
	for _, p := range pairs {
		if usedRef[p.ref] || usedCand[p.cand] {
			continue
		}
		usedRef[p.ref], usedCand[p.cand] = true, true
		tm.Matched = append(tm.Matched, model.FactPair{Reference: ref[p.ref], Candidate: cand[p.cand], Score: p.score})
	}
	for i, f := range ref {
		if !usedRef[i] {
			tm.Missing = append(tm.Missing, f)
		}
	}
	for j, f := range cand {
		if !usedCand[j] {
			tm.Extra = append(tm.Extra, f)
		}
	}
	sortPairs(tm.Matched)
	sortFacts(tm.Missing)
	sortFacts(tm.Extra)
	return tm
}

// conflicts pairs missing value-typed reference facts with unmatched
// candidate facts of the same type that appear in a similar context.
func (m *Matcher) conflicts(byType map[model.FactType]*model.TypeMatch) []model.FactPair {
	var out []model.FactPair
	for _, t := range model.FactTypes {
		tm, ok := byType[t]
		if !ok || !t.IsValue() {
			continue
		}
		var pairs []pairCandidate
		for i, r := range tm.Missing {
			for j, c := range tm.Extra {
				if s := ContextSimilarity(r.Context, c.Context); s >= m.Thresholds.Context {
					pairs = append(pairs, pairCandidate{ref: i, cand: j, score: s})
				}
			}
		}
		out = append(out, assign(tm.Missing, tm.Extra, pairs).Matched...)
	}
	return out
}

func (m *Matcher) score(res *model.FactMatchResult, candTotal int) {
	var acc, totalW float64
	var valueMissing, extra, keyMissing, keyTotal int
	for _, t := range model.FactTypes {
		tm, ok := res.ByType[t]
		if !ok {
			continue
		}
		extra += len(tm.Extra)
		if t == model.FactAction {
			extra -= restatedActions(tm)
		}
		refCount := len(tm.Matched) + len(tm.Missing)
		if refCount == 0 {
			continue
		}
		if t.IsValue() {
			valueMissing += len(tm.Missing)
		}
		for _, k := range keyFactTypes {
			if k == t {
				keyMissing += len(tm.Missing)
				keyTotal += refCount
			}
		}
		w := m.Weights.For(t)
		acc += w * float64(len(tm.Matched)) / float64(refCount)
		totalW += w
	}

	res.Score = 1
	if totalW > 0 {
		res.Score = clamp01(acc / totalW)
	}
	if valueMissing > 0 {
		res.ConflictShare = float64(len(res.Conflicts)) / float64(valueMissing)
	}
	if candTotal > 0 {
		res.ExtraShare = float64(extra) / float64(candTotal)
	}
	if keyTotal > 0 {
		res.KeyFactAbsence = float64(keyMissing) / float64(keyTotal)
	}
}

// restatedActions counts extra candidate actions that act on the same object
// as a missing reference action ("decline revenue" vs "increase revenue").
// Those are changed claims rather than invented ones.
func restatedActions(tm *model.TypeMatch) int {
	objects := make(map[string]bool, len(tm.Missing))
	for _, f := range tm.Missing {
		if obj := actionObjectOf(f.Value.Phrase); obj != "" {
			objects[obj] = true
		}
	}
	n := 0
	for _, f := range tm.Extra {
		if obj := actionObjectOf(f.Value.Phrase); obj != "" && objects[obj] {
			n++
		}
	}
	return n
}

func actionObjectOf(phrase string) string {
	if i := strings.LastIndexByte(phrase, ' '); i >= 0 {
		return phrase[i+1:]
	}
	return ""
}

// ContextSimilarity is the Jaccard similarity of two context word sets. Two
// empty contexts count as identical; exactly one empty context counts as 0.5.
func ContextSimilarity(a, b []string) float64 {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 1
	case len(a) == 0 || len(b) == 0:
		return 0.5
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func groupByType(facts []model.Fact) map[model.FactType][]model.Fact {
	out := make(map[model.FactType][]model.Fact)
	for _, f := range facts {
		out[f.Type] = append(out[f.Type], f)
	}
	return out
}

func sharedComponents(a, b model.CalendarValue) int {
	n := 0
	for _, pair := range [][2]int{{a.Year, b.Year}, {a.Quarter, b.Quarter}, {a.Month, b.Month}, {a.Day, b.Day}} {
		if pair[0] != 0 && pair[0] == pair[1] {
			n++
		}
	}
	return n
}

func sortFacts(fs []model.Fact) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Key() < fs[j].Key() })
}

func sortPairs(ps []model.FactPair) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Reference.Key() < ps[j].Reference.Key() })
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
