package model

import (
	"fmt"
	"strings"
)

type FactType string

const (
	FactMoney       FactType = "Money"
	FactDate        FactType = "Date"
	FactPercentage  FactType = "Percentage"
	FactNumber      FactType = "Number"
	FactNamedEntity FactType = "NamedEntity"
	FactAction      FactType = "Action"
)

// FactTypes lists every fact type in reporting order.
var FactTypes = []FactType{FactMoney, FactDate, FactPercentage, FactNumber, FactNamedEntity, FactAction}

// IsValue reports whether facts of this type carry a comparable value
// (as opposed to a presence-only mention).
func (t FactType) IsValue() bool {
	switch t {
	case FactMoney, FactDate, FactPercentage, FactNumber:
		return true
	}
	return false
}

// CalendarValue is a partially specified date. Zero components are unspecified.
// Relative holds an unresolved relative expression such as "last year".
type CalendarValue struct {
	Year     int    `json:"year,omitempty"`
	Quarter  int    `json:"quarter,omitempty"`
	Month    int    `json:"month,omitempty"`
	Day      int    `json:"day,omitempty"`
	Relative string `json:"relative,omitempty"`
}

func (c CalendarValue) IsZero() bool {
	return c == CalendarValue{}
}

// Compatible reports whether two calendar values can denote the same date:
// they must share at least one specified component and agree on all shared ones.
func (c CalendarValue) Compatible(o CalendarValue) bool {
	if c.Relative != "" || o.Relative != "" {
		return c == o
	}
	shared := 0
	for _, pair := range [][2]int{{c.Year, o.Year}, {c.Quarter, o.Quarter}, {c.Month, o.Month}, {c.Day, o.Day}} {
		if pair[0] == 0 || pair[1] == 0 {
			continue
		}
		if pair[0] != pair[1] {
			return false
		}
		shared++
	}
	return shared > 0
}

func (c CalendarValue) String() string {
	if c.Relative != "" {
		return c.Relative
	}
	var parts []string
	if c.Year != 0 {
		parts = append(parts, fmt.Sprintf("%04d", c.Year))
	}
	if c.Quarter != 0 {
		parts = append(parts, fmt.Sprintf("Q%d", c.Quarter))
	}
	if c.Month != 0 {
		parts = append(parts, fmt.Sprintf("M%02d", c.Month))
	}
	if c.Day != 0 {
		parts = append(parts, fmt.Sprintf("D%02d", c.Day))
	}
	return strings.Join(parts, "-")
}

// FactValue is the normalized value of a fact; which fields are set depends on the fact type.
type FactValue struct {
	Amount   float64        `json:"amount,omitempty"`
	Currency string         `json:"currency,omitempty"`
	Date     *CalendarValue `json:"date,omitempty"`
	Text     string         `json:"text,omitempty"`
	Category string         `json:"category,omitempty"`
	Phrase   string         `json:"phrase,omitempty"`
}

// Fact is a typed extraction belonging to exactly one paragraph.
type Fact struct {
	ParagraphID string    `json:"paragraph_id"`
	Type        FactType  `json:"type"`
	Value       FactValue `json:"value"`
	Raw         string    `json:"raw"`
	Context     []string  `json:"context,omitempty"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
}

// Key identifies a fact within its paragraph; it is used for deterministic ordering.
func (f Fact) Key() string {
	return fmt.Sprintf("%s|%08d|%s", f.Type, f.Start, f.Normalized())
}

// Normalized renders the fact's normalized value.
func (f Fact) Normalized() string {
	switch f.Type {
	case FactMoney:
		return fmt.Sprintf("%s %.2f", f.Value.Currency, f.Value.Amount)
	case FactPercentage, FactNumber:
		return fmt.Sprintf("%g", f.Value.Amount)
	case FactDate:
		if f.Value.Date != nil {
			return f.Value.Date.String()
		}
	case FactNamedEntity:
		return f.Value.Text + "/" + f.Value.Category
	case FactAction:
		return f.Value.Phrase
	}
	return strings.ToLower(f.Raw)
}

// FactPair is a matched or conflicting (reference, candidate) pair.
type FactPair struct {
	Reference Fact    `json:"reference"`
	Candidate Fact    `json:"candidate"`
	Score     float64 `json:"score"`
}

type TypeMatch struct {
	Matched []FactPair `json:"matched"`
	Missing []Fact     `json:"missing"`
	Extra   []Fact     `json:"extra"`
}

// FactMatchResult is the outcome of matching a candidate's facts against the reference's.
type FactMatchResult struct {
	ByType    map[FactType]*TypeMatch `json:"by_type"`
	Conflicts []FactPair              `json:"conflicts,omitempty"`

	// Score is the factual consistency score in [0,1].
	Score float64 `json:"score"`

	// ConflictShare is the share of missing value-typed reference facts that
	// have a same-type, same-context candidate fact with a different value.
	ConflictShare float64 `json:"conflict_share"`

	// ExtraShare is the share of candidate facts that matched nothing. An
	// unmatched action on the same object as a missing reference action
	// counts as changed, not extra.
	ExtraShare float64 `json:"extra_share"`

	// KeyFactAbsence is the pooled missing share over Money, Date, NamedEntity and Action.
	KeyFactAbsence float64 `json:"key_fact_absence"`
}

// ConflictTypes returns the fact types involved in conflicts in reporting order.
func (r FactMatchResult) ConflictTypes() []FactType {
	seen := make(map[FactType]bool)
	for _, c := range r.Conflicts {
		seen[c.Reference.Type] = true
	}
	var out []FactType
	for _, t := range FactTypes {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// MissingTypes returns the types among keys that have at least one missing fact, in reporting order.
func (r FactMatchResult) MissingTypes(keys ...FactType) []FactType {
	var out []FactType
	for _, t := range FactTypes {
		m, ok := r.ByType[t]
		if !ok || len(m.Missing) == 0 {
			continue
		}
		if len(keys) == 0 {
			out = append(out, t)
			continue
		}
		for _, k := range keys {
			if k == t {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// JoinTypes renders types as "Money/Date".
func JoinTypes(types []FactType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, "/")
}
