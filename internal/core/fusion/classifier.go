// Package fusion combines similarity, fact and contradiction signals into a
// single classification through an ordered rule table.
package fusion

import (
	"fmt"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
)

var keyFactTypes = []model.FactType{model.FactMoney, model.FactDate, model.FactNamedEntity, model.FactAction}

// criticalConflictTypes are value types whose dominant conflicts are a
// FactualError even when the remaining facts keep FCS above threshold.
var criticalConflictTypes = []model.FactType{model.FactMoney, model.FactDate}

// Signals are the per-pair inputs to classification.
type Signals struct {
	Similarity    model.SimilarityTriple
	Facts         model.FactMatchResult
	Contradiction float64
}

// Rule is one row of the decision table. Rules are tried in order and the
// first matching predicate decides the classification.
type Rule struct {
	Name           string
	Classification model.Classification
	Applies        func(t config.Thresholds, s Signals) bool
	Confidence     func(t config.Thresholds, s Signals) float64
	Reason         func(t config.Thresholds, s Signals) string
}

// Rules is the decision table in evaluation order.
var Rules = []Rule{
	{
		Name:           "irrelevant",
		Classification: model.Irrelevant,
		Applies: func(t config.Thresholds, s Signals) bool {
			return s.Similarity.Degenerate || s.Similarity.Combined < t.Relevance
		},
		Confidence: func(t config.Thresholds, s Signals) float64 {
			if s.Similarity.Degenerate || t.Relevance <= 0 {
				return 1
			}
			return (t.Relevance - s.Similarity.Combined) / t.Relevance
		},
		Reason: func(t config.Thresholds, s Signals) string {
			if s.Similarity.Degenerate {
				return "Degenerate input: no comparable units"
			}
			return fmt.Sprintf("Off-topic: combined similarity %.2f below relevance threshold", s.Similarity.Combined)
		},
	},
	{
		Name:           "contradiction",
		Classification: model.Contradiction,
		Applies: func(t config.Thresholds, s Signals) bool {
			return s.Contradiction >= t.ContradictionHigh &&
				s.Facts.ConflictShare < t.ConflictDominance &&
				s.Facts.ExtraShare < t.Extra
		},
		Confidence: func(t config.Thresholds, s Signals) float64 {
			return 0.6 + 0.3*margin(s.Contradiction, t.ContradictionHigh)
		},
		Reason: func(config.Thresholds, Signals) string { return "Opposite trend vs reference" },
	},
	{
		Name:           "fabrication",
		Classification: model.Fabrication,
		Applies: func(t config.Thresholds, s Signals) bool {
			return s.Contradiction >= t.ContradictionHigh
		},
		Confidence: func(t config.Thresholds, s Signals) float64 {
			share := max(s.Facts.ConflictShare, s.Facts.ExtraShare)
			return 0.6 + 0.3*(margin(s.Contradiction, t.ContradictionHigh)+share)/2
		},
		Reason: func(config.Thresholds, Signals) string { return "Reversed or invented outcome vs reference" },
	},
	{
		Name:           "factual_error",
		Classification: model.FactualError,
		Applies: func(t config.Thresholds, s Signals) bool {
			if s.Facts.ConflictShare < t.ConflictDominance {
				return false
			}
			return s.Facts.Score < t.FactConsistencyLow || hasConflict(s.Facts, criticalConflictTypes...)
		},
		Confidence: func(t config.Thresholds, s Signals) float64 {
			gap := 0.0
			if t.FactConsistencyLow > 0 {
				gap = max(0, (t.FactConsistencyLow-s.Facts.Score)/t.FactConsistencyLow)
			}
			return 0.55 + 0.3*gap + 0.15*s.Facts.ConflictShare
		},
		Reason: func(_ config.Thresholds, s Signals) string {
			return model.JoinTypes(s.Facts.ConflictTypes()) + " mismatch"
		},
	},
	{
		Name:           "omission",
		Classification: model.Omission,
		Applies: func(t config.Thresholds, s Signals) bool {
			return s.Facts.KeyFactAbsence >= t.Omission && len(s.Facts.Conflicts) == 0
		},
		Confidence: func(t config.Thresholds, s Signals) float64 {
			return 0.55 + 0.2*margin(s.Facts.KeyFactAbsence, t.Omission)
		},
		Reason: func(_ config.Thresholds, s Signals) string {
			return "Key facts missing: " + model.JoinTypes(s.Facts.MissingTypes(keyFactTypes...))
		},
	},
	{
		Name:           "consistent",
		Classification: model.Consistent,
		Applies:        func(config.Thresholds, Signals) bool { return true },
		Confidence: func(_ config.Thresholds, s Signals) float64 {
			return (s.Similarity.Combined + s.Facts.Score + (1 - s.Contradiction)) / 3
		},
		Reason: func(_ config.Thresholds, s Signals) string {
			if len(s.Facts.Conflicts) > 0 {
				return "Consistent with reference despite " + model.JoinTypes(s.Facts.ConflictTypes()) + " mismatch"
			}
			return "Consistent with reference"
		},
	},
}

type Classifier struct {
	Thresholds config.Thresholds
	Rules      []Rule
}

func NewClassifier(thresholds config.Thresholds) *Classifier {
	return &Classifier{Thresholds: thresholds, Rules: Rules}
}

// Classify applies the first matching rule. It is a pure function of its
// inputs. The returned record carries the scores but no paragraph IDs.
func (c *Classifier) Classify(s Signals) model.HallucinationRecord {
	rec := model.HallucinationRecord{
		CombinedSimilarity:      s.Similarity.Combined,
		FactualConsistencyScore: s.Facts.Score,
		ContradictionScore:      s.Contradiction,
		MissingUnits:            s.Similarity.MissingUnits,
		ExtraUnits:              s.Similarity.ExtraUnits,
	}
	for _, r := range c.Rules {
		if !r.Applies(c.Thresholds, s) {
			continue
		}
		rec.Classification = r.Classification
		rec.Confidence = clamp01(r.Confidence(c.Thresholds, s))
		rec.Reason = r.Reason(c.Thresholds, s)
		return rec
	}
	rec.Classification = model.Consistent
	rec.Reason = "Consistent with reference"
	return rec
}

func hasConflict(r model.FactMatchResult, types ...model.FactType) bool {
	for _, c := range r.Conflicts {
		for _, t := range types {
			if c.Reference.Type == t {
				return true
			}
		}
	}
	return false
}

// margin is how far v exceeds threshold, scaled to [0,1] over the remaining range.
func margin(v, threshold float64) float64 {
	if threshold >= 1 {
		return 0
	}
	return clamp01((v - threshold) / (1 - threshold))
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
