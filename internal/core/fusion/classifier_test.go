package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core/model"
)

func fact(t model.FactType) model.Fact {
	return model.Fact{Type: t}
}

func TestClassify(t *testing.T) {
	conflicts := []model.FactPair{
		{Reference: fact(model.FactMoney)},
		{Reference: fact(model.FactDate)},
		{Reference: fact(model.FactPercentage)},
	}
	omitted := map[model.FactType]*model.TypeMatch{
		model.FactMoney:      {Missing: []model.Fact{fact(model.FactMoney)}},
		model.FactPercentage: {Missing: []model.Fact{fact(model.FactPercentage)}},
		model.FactDate:       {Missing: []model.Fact{fact(model.FactDate)}},
		model.FactAction:     {Missing: []model.Fact{fact(model.FactAction)}},
	}

	tests := []struct {
		name       string
		sig        Signals
		want       model.Classification
		confidence float64
		reason     string
	}{
		{
			name:       "off topic",
			sig:        Signals{Similarity: model.SimilarityTriple{Combined: 0.01}, Facts: model.FactMatchResult{Score: 1}},
			want:       model.Irrelevant,
			confidence: 0.8,
			reason:     "Off-topic: combined similarity 0.01 below relevance threshold",
		},
		{
			name:       "degenerate",
			sig:        Signals{Similarity: model.SimilarityTriple{Degenerate: true}},
			want:       model.Irrelevant,
			confidence: 1,
			reason:     "Degenerate input: no comparable units",
		},
		{
			name: "opposite trend",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.4},
				Facts:         model.FactMatchResult{Score: 0.3, ExtraShare: 1.0 / 3.0},
				Contradiction: 0.95,
			},
			want:       model.Contradiction,
			confidence: 0.85,
			reason:     "Opposite trend vs reference",
		},
		{
			name: "invented outcome",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.4},
				Facts:         model.FactMatchResult{Score: 0.3, ExtraShare: 0.8},
				Contradiction: 0.85,
			},
			want:       model.Fabrication,
			confidence: 0.6 + 0.3*(0.5+0.8)/2,
			reason:     "Reversed or invented outcome vs reference",
		},
		{
			name: "value mismatch",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.5},
				Facts:         model.FactMatchResult{Score: 0.05 / 0.9, ConflictShare: 0.6, ExtraShare: 0.75, Conflicts: conflicts},
				Contradiction: 0.02,
			},
			want:       model.FactualError,
			confidence: 0.55 + 0.3*(0.6-0.05/0.9)/0.6 + 0.15*0.6,
			reason:     "Money/Date/Percentage mismatch",
		},
		{
			name: "omission",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.1},
				Facts:         model.FactMatchResult{Score: 0, KeyFactAbsence: 1, ByType: omitted},
				Contradiction: 0.02,
			},
			want:       model.Omission,
			confidence: 0.75,
			reason:     "Key facts missing: Money/Date/Action",
		},
		{
			name: "consistent",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 1},
				Facts:         model.FactMatchResult{Score: 1},
				Contradiction: 0.02,
			},
			want:       model.Consistent,
			confidence: (1 + 1 + 0.98) / 3,
			reason:     "Consistent with reference",
		},
		{
			name: "single money swap",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.94},
				Facts:         model.FactMatchResult{Score: 0.722, ConflictShare: 1, Conflicts: conflicts[:1]},
				Contradiction: 0.02,
			},
			want:       model.FactualError,
			confidence: 0.55 + 0.15,
			reason:     "Money mismatch",
		},
		{
			name: "minor percentage conflict is named",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.9},
				Facts:         model.FactMatchResult{Score: 0.8, ConflictShare: 1, Conflicts: conflicts[2:]},
				Contradiction: 0.02,
			},
			want:       model.Consistent,
			confidence: (0.9 + 0.8 + 0.98) / 3,
			reason:     "Consistent with reference despite Percentage mismatch",
		},
		{
			name: "low fact score without conflicts stays consistent",
			sig: Signals{
				Similarity:    model.SimilarityTriple{Combined: 0.7},
				Facts:         model.FactMatchResult{Score: 0.4, KeyFactAbsence: 0.3},
				Contradiction: 0.1,
			},
			want:       model.Consistent,
			confidence: (0.7 + 0.4 + 0.9) / 3,
			reason:     "Consistent with reference",
		},
	}

	c := NewClassifier(config.Default().Thresholds)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.Classify(tt.sig)
			assert.Equal(t, tt.want, rec.Classification)
			assert.InDelta(t, tt.confidence, rec.Confidence, 1e-9)
			assert.Equal(t, tt.reason, rec.Reason)
			assert.Equal(t, tt.sig.Contradiction, rec.ContradictionScore)
		})
	}
}

func TestClassify_ConfidenceClipped(t *testing.T) {
	c := NewClassifier(config.Default().Thresholds)
	rec := c.Classify(Signals{
		Similarity: model.SimilarityTriple{Combined: 0.5},
		Facts: model.FactMatchResult{
			Score:         -0.5,
			ConflictShare: 1,
			Conflicts:     []model.FactPair{{Reference: fact(model.FactMoney)}},
		},
	})
	assert.Equal(t, model.FactualError, rec.Classification)
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestClassify_IsPure(t *testing.T) {
	c := NewClassifier(config.Default().Thresholds)
	sig := Signals{
		Similarity:    model.SimilarityTriple{Combined: 0.4},
		Facts:         model.FactMatchResult{Score: 0.3},
		Contradiction: 0.9,
	}
	assert.Equal(t, c.Classify(sig), c.Classify(sig))
}

func TestRules_EndWithCatchAll(t *testing.T) {
	last := Rules[len(Rules)-1]
	assert.Equal(t, model.Consistent, last.Classification)
	assert.True(t, last.Applies(config.Thresholds{}, Signals{}))
}
