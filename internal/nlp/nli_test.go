package nlp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicNLI(t *testing.T) {
	nli := NewHeuristicNLI()
	ctx := context.Background()

	tests := []struct {
		name          string
		premise       string
		hypothesis    string
		contradiction float64
	}{
		{"opposite trend", "Revenue increased 10% in 2023.", "Revenue declined 10% in 2023.", 0.95},
		{"identical", example, example, 0.02},
		{"negated trend", "Revenue increased.", "Revenue did not increase.", 0.95},
		{"negated action", "The CEO announced expansion.", "The CEO never announced expansion.", 0.95},
		{"agreeing actions do not dilute", example, "Revenue declined in Q4. CEO announced expansion.", 0.95},
		{"unrelated subjects", example, "Company performed well; CEO optimistic about growth.", 0.02},
		{"one reversal among agreeing claims", "Revenue increased in Q4. Margin improved. Costs fell.", "Revenue declined in Q4. Margin improved. Costs fell.", 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := nli.Entailment(ctx, tt.premise, tt.hypothesis)
			require.NoError(t, err)
			assert.InDelta(t, tt.contradiction, p.Contradiction, 1e-9)
			assert.InDelta(t, 1.0, p.Entailment+p.Neutral+p.Contradiction, 1e-9)
		})
	}
}

func TestHeuristicNLI_IdenticalIsEntailed(t *testing.T) {
	p, err := NewHeuristicNLI().Entailment(context.Background(), example, example)
	require.NoError(t, err)
	assert.InDelta(t, 0.98, p.Entailment, 1e-9)
}

func TestReversed(t *testing.T) {
	flipped := strings.Replace(example, "up 15%", "down 15%", 1)
	assert.Equal(t, []string{"revenue"}, Reversed(example, flipped))
	assert.Empty(t, Reversed(example, example))
}

func TestClaims(t *testing.T) {
	claims := Claims(example)
	assert.Equal(t, map[string]int{"revenue": 1, "margin": 1, "act:announce": 1}, claims)
}

func TestRuleExtractor(t *testing.T) {
	ext, err := NewRuleExtractor().Extract(context.Background(), example)
	require.NoError(t, err)
	assert.Len(t, ext.Sentences, 3)
	assert.Equal(t, []string{"revenue", "ceo john smith", "expansion jan 15", "margin"}, ext.NounPhrases)
	assert.Equal(t, "John Smith", ext.Entities[0].Text)
}
