package facts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/factcheck/internal/core/model"
	"github.com/agenthands/factcheck/internal/nlp"
	"github.com/agenthands/factcheck/internal/provider"
)

const reference = "Revenue was $2.5M in Q4 2023, up 15%. CEO John Smith announced expansion Jan 15, 2024. Margin improved to 22%."

func extract(t *testing.T, id, text string, anchor *time.Time) []model.Fact {
	t.Helper()
	facts, err := NewExtractor(nlp.NewRuleExtractor(), anchor).Extract(context.Background(), model.Paragraph{ID: id, Text: text})
	require.NoError(t, err)
	return facts
}

func ofType(facts []model.Fact, ft model.FactType) []model.Fact {
	var out []model.Fact
	for _, f := range facts {
		if f.Type == ft {
			out = append(out, f)
		}
	}
	return out
}

func TestExtract_ReferenceParagraph(t *testing.T) {
	facts := extract(t, "ref", reference, nil)

	money := ofType(facts, model.FactMoney)
	require.Len(t, money, 1)
	assert.Equal(t, "USD", money[0].Value.Currency)
	assert.InDelta(t, 2.5e6, money[0].Value.Amount, 1e-6)
	assert.Equal(t, "$2.5M", money[0].Raw)
	assert.Equal(t, []string{"revenue"}, money[0].Context)

	dates := ofType(facts, model.FactDate)
	require.Len(t, dates, 2)
	assert.Equal(t, model.CalendarValue{Year: 2023, Quarter: 4}, *dates[0].Value.Date)
	assert.Equal(t, model.CalendarValue{Year: 2024, Quarter: 1, Month: 1, Day: 15}, *dates[1].Value.Date)

	pct := ofType(facts, model.FactPercentage)
	require.Len(t, pct, 2)
	assert.InDelta(t, 0.15, pct[0].Value.Amount, 1e-12)
	assert.InDelta(t, 0.22, pct[1].Value.Amount, 1e-12)

	assert.Empty(t, ofType(facts, model.FactNumber))

	entities := ofType(facts, model.FactNamedEntity)
	require.Len(t, entities, 1)
	assert.Equal(t, "john smith", entities[0].Value.Text)
	assert.Equal(t, model.CategoryPerson, entities[0].Value.Category)

	assert.Equal(t, []string{"announce expansion", "improve margin"}, ActionPhrases(facts))

	for i := 1; i < len(facts); i++ {
		assert.LessOrEqual(t, facts[i-1].Start, facts[i].Start)
	}
	for _, f := range facts {
		assert.Equal(t, "ref", f.ParagraphID)
	}
}

func TestExtract_MoneyForms(t *testing.T) {
	tests := []struct {
		text     string
		amount   float64
		currency string
	}{
		{"Sales hit $3.2 million.", 3.2e6, "USD"},
		{"Sales hit €1,200.", 1200, "EUR"},
		{"Sales hit USD 40k.", 40000, "USD"},
		{"Sales hit 12 billion dollars.", 12e9, "USD"},
		{"Sales hit £7bn.", 7e9, "GBP"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			money := ofType(extract(t, "p", tt.text, nil), model.FactMoney)
			require.Len(t, money, 1)
			assert.InDelta(t, tt.amount, money[0].Value.Amount, 1e-6)
			assert.Equal(t, tt.currency, money[0].Value.Currency)
		})
	}
}

func TestExtract_DateForms(t *testing.T) {
	tests := []struct {
		text string
		want model.CalendarValue
	}{
		{"Signed on 2024-03-05.", model.CalendarValue{Year: 2024, Quarter: 1, Month: 3, Day: 5}},
		{"Signed on 3/5/2024.", model.CalendarValue{Year: 2024, Quarter: 1, Month: 3, Day: 5}},
		{"Signed on 5 March 2024.", model.CalendarValue{Year: 2024, Quarter: 1, Month: 3, Day: 5}},
		{"Signed in March 2024.", model.CalendarValue{Year: 2024, Quarter: 1, Month: 3}},
		{"Signed in the second quarter of 2022.", model.CalendarValue{Year: 2022, Quarter: 2}},
		{"Signed in FY2021.", model.CalendarValue{Year: 2021}},
		{"Signed in 1999.", model.CalendarValue{Year: 1999}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			dates := ofType(extract(t, "p", tt.text, nil), model.FactDate)
			require.Len(t, dates, 1)
			assert.Equal(t, tt.want, *dates[0].Value.Date)
		})
	}
}

func TestExtract_RelativeDates(t *testing.T) {
	text := "Profit rose last year."

	dates := ofType(extract(t, "p", text, nil), model.FactDate)
	require.Len(t, dates, 1)
	assert.Equal(t, model.CalendarValue{Relative: "last year"}, *dates[0].Value.Date)

	anchor := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	dates = ofType(extract(t, "p", text, &anchor), model.FactDate)
	require.Len(t, dates, 1)
	assert.Equal(t, model.CalendarValue{Year: 2023}, *dates[0].Value.Date)

	dates = ofType(extract(t, "p", "Profit rose last quarter.", &anchor), model.FactDate)
	require.Len(t, dates, 1)
	assert.Equal(t, model.CalendarValue{Year: 2024, Quarter: 1}, *dates[0].Value.Date)
}

func TestExtract_PercentNotCountedAsNumber(t *testing.T) {
	facts := extract(t, "p", "Churn fell 4.5 percent across 300 stores.", nil)
	pct := ofType(facts, model.FactPercentage)
	require.Len(t, pct, 1)
	assert.InDelta(t, 0.045, pct[0].Value.Amount, 1e-12)

	nums := ofType(facts, model.FactNumber)
	require.Len(t, nums, 1)
	assert.Equal(t, 300.0, nums[0].Value.Amount)
}

func TestExtract_EmptyParagraphSkipsProvider(t *testing.T) {
	facts, err := NewExtractor(failingPhrases{}, nil).Extract(context.Background(), model.Paragraph{ID: "p", Text: "  "})
	require.NoError(t, err)
	assert.Empty(t, facts)
}

func TestExtract_ProviderFailure(t *testing.T) {
	_, err := NewExtractor(failingPhrases{}, nil).Extract(context.Background(), model.Paragraph{ID: "p", Text: "Revenue rose."})
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrUnavailable))
}

type failingPhrases struct{}

func (failingPhrases) Extract(context.Context, string) (model.Extraction, error) {
	return model.Extraction{}, errors.New("boom")
}
