package facts

import (
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/factcheck/internal/core/model"
)

var scales = map[string]float64{
	"k": 1e3, "thousand": 1e3,
	"m": 1e6, "mm": 1e6, "mn": 1e6, "million": 1e6,
	"b": 1e9, "bn": 1e9, "billion": 1e9,
	"t": 1e12, "trillion": 1e12,
}

var currencies = map[string]string{
	"$": "USD", "us$": "USD", "usd": "USD", "dollar": "USD", "dollars": "USD",
	"€": "EUR", "eur": "EUR", "euro": "EUR", "euros": "EUR",
	"£": "GBP", "gbp": "GBP", "pound": "GBP", "pounds": "GBP",
	"¥": "JPY", "jpy": "JPY", "yen": "JPY",
}

// parseAmount parses "2,500.75" with an optional scale word ("M", "million").
func parseAmount(num, scale string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if s := strings.ToLower(strings.TrimSpace(scale)); s != "" {
		mult, ok := scales[s]
		if !ok {
			return 0, false
		}
		v *= mult
	}
	return v, true
}

func currencyCode(s string) string {
	return currencies[strings.ToLower(strings.TrimSpace(s))]
}

func quarterOf(month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	return (month-1)/3 + 1
}

func calendarFromTime(t time.Time) model.CalendarValue {
	return model.CalendarValue{Year: t.Year(), Quarter: quarterOf(int(t.Month())), Month: int(t.Month()), Day: t.Day()}
}

// resolveRelative turns a relative expression into a calendar value against
// anchor. Without an anchor the expression stays symbolic.
func resolveRelative(expr string, anchor *time.Time) model.CalendarValue {
	expr = strings.Join(strings.Fields(strings.ToLower(expr)), " ")
	if anchor == nil {
		return model.CalendarValue{Relative: expr}
	}
	a := *anchor
	switch expr {
	case "today":
		return calendarFromTime(a)
	case "yesterday":
		return calendarFromTime(a.AddDate(0, 0, -1))
	case "tomorrow":
		return calendarFromTime(a.AddDate(0, 0, 1))
	}

	fields := strings.Fields(expr)
	if len(fields) != 2 {
		return model.CalendarValue{Relative: expr}
	}
	offset := 0
	switch fields[0] {
	case "last", "previous":
		offset = -1
	case "next":
		offset = 1
	}
	switch fields[1] {
	case "year":
		return model.CalendarValue{Year: a.Year() + offset}
	case "month":
		t := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
		return model.CalendarValue{Year: t.Year(), Quarter: quarterOf(int(t.Month())), Month: int(t.Month())}
	case "quarter":
		q := quarterOf(int(a.Month())) + offset
		y := a.Year()
		switch {
		case q < 1:
			q, y = 4, y-1
		case q > 4:
			q, y = 1, y+1
		}
		return model.CalendarValue{Year: y, Quarter: q}
	}
	return model.CalendarValue{Relative: expr}
}

// numericEqual compares two values within a relative tolerance.
func numericEqual(a, b, tol float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	scale := abs(a)
	if abs(b) > scale {
		scale = abs(b)
	}
	return diff <= tol*scale
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
