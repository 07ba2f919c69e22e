package nlp

import (
	"regexp"
	"strings"
)

// actionVerbs maps inflected verb forms to their lemma.
var actionVerbs = buildVerbs(map[string][]string{
	"announce":    nil,
	"launch":      nil,
	"acquire":     nil,
	"expand":      nil,
	"hire":        nil,
	"cut":         {"cutting"},
	"close":       nil,
	"open":        nil,
	"sign":        nil,
	"complete":    nil,
	"report":      nil,
	"release":     nil,
	"raise":       nil,
	"reduce":      nil,
	"increase":    nil,
	"decrease":    nil,
	"decline":     nil,
	"grow":        {"grew", "grown"},
	"improve":     nil,
	"drop":        {"dropped", "dropping"},
	"fall":        {"fell", "fallen"},
	"rise":        {"rose", "risen"},
	"invest":      nil,
	"approve":     nil,
	"reject":      nil,
	"cancel":      {"cancelled", "cancelling"},
	"delay":       nil,
	"win":         {"won", "winning"},
	"lose":        {"lost"},
	"sell":        {"sold"},
	"buy":         {"bought"},
	"merge":       nil,
	"appoint":     nil,
	"resign":      nil,
	"deliver":     nil,
	"introduce":   nil,
	"plan":        {"planned", "planning"},
	"restructure": nil,
	"partner":     nil,
	"postpone":    nil,
	"terminate":   nil,
})

func buildVerbs(lemmas map[string][]string) map[string]string {
	out := make(map[string]string)
	for lemma, irregular := range lemmas {
		out[lemma] = lemma
		stem := strings.TrimSuffix(lemma, "e")
		if strings.HasSuffix(lemma, "e") {
			out[lemma+"s"] = lemma
			out[lemma+"d"] = lemma
		} else {
			out[lemma+"s"] = lemma
			out[lemma+"ed"] = lemma
		}
		out[stem+"ing"] = lemma
		for _, f := range irregular {
			out[f] = lemma
		}
	}
	return out
}

// ActionLemma returns the lemma of an action verb form.
func ActionLemma(tok string) (string, bool) {
	l, ok := actionVerbs[tok]
	return l, ok
}

// directionWords maps trend words to their polarity.
var directionWords = map[string]int{
	"increase": 1, "increased": 1, "increases": 1, "increasing": 1,
	"rise": 1, "rose": 1, "risen": 1, "rises": 1, "rising": 1,
	"grow": 1, "grew": 1, "grown": 1, "grows": 1, "growing": 1, "growth": 1,
	"up": 1, "improve": 1, "improved": 1, "improves": 1, "improving": 1,
	"gain": 1, "gained": 1, "gains": 1, "higher": 1, "climbed": 1, "jumped": 1,
	"surged": 1, "soared": 1, "rebounded": 1, "strengthened": 1, "boosted": 1,

	"decline": -1, "declined": -1, "declines": -1, "declining": -1,
	"decrease": -1, "decreased": -1, "decreases": -1, "decreasing": -1,
	"fall": -1, "fell": -1, "fallen": -1, "falls": -1, "falling": -1,
	"drop": -1, "dropped": -1, "drops": -1, "dropping": -1,
	"down": -1, "worsened": -1, "lower": -1, "lowered": -1, "shrank": -1, "shrunk": -1,
	"contracted": -1, "plunged": -1, "slumped": -1, "weakened": -1, "deteriorated": -1,
}

// Direction returns the trend polarity of tok (+1 or -1) and whether it is a trend word.
func Direction(tok string) (int, bool) {
	p, ok := directionWords[tok]
	return p, ok
}

// IsNegator reports whether tok negates a nearby claim.
func IsNegator(tok string) bool {
	switch tok {
	case "not", "no", "never", "without", "cannot", "neither", "nor":
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

// Months maps month names and abbreviations to month numbers.
var Months = map[string]int{
	"january": 1, "jan": 1, "february": 2, "feb": 2, "march": 3, "mar": 3,
	"april": 4, "apr": 4, "may": 5, "june": 6, "jun": 6, "july": 7, "jul": 7,
	"august": 8, "aug": 8, "september": 9, "sep": 9, "sept": 9, "october": 10, "oct": 10,
	"november": 11, "nov": 11, "december": 12, "dec": 12,
}

var weekdays = toSet("monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"mon", "tue", "tues", "wed", "thu", "thur", "thurs", "fri", "sat", "sun")

var quarterRe = regexp.MustCompile(`(?i)^q[1-4]$`)

// IsTemporal reports whether tok names a month, weekday or quarter.
func IsTemporal(tok string) bool {
	t := strings.ToLower(tok)
	if _, ok := Months[t]; ok {
		return true
	}
	return weekdays[t] || quarterRe.MatchString(t)
}

var titles = toSet("ceo", "cfo", "cto", "coo", "cmo", "president", "chairman", "chairwoman", "chair",
	"director", "mr", "mrs", "ms", "dr", "prof", "professor", "sir", "dame", "founder", "minister", "senator", "governor")

var orgSuffixes = toSet("inc", "corp", "corporation", "ltd", "llc", "plc", "co", "company", "group",
	"holdings", "bank", "technologies", "systems", "partners", "labs", "ag", "gmbh", "sa")

var locations = toSet(
	"united states", "usa", "us", "u.s", "america", "north america", "south america", "latin america",
	"europe", "asia", "africa", "middle east", "china", "japan", "germany", "france", "india", "canada",
	"mexico", "brazil", "uk", "united kingdom", "britain", "italy", "spain", "australia", "singapore",
	"korea", "south korea", "russia", "ukraine", "israel", "switzerland", "netherlands", "sweden",
	"london", "new york", "paris", "tokyo", "beijing", "shanghai", "berlin", "california", "texas",
	"san francisco", "seattle", "boston", "chicago", "toronto", "sydney", "hong kong", "dubai",
	"washington", "austin", "munich", "zurich", "amsterdam", "dublin", "bangalore", "mumbai",
)
