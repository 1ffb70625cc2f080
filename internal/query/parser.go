// Package query classifies short free-text questions about localities into an intent,
// the localities they name and an optional year window.
package query

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the classified purpose of a query.
type Intent string

const (
	IntentCompare Intent = "compare"
	IntentGrowth  Intent = "growth"
	IntentAnalyze Intent = "analyze"
)

// Parsed is the result of classifying a query. LastNYears is 0 when the query names no
// window.
type Parsed struct {
	Intent     Intent   `json:"intent" jsonschema_description:"compare, growth or analyze"`
	Areas      []string `json:"areas" jsonschema_description:"Localities named by the query (lower-case)"`
	LastNYears int      `json:"last_n_years,omitempty" jsonschema_description:"Trailing year window for growth queries"`
}

// rule pairs a pattern with the constructor that builds a Parsed from its submatches.
// build reports false when the submatches cannot produce a result; the next rule is tried.
// MaxYearWindow caps the year count a growth query can ask for.
const MaxYearWindow = 100

type rule struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) (Parsed, bool)
}

// rules are evaluated in order and the first match wins. compare needs a conjunction
// word and growth needs the literal "price growth for", so they never overlap.
var rules = []rule{
	{
		name: "compare",
		pattern: regexp.MustCompile(`compare\s+([a-z0-9\s]+?)\s+(?:and|with|vs\.?|versus)\s+([a-z0-9\s]+?)` +
			`(?:\s+(?:demand|price|growth|trend|trends).*)?$`),
		build: func(m []string) (Parsed, bool) {
			return Parsed{Intent: IntentCompare, Areas: []string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])}}, true
		},
	},
	{
		name:    "growth",
		pattern: regexp.MustCompile(`price growth for\s+([a-z0-9\s]+)\s+(?:over the last|in the last)\s+(\d+)\s+years?`),
		build: func(m []string) (Parsed, bool) {
			n, err := strconv.Atoi(m[2])
			if err != nil || n > MaxYearWindow {
				n = MaxYearWindow
			}
			return Parsed{Intent: IntentGrowth, Areas: []string{strings.TrimSpace(m[1])}, LastNYears: n}, true
		},
	},
	{
		name:    "analyze",
		pattern: regexp.MustCompile(`analyz(?:e|is)\s+([a-z0-9\s]+)`),
		build:   analyzeOne,
	},
	{
		name:    "analysis_of",
		pattern: regexp.MustCompile(`analysis of\s+([a-z0-9\s]+)`),
		build:   analyzeOne,
	},
}

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

func analyzeOne(m []string) (Parsed, bool) {
	return Parsed{Intent: IntentAnalyze, Areas: []string{strings.TrimSpace(m[1])}}, true
}

// Parse classifies q. It never fails: text matching no rule falls back to analyzing the
// last word, and text without words yields an analyze intent with no areas.
func Parse(q string) Parsed {
	p, _ := ParseWithRule(q)
	return p
}

// ParseWithRule is Parse that also reports which rule fired ("fallback" or "empty"
// when none did).
func ParseWithRule(q string) (Parsed, string) {
	low := strings.Join(strings.Fields(strings.ToLower(q)), " ")
	for _, r := range rules {
		m := r.pattern.FindStringSubmatch(low)
		if m == nil {
			continue
		}
		if p, ok := r.build(m); ok {
			return p, r.name
		}
	}
	words := wordRe.FindAllString(low, -1)
	if len(words) > 0 {
		return Parsed{Intent: IntentAnalyze, Areas: []string{words[len(words)-1]}}, "fallback"
	}
	return Parsed{Intent: IntentAnalyze, Areas: []string{}}, "empty"
}
