// Package policy implements the content policy gate (C9): a coarse,
// intentionally over-broad regex blocklist applied both input-side (the
// supervisor short-circuits to FINISH on a match) and output-side (the
// summarizer scrubs matched fragments from the final response). The
// blocklist itself is data, not code — loaded from an hjson document the
// way the teacher loads human-maintained config, via
// github.com/hjson/hjson-go/v4 (pkg/core/utils imports the same library for
// LLM-output repair; here it serves operator-edited policy instead).
package policy

import (
	"regexp"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
)

// Category groups related patterns for reporting purposes; spec.md §4.9
// names exactly three.
type Category string

const (
	CategoryReligious          Category = "religious"
	CategoryPolitical          Category = "political"
	CategoryInvestmentStrategy Category = "investment_strategy"
)

type rule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// Gate is the compiled blocklist. Replace wholesale (spec.md §9) rather than
// patching individual patterns in place when tightening.
type Gate struct {
	rules []rule
}

// defaultPatterns is the exhaustive conservative blocklist, grounded on
// spec.md §4.9's three categories. It is intentionally coarse: "debt" falls
// under investment_strategy and will false-positive, which is an accepted
// trade-off, not a bug.
var defaultPatterns = map[Category][]string{
	CategoryReligious: {
		`\bpray(er|ing)?\b`,
		`\bgod\b`,
		`\bchurch\b`,
		`\bbible\b`,
		`\bquran\b`,
		`\breligious\b`,
		`\bfaith[- ]based\b`,
	},
	CategoryPolitical: {
		`\belection\b`,
		`\bpresident\b`,
		`\bcongress\b`,
		`\bpolitical party\b`,
		`\bvote\b`,
		`\bsenator\b`,
		`\bpolitician\b`,
	},
	CategoryInvestmentStrategy: {
		`\bwhich stock\b`,
		`\bbuy.*stock\b`,
		`\bcrypto(currency)?\b`,
		`\bbitcoin\b`,
		`\bshould i invest\b`,
		`\binvestment advice\b`,
		`\bdebt\b`,
		`\bday.?trad(e|ing)\b`,
	},
}

// RefusalMessage is the fixed summary text the supervisor uses when the gate
// matches on input, naming the three in-scope topics per spec.md §4.9.
const RefusalMessage = "I can only help with pension analysis, risk, and fraud topics. I can't advise on religious, political, or specific investment-strategy questions."

// outputApologyPhrase replaces any output-side match.
const outputApologyPhrase = "[content removed: outside the scope of pension, risk, and fraud analysis]"

// New compiles the built-in default patterns.
func New() *Gate {
	g := &Gate{}
	for cat, patterns := range defaultPatterns {
		for _, p := range patterns {
			g.rules = append(g.rules, rule{Category: cat, Pattern: regexp.MustCompile("(?i)" + p)})
		}
	}
	return g
}

// LoadHJSON replaces the default patterns with ones decoded from an hjson
// document shaped as {"religious": [...], "political": [...],
// "investment_strategy": [...]}, letting operators maintain the blocklist
// without a Go rebuild.
func LoadHJSON(doc []byte) (*Gate, error) {
	var raw map[string][]string
	if err := hjson.Unmarshal(doc, &raw); err != nil {
		return nil, err
	}
	g := &Gate{}
	for catName, patterns := range raw {
		cat := Category(catName)
		for _, p := range patterns {
			g.rules = append(g.rules, rule{Category: cat, Pattern: regexp.MustCompile("(?i)" + p)})
		}
	}
	return g, nil
}

// Matches reports whether query trips any rule, and if so which category.
func (g *Gate) Matches(query string) (bool, Category) {
	lower := strings.ToLower(query)
	for _, r := range g.rules {
		if r.Pattern.MatchString(lower) {
			return true, r.Category
		}
	}
	return false, ""
}

// Scrub replaces every matched fragment in text with the standard apology
// phrase, for the summarizer's output-side pass (spec.md §4.12).
func (g *Gate) Scrub(text string) string {
	out := text
	for _, r := range g.rules {
		out = r.Pattern.ReplaceAllString(out, outputApologyPhrase)
	}
	return out
}
