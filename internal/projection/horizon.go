package projection

import (
	"regexp"
	"strconv"
)

var (
	retireInYears  = regexp.MustCompile(`(?i)retire\s+in\s+(\d+)\s+years?`)
	retireAtAge    = regexp.MustCompile(`(?i)retire\s+at\s+age\s+(\d+)`)
	retireEarly    = regexp.MustCompile(`(?i)retire\s+(early|soon)`)
	retireNextYear = regexp.MustCompile(`(?i)retire\s+next\s+year`)
	retireInMonths = regexp.MustCompile(`(?i)retire\s+in\s+(\d+)\s+months?`)
)

// horizonYears parses a natural-language time-horizon hint out of query,
// trying each pattern in order and returning the first match. If nothing
// matches, it defaults to retirementAgeGoal - age. The parser is a pure
// function of its inputs: calling it twice on the same query returns the
// same horizon.
func horizonYears(query string, age, retirementAgeGoal int) float64 {
	if m := retireInYears.FindStringSubmatch(query); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n)
	}
	if m := retireAtAge.FindStringSubmatch(query); m != nil {
		a, _ := strconv.Atoi(m[1])
		n := a - age
		if n < 0 {
			n = 0
		}
		return float64(n)
	}
	if retireEarly.MatchString(query) {
		n := retirementAgeGoal - age
		if n > 5 {
			n = 5
		}
		return float64(n)
	}
	if retireNextYear.MatchString(query) {
		return 1
	}
	if m := retireInMonths.FindStringSubmatch(query); m != nil {
		n, _ := strconv.Atoi(m[1])
		months := float64(n) / 12.0
		if months < 0.1 {
			months = 0.1
		}
		return months
	}
	return float64(retirementAgeGoal - age)
}
