// Package projection implements the pension future-value calculator (C5):
// plan-type branching, sanity caps, and uplift scenarios. Structural style
// (named intermediate variables, pointer-light helpers, section-by-section
// computation) follows the teacher's pkg/core/projection/engine.go; the
// formulas themselves are this domain's own.
package projection

import (
	"math"

	"pensionadvisor/internal/pension"
)

const (
	dcCapTierOver10Years = 0.07
	dcCapTierOver20Years = 0.06
	hybridRateCapFactor  = 0.8
	hybridRateCap        = 0.06
	assumedInflationRate = 0.025
)

// Result is the tagged projection output, shared by the project_pension tool
// and the visualizer.
type Result struct {
	ProjectedBalance       float64
	InflationAdjustedValue float64
	Horizon                float64
	EffectiveRate          float64
	RetirementGoal         float64
	Progress               float64
	Status                 string
	SavingsRate            float64
	CapHit                 bool
	Warnings               []string
	Uplift10Pct            float64
	Uplift20Pct            float64
	PensionType            pension.PensionType
	DataSource             string
}

const dataSourcePensionRecord = "DATABASE_PENSION_DATA"

// Engine computes pension projections.
type Engine struct{}

// Project runs the full C5 algorithm for one record, using query for
// time-horizon parsing.
func (e *Engine) Project(r pension.Record, query string) Result {
	n := horizonYears(query, r.Age, r.RetirementAgeGoal)
	rate := r.NormalizedReturnRate()

	var balance float64
	var effectiveRate float64
	var capHit bool

	switch r.PensionType {
	case pension.DefinedBenefit:
		balance = r.ProjectedPensionAmount
		if balance == 0 {
			balance = 0.6 * r.AnnualIncome
		}
		effectiveRate = 0

	case pension.DefinedContribution:
		effectiveRate = capDCRate(rate, n)
		balance, capHit = computeFutureValueWithCap(r.CurrentSavings, r.TotalAnnualContribution, effectiveRate, n, dcCapMultiplier(n))

	default: // Hybrid or Unknown: pure growth on current savings, no
		// contribution annuity term (spec.md §4.5 gives this branch only
		// r' and the cap, and the original's hybrid projection is
		// current_savings * (1+r')**n with no added contributions).
		effectiveRate = hybridRate(rate)
		balance, capHit = computeFutureValueWithCap(r.CurrentSavings, 0, effectiveRate, n, hybridCapMultiplier(n))
	}

	goal := 10 * r.AnnualIncome
	progress := 0.0
	if goal > 0 {
		progress = r.CurrentSavings / goal * 100
	}
	if progress > 100 {
		progress = 100
	}

	status := statusFor(r.Age, r.RetirementAgeGoal, progress)

	savingsRate := 0.0
	if r.AnnualIncome > 0 {
		savingsRate = r.TotalAnnualContribution / r.AnnualIncome
	}

	res := Result{
		ProjectedBalance:       balance,
		InflationAdjustedValue: balance / pow1p(assumedInflationRate, n),
		Horizon:                n,
		EffectiveRate:          effectiveRate,
		RetirementGoal:         goal,
		Progress:               progress,
		Status:                 status,
		SavingsRate:            savingsRate,
		CapHit:                 capHit,
		PensionType:            r.PensionType,
		DataSource:             dataSourcePensionRecord,
	}

	res.Warnings = validationWarnings(r, balance, n, capHit)

	// Uplift scenarios scale the capped projected balance itself (matching
	// the original's projected_balance * 1.1/1.2, re-capped), not a
	// recomputation with a scaled contribution stream.
	switch r.PensionType {
	case pension.DefinedBenefit:
		res.Uplift10Pct = balance
		res.Uplift20Pct = balance
	case pension.DefinedContribution:
		capMultiplier := dcCapMultiplier(n)
		res.Uplift10Pct = capScaled(balance*1.10, r.CurrentSavings, capMultiplier)
		res.Uplift20Pct = capScaled(balance*1.20, r.CurrentSavings, capMultiplier)
	default:
		capMultiplier := hybridCapMultiplier(n)
		res.Uplift10Pct = capScaled(balance*1.10, r.CurrentSavings, capMultiplier)
		res.Uplift20Pct = capScaled(balance*1.20, r.CurrentSavings, capMultiplier)
	}

	return res
}

// capScaled applies the same sanity cap used for the base projection to an
// uplift scenario's scaled balance. A zero cap multiplier (zero horizon)
// leaves the value uncapped, as the base projection is at that horizon.
func capScaled(value, currentSavings, capMultiplier float64) float64 {
	if capMultiplier <= 0 {
		return value
	}
	cap := currentSavings * capMultiplier
	if value > cap {
		return cap
	}
	return value
}

func capDCRate(rate, n float64) float64 {
	switch {
	case n >= 20:
		return minF(rate, dcCapTierOver20Years)
	case n >= 10:
		return minF(rate, dcCapTierOver10Years)
	default:
		return rate
	}
}

func hybridRate(rate float64) float64 {
	return minF(hybridRateCapFactor*rate, hybridRateCap)
}

func dcCapMultiplier(n float64) float64 {
	return minF(10, n*0.5)
}

func hybridCapMultiplier(n float64) float64 {
	return minF(8, n*0.4)
}

// computeFutureValueWithCap computes compound-interest future value of
// current savings plus a level annual contribution, then applies the sanity
// cap current*capMultiplier. The cap is policy, not a bug fix: it is
// re-emitted via the returned capHit flag so the caller can explain it. A
// zero or negative horizon returns current savings unchanged and uncapped.
func computeFutureValueWithCap(currentSavings, annualContribution, rate, n, capMultiplier float64) (balance float64, capHit bool) {
	if n <= 0 {
		return currentSavings, false
	}
	growth := pow1p(rate, n)
	var fv float64
	if rate != 0 {
		fv = currentSavings*growth + annualContribution*((growth-1)/rate)
	} else {
		fv = currentSavings + annualContribution*n
	}

	cap := currentSavings * capMultiplier
	if fv > cap {
		return cap, true
	}
	return fv, false
}

func statusFor(age, retirementAgeGoal int, progress float64) string {
	switch {
	case age >= retirementAgeGoal:
		return "At Retirement Age"
	case progress >= 80:
		return "On Track"
	case progress >= 50:
		return "Good Progress"
	default:
		return "Needs Attention"
	}
}

func validationWarnings(r pension.Record, projectedBalance, horizon float64, capHit bool) []string {
	var warnings []string
	if capHit {
		warnings = append(warnings, "Projection capped to a plausible multiple of current savings")
	}
	if r.CurrentSavings > 0 && projectedBalance > 20*r.CurrentSavings {
		warnings = append(warnings, "Projected balance exceeds 20x current savings; treat as an upper bound")
	}
	if horizon <= 3 && r.CurrentSavings > 0 && projectedBalance > 2*r.CurrentSavings {
		warnings = append(warnings, "Short horizon with large projected growth; verify contribution assumptions")
	}
	return warnings
}

func pow1p(rate, n float64) float64 {
	return math.Pow(1+rate, n)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
