package projection

import "pensionadvisor/internal/pension"

// ChartSpec is a declarative (Vega-Lite-style) chart specification: data
// rows plus a mark type plus an encoding. The visualizer (C11) derives its
// imperative (Plotly-style) representation from specs built the same way, so
// the two chart formats stay consistent with a single authoritative source.
type ChartSpec struct {
	Title    string
	Mark     string
	Data     []map[string]any
	Encoding map[string]string
}

// GrowthPoint is one year of the pension-growth curve.
type GrowthPoint struct {
	Age     int
	Balance float64
}

// GrowthCurve computes year-by-year balance from r.Age to r.RetirementAgeGoal
// using the same formula, rate cap and balance cap Project uses for that full
// horizon, never above 20x current savings, so the curve never implies a
// number Project itself would not report. For Defined Contribution and
// Hybrid/Unknown records the final point equals Project's balance when
// Project ran with the default horizon (retirement age goal minus age); a
// horizon parsed from the query can end elsewhere. Defined Benefit records,
// which Project does not grow, are drawn with the Hybrid/Unknown formula, so
// their final point is not Project's balance. ChartSpecs uses this curve for
// the pension_growth chart.
func GrowthCurve(r pension.Record) []GrowthPoint {
	rate := r.NormalizedReturnRate()
	const growthChartCapMultiplier = 20
	horizon := float64(r.RetirementAgeGoal - r.Age)

	var points []GrowthPoint
	for age := r.Age; age <= r.RetirementAgeGoal; age++ {
		yearsElapsed := float64(age - r.Age)

		var effectiveRate, annualContribution, capMultiplier float64
		switch r.PensionType {
		case pension.DefinedContribution:
			effectiveRate = capDCRate(rate, horizon)
			annualContribution = r.TotalAnnualContribution
			capMultiplier = minF(growthChartCapMultiplier, dcCapMultiplier(horizon))
		default:
			effectiveRate = hybridRate(rate)
			capMultiplier = minF(growthChartCapMultiplier, hybridCapMultiplier(horizon))
		}

		balance, _ := computeFutureValueWithCap(r.CurrentSavings, annualContribution, effectiveRate, yearsElapsed, capMultiplier)
		points = append(points, GrowthPoint{Age: age, Balance: balance})
	}
	return points
}

// ChartSpecs builds the three declarative specs C5 attaches to the
// project_pension tool result: a year-by-year growth line, a current-vs-goal
// bar, and an income/contribution/savings comparison bar.
func ChartSpecs(r pension.Record, res Result) []ChartSpec {
	curve := GrowthCurve(r)
	growthData := make([]map[string]any, 0, len(curve))
	for _, p := range curve {
		growthData = append(growthData, map[string]any{"age": p.Age, "balance": p.Balance})
	}

	return []ChartSpec{
		{
			Title: "pension_growth",
			Mark:  "line",
			Data:  growthData,
			Encoding: map[string]string{
				"x": "age",
				"y": "balance",
			},
		},
		{
			Title: "progress_to_goal",
			Mark:  "bar",
			Data: []map[string]any{
				{"label": "Current Savings", "value": r.CurrentSavings},
				{"label": "Retirement Goal", "value": res.RetirementGoal},
			},
			Encoding: map[string]string{
				"x": "label",
				"y": "value",
			},
		},
		{
			Title: "savings_analysis",
			Mark:  "bar",
			Data: []map[string]any{
				{"label": "Annual Income", "value": r.AnnualIncome},
				{"label": "Total Annual Contribution", "value": r.TotalAnnualContribution},
				{"label": "Current Savings", "value": r.CurrentSavings},
			},
			Encoding: map[string]string{
				"x": "label",
				"y": "value",
			},
		},
	}
}
