package ml

import (
	"fmt"
	"strings"

	"pensionadvisor/internal/pension"
)

// valueForColumn returns the record's value for a named training column, or
// the domain default when the record has no matching field. Defaults are
// matched by substring on the column name, exactly as the original feature
// assembly does: income/salary columns default to 75000, debt to 25000, any
// risk/volatility/diversity column to 0.5, health to 0.67, else 0.0.
func valueForColumn(r pension.Record, col string) float64 {
	lower := strings.ToLower(col)

	switch {
	case strings.Contains(lower, "income") || strings.Contains(lower, "salary"):
		if r.AnnualIncome != 0 {
			return r.AnnualIncome
		}
		return 75000
	case strings.Contains(lower, "debt"):
		if r.DebtLevel != 0 {
			return r.DebtLevel
		}
		return 25000
	case strings.Contains(lower, "risk"):
		return 0.5
	case strings.Contains(lower, "volatility"):
		if r.Volatility != 0 {
			return r.Volatility
		}
		return 0.5
	case strings.Contains(lower, "diversity"):
		if r.PortfolioDiversityScore != 0 {
			return r.PortfolioDiversityScore
		}
		return 0.5
	case strings.Contains(lower, "health"):
		return 0.67
	default:
		return 0.0
	}
}

// assembleFeatures builds a (1, N) feature row for the given training-column
// list, padding or truncating to expectedLen with a warning when the model's
// column list doesn't match what the model was trained on.
func assembleFeatures(r pension.Record, columns []string, expectedLen int) []float64 {
	features := make([]float64, 0, len(columns))
	for _, col := range columns {
		features = append(features, valueForColumn(r, col))
	}

	if len(features) < expectedLen {
		for len(features) < expectedLen {
			features = append(features, 0.0)
		}
		fmt.Printf("⚠ feature vector padded from %d to %d columns\n", len(columns), expectedLen)
	} else if len(features) > expectedLen {
		features = features[:expectedLen]
		fmt.Printf("⚠ feature vector truncated from %d to %d columns\n", len(columns), expectedLen)
	}

	return features
}
