package tools

import (
	"context"
	"sort"

	"pensionadvisor/internal/identity"
	"pensionadvisor/internal/pension"
	"pensionadvisor/internal/reqctx"
)

// requireRegulator is the single check every aggregation tool performs
// before any database read: verify the caller's role, independent of
// internal/scope (aggregation tools ignore any target id entirely, per
// spec.md §4.6).
func requireRegulator(ctx context.Context, lookup identity.Lookup) (identity.User, map[string]any, bool) {
	callerID, found := reqctx.UserID(ctx)
	if !found {
		return identity.User{}, errorResult(errNotAuthenticated), false
	}
	caller, ok, err := lookup.User(ctx, callerID)
	if err != nil || !ok || caller.Role != identity.RoleRegulator {
		return identity.User{}, errorResult("This tool is only available to regulators"), false
	}
	return caller, nil, true
}

const (
	dataSourceSystemWideRisk        = "SYSTEM_WIDE_ANALYSIS"
	dataSourceSystemWideFraud       = "SYSTEM_WIDE_FRAUD_ANALYSIS"
	dataSourceSystemWideGeographic  = "SYSTEM_WIDE_GEOGRAPHIC_ANALYSIS"
	dataSourceSystemWidePortfolio   = "SYSTEM_WIDE_PORTFOLIO_ANALYSIS"
)

// SystemWideRiskTool implements analyze_system_wide_risk.
type SystemWideRiskTool struct{ Deps }

func (t *SystemWideRiskTool) Name() string { return "analyze_system_wide_risk" }

func (t *SystemWideRiskTool) Execute(ctx context.Context, rawInput string) map[string]any {
	if _, errResult, ok := requireRegulator(ctx, t.Identity); !ok {
		return errResult
	}
	records, err := t.Records.AllRecords(ctx)
	if err != nil {
		return errorResult("failed to load records: " + err.Error())
	}

	var low, medium, high int
	type scored struct {
		pension.Record
		score int
	}
	var highRisk []scored
	var volatilitySum, diversitySum float64

	for _, r := range records {
		score := 0
		if r.Volatility > 3.5 {
			score++
		}
		if r.PortfolioDiversityScore < 0.5 {
			score++
		}
		if r.DebtLevel > r.AnnualIncome*0.5 {
			score++
		}
		if r.HealthStatus == "Poor" {
			score++
		}
		switch {
		case score <= 1:
			low++
		case score <= 2:
			medium++
		default:
			high++
		}
		if score >= 2 {
			highRisk = append(highRisk, scored{Record: r, score: score})
		}
		volatilitySum += r.Volatility
		diversitySum += r.PortfolioDiversityScore
	}

	sort.Slice(highRisk, func(i, j int) bool { return highRisk[i].score > highRisk[j].score })
	if len(highRisk) > 10 {
		highRisk = highRisk[:10]
	}

	topHighRisk := make([]map[string]any, 0, len(highRisk))
	for _, s := range highRisk {
		topHighRisk = append(topHighRisk, map[string]any{
			"user_id": s.UserID,
			"score":   s.score,
		})
	}

	n := float64(len(records))
	avgVolatility, avgDiversity := 0.0, 0.0
	if n > 0 {
		avgVolatility = volatilitySum / n
		avgDiversity = diversitySum / n
	}

	return map[string]any{
		"system_analysis": true,
		"distribution":    map[string]int{"Low": low, "Medium": medium, "High": high},
		"top_high_risk":   topHighRisk,
		"average_volatility": avgVolatility,
		"average_diversity":  avgDiversity,
		"total_users":        len(records),
		"data_source":        dataSourceSystemWideRisk,
	}
}

// SystemWideFraudTool implements analyze_system_wide_fraud.
type SystemWideFraudTool struct{ Deps }

func (t *SystemWideFraudTool) Name() string { return "analyze_system_wide_fraud" }

func (t *SystemWideFraudTool) Execute(ctx context.Context, rawInput string) map[string]any {
	if _, errResult, ok := requireRegulator(ctx, t.Identity); !ok {
		return errResult
	}
	records, err := t.Records.AllRecords(ctx)
	if err != nil {
		return errorResult("failed to load records: " + err.Error())
	}

	var suspicious, highAnomaly int
	var low, medium, high int
	for _, r := range records {
		if r.SuspiciousFlag == "true" || r.SuspiciousFlag == "Yes" {
			suspicious++
		}
		if r.AnomalyScore > 0.8 {
			highAnomaly++
		}
		score := 0
		if r.SuspiciousFlag == "true" || r.SuspiciousFlag == "Yes" {
			score++
		}
		if r.AnomalyScore > 0.8 {
			score++
		}
		if r.PreviousFraudFlag == "true" || r.PreviousFraudFlag == "Yes" {
			score++
		}
		switch {
		case score == 0:
			low++
		case score == 1:
			medium++
		default:
			high++
		}
	}

	return map[string]any{
		"system_analysis":      true,
		"suspicious_count":     suspicious,
		"high_anomaly_count":   highAnomaly,
		"distribution":         map[string]int{"Low": low, "Medium": medium, "High": high},
		"total_users":          len(records),
		"data_source":          dataSourceSystemWideFraud,
	}
}

// GeographicRiskTool implements analyze_geographic_risk.
type GeographicRiskTool struct{ Deps }

func (t *GeographicRiskTool) Name() string { return "analyze_geographic_risk" }

func (t *GeographicRiskTool) Execute(ctx context.Context, rawInput string) map[string]any {
	if _, errResult, ok := requireRegulator(ctx, t.Identity); !ok {
		return errResult
	}
	records, err := t.Records.AllRecords(ctx)
	if err != nil {
		return errorResult("failed to load records: " + err.Error())
	}

	type bucket struct {
		count           int
		volatilitySum   float64
		debtIncomeRatio float64
	}
	byCountry := map[string]*bucket{}
	for _, r := range records {
		b, ok := byCountry[r.Country]
		if !ok {
			b = &bucket{}
			byCountry[r.Country] = b
		}
		b.count++
		b.volatilitySum += r.Volatility
		if r.AnnualIncome > 0 {
			b.debtIncomeRatio += r.DebtLevel / r.AnnualIncome
		}
	}

	countries := make(map[string]any, len(byCountry))
	var mediumCount, highCount int
	for country, b := range byCountry {
		avgVolatility := b.volatilitySum / float64(b.count)
		avgDebtRatio := b.debtIncomeRatio / float64(b.count)

		level := "Low"
		switch {
		case avgVolatility > 0.7 || avgDebtRatio > 0.6:
			level = "High"
			highCount++
		case avgVolatility > 0.4 || avgDebtRatio > 0.4:
			level = "Medium"
			mediumCount++
		}

		countries[country] = map[string]any{
			"user_count":     b.count,
			"avg_volatility": avgVolatility,
			"avg_debt_ratio": avgDebtRatio,
			"risk_level":     level,
		}
	}

	total := len(records)
	concentrationFlags := []string{}
	if total > 0 {
		if float64(mediumCount)/float64(len(byCountry)) > 0.25 {
			concentrationFlags = append(concentrationFlags, "medium-risk country concentration exceeds 25%")
		}
		if float64(highCount)/float64(len(byCountry)) > 0.40 {
			concentrationFlags = append(concentrationFlags, "high-risk country concentration exceeds 40%")
		}
	}

	return map[string]any{
		"system_analysis":     true,
		"countries":           countries,
		"concentration_flags": concentrationFlags,
		"total_users":         total,
		"data_source":         dataSourceSystemWideGeographic,
	}
}

// PortfolioTrendsTool implements analyze_portfolio_trends.
type PortfolioTrendsTool struct{ Deps }

func (t *PortfolioTrendsTool) Name() string { return "analyze_portfolio_trends" }

func (t *PortfolioTrendsTool) Execute(ctx context.Context, rawInput string) map[string]any {
	if _, errResult, ok := requireRegulator(ctx, t.Identity); !ok {
		return errResult
	}
	records, err := t.Records.AllRecords(ctx)
	if err != nil {
		return errorResult("failed to load records: " + err.Error())
	}

	type bucket struct {
		count        int
		returnSum    float64
		diversitySum float64
	}
	byType := map[string]*bucket{}
	for _, r := range records {
		key := string(r.PensionType)
		b, ok := byType[key]
		if !ok {
			b = &bucket{}
			byType[key] = b
		}
		b.count++
		b.returnSum += r.NormalizedReturnRate()
		b.diversitySum += r.PortfolioDiversityScore
	}

	trends := make(map[string]any, len(byType))
	for pensionType, b := range byType {
		trends[pensionType] = map[string]any{
			"user_count":        b.count,
			"avg_return_rate":   b.returnSum / float64(b.count),
			"avg_diversity":     b.diversitySum / float64(b.count),
		}
	}

	return map[string]any{
		"system_analysis": true,
		"trends_by_type":  trends,
		"total_users":     len(records),
		"data_source":     dataSourceSystemWidePortfolio,
	}
}
