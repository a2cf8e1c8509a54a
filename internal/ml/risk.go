package ml

import "pensionadvisor/internal/pension"

// AnalyzeRisk scores a user's investment risk. It always returns a result:
// the ML path and the rule-based fallback share the exact same Result shape
// so callers never need to distinguish them beyond the Method field.
func (s *Service) AnalyzeRisk(r pension.Record) Result {
	if s.RiskModel != nil {
		columns := s.RiskModel.TrainingColumns
		if len(columns) == 0 {
			columns = defaultColumns(defaultRiskFeatureCount)
		}
		features := assembleFeatures(r, columns, defaultRiskFeatureCount)

		classIdx, conf, hasProbs, ok := s.RiskModel.Predict(features)
		if ok && classIdx >= 0 && classIdx <= 2 {
			level, score := riskClassToLevelScore(classIdx)
			confidence := conf
			if !hasProbs {
				confidence = 0.8
			}
			return Result{
				Level:           level,
				Score:           score,
				Confidence:      confidence,
				Method:          MethodML,
				MLModelUsed:     true,
				Factors:         riskFactors(r),
				Recommendations: riskRecommendations(level),
				DataSource:      dataSourcePensionRecord,
			}
		}
		// Model present but prediction failed or returned nonsense (a class
		// index outside 0..2): fall through to the rule-based scorer below,
		// same as a missing model.
	}

	return s.fallbackRisk(r)
}

func riskClassToLevelScore(classIdx int) (Level, float64) {
	switch classIdx {
	case 0:
		return LevelLow, 0.2
	case 1:
		return LevelMedium, 0.5
	default:
		return LevelHigh, 0.8
	}
}

// fallbackRisk implements the rule-based backup, thresholds grounded on the
// original MLModelService._fallback_risk_analysis.
func (s *Service) fallbackRisk(r pension.Record) Result {
	score := 0.5
	var factors []string

	if r.DebtLevel > r.AnnualIncome*0.5 {
		score += 0.2
		factors = append(factors, "High debt-to-income ratio")
	}
	if r.Volatility > 0.7 {
		score += 0.15
		factors = append(factors, "High portfolio volatility")
	}
	if r.PortfolioDiversityScore < 0.3 {
		score += 0.1
		factors = append(factors, "Low portfolio diversification")
	}
	if score > 1.0 {
		score = 1.0
	}

	var level Level
	switch {
	case score < 0.4:
		level = LevelLow
	case score > 0.7:
		level = LevelHigh
	default:
		level = LevelMedium
	}

	return Result{
		Level:           level,
		Score:           score,
		Confidence:      0.6,
		Method:          MethodRules,
		MLModelUsed:     false,
		Factors:         factors,
		Recommendations: riskRecommendations(level),
		DataSource:      dataSourcePensionRecord,
	}
}

func riskFactors(r pension.Record) []string {
	var factors []string
	if r.DebtLevel > r.AnnualIncome*0.5 {
		factors = append(factors, "High debt-to-income ratio")
	}
	if r.Volatility > 0.7 {
		factors = append(factors, "High portfolio volatility")
	}
	if r.PortfolioDiversityScore < 0.3 {
		factors = append(factors, "Low portfolio diversification")
	}
	return factors
}

func riskRecommendations(level Level) []string {
	switch level {
	case LevelHigh:
		return []string{
			"Consider reducing portfolio volatility",
			"Diversify across more asset classes",
			"Review debt levels relative to income",
		}
	case LevelMedium:
		return []string{
			"Maintain current diversification",
			"Monitor debt-to-income ratio periodically",
		}
	default:
		return []string{"Current risk profile is well balanced"}
	}
}
