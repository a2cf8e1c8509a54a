package ml

import "pensionadvisor/internal/pension"

// AnalyzeFraud scores a user's transaction for fraud risk. Same fail-soft
// shape as AnalyzeRisk: an absent or failing model, or a class index other
// than 0 or 1, falls through to the rule-based backup rather than
// propagating an error.
func (s *Service) AnalyzeFraud(r pension.Record) Result {
	if s.FraudModel != nil {
		columns := s.FraudModel.TrainingColumns
		if len(columns) == 0 {
			columns = defaultColumns(defaultFraudFeatureCount)
		}
		features := assembleFeatures(r, columns, defaultFraudFeatureCount)

		classIdx, conf, hasProbs, ok := s.FraudModel.Predict(features)
		if ok && (classIdx == 0 || classIdx == 1) {
			level, score := fraudClassToLevelScore(classIdx)
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
				Factors:         fraudIndicators(r),
				Recommendations: fraudRecommendations(level),
				DataSource:      dataSourcePensionRecord,
			}
		}
	}

	return s.fallbackFraud(r)
}

func fraudClassToLevelScore(classIdx int) (Level, float64) {
	if classIdx == 0 {
		return LevelLow, 0.2
	}
	return LevelHigh, 0.8
}

// fallbackFraud implements the rule-based backup, thresholds grounded on the
// original MLModelService._fallback_fraud_detection.
func (s *Service) fallbackFraud(r pension.Record) Result {
	score := 0.3

	if r.DebtLevel > r.AnnualIncome*2 {
		score += 0.3
	}
	if r.Volatility > 0.8 {
		score += 0.2
	}
	if r.PortfolioDiversityScore < 0.2 {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}

	level := LevelLow
	if score > 0.6 {
		level = LevelHigh
	}

	return Result{
		Level:           level,
		Score:           score,
		Confidence:      0.5,
		Method:          MethodRules,
		MLModelUsed:     false,
		Factors:         fraudIndicators(r),
		Recommendations: fraudRecommendations(level),
		DataSource:      dataSourcePensionRecord,
	}
}

func fraudIndicators(r pension.Record) []string {
	var indicators []string
	if r.SuspiciousFlag == "true" || r.SuspiciousFlag == "Yes" {
		indicators = append(indicators, "Transaction flagged as suspicious")
	}
	if r.AnomalyScore > 0.8 {
		indicators = append(indicators, "High anomaly score")
	}
	if r.PreviousFraudFlag == "true" || r.PreviousFraudFlag == "Yes" {
		indicators = append(indicators, "Previous fraud flag on record")
	}
	if r.DebtLevel > r.AnnualIncome*2 {
		indicators = append(indicators, "Debt far exceeds annual income")
	}
	return indicators
}

func fraudRecommendations(level Level) []string {
	if level == LevelHigh {
		return []string{
			"Flag account for manual review",
			"Verify recent transactions with account holder",
			"Monitor for further anomalous activity",
		}
	}
	return []string{"No immediate action required"}
}
