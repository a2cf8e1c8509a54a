package ml

import (
	"testing"

	"pensionadvisor/internal/pension"
)

func TestFallbackRiskHighDebt(t *testing.T) {
	s := &Service{}
	r := pension.Record{AnnualIncome: 50000, DebtLevel: 30000, Volatility: 0.2, PortfolioDiversityScore: 0.8}
	res := s.AnalyzeRisk(r)
	if res.Method != MethodRules || res.MLModelUsed {
		t.Fatalf("expected rule-based fallback, got method=%s mlUsed=%v", res.Method, res.MLModelUsed)
	}
	if res.Level != LevelMedium {
		t.Fatalf("score=%v level=%s; want Medium (debt>50%% income adds 0.2 to base 0.5)", res.Score, res.Level)
	}
}

func TestFallbackRiskDeterministic(t *testing.T) {
	s := &Service{}
	r := pension.Record{AnnualIncome: 80000, DebtLevel: 10000, Volatility: 0.9, PortfolioDiversityScore: 0.1}
	a := s.AnalyzeRisk(r)
	b := s.AnalyzeRisk(r)
	if a.Score != b.Score || a.Level != b.Level {
		t.Fatalf("fallback risk scoring is not deterministic for identical inputs: %+v vs %+v", a, b)
	}
}

func TestFallbackFraudHighDebtRatio(t *testing.T) {
	s := &Service{}
	r := pension.Record{AnnualIncome: 40000, DebtLevel: 90000, Volatility: 0.1, PortfolioDiversityScore: 0.9}
	res := s.AnalyzeFraud(r)
	if res.Level != LevelLow {
		t.Fatalf("score=%v level=%s; want Low (debt > 2x income adds 0.3 to base 0.3 = 0.6, not above the 0.6 High threshold)", res.Score, res.Level)
	}
}

func TestMLModelPresentButFails(t *testing.T) {
	s := &Service{
		RiskModel: &Model{
			Predict: func(features []float64) (int, float64, bool, bool) {
				return 0, 0, false, false // simulate a model error
			},
		},
	}
	r := pension.Record{AnnualIncome: 80000, DebtLevel: 10000}
	res := s.AnalyzeRisk(r)
	if res.Method != MethodRules {
		t.Fatalf("a failing model must fall back to rules, got method=%s", res.Method)
	}
}

func TestMLModelSuccess(t *testing.T) {
	s := &Service{
		RiskModel: &Model{
			Predict: func(features []float64) (int, float64, bool, bool) {
				return 2, 0.91, true, true
			},
		},
	}
	res := s.AnalyzeRisk(pension.Record{})
	if res.Method != MethodML || res.Level != LevelHigh || res.Score != 0.8 || res.Confidence != 0.91 {
		t.Fatalf("unexpected ML result: %+v", res)
	}
}

func TestFeatureAssemblyPadsToExpectedLength(t *testing.T) {
	r := pension.Record{AnnualIncome: 60000}
	features := assembleFeatures(r, []string{"income", "debt"}, defaultRiskFeatureCount)
	if len(features) != defaultRiskFeatureCount {
		t.Fatalf("len(features) = %d; want %d", len(features), defaultRiskFeatureCount)
	}
}
