// Package ml implements the ML-with-fallback risk and fraud predictors (C4).
// A predictor artifact is optional infrastructure: its absence, error, or a
// nonsense prediction is a normal branch, not a failure — it produces a
// rule-based result tagged method:"rules" rather than surfacing an error.
package ml

// Level is the qualitative bucket returned alongside a numeric score.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Method records whether the result came from the persisted model or the
// rule-based fallback.
type Method string

const (
	MethodML    Method = "ML"
	MethodRules Method = "rules"
)

// Result is the tagged output every predictor call returns, regardless of
// which method produced it.
type Result struct {
	Level           Level
	Score           float64
	Confidence      float64
	Method          Method
	MLModelUsed     bool
	Factors         []string
	Recommendations []string
	DataSource      string
}

const dataSourcePensionRecord = "DATABASE_PENSION_DATA"

// Model is a persisted predictor artifact. It carries the training-column
// list the feature vector must be shaped to, and a Predict function whose
// failure (ok=false) is itself a normal outcome that triggers the fallback.
type Model struct {
	TrainingColumns []string
	Predict         func(features []float64) (classIndex int, confidence float64, hasProbabilities bool, ok bool)
}

// Service holds the optional risk and fraud model artifacts. Either or both
// may be nil, in which case every call to that predictor falls back to the
// rule-based scorer.
type Service struct {
	RiskModel  *Model
	FraudModel *Model
}

const (
	defaultRiskFeatureCount  = 67
	defaultFraudFeatureCount = 69
)

// defaultColumns builds the column list used for feature-vector assembly
// when a model artifact is loaded but doesn't carry its own training-column
// list — assembly still needs to know how many slots to
// fill, so it falls back to an all-default vector of the expected length.
func defaultColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = ""
	}
	return cols
}
