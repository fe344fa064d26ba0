package models

import "time"

// TrainingPoint is one exact-timestamp forecast/actual pair with derived
// features. Ephemeral: produced for a training or evaluation call, never stored.
type TrainingPoint struct {
	Timestamp     time.Time
	ForecastPrice float64
	ActualPrice   float64
	ForecastError float64 // forecast - actual
	HorizonHours  float64
	HourOfDay     int
	DayOfWeek     int // 0 = Sunday
	Month         int
}

// ModelStats holds global error statistics over the full training set.
type ModelStats struct {
	MeanAbsoluteError           float64 `json:"mean_absolute_error"`
	MeanAbsolutePercentageError float64 `json:"mean_absolute_percentage_error"`
	RootMeanSquareError         float64 `json:"root_mean_square_error"`
	BiasCorrection              float64 `json:"bias_correction"` // signed mean error
}

// CorrectionModel is the trained bias-correction artifact. Every bucket key
// is always present; buckets that received no points hold 0. Immutable after
// training; the caller owns storage and versioning.
type CorrectionModel struct {
	Version     string          `json:"version"`
	Market      string          `json:"market"`
	TrainedAt   time.Time       `json:"trained_at"`
	DataPoints  int             `json:"data_points"`
	HourlyBias  map[int]float64 `json:"hourly_bias"`  // keys 0..23
	WeekdayBias map[int]float64 `json:"weekday_bias"` // keys 0..6
	HorizonBias map[int]float64 `json:"horizon_bias"` // keys 0, 6, 12, 18
	Stats       ModelStats      `json:"stats"`
}

// MetricSet groups the three error metrics reported by the evaluator.
type MetricSet struct {
	MeanAbsoluteError           float64 `json:"mean_absolute_error"`
	MeanAbsolutePercentageError float64 `json:"mean_absolute_percentage_error"`
	RootMeanSquareError         float64 `json:"root_mean_square_error"`
}

// EvaluationReport compares model performance on a held-out window.
// Negative reductions mean the model made that metric worse; that is a valid
// outcome to surface, not an error.
type EvaluationReport struct {
	Market              string    `json:"market"`
	TestStart           time.Time `json:"test_start"`
	TestEnd             time.Time `json:"test_end"`
	TestPoints          int       `json:"test_points"`
	OriginalPerformance MetricSet `json:"original_performance"`
	ImprovedPerformance MetricSet `json:"improved_performance"`
	Improvement         Reduction `json:"improvement"`
}

// Reduction holds per-metric percentage improvements.
type Reduction struct {
	MAEReduction  float64 `json:"mae_reduction"`
	MAPEReduction float64 `json:"mape_reduction"`
	RMSEReduction float64 `json:"rmse_reduction"`
}

// ImprovedForecast pairs a raw forecast record with its corrected price.
type ImprovedForecast struct {
	Timestamp      time.Time `json:"timestamp"`
	OriginalPrice  float64   `json:"original_price"`
	CorrectedPrice float64   `json:"corrected_price"`
	HorizonHours   float64   `json:"horizon_hours"`
}
