package models

import "time"

// Period is the queried analysis window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CostSummary is the cost view of one price series (forecast or actual) over
// the matched consumption readings.
type CostSummary struct {
	TotalCost    float64 `json:"total_cost"`
	AveragePrice float64 `json:"average_price"`
	PeakHours    int     `json:"peak_hours"`
	OffPeakHours int     `json:"off_peak_hours"`
}

// SavingsSummary quantifies the forecast-vs-actual cost difference.
type SavingsSummary struct {
	Amount      float64 `json:"amount"`
	Percentage  float64 `json:"percentage"`
	Description string  `json:"description"`
}

// RecommendationStats is a placeholder pending an external
// recommendation-tracking collaborator; all fields stay 0 for now.
type RecommendationStats struct {
	Followed      int     `json:"followed"`
	Total         int     `json:"total"`
	Effectiveness float64 `json:"effectiveness"`
}

// SavingsAnalysis is the per-query cost-attribution report. Computed fresh on
// every call, never cached.
type SavingsAnalysis struct {
	SiteID          string              `json:"site_id"`
	Market          string              `json:"market"`
	Period          Period              `json:"period"`
	Forecast        CostSummary         `json:"forecast"`
	Actual          CostSummary         `json:"actual"`
	Savings         SavingsSummary      `json:"savings"`
	Recommendations RecommendationStats `json:"recommendations"`
}

// AccuracyReport summarizes forecast error against realized prices.
type AccuracyReport struct {
	Market                      string  `json:"market"`
	Period                      Period  `json:"period"`
	MatchedPairs                int     `json:"matched_pairs"`
	MeanAbsoluteError           float64 `json:"mean_absolute_error"`
	MeanAbsolutePercentageError float64 `json:"mean_absolute_percentage_error"`
	Accuracy                    float64 `json:"accuracy"`
}
