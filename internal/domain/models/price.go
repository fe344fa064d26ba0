package models

import "time"

// Metric names used by consumption readings.
const MetricEnergy = "energy"

// PriceRecord is a single market price observation. Forecast and actual
// records for the same interval are distinct rows and are never merged.
type PriceRecord struct {
	Market       string
	Region       string
	PriceType    string // "forecast" or "actual"
	Timestamp    time.Time
	Price        float64 // currency per MWh
	ForecastedAt *time.Time
	HorizonHours float64 // 0 when the record carries no horizon
}

// ConsumptionReading is one interval reading from a site meter, in kWh.
type ConsumptionReading struct {
	EntityID  string
	Timestamp time.Time
	Value     float64
	Metric    string
}
