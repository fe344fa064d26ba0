package correction

import (
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

func modelWith(hourly, weekday, horizon, overall float64, ts time.Time, horizonHours float64) *models.CorrectionModel {
	return &models.CorrectionModel{
		HourlyBias:  map[int]float64{ts.Hour(): hourly},
		WeekdayBias: map[int]float64{int(ts.Weekday()): weekday},
		HorizonBias: map[int]float64{horizonBucket(horizonHours): horizon},
		Stats:       models.ModelStats{BiasCorrection: overall},
	}
}

func TestCorrectSubtractsWeightedBias(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	m := modelWith(10, 5, 5, 5, ts, 3)
	a := NewApplier()

	// 0.4*10 + 0.2*5 + 0.2*5 + 0.2*5 = 7
	got := a.Correct(50, ts, 3, m)
	if got != 43 {
		t.Fatalf("expected 43, got %v", got)
	}
}

func TestCorrectClampsAtZero(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	m := modelWith(100, 100, 100, 100, ts, 3)
	a := NewApplier()

	if got := a.Correct(10, ts, 3, m); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
}

func TestCorrectNegativeBiasRaisesPrice(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	m := modelWith(-10, -10, -10, -10, ts, 3)
	a := NewApplier()

	// subtracting a negative total bias raises the forecast
	if got := a.Correct(50, ts, 3, m); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
}

func TestCorrectRoundsToCents(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	m := modelWith(0.333, 0, 0, 0, ts, 3)
	a := NewApplier()

	// 50 - 0.4*0.333 = 49.8668 -> 49.87
	if got := a.Correct(50, ts, 3, m); got != 49.87 {
		t.Fatalf("expected 49.87, got %v", got)
	}
}

func TestCorrectMissingBucketsReadZero(t *testing.T) {
	ts := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	m := &models.CorrectionModel{
		HourlyBias:  map[int]float64{},
		WeekdayBias: map[int]float64{},
		HorizonBias: map[int]float64{},
	}
	a := NewApplier()

	if got := a.Correct(50, ts, 3, m); got != 50 {
		t.Fatalf("expected unchanged price, got %v", got)
	}
}
