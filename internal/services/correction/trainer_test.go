package correction

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
)

// fakeStore serves canned price series keyed by price type.
type fakeStore struct {
	forecasts []models.PriceRecord
	actuals   []models.PriceRecord
	readings  []models.ConsumptionReading
}

func (s *fakeStore) GetPrices(_ context.Context, _ string, pt domrepo.PriceType, _, _ time.Time) ([]models.PriceRecord, error) {
	if pt == domrepo.PriceForecast {
		return s.forecasts, nil
	}
	return s.actuals, nil
}

func (s *fakeStore) GetConsumptionReadings(_ context.Context, _, _ string, _, _ time.Time) ([]models.ConsumptionReading, error) {
	return s.readings, nil
}

// pairedHistory builds n hourly forecast/actual pairs where every forecast
// overshoots the actual by bias.
func pairedHistory(n int, bias float64) ([]models.PriceRecord, []models.PriceRecord) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecasts := make([]models.PriceRecord, 0, n)
	actuals := make([]models.PriceRecord, 0, n)
	for i := 0; i < n; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		actual := 40.0 + float64(i%24)
		forecasts = append(forecasts, models.PriceRecord{
			Market: "caiso", PriceType: "forecast", Timestamp: ts, Price: actual + bias, HorizonHours: 3,
		})
		actuals = append(actuals, models.PriceRecord{
			Market: "caiso", PriceType: "actual", Timestamp: ts, Price: actual,
		})
	}
	return forecasts, actuals
}

func TestBuildTrainingSetPairsExactTimestamps(t *testing.T) {
	forecasts, actuals := pairedHistory(10, 2)
	// drop two actuals so those forecasts have no partner
	store := &fakeStore{forecasts: forecasts, actuals: actuals[:8]}
	tr := NewTrainer(store)

	points, err := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 8 {
		t.Fatalf("expected 8 paired points, got %d", len(points))
	}
	for _, p := range points {
		if p.ForecastError != 2 {
			t.Fatalf("expected error 2, got %v", p.ForecastError)
		}
		if p.HourOfDay != p.Timestamp.Hour() {
			t.Fatalf("hour mismatch")
		}
		if p.DayOfWeek != int(p.Timestamp.Weekday()) {
			t.Fatalf("weekday mismatch")
		}
	}
}

func TestTrainRejectsSmallSet(t *testing.T) {
	forecasts, actuals := pairedHistory(MinTrainingPoints-1, 2)
	store := &fakeStore{forecasts: forecasts, actuals: actuals}
	tr := NewTrainer(store)

	points, err := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tr.Train("caiso", points)
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if insufficient.Got != MinTrainingPoints-1 {
		t.Fatalf("unexpected got count %d", insufficient.Got)
	}
}

func TestTrainRecoversConstantBias(t *testing.T) {
	forecasts, actuals := pairedHistory(240, 5)
	store := &fakeStore{forecasts: forecasts, actuals: actuals}
	tr := NewTrainer(store)

	points, err := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := tr.Train("caiso", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if model.DataPoints != 240 {
		t.Fatalf("expected 240 points, got %d", model.DataPoints)
	}
	if model.Stats.BiasCorrection != 5 {
		t.Fatalf("expected overall bias 5, got %v", model.Stats.BiasCorrection)
	}
	if model.Stats.MeanAbsoluteError != 5 {
		t.Fatalf("expected MAE 5, got %v", model.Stats.MeanAbsoluteError)
	}
	if model.Stats.RootMeanSquareError != 5 {
		t.Fatalf("expected RMSE 5, got %v", model.Stats.RootMeanSquareError)
	}
	for h := 0; h < 24; h++ {
		if model.HourlyBias[h] != 5 {
			t.Fatalf("hour %d bias %v, want 5", h, model.HourlyBias[h])
		}
	}
}

func TestTrainFillsAllBucketKeys(t *testing.T) {
	forecasts, actuals := pairedHistory(120, 1)
	store := &fakeStore{forecasts: forecasts, actuals: actuals}
	tr := NewTrainer(store)

	points, _ := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	model, err := tr.Train("caiso", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(model.HourlyBias) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(model.HourlyBias))
	}
	if len(model.WeekdayBias) != 7 {
		t.Fatalf("expected 7 weekday buckets, got %d", len(model.WeekdayBias))
	}
	for _, hb := range []int{0, 6, 12, 18} {
		if _, ok := model.HorizonBias[hb]; !ok {
			t.Fatalf("missing horizon bucket %d", hb)
		}
	}
	// all training points had horizon 3h, so the other horizon buckets are 0
	if model.HorizonBias[12] != 0 {
		t.Fatalf("expected empty horizon bucket to be 0, got %v", model.HorizonBias[12])
	}
}

func TestTrainSkipsZeroActualsInMAPE(t *testing.T) {
	forecasts, actuals := pairedHistory(120, 4)
	// zero out a few actual prices; those terms must not poison MAPE
	for i := 0; i < 5; i++ {
		actuals[i].Price = 0
		forecasts[i].Price = 4
	}
	store := &fakeStore{forecasts: forecasts, actuals: actuals}
	tr := NewTrainer(store)

	points, _ := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	model, err := tr.Train("caiso", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(model.Stats.MeanAbsolutePercentageError) || math.IsInf(model.Stats.MeanAbsolutePercentageError, 0) {
		t.Fatalf("MAPE not finite: %v", model.Stats.MeanAbsolutePercentageError)
	}
	if model.Stats.MeanAbsolutePercentageError <= 0 {
		t.Fatalf("expected positive MAPE, got %v", model.Stats.MeanAbsolutePercentageError)
	}
}

func TestHorizonBucket(t *testing.T) {
	cases := []struct {
		hours float64
		want  int
	}{
		{-1, 0},
		{0, 0},
		{3, 0},
		{5.9, 0},
		{6, 6},
		{11, 6},
		{12, 12},
		{17.5, 12},
		{18, 18},
		{24, 18},
		{100, 18},
	}
	for _, c := range cases {
		if got := horizonBucket(c.hours); got != c.want {
			t.Fatalf("horizonBucket(%v) = %d, want %d", c.hours, got, c.want)
		}
	}
}
