package savings

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
)

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

var window = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func hourlyPrices(priceType string, prices ...float64) []models.PriceRecord {
	out := make([]models.PriceRecord, len(prices))
	for i, p := range prices {
		out[i] = models.PriceRecord{
			Market:    "caiso",
			PriceType: priceType,
			Timestamp: window.Add(time.Duration(i) * time.Hour),
			Price:     p,
		}
	}
	return out
}

func hourlyReadings(kwh ...float64) []models.ConsumptionReading {
	out := make([]models.ConsumptionReading, len(kwh))
	for i, v := range kwh {
		out[i] = models.ConsumptionReading{
			EntityID:  "meter-1",
			Timestamp: window.Add(time.Duration(i) * time.Hour),
			Value:     v,
			Metric:    models.MetricEnergy,
		}
	}
	return out
}

func TestCalculateSavingsPositive(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 60, 60, 60),
		actuals:   hourlyPrices("actual", 50, 50, 50),
		readings:  hourlyReadings(1000, 1000, 1000), // 1 MWh each hour
	}
	eng := NewEngine(store)

	res, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(3*time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecast.TotalCost != 180 {
		t.Fatalf("expected forecast cost 180, got %v", res.Forecast.TotalCost)
	}
	if res.Actual.TotalCost != 150 {
		t.Fatalf("expected actual cost 150, got %v", res.Actual.TotalCost)
	}
	if res.Savings.Amount != 30 {
		t.Fatalf("expected savings 30, got %v", res.Savings.Amount)
	}
	if !strings.Contains(res.Savings.Description, "saved $30.00") {
		t.Fatalf("unexpected description %q", res.Savings.Description)
	}
	if res.Savings.Percentage != 16.67 {
		t.Fatalf("expected 16.67%%, got %v", res.Savings.Percentage)
	}
}

func TestCalculateSavingsNegative(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 40, 40),
		actuals:   hourlyPrices("actual", 55, 55),
		readings:  hourlyReadings(2000, 2000),
	}
	eng := NewEngine(store)

	res, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(2*time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Savings.Amount != -60 {
		t.Fatalf("expected -60, got %v", res.Savings.Amount)
	}
	if !strings.Contains(res.Savings.Description, "costs were $60.00 higher than forecast") {
		t.Fatalf("unexpected description %q", res.Savings.Description)
	}
}

func TestCalculateSavingsZeroDelta(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 50),
		actuals:   hourlyPrices("actual", 50),
		readings:  hourlyReadings(500),
	}
	eng := NewEngine(store)

	res, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Savings.Amount != 0 {
		t.Fatalf("expected 0, got %v", res.Savings.Amount)
	}
	if res.Savings.Description != "costs matched forecast predictions" {
		t.Fatalf("unexpected description %q", res.Savings.Description)
	}
}

func TestCalculateSavingsNoReadings(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 50),
		actuals:   hourlyPrices("actual", 50),
	}
	eng := NewEngine(store)

	_, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(time.Hour), "caiso")
	var noData *models.NoDataError
	if !errors.As(err, &noData) {
		t.Fatalf("expected NoDataError, got %v", err)
	}
}

func TestCalculateSavingsPeakCounts(t *testing.T) {
	// averages: forecast 50, actual 50; hours above average count as peak
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 30, 70, 40, 60),
		actuals:   hourlyPrices("actual", 60, 40, 70, 30),
		readings:  hourlyReadings(1000, 1000, 1000, 1000),
	}
	eng := NewEngine(store)

	res, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(4*time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecast.AveragePrice != 50 || res.Actual.AveragePrice != 50 {
		t.Fatalf("unexpected averages %v %v", res.Forecast.AveragePrice, res.Actual.AveragePrice)
	}
	if res.Forecast.PeakHours != 2 || res.Forecast.OffPeakHours != 2 {
		t.Fatalf("unexpected forecast peak split %d/%d", res.Forecast.PeakHours, res.Forecast.OffPeakHours)
	}
	if res.Actual.PeakHours != 2 || res.Actual.OffPeakHours != 2 {
		t.Fatalf("unexpected actual peak split %d/%d", res.Actual.PeakHours, res.Actual.OffPeakHours)
	}
}

func TestCalculateSavingsUnmatchedReadingsIgnored(t *testing.T) {
	// only the first reading falls within tolerance of a price record
	readings := hourlyReadings(1000)
	readings = append(readings, models.ConsumptionReading{
		EntityID:  "meter-1",
		Timestamp: window.Add(48 * time.Hour),
		Value:     1000,
		Metric:    models.MetricEnergy,
	})
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 60),
		actuals:   hourlyPrices("actual", 50),
		readings:  readings,
	}
	eng := NewEngine(store)

	res, err := eng.CalculateSavings(context.Background(), "site-1", window, window.Add(49*time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Forecast.TotalCost != 60 {
		t.Fatalf("expected only matched reading costed, got %v", res.Forecast.TotalCost)
	}
	if res.Actual.TotalCost != 50 {
		t.Fatalf("expected only matched reading costed, got %v", res.Actual.TotalCost)
	}
}

func TestForecastAccuracy(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 55, 44, 66),
		actuals:   hourlyPrices("actual", 50, 40, 60),
	}
	eng := NewEngine(store)

	res, err := eng.CalculateForecastAccuracy(context.Background(), window, window.Add(3*time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MatchedPairs != 3 {
		t.Fatalf("expected 3 pairs, got %d", res.MatchedPairs)
	}
	// |5|+|4|+|6| over 3 = 5
	if res.MeanAbsoluteError != 5 {
		t.Fatalf("expected MAE 5, got %v", res.MeanAbsoluteError)
	}
	// each pair is exactly 10% off
	if res.MeanAbsolutePercentageError != 10 {
		t.Fatalf("expected MAPE 10, got %v", res.MeanAbsolutePercentageError)
	}
	if res.Accuracy != 90 {
		t.Fatalf("expected accuracy 90, got %v", res.Accuracy)
	}
}

func TestForecastAccuracyEmptySeries(t *testing.T) {
	eng := NewEngine(&fakeStore{forecasts: hourlyPrices("forecast", 50)})

	_, err := eng.CalculateForecastAccuracy(context.Background(), window, window.Add(time.Hour), "caiso")
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestForecastAccuracyFloorsAtZero(t *testing.T) {
	store := &fakeStore{
		forecasts: hourlyPrices("forecast", 200),
		actuals:   hourlyPrices("actual", 10),
	}
	eng := NewEngine(store)

	res, err := eng.CalculateForecastAccuracy(context.Background(), window, window.Add(time.Hour), "caiso")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Accuracy != 0 {
		t.Fatalf("expected accuracy floored at 0, got %v", res.Accuracy)
	}
}
