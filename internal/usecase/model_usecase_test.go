package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	icache "GridCast/internal/service/cache"
)

type stubTrainer struct {
	model *models.CorrectionModel
	err   error
}

func (s *stubTrainer) BuildTrainingSet(_ context.Context, _ string, _, _ time.Time) ([]models.TrainingPoint, error) {
	return make([]models.TrainingPoint, 100), nil
}

func (s *stubTrainer) Train(_ string, _ []models.TrainingPoint) (*models.CorrectionModel, error) {
	return s.model, s.err
}

type stubApplier struct{}

func (stubApplier) Correct(price float64, _ time.Time, _ float64, m *models.CorrectionModel) float64 {
	return price - m.Stats.BiasCorrection
}

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(_ context.Context, market string, _, _ time.Time, _ *models.CorrectionModel) (*models.EvaluationReport, error) {
	return &models.EvaluationReport{Market: market}, nil
}

type stubStore struct {
	forecasts []models.PriceRecord
}

func (s *stubStore) GetPrices(_ context.Context, _ string, pt domrepo.PriceType, _, _ time.Time) ([]models.PriceRecord, error) {
	if pt == domrepo.PriceForecast {
		return s.forecasts, nil
	}
	return nil, nil
}

func (s *stubStore) GetConsumptionReadings(_ context.Context, _, _ string, _, _ time.Time) ([]models.ConsumptionReading, error) {
	return nil, nil
}

func newTestUseCase(model *models.CorrectionModel, forecasts []models.PriceRecord) *ModelUseCase {
	return NewModelUseCase(
		&stubTrainer{model: model},
		stubApplier{},
		stubEvaluator{},
		&stubStore{forecasts: forecasts},
		icache.NewTTLCache(),
	)
}

func trainedModel() *models.CorrectionModel {
	return &models.CorrectionModel{
		Version:    "v1717200000",
		Market:     "caiso",
		TrainedAt:  time.Now().UTC(),
		DataPoints: 100,
		Stats:      models.ModelStats{BiasCorrection: 5},
	}
}

func TestTrainModelRegistersLatest(t *testing.T) {
	uc := newTestUseCase(trainedModel(), nil)

	model, err := uc.TrainModel(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// resolvable both by explicit version and by the latest pointer
	byVersion, err := uc.GetModel(context.Background(), "caiso", model.Version)
	if err != nil {
		t.Fatalf("get by version: %v", err)
	}
	latest, err := uc.GetModel(context.Background(), "caiso", "")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if byVersion.Version != latest.Version {
		t.Fatalf("latest pointer mismatch: %s vs %s", byVersion.Version, latest.Version)
	}
}

func TestGetModelNotFound(t *testing.T) {
	uc := newTestUseCase(trainedModel(), nil)

	_, err := uc.GetModel(context.Background(), "ercot", "")
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestCorrectUsesRegisteredModel(t *testing.T) {
	uc := newTestUseCase(trainedModel(), nil)
	if _, err := uc.TrainModel(context.Background(), "caiso", time.Time{}, time.Now()); err != nil {
		t.Fatalf("train: %v", err)
	}

	got, err := uc.Correct(context.Background(), "caiso", "", 50, time.Now(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 45 {
		t.Fatalf("expected 45, got %v", got)
	}
}

func TestCorrectWithoutModel(t *testing.T) {
	uc := newTestUseCase(trainedModel(), nil)

	_, err := uc.Correct(context.Background(), "caiso", "", 50, time.Now(), 3)
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestGetImprovedForecasts(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecasts := []models.PriceRecord{
		{Market: "caiso", PriceType: "forecast", Timestamp: base, Price: 55, HorizonHours: 3},
		{Market: "caiso", PriceType: "forecast", Timestamp: base.Add(time.Hour), Price: 60, HorizonHours: 3},
	}
	uc := newTestUseCase(trainedModel(), forecasts)
	if _, err := uc.TrainModel(context.Background(), "caiso", time.Time{}, time.Now()); err != nil {
		t.Fatalf("train: %v", err)
	}

	out, err := uc.GetImprovedForecasts(context.Background(), "caiso", "", base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].OriginalPrice != 55 || out[0].CorrectedPrice != 50 {
		t.Fatalf("unexpected first row %+v", out[0])
	}
	if out[1].CorrectedPrice != 55 {
		t.Fatalf("unexpected second row %+v", out[1])
	}
}

func TestTrainModelValidation(t *testing.T) {
	uc := newTestUseCase(trainedModel(), nil)

	if _, err := uc.TrainModel(context.Background(), "", time.Time{}, time.Now()); err == nil {
		t.Fatalf("expected error for missing market")
	}
	if _, err := uc.TrainModel(context.Background(), "caiso", time.Now(), time.Now().Add(-time.Hour)); err == nil {
		t.Fatalf("expected error for inverted window")
	}
}
