package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	domsvc "GridCast/internal/domain/service"
	icache "GridCast/internal/service/cache"
	applogger "GridCast/pkg/logger"
)

// ErrModelNotFound is returned when no trained model exists for the requested
// market/version.
var ErrModelNotFound = errors.New("correction model not found")

const modelRegistryTTL = 30 * 24 * time.Hour

// ModelUseCase orchestrates training, correction, and evaluation. The core
// never persists models; this layer owns versioning through a byte cache
// (in-memory or Redis) keyed by market and version, with a latest pointer.
type ModelUseCase struct {
	trainer   domsvc.ModelTrainer
	applier   domsvc.CorrectionApplier
	evaluator domsvc.ModelEvaluator
	store     domrepo.MarketDataStore
	registry  icache.BytesCache
	l         *applogger.Logger
}

func NewModelUseCase(
	trainer domsvc.ModelTrainer,
	applier domsvc.CorrectionApplier,
	evaluator domsvc.ModelEvaluator,
	store domrepo.MarketDataStore,
	registry icache.BytesCache,
) *ModelUseCase {
	return &ModelUseCase{
		trainer:   trainer,
		applier:   applier,
		evaluator: evaluator,
		store:     store,
		registry:  registry,
	}
}

// SetLogger injects a structured logger.
func (uc *ModelUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// TrainModel builds a training set over [start, end] and trains a new model
// version, registering it as the market's latest.
func (uc *ModelUseCase) TrainModel(ctx context.Context, market string, start, end time.Time) (*models.CorrectionModel, error) {
	if market == "" {
		return nil, fmt.Errorf("market required")
	}
	if start.After(end) {
		return nil, fmt.Errorf("start must be <= end")
	}

	points, err := uc.trainer.BuildTrainingSet(ctx, market, start, end)
	if err != nil {
		return nil, fmt.Errorf("build training set: %w", err)
	}
	model, err := uc.trainer.Train(market, points)
	if err != nil {
		return nil, err
	}
	if err := uc.register(model); err != nil && uc.l != nil {
		uc.l.Warn("model register failed", applogger.Error(err))
	}
	if uc.l != nil {
		uc.l.Info("model trained",
			applogger.String("market", market),
			applogger.String("version", model.Version),
			applogger.Int("points", model.DataPoints),
		)
	}
	return model, nil
}

// Correct applies the requested model version (latest when empty) to a single
// forecast price.
func (uc *ModelUseCase) Correct(ctx context.Context, market, version string, price float64, ts time.Time, horizonHours float64) (float64, error) {
	model, err := uc.GetModel(ctx, market, version)
	if err != nil {
		return 0, err
	}
	return uc.applier.Correct(price, ts, horizonHours, model), nil
}

// GetImprovedForecasts returns the window's forecast records with corrected
// prices alongside the originals.
func (uc *ModelUseCase) GetImprovedForecasts(ctx context.Context, market, version string, start, end time.Time) ([]models.ImprovedForecast, error) {
	model, err := uc.GetModel(ctx, market, version)
	if err != nil {
		return nil, err
	}
	forecasts, err := uc.store.GetPrices(ctx, market, domrepo.PriceForecast, start, end)
	if err != nil {
		return nil, fmt.Errorf("get forecast prices: %w", err)
	}

	out := make([]models.ImprovedForecast, 0, len(forecasts))
	for _, f := range forecasts {
		out = append(out, models.ImprovedForecast{
			Timestamp:      f.Timestamp,
			OriginalPrice:  f.Price,
			CorrectedPrice: uc.applier.Correct(f.Price, f.Timestamp, f.HorizonHours, model),
			HorizonHours:   f.HorizonHours,
		})
	}
	return out, nil
}

// Evaluate measures the requested model version on a held-out window.
func (uc *ModelUseCase) Evaluate(ctx context.Context, market, version string, testStart, testEnd time.Time) (*models.EvaluationReport, error) {
	model, err := uc.GetModel(ctx, market, version)
	if err != nil {
		return nil, err
	}
	return uc.evaluator.Evaluate(ctx, market, testStart, testEnd, model)
}

// GetModel loads a model from the registry; version "" or "latest" resolves
// the latest pointer.
func (uc *ModelUseCase) GetModel(ctx context.Context, market, version string) (*models.CorrectionModel, error) {
	if version == "" {
		version = "latest"
	}
	b, ok, err := uc.registry.GetBytes(modelKey(market, version))
	if err != nil {
		return nil, fmt.Errorf("registry get: %w", err)
	}
	if !ok {
		return nil, ErrModelNotFound
	}
	var model models.CorrectionModel
	if err := json.Unmarshal(b, &model); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &model, nil
}

func (uc *ModelUseCase) register(model *models.CorrectionModel) error {
	b, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := uc.registry.SetBytes(modelKey(model.Market, model.Version), b, modelRegistryTTL); err != nil {
		return fmt.Errorf("registry set: %w", err)
	}
	return uc.registry.SetBytes(modelKey(model.Market, "latest"), b, modelRegistryTTL)
}

func modelKey(market, version string) string {
	return "model:" + market + ":" + version
}
