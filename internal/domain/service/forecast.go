package service

import (
	"context"
	"time"

	"GridCast/internal/domain/models"
)

// ModelTrainer builds a bias-correction model from paired forecast/actual
// price history.
type ModelTrainer interface {
	BuildTrainingSet(ctx context.Context, market string, start, end time.Time) ([]models.TrainingPoint, error)
	Train(market string, trainingSet []models.TrainingPoint) (*models.CorrectionModel, error)
}

// CorrectionApplier applies a trained model to a single forecast price.
type CorrectionApplier interface {
	Correct(forecastPrice float64, ts time.Time, horizonHours float64, model *models.CorrectionModel) float64
}

// ModelEvaluator measures model performance on a held-out window.
type ModelEvaluator interface {
	Evaluate(ctx context.Context, market string, testStart, testEnd time.Time, model *models.CorrectionModel) (*models.EvaluationReport, error)
}

// SavingsCalculator produces cost-attribution and accuracy reports.
type SavingsCalculator interface {
	CalculateSavings(ctx context.Context, siteID string, start, end time.Time, market string) (*models.SavingsAnalysis, error)
	CalculateForecastAccuracy(ctx context.Context, start, end time.Time, market string) (*models.AccuracyReport, error)
}
