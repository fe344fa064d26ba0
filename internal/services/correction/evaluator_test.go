package correction

import (
	"context"
	"errors"
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

func TestEvaluateReportsImprovement(t *testing.T) {
	// train on one window, evaluate the same distribution held out
	trainF, trainA := pairedHistory(240, 5)
	store := &fakeStore{forecasts: trainF, actuals: trainA}
	tr := NewTrainer(store)
	ap := NewApplier()

	points, err := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := tr.Train("caiso", points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := NewEvaluator(tr, ap)
	report, err := ev.Evaluate(context.Background(), "caiso", time.Time{}, time.Now(), model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TestPoints != 240 {
		t.Fatalf("expected 240 test points, got %d", report.TestPoints)
	}
	if report.OriginalPerformance.MeanAbsoluteError != 5 {
		t.Fatalf("expected original MAE 5, got %v", report.OriginalPerformance.MeanAbsoluteError)
	}
	// the constant bias is fully learnable, corrected errors collapse to ~0
	if report.ImprovedPerformance.MeanAbsoluteError > 0.5 {
		t.Fatalf("expected improved MAE near 0, got %v", report.ImprovedPerformance.MeanAbsoluteError)
	}
	if report.Improvement.MAEReduction < 90 {
		t.Fatalf("expected large MAE reduction, got %v", report.Improvement.MAEReduction)
	}
}

func TestEvaluateNegativeImprovementIsReported(t *testing.T) {
	// model trained on +5 bias applied to an unbiased window makes things worse
	trainF, trainA := pairedHistory(240, 5)
	store := &fakeStore{forecasts: trainF, actuals: trainA}
	tr := NewTrainer(store)
	model, err := tr.Train("caiso", mustPoints(t, tr))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testF, testA := pairedHistory(240, 0)
	testStore := &fakeStore{forecasts: testF, actuals: testA}
	ev := NewEvaluator(NewTrainer(testStore), NewApplier())

	report, err := ev.Evaluate(context.Background(), "caiso", time.Time{}, time.Now(), model)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OriginalPerformance.MeanAbsoluteError != 0 {
		t.Fatalf("expected perfect original forecasts, got MAE %v", report.OriginalPerformance.MeanAbsoluteError)
	}
	if report.ImprovedPerformance.MeanAbsoluteError <= 0 {
		t.Fatalf("expected correction to hurt here, got MAE %v", report.ImprovedPerformance.MeanAbsoluteError)
	}
	// original MAE is 0 so reduction is guarded to 0, not NaN
	if report.Improvement.MAEReduction != 0 {
		t.Fatalf("expected guarded reduction 0, got %v", report.Improvement.MAEReduction)
	}
}

func TestEvaluateEmptyWindow(t *testing.T) {
	store := &fakeStore{}
	ev := NewEvaluator(NewTrainer(store), NewApplier())

	_, err := ev.Evaluate(context.Background(), "caiso", time.Time{}, time.Now(), &models.CorrectionModel{})
	var insufficient *models.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func mustPoints(t *testing.T, tr *Trainer) []models.TrainingPoint {
	t.Helper()
	points, err := tr.BuildTrainingSet(context.Background(), "caiso", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("build training set: %v", err)
	}
	return points
}
