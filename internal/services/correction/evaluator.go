package correction

import (
	"context"
	"math"
	"time"

	"GridCast/internal/domain/models"
	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/util"
)

var _ domsvc.ModelEvaluator = (*Evaluator)(nil)

// Evaluator re-runs the trainer's pairing over a held-out window and compares
// raw forecast errors against errors after correction.
type Evaluator struct {
	trainer *Trainer
	applier *Applier
}

func NewEvaluator(trainer *Trainer, applier *Applier) *Evaluator {
	return &Evaluator{trainer: trainer, applier: applier}
}

// Evaluate reports original and corrected MAE/MAPE/RMSE over the test window
// plus the per-metric percent reduction. A negative reduction means the model
// made that metric worse on this window; that is surfaced, not suppressed.
func (e *Evaluator) Evaluate(ctx context.Context, market string, testStart, testEnd time.Time, model *models.CorrectionModel) (*models.EvaluationReport, error) {
	points, err := e.trainer.BuildTrainingSet(ctx, market, testStart, testEnd)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, &models.InsufficientDataError{Op: "evaluate"}
	}

	original := make([]float64, len(points))
	improved := make([]float64, len(points))
	actuals := make([]float64, len(points))
	for i, p := range points {
		original[i] = p.ForecastError
		corrected := e.applier.Correct(p.ForecastPrice, p.Timestamp, p.HorizonHours, model)
		improved[i] = corrected - p.ActualPrice
		actuals[i] = p.ActualPrice
	}

	orig := errorMetrics(original, actuals)
	impr := errorMetrics(improved, actuals)
	return &models.EvaluationReport{
		Market:              market,
		TestStart:           testStart,
		TestEnd:             testEnd,
		TestPoints:          len(points),
		OriginalPerformance: orig,
		ImprovedPerformance: impr,
		Improvement: models.Reduction{
			MAEReduction:  reduction(orig.MeanAbsoluteError, impr.MeanAbsoluteError),
			MAPEReduction: reduction(orig.MeanAbsolutePercentageError, impr.MeanAbsolutePercentageError),
			RMSEReduction: reduction(orig.RootMeanSquareError, impr.RootMeanSquareError),
		},
	}, nil
}

// errorMetrics computes MAE/MAPE/RMSE over errors, with MAPE skipping terms
// whose actual price is zero.
func errorMetrics(errs, actuals []float64) models.MetricSet {
	var absSum, sqSum, mapeSum float64
	var mapeCnt int
	for i, e := range errs {
		absSum += math.Abs(e)
		sqSum += e * e
		if actuals[i] != 0 {
			mapeSum += math.Abs(e/actuals[i]) * 100
			mapeCnt++
		}
	}
	n := float64(len(errs))
	m := models.MetricSet{
		MeanAbsoluteError:   util.Round2(absSum / n),
		RootMeanSquareError: util.Round2(math.Sqrt(sqSum / n)),
	}
	if mapeCnt > 0 {
		m.MeanAbsolutePercentageError = util.Round2(mapeSum / float64(mapeCnt))
	}
	return m
}

// reduction is the percent improvement from original to improved, 0 when the
// original metric is already 0.
func reduction(original, improved float64) float64 {
	if original == 0 {
		return 0
	}
	return util.Round2((original - improved) / original * 100)
}
