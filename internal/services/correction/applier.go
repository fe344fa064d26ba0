package correction

import (
	"time"

	"GridCast/internal/domain/models"
	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/util"
)

var _ domsvc.CorrectionApplier = (*Applier)(nil)

// Fixed ensemble weights for the bucketed biases.
const (
	hourlyWeight  = 0.4
	weekdayWeight = 0.2
	horizonWeight = 0.2
	overallWeight = 0.2
)

// Applier applies a trained CorrectionModel to new forecast prices.
type Applier struct{}

func NewApplier() *Applier { return &Applier{} }

// Correct subtracts the weighted bias ensemble from forecastPrice. The result
// is clamped at 0: this engine never reports a negative price even though the
// real market allows them. Bucket keys are always present on a trained model;
// a missing key reads as 0.
func (a *Applier) Correct(forecastPrice float64, ts time.Time, horizonHours float64, model *models.CorrectionModel) float64 {
	hourly := model.HourlyBias[ts.Hour()]
	weekday := model.WeekdayBias[int(ts.Weekday())]
	horizon := model.HorizonBias[horizonBucket(horizonHours)]

	total := hourlyWeight*hourly +
		weekdayWeight*weekday +
		horizonWeight*horizon +
		overallWeight*model.Stats.BiasCorrection

	corrected := forecastPrice - total
	if corrected < 0 {
		corrected = 0
	}
	return util.Round2(corrected)
}
