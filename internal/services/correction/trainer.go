package correction

import (
	"context"
	"fmt"
	"math"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	domsvc "GridCast/internal/domain/service"
	"GridCast/pkg/util"
)

var _ domsvc.ModelTrainer = (*Trainer)(nil)

// MinTrainingPoints is the hard floor below which bucket aggregates are
// considered statistically unreliable.
const MinTrainingPoints = 100

var horizonBuckets = []int{0, 6, 12, 18}

// Trainer pairs forecast and actual price history and aggregates forecast
// errors into hour-of-day, weekday, and horizon bias buckets.
type Trainer struct {
	store domrepo.MarketDataStore
}

func NewTrainer(store domrepo.MarketDataStore) *Trainer {
	return &Trainer{store: store}
}

// BuildTrainingSet emits one TrainingPoint per forecast record whose exact
// timestamp also appears in the actual series. Matching here is exact, not
// tolerance-based: a forecast of a not-yet-realized interval has nothing to
// compare to and is silently dropped, so the returned set can be smaller
// than the forecast count.
func (t *Trainer) BuildTrainingSet(ctx context.Context, market string, start, end time.Time) ([]models.TrainingPoint, error) {
	forecasts, err := t.store.GetPrices(ctx, market, domrepo.PriceForecast, start, end)
	if err != nil {
		return nil, fmt.Errorf("get forecast prices: %w", err)
	}
	actuals, err := t.store.GetPrices(ctx, market, domrepo.PriceActual, start, end)
	if err != nil {
		return nil, fmt.Errorf("get actual prices: %w", err)
	}

	actualByTS := make(map[int64]models.PriceRecord, len(actuals))
	for _, a := range actuals {
		actualByTS[a.Timestamp.UnixNano()] = a
	}

	points := make([]models.TrainingPoint, 0, len(forecasts))
	for _, f := range forecasts {
		a, ok := actualByTS[f.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		ts := f.Timestamp
		points = append(points, models.TrainingPoint{
			Timestamp:     ts,
			ForecastPrice: f.Price,
			ActualPrice:   a.Price,
			ForecastError: f.Price - a.Price,
			HorizonHours:  f.HorizonHours,
			HourOfDay:     ts.Hour(),
			DayOfWeek:     int(ts.Weekday()),
			Month:         int(ts.Month()),
		})
	}
	return points, nil
}

// Train aggregates a training set into a CorrectionModel. Fails with
// InsufficientDataError below MinTrainingPoints. Every bucket key is present
// in the result even when its sample count was zero.
func (t *Trainer) Train(market string, trainingSet []models.TrainingPoint) (*models.CorrectionModel, error) {
	if len(trainingSet) < MinTrainingPoints {
		return nil, &models.InsufficientDataError{Op: "train", Need: MinTrainingPoints, Got: len(trainingSet)}
	}

	hourSum := make(map[int]float64)
	hourCnt := make(map[int]int)
	weekdaySum := make(map[int]float64)
	weekdayCnt := make(map[int]int)
	horizonSum := make(map[int]float64)
	horizonCnt := make(map[int]int)

	var absSum, sqSum, errSum, mapeSum float64
	var mapeCnt int
	for _, p := range trainingSet {
		e := p.ForecastError
		hourSum[p.HourOfDay] += e
		hourCnt[p.HourOfDay]++
		weekdaySum[p.DayOfWeek] += e
		weekdayCnt[p.DayOfWeek]++
		hb := horizonBucket(p.HorizonHours)
		horizonSum[hb] += e
		horizonCnt[hb]++

		absSum += math.Abs(e)
		sqSum += e * e
		errSum += e
		if p.ActualPrice != 0 {
			mapeSum += math.Abs(e/p.ActualPrice) * 100
			mapeCnt++
		}
	}

	n := float64(len(trainingSet))
	model := &models.CorrectionModel{
		Version:     fmt.Sprintf("v%d", time.Now().Unix()),
		Market:      market,
		TrainedAt:   time.Now().UTC(),
		DataPoints:  len(trainingSet),
		HourlyBias:  make(map[int]float64, 24),
		WeekdayBias: make(map[int]float64, 7),
		HorizonBias: make(map[int]float64, len(horizonBuckets)),
		Stats: models.ModelStats{
			MeanAbsoluteError:   util.Round2(absSum / n),
			RootMeanSquareError: util.Round2(math.Sqrt(sqSum / n)),
			BiasCorrection:      util.Round2(errSum / n),
		},
	}
	if mapeCnt > 0 {
		model.Stats.MeanAbsolutePercentageError = util.Round2(mapeSum / float64(mapeCnt))
	}

	for h := 0; h < 24; h++ {
		model.HourlyBias[h] = bucketMean(hourSum[h], hourCnt[h])
	}
	for d := 0; d < 7; d++ {
		model.WeekdayBias[d] = bucketMean(weekdaySum[d], weekdayCnt[d])
	}
	for _, hb := range horizonBuckets {
		model.HorizonBias[hb] = bucketMean(horizonSum[hb], horizonCnt[hb])
	}
	return model, nil
}

// horizonBucket folds a forecast horizon into the 0/6/12/18 buckets
// (0-6h, 6-12h, 12-18h, 18h+).
func horizonBucket(hours float64) int {
	if hours <= 0 {
		return 0
	}
	b := int(math.Floor(hours/6)) * 6
	if b > 18 {
		b = 18
	}
	return b
}

func bucketMean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return util.Round2(sum / float64(count))
}
