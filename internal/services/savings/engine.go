package savings

import (
	"context"
	"fmt"
	"math"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	domsvc "GridCast/internal/domain/service"
	"GridCast/internal/services/correction"
	"GridCast/pkg/util"
)

var _ domsvc.SavingsCalculator = (*Engine)(nil)

// Engine attributes consumption cost to forecast and actual price regimes and
// reports forecast accuracy. Every report is computed fresh from the store;
// nothing is cached here.
type Engine struct {
	store domrepo.MarketDataStore
}

func NewEngine(store domrepo.MarketDataStore) *Engine {
	return &Engine{store: store}
}

// CalculateSavings prices every reading in the window under the nearest
// forecast and nearest actual price (1-hour tolerance, independently matched)
// and reports the cost difference. Fails with NoDataError when the site has
// no readings in the window.
func (e *Engine) CalculateSavings(ctx context.Context, siteID string, start, end time.Time, market string) (*models.SavingsAnalysis, error) {
	readings, err := e.store.GetConsumptionReadings(ctx, siteID, models.MetricEnergy, start, end)
	if err != nil {
		return nil, fmt.Errorf("get consumption readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, &models.NoDataError{Op: "calculate savings", Scope: "site " + siteID}
	}

	forecasts, err := e.store.GetPrices(ctx, market, domrepo.PriceForecast, start, end)
	if err != nil {
		return nil, fmt.Errorf("get forecast prices: %w", err)
	}
	actuals, err := e.store.GetPrices(ctx, market, domrepo.PriceActual, start, end)
	if err != nil {
		return nil, fmt.Errorf("get actual prices: %w", err)
	}

	// Peak thresholds come from the full window series, not only the records
	// that end up matched to a reading. Observed behavior, kept as is.
	forecastAvg := averagePrice(forecasts)
	actualAvg := averagePrice(actuals)

	forecastAligner := correction.NewAligner(forecasts)
	actualAligner := correction.NewAligner(actuals)

	var forecastCost, actualCost float64
	var fPeak, fOffPeak, aPeak, aOffPeak int
	for _, r := range readings {
		mwh := r.Value / 1000 // readings arrive in kWh, prices are per MWh

		if f := forecastAligner.Closest(r.Timestamp, correction.DefaultTolerance); f != nil {
			forecastCost += mwh * f.Price
			if f.Price > forecastAvg {
				fPeak++
			} else {
				fOffPeak++
			}
		}
		if a := actualAligner.Closest(r.Timestamp, correction.DefaultTolerance); a != nil {
			actualCost += mwh * a.Price
			if a.Price > actualAvg {
				aPeak++
			} else {
				aOffPeak++
			}
		}
	}

	amount := forecastCost - actualCost
	var pct float64
	if forecastCost != 0 {
		pct = amount / forecastCost * 100
	}

	return &models.SavingsAnalysis{
		SiteID: siteID,
		Market: market,
		Period: models.Period{Start: start, End: end},
		Forecast: models.CostSummary{
			TotalCost:    util.Round2(forecastCost),
			AveragePrice: util.Round2(forecastAvg),
			PeakHours:    fPeak,
			OffPeakHours: fOffPeak,
		},
		Actual: models.CostSummary{
			TotalCost:    util.Round2(actualCost),
			AveragePrice: util.Round2(actualAvg),
			PeakHours:    aPeak,
			OffPeakHours: aOffPeak,
		},
		Savings: models.SavingsSummary{
			Amount:      util.Round2(amount),
			Percentage:  util.Round2(pct),
			Description: describeSavings(util.Round2(amount)),
		},
		// Placeholder until a recommendation-tracking collaborator exists.
		Recommendations: models.RecommendationStats{},
	}, nil
}

// CalculateForecastAccuracy matches every forecast record to its nearest
// actual within 1 hour and reports MAE, MAPE, and accuracy = max(0, 100-MAPE).
// Independent of consumption. Fails with InsufficientDataError when either
// series is empty.
func (e *Engine) CalculateForecastAccuracy(ctx context.Context, start, end time.Time, market string) (*models.AccuracyReport, error) {
	forecasts, err := e.store.GetPrices(ctx, market, domrepo.PriceForecast, start, end)
	if err != nil {
		return nil, fmt.Errorf("get forecast prices: %w", err)
	}
	actuals, err := e.store.GetPrices(ctx, market, domrepo.PriceActual, start, end)
	if err != nil {
		return nil, fmt.Errorf("get actual prices: %w", err)
	}
	if len(forecasts) == 0 || len(actuals) == 0 {
		return nil, &models.InsufficientDataError{Op: "calculate forecast accuracy"}
	}

	aligner := correction.NewAligner(actuals)

	var absSum, mapeSum float64
	var matched, mapeCnt int
	for _, f := range forecasts {
		a := aligner.Closest(f.Timestamp, correction.DefaultTolerance)
		if a == nil {
			continue
		}
		matched++
		diff := math.Abs(f.Price - a.Price)
		absSum += diff
		if a.Price != 0 {
			mapeSum += math.Abs(diff/a.Price) * 100
			mapeCnt++
		}
	}

	var mae, mape float64
	if matched > 0 {
		mae = absSum / float64(matched)
	}
	if mapeCnt > 0 {
		mape = mapeSum / float64(mapeCnt)
	}
	accuracy := 100 - mape
	if accuracy < 0 {
		accuracy = 0
	}

	return &models.AccuracyReport{
		Market:                      market,
		Period:                      models.Period{Start: start, End: end},
		MatchedPairs:                matched,
		MeanAbsoluteError:           util.Round2(mae),
		MeanAbsolutePercentageError: util.Round2(mape),
		Accuracy:                    util.Round2(accuracy),
	}, nil
}

// averagePrice is the simple mean over all records, 0 for an empty series.
func averagePrice(records []models.PriceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Price
	}
	return sum / float64(len(records))
}

// describeSavings phrases the savings amount by sign.
func describeSavings(amount float64) string {
	switch {
	case amount > 0:
		return fmt.Sprintf("saved $%.2f through price-optimized consumption", amount)
	case amount < 0:
		return fmt.Sprintf("costs were $%.2f higher than forecast", -amount)
	default:
		return "costs matched forecast predictions"
	}
}
