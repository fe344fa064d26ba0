package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "GridCast/internal/domain/repository"
	"GridCast/internal/service/dayahead"
	applogger "GridCast/pkg/logger"
)

const backfillAttempts = 3

// Backfiller fills gaps in stored price history from the day-ahead REST API.
type Backfiller struct {
	api     *dayahead.Client
	sink    domrepo.PriceSink
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewBackfiller(api *dayahead.Client, sink domrepo.PriceSink, metrics domrepo.Metrics) *Backfiller {
	return &Backfiller{api: api, sink: sink, metrics: metrics}
}

// SetLogger injects a structured logger.
func (b *Backfiller) SetLogger(l *applogger.Logger) { b.l = l }

// Backfill fetches both price series for a market window and stores them.
func (b *Backfiller) Backfill(ctx context.Context, market string, start, end time.Time) (int, error) {
	if market == "" {
		return 0, fmt.Errorf("market required")
	}
	if !end.After(start) {
		return 0, fmt.Errorf("invalid window: start %s end %s", start, end)
	}

	total := 0
	for _, pt := range []domrepo.PriceType{domrepo.PriceForecast, domrepo.PriceActual} {
		records, err := b.api.FetchPricesWithRetry(ctx, market, pt, start, end, backfillAttempts)
		if err != nil {
			b.metrics.RecordError("backfill_fetch")
			return total, fmt.Errorf("backfill fetch %s: %w", pt, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := b.sink.StoreBatch(ctx, records); err != nil {
			b.metrics.RecordError("backfill_store")
			return total, fmt.Errorf("backfill store %s: %w", pt, err)
		}
		for _, r := range records {
			b.metrics.RecordRecordStored("clickhouse", r.Market, r.PriceType)
		}
		total += len(records)
	}

	if b.l != nil {
		b.l.Info("backfill complete",
			applogger.String("market", market),
			applogger.Int("records", total),
		)
	}
	return total, nil
}
