package repository

import (
	"context"
	"time"

	"GridCast/internal/domain/models"
)

// MarketDataStore is the read-only query surface the core consumes. Both
// methods return rows ordered by timestamp ascending.
type MarketDataStore interface {
	// GetPrices returns all price records for a market and price type inside
	// [start, end].
	GetPrices(ctx context.Context, market string, priceType PriceType, start, end time.Time) ([]models.PriceRecord, error)

	// GetConsumptionReadings returns readings for meters owned by siteID,
	// filtered to the given metric, inside [start, end].
	GetConsumptionReadings(ctx context.Context, siteID, metric string, start, end time.Time) ([]models.ConsumptionReading, error)
}

// PriceStream is a live source of price records (websocket feed).
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceRecord, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards price records to a message broker.
type Publisher interface {
	Publish(ctx context.Context, r *models.PriceRecord) error
	PublishBatch(ctx context.Context, records []*models.PriceRecord) error
	Close() error
}

// PriceSink is the write side of price storage used by the ingestion path.
type PriceSink interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.PriceRecord) error
	StoreBatch(ctx context.Context, records []*models.PriceRecord) error
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics abstracts operational counters for ingestion and serving.
type Metrics interface {
	RecordRecordStored(backend, market, priceType string)
	RecordError(kind string)
	RecordLastPrice(market, priceType string, price float64)
	RecordLatency(op string, seconds float64)
}
