package usecase

import (
	"context"
	"fmt"
	"time"

	"GridCast/internal/domain/models"
	drepo "GridCast/internal/domain/repository"
)

// PriceProcessor routes incoming price records to the configured backend.
type PriceProcessor struct {
	pub     drepo.Publisher
	sink    drepo.PriceSink
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

// NewPriceProcessor creates a new PriceProcessor instance.
func NewPriceProcessor(
	pub drepo.Publisher,
	sink drepo.PriceSink,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *PriceProcessor {
	return &PriceProcessor{
		pub:     pub,
		sink:    sink,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single price record to the configured backend.
func (p *PriceProcessor) Process(ctx context.Context, r *models.PriceRecord) error {
	if r == nil {
		return fmt.Errorf("price record is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, r)
	case "clickhouse":
		err = p.sink.Store(ctx, r)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process price record: %w", err)
	}

	p.metrics.RecordRecordStored(p.backend, r.Market, r.PriceType)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple price records in a batch.
func (p *PriceProcessor) ProcessBatch(ctx context.Context, records []*models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, records)
	case "clickhouse":
		err = p.sink.StoreBatch(ctx, records)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, r := range records {
		p.metrics.RecordRecordStored(p.backend, r.Market, r.PriceType)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *PriceProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.sink != nil {
		_ = p.sink.Close()
	}
}
