package usecase

import (
	"context"

	"GridCast/internal/domain/models"
	drepo "GridCast/internal/domain/repository"
	mid "GridCast/internal/middleware"
)

// PriceCollector consumes the live settlement feed and hands records to the
// ingest pipeline.
type PriceCollector struct {
	stream  drepo.PriceStream
	proc    *PriceProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewPriceCollector creates a new PriceCollector instance.
func NewPriceCollector(stream drepo.PriceStream, proc *PriceProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *PriceCollector {
	return &PriceCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the feed is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	recCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, recCh, errCh)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, recCh <-chan *models.PriceRecord, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case r := <-recCh:
			if r == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, r)
			} else {
				_ = c.proc.Process(ctx, r)
			}
			c.metrics.RecordLastPrice(r.Market, r.PriceType, r.Price)
		}
	}
}

func (c *PriceCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying PriceProcessor for lifecycle management.
func (c *PriceCollector) Processor() *PriceProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
