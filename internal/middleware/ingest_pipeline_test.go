package middleware

import (
	"context"
	"fmt"
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

type captureProc struct {
	records []*models.PriceRecord
	fail    bool
}

func (p *captureProc) Process(_ context.Context, r *models.PriceRecord) error {
	if p.fail {
		return fmt.Errorf("downstream unavailable")
	}
	p.records = append(p.records, r)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRecordStored(_, _, _ string)      {}
func (nopMetrics) RecordError(_ string)                   {}
func (nopMetrics) RecordLastPrice(_, _ string, _ float64) {}
func (nopMetrics) RecordLatency(_ string, _ float64)      {}

func validRecord() *models.PriceRecord {
	return &models.PriceRecord{
		Market:    "caiso",
		PriceType: "forecast",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Price:     48.5,
	}
}

func TestPipelineForwardsValidRecord(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), validRecord()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.records) != 1 {
		t.Fatalf("expected 1 forwarded record, got %d", len(proc.records))
	}
}

func TestPipelineRejectsInvalidRecords(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	cases := []*models.PriceRecord{
		nil,
		{PriceType: "forecast", Timestamp: time.Now()},
		{Market: "caiso", PriceType: "settlement", Timestamp: time.Now()},
		{Market: "caiso", PriceType: "forecast"},
	}
	for i, r := range cases {
		if err := p.Process(context.Background(), r); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.records) != 0 {
		t.Fatalf("invalid records must not reach downstream")
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &captureProc{fail: true}
	p := NewIngestPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validRecord()); err == nil {
		t.Fatalf("expected downstream error surfaced")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected record buffered, got %d", len(p.bufCh))
	}
}

func TestPipelineThrottlesPerSeries(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1))

	r := validRecord()
	if err := p.Process(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// immediate second record for the same series is throttled silently
	if err := p.Process(context.Background(), r); err != nil {
		t.Fatalf("throttle should not error: %v", err)
	}
	if len(proc.records) != 1 {
		t.Fatalf("expected 1 record after throttle, got %d", len(proc.records))
	}

	// a different series is not affected
	other := validRecord()
	other.PriceType = "actual"
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(proc.records))
	}
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithTransform(func(r *models.PriceRecord) *models.PriceRecord {
		r.Market = "caiso"
		return r
	}))

	r := validRecord()
	r.Market = "caiso-raw"
	if err := p.Process(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.records) != 1 || proc.records[0].Market != "caiso" {
		t.Fatalf("transform not applied")
	}
}
