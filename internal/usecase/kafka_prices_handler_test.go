package usecase

import (
	"context"
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

type captureSink struct {
	stored []*models.PriceRecord
}

func (s *captureSink) Init(_ context.Context) error { return nil }

func (s *captureSink) Store(_ context.Context, r *models.PriceRecord) error {
	s.stored = append(s.stored, r)
	return nil
}

func (s *captureSink) StoreBatch(_ context.Context, rs []*models.PriceRecord) error {
	s.stored = append(s.stored, rs...)
	return nil
}

func (s *captureSink) Health(_ context.Context) error { return nil }
func (s *captureSink) Close() error                   { return nil }

type countMetrics struct {
	errors int
	stored int
}

func (m *countMetrics) RecordRecordStored(_, _, _ string)      { m.stored++ }
func (m *countMetrics) RecordError(_ string)                   { m.errors++ }
func (m *countMetrics) RecordLastPrice(_, _ string, _ float64) {}
func (m *countMetrics) RecordLatency(_ string, _ float64)      {}

func TestKafkaPricesHandlerStoresRecord(t *testing.T) {
	sink := &captureSink{}
	metrics := &countMetrics{}
	h := NewKafkaPricesHandler("prices", sink, metrics)

	msg := []byte(`{"market":"caiso","region":"np15","type":"forecast","ts":1717243200,"price":48.5,"forecasted_at":1717200000,"horizon":12}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.stored) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(sink.stored))
	}

	r := sink.stored[0]
	if r.Market != "caiso" || r.PriceType != "forecast" {
		t.Fatalf("unexpected record %+v", r)
	}
	if !r.Timestamp.Equal(time.Unix(1717243200, 0).UTC()) {
		t.Fatalf("unexpected timestamp %v", r.Timestamp)
	}
	if r.ForecastedAt == nil || !r.ForecastedAt.Equal(time.Unix(1717200000, 0).UTC()) {
		t.Fatalf("unexpected forecasted_at %v", r.ForecastedAt)
	}
	if r.HorizonHours != 12 {
		t.Fatalf("unexpected horizon %v", r.HorizonHours)
	}
	if metrics.stored != 1 {
		t.Fatalf("expected stored metric recorded")
	}
}

func TestKafkaPricesHandlerMillisecondTimestamps(t *testing.T) {
	sink := &captureSink{}
	h := NewKafkaPricesHandler("prices", sink, &countMetrics{})

	msg := []byte(`{"market":"caiso","type":"actual","ts":1717243200000,"price":50}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sink.stored[0].Timestamp.Equal(time.Unix(1717243200, 0).UTC()) {
		t.Fatalf("ms timestamp not folded to seconds: %v", sink.stored[0].Timestamp)
	}
}

func TestKafkaPricesHandlerBadPayload(t *testing.T) {
	metrics := &countMetrics{}
	h := NewKafkaPricesHandler("prices", &captureSink{}, metrics)

	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if metrics.errors != 1 {
		t.Fatalf("expected error metric recorded")
	}
}

func TestKafkaPricesHandlerNormalizesUnknownType(t *testing.T) {
	sink := &captureSink{}
	h := NewKafkaPricesHandler("prices", sink, &countMetrics{})

	msg := []byte(`{"market":"caiso","type":"dayahead","ts":1717243200,"price":50}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.stored[0].PriceType != "forecast" {
		t.Fatalf("expected unknown type folded to forecast, got %s", sink.stored[0].PriceType)
	}
}
