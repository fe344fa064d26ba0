package usecase

import (
	"context"
	"encoding/json"
	"time"

	"GridCast/internal/domain/models"
	domrepo "GridCast/internal/domain/repository"
	pkgkafka "GridCast/pkg/kafka"
)

// KafkaPricesHandler consumes price messages from Kafka and writes them to
// storage.
type KafkaPricesHandler struct {
	topic   string
	sink    domrepo.PriceSink
	metrics domrepo.Metrics
}

func NewKafkaPricesHandler(topic string, sink domrepo.PriceSink, metrics domrepo.Metrics) *KafkaPricesHandler {
	return &KafkaPricesHandler{topic: topic, sink: sink, metrics: metrics}
}

func (h *KafkaPricesHandler) Topic() string { return h.topic }

// incoming message schema: {market, region, type, ts, price, forecasted_at?, horizon?}
func (h *KafkaPricesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Market       string  `json:"market"`
		Region       string  `json:"region"`
		Type         string  `json:"type"`
		TS           int64   `json:"ts"`
		Price        float64 `json:"price"`
		ForecastedAt int64   `json:"forecasted_at"`
		Horizon      float64 `json:"horizon"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.TS, 0)).Seconds())

	rec := &models.PriceRecord{
		Market:       m.Market,
		Region:       m.Region,
		PriceType:    string(domrepo.NormalizePriceType(m.Type)),
		Timestamp:    time.Unix(m.TS, 0).UTC(),
		Price:        m.Price,
		HorizonHours: m.Horizon,
	}
	if m.ForecastedAt > 0 {
		fa := time.Unix(m.ForecastedAt, 0).UTC()
		rec.ForecastedAt = &fa
	}

	start := time.Now()
	err := h.sink.Store(ctx, rec)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordRecordStored("clickhouse", rec.Market, rec.PriceType)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaPricesHandler)(nil)
