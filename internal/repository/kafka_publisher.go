package repository

import (
	"context"

	"GridCast/internal/domain/models"
	"GridCast/internal/domain/repository"
	pkgkafka "GridCast/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.PriceRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Market), priceMessage(r))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, records []*models.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(records))
	for i, r := range records {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(r.Market),
			Value: priceMessage(r),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func priceMessage(r *models.PriceRecord) map[string]interface{} {
	m := map[string]interface{}{
		"market":  r.Market,
		"region":  r.Region,
		"type":    r.PriceType,
		"ts":      r.Timestamp.Unix(),
		"price":   r.Price,
		"horizon": r.HorizonHours,
	}
	if r.ForecastedAt != nil {
		m["forecasted_at"] = r.ForecastedAt.Unix()
	}
	return m
}
