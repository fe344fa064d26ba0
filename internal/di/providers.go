package di

import (
	"context"
	"fmt"
	"time"

	"GridCast/internal/domain/repository"
	mid "GridCast/internal/middleware"
	internalrepo "GridCast/internal/repository"
	"GridCast/internal/service/dayahead"
	"GridCast/internal/service/gridfeed"
	"GridCast/internal/usecase"
	pkgch "GridCast/pkg/clickhouse"
	"GridCast/pkg/config"
	pkgkafka "GridCast/pkg/kafka"
	"GridCast/pkg/metrics"
	"GridCast/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS gridcast",
		"CREATE TABLE IF NOT EXISTS gridcast.price_records (ts DateTime, market String, region String, price_type String, price Float64, forecasted_at DateTime, horizon_hours Float64) ENGINE=MergeTree ORDER BY (market, price_type, ts)",
		"CREATE TABLE IF NOT EXISTS gridcast.meters (meter_id String, site_id String, region String) ENGINE=ReplacingMergeTree ORDER BY meter_id",
		"CREATE TABLE IF NOT EXISTS gridcast.consumption_readings (entity_id String, ts DateTime, value Float64, metric String) ENGINE=MergeTree ORDER BY (entity_id, metric, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceSink creates the ClickHouse price sink.
func ProvidePriceSink(chClient *pkgch.Client, cfg *config.Config) repository.PriceSink {
	table := cfg.Backend.Table
	if table == "" {
		table = cfg.ClickHouse.Database + ".price_records"
	}
	return internalrepo.NewClickHouseStore(chClient, table)
}

// ProvidePricePublisher creates Kafka publisher repository.
func ProvidePricePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaPricesHandler registers handler for the prices topic.
func ProvideKafkaPricesHandler(sink repository.PriceSink, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaPricesHandler {
	return usecase.NewKafkaPricesHandler(cfg.Kafka.Topic, sink, metrics)
}

// ProvideBackfiller creates the day-ahead backfiller, or nil when no
// base URL is configured.
func ProvideBackfiller(sink repository.PriceSink, m repository.Metrics, cfg *config.Config) *usecase.Backfiller {
	if cfg.DayAhead.BaseURL == "" {
		return nil
	}
	api := dayahead.New(cfg.DayAhead.BaseURL, cfg.DayAhead.APIKey, cfg.DayAhead.Timeout)
	return usecase.NewBackfiller(api, sink, m)
}

// ProvideFeedStream creates the grid operator WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.PriceStream {
	return gridfeed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Markets,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvidePriceProcessor creates the price processor use case.
func ProvidePriceProcessor(
	pub repository.Publisher,
	sink repository.PriceSink,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(
		pub,
		sink,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvidePriceCollector creates the price collector use case.
func ProvidePriceCollector(
	stream repository.PriceStream,
	processor *usecase.PriceProcessor,
	metrics repository.Metrics,
) *usecase.PriceCollector {
	// Build middleware pipeline between WebSocket and storage
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewPriceCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaPricesHandler,
	chClient *pkgch.Client,
	backfiller *usecase.Backfiller,
	producer *pkgkafka.Producer,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.TraceHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetBackfiller(backfiller)
	if producer != nil {
		app.SetLogPublisher(producer)
	}
	// attach price processor to app for closing resources via collector
	if collector != nil {
		app.PriceProc = collector.Processor()
	}
	return app
}
