package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GridCast/internal/handler/api"
	"GridCast/internal/repository"
	icache "GridCast/internal/service/cache"
	"GridCast/internal/services/correction"
	"GridCast/internal/services/savings"
	"GridCast/internal/usecase"
	pkgch "GridCast/pkg/clickhouse"
	"GridCast/pkg/config"
	xhttp "GridCast/pkg/http"
	pkgkafka "GridCast/pkg/kafka"
	applogger "GridCast/pkg/logger"
	"GridCast/pkg/util"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.PriceCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	backfiller  *usecase.Backfiller
	logPub      applogger.Publisher
	PriceProc   *usecase.PriceProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.PriceCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetBackfiller allows DI to inject the day-ahead backfiller.
func (a *App) SetBackfiller(b *usecase.Backfiller) { a.backfiller = b }

// SetLogPublisher allows DI to inject the log aggregation publisher.
func (a *App) SetLogPublisher(p applogger.Publisher) { a.logPub = p }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if a.logPub != nil && a.cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.LogsTopic,
			Publisher:      a.logPub,
		})
	}

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else if a.chClient != nil {
		store := repository.NewClickHouseStore(a.chClient, a.cfg.Backend.Table)
		store.SetLogger(l)

		trainer := correction.NewTrainer(store)
		applier := correction.NewApplier()
		evaluator := correction.NewEvaluator(trainer, applier)

		var registry icache.BytesCache
		if a.cfg.Forecast.Redis.Enabled {
			registry = icache.NewRedisCache(icache.RedisConfig{
				Addr:     a.cfg.Forecast.Redis.Addr,
				Password: a.cfg.Forecast.Redis.Password,
				DB:       a.cfg.Forecast.Redis.DB,
			})
		} else {
			registry = icache.NewTTLCache()
		}

		modelUC := usecase.NewModelUseCase(trainer, applier, evaluator, store, registry)
		modelUC.SetLogger(l)
		savingsUC := usecase.NewSavingsUseCase(savings.NewEngine(store))

		eh := api.NewForecastEchoHandler(l, modelUC, savingsUC)

		cached := api.NewForecastHandler(modelUC, savingsUC)
		cached.SetCache(icache.NewTTLCache())
		cached.SetLogger(l)
		eh.SetCachedHandler(cached)

		httpHandler = eh
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("markets", a.cfg.Feed.Markets))

	// Backfill the recent window so training has data before live ingest catches up
	if a.backfiller != nil {
		a.backfiller.SetLogger(l)
		go func() {
			now := time.Now()
			start, end := util.AlignWindow(now.Add(-48*time.Hour), now, "1h")
			for _, market := range a.cfg.Feed.Markets {
				if _, err := a.backfiller.Backfill(ctx, market, start, end); err != nil {
					l.Warn("backfill error", applogger.String("market", market), applogger.Error(err))
				}
			}
		}()
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher/storage)
	if a.PriceProc != nil {
		a.PriceProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
