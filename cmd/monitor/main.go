package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrisat/field-monitor/internal/adapter/firms"
	"github.com/agrisat/field-monitor/internal/adapter/httpapi"
	kafkaadapter "github.com/agrisat/field-monitor/internal/adapter/kafka"
	"github.com/agrisat/field-monitor/internal/adapter/modis"
	"github.com/agrisat/field-monitor/internal/adapter/power"
	"github.com/agrisat/field-monitor/internal/config"
	"github.com/agrisat/field-monitor/internal/ingest"
	"github.com/agrisat/field-monitor/internal/observability"
	"github.com/agrisat/field-monitor/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(db); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	fieldRepo := store.NewFieldRepository(db)
	measurementRepo := store.NewMeasurementRepository(db)
	alertRepo := store.NewAlertRepository(db)

	firmsClient := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSBaseURL, cfg.ProviderTimeout, logger, metrics)
	powerClient := power.NewClient(cfg.POWERBaseURL, cfg.ProviderTimeout, logger, metrics)
	modisClient := modis.NewClient(cfg.MODISSubsetBaseURL, cfg.CMRBaseURL, cfg.ProviderTimeout, logger, metrics)
	if cfg.FIRMSAPIKey == "" {
		logger.Warn("FIRMS_API_KEY not set, fire checks will fail until configured")
	}

	var notifier ingest.Notifier
	kafkaNotifier := kafkaadapter.NewNotifier(cfg.KafkaBrokers, cfg.KafkaAlertTopic, logger)
	if kafkaNotifier != nil {
		notifier = kafkaNotifier
		logger.Info("kafka notifications enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		notifier = &kafkaadapter.NopNotifier{Logger: logger}
		logger.Info("kafka notifications disabled")
	}

	service := ingest.NewService(ingest.Deps{
		Fields:       fieldRepo,
		Measurements: measurementRepo,
		Alerts:       alertRepo,
		Weather:      powerClient,
		Fires:        firmsClient,
		Vegetation:   modisClient,
		Notifier:     notifier,
		Logger:       logger,
		Metrics:      metrics,
	}, ingest.Options{
		Retry:           ingest.Policy{MaxAttempts: cfg.RetryMaxAttempts, Base: cfg.RetryBase},
		FireCooldown:    cfg.FireCooldown,
		AlertingEnabled: cfg.AlertingEnabled,
	})

	scheduler := ingest.NewScheduler(service, ingest.Schedule{
		FireCheckInterval: cfg.FireCheckInterval,
		FireBufferKm:      cfg.FireBufferKm,
		FireDays:          cfg.FireDays,
		WeatherInterval:   cfg.WeatherInterval,
		WeatherDays:       cfg.WeatherDays,
		CleanupInterval:   cfg.CleanupInterval,
		Retention: ingest.Retention{
			ResolvedAlerts:  cfg.AlertRetention,
			Weather:         cfg.WeatherRetention,
			SatelliteImages: cfg.ImageRetention,
		},
	}, clockwork.NewRealClock(), logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, service, fieldRepo, alertRepo, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(); err != nil {
			logger.Error("kafka notifier close error", "error", err)
		}
	}
	if err := store.Close(db); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
