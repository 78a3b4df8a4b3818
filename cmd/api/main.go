package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nestflow/internal/api"
	"nestflow/internal/auth"
	"nestflow/internal/config"
	"nestflow/internal/database"
	"nestflow/internal/domain"
	"nestflow/internal/events"
	"nestflow/internal/google"
	"nestflow/internal/logging"
	"nestflow/internal/metrics"
	"nestflow/internal/repository"
	"nestflow/internal/service"
	"nestflow/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer repository.Close(redisClient)
	}
	cache := initCache(redisClient, logger)

	eventLogger := logging.Component(logger, "events")
	eventBus := events.NewEventBus(eventLogger)
	for _, eventType := range events.AllEventTypes {
		eventBus.Subscribe(eventType, events.LogHandler(eventLogger))
		eventBus.Subscribe(eventType, events.MetricsHandler())
	}

	startMetrics(ctx, cfg, logger)

	ledgerWorker := initLedger(ctx, cfg, db, redisClient, logger)

	backup := database.NewBackupService(db, cfg.Database.Path, cfg.Backup, logging.Component(logger, "backup"))
	go backup.Start(ctx)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TTL())
	svcLogger := logging.Component(logger, "service")

	// nil-интерфейс только через явную проверку
	var syncWorker domain.SyncWorker
	if ledgerWorker != nil {
		syncWorker = ledgerWorker
	}

	messages := service.NewMessageService(db, db, db, cache,
		cfg.Messaging.RateLimitMessages,
		time.Duration(cfg.Messaging.RateLimitWindow)*time.Second,
		svcLogger)

	services := api.Services{
		Users:        service.NewUserService(db, tokens, cfg.Auth.BcryptCost, svcLogger),
		Properties:   service.NewPropertyService(db, cache, time.Duration(cfg.API.CacheTTL)*time.Second, svcLogger),
		Reservations: service.NewReservationService(db, db, eventBus, syncWorker, svcLogger),
		Reviews:      service.NewReviewService(db, db, cache, eventBus, svcLogger),
		Messages:     messages,
		Ready:        db.PingContext,
	}

	httpServer := api.NewHTTPServer(cfg.API, services, logging.Component(logger, "http"))

	return serve(ctx, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "api-main"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

// initCache prefers redis and degrades to process memory while redis is down.
func initCache(client *redis.Client, logger *zerolog.Logger) domain.CacheStore {
	memory := repository.NewMemoryCache()
	if client == nil {
		return memory
	}
	return repository.NewFailoverCache(repository.NewRedisCache(client), memory, logging.Component(logger, "cache"))
}

func initLedger(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.LedgerWorker {
	if !cfg.Ledger.Enabled {
		logger.Info().Msg("ledger sync is disabled")
		return nil
	}

	ledgerLogger := logging.Component(logger, "ledger")
	ledger, err := google.NewSheetsLedger(ctx, cfg.Ledger.CredentialsFile, cfg.Ledger.SpreadsheetID, ledgerLogger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger")
		return nil
	}
	if err := ledger.EnsureHeader(ctx); err != nil {
		ledgerLogger.Warn().Err(err).Msg("failed to write ledger header")
	}
	if err := ledger.WarmUpCache(ctx); err != nil {
		ledgerLogger.Warn().Err(err).Msg("failed to warm up ledger row cache")
	}

	w := worker.NewLedgerWorker(db, ledger, redisClient, worker.RetryPolicyFromConfig(cfg.Ledger), ledgerLogger)
	go w.Start(ctx)

	logger.Info().Str("spreadsheet_id", cfg.Ledger.SpreadsheetID).Msg("ledger sync started")
	return w
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Str("env", cfg.App.Environment).Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
