package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"productos/backend/internal/config"
	"productos/backend/internal/httpserver"
	"productos/backend/internal/infrastructure/postgres"
	"productos/backend/internal/observability"
	productusecase "productos/backend/internal/usecase/product"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	rootCtx := context.Background()
	tp, err := observability.InitTracer(rootCtx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.AppEnv,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}

	db, err := postgres.New(rootCtx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		TracerProvider:  tp,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := db.Migrate(rootCtx); err != nil {
			logger.Fatal("failed to run database migrations", zap.Error(err))
		}
		logger.Info("database migrations applied")
	}

	metrics := observability.NewMetrics()
	metrics.Registerer().MustRegister(postgres.NewPoolCollector(db.Stats))

	productRepo := postgres.NewProductRepository(db.Pool, logger.Named("postgres"), postgres.WithTracerProvider(tp))
	productService := productusecase.NewService(productRepo, logger)

	server := httpserver.NewServer(cfg, httpserver.Dependencies{
		Products:       productService,
		Logger:         logger,
		Metrics:        metrics,
		Database:       db,
		TracerProvider: tp,
	})
	logger.Info("HTTP server listening", zap.String("addr", server.Addr()), zap.String("env", cfg.AppEnv))

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("graceful shutdown completed")
	}
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error("tracer shutdown failed", zap.Error(err))
	}
}
