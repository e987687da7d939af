package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/udp-logview/internal/adapter/api"
	"github.com/V4T54L/udp-logview/internal/adapter/api/handler"
	"github.com/V4T54L/udp-logview/internal/adapter/metrics"
	"github.com/V4T54L/udp-logview/internal/adapter/queue"
	"github.com/V4T54L/udp-logview/internal/adapter/receiver"
	"github.com/V4T54L/udp-logview/internal/adapter/repository/file"
	kafkarepo "github.com/V4T54L/udp-logview/internal/adapter/repository/kafka"
	"github.com/V4T54L/udp-logview/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/udp-logview/internal/adapter/repository/redis"
	"github.com/V4T54L/udp-logview/internal/domain"
	"github.com/V4T54L/udp-logview/internal/pkg/config"
	"github.com/V4T54L/udp-logview/internal/pkg/logger"
	"github.com/V4T54L/udp-logview/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewViewerMetrics(prometheus.DefaultRegisterer)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Receiver ---
	records := queue.NewHandoffQueue()
	udp, err := receiver.NewUDPReceiver(cfg.ListenAddr(), cfg.ReadBufferSize, records, m, logger)
	if err != nil {
		logger.Error("failed to bind UDP listener", "addr", cfg.ListenAddr(), "error", err)
		os.Exit(1)
	}

	// --- Export Sinks ---
	exporters := map[string]domain.ExportRepository{
		"file": file.NewExportRepository(cfg.ExportDir, cfg.ExportCompress, logger),
	}

	if cfg.RedisAddr != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, redis exports will fail until it is reachable", "error", err)
		}
		exporters["redis"] = redisrepo.NewExportRepository(redisClient, cfg.RedisPrefix, logger)
	}

	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgRepo := postgres.NewExportRepository(db, logger)
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Warn("could not prepare postgres export table", "error", err)
		}
		exporters["postgres"] = pgRepo
	}

	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		writer := kafkarepo.NewWriter(brokers, cfg.KafkaTopic)
		defer writer.Close()
		exporters["kafka"] = kafkarepo.NewExportRepository(writer, cfg.KafkaTopic, logger)
	}

	// --- Viewer ---
	viewer := usecase.NewViewerUseCase(records, usecase.ViewerOptions{
		MaxRecords: cfg.MaxLines,
		EvictBatch: cfg.PruneBatch,
		DrainBatch: cfg.DrainBatch,
		MinLevel:   cfg.MinimumLevel(),
		Exporters:  exporters,
		Metrics:    m,
	}, logger)

	sseBroker := handler.NewSSEBroker(ctx, time.Second, logger)
	loop := usecase.NewViewerLoop(viewer, cfg.TickInterval, sseBroker, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		udp.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()

	// --- Control Server ---
	router := api.NewRouter(api.RouterDeps{
		Loop:    loop,
		Events:  sseBroker,
		Metrics: promhttp.Handler(),
		APIKey:  cfg.ControlAPIKey,
		Logger:  logger,
	})
	controlServer := &http.Server{
		Addr:        cfg.ControlAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 60 * time.Second,
		// Event streams end with the process context rather than holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("starting control server", "addr", controlServer.Addr, "sinks", viewer.Sinks())
		if err := controlServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("control server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := controlServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("control server shutdown failed", "error", err)
	}
	wg.Wait()

	logger.Info("shut down gracefully")
}
