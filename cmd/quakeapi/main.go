package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-service/internal/adapter/phivolcs"
	"github.com/couchcryptid/quake-feed-service/internal/cache"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/couchcryptid/quake-feed-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := phivolcs.NewClient(cfg.SourceURL, cfg.SourceUserAgent, cfg.SourceTimeout, logger)
	extractor := phivolcs.NewExtractor(cfg.SourceLocation, logger, metrics)
	store := cache.New(cfg.CacheTTL)

	opts := []pipeline.Option{pipeline.WithRefreshInterval(cfg.RefreshInterval)}

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	orch := pipeline.New(client, extractor, store, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, orch, orch, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("quake feed starting",
		"source", cfg.SourceURL,
		"cache_ttl", cfg.CacheTTL,
		"refresh_interval", cfg.RefreshInterval,
	)

	g, gctx := errgroup.WithContext(ctx)

	// Start HTTP server; stops when the group context is cancelled.
	g.Go(func() error {
		return runHTTPServer(gctx, srv, cfg.ShutdownTimeout, logger)
	})

	// Start background refresh; a no-op unless REFRESH_INTERVAL is set.
	g.Go(func() error {
		return orch.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}
	logger.Info("shutting down")

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func runHTTPServer(ctx context.Context, srv *httpadapter.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}
