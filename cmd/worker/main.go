package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/checkout-bridge/internal/bootstrap"
	"github.com/cassiomorais/checkout-bridge/internal/config"
	"github.com/cassiomorais/checkout-bridge/internal/infrastructure/observability"
	infraRedis "github.com/cassiomorais/checkout-bridge/internal/infrastructure/redis"
	"github.com/cassiomorais/checkout-bridge/internal/repository/postgres"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "checkout-bridge-worker", "checkout_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	streamProducer := infraRedis.NewStreamProducer(app.Redis)

	workerCfg := app.Config.Worker

	app.Logger.Info().
		Str("stream", infraRedis.EventStream).
		Dur("poll_interval", workerCfg.OutboxPollInterval).
		Msg("Worker started, relaying outbox entries...")

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Outbox relay (polls outbox table and publishes to the event stream).
	g.Go(func() error {
		return runOutboxRelay(gCtx, app.Logger, app.Metrics, txManager, outboxRepo, streamProducer, workerCfg)
	})

	// 2. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

func runOutboxRelay(
	ctx context.Context,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	txManager *postgres.TxManager,
	outboxRepo *postgres.OutboxRepository,
	streamProducer *infraRedis.StreamProducer,
	cfg config.WorkerConfig,
) error {
	pollInterval := cfg.OutboxPollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		start := time.Now()
		err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			entries, err := outboxRepo.GetPending(txCtx, int(cfg.BatchSize))
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if err := streamProducer.PublishTransactionEvent(
					ctx, entry.AggregateID, entry.EventType, entry.Payload,
				); err != nil {
					logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to publish outbox event")
					if err := outboxRepo.MarkFailed(txCtx, entry.ID); err != nil {
						logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry failed")
					}
					metrics.OutboxEntriesRelayed.WithLabelValues("failed").Inc()
					continue
				}
				if err := outboxRepo.MarkPublished(txCtx, entry.ID); err != nil {
					logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry published")
				}
				metrics.OutboxEntriesRelayed.WithLabelValues("published").Inc()
			}
			return nil
		})
		if err != nil {
			logger.Error().Err(err).Msg("Outbox relay error")
		}
		metrics.WorkerProcessingDuration.WithLabelValues(infraRedis.EventStream).Observe(time.Since(start).Seconds())
	}
}
