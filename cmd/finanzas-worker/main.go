package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	"finanzas/internal/sheets"
	gsheet "finanzas/internal/sheets/google"
	mem "finanzas/internal/sheets/memory"
	"finanzas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting finanzas-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	var mirror sheets.Mirror
	switch cfg.MirrorBackend {
	case "google":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		mirror = mem.New()
		logger.Info("In-memory mirror initialized")
	default:
		logger.Info("No mirror backend configured, nothing to do")
		os.Exit(0)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(store, mirror, cfg.SyncBatchSize)

	// catch up on rows that changed while the worker was down
	logger.Info("Performing startup sync check")
	if n, err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	} else if n > 0 {
		logger.Info("Startup sync check complete", "synced", n)
	}

	go func() {
		err := amqpClient.Consume(ctx, func(msg *amqp.TransactionMessage) error {
			return syncWorker.HandleMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			slog.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	// periodic sweep for rows missed by the queue
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := store.RetryErrored(ctx); err != nil {
					slog.Error("Requeue of errored rows failed", "error", err)
				} else if n > 0 {
					slog.Info("Requeued errored rows for retry", "count", n)
				}
				if _, err := syncWorker.ProcessPending(ctx); err != nil {
					slog.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)
	select {
	case <-ctx.Done():
		logger.Info("Worker context cancelled")
	case <-shutdownCtx.Done():
		<-done
	}
	logger.Info("Worker stopped gracefully")
}
