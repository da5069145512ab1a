package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	apphttp "finanzas/internal/http"
	"finanzas/internal/i18n"
	"finanzas/internal/repository"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting finanzas server")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	// AMQP is optional; without it writes stay local-only
	var pub repository.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, mirror sync disabled", "error", err)
		} else {
			defer amqpClient.Close()
			pub = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	transactions := repository.NewTransactions(store, pub)
	categories := repository.NewCategories(store)

	// warm both mirrors before accepting traffic
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer warmCancel()
	g, gctx := errgroup.WithContext(warmCtx)
	g.Go(func() error { return transactions.Refresh(gctx) })
	g.Go(func() error { return categories.Refresh(gctx) })
	if err := g.Wait(); err != nil {
		logger.Error("Failed to warm repositories", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(cfg.Addr(), transactions, categories, i18n.Get(cfg.Locale))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Listening", "addr", cfg.Addr(), "locale", cfg.Locale)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
