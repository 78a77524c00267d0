package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/storage"
	"expensetracker/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateWorkerConfig(applog.ComponentWorker)

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	ctx = applog.NewContext(ctx, logger)

	logger.Info("Starting expense-worker")

	mirror, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	client, err := amqp.NewClient(ctx, amqp.Config{
		URL:             cfg.AMQPURL,
		Exchange:        cfg.AMQPExchange,
		Queue:           cfg.AMQPQueue,
		ConnectAttempts: uint(cfg.AMQPConnectAttempts),
	})
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	w := worker.NewSyncWorker(mirror, store)

	g, gctx := errgroup.WithContext(ctx)
	if store != nil {
		g.Go(func() error {
			logger.Info("Performing startup reconcile")
			if err := w.Reconcile(gctx); err != nil && gctx.Err() == nil {
				logger.Error("Startup reconcile failed", "error", err)
			}
			if cfg.ReconcileInterval <= 0 {
				return nil
			}
			return w.RunReconcileLoop(gctx, cfg.ReconcileInterval)
		})
	}
	g.Go(func() error {
		err := client.ConsumeExpenseEvents(gctx, w.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("consume expense events: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore connects to the record store for reconciliation. A memory
// store belongs to the server process, so it is never opened here; a
// failing store only disables reconciliation.
func openStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (storage.Store, func()) {
	noop := func() {}
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Info("Memory backend selected, reconcile disabled")
		return nil, noop
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Warn("Record store not configured, reconcile disabled", "error", err)
		return nil, noop
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Warn("Record store unavailable, reconcile disabled", "error", err)
		return nil, noop
	}
	return res.Backend, func() {
		if err := res.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}
}
