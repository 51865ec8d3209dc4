package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maintdesk/cmd"
	"maintdesk/config"
	"maintdesk/infrastructure/persistence/mysql"
	"maintdesk/pkg/logger"

	"go.uber.org/zap"
)

// The worker binary runs the two background loops the API server does not:
// outbox event dispatch and the periodic reconciliation sweep that settles
// in-progress requests once their appointment, reports and invoices are done.
func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := cmd.NewMySQLConfig(cfg).Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	worker, err := mysql.NewOutboxWorker(
		mysql.NewOutboxRepository(db),
		&mysql.LoggingOutboxPublisher{},
		cfg.Worker.OutboxPollInterval,
		cfg.Worker.OutboxBatchSize,
		cfg.Worker.OutboxMaxRetries,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox worker: %w", err)
	}

	services := cmd.BuildServices(db, cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Worker started",
		zap.Duration("outbox_poll_interval", cfg.Worker.OutboxPollInterval),
		zap.Int("outbox_batch_size", cfg.Worker.OutboxBatchSize),
		zap.Int("outbox_max_retries", cfg.Worker.OutboxMaxRetries),
		zap.Duration("reconcile_interval", cfg.Worker.ReconcileInterval),
		zap.Int("reconcile_batch_size", cfg.Worker.ReconcileBatchSize),
	)

	go runReconcileLoop(ctx, services, cfg.Worker)

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("outbox worker exited with error: %w", err)
	}

	logger.Info("Worker stopped")
	_ = logger.Sync()
	return nil
}

// runReconcileLoop periodically advances InProgress requests whose
// settlement conditions are met. A failed sweep is retried on the next tick.
func runReconcileLoop(ctx context.Context, services *cmd.Services, cfg config.WorkerConfig) {
	interval := cfg.ReconcileInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			settled, err := services.Requests.ReconcileInProgress(ctx, cfg.ReconcileBatchSize)
			if err != nil {
				logger.Error("Reconcile sweep failed", zap.Error(err))
				continue
			}
			if settled > 0 {
				logger.Info("Reconcile sweep settled requests", zap.Int("count", settled))
			}
		}
	}
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
