package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"bulletin_sync/internal/config"
	"bulletin_sync/internal/publisher"
	"bulletin_sync/internal/service"
	"bulletin_sync/internal/source/boletim"
	"bulletin_sync/internal/storage/postgres"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "syncer",
	Short:         "Synchronize procurement bulletins into the local store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(discoverFiltersCmd)
	rootCmd.AddCommand(dedupeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds everything the commands share.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sqlx.DB
	publisher *publisher.RabbitMQ

	bulletins *postgres.BulletinStore
	biddings  *postgres.BiddingStore
	ledger    *postgres.LedgerStore
	txManager *postgres.TransactionManager

	orchestrator *service.Orchestrator
}

func newApp(withPublisher bool) (*app, error) {
	logger := setupLogger("info")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		bulletins: postgres.NewBulletinStore(db),
		biddings:  postgres.NewBiddingStore(db),
		ledger:    postgres.NewLedgerStore(db),
		txManager: postgres.NewTransactionManager(db),
	}

	// A nil interface keeps the reconciler from publishing.
	var pub service.Publisher
	if withPublisher && cfg.RabbitMQ.Enabled {
		a.publisher, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		pub = a.publisher
	}

	up := cfg.Upstream
	client := boletim.NewClient(boletim.Config{
		BaseURL:        up.BaseURL,
		Token:          up.Token,
		Timeout:        up.Timeout,
		RequestsPerSec: up.RequestsPerSec,
		Burst:          up.Burst,
		MaxAttempts:    up.Retry.MaxAttempts,
		InitialBackoff: up.Retry.InitialBackoff,
		MaxBackoff:     up.Retry.MaxBackoff,
		Breaker: boletim.BreakerConfig{
			MaxRequests:  up.Breaker.MaxRequests,
			Interval:     up.Breaker.Interval,
			Timeout:      up.Breaker.Timeout,
			MinRequests:  up.Breaker.MinRequests,
			FailureRatio: up.Breaker.FailureRatio,
		},
	}, logger)
	source := boletim.NewSource(client, boletim.NewTransformer(up.DocumentBaseURL), up.MaxPageSize, logger)

	reconciler := service.NewReconciler(a.biddings, postgres.NewFollowUpStore(db), pub, logger)
	a.orchestrator = service.NewOrchestrator(
		source,
		postgres.NewFilterStore(db),
		a.bulletins,
		reconciler,
		a.ledger,
		logger,
		cfg.Sync,
	)

	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", "error", err)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
