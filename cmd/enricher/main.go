package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"talk_enricher/internal/config"
	"talk_enricher/internal/metrics"
	"talk_enricher/internal/pipeline"
	"talk_enricher/internal/publisher"
	"talk_enricher/internal/scheduler"
	"talk_enricher/internal/service"
	"talk_enricher/internal/source/csvfile"
	"talk_enricher/internal/storage/mongodb"
	"talk_enricher/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single enrichment and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, *once, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("enricher stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, once bool, logger *slog.Logger) error {
	var (
		db        *sqlx.DB
		runState  service.RunStateStore
		txManager service.TransactionManager
		pub       service.Publisher
		recorder  service.MetricsRecorder
	)

	if cfg.Database.Enabled() {
		var err error
		db, err = sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("connected to database")

		runState = postgres.NewRunStateStore(db)
		txManager = postgres.NewTransactionManager(db)
	}

	source, err := newSource(cfg, db, logger)
	if err != nil {
		return err
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	sink, err := mongodb.Connect(connectCtx, mongodb.Config{
		URI:           cfg.Mongo.URI,
		Database:      cfg.Mongo.Database,
		Collection:    cfg.Mongo.Collection,
		BatchSize:     cfg.Mongo.BatchSize,
		Transactional: cfg.Mongo.Transactional,
	}, logger)
	cancelConnect()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = sink.Close(closeCtx)
	}()

	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	if cfg.Metrics.Addr != "" {
		m := metrics.New(prometheus.NewRegistry())
		shutdown := m.StartServer(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
		recorder = m
	}

	enricher := pipeline.New(pipeline.Options{
		DropNullIDs:       cfg.Pipeline.DropNullIDs,
		StrictCardinality: cfg.Pipeline.StrictCardinality,
		SortLists:         cfg.Pipeline.SortLists,
		Partitions:        cfg.Pipeline.Partitions,
	}, logger)

	enrichService := service.NewEnrichService(
		source,
		enricher,
		sink,
		runState,
		txManager,
		pub,
		recorder,
		logger,
	)

	logger.Info("starting talk enricher",
		"source", source.Name(),
		"once", once,
		"interval", cfg.Schedule.Interval,
		"partitions", cfg.Pipeline.Partitions,
	)

	if once {
		runCtx, cancel := context.WithTimeout(ctx, cfg.Schedule.Timeout)
		defer cancel()
		_, err := enrichService.Run(runCtx)
		return err
	}

	sched := scheduler.NewScheduler(enrichService, cfg.Schedule.Interval, cfg.Schedule.Timeout, logger)
	return sched.Start(ctx)
}

func newSource(cfg *config.Config, db *sqlx.DB, logger *slog.Logger) (service.Source, error) {
	switch cfg.Source.Kind {
	case config.SourcePostgres:
		if db == nil {
			return nil, errors.New("postgres source requires a database")
		}
		return postgres.NewSource(postgres.NewTalkStore(db), postgres.NewTransactionManager(db)), nil
	default:
		csv := cfg.Source.CSV
		return csvfile.New(csvfile.Config{
			BasePath: csv.BasePath,
			Files: csvfile.Files{
				Talks:   csv.Files.Talks,
				Details: csv.Files.Details,
				Tags:    csv.Files.Tags,
				Images:  csv.Files.Images,
				Related: csv.Files.Related,
			},
			Timeout:        csv.Timeout,
			MaxAttempts:    csv.Retry.MaxAttempts,
			InitialBackoff: csv.Retry.InitialBackoff,
			MaxBackoff:     csv.Retry.MaxBackoff,
		}, logger), nil
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
