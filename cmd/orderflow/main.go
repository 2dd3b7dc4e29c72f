package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/checkout"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger/memory"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/ledger/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/notify"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/outbox"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/returns"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/orderflow/internal/snapshot"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("orderflow stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("orderflow gracefully stopped")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	var producer kafka.Producer
	if cfg.Kafka.Console {
		producer = kafka.NewConsoleProducer(log)
	} else {
		producer = kafka.NewWriterProducer(cfg.Kafka.Brokers, log)
	}

	var (
		store     ledger.Store
		publisher notify.Publisher = producer
		relay     *kafka.Publisher
	)
	switch cfg.Ledger {
	case "memory":
		store = memory.New()
	default:
		database, err := db.NewDb(ctx, cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = postgresql.New(database)

		if cfg.UseOutbox {
			tasks := outbox.NewTaskRepo()
			publisher = outbox.NewStager(database, tasks)
			relay = kafka.NewPublisher(database, tasks, producer, kafka.PublisherConfig{
				PollInterval: cfg.Kafka.PollInterval,
				BatchSize:    cfg.Kafka.BatchSize,
				MaxAttempts:  cfg.Kafka.MaxAttempts,
			}, log)
		}
	}
	log.Info("ledger ready", zap.String("backend", cfg.Ledger), zap.Bool("outbox", relay != nil))

	pool := notify.NewPool(cfg.NotifyWorkers, cfg.NotifyQueue, 5*time.Second, log)
	pool.Start()
	notifier := notify.NewNotifier(pool, publisher, cfg.Kafka.Topic)

	state := cache.NewState(snapshot.NewFileStore(cfg.SnapshotPath), log)
	if err := state.Hydrate(); err != nil {
		// a bad snapshot only costs the warm start
		log.Warn("failed to hydrate order cache", zap.String("path", cfg.SnapshotPath), zap.Error(err))
	}

	orders := cache.NewService(state, store, notifier, log)
	rets := returns.NewService(store, state, notifier, cfg.ReturnWindowDays, log)
	srv := server.New(checkout.New(store, notifier, log), orders, rets, log)
	srv.SetDefaultShippingFee(cfg.ShippingFee)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(cfg.HTTPPort)
	})
	if relay != nil {
		g.Go(func() error {
			relay.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		err := srv.Shutdown(shutdownCtx)
		pool.Shutdown(shutdownCtx)
		if relay != nil {
			relay.Shutdown(shutdownCtx)
		} else if cerr := producer.Close(); cerr != nil {
			log.Error("failed to close producer", zap.Error(cerr))
		}
		return err
	})

	return g.Wait()
}
