package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roombook/internal/bootstrap"
	"roombook/internal/events"
	"roombook/internal/reservations/service"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	"roombook/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	JobName = "availability-worker"

	statsInterval = time.Minute
)

func main() {
	cfg := config.Load(JobName)
	cfg.Log.Info("Starting availability worker",
		"topic", cfg.EventsTopic,
		"group", cfg.ConsumerGroup,
		"sweep_interval", cfg.AvailabilitySweepInterval,
	)

	// in-process locks and stores would not be shared with the API servers
	if cfg.LockBackend == config.LockMemory || cfg.StoreBackend == config.StoreMemory {
		cfg.Log.Fatal("Availability worker requires shared store and lock backends",
			"store_backend", cfg.StoreBackend,
			"lock_backend", cfg.LockBackend,
		)
	}

	bootstrap.Connect(cfg)
	components, err := bootstrap.Build(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}
	defer cfg.GracefulShutdown()
	defer func() {
		if err := components.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka clients", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sweep(ctx, components.Engine, cfg.AvailabilitySweepInterval, cfg.Log)
	})

	if cfg.EventsEnabled {
		consumer, err := components.NewConsumer(cfg, refreshHandler(components.Engine, cfg.Log))
		if err != nil {
			cfg.Log.Fatal("Failed to create consumer", "error", err)
		}
		g.Go(func() error {
			return consumer.Start(ctx)
		})
		g.Go(func() error {
			return reportStats(ctx, components, consumer, cfg.Log)
		})
	} else {
		cfg.Log.Info("Events disabled, running periodic sweep only")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Availability worker stopped with error", "error", err)
		return
	}
	cfg.Log.Info("Availability worker stopped")
}

// refreshHandler recomputes availability for every room an event touches.
func refreshHandler(engine service.BookingService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := events.Decode(msg)
		if err != nil {
			return err
		}

		for _, roomID := range event.RoomIDs() {
			available, err := engine.RefreshAvailability(ctx, roomID)
			if err != nil {
				return err
			}
			log.Debug("Room availability refreshed",
				"event_type", event.Type,
				"room_id", roomID,
				"available", available,
			)
		}
		return nil
	}
}

// sweep recomputes every room once at start and then on each tick, so
// availability rolls over at day boundaries without any write traffic.
func sweep(ctx context.Context, engine service.BookingService, interval time.Duration, log *logger.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		changed, err := engine.RefreshAll(ctx)
		if err != nil {
			log.Warn("Availability sweep finished with errors", "changed", changed, "error", err)
		} else {
			log.Info("Availability sweep complete", "changed", changed)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func reportStats(ctx context.Context, components *bootstrap.Components, consumer *kafka.Consumer, log *logger.Logger) error {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snapshot := components.KafkaMetrics.Snapshot()
			log.Info("Consumer stats",
				"lag", consumer.Lag(),
				"metrics", snapshot,
			)
		}
	}
}
