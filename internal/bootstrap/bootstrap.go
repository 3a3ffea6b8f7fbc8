// Package bootstrap assembles stores, locks, event publishing and services
// from configuration. It is shared by the API server and the worker.
package bootstrap

import (
	"fmt"

	"roombook/internal/events"
	"roombook/internal/locking"
	reservationrepository "roombook/internal/reservations/repository"
	reservationservice "roombook/internal/reservations/service"
	reservationvalidator "roombook/internal/reservations/validator"
	roomrepository "roombook/internal/rooms/repository"
	roomservice "roombook/internal/rooms/service"
	roomvalidator "roombook/internal/rooms/validator"
	"roombook/pkg/config"
	"roombook/pkg/kafka"
	kafka_config "roombook/pkg/kafka/config"
	kafka_middleware "roombook/pkg/kafka/middleware"
)

type Components struct {
	Rooms        roomrepository.RoomRepository
	Reservations reservationrepository.ReservationRepository
	Guard        *locking.Guard

	Engine      reservationservice.BookingService
	Queries     reservationservice.ReservationQueries
	RoomService roomservice.RoomService

	KafkaConfig  *kafka_config.Config
	KafkaMetrics *kafka_middleware.Metrics

	closers []func() error
}

// Connect opens the connections the configured backends need.
func Connect(cfg *config.Config) {
	if cfg.StoreBackend == config.StoreMongo || cfg.LockBackend == config.LockMongo {
		cfg.SetMongo()
	}
	if cfg.LockBackend == config.LockRedis {
		cfg.SetRedis()
	}
}

func Build(cfg *config.Config) (*Components, error) {
	c := &Components{}

	switch cfg.StoreBackend {
	case config.StoreMongo:
		c.Rooms = roomrepository.NewMongoRoomRepository(cfg)
		c.Reservations = reservationrepository.NewMongoReservationRepository(cfg)
	case config.StoreMemory:
		c.Rooms = roomrepository.NewMemoryRoomRepository()
		c.Reservations = reservationrepository.NewMemoryReservationRepository()
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}

	locker, err := newLocker(cfg)
	if err != nil {
		return nil, err
	}
	c.Guard = locking.NewGuard(locker, cfg.LockWaitTimeout, cfg.Log)

	publisher, err := c.newPublisher(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Engine = reservationservice.NewBookingEngine(
		c.Reservations,
		c.Rooms,
		c.Guard,
		reservationvalidator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)
	c.Queries = reservationservice.NewReservationQueries(c.Reservations, cfg)
	c.RoomService = roomservice.NewRoomService(
		c.Rooms,
		c.Reservations,
		c.Guard,
		roomvalidator.NewRoomValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Services initialized",
		"store_backend", cfg.StoreBackend,
		"lock_backend", cfg.LockBackend,
		"events_enabled", cfg.EventsEnabled,
	)
	return c, nil
}

func newLocker(cfg *config.Config) (locking.Locker, error) {
	switch cfg.LockBackend {
	case config.LockMemory:
		return locking.NewMemoryLocker(), nil
	case config.LockMongo:
		db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
		return locking.NewMongoLocker(db, cfg.LockTTL, cfg.LockRetryInterval), nil
	case config.LockRedis:
		return locking.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL, cfg.LockRetryInterval), nil
	}
	return nil, fmt.Errorf("unknown lock backend: %s", cfg.LockBackend)
}

func (c *Components) newPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.EventsEnabled {
		return events.NewNoopPublisher(), nil
	}

	kcfg, err := c.kafkaConfig(cfg)
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(kcfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	if kcfg.LogMessages {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	producer.Use(c.KafkaMetrics.ProducerMiddleware())
	c.closers = append(c.closers, producer.Close)

	return events.BestEffort(events.NewKafkaPublisher(producer), cfg.Log), nil
}

// NewConsumer builds a consumer on the events topic with the shared
// metrics middleware, plus message logging when enabled.
func (c *Components) NewConsumer(cfg *config.Config, handler kafka.MessageHandler) (*kafka.Consumer, error) {
	kcfg, err := c.kafkaConfig(cfg)
	if err != nil {
		return nil, err
	}

	consumer, err := kafka.NewConsumer(kcfg, cfg.EventsTopic, cfg.ConsumerGroup, cfg.EventsDLQTopic, handler, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	if kcfg.LogMessages {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	consumer.Use(c.KafkaMetrics.ConsumerMiddleware())
	c.closers = append(c.closers, consumer.Close)
	return consumer, nil
}

func (c *Components) kafkaConfig(cfg *config.Config) (*kafka_config.Config, error) {
	if c.KafkaConfig != nil {
		return c.KafkaConfig, nil
	}

	kcfg, err := kafka_config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid kafka configuration: %w", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	c.KafkaConfig = kcfg
	c.KafkaMetrics = kafka_middleware.NewMetrics()
	return kcfg, nil
}

// Close releases Kafka clients in reverse creation order.
func (c *Components) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
