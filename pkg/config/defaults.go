package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roombook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStoreBackend      = StoreMongo
	DefaultLockBackend       = LockMongo
	DefaultLockWaitTimeout   = 5 * time.Second
	DefaultLockTTL           = 10 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "reservation-events"
	DefaultEventsDLQTopic = "reservation-events-dlq"
	DefaultConsumerGroup  = "availability-worker"

	DefaultAvailabilitySweepInterval = 1 * time.Hour
	DefaultTimeZone                  = "UTC"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	LockMongo  = "mongo"
	LockRedis  = "redis"
	LockMemory = "memory"
)
