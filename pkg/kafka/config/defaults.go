package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	// Booking events are small JSON documents keyed by room id; all replicas
	// must ack so an accepted booking's event is not lost on leader failover.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// A new availability-worker group starts at the newest offset; the
	// periodic sweep covers anything published before it joined.
	DefaultConsumerStartOffset       = -1
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 30 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 100 * time.Millisecond
	DefaultConsumerFetchBackoff      = time.Second

	DefaultLogMessages = true
)
