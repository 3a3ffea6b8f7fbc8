package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults should be valid, got: %v", err)
	}
	if len(cfg.Brokers) != 1 || cfg.Brokers[0] != DefaultKafkaBrokers {
		t.Errorf("expected default broker, got %v", cfg.Brokers)
	}
	if cfg.ConsumerRetryBackoff != DefaultConsumerRetryBackoff {
		t.Errorf("expected default retry backoff, got %s", cfg.ConsumerRetryBackoff)
	}
	if !cfg.LogMessages {
		t.Error("expected message logging to default on")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaProducerCompression, "ZSTD")
	t.Setenv(EnvKafkaConsumerRetryBackoff, "250ms")
	t.Setenv(EnvKafkaLogMessages, "false")
	t.Setenv(EnvKafkaConsumerMaxRetries, "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("expected two trimmed brokers, got %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "zstd" {
		t.Errorf("expected compression to be lowercased, got %q", cfg.ProducerCompression)
	}
	if cfg.ConsumerRetryBackoff != 250*time.Millisecond {
		t.Errorf("expected 250ms retry backoff, got %s", cfg.ConsumerRetryBackoff)
	}
	if cfg.LogMessages {
		t.Error("expected message logging to be disabled")
	}
	if cfg.ConsumerMaxRetries != DefaultConsumerMaxRetries {
		t.Errorf("malformed value should fall back to default, got %d", cfg.ConsumerMaxRetries)
	}
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Brokers = nil
	cfg.ProducerCompression = "brotli"
	cfg.ConsumerStartOffset = 42
	cfg.ConsumerHeartbeatInterval = time.Minute

	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"At least one Kafka broker",
		"ProducerCompression must be one of",
		"ConsumerStartOffset must be",
		"ConsumerHeartbeatInterval",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got: %v", want, err)
		}
	}
}
