package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDRESS", "KAFKA_BROKERS", "SENSOR_TOPIC", "OUTBOX_BATCH_SIZE", "OUTBOX_POLL_INTERVAL", "CONSUMER_RETRY_DELAY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "sensor_packages", cfg.SensorTopic)
	require.Equal(t, 25, cfg.OutboxBatchSize)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, time.Second, cfg.ConsumerRetryDelay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " a:9092, ,b:9092 ")
	t.Setenv("CONSUMER_GROUP", "summaries-test")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("CONSUMER_RETRY_DELAY", "250ms")

	cfg := Load()
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "summaries-test", cfg.ConsumerGroupID)
	require.Equal(t, 50, cfg.OutboxBatchSize)
	require.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	require.Equal(t, 250*time.Millisecond, cfg.ConsumerRetryDelay)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "many")
	t.Setenv("OUTBOX_POLL_INTERVAL", "soon")

	cfg := Load()
	require.Equal(t, 25, cfg.OutboxBatchSize)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
}

func TestLoadFallsBackOnBlankBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	require.Equal(t, []string{"kafka:9092"}, Load().KafkaBrokers)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())

	cfg.OutboxBatchSize = 0
	cfg.ConsumerRetryDelay = -time.Second
	err := cfg.Validate()
	require.ErrorContains(t, err, "OUTBOX_BATCH_SIZE")
	require.ErrorContains(t, err, "CONSUMER_RETRY_DELAY")
}
