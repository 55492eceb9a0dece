package outbox

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestKafkaProducerDefaults(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"})
	require.Empty(t, p.writer.Topic)
	require.IsType(t, &kafka.Hash{}, p.writer.Balancer)
	require.Equal(t, kafka.RequireAll, p.writer.RequiredAcks)
	require.Equal(t, 50*time.Millisecond, p.writer.BatchTimeout)
	require.NoError(t, p.Close())
}

func TestKafkaProducerBatchTimeoutOption(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, WithBatchTimeout(5*time.Millisecond), WithBatchTimeout(0))
	require.Equal(t, 5*time.Millisecond, p.writer.BatchTimeout)
	require.NoError(t, p.Close())
}

func TestFramePrefixesSchemaID(t *testing.T) {
	got := frame(258, []byte(`{"a":1}`))
	require.Equal(t, []byte{0, 0, 0, 1, 2}, got[:5])
	require.Equal(t, `{"a":1}`, string(got[5:]))
	require.Len(t, frame(1, nil), 5)
}
