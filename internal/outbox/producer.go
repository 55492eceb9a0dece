package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer publishes framed summary events through one shared writer. The
// destination topic is set per message, so new topics need no extra writer.
type KafkaProducer struct {
	writer *kafka.Writer
}

// ProducerOption configures a KafkaProducer.
type ProducerOption func(*kafka.Writer)

// WithBatchTimeout bounds how long the writer waits to fill a batch.
func WithBatchTimeout(d time.Duration) ProducerOption {
	return func(w *kafka.Writer) {
		if d > 0 {
			w.BatchTimeout = d
		}
	}
}

// NewKafkaProducer creates a KafkaProducer. Keys are hashed so every summary of
// one tenant's workout lands on the same partition.
func NewKafkaProducer(brokers []string, opts ...ProducerOption) *KafkaProducer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: false,
	}
	for _, opt := range opts {
		opt(w)
	}
	return &KafkaProducer{writer: w}
}

// WriteMessages stamps topic onto msgs and writes them synchronously.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	addressed := make([]kafka.Message, len(msgs))
	for i, msg := range msgs {
		msg.Topic = topic
		addressed[i] = msg
	}
	return p.writer.WriteMessages(ctx, addressed...)
}

// Close flushes pending writes and releases connections.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
