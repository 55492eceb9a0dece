// Package outbox relays workout events, written in the same transaction as the
// summaries they describe, to Kafka.
package outbox

import (
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
)

// ErrUnknownEventType is returned for outbox rows whose event type has no schema.
var ErrUnknownEventType = errors.New("no schema registered for event type")

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// Event is one claimed outbox row. Field order matches claimQuery's RETURNING list.
type Event struct {
	EventID       int64
	TenantID      string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	SchemaSubject string
	PartitionKey  string
	Payload       json.RawMessage
}

// Option configures optional behaviour for the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger used to report relay failures.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithClaimLease sets how long a claimed but unsettled row stays invisible to
// other dispatchers. After the lease it is claimed again.
func WithClaimLease(lease time.Duration) Option {
	return func(d *Dispatcher) {
		if lease > 0 {
			d.lease = lease
		}
	}
}

// Dispatcher polls the outbox table and relays events to Kafka, framed with the
// schema registry id of their subject. Every claimed row is settled exactly once:
// published, or copied to outbox_dlq and marked published. Nothing is retried.
type Dispatcher struct {
	pool     *pgxpool.Pool
	producer messageWriter
	registry schemaRegistrar
	logger   *log.Logger
	interval time.Duration
	limit    int
	lease    time.Duration

	mu        sync.Mutex
	schemaIDs map[string]int

	done chan struct{}
}

// NewDispatcher constructs a Dispatcher that claims up to limit rows every interval.
func NewDispatcher(pool *pgxpool.Pool, producer messageWriter, registry schemaRegistrar, interval time.Duration, limit int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool:      pool,
		producer:  producer,
		registry:  registry,
		logger:    log.New(log.Writer(), "[outbox] ", log.LstdFlags|log.Lshortfile),
		interval:  interval,
		limit:     limit,
		lease:     5 * time.Minute,
		schemaIDs: make(map[string]int),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start relays batches until ctx is cancelled. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	defer close(d.done)

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := d.relay(ctx); err != nil && ctx.Err() == nil {
			d.logger.Printf("relay error: %v", err)
		}
		timer.Reset(d.interval)
	}
}

// Wait blocks until Start has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

// relay claims one batch, sends it and settles it.
func (d *Dispatcher) relay(ctx context.Context) error {
	events, err := d.claim(ctx)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	start := time.Now()
	sendErr := d.send(ctx, events)
	if sendErr != nil {
		d.logger.Printf("batch of %d events is undeliverable, moving to dlq: %v", len(events), sendErr)
	}
	if err := d.settle(ctx, events, sendErr); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	observeBatch(events, sendErr, time.Since(start))
	return nil
}

const claimQuery = `
UPDATE outbox SET claimed_at = NOW()
WHERE event_id IN (
    SELECT event_id FROM outbox
    WHERE published_at IS NULL
      AND (claimed_at IS NULL OR claimed_at < NOW() - make_interval(secs => $2))
    ORDER BY event_id
    LIMIT $1
    FOR UPDATE SKIP LOCKED)
RETURNING event_id, tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload`

func (d *Dispatcher) claim(ctx context.Context) ([]Event, error) {
	rows, err := d.pool.Query(ctx, claimQuery, d.limit, d.lease.Seconds())
	if err != nil {
		return nil, err
	}
	events, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Event])
	if err != nil {
		return nil, err
	}
	// RETURNING order is unspecified.
	slices.SortFunc(events, func(a, b Event) int { return cmp.Compare(a.EventID, b.EventID) })
	return events, nil
}

// send writes events to their topics, one WriteMessages call per topic in order
// of first appearance. Any failure fails the whole batch.
func (d *Dispatcher) send(ctx context.Context, events []Event) error {
	var topics []string
	byTopic := make(map[string][]kafka.Message)
	for _, ev := range events {
		msg, err := d.encode(ctx, ev)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.EventID, err)
		}
		if _, seen := byTopic[ev.Topic]; !seen {
			topics = append(topics, ev.Topic)
		}
		byTopic[ev.Topic] = append(byTopic[ev.Topic], msg)
	}

	for _, topic := range topics {
		if err := d.producer.WriteMessages(ctx, topic, byTopic[topic]...); err != nil {
			return fmt.Errorf("write %s: %w", topic, err)
		}
	}
	return nil
}

func (d *Dispatcher) encode(ctx context.Context, ev Event) (kafka.Message, error) {
	schema, ok := schemas[ev.EventType]
	if !ok {
		return kafka.Message{}, fmt.Errorf("%w: %s", ErrUnknownEventType, ev.EventType)
	}
	id, err := d.registeredID(ctx, ev.SchemaSubject, schema)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.PartitionKey),
		Value: frame(id, ev.Payload),
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
			{Key: "tenant_id", Value: []byte(ev.TenantID)},
			{Key: "schema_subject", Value: []byte(ev.SchemaSubject)},
		},
	}, nil
}

// registeredID returns the registry id for schema under subject, asking the
// registry once per subject and schema for the life of the Dispatcher.
func (d *Dispatcher) registeredID(ctx context.Context, subject, schema string) (int, error) {
	key := subject + "\x00" + schema

	d.mu.Lock()
	id, ok := d.schemaIDs[key]
	d.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := d.registry.EnsureSchema(ctx, subject, schema)
	if err != nil {
		return 0, fmt.Errorf("register %s: %w", subject, err)
	}
	d.mu.Lock()
	d.schemaIDs[key] = id
	d.mu.Unlock()
	return id, nil
}

// settle marks the batch published and, when cause is set, records each event
// in outbox_dlq. Both happen in one transaction.
func (d *Dispatcher) settle(ctx context.Context, events []Event, cause error) error {
	ids := make([]int64, len(events))
	for i, ev := range events {
		ids[i] = ev.EventID
	}

	return pgx.BeginFunc(ctx, d.pool, func(tx pgx.Tx) error {
		if cause != nil {
			if err := deadLetter(ctx, tx, events, cause.Error()); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE event_id = ANY($1)`, ids)
		return err
	})
}

// frame prefixes payload with the Confluent wire header: a zero magic byte and
// the big-endian schema id.
func frame(schemaID int, payload []byte) []byte {
	out := make([]byte, 0, 5+len(payload))
	out = append(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(schemaID))
	return append(out, payload...)
}
