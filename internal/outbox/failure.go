package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const deadLetterInsert = `INSERT INTO outbox_dlq
    (event_id, tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// deadLetter copies undeliverable events into outbox_dlq for manual inspection.
// The inserts are queued on tx as one round trip.
func deadLetter(ctx context.Context, tx pgx.Tx, events []Event, reason string) error {
	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(deadLetterInsert,
			ev.EventID, ev.TenantID, ev.AggregateType, ev.AggregateID, ev.EventType,
			ev.Topic, ev.SchemaSubject, ev.PartitionKey, ev.Payload, reason)
	}
	return tx.SendBatch(ctx, batch).Close()
}
