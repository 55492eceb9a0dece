package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/fitsummary/internal/domain"
	"example.com/fitsummary/internal/events"
	"example.com/fitsummary/internal/observability"
	"example.com/fitsummary/internal/training"
)

const defaultListLimit = 20

const selectColumns = `workout_id, tenant_id, user_id, workout_type, params, label, duration_hours, distance_km, speed_kmh, calories, source, version, recorded_at, created_at`

// Repository provides Postgres-backed persistence for workout summaries and outbox events.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByIdempotency checks if a workout already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.WorkoutRecord, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + selectColumns + `
        FROM workout_summaries WHERE tenant_id=$1 AND user_id=$2 AND idempotency_key=$3`

	var record *domain.WorkoutRecord
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		found, err := scanRecord(tx.QueryRow(ctx, query, tenantID, userID, idempotencyKey))
		record = found
		return err
	})
	return record, err
}

// Create persists the record and its outbox event inside a single transaction.
func (r *Repository) Create(ctx context.Context, record domain.WorkoutRecord, idempotencyKey string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", record.TenantID); err != nil {
		return err
	}

	insertWorkout := `INSERT INTO workout_summaries (workout_id, tenant_id, user_id, workout_type, params, label, duration_hours, distance_km, speed_kmh, calories, source, idempotency_key, version, recorded_at, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`

	s := record.Summary
	_, err = tx.Exec(ctx, insertWorkout,
		record.ID,
		record.TenantID,
		record.UserID,
		string(record.ActivityType),
		record.Params,
		s.Label,
		s.DurationHours,
		s.DistanceKm,
		s.SpeedKmh,
		s.Calories,
		record.Source,
		nullIfEmpty(idempotencyKey),
		record.Version,
		record.RecordedAt,
		record.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, record, "workout.summarized", events.WorkoutSummarized{
		WorkoutID:     record.ID,
		TenantID:      record.TenantID,
		UserID:        record.UserID,
		WorkoutType:   string(record.ActivityType),
		Label:         s.Label,
		DurationHours: s.DurationHours,
		DistanceKm:    s.DistanceKm,
		SpeedKmh:      s.SpeedKmh,
		Calories:      s.Calories,
		RecordedAt:    record.RecordedAt,
		Source:        record.Source,
		Version:       record.Version,
	}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(record.CreatedAt)
	return nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, record domain.WorkoutRecord, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	partitionKey := meta.PartitionKeyFn(record)
	dedupeKey := fmt.Sprintf("%s:%s", record.ID, eventType)

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		record.TenantID,
		"workout",
		record.ID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// Get retrieves a workout by ID.
func (r *Repository) Get(ctx context.Context, tenantID, workoutID string) (*domain.WorkoutRecord, error) {
	query := `SELECT ` + selectColumns + `
        FROM workout_summaries WHERE tenant_id=$1 AND workout_id=$2`

	var record *domain.WorkoutRecord
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		found, err := scanRecord(tx.QueryRow(ctx, query, tenantID, workoutID))
		record = found
		return err
	})
	return record, err
}

// ListByUser returns workouts for a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutRecord, *domain.Cursor, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	args := []interface{}{tenantID, userID, limit}
	query := `SELECT ` + selectColumns + `
        FROM workout_summaries WHERE tenant_id=$1 AND user_id=$2`

	if cursor != nil {
		query += ` AND (recorded_at, workout_id) < ($4, $5)`
		args = append(args, cursor.RecordedAt, cursor.ID)
	}

	query += ` ORDER BY recorded_at DESC, workout_id DESC LIMIT $3`

	results := make([]domain.WorkoutRecord, 0, limit)
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return err
			}
			results = append(results, *record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{RecordedAt: last.RecordedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// TotalsByUser aggregates a user's workouts per activity code.
func (r *Repository) TotalsByUser(ctx context.Context, tenantID, userID string) ([]domain.ActivityTotals, error) {
	const query = `SELECT workout_type, COUNT(*), COALESCE(SUM(duration_hours), 0), COALESCE(SUM(distance_km), 0), COALESCE(SUM(calories), 0)
        FROM workout_summaries WHERE tenant_id=$1 AND user_id=$2
        GROUP BY workout_type`

	var totals []domain.ActivityTotals
	err := r.withTenant(ctx, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				t           domain.ActivityTotals
				workoutType string
			)
			if err := rows.Scan(&workoutType, &t.Workouts, &t.DurationHours, &t.DistanceKm, &t.Calories); err != nil {
				return err
			}
			t.ActivityType = training.Activity(workoutType)
			totals = append(totals, t)
		}
		return rows.Err()
	})
	return totals, err
}

// withTenant runs fn in a transaction scoped to tenantID by row-level security.
func (r *Repository) withTenant(ctx context.Context, tenantID string, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// scanRecord returns nil without error when the row does not exist.
func scanRecord(row pgx.Row) (*domain.WorkoutRecord, error) {
	var (
		record      domain.WorkoutRecord
		workoutType string
	)
	s := &record.Summary
	err := row.Scan(&record.ID, &record.TenantID, &record.UserID, &workoutType, &record.Params,
		&s.Label, &s.DurationHours, &s.DistanceKm, &s.SpeedKmh, &s.Calories,
		&record.Source, &record.Version, &record.RecordedAt, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.ActivityType = training.Activity(workoutType)
	s.Activity = record.ActivityType
	return &record, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.WorkoutRecord) string
}

var eventCatalog = map[string]EventMetadata{
	"workout.summarized": {
		Topic:         "workout_summaries",
		SchemaSubject: "workout_summaries-value",
		PartitionKeyFn: func(w domain.WorkoutRecord) string {
			return fmt.Sprintf("%s:%s", w.TenantID, w.UserID)
		},
	},
}
