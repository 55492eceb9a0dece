// Package domain defines the business logic for the workout summary service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/fitsummary/internal/observability"
	"example.com/fitsummary/internal/training"
)

var (
	// ErrWorkoutNotFound is returned when a workout cannot be located.
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrMissingUser is returned when a package carries no user id.
	ErrMissingUser = errors.New("user_id is required")
)

// WorkoutRepository captures persistence operations.
type WorkoutRepository interface {
	FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*WorkoutRecord, error)
	Create(ctx context.Context, record WorkoutRecord, idempotencyKey string) error
	Get(ctx context.Context, tenantID, workoutID string) (*WorkoutRecord, error)
	ListByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]WorkoutRecord, *Cursor, error)
	TotalsByUser(ctx context.Context, tenantID, userID string) ([]ActivityTotals, error)
}

// Service orchestrates workout workflows.
type Service struct {
	repo WorkoutRepository
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo WorkoutRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordWorkoutInput is a sensor package plus the caller identity.
type RecordWorkoutInput struct {
	TenantID       string
	UserID         string
	WorkoutType    string
	Data           []float64
	RecordedAt     time.Time
	Source         string
	IdempotencyKey string
}

// RecordWorkout computes the summary for a sensor package and persists it.
// Errors from training.Resolve and Summary.Validate are returned unchanged so
// callers can match them.
func (s *Service) RecordWorkout(ctx context.Context, input RecordWorkoutInput) (*WorkoutRecord, bool, error) {
	if input.UserID == "" {
		return nil, false, ErrMissingUser
	}
	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotency(ctx, input.TenantID, input.UserID, input.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	workout, err := training.Resolve(input.WorkoutType, input.Data)
	if err != nil {
		observability.RecordRejected(err)
		return nil, false, err
	}
	summary := training.Summarize(workout)
	if err := summary.Validate(); err != nil {
		observability.RecordRejected(err)
		return nil, false, err
	}

	now := s.now().UTC()
	recordedAt := input.RecordedAt.UTC()
	if input.RecordedAt.IsZero() {
		recordedAt = now
	}

	record := WorkoutRecord{
		ID:           uuid.NewString(),
		TenantID:     input.TenantID,
		UserID:       input.UserID,
		ActivityType: workout.Activity(),
		Params:       append([]float64(nil), input.Data...),
		Summary:      summary,
		Source:       input.Source,
		Version:      "v1",
		RecordedAt:   recordedAt,
		CreatedAt:    now,
	}

	if err := s.repo.Create(ctx, record, input.IdempotencyKey); err != nil {
		return nil, false, fmt.Errorf("store workout: %w", err)
	}
	observability.RecordSummarized(summary)

	return &record, false, nil
}

// GetWorkout fetches by ID.
func (s *Service) GetWorkout(ctx context.Context, tenantID, workoutID string) (*WorkoutRecord, error) {
	record, err := s.repo.Get(ctx, tenantID, workoutID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrWorkoutNotFound
	}
	return record, nil
}

// ListWorkoutsByUser fetches workouts with cursor pagination.
func (s *Service) ListWorkoutsByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]WorkoutRecord, *Cursor, error) {
	return s.repo.ListByUser(ctx, tenantID, userID, cursor, limit)
}

// Totals returns per-activity aggregates for a user in activity code order.
func (s *Service) Totals(ctx context.Context, tenantID, userID string) ([]ActivityTotals, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	rows, err := s.repo.TotalsByUser(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[training.Activity]ActivityTotals, len(rows))
	for _, row := range rows {
		byType[row.ActivityType] = row
	}
	out := make([]ActivityTotals, 0, len(training.Activities))
	for _, a := range training.Activities {
		if row, ok := byType[a]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}
