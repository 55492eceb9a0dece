package domain

import (
	"time"

	"example.com/fitsummary/internal/training"
)

// WorkoutRecord is a computed workout summary stored in PostgreSQL.
type WorkoutRecord struct {
	ID           string
	TenantID     string
	UserID       string
	ActivityType training.Activity
	Params       []float64
	Summary      training.Summary
	Source       string
	Version      string
	RecordedAt   time.Time
	CreatedAt    time.Time
}

// ActivityTotals aggregates a user's workouts of one activity type.
type ActivityTotals struct {
	ActivityType  training.Activity
	Workouts      int
	DurationHours float64
	DistanceKm    float64
	Calories      float64
}

// Cursor models the pagination token.
type Cursor struct {
	RecordedAt time.Time
	ID         string
}
