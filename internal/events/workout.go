// Package events defines event payloads published by the workout service.
package events

import "time"

// WorkoutSummarized is emitted once a sensor package has been summarized and stored.
type WorkoutSummarized struct {
	WorkoutID     string    `json:"workout_id"`
	TenantID      string    `json:"tenant_id"`
	UserID        string    `json:"user_id"`
	WorkoutType   string    `json:"workout_type"`
	Label         string    `json:"label"`
	DurationHours float64   `json:"duration_hours"`
	DistanceKm    float64   `json:"distance_km"`
	SpeedKmh      float64   `json:"speed_kmh"`
	Calories      float64   `json:"calories"`
	RecordedAt    time.Time `json:"recorded_at"`
	Source        string    `json:"source"`
	Version       string    `json:"version"`
}
