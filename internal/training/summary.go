package training

import (
	"fmt"
	"math"
)

// Summary is the computed result of one workout.
type Summary struct {
	Activity      Activity `json:"activity" yaml:"activity"`
	Label         string   `json:"label" yaml:"label"`
	DurationHours float64  `json:"duration_hours" yaml:"duration_hours"`
	DistanceKm    float64  `json:"distance_km" yaml:"distance_km"`
	SpeedKmh      float64  `json:"speed_kmh" yaml:"speed_kmh"`
	Calories      float64  `json:"calories" yaml:"calories"`
}

// Validate reports ErrInvalidParameter when a reading pushed a figure out of
// float range, e.g. a duration so small that speed overflows to +Inf.
func (s Summary) Validate() error {
	figures := []struct {
		name  string
		value float64
	}{
		{"distance", s.DistanceKm},
		{"speed", s.SpeedKmh},
		{"calories", s.Calories},
	}
	for _, f := range figures {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s %s is not finite (%v)", ErrInvalidParameter, s.Activity, f.name, f.value)
		}
	}
	return nil
}
