// Package training turns raw sensor readings into workout summaries.
package training

const (
	// LenStep is the distance in meters covered by one step on land.
	LenStep = 0.65
	// SwimLenStep is the distance in meters covered by one swimming stroke.
	SwimLenStep = 1.38

	metersInKm    = 1000
	minutesInHour = 60
)

// Workout is implemented by Running, RaceWalking and Swimming only.
type Workout interface {
	Activity() Activity
	DurationHours() float64
	DistanceKm() float64
	MeanSpeedKmh() float64
	SpentCalories() float64

	workout()
}

// base holds the readings shared by every activity. It has no calorie formula
// and never satisfies Workout on its own.
type base struct {
	action   int
	duration float64
	weight   float64
	lenStep  float64
}

func (b base) DurationHours() float64 { return b.duration }

// DistanceKm returns action * lenStep / 1000.
func (b base) DistanceKm() float64 {
	return float64(b.action) * b.lenStep / metersInKm
}

// MeanSpeedKmh returns distance over duration.
func (b base) MeanSpeedKmh() float64 {
	return b.DistanceKm() / b.duration
}

func (base) workout() {}

// Summarize assembles the immutable summary of w.
func Summarize(w Workout) Summary {
	return Summary{
		Activity:      w.Activity(),
		Label:         w.Activity().Label(),
		DurationHours: w.DurationHours(),
		DistanceKm:    w.DistanceKm(),
		SpeedKmh:      w.MeanSpeedKmh(),
		Calories:      w.SpentCalories(),
	}
}
