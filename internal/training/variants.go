package training

import "math"

const (
	runCaloriesSpeedMultiplier = 18
	runCaloriesSpeedShift      = 20

	walkCaloriesWeightMultiplier = 0.035
	walkCaloriesSpeedMultiplier  = 0.029

	swimCaloriesSpeedShift       = 1.1
	swimCaloriesWeightMultiplier = 2
)

// Running is a workout measured in steps.
type Running struct {
	base
}

// NewRunning builds a Running workout.
func NewRunning(action int, duration, weight float64) Running {
	return Running{base: base{action: action, duration: duration, weight: weight, lenStep: LenStep}}
}

func (Running) Activity() Activity { return ActivityRunning }

func (r Running) SpentCalories() float64 {
	return (runCaloriesSpeedMultiplier*r.MeanSpeedKmh() - runCaloriesSpeedShift) *
		r.weight / metersInKm * r.duration * minutesInHour
}

// RaceWalking is a workout measured in steps that also takes the athlete height.
type RaceWalking struct {
	base
	height float64
}

// NewRaceWalking builds a RaceWalking workout. height is in centimeters.
func NewRaceWalking(action int, duration, weight, height float64) RaceWalking {
	return RaceWalking{
		base:   base{action: action, duration: duration, weight: weight, lenStep: LenStep},
		height: height,
	}
}

func (RaceWalking) Activity() Activity { return ActivityRaceWalking }

// HeightCm returns the athlete height.
func (w RaceWalking) HeightCm() float64 { return w.height }

// SpentCalories floors speed²/height before applying the multiplier.
func (w RaceWalking) SpentCalories() float64 {
	speed := w.MeanSpeedKmh()
	return (walkCaloriesWeightMultiplier*w.weight +
		math.Floor(speed*speed/w.height)*walkCaloriesSpeedMultiplier*w.weight) *
		w.duration * minutesInHour
}

// Swimming is a workout measured in strokes, with speed derived from the pool.
type Swimming struct {
	base
	poolLength int
	poolCount  int
}

// NewSwimming builds a Swimming workout. poolLength is in meters.
func NewSwimming(action int, duration, weight float64, poolLength, poolCount int) Swimming {
	return Swimming{
		base:       base{action: action, duration: duration, weight: weight, lenStep: SwimLenStep},
		poolLength: poolLength,
		poolCount:  poolCount,
	}
}

func (Swimming) Activity() Activity { return ActivitySwimming }

// PoolLengthMeters returns the length of one pool lap.
func (s Swimming) PoolLengthMeters() int { return s.poolLength }

// PoolCount returns the number of laps swum.
func (s Swimming) PoolCount() int { return s.poolCount }

// MeanSpeedKmh ignores the stroke count and uses pool geometry.
func (s Swimming) MeanSpeedKmh() float64 {
	return float64(s.poolLength) * float64(s.poolCount) / metersInKm / s.duration
}

func (s Swimming) SpentCalories() float64 {
	return (s.MeanSpeedKmh() + swimCaloriesSpeedShift) * swimCaloriesWeightMultiplier * s.weight
}
