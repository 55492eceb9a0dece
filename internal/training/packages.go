package training

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownActivity is returned for codes outside SWM, RUN and WLK.
	ErrUnknownActivity = errors.New("unknown activity")
	// ErrInvalidParameterCount is returned when the parameter list does not match the activity arity.
	ErrInvalidParameterCount = errors.New("invalid parameter count")
	// ErrInvalidParameter is returned when a parameter is outside its numeric domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Activity is the sensor code of a workout type.
type Activity string

const (
	ActivitySwimming    Activity = "SWM"
	ActivityRunning     Activity = "RUN"
	ActivityRaceWalking Activity = "WLK"
)

// Activities lists every supported code in a stable order.
var Activities = []Activity{ActivitySwimming, ActivityRunning, ActivityRaceWalking}

// ParseActivity validates a raw sensor code. Codes match exactly.
func ParseActivity(code string) (Activity, error) {
	switch a := Activity(code); a {
	case ActivitySwimming, ActivityRunning, ActivityRaceWalking:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, code)
	}
}

// Label is the human-readable activity name.
func (a Activity) Label() string {
	switch a {
	case ActivitySwimming:
		return "Swimming"
	case ActivityRunning:
		return "Running"
	case ActivityRaceWalking:
		return "RaceWalking"
	}
	return string(a)
}

// Arity is the number of positional parameters the activity expects.
func (a Activity) Arity() int {
	switch a {
	case ActivitySwimming:
		return 5
	case ActivityRunning:
		return 3
	case ActivityRaceWalking:
		return 4
	}
	return 0
}

// Fields names the positional parameters in order.
func (a Activity) Fields() []string {
	common := []string{"action", "duration", "weight"}
	switch a {
	case ActivitySwimming:
		return append(common, "pool_length", "pool_count")
	case ActivityRaceWalking:
		return append(common, "height")
	case ActivityRunning:
		return common
	}
	return nil
}

// Resolve builds the workout for a sensor package. Parameters are positional:
// action, duration, weight, then height for WLK or pool length and pool count
// for SWM. Nothing is returned unless every parameter is valid.
func Resolve(code string, params []float64) (Workout, error) {
	activity, err := ParseActivity(code)
	if err != nil {
		return nil, err
	}
	if len(params) != activity.Arity() {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrInvalidParameterCount, activity, activity.Arity(), len(params))
	}

	action, err := count("action", params[0])
	if err != nil {
		return nil, err
	}
	duration, err := positive("duration", params[1])
	if err != nil {
		return nil, err
	}
	weight, err := positive("weight", params[2])
	if err != nil {
		return nil, err
	}

	switch activity {
	case ActivityRunning:
		return NewRunning(action, duration, weight), nil
	case ActivityRaceWalking:
		height, err := positive("height", params[3])
		if err != nil {
			return nil, err
		}
		return NewRaceWalking(action, duration, weight, height), nil
	case ActivitySwimming:
		length, err := count("pool_length", params[3])
		if err != nil {
			return nil, err
		}
		laps, err := count("pool_count", params[4])
		if err != nil {
			return nil, err
		}
		return NewSwimming(action, duration, weight, length, laps), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, code)
}

func count(name string, v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a non-negative whole number, got %v", ErrInvalidParameter, name, v)
	}
	return int(v), nil
}

func positive(name string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidParameter, name, v)
	}
	return v, nil
}
