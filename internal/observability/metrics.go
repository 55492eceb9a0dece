// Package observability holds the Prometheus collectors for workout summarization.
package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/fitsummary/internal/training"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workout_service",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout summary persisted to Postgres.",
	})

	summarizedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_service",
		Subsystem: "training",
		Name:      "summaries_total",
		Help:      "Number of sensor packages summarized, labeled by activity code.",
	}, []string{"activity"})

	rejectedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workout_service",
		Subsystem: "training",
		Name:      "packages_rejected_total",
		Help:      "Number of sensor packages rejected by the dispatcher, labeled by reason.",
	}, []string{"reason"})

	distanceHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workout_service",
		Subsystem: "training",
		Name:      "distance_km",
		Help:      "Distribution of summarized workout distances.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 21.1, 42.2},
	}, []string{"activity"})

	caloriesHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workout_service",
		Subsystem: "training",
		Name:      "calories",
		Help:      "Distribution of summarized calories burned.",
		Buckets:   prometheus.ExponentialBuckets(50, 2, 8),
	}, []string{"activity"})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, summarizedCounter, rejectedCounter, distanceHistogram, caloriesHistogram)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordSummarized counts a computed summary.
func RecordSummarized(s training.Summary) {
	activity := string(s.Activity)
	summarizedCounter.WithLabelValues(activity).Inc()
	distanceHistogram.WithLabelValues(activity).Observe(s.DistanceKm)
	caloriesHistogram.WithLabelValues(activity).Observe(s.Calories)
}

// RecordRejected counts a package the dispatcher refused.
func RecordRejected(err error) {
	rejectedCounter.WithLabelValues(RejectReason(err)).Inc()
}

// RejectReason maps dispatcher errors to a bounded label set.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, training.ErrUnknownActivity):
		return "unknown_activity"
	case errors.Is(err, training.ErrInvalidParameterCount):
		return "invalid_parameter_count"
	case errors.Is(err, training.ErrInvalidParameter):
		return "invalid_parameter"
	default:
		return "other"
	}
}
