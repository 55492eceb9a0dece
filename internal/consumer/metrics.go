package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func consumerOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: "workout_service", Subsystem: "consumer", Name: name, Help: help}
}

var (
	processedCounter = promauto.NewCounterVec(consumerOpts("packages_processed_total",
		"Sensor packages summarized and committed."), []string{"topic", "workout_type"})
	rejectedCounter = promauto.NewCounterVec(consumerOpts("packages_rejected_total",
		"Sensor packages committed without a summary because their readings were invalid."), []string{"topic"})
	handlerErrorCounter = promauto.NewCounterVec(consumerOpts("handler_errors_total",
		"Failed handler attempts that were retried before commit."), []string{"topic", "workout_type"})
	decodeErrorCounter = promauto.NewCounterVec(consumerOpts("decode_errors_total",
		"Messages committed unread because they were not valid packages."), []string{"topic"})

	lastMessageGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "workout_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Unix time of the newest package committed per topic.",
	}, []string{"topic"})
)

func recordProcessed(pkg Package) {
	processedCounter.WithLabelValues(pkg.Topic, pkg.WorkoutType).Inc()
	if !pkg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(pkg.Topic).Set(float64(pkg.Timestamp.Unix()))
	}
}

// Rejected packages may carry arbitrary codes, so they are not labeled by type.
func recordRejected(pkg Package) {
	rejectedCounter.WithLabelValues(pkg.Topic).Inc()
}

func recordHandlerError(pkg Package) {
	handlerErrorCounter.WithLabelValues(pkg.Topic, pkg.WorkoutType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
