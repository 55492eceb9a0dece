package outbox

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func outboxOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: "workout_service", Subsystem: "outbox", Name: name, Help: help}
}

var (
	deliveredCounter = promauto.NewCounter(outboxOpts("events_delivered_total",
		"Summary events published to Kafka."))
	failedCounter = promauto.NewCounter(outboxOpts("events_failed_total",
		"Summary events whose batch could not be published."))
	dlqCounter = promauto.NewCounterVec(outboxOpts("events_dlq_total",
		"Summary events moved to outbox_dlq, per destination topic."), []string{"topic"})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "workout_service",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Wall time to publish and settle one claimed batch.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

// observeBatch records the outcome of one settled batch. A nil sendErr means
// every event was published.
func observeBatch(events []Event, sendErr error, elapsed time.Duration) {
	batchDuration.Observe(elapsed.Seconds())
	if sendErr == nil {
		deliveredCounter.Add(float64(len(events)))
		return
	}
	failedCounter.Add(float64(len(events)))
	for _, ev := range events {
		dlqCounter.WithLabelValues(ev.Topic).Inc()
	}
}
