package outbox

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveBatchSplitsOutcomes(t *testing.T) {
	events := []Event{{Topic: "workout_summaries"}, {Topic: "workout_summaries"}, {Topic: "audit"}}

	delivered := testutil.ToFloat64(deliveredCounter)
	failed := testutil.ToFloat64(failedCounter)
	summaries := testutil.ToFloat64(dlqCounter.WithLabelValues("workout_summaries"))
	audit := testutil.ToFloat64(dlqCounter.WithLabelValues("audit"))

	observeBatch(events, nil, time.Millisecond)
	require.InDelta(t, delivered+3, testutil.ToFloat64(deliveredCounter), 0.0001)
	require.InDelta(t, failed, testutil.ToFloat64(failedCounter), 0.0001)

	observeBatch(events, errors.New("broker down"), time.Millisecond)
	require.InDelta(t, delivered+3, testutil.ToFloat64(deliveredCounter), 0.0001)
	require.InDelta(t, failed+3, testutil.ToFloat64(failedCounter), 0.0001)
	require.InDelta(t, summaries+2, testutil.ToFloat64(dlqCounter.WithLabelValues("workout_summaries")), 0.0001)
	require.InDelta(t, audit+1, testutil.ToFloat64(dlqCounter.WithLabelValues("audit")), 0.0001)
}
