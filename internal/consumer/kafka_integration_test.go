//go:build integration

package consumer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/fitsummary/internal/domain"
	persistence "example.com/fitsummary/internal/persistence/postgres"
	"example.com/fitsummary/internal/report"
	"example.com/fitsummary/internal/testsupport"
)

func TestKafkaSensorPackageIsSummarized(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	const topic = "sensor_packages"
	broker := testsupport.StartKafka(t, ctx, topic)
	pool := testsupport.StartPostgres(t, ctx)

	service := domain.NewService(persistence.NewRepository(pool))
	handler := NewSummaryHandler(service, report.NewWriterSink(io.Discard))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		GroupID:     "workout-summary-integration",
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	consumerCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = NewProcessor(reader, handler).Run(consumerCtx)
	}()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		BatchTimeout: 10 * time.Millisecond,
	}
	defer writer.Close()

	tenantID, userID := uuid.NewString(), uuid.NewString()
	headers := []kafka.Header{
		{Key: "tenant_id", Value: []byte(tenantID)},
		{Key: "user_id", Value: []byte(userID)},
	}
	require.NoError(t, writer.WriteMessages(ctx,
		kafka.Message{Key: []byte("pkg-bad"), Value: []byte(`{"workout_type":"XYZ","data":[1,1,1]}`), Headers: headers},
		kafka.Message{Key: []byte("pkg-1"), Value: []byte(`{"workout_type":"WLK","data":[9000,1,75,180],"source":"watch"}`), Headers: headers},
	))

	repo := persistence.NewRepository(pool)
	require.Eventually(t, func() bool {
		records, _, err := repo.ListByUser(ctx, tenantID, userID, nil, 10)
		return err == nil && len(records) == 1
	}, 60*time.Second, 500*time.Millisecond)

	records, _, err := repo.ListByUser(ctx, tenantID, userID, nil, 10)
	require.NoError(t, err)
	require.InDelta(t, 157.5, records[0].Summary.Calories, 1e-9)
}
