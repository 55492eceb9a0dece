package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"example.com/fitsummary/internal/config"
	"example.com/fitsummary/internal/consumer"
	"example.com/fitsummary/internal/domain"
	persistence "example.com/fitsummary/internal/persistence/postgres"
	"example.com/fitsummary/internal/report"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("workout-summary consumer: %v", err)
	}
}

// run summarizes sensor packages from Kafka and serves /metrics until ctx ends.
func run(ctx context.Context, cfg config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	service := domain.NewService(persistence.NewRepository(pool))
	handler := consumer.NewSummaryHandler(service, report.NewWriterSink(os.Stdout))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.SensorTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		ReadLagInterval: -1,
	})
	defer reader.Close()
	proc := consumer.NewProcessor(reader, handler, consumer.WithRetryDelay(cfg.ConsumerRetryDelay))

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler(), ReadHeaderTimeout: 2 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("consumer started (topic=%s, group=%s)", cfg.SensorTopic, cfg.ConsumerGroupID)
		if err := proc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("topic %s: %w", cfg.SensorTopic, err)
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("consumer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("consumer shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
