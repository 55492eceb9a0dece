package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"example.com/fitsummary/internal/api"
	"example.com/fitsummary/internal/auth"
	"example.com/fitsummary/internal/config"
	"example.com/fitsummary/internal/domain"
	"example.com/fitsummary/internal/outbox"
	persistence "example.com/fitsummary/internal/persistence/postgres"
	httptransport "example.com/fitsummary/internal/transport/http"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("workout-summary api: %v", err)
	}
}

// run serves the API and relays the outbox until ctx ends.
func run(ctx context.Context, cfg config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()
	dispatcher := outbox.NewDispatcher(pool, producer, outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL),
		cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	service := domain.NewService(persistence.NewRepository(pool))
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), newRouter(cfg, service))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Start(gctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("workout-summary api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newRouter mounts the API and /metrics behind bearer auth and the access log.
func newRouter(cfg config.Config, service *domain.Service) http.Handler {
	mux := http.NewServeMux()
	api.NewHandler(service).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authn := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	return httptransport.RequestLogger(log.New(log.Writer(), "[http] ", log.LstdFlags), authn.Wrap(mux))
}
