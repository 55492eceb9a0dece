// Package consumer reads sensor packages from Kafka and hands them to a Handler.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/fitsummary/internal/domain"
	"example.com/fitsummary/internal/training"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded sensor packages.
type Handler interface {
	Handle(context.Context, Package) error
}

// Package is one decoded sensor reading batch.
type Package struct {
	Topic       string
	Partition   int
	Offset      int64
	Timestamp   time.Time
	PackageID   string
	TenantID    string
	UserID      string
	WorkoutType string
	Data        []float64
	RecordedAt  time.Time
	Source      string
}

type packageBody struct {
	WorkoutType string    `json:"workout_type"`
	Data        []float64 `json:"data"`
	RecordedAt  time.Time `json:"recorded_at"`
	Source      string    `json:"source"`
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithRetryDelay sets the pause between attempts after a fetch or handler error.
func WithRetryDelay(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.retryDelay = d
		}
	}
}

// Processor pulls messages from Kafka, decodes them, and dispatches to a Handler.
type Processor struct {
	reader     Reader
	handler    Handler
	logger     *log.Logger
	retryDelay time.Duration
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:     reader,
		handler:    handler,
		logger:     log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lshortfile),
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes Kafka messages until the context is cancelled.
//
// Malformed messages and packages the dispatcher rejects are committed: replaying
// the same readings cannot produce a different outcome. Any other handler error
// is retried on the same message after the retry delay. Commits are cumulative per
// partition, so the next message is not fetched until the current one settles.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			if err := p.wait(ctx); err != nil {
				return err
			}
			continue
		}

		pkg, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordDecodeError(msg.Topic)
			p.commit(ctx, msg)
			continue
		}

		if err := p.settle(ctx, msg, pkg); err != nil {
			return err
		}
	}
}

// settle hands pkg to the handler until it is stored or rejected. It only
// returns an error when ctx ends first.
func (p *Processor) settle(ctx context.Context, msg kafka.Message, pkg Package) error {
	for attempt := 1; ; attempt++ {
		handleErr := p.handler.Handle(ctx, pkg)
		switch {
		case handleErr == nil:
			if p.commit(ctx, msg) {
				recordProcessed(pkg)
			}
			return nil
		case rejected(handleErr):
			p.logger.Printf("rejected package (workout_type=%s, tenant=%s, offset=%d): %v", pkg.WorkoutType, pkg.TenantID, pkg.Offset, handleErr)
			recordRejected(pkg)
			p.commit(ctx, msg)
			return nil
		}

		p.logger.Printf("handler error (workout_type=%s, tenant=%s, offset=%d, attempt=%d): %v", pkg.WorkoutType, pkg.TenantID, pkg.Offset, attempt, handleErr)
		recordHandlerError(pkg)
		if err := p.wait(ctx); err != nil {
			return err
		}
	}
}

func (p *Processor) wait(ctx context.Context) error {
	timer := time.NewTimer(p.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Processor) commit(ctx context.Context, msg kafka.Message) bool {
	if err := p.reader.CommitMessages(ctx, msg); err != nil {
		p.logger.Printf("commit error (topic=%s, offset=%d): %v", msg.Topic, msg.Offset, err)
		return false
	}
	return true
}

func rejected(err error) bool {
	return errors.Is(err, training.ErrUnknownActivity) ||
		errors.Is(err, training.ErrInvalidParameterCount) ||
		errors.Is(err, training.ErrInvalidParameter) ||
		errors.Is(err, domain.ErrMissingUser)
}

func decodeMessage(msg kafka.Message) (Package, error) {
	var body packageBody
	if err := json.Unmarshal(msg.Value, &body); err != nil {
		return Package{}, fmt.Errorf("invalid payload: %w", err)
	}
	if body.WorkoutType == "" {
		return Package{}, errors.New("missing workout_type")
	}

	tenantID, _ := headerValue(msg, "tenant_id")
	userID, _ := headerValue(msg, "user_id")

	return Package{
		Topic:       msg.Topic,
		Partition:   msg.Partition,
		Offset:      msg.Offset,
		Timestamp:   msg.Time,
		PackageID:   string(msg.Key),
		TenantID:    string(tenantID),
		UserID:      string(userID),
		WorkoutType: body.WorkoutType,
		Data:        body.Data,
		RecordedAt:  body.RecordedAt,
		Source:      body.Source,
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
