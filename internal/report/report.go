// Package report renders workout summaries for people.
package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"example.com/fitsummary/internal/training"
)

// Sink accepts a completed summary and renders it somewhere.
type Sink interface {
	Emit(ctx context.Context, summary training.Summary) error
}

// Message formats the info message for one summary.
func Message(s training.Summary) string {
	return fmt.Sprintf("Training type: %s; Duration: %.3f h.; Distance: %.3f km; Avg. speed: %.3f km/h; Calories burned: %.3f.",
		s.Label, s.DurationHours, s.DistanceKm, s.SpeedKmh, s.Calories)
}

// WriterSink prints one message per line.
type WriterSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterSink constructs a WriterSink.
func NewWriterSink(out io.Writer) *WriterSink {
	return &WriterSink{out: out}
}

// Emit writes the message followed by a newline.
func (s *WriterSink) Emit(ctx context.Context, summary training.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, Message(summary))
	return err
}
