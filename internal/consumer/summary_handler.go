package consumer

import (
	"context"

	"example.com/fitsummary/internal/domain"
	"example.com/fitsummary/internal/report"
)

// Recorder is the slice of domain.Service the handler depends on.
type Recorder interface {
	RecordWorkout(ctx context.Context, input domain.RecordWorkoutInput) (*domain.WorkoutRecord, bool, error)
}

// SummaryHandler records each package through the domain service and, when a
// sink is configured, emits the resulting summary to it.
type SummaryHandler struct {
	recorder Recorder
	sink     report.Sink
}

// NewSummaryHandler constructs a SummaryHandler. sink may be nil.
func NewSummaryHandler(recorder Recorder, sink report.Sink) *SummaryHandler {
	return &SummaryHandler{recorder: recorder, sink: sink}
}

// Handle summarizes and stores pkg. Replayed packages are not emitted twice.
func (h *SummaryHandler) Handle(ctx context.Context, pkg Package) error {
	record, replay, err := h.recorder.RecordWorkout(ctx, domain.RecordWorkoutInput{
		TenantID:       pkg.TenantID,
		UserID:         pkg.UserID,
		WorkoutType:    pkg.WorkoutType,
		Data:           pkg.Data,
		RecordedAt:     pkg.RecordedAt,
		Source:         pkg.Source,
		IdempotencyKey: pkg.PackageID,
	})
	if err != nil {
		return err
	}
	if replay || h.sink == nil {
		return nil
	}
	return h.sink.Emit(ctx, record.Summary)
}
