package report

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"example.com/fitsummary/internal/training"
)

// Package is one sensor reading batch as written in a batch file.
type Package struct {
	WorkoutType string    `yaml:"workout_type"`
	Data        []float64 `yaml:"data"`
}

// Batch is the document format accepted by LoadBatch.
type Batch struct {
	Packages []Package `yaml:"packages"`
}

// SampleBatch returns the built-in demo packages.
func SampleBatch() Batch {
	return Batch{Packages: []Package{
		{WorkoutType: "SWM", Data: []float64{720, 1, 80, 25, 40}},
		{WorkoutType: "RUN", Data: []float64{15000, 1, 75}},
		{WorkoutType: "WLK", Data: []float64{9000, 1, 75, 180}},
	}}
}

// LoadBatch decodes a YAML batch document.
func LoadBatch(r io.Reader) (Batch, error) {
	var batch Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&batch); err != nil {
		if err == io.EOF {
			return Batch{}, nil
		}
		return Batch{}, fmt.Errorf("decode batch: %w", err)
	}
	return batch, nil
}

// Run resolves every package in order and emits its summary to sink.
// It stops at the first package that cannot be resolved.
func Run(ctx context.Context, batch Batch, sink Sink) error {
	for i, pkg := range batch.Packages {
		w, err := training.Resolve(pkg.WorkoutType, pkg.Data)
		if err != nil {
			return fmt.Errorf("package %d: %w", i+1, err)
		}
		summary := training.Summarize(w)
		if err := summary.Validate(); err != nil {
			return fmt.Errorf("package %d: %w", i+1, err)
		}
		if err := sink.Emit(ctx, summary); err != nil {
			return fmt.Errorf("package %d: %w", i+1, err)
		}
	}
	return nil
}

// YAMLSink writes each summary as a separate YAML document.
type YAMLSink struct {
	enc *yaml.Encoder
}

// NewYAMLSink constructs a YAMLSink. Call Close to flush the final document.
func NewYAMLSink(out io.Writer) *YAMLSink {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	return &YAMLSink{enc: enc}
}

// Emit encodes the summary.
func (s *YAMLSink) Emit(ctx context.Context, summary training.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.enc.Encode(summary)
}

// Close flushes the encoder.
func (s *YAMLSink) Close() error {
	return s.enc.Close()
}
