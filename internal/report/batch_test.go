package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"example.com/fitsummary/internal/training"
)

func TestLoadBatch(t *testing.T) {
	doc := `
packages:
  - workout_type: RUN
    data: [15000, 1, 75]
  - workout_type: WLK
    data: [9000, 1, 75, 180]
`
	batch, err := LoadBatch(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, batch.Packages, 2)
	require.Equal(t, "WLK", batch.Packages[1].WorkoutType)
	require.Equal(t, []float64{9000, 1, 75, 180}, batch.Packages[1].Data)
}

func TestLoadBatchRejectsUnknownFields(t *testing.T) {
	_, err := LoadBatch(strings.NewReader("packages:\n  - code: RUN\n"))
	require.Error(t, err)

	batch, err := LoadBatch(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, batch.Packages)
}

func TestRunSampleBatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), SampleBatch(), NewWriterSink(&buf)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "Training type: Swimming;"))
	require.True(t, strings.HasPrefix(lines[1], "Training type: Running;"))
	require.True(t, strings.HasPrefix(lines[2], "Training type: RaceWalking;"))
}

func TestRunStopsAtFirstBadPackage(t *testing.T) {
	batch := Batch{Packages: []Package{
		{WorkoutType: "RUN", Data: []float64{15000, 1, 75}},
		{WorkoutType: "XYZ", Data: []float64{1, 1, 1}},
		{WorkoutType: "WLK", Data: []float64{9000, 1, 75, 180}},
	}}

	var buf bytes.Buffer
	err := Run(context.Background(), batch, NewWriterSink(&buf))
	require.ErrorIs(t, err, training.ErrUnknownActivity)
	require.Contains(t, err.Error(), "package 2")
	require.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestRunRejectsOverflowingSummary(t *testing.T) {
	batch := Batch{Packages: []Package{{WorkoutType: "RUN", Data: []float64{15000, 1e-310, 75}}}}

	var buf bytes.Buffer
	err := Run(context.Background(), batch, NewWriterSink(&buf))
	require.ErrorIs(t, err, training.ErrInvalidParameter)
	require.Empty(t, buf.String())
}

func TestYAMLSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewYAMLSink(&buf)
	require.NoError(t, Run(context.Background(), Batch{Packages: SampleBatch().Packages[1:2]}, sink))
	require.NoError(t, sink.Close())

	var got training.Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, training.ActivityRunning, got.Activity)
	require.InDelta(t, 699.75, got.Calories, 1e-9)
}
