package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fitsummary/internal/training"
)

func TestRecordWorkoutPersistsSummary(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)
	fixed := time.Date(2025, time.October, 27, 20, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	record, replay, err := service.RecordWorkout(context.Background(), RecordWorkoutInput{
		TenantID:    "tenant-1",
		UserID:      "user-1",
		WorkoutType: "SWM",
		Data:        []float64{720, 1, 80, 25, 40},
		Source:      "watch",
	})
	require.NoError(t, err)
	require.False(t, replay)
	require.NotEmpty(t, record.ID)
	require.Equal(t, training.ActivitySwimming, record.ActivityType)
	require.Equal(t, fixed, record.RecordedAt)
	require.InDelta(t, 336.0, record.Summary.Calories, 1e-6)
	require.Len(t, repo.created, 1)
}

func TestRecordWorkoutReplaysIdempotencyKey(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)

	input := RecordWorkoutInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		WorkoutType:    "RUN",
		Data:           []float64{15000, 1, 75},
		IdempotencyKey: "pkg-1",
	}
	first, replay, err := service.RecordWorkout(context.Background(), input)
	require.NoError(t, err)
	require.False(t, replay)

	second, replay, err := service.RecordWorkout(context.Background(), input)
	require.NoError(t, err)
	require.True(t, replay)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.created, 1)
}

func TestRecordWorkoutReturnsDispatcherErrors(t *testing.T) {
	repo := newMemoryRepo()
	service := NewService(repo)

	_, _, err := service.RecordWorkout(context.Background(), RecordWorkoutInput{
		UserID:      "user-1",
		WorkoutType: "XYZ",
		Data:        []float64{1, 1, 1},
	})
	require.ErrorIs(t, err, training.ErrUnknownActivity)

	_, _, err = service.RecordWorkout(context.Background(), RecordWorkoutInput{
		UserID:      "user-1",
		WorkoutType: "RUN",
		Data:        []float64{1, 1},
	})
	require.ErrorIs(t, err, training.ErrInvalidParameterCount)
	require.Empty(t, repo.created)
}

func TestRecordWorkoutRejectsNonFiniteSummary(t *testing.T) {
	repo := newMemoryRepo()

	record, _, err := NewService(repo).RecordWorkout(context.Background(), RecordWorkoutInput{
		TenantID:    "tenant-1",
		UserID:      "user-1",
		WorkoutType: "RUN",
		Data:        []float64{15000, 1e-310, 75},
	})
	require.ErrorIs(t, err, training.ErrInvalidParameter)
	require.Nil(t, record)
	require.Empty(t, repo.created)
}

func TestRecordWorkoutRequiresUser(t *testing.T) {
	_, _, err := NewService(newMemoryRepo()).RecordWorkout(context.Background(), RecordWorkoutInput{
		WorkoutType: "RUN",
		Data:        []float64{15000, 1, 75},
	})
	require.ErrorIs(t, err, ErrMissingUser)
}

func TestRecordWorkoutWrapsStoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.createErr = errors.New("connection reset")

	_, _, err := NewService(repo).RecordWorkout(context.Background(), RecordWorkoutInput{
		UserID:      "user-1",
		WorkoutType: "RUN",
		Data:        []float64{15000, 1, 75},
	})
	require.ErrorIs(t, err, repo.createErr)
	require.Contains(t, err.Error(), "store workout")
}

func TestGetWorkoutNotFound(t *testing.T) {
	_, err := NewService(newMemoryRepo()).GetWorkout(context.Background(), "tenant-1", "missing")
	require.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestTotalsOrderedByActivity(t *testing.T) {
	repo := newMemoryRepo()
	repo.totals = []ActivityTotals{
		{ActivityType: training.ActivityRaceWalking, Workouts: 1},
		{ActivityType: training.ActivitySwimming, Workouts: 2},
		{ActivityType: training.ActivityRunning, Workouts: 3},
	}

	totals, err := NewService(repo).Totals(context.Background(), "tenant-1", "user-1")
	require.NoError(t, err)
	require.Len(t, totals, 3)
	require.Equal(t, training.ActivitySwimming, totals[0].ActivityType)
	require.Equal(t, training.ActivityRunning, totals[1].ActivityType)
	require.Equal(t, training.ActivityRaceWalking, totals[2].ActivityType)
}

type memoryRepo struct {
	created   []WorkoutRecord
	byKey     map[string]WorkoutRecord
	totals    []ActivityTotals
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byKey: make(map[string]WorkoutRecord)}
}

func (m *memoryRepo) FindByIdempotency(_ context.Context, tenantID, userID, key string) (*WorkoutRecord, error) {
	if record, ok := m.byKey[tenantID+"|"+userID+"|"+key]; ok {
		return &record, nil
	}
	return nil, nil
}

func (m *memoryRepo) Create(_ context.Context, record WorkoutRecord, key string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, record)
	if key != "" {
		m.byKey[record.TenantID+"|"+record.UserID+"|"+key] = record
	}
	return nil
}

func (m *memoryRepo) Get(_ context.Context, _, workoutID string) (*WorkoutRecord, error) {
	for _, record := range m.created {
		if record.ID == workoutID {
			return &record, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) ListByUser(_ context.Context, _, _ string, _ *Cursor, _ int) ([]WorkoutRecord, *Cursor, error) {
	return m.created, nil, nil
}

func (m *memoryRepo) TotalsByUser(context.Context, string, string) ([]ActivityTotals, error) {
	return m.totals, nil
}
