package training

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnknownActivity(t *testing.T) {
	for _, code := range []string{"XYZ", "", "run", "SWIM"} {
		w, err := Resolve(code, []float64{1, 1, 1})
		require.ErrorIs(t, err, ErrUnknownActivity, code)
		require.Nil(t, w)
	}
}

func TestResolveRejectsPaddedCodes(t *testing.T) {
	for _, code := range []string{" RUN", "RUN\n", "\tRUN ", "SWM "} {
		w, err := Resolve(code, []float64{15000, 1, 75})
		require.ErrorIs(t, err, ErrUnknownActivity, "%q", code)
		require.Nil(t, w)
	}
}

func TestResolveArityMismatch(t *testing.T) {
	cases := map[string][]float64{
		"RUN": {1, 1},
		"WLK": {1, 1, 1},
		"SWM": {1, 1, 1, 1, 1, 1},
	}
	for code, params := range cases {
		w, err := Resolve(code, params)
		require.ErrorIs(t, err, ErrInvalidParameterCount, code)
		require.Nil(t, w)
	}
}

func TestResolveRejectsOutOfDomainParameters(t *testing.T) {
	cases := []struct {
		code   string
		params []float64
	}{
		{"RUN", []float64{15000, 0, 75}},
		{"RUN", []float64{15000, -1, 75}},
		{"RUN", []float64{15000, 1, 0}},
		{"RUN", []float64{-5, 1, 75}},
		{"RUN", []float64{12.5, 1, 75}},
		{"RUN", []float64{15000, math.NaN(), 75}},
		{"WLK", []float64{9000, 1, 75, 0}},
		{"SWM", []float64{720, 1, 80, 25.5, 40}},
		{"SWM", []float64{720, 1, 80, 25, -1}},
		{"SWM", []float64{720, math.Inf(1), 80, 25, 40}},
	}
	for _, tc := range cases {
		w, err := Resolve(tc.code, tc.params)
		require.ErrorIs(t, err, ErrInvalidParameter, "%s %v", tc.code, tc.params)
		require.Nil(t, w)
	}
}

func TestResolveAssignsPositionally(t *testing.T) {
	w, err := Resolve("WLK", []float64{9000, 1.5, 75, 180})
	require.NoError(t, err)
	walk, ok := w.(RaceWalking)
	require.True(t, ok)
	assert.Equal(t, 180.0, walk.HeightCm())
	assert.Equal(t, 1.5, walk.DurationHours())

	w, err = Resolve("SWM", []float64{720, 1, 80, 25, 40})
	require.NoError(t, err)
	swim, ok := w.(Swimming)
	require.True(t, ok)
	assert.Equal(t, 25, swim.PoolLengthMeters())
	assert.Equal(t, 40, swim.PoolCount())
}

func TestResolveIsIdempotent(t *testing.T) {
	first, err := Resolve("RUN", []float64{15000, 1, 75})
	require.NoError(t, err)
	second, err := Resolve("RUN", []float64{15000, 1, 75})
	require.NoError(t, err)
	assert.Equal(t, Summarize(first), Summarize(second))
}

func TestActivityCatalog(t *testing.T) {
	for _, a := range Activities {
		parsed, err := ParseActivity(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
		assert.Len(t, a.Fields(), a.Arity())
	}
	assert.Equal(t, 0, Activity("XYZ").Arity())
	assert.Nil(t, Activity("XYZ").Fields())
}
