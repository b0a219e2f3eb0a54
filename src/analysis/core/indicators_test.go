package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageTrailingMean(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	out := MovingAverage(values, 3)
	require.Len(t, out, 5)

	// Positions before the window fills are missing, not zero
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])

	require.NotNil(t, out[2])
	assert.InDelta(t, 20.0, *out[2], 1e-9) // (10+20+30)/3
	require.NotNil(t, out[3])
	assert.InDelta(t, 30.0, *out[3], 1e-9) // (20+30+40)/3
	require.NotNil(t, out[4])
	assert.InDelta(t, 40.0, *out[4], 1e-9) // (30+40+50)/3
}

func TestMovingAverageWindowOne(t *testing.T) {
	values := []float64{3.5, 7.25}
	out := MovingAverage(values, 1)
	require.Len(t, out, 2)
	require.NotNil(t, out[0])
	assert.InDelta(t, 3.5, *out[0], 1e-9)
	require.NotNil(t, out[1])
	assert.InDelta(t, 7.25, *out[1], 1e-9)
}

func TestMovingAverageWindowLargerThanInput(t *testing.T) {
	out := MovingAverage([]float64{1, 2, 3}, 5)
	require.Len(t, out, 3)
	for i, v := range out {
		assert.Nil(t, v, "position %d should be missing", i)
	}
}

func TestMovingAverageInvalidWindow(t *testing.T) {
	out := MovingAverage([]float64{1, 2, 3}, 0)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.Nil(t, v)
	}
}

func TestMovingAverageEmptyInput(t *testing.T) {
	assert.Empty(t, MovingAverage(nil, 5))
}

func TestChangePercent(t *testing.T) {
	assert.InDelta(t, 0.10, ChangePercent(110, 100), 1e-9)
	assert.InDelta(t, -0.25, ChangePercent(75, 100), 1e-9)
	assert.Zero(t, ChangePercent(50, 0))
}
