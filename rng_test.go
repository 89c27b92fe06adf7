package bms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededRngStaysInRange(t *testing.T) {
	rng := NewSeededRng(42)
	for i := 0; i < 200; i++ {
		v := rng.NextInRange(5)
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, int64(5))
	}
}

func TestSeededRngIsDeterministicForSameSeed(t *testing.T) {
	a := NewSeededRng(7)
	b := NewSeededRng(7)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.NextInRange(10), b.NextInRange(10))
	}
}

func TestSequenceRngReplaysThenWraps(t *testing.T) {
	rng := NewSequenceRng(2, 1, 3)
	require.Equal(t, int64(2), rng.NextInRange(3))
	require.Equal(t, int64(1), rng.NextInRange(3))
	require.Equal(t, int64(3), rng.NextInRange(3))
	require.Equal(t, int64(2), rng.NextInRange(3)) // wraps around
}

func TestSequenceRngClampsToMax(t *testing.T) {
	rng := NewSequenceRng(9)
	require.Equal(t, int64(3), rng.NextInRange(3))
}
