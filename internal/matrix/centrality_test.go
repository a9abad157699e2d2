package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCentralitiesHarmonicAndMedian(t *testing.T) {
	minutes := [][]*int{
		{intPtr(0), intPtr(10), intPtr(20)},
		{intPtr(10), intPtr(0), nil},
		{intPtr(20), nil, intPtr(0)},
	}

	bundle := Centralities(minutes, minutes)
	require.Equal(t, "harmonic", bundle.Default)
	require.InDelta(t, 1.0/10+1.0/20, bundle.Metrics["harmonic"][0], 1e-9)
	require.InDelta(t, 15.0, bundle.Metrics["median_minutes"][0], 1e-9)
}

func TestCentralitiesMedianNullWhenNoPositiveEntries(t *testing.T) {
	row := []*int{intPtr(0)}
	require.True(t, MedianNullRow(row))
}

func TestCentralitiesTransferPenalizedMonotonicUnderIncreasedPenalty(t *testing.T) {
	base := [][]*int{
		{intPtr(0), intPtr(10)},
		{intPtr(10), intPtr(0)},
	}
	penalized := [][]*int{
		{intPtr(0), intPtr(20)},
		{intPtr(20), intPtr(0)},
	}

	bundle := Centralities(base, penalized)
	require.Less(t, bundle.Metrics["transfer_penalized"][0], bundle.Metrics["harmonic"][0])
}
