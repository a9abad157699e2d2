package derived

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

func TestProjectWeightedAverageRounding(t *testing.T) {
	tractMinutes := [][]*int{
		{ip(0), ip(10), ip(20)},
		{ip(10), ip(0), ip(10)},
		{ip(20), ip(10), ip(0)},
	}
	regions := []RegionWeights{
		{Weights: map[int]float64{0: 1.0}, RepresentativeTract: 0},
		{Weights: map[int]float64{1: 0.5, 2: 0.5}, RepresentativeTract: 1},
	}

	out := Project(tractMinutes, regions)
	require.Len(t, out, 2)
	// region0->region1: row_avg for tract0 at j=1 is 10, j=2 is 20;
	// weighted by region1's weights (0.5/0.5) -> 15
	require.NotNil(t, out[0][1])
	require.Equal(t, 15, *out[0][1])
}

func TestProjectNullWhenWeightZero(t *testing.T) {
	tractMinutes := [][]*int{{ip(0), nil}, {nil, ip(0)}}
	regions := []RegionWeights{
		{Weights: map[int]float64{0: 1.0}},
		{Weights: map[int]float64{1: 1.0}},
	}
	out := Project(tractMinutes, regions)
	require.Nil(t, out[0][1])
}

func TestProjectFirstRouteReadsRepresentativePair(t *testing.T) {
	tractFirstRoute := [][]*int{
		{nil, ip(5)},
		{ip(7), nil},
	}
	regions := []RegionWeights{
		{RepresentativeTract: 0},
		{RepresentativeTract: 1},
	}
	out := ProjectFirstRoute(tractFirstRoute, regions)
	require.Equal(t, 5, *out[0][1])
	require.Equal(t, 7, *out[1][0])
}
