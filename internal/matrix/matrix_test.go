package matrix

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrcode/transit-atlas/internal/graph"
)

func TestBuildDiagonalIsZeroAndRouteNil(t *testing.T) {
	routePtr := "R1"
	g := graph.StopGraph{
		"A": {{To: "B", Seconds: 90, Route: &routePtr}},
		"B": nil,
	}
	sources := []Source{{StopID: "A"}, {StopID: "B"}}
	routeIndex := map[string]int{"R1": 0}

	m := Build(g, sources, routeIndex, 0)
	require.Equal(t, 0, *m.Minutes[0][0])
	require.Equal(t, 0, *m.Minutes[1][1])
	require.Nil(t, m.FirstRoute[0][0])
	require.Nil(t, m.FirstRoute[1][1])
}

func TestBuildRoundsSecondsToMinutesHalfUp(t *testing.T) {
	routePtr := "R1"
	g := graph.StopGraph{
		"A": {{To: "B", Seconds: 90, Route: &routePtr}},
		"B": nil,
	}
	sources := []Source{{StopID: "A"}, {StopID: "B"}}

	m := Build(g, sources, map[string]int{"R1": 0}, 0)
	// 90 seconds -> (90+30)/60 = 2
	require.Equal(t, 2, *m.Minutes[0][1])
	require.Equal(t, 0, *m.FirstRoute[0][1])
}

func TestBuildUnreachableIsNil(t *testing.T) {
	g := graph.StopGraph{
		"A": nil,
		"B": nil,
	}
	sources := []Source{{StopID: "A"}, {StopID: "B"}}

	m := Build(g, sources, map[string]int{}, 0)
	require.Nil(t, m.Minutes[0][1])
	require.Nil(t, m.FirstRoute[0][1])
}

func TestFloorDivNegative(t *testing.T) {
	require.Equal(t, -2, floorDiv(-3, 2))
	require.Equal(t, 1, floorDiv(3, 2))
}
