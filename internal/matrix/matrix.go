// Package matrix builds all-pairs minutes/first-route matrices from a
// per-window StopGraph and computes centrality metrics over them, per
// spec.md component C6 (MatrixBuilder).
package matrix

import "github.com/tgrcode/transit-atlas/internal/graph"

// Matrix is a square minutes/first-route pair indexed by the same
// neighborhood ordinal on both axes, per spec.md section 3.
type Matrix struct {
	Minutes    [][]*int
	FirstRoute [][]*int
}

// Source is one row-origin: the stop id used as the Dijkstra source
// for that row. Its neighborhood ordinal is its position in the
// sources slice.
type Source struct {
	StopID string
}

// Build runs PathSolver once per source stop and projects seconds
// onto every other source's stop, rounding to minutes per section 4.6:
// floor((seconds+30)/60). routeIndex maps a route id to its position
// in the output route table (section 6's graph_<profile>.json).
func Build(g graph.StopGraph, sources []Source, routeIndex map[string]int, transferPenalty int) Matrix {
	n := len(sources)
	minutes := make([][]*int, n)
	firstRoute := make([][]*int, n)

	for i := range sources {
		minutes[i] = make([]*int, n)
		firstRoute[i] = make([]*int, n)

		zero := 0
		minutes[i][i] = &zero
		firstRoute[i][i] = nil

		result := graph.Solve(g, sources[i].StopID, transferPenalty)

		for j := range sources {
			if i == j {
				continue
			}

			secs, ok := result.Distance[sources[j].StopID]
			if !ok {
				continue
			}

			m := floorDiv(secs+30, 60)
			minutes[i][j] = &m

			route, ok := result.FirstRoute[sources[j].StopID]
			if ok && route != nil {
				if idx, found := routeIndex[*route]; found {
					idxCopy := idx
					firstRoute[i][j] = &idxCopy
				}
			}
		}
	}

	return Matrix{Minutes: minutes, FirstRoute: firstRoute}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
