// Package derived re-projects tract-level matrices onto derived
// regions via tract-weight averaging, per spec.md component C13
// (DerivedMatrix).
package derived

import "math"

// RegionWeights is one derived region's tract-weight row: a map from
// tract ordinal (the tract's index in the source minutes matrix) to
// its normalized weight, plus the ordinal of its representative
// tract for first_route' lookups.
type RegionWeights struct {
	Weights             map[int]float64
	RepresentativeTract int
}

// Project re-projects tractMinutes[T][T] onto minutes'[R][R], per
// spec.md section 4.13: row_avg[r][j] = weighted mean of
// tractMinutes[i][j] over tracts i in region r, then
// minutes'[r][s] = weighted mean of row_avg[r][j] over tracts j in
// region s. Null (nil) whenever the corresponding denominator is zero.
func Project(tractMinutes [][]*int, regions []RegionWeights) [][]*int {
	nTracts := len(tractMinutes)
	nRegions := len(regions)

	rowAvg := make([][]*float64, nRegions)
	for r := 0; r < nRegions; r++ {
		rowAvg[r] = make([]*float64, nTracts)
		for j := 0; j < nTracts; j++ {
			sum, weight := 0.0, 0.0
			for i, w := range regions[r].Weights {
				if i >= nTracts {
					continue
				}
				m := tractMinutes[i][j]
				if m == nil {
					continue
				}
				sum += w * float64(*m)
				weight += w
			}
			if weight <= 0 {
				continue
			}
			avg := sum / weight
			rowAvg[r][j] = &avg
		}
	}

	out := make([][]*int, nRegions)
	for r := 0; r < nRegions; r++ {
		out[r] = make([]*int, nRegions)
		for s := 0; s < nRegions; s++ {
			sum, weight := 0.0, 0.0
			for j, w := range regions[s].Weights {
				if j >= nTracts {
					continue
				}
				avgPtr := rowAvg[r][j]
				if avgPtr == nil {
					continue
				}
				sum += w * (*avgPtr)
				weight += w
			}
			if weight <= 0 {
				continue
			}
			rounded := int(math.Floor(sum/weight + 0.5))
			out[r][s] = &rounded
		}
	}

	return out
}

// ProjectFirstRoute reads first_route'[r][s] from the representative
// tract pair (rep_r, rep_s), per spec.md section 4.13.
func ProjectFirstRoute(tractFirstRoute [][]*int, regions []RegionWeights) [][]*int {
	n := len(regions)
	out := make([][]*int, n)
	for r := 0; r < n; r++ {
		out[r] = make([]*int, n)
		repR := regions[r].RepresentativeTract
		if repR < 0 || repR >= len(tractFirstRoute) {
			continue
		}
		for s := 0; s < n; s++ {
			repS := regions[s].RepresentativeTract
			if repS < 0 || repS >= len(tractFirstRoute[repR]) {
				continue
			}
			if v := tractFirstRoute[repR][repS]; v != nil {
				val := *v
				out[r][s] = &val
			}
		}
	}
	return out
}
