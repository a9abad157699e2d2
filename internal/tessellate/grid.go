// Package tessellate builds the grid micro-cell layer over the
// neighborhood bounds and coalesces cells into derived station-anchored
// regions, per spec.md components C10 (Tessellator) and C11
// (RegionCoalescer).
package tessellate

import (
	"math"
	"sort"

	"github.com/tgrcode/transit-atlas/internal/geo"
)

// sampleOffsets are the fractional 3x3 sub-sample positions inside a
// cell used for coverage estimation, per spec.md section 4.10.
var sampleOffsets = []float64{0.2, 0.5, 0.8}

// Tract is one input neighborhood polygon, the unit Tessellator
// assigns micro-cells to.
type Tract struct {
	ID      string
	Name    string
	Borough string
	Polygon geo.Polygon
}

// Station is a candidate nearest-station anchor for a cell.
type Station struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// MicroCell is one grid cell with its winning tract assignment and
// nearest station, per spec.md section 3.
type MicroCell struct {
	Col, Row   int
	Centroid   geo.Point
	TractID    string
	TractName  string
	Borough    string
	Coverage   float64
	AreaKm2    float64
	StationID  string
	StationName string
}

type cellKey struct{ col, row int }

// GlobalBound unions the bounds of every tract whose borough is one
// of triBoroughs, per spec.md section 4.10.
func GlobalBound(tracts []Tract, triBoroughs []string) (geo.Bound, bool) {
	allowed := map[string]bool{}
	for _, b := range triBoroughs {
		allowed[b] = true
	}

	var out geo.Bound
	found := false
	for _, t := range tracts {
		if !allowed[t.Borough] {
			continue
		}
		b := geo.PolygonBound(t.Polygon)
		if !found {
			out = b
			found = true
		} else {
			out = out.Union(b)
		}
	}
	return out, found
}

// Build divides global into cells of the given step and assigns each
// cell to the tract with the highest sampled coverage (ties won by
// whichever tract is processed first, i.e. tracts' input order), per
// spec.md section 4.10. Cells are then matched to their nearest
// station by haversine from the cell centroid.
func Build(tracts []Tract, global geo.Bound, step float64, stations []Station) []MicroCell {
	type assignment struct {
		tractIdx int
		coverage float64
	}

	best := map[cellKey]assignment{}

	for ti, tract := range tracts {
		tb := geo.PolygonBound(tract.Polygon)
		if !tb.Intersects(global) {
			continue
		}

		colStart := int(math.Floor((tb.MinLon - global.MinLon) / step))
		colEnd := int(math.Ceil((tb.MaxLon - global.MinLon) / step))
		rowStart := int(math.Floor((tb.MinLat - global.MinLat) / step))
		rowEnd := int(math.Ceil((tb.MaxLat - global.MinLat) / step))

		for row := rowStart; row <= rowEnd; row++ {
			for col := colStart; col <= colEnd; col++ {
				cellMinLon := global.MinLon + float64(col)*step
				cellMinLat := global.MinLat + float64(row)*step

				hits := 0
				for _, fy := range sampleOffsets {
					for _, fx := range sampleOffsets {
						pt := geo.Point{Lon: cellMinLon + fx*step, Lat: cellMinLat + fy*step}
						if tract.Polygon.Contains(pt) {
							hits++
						}
					}
				}
				if hits == 0 {
					continue
				}

				coverage := float64(hits) / 9.0
				key := cellKey{col: col, row: row}
				if existing, ok := best[key]; !ok || coverage > existing.coverage {
					best[key] = assignment{tractIdx: ti, coverage: coverage}
				}
			}
		}
	}

	keys := make([]cellKey, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})

	out := make([]MicroCell, 0, len(keys))
	for _, key := range keys {
		a := best[key]
		tract := tracts[a.tractIdx]

		cellMinLon := global.MinLon + float64(key.col)*step
		cellMinLat := global.MinLat + float64(key.row)*step
		centroid := geo.Point{Lon: cellMinLon + step/2, Lat: cellMinLat + step/2}

		area := cellAreaKm2(cellMinLat, step) * a.coverage

		stationID, stationName := nearestStation(centroid, stations)

		out = append(out, MicroCell{
			Col:         key.col,
			Row:         key.row,
			Centroid:    centroid,
			TractID:     tract.ID,
			TractName:   tract.Name,
			Borough:     tract.Borough,
			Coverage:    a.coverage,
			AreaKm2:     area,
			StationID:   stationID,
			StationName: stationName,
		})
	}

	return out
}

// cellAreaKm2 approximates a cell's planar area using the
// equirectangular approximation of spec.md section 4.10: this is
// intentional and must not be replaced with a geodesic routine
// (section 9).
func cellAreaKm2(minLat, step float64) float64 {
	latCenter := minLat + step/2
	dLatKm := math.Abs(step * 111.32)
	dLonKm := math.Abs(step * 111.32 * math.Cos(latCenter*math.Pi/180))
	return dLatKm * dLonKm
}

func nearestStation(centroid geo.Point, stations []Station) (string, string) {
	bestID, bestName := "", ""
	bestDist := -1.0
	for _, s := range stations {
		d := geo.HaversineM(centroid, geo.Point{Lon: s.Lon, Lat: s.Lat})
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestID = s.ID
			bestName = s.Name
		}
	}
	return bestID, bestName
}
