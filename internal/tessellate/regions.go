package tessellate

import (
	"fmt"
	"sort"
	"strings"
)

// Region is a coalesced group of micro-cells sharing a nearest-station
// anchor, per spec.md section 3 (DerivedRegion) and section 4.11.
type Region struct {
	AtlasID        string
	StationID      string
	StationName    string
	AnchorLat      float64
	AnchorLon      float64
	CentroidLon    float64
	CentroidLat    float64
	AreaKm2        float64
	Borough        string
	TractWeights   map[string]float64
	RepresentativeTract string
	Scalars        map[string]float64
	Cells          []MicroCell
}

// TractTotalCoveredArea sums AreaKm2 per tract across every cell in
// the grid, the denominator Coalesce needs to prorate scalar values
// (section 4.11's "tract_total_covered_area").
func TractTotalCoveredArea(cells []MicroCell) map[string]float64 {
	out := map[string]float64{}
	for _, c := range cells {
		out[c.TractID] += c.AreaKm2
	}
	return out
}

// Coalesce groups cells by "station-<slug(name)>-<id>" and aggregates
// each region's centroid, area, borough, tract weights and scalars,
// per spec.md section 4.11. stationCoords supplies each anchor
// station's own lat/lon for the output's anchor_station_lat/lon.
func Coalesce(cells []MicroCell, stationCoords map[string]Station, tractScalars map[string]map[string]float64) []Region {
	tractTotalArea := TractTotalCoveredArea(cells)

	groups := map[string][]MicroCell{}
	var order []string

	for _, c := range cells {
		key := fmt.Sprintf("station-%s-%s", slug(c.StationName), c.StationID)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}
	sort.Strings(order)

	out := make([]Region, 0, len(order))
	for _, key := range order {
		groupCells := groups[key]

		totalArea := 0.0
		sumLon, sumLat := 0.0, 0.0
		boroughArea := map[string]float64{}
		tractArea := map[string]float64{}

		for _, c := range groupCells {
			totalArea += c.AreaKm2
			sumLon += c.Centroid.Lon * c.AreaKm2
			sumLat += c.Centroid.Lat * c.AreaKm2
			boroughArea[c.Borough] += c.AreaKm2
			tractArea[c.TractID] += c.AreaKm2
		}

		centroidLon, centroidLat := 0.0, 0.0
		if totalArea > 0 {
			centroidLon = sumLon / totalArea
			centroidLat = sumLat / totalArea
		}

		borough := argmaxKey(boroughArea)

		tractWeights := map[string]float64{}
		if totalArea > 0 {
			for tid, a := range tractArea {
				tractWeights[tid] = a / totalArea
			}
		}
		repTract := argmaxKeyFloat(tractWeights)

		scalars := map[string]float64{}
		for _, c := range groupCells {
			perKey, ok := tractScalars[c.TractID]
			if !ok {
				continue
			}
			denom := tractTotalArea[c.TractID]
			if denom <= 0 {
				continue
			}
			share := c.AreaKm2 / denom
			for k, v := range perKey {
				scalars[k] += v * share
			}
		}

		stationID := groupCells[0].StationID
		stationName := groupCells[0].StationName
		var anchorLat, anchorLon float64
		if s, ok := stationCoords[stationID]; ok {
			anchorLat = s.Lat
			anchorLon = s.Lon
		}

		out = append(out, Region{
			AtlasID:             key,
			StationID:           stationID,
			StationName:         stationName,
			AnchorLat:           anchorLat,
			AnchorLon:           anchorLon,
			CentroidLon:         centroidLon,
			CentroidLat:         centroidLat,
			AreaKm2:             totalArea,
			Borough:             borough,
			TractWeights:        tractWeights,
			RepresentativeTract: repTract,
			Scalars:             scalars,
			Cells:               groupCells,
		})
	}

	return out
}

func argmaxKey(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	bestVal := -1.0
	for _, k := range keys {
		if m[k] > bestVal {
			bestVal = m[k]
			best = k
		}
	}
	return best
}

func argmaxKeyFloat(m map[string]float64) string {
	return argmaxKey(m)
}

func slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range lower {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
