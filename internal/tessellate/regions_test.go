package tessellate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrcode/transit-atlas/internal/geo"
)

func cell(col, row int, tractID, borough, stationID, stationName string, area float64) MicroCell {
	return MicroCell{
		Col: col, Row: row,
		Centroid:    geo.Point{Lon: float64(col), Lat: float64(row)},
		TractID:     tractID,
		Borough:     borough,
		AreaKm2:     area,
		StationID:   stationID,
		StationName: stationName,
	}
}

func TestCoalesceGroupsByStationAndAggregatesArea(t *testing.T) {
	cells := []MicroCell{
		cell(0, 0, "T1", "Manhattan", "S1", "Station One", 1.0),
		cell(1, 0, "T1", "Manhattan", "S1", "Station One", 1.0),
		cell(0, 1, "T2", "Brooklyn", "S2", "Station Two", 2.0),
	}

	regions := Coalesce(cells, map[string]Station{
		"S1": {ID: "S1", Name: "Station One", Lat: 1, Lon: 1},
		"S2": {ID: "S2", Name: "Station Two", Lat: 2, Lon: 2},
	}, nil)

	require.Len(t, regions, 2)

	var s1Region *Region
	for i := range regions {
		if regions[i].StationID == "S1" {
			s1Region = &regions[i]
		}
	}
	require.NotNil(t, s1Region)
	require.InDelta(t, 2.0, s1Region.AreaKm2, 1e-9)
	require.Equal(t, "Manhattan", s1Region.Borough)
	require.InDelta(t, 1.0, s1Region.TractWeights["T1"], 1e-9)
}

func TestCoalesceProratesScalarsByAreaShare(t *testing.T) {
	cells := []MicroCell{
		cell(0, 0, "T1", "Manhattan", "S1", "Station One", 1.0),
		cell(1, 0, "T1", "Manhattan", "S2", "Station Two", 1.0),
	}

	scalars := map[string]map[string]float64{
		"T1": {"population": 100},
	}

	regions := Coalesce(cells, map[string]Station{
		"S1": {ID: "S1", Name: "Station One"},
		"S2": {ID: "S2", Name: "Station Two"},
	}, scalars)

	require.Len(t, regions, 2)
	total := 0.0
	for _, r := range regions {
		total += r.Scalars["population"]
	}
	require.InDelta(t, 100.0, total, 1e-9)
}

func TestTractTotalCoveredAreaSumsAcrossCells(t *testing.T) {
	cells := []MicroCell{
		cell(0, 0, "T1", "Manhattan", "S1", "Station One", 1.0),
		cell(1, 0, "T1", "Manhattan", "S1", "Station One", 2.0),
	}
	totals := TractTotalCoveredArea(cells)
	require.InDelta(t, 3.0, totals["T1"], 1e-9)
}
