package namer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrcode/transit-atlas/internal/geo"
	"github.com/tgrcode/transit-atlas/internal/tessellate"
)

func TestResolveUsesGazetteerWhenDominantCoverage(t *testing.T) {
	region := tessellate.Region{
		StationName:         "Main St Station",
		RepresentativeTract: "Big Tract",
		Cells: []tessellate.MicroCell{
			{Centroid: geo.Point{Lon: 0.5, Lat: 0.5}, AreaKm2: 10},
		},
	}
	gazetteer := []GazetteerEntry{
		{Name: "Riverside", Polygon: geo.Polygon{Outer: geo.Ring{
			{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0},
		}}},
	}

	res := Resolve(region, gazetteer)
	require.Equal(t, "Riverside", res.Primary)
	require.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestResolveFallsBackToAnchorWhenNoGazetteerMatch(t *testing.T) {
	region := tessellate.Region{StationName: "Main St Station", RepresentativeTract: "Tract A"}
	res := Resolve(region, nil)
	require.Equal(t, "Main St Station area", res.Primary)
	require.Equal(t, namingConfidenceFloor, res.Confidence)
}

func TestResolveCompoundFallbackMatchesStationSubstring(t *testing.T) {
	region := tessellate.Region{
		StationName:         "Bedford Ave",
		RepresentativeTract: "Bedford-Stuyvesant",
	}
	res := Resolve(region, nil)
	require.Equal(t, "Bedford", res.Primary)
	require.InDelta(t, 0.35, res.Confidence, 1e-9)
}

func TestDeduplicateAppliesStationSuffixOnCollision(t *testing.T) {
	inputs := []DeduplicateInput{
		{AtlasID: "a1", Result: Result{Primary: "Park"}, StationName: "Station A", StationLat: 0, StationLon: 0, CentroidLat: 1, CentroidLon: 0},
		{AtlasID: "a2", Result: Result{Primary: "Park"}, StationName: "Station B", StationLat: 0, StationLon: 0, CentroidLat: -1, CentroidLon: 0},
	}

	out := Deduplicate(inputs)
	require.Len(t, out, 2)
	require.NotEqual(t, out[0].Primary, out[1].Primary)
	require.Contains(t, out[0].Primary, "Park")
	require.Contains(t, out[1].Primary, "Park")
}

func TestDeduplicateNoCollisionLeavesNamesUnchanged(t *testing.T) {
	inputs := []DeduplicateInput{
		{AtlasID: "a1", Result: Result{Primary: "Park"}},
		{AtlasID: "a2", Result: Result{Primary: "Garden"}},
	}
	out := Deduplicate(inputs)
	require.Equal(t, "Park", out[0].Primary)
	require.Equal(t, "Garden", out[1].Primary)
}
