package neighborhood

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
)

func polygonFeature(name, borough string, ring []orb.Point) *geojson.Feature {
	poly := orb.Polygon{orb.Ring(ring)}
	f := geojson.NewFeature(poly)
	f.Properties = geojson.Properties{
		"ntaname": name,
		"boroname": borough,
	}
	return f
}

func TestBuildAssignsNearestStopAndAtlasID(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature("Alpha", "Manhattan", []orb.Point{{0, 0}, {0, 2}, {2, 2}, {2, 0}}))
	fc.Append(polygonFeature("Beta", "Brooklyn", []orb.Point{{10, 10}, {10, 12}, {12, 12}, {12, 10}}))

	stops := []ActiveStop{
		{ID: "S1", Lon: 1, Lat: 1},
		{ID: "S2", Lon: 11, Lat: 11},
	}

	ns, err := Build(fc, stops)
	require.NoError(t, err)
	require.Len(t, ns, 2)

	require.Equal(t, "S1", ns[0].StopID)
	require.Equal(t, "Alpha", ns[0].Name)
	require.True(t, ns[0].HasBorough)
	require.Equal(t, "Manhattan", ns[0].Borough)
	require.True(t, ns[0].HasPolygon)

	require.Equal(t, "S2", ns[1].StopID)
}

func TestBuildDisambiguatesSlugCollisions(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(polygonFeature("Same Name", "Manhattan", []orb.Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}))
	fc.Append(polygonFeature("Same Name", "Manhattan", []orb.Point{{5, 5}, {5, 6}, {6, 6}, {6, 5}}))

	stops := []ActiveStop{{ID: "S1", Lon: 0.5, Lat: 0.5}, {ID: "S2", Lon: 5.5, Lat: 5.5}}

	ns, err := Build(fc, stops)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	require.NotEqual(t, ns[0].AtlasID, ns[1].AtlasID)
}

func TestSortedByAtlasIDOrdersDeterministically(t *testing.T) {
	ns := []Neighborhood{{AtlasID: "zeta"}, {AtlasID: "alpha"}, {AtlasID: "mu"}}
	order := SortedByAtlasID(ns)
	require.Equal(t, []string{"alpha", "mu", "zeta"}, []string{ns[order[0]].AtlasID, ns[order[1]].AtlasID, ns[order[2]].AtlasID})
}
