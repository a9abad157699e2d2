package atlas

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tgrcode/transit-atlas/internal/atlaserr"
)

func buildAtlasZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, contents := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func squareFeature(name, borough string, minLon, minLat, maxLon, maxLat float64) string {
	return `{"type":"Feature","properties":{"ntaname":"` + name + `","boroname":"` + borough + `"},` +
		`"geometry":{"type":"Polygon","coordinates":[[` +
		coordPair(minLon, minLat) + "," + coordPair(minLon, maxLat) + "," +
		coordPair(maxLon, maxLat) + "," + coordPair(maxLon, minLat) + "," +
		coordPair(minLon, minLat) + `]]}}`
}

func coordPair(lon, lat float64) string {
	b, _ := json.Marshal([]float64{lon, lat})
	return string(b)
}

func fixtureFeed(t *testing.T) []byte {
	return buildAtlasZip(t, map[string]string{
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon,parent_station\n" +
			"S1,First St,40.708,-73.991,\n" +
			"S2,Second St,40.708,-73.975,\n" +
			"S3,Third St,40.724,-73.991,P1\n" +
			"S4,Fourth St,40.724,-73.975,P1\n",
		"trips.txt":    "trip_id,route_id,service_id\nT1,R1,WKDY\n",
		"routes.txt":   "route_id,route_short_name\nR1,1\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday\nWKDY,1,1,1,1,1,0,0\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\n" +
			"T1,S1,1,07:00:00,07:00:00\nT1,S2,2,07:05:00,07:05:00\n",
	})
}

func fixtureNeighborhoods() []byte {
	features := []string{
		squareFeature("N1", "Manhattan", -73.999, 40.700, -73.983, 40.716),
		squareFeature("N2", "Manhattan", -73.983, 40.700, -73.967, 40.716),
		squareFeature("N3", "Manhattan", -73.999, 40.716, -73.983, 40.732),
		squareFeature("N4", "Manhattan", -73.983, 40.716, -73.967, 40.732),
	}
	doc := `{"type":"FeatureCollection","features":[` +
		features[0] + "," + features[1] + "," + features[2] + "," + features[3] + `]}`
	return []byte(doc)
}

type decodedMatrix struct {
	Neighborhoods []struct {
		ID     string `json:"id"`
		StopID string `json:"stop_id"`
	} `json:"neighborhoods"`
	Minutes    [][]*int `json:"minutes"`
	FirstRoute [][]*int `json:"first_route"`
}

func TestRunProducesExpectedMatrixAndTransferEdges(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = []string{"weekday_am"}

	p := NewPipeline(cfg, func() string { return "2026-07-30T00:00:00Z" })

	out, err := p.Run(Inputs{
		FeedArchive:   fixtureFeed(t),
		Neighborhoods: fixtureNeighborhoods(),
		ScalarCSVs:    map[string][]byte{},
	})
	require.NoError(t, err)
	require.Contains(t, out.Files, "matrix_weekday_am.json")

	var m decodedMatrix
	require.NoError(t, json.Unmarshal(out.Files["matrix_weekday_am.json"], &m))

	byStop := map[string]int{}
	for i, n := range m.Neighborhoods {
		byStop[n.StopID] = i
	}

	n := len(m.Neighborhoods)
	for i := 0; i < n; i++ {
		require.NotNil(t, m.Minutes[i][i])
		require.Equal(t, 0, *m.Minutes[i][i])
		require.Nil(t, m.FirstRoute[i][i])
	}

	i1, i2 := byStop["S1"], byStop["S2"]
	require.NotNil(t, m.Minutes[i1][i2])
	require.Equal(t, 5, *m.Minutes[i1][i2])
	require.NotNil(t, m.FirstRoute[i1][i2])
	require.Equal(t, 0, *m.FirstRoute[i1][i2])

	i3, i4 := byStop["S3"], byStop["S4"]
	require.NotNil(t, m.Minutes[i3][i4])
	require.Equal(t, 2, *m.Minutes[i3][i4]) // floor((120+30)/60)
	require.Nil(t, m.FirstRoute[i3][i4])
}

func TestRunIsDeterministicAcrossRepeatedRuns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = []string{"weekday_am"}
	clock := func() string { return "2026-07-30T00:00:00Z" }

	in := Inputs{
		FeedArchive:   fixtureFeed(t),
		Neighborhoods: fixtureNeighborhoods(),
		ScalarCSVs:    map[string][]byte{},
	}

	out1, err := NewPipeline(cfg, clock).Run(in)
	require.NoError(t, err)
	out2, err := NewPipeline(cfg, clock).Run(in)
	require.NoError(t, err)

	require.Equal(t, len(out1.Files), len(out2.Files))
	for name, b1 := range out1.Files {
		b2, ok := out2.Files[name]
		require.True(t, ok, "missing file %s in second run", name)
		require.True(t, bytes.Equal(b1, b2), "file %s differs across runs", name)
	}
}

func TestRunReturnsTerminalErrorWhenNoTriBoroughCoverage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = []string{"weekday_am"}
	p := NewPipeline(cfg, func() string { return "2026-07-30T00:00:00Z" })

	doc := `{"type":"FeatureCollection","features":[` +
		squareFeature("Out of Scope", "New Jersey", -74.2, 40.7, -74.1, 40.8) + `]}`

	_, err := p.Run(Inputs{
		FeedArchive:   fixtureFeed(t),
		Neighborhoods: []byte(doc),
		ScalarCSVs:    map[string][]byte{},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, atlaserr.ErrNoMicroUnits))
	require.True(t, atlaserr.IsTerminal(err))
}

func TestRunReturnsTerminalErrorWhenFeedMissingStopTimes(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPipeline(cfg, func() string { return "2026-07-30T00:00:00Z" })

	files := map[string]string{
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\nS1,First,40.7,-73.9\n",
		"trips.txt": "trip_id,route_id,service_id\nT1,R1,WKDY\n",
	}

	_, err := p.Run(Inputs{
		FeedArchive:   buildAtlasZip(t, files),
		Neighborhoods: fixtureNeighborhoods(),
		ScalarCSVs:    map[string][]byte{},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, atlaserr.ErrFeedMissingTable))
}
