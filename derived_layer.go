package atlas

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tgrcode/transit-atlas/internal/atlaserr"
	"github.com/tgrcode/transit-atlas/internal/corridor"
	"github.com/tgrcode/transit-atlas/internal/derived"
	"github.com/tgrcode/transit-atlas/internal/feed"
	"github.com/tgrcode/transit-atlas/internal/geo"
	"github.com/tgrcode/transit-atlas/internal/graph"
	"github.com/tgrcode/transit-atlas/internal/matrix"
	"github.com/tgrcode/transit-atlas/internal/namer"
	"github.com/tgrcode/transit-atlas/internal/neighborhood"
	"github.com/tgrcode/transit-atlas/internal/tessellate"
	"sort"
)

// gazetteerNameKeys mirrors spec.md section 6's recognized name keys
// for the optional gazetteer.
var gazetteerNameKeys = []string{"name", "ntaname", "cdtaname", "neighborhood", "label"}

// runDerivedLayer builds the C10/C11/C12/C13 micro-unit tessellation,
// region coalescing, naming, and matrix re-projection, appending their
// outputs to out.
func (p *Pipeline) runDerivedLayer(
	in Inputs,
	fd *feed.Feed,
	sortedNeighborhoods []neighborhood.Neighborhood,
	routes []feed.Route,
	routeIndex map[string]int,
	routeShortName map[string]string,
	tractMinutesByWindow map[string][][]*int,
	tractFirstRouteByWindow map[string][][]*int,
	tractPenalizedHarmonicByWindow map[string][]float64,
	selected []graph.WindowDef,
	out *Outputs,
	neighborhoodsFC *geojson.FeatureCollection,
) error {
	tracts := make([]tessellate.Tract, 0, len(sortedNeighborhoods))
	tractOrdinal := make(map[string]int, len(sortedNeighborhoods))
	for i, n := range sortedNeighborhoods {
		tractOrdinal[n.AtlasID] = i
		if !n.HasPolygon {
			continue
		}
		tracts = append(tracts, tessellate.Tract{ID: n.AtlasID, Name: n.Name, Borough: n.Borough, Polygon: n.Polygon})
	}

	global, ok := tessellate.GlobalBound(tracts, p.Config.TriBoroughs)
	if !ok {
		return atlaserr.ErrNoMicroUnits
	}

	stations := make([]tessellate.Station, 0, len(fd.Stops))
	stationByID := make(map[string]tessellate.Station, len(fd.Stops))
	for _, s := range fd.Stops {
		st := tessellate.Station{ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon}
		stations = append(stations, st)
		stationByID[s.ID] = st
	}

	cells := tessellate.Build(tracts, global, p.Config.GridStep, stations)
	if len(cells) == 0 {
		return atlaserr.ErrNoMicroUnits
	}

	tractScalars := parseScalarCSVs(in.ScalarCSVs)

	regions := tessellate.Coalesce(cells, stationByID, tractScalars)

	gazetteer, err := parseGazetteer(in.Gazetteer)
	if err != nil {
		return err
	}

	dedupeInputs := make([]namer.DeduplicateInput, len(regions))
	for i, r := range regions {
		result := namer.Resolve(r, gazetteer)
		dedupeInputs[i] = namer.DeduplicateInput{
			AtlasID:     r.AtlasID,
			Result:      result,
			StationName: r.StationName,
			StationLat:  r.AnchorLat,
			StationLon:  r.AnchorLon,
			CentroidLat: r.CentroidLat,
			CentroidLon: r.CentroidLon,
		}
	}
	resolvedNames := namer.Deduplicate(dedupeInputs)

	nameByAtlasID := make(map[string]namer.Resolved, len(resolvedNames))
	for _, r := range resolvedNames {
		nameByAtlasID[r.AtlasID] = r
	}

	regionByID := make(map[string]tessellate.Region, len(regions))
	var regionOrder []string
	for _, r := range regions {
		regionByID[r.AtlasID] = r
		regionOrder = append(regionOrder, r.AtlasID)
	}
	sort.Strings(regionOrder)

	regionWeights := make([]derived.RegionWeights, len(regionOrder))
	for i, id := range regionOrder {
		r := regionByID[id]
		weights := make(map[int]float64, len(r.TractWeights))
		for tractID, w := range r.TractWeights {
			if ord, ok := tractOrdinal[tractID]; ok {
				weights[ord] = w
			}
		}
		repOrdinal := -1
		if ord, ok := tractOrdinal[r.RepresentativeTract]; ok {
			repOrdinal = ord
		}
		regionWeights[i] = derived.RegionWeights{Weights: weights, RepresentativeTract: repOrdinal}
	}

	derivedOrigins := make([]corridor.Origin, len(regionOrder))
	derivedNeighborhoodOut := make([]NeighborhoodOut, len(regionOrder))
	for i, id := range regionOrder {
		r := regionByID[id]
		name := nameByAtlasID[id]
		derivedOrigins[i] = corridor.Origin{AtlasID: id, Centroid: geo.Point{Lon: r.CentroidLon, Lat: r.CentroidLat}, Borough: r.Borough, HasBorough: r.Borough != ""}
		derivedNeighborhoodOut[i] = NeighborhoodOut{
			ID:        id,
			Name:      name.Primary,
			Borough:   r.Borough,
			Centroid:  []float64{r.CentroidLat, r.CentroidLon},
			StopID:    r.StationID,
			StopIndex: i,
		}
	}
	allowedFn := corridor.AllowedByBorough(p.Config.AllowedBoroughs, p.Config.ExcludedFallbackBoroughs)

	routesOut := make([]RouteOut, len(routes))
	for i, r := range routes {
		routesOut[i] = RouteOut{ID: r.ID, ShortName: r.ShortName, Color: r.Color, TextColor: r.TextColor}
	}

	derivedCorridors := TeleportCorridorsOutput{GeneratedAt: p.Now(), Windows: map[string]ProfileCorridorsOut{}}

	for _, w := range selected {
		tractMinutes := tractMinutesByWindow[w.Window.ID]
		tractFirstRoute := tractFirstRouteByWindow[w.Window.ID]

		derivedMinutes := derived.Project(tractMinutes, regionWeights)
		derivedFirstRoute := derived.ProjectFirstRoute(tractFirstRoute, regionWeights)

		bundle := matrix.Centralities(derivedMinutes, derivedMinutes)
		bundle.Metrics["transfer_penalized"] = reprojectPenalizedHarmonic(tractPenalizedHarmonicByWindow[w.Window.ID], regionWeights)

		matrixOut := MatrixOutput{
			GeneratedAt:   p.Now(),
			Window:        WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			Neighborhoods: derivedNeighborhoodOut,
			Routes:        routesOut,
			Minutes:       derivedMinutes,
			FirstRoute:    derivedFirstRoute,
			Centrality:    CentralityOut{Default: bundle.Default, Metrics: bundle.Metrics},
		}
		if b, err := jsonMarshalIndent(matrixOut); err == nil {
			out.Files[fmt.Sprintf("matrix_%s_derived.json", w.Window.ID)] = b
		}

		stopsOut := make([]StopOut, len(regionOrder))
		for i, id := range regionOrder {
			r := regionByID[id]
			stopsOut[i] = StopOut{ID: r.StationID, Name: r.StationName, Lat: r.AnchorLat, Lon: r.AnchorLon}
		}

		graphOut := GraphOutput{
			GeneratedAt:   p.Now(),
			Window:        WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			Stops:         stopsOut,
			Routes:        routesOut,
			Edges:         regionGraphEdges(derivedMinutes, derivedFirstRoute),
			Neighborhoods: derivedNeighborhoodOut,
		}
		if b, err := jsonMarshalIndent(graphOut); err == nil {
			out.Files[fmt.Sprintf("graph_%s_derived.json", w.Window.ID)] = b
		}

		lookup := matrixLookup{minutes: derivedMinutes, firstRoute: derivedFirstRoute, routeShortName: routeShortName, routes: routes}

		hubs := map[string]HubOut{}
		corridorsByKey := map[string]CorridorListsOut{}
		for _, anchor := range p.Config.HubAnchors {
			hubIdx := corridor.NearestNeighborhood(anchor, derivedOrigins)
			if hubIdx < 0 {
				continue
			}
			hub := derivedOrigins[hubIdx]
			name := nameByAtlasID[hub.AtlasID]

			hubs[anchor.Key] = HubOut{
				Key:      anchor.Key,
				Label:    anchor.Label,
				ID:       hub.AtlasID,
				Name:     name.Primary,
				Centroid: []float64{hub.Centroid.Lat, hub.Centroid.Lon},
			}

			cfg := corridor.Config{
				MaxMinutes:            p.Config.MaxMinutes,
				TopN:                  p.Config.TopN,
				ExpectedSpeedKmPerMin: p.Config.ExpectedSpeedKmPerMin,
				AllowedBoroughs:       p.Config.AllowedBoroughs,
			}
			entries := corridor.Score(cfg, derivedOrigins, hubIdx, lookup, allowedFn)
			underrated, speed := corridor.TopLists(cfg, entries)
			corridorsByKey[anchor.Key] = CorridorListsOut{
				TopUnderrated: toCorridorEntries(underrated),
				TopSpeed:      toCorridorEntries(speed),
			}
		}

		derivedCorridors.Windows[w.Window.ID] = ProfileCorridorsOut{
			Window:                WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			MaxMinutes:            p.Config.MaxMinutes,
			ExpectedSpeedKmPerMin: p.Config.ExpectedSpeedKmPerMin,
			Hubs:                  hubs,
			Corridors:             corridorsByKey,
		}
	}

	if b, err := jsonMarshalIndent(derivedCorridors); err == nil {
		out.Files["teleport_corridors_derived.json"] = b
	}

	// cellSquare rebuilds a micro-cell's footprint as a geo.Polygon so it
	// can go back out through orbPolygon like any other atlas geometry.
	cellSquare := func(center geo.Point, half float64) geo.Polygon {
		return geo.Polygon{Outer: geo.Ring{
			{Lon: center.Lon - half, Lat: center.Lat - half},
			{Lon: center.Lon + half, Lat: center.Lat - half},
			{Lon: center.Lon + half, Lat: center.Lat + half},
			{Lon: center.Lon - half, Lat: center.Lat + half},
			{Lon: center.Lon - half, Lat: center.Lat - half},
		}}
	}

	microFC := geojson.NewFeatureCollection()
	for _, c := range cells {
		half := p.Config.GridStep / 2
		feature := geojson.NewFeature(orbPolygon(cellSquare(c.Centroid, half)))
		feature.Properties = geojson.Properties{
			"micro_id":     fmt.Sprintf("%d-%d", c.Col, c.Row),
			"tract_id":     c.TractID,
			"tract_name":   c.TractName,
			"borough":      c.Borough,
			"coverage":     c.Coverage,
			"area_km2":     c.AreaKm2,
			"station_id":   c.StationID,
			"station_name": c.StationName,
		}
		microFC.Append(feature)
	}
	if b, err := microFC.MarshalJSON(); err == nil {
		out.Files["micro_units.geojson"] = b
	}

	derivedFC := geojson.NewFeatureCollection()
	for _, id := range regionOrder {
		r := regionByID[id]
		name := nameByAtlasID[id]

		var polys orb.MultiPolygon
		for _, c := range r.Cells {
			half := p.Config.GridStep / 2
			polys = append(polys, orbPolygon(cellSquare(c.Centroid, half)))
		}

		feature := geojson.NewFeature(polys)
		feature.Properties = geojson.Properties{
			"atlas_id":               id,
			"primary_name":           name.Primary,
			"name":                   name.Primary,
			"aliases":                name.Aliases,
			"name_confidence":        name.Confidence,
			"borough":                r.Borough,
			"anchor_station":         r.StationID,
			"station_id":             r.StationID,
			"anchor_station_lat":     r.AnchorLat,
			"anchor_station_lon":     r.AnchorLon,
			"representative_tract_id": r.RepresentativeTract,
			"tract_weights":          r.TractWeights,
			"scalars":                r.Scalars,
		}
		derivedFC.Append(feature)
	}
	if b, err := derivedFC.MarshalJSON(); err == nil {
		out.Files["derived_regions.geojson"] = b
	}

	return nil
}

// reprojectPenalizedHarmonic re-derives the transfer-penalized
// harmonic centrality for each region as a tract-weight-weighted
// average of the tract-level values, per spec.md section 4.13 ("the
// transfer-penalized metric is re-projected by row-weighted average")
// rather than recomputed from a penalized derived graph.
func reprojectPenalizedHarmonic(tractScores []float64, regions []derived.RegionWeights) []float64 {
	out := make([]float64, len(regions))
	for r, rw := range regions {
		sum, weight := 0.0, 0.0
		for i, w := range rw.Weights {
			if i >= len(tractScores) {
				continue
			}
			sum += w * tractScores[i]
			weight += w
		}
		if weight > 0 {
			out[r] = sum / weight
		}
	}
	return out
}

func regionGraphEdges(minutes [][]*int, firstRoute [][]*int) []EdgeOut {
	var edges []EdgeOut
	for i := range minutes {
		for j := range minutes[i] {
			if i == j || minutes[i][j] == nil {
				continue
			}
			edges = append(edges, EdgeOut{U: i, V: j, Minutes: *minutes[i][j], RouteIdx: firstRoute[i][j]})
		}
	}
	return edges
}

func parseScalarCSVs(csvs map[string][]byte) map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	for key, data := range csvs {
		reader := csv.NewReader(strings.NewReader(string(data)))
		reader.FieldsPerRecord = -1

		header, err := reader.Read()
		if err != nil {
			continue
		}
		idIdx, valIdx := -1, -1
		for i, h := range header {
			switch strings.TrimSpace(h) {
			case "atlas_id":
				idIdx = i
			case key:
				valIdx = i
			}
		}
		if idIdx < 0 || valIdx < 0 {
			continue
		}

		for {
			row, err := reader.Read()
			if err != nil {
				break
			}
			if idIdx >= len(row) || valIdx >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[valIdx]), 64)
			if err != nil {
				continue
			}
			id := row[idIdx]
			if out[id] == nil {
				out[id] = map[string]float64{}
			}
			out[id][key] = v
		}
	}
	return out
}

func parseGazetteer(data []byte) ([]namer.GazetteerEntry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing gazetteer geojson: %v", atlaserr.ErrIOFailure, err)
	}

	var out []namer.GazetteerEntry
	for _, feature := range fc.Features {
		name := ""
		for _, k := range gazetteerNameKeys {
			if v, ok := feature.Properties[k]; ok {
				if s, ok := v.(string); ok && s != "" {
					name = s
					break
				}
			}
		}
		if name == "" {
			continue
		}

		poly, ok := geo.FromOrbGeometry(feature.Geometry)
		if !ok {
			continue
		}
		out = append(out, namer.GazetteerEntry{Name: name, Polygon: poly})
	}

	return out, nil
}
