package atlas

import (
	"fmt"
	"sort"

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
)

// Inputs bundles every file spec.md section 6 names as an input.
type Inputs struct {
	FeedArchive     []byte
	Neighborhoods   []byte
	Gazetteer       []byte // optional, nil if absent
	ScalarCSVs      map[string][]byte // keyed by scalar key: population, housing_units, jobs
}

// Outputs bundles every file produced, keyed by filename as spec.md
// section 6 names them.
type Outputs struct {
	Files map[string][]byte
}

// Pipeline runs the batch atlas computation described in spec.md
// section 2's data-flow table, end to end.
type Pipeline struct {
	Config Config
	Now    func() string
}

// NewPipeline builds a Pipeline with the given config and a clock
// function (tests supply a fixed string; cmd/atlasgen supplies
// time.Now().UTC().Format(time.RFC3339)).
func NewPipeline(cfg Config, now func() string) *Pipeline {
	return &Pipeline{Config: cfg, Now: now}
}

// windowGraph pairs a window definition with its StopGraph.
type windowGraph struct {
	def graph.WindowDef
	g   graph.StopGraph
}

// Run executes C1 through C13 and produces every output document.
func (p *Pipeline) Run(in Inputs) (*Outputs, error) {
	f, err := feed.Load(in.FeedArchive)
	if err != nil {
		return nil, err
	}

	classes := feed.ClassifyServices(f.Calendar)

	selected := make([]graph.WindowDef, 0, len(graph.DefaultWindows))
	profileSet := map[string]bool{}
	for _, pr := range p.Config.Profiles {
		profileSet[pr] = true
	}
	for _, w := range graph.DefaultWindows {
		if profileSet[w.Window.ID] {
			selected = append(selected, w)
		}
	}

	agg := graph.NewAggregator(selected, f.Trips, classes)
	if err := f.StreamStopTimes(func(ev feed.StopTimeEvent) error {
		agg.Process(ev)
		return nil
	}); err != nil {
		return nil, err
	}
	segmentsByWindow := agg.Finish()

	parentOf := graph.ParentMap(f.Stops)
	stopIDs := graph.StopIDs(f.Stops)
	transferSecs := p.Config.transferSeconds()

	routes := append([]feed.Route(nil), f.Routes...)
	sort.Slice(routes, func(i, j int) bool { return routes[i].ID < routes[j].ID })
	routeIndex := make(map[string]int, len(routes))
	for i, r := range routes {
		routeIndex[r.ID] = i
	}
	routeShortName := make(map[string]string, len(routes))
	for _, r := range routes {
		routeShortName[r.ID] = r.ShortName
	}

	windows := make(map[string]windowGraph, len(selected))
	for _, w := range selected {
		segs := segmentsByWindow[w.Window.ID]
		g := graph.BuildStopGraph(segs, stopIDs, parentOf, transferSecs)
		windows[w.Window.ID] = windowGraph{def: w, g: g}
	}

	fc, err := geojson.UnmarshalFeatureCollection(in.Neighborhoods)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing neighborhoods geojson: %v", atlaserr.ErrIOFailure, err)
	}

	activeStops := make([]neighborhood.ActiveStop, 0, len(f.Stops))
	for _, s := range f.Stops {
		activeStops = append(activeStops, neighborhood.ActiveStop{ID: s.ID, Lat: s.Lat, Lon: s.Lon})
	}

	neighborhoods, err := neighborhood.Build(fc, activeStops)
	if err != nil {
		return nil, err
	}
	if len(neighborhoods) == 0 {
		return nil, atlaserr.ErrNeighborhoodUnmatched
	}

	order := neighborhood.SortedByAtlasID(neighborhoods)
	sortedNeighborhoods := make([]neighborhood.Neighborhood, len(order))
	for i, idx := range order {
		sortedNeighborhoods[i] = neighborhoods[idx]
	}
	for _, n := range sortedNeighborhoods {
		if n.StopID == "" {
			return nil, atlaserr.ErrNeighborhoodUnmatched
		}
	}

	stopLookup := make(map[string]feed.Stop, len(f.Stops))
	for _, s := range f.Stops {
		stopLookup[s.ID] = s
	}

	sources := make([]matrix.Source, len(sortedNeighborhoods))
	for i, n := range sortedNeighborhoods {
		sources[i] = matrix.Source{StopID: n.StopID}
	}

	neighborhoodOut := make([]NeighborhoodOut, len(sortedNeighborhoods))
	for i, n := range sortedNeighborhoods {
		neighborhoodOut[i] = NeighborhoodOut{
			ID:        n.AtlasID,
			Name:      n.Name,
			Borough:   n.Borough,
			Centroid:  []float64{n.Centroid.Lat, n.Centroid.Lon},
			StopID:    n.StopID,
			StopIndex: i,
		}
	}

	routesOut := make([]RouteOut, len(routes))
	for i, r := range routes {
		routesOut[i] = RouteOut{ID: r.ID, ShortName: r.ShortName, Color: r.Color, TextColor: r.TextColor}
	}

	out := &Outputs{Files: map[string][]byte{}}

	penaltySecs := p.Config.transferPenaltySeconds()

	tractMinutesByWindow := map[string][][]*int{}
	tractFirstRouteByWindow := map[string][][]*int{}
	tractPenalizedHarmonicByWindow := map[string][]float64{}

	for _, w := range selected {
		wg := windows[w.Window.ID]

		m := matrix.Build(wg.g, sources, routeIndex, 0)
		penalized := matrix.Build(wg.g, sources, routeIndex, penaltySecs)

		bundle := matrix.Centralities(m.Minutes, penalized.Minutes)

		tractMinutesByWindow[w.Window.ID] = m.Minutes
		tractFirstRouteByWindow[w.Window.ID] = m.FirstRoute
		tractPenalizedHarmonicByWindow[w.Window.ID] = bundle.Metrics["transfer_penalized"]

		matrixOut := MatrixOutput{
			GeneratedAt:   p.Now(),
			Window:        WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			Neighborhoods: neighborhoodOut,
			Routes:        routesOut,
			Minutes:       m.Minutes,
			FirstRoute:    m.FirstRoute,
			Centrality:    CentralityOut{Default: bundle.Default, Metrics: bundle.Metrics},
		}
		if b, err := jsonMarshalIndent(matrixOut); err == nil {
			out.Files[fmt.Sprintf("matrix_%s.json", w.Window.ID)] = b
		}

		stopsOut := make([]StopOut, 0, len(stopIDs))
		for _, id := range stopIDs {
			s := stopLookup[id]
			stopsOut = append(stopsOut, StopOut{ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon, ParentStation: s.ParentStation})
		}

		edges := buildEdgeList(wg.g, stopIDs, routeIndex)

		graphOut := GraphOutput{
			GeneratedAt:   p.Now(),
			Window:        WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			Stops:         stopsOut,
			Routes:        routesOut,
			Edges:         edges,
			Neighborhoods: neighborhoodOut,
		}
		if b, err := jsonMarshalIndent(graphOut); err == nil {
			out.Files[fmt.Sprintf("graph_%s.json", w.Window.ID)] = b
		}
	}

	origins := make([]corridor.Origin, len(sortedNeighborhoods))
	for i, n := range sortedNeighborhoods {
		origins[i] = corridor.Origin{AtlasID: n.AtlasID, Centroid: n.Centroid, Borough: n.Borough, HasBorough: n.HasBorough}
	}
	allowedFn := corridor.AllowedByBorough(p.Config.AllowedBoroughs, p.Config.ExcludedFallbackBoroughs)

	corridorsOut := TeleportCorridorsOutput{GeneratedAt: p.Now(), Windows: map[string]ProfileCorridorsOut{}}

	for _, w := range selected {
		minutes := tractMinutesByWindow[w.Window.ID]
		firstRoute := tractFirstRouteByWindow[w.Window.ID]

		lookup := matrixLookup{minutes: minutes, firstRoute: firstRoute, routeShortName: routeShortName, routes: routes}

		hubs := map[string]HubOut{}
		corridorsByKey := map[string]CorridorListsOut{}

		for _, anchor := range p.Config.HubAnchors {
			hubIdx := corridor.NearestNeighborhood(anchor, origins)
			if hubIdx < 0 {
				continue
			}
			hub := sortedNeighborhoods[hubIdx]

			hubs[anchor.Key] = HubOut{
				Key:      anchor.Key,
				Label:    anchor.Label,
				ID:       hub.AtlasID,
				Name:     hub.Name,
				Centroid: []float64{hub.Centroid.Lat, hub.Centroid.Lon},
			}

			cfg := corridor.Config{
				MaxMinutes:            p.Config.MaxMinutes,
				TopN:                  p.Config.TopN,
				ExpectedSpeedKmPerMin: p.Config.ExpectedSpeedKmPerMin,
				AllowedBoroughs:       p.Config.AllowedBoroughs,
			}

			entries := corridor.Score(cfg, origins, hubIdx, lookup, allowedFn)
			underrated, speed := corridor.TopLists(cfg, entries)

			corridorsByKey[anchor.Key] = CorridorListsOut{
				TopUnderrated: toCorridorEntries(underrated),
				TopSpeed:      toCorridorEntries(speed),
			}
		}

		corridorsOut.Windows[w.Window.ID] = ProfileCorridorsOut{
			Window:                WindowRef{ID: w.Window.ID, Label: w.Window.Label},
			MaxMinutes:            p.Config.MaxMinutes,
			ExpectedSpeedKmPerMin: p.Config.ExpectedSpeedKmPerMin,
			Hubs:                  hubs,
			Corridors:             corridorsByKey,
		}
	}

	if b, err := jsonMarshalIndent(corridorsOut); err == nil {
		out.Files["teleport_corridors.json"] = b
	}

	if err := p.runDerivedLayer(in, f, sortedNeighborhoods, routes, routeIndex, routeShortName, tractMinutesByWindow, tractFirstRouteByWindow, tractPenalizedHarmonicByWindow, selected, out, fc); err != nil {
		return nil, err
	}

	if b, err := fc.MarshalJSON(); err == nil {
		out.Files["neighborhoods.geojson"] = b
	}

	return out, nil
}

func buildEdgeList(g graph.StopGraph, stopIDs []string, routeIndex map[string]int) []EdgeOut {
	idxOf := make(map[string]int, len(stopIDs))
	for i, id := range stopIDs {
		idxOf[id] = i
	}

	var edges []EdgeOut
	for _, u := range stopIDs {
		for _, e := range g[u] {
			minutes := (e.Seconds + 30) / 60
			var routeIdx *int
			if e.Route != nil {
				if idx, ok := routeIndex[*e.Route]; ok {
					v := idx
					routeIdx = &v
				}
			}
			edges = append(edges, EdgeOut{U: idxOf[u], V: idxOf[e.To], Minutes: minutes, RouteIdx: routeIdx})
		}
	}
	return edges
}

func toCorridorEntries(entries []corridor.Entry) []CorridorEntryOut {
	out := make([]CorridorEntryOut, len(entries))
	for i, e := range entries {
		out[i] = CorridorEntryOut{
			OriginID:        e.OriginID,
			DistanceKm:      e.DistanceKm,
			KmPerMin:        e.KmPerMin,
			ExpectedMinutes: e.ExpectedMinutes,
			MinutesSaved:    e.MinutesSaved,
			FirstLine:       e.FirstLine,
		}
	}
	return out
}

// matrixLookup adapts a minutes/first_route matrix (tract-level or
// derived-region) to
// corridor.Score's minutesLookup interface, translating route-table
// ordinals into short-name strings.
type matrixLookup struct {
	minutes        [][]*int
	firstRoute     [][]*int
	routeShortName map[string]string
	routes         []feed.Route
}

func (m matrixLookup) Minutes(i, j int) *int { return m.minutes[i][j] }

func (m matrixLookup) FirstRoute(i, j int) *string {
	idx := m.firstRoute[i][j]
	if idx == nil || *idx < 0 || *idx >= len(m.routes) {
		return nil
	}
	name := m.routes[*idx].ShortName
	return &name
}

// orbPolygon rebuilds an orb.Polygon from a geo.Polygon, used when
// writing GeoJSON geometry back out.
func orbPolygon(p geo.Polygon) orb.Polygon {
	poly := orb.Polygon{toOrbRing(p.Outer)}
	for _, h := range p.Holes {
		poly = append(poly, toOrbRing(h))
	}
	return poly
}

func toOrbRing(r geo.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, pt := range r {
		out[i] = orb.Point{pt.Lon, pt.Lat}
	}
	return out
}
