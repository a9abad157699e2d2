// Package corridor scores neighborhood-to-hub travel relative to an
// expected driving-speed baseline and produces top-N corridor lists,
// per spec.md component C9 (CorridorScorer).
package corridor

import (
	"sort"

	"github.com/tgrcode/transit-atlas/internal/geo"
)

const hardTopNCap = 200

// Anchor is a named hub point, per spec.md section 6's configuration
// (hub anchor list).
type Anchor struct {
	Key   string
	Label string
	Point geo.Point
}

// DefaultHubs are the nine hub anchors spec.md section 6 calls for
// "from the source" when no override is configured, taken verbatim
// from build_matrix.py's hubs_cfg.
var DefaultHubs = []Anchor{
	{Key: "midtown", Label: "Midtown", Point: geo.Point{Lon: -73.984, Lat: 40.754}},
	{Key: "downtown", Label: "Downtown", Point: geo.Point{Lon: -74.011, Lat: 40.707}},
	{Key: "williamsburg", Label: "Williamsburg", Point: geo.Point{Lon: -73.958, Lat: 40.711}},
	{Key: "downtown_bk", Label: "Downtown BK", Point: geo.Point{Lon: -73.985, Lat: 40.692}},
	{Key: "lic", Label: "LIC", Point: geo.Point{Lon: -73.949, Lat: 40.744}},
	{Key: "hudson_yards", Label: "Hudson Yards", Point: geo.Point{Lon: -74.002, Lat: 40.754}},
	{Key: "greenpoint", Label: "Greenpoint", Point: geo.Point{Lon: -73.955, Lat: 40.729}},
	{Key: "bushwick", Label: "Bushwick", Point: geo.Point{Lon: -73.918, Lat: 40.695}},
	{Key: "astoria", Label: "Astoria", Point: geo.Point{Lon: -73.923, Lat: 40.764}},
}

// Origin is the minimal shape CorridorScorer needs from a resolved
// neighborhood.
type Origin struct {
	AtlasID    string
	Centroid   geo.Point
	Borough    string
	HasBorough bool
}

// Entry is one scored origin->hub corridor, per spec.md section 4.9.
type Entry struct {
	OriginID        string
	DistanceKm      float64
	KmPerMin        float64
	ExpectedMinutes float64
	MinutesSaved    float64
	FirstLine       *string
}

// HubResult is one anchor's resolved target neighborhood plus its top
// lists, per spec.md section 6's teleport_corridors.json shape.
type HubResult struct {
	Anchor         Anchor
	NeighborhoodID string
	TopUnderrated  []Entry
	TopSpeed       []Entry
}

// Config bundles the tunables of section 4.9/section 6.
type Config struct {
	MaxMinutes       int
	TopN             int
	ExpectedSpeedKmPerMin float64
	AllowedBoroughs  []string
}

// NearestNeighborhood picks the neighborhood whose centroid is
// closest to the anchor, by haversine.
func NearestNeighborhood(anchor Anchor, origins []Origin) int {
	best := -1
	bestDist := -1.0
	for i, o := range origins {
		d := geo.HaversineKm(anchor.Point, o.Centroid)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// minutesLookup supplies minutes[i][j] and first_route[i][j] to Score
// without the corridor package needing to know the matrix's shape.
type minutesLookup interface {
	Minutes(i, j int) *int
	FirstRoute(i, j int) *string
}

// Score evaluates every origin against one hub index using matrix
// rows already computed by MatrixBuilder, per spec.md section 4.9.
func Score(cfg Config, origins []Origin, hubIdx int, lookup minutesLookup, isAllowedBorough func(Origin) bool) []Entry {
	var entries []Entry

	hub := origins[hubIdx]

	for i, origin := range origins {
		if i == hubIdx {
			continue
		}
		if !isAllowedBorough(origin) {
			continue
		}

		minutesPtr := lookup.Minutes(i, hubIdx)
		if minutesPtr == nil || *minutesPtr <= 0 || *minutesPtr > cfg.MaxMinutes {
			continue
		}
		minutes := float64(*minutesPtr)

		distanceKm := geo.HaversineKm(origin.Centroid, hub.Centroid)
		kmPerMin := 0.0
		if minutes > 0 {
			kmPerMin = distanceKm / minutes
		}
		expectedMinutes := 0.0
		if cfg.ExpectedSpeedKmPerMin > 0 {
			expectedMinutes = distanceKm / cfg.ExpectedSpeedKmPerMin
		}
		minutesSaved := expectedMinutes - minutes

		entries = append(entries, Entry{
			OriginID:        origin.AtlasID,
			DistanceKm:      distanceKm,
			KmPerMin:        kmPerMin,
			ExpectedMinutes: expectedMinutes,
			MinutesSaved:    minutesSaved,
			FirstLine:       lookup.FirstRoute(i, hubIdx),
		})
	}

	return entries
}

// TopLists slices entries into the two ranked views of section 4.9,
// each stable-sorted by origin id to break ties deterministically and
// capped at min(cfg.TopN, 200), or at 200 when cfg.TopN is not
// positive.
func TopLists(cfg Config, entries []Entry) (underrated, speed []Entry) {
	cap := cfg.TopN
	if cap <= 0 || cap > hardTopNCap {
		cap = hardTopNCap
	}

	underrated = append([]Entry(nil), entries...)
	sort.SliceStable(underrated, func(i, j int) bool {
		if underrated[i].MinutesSaved != underrated[j].MinutesSaved {
			return underrated[i].MinutesSaved > underrated[j].MinutesSaved
		}
		if underrated[i].DistanceKm != underrated[j].DistanceKm {
			return underrated[i].DistanceKm > underrated[j].DistanceKm
		}
		return underrated[i].OriginID < underrated[j].OriginID
	})
	if len(underrated) > cap {
		underrated = underrated[:cap]
	}

	speed = append([]Entry(nil), entries...)
	sort.SliceStable(speed, func(i, j int) bool {
		if speed[i].KmPerMin != speed[j].KmPerMin {
			return speed[i].KmPerMin > speed[j].KmPerMin
		}
		if speed[i].DistanceKm != speed[j].DistanceKm {
			return speed[i].DistanceKm > speed[j].DistanceKm
		}
		return speed[i].OriginID < speed[j].OriginID
	})
	if len(speed) > cap {
		speed = speed[:cap]
	}

	return underrated, speed
}

// AllowedByBorough implements spec.md 4.9's default admission rule:
// pass if the origin's borough is in the allowed set; when borough
// metadata is missing, fall back to the coarse polygon test, passing
// iff the centroid is NOT inside any of the three excluded boroughs.
func AllowedByBorough(allowed []string, excludedFallback []string) func(Origin) bool {
	allowedSet := map[string]bool{}
	for _, b := range allowed {
		allowedSet[b] = true
	}
	excludedSet := map[string]bool{}
	for _, b := range excludedFallback {
		excludedSet[b] = true
	}

	return func(o Origin) bool {
		if o.HasBorough {
			return allowedSet[o.Borough]
		}
		borough := geo.BoroughForPoint(o.Centroid)
		if borough == "" {
			return true
		}
		return !excludedSet[borough]
	}
}
