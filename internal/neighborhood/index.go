// Package neighborhood attaches each input neighborhood polygon to a
// representative stop and assigns it a stable identifier, per spec.md
// component C8 (NeighborhoodIndex).
package neighborhood

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/tgrcode/transit-atlas/internal/geo"
)

// idKeys and the name/borough equivalents are the recognized property
// keys from spec.md section 6.
var idKeys = []string{"NTACode", "nta_code", "nta", "id", "GEOID", "geoid"}
var nameKeys = []string{"NTAName", "nta_name", "name", "neighborhood", "ntaname"}
var boroughKeys = []string{"boroname", "BoroName", "boro_name", "borough", "Borough"}

// ActiveStop is the minimal shape NeighborhoodIndex needs from a feed
// stop to pick a representative.
type ActiveStop struct {
	ID  string
	Lat float64
	Lon float64
}

// Neighborhood is one resolved row, per spec.md section 3.
type Neighborhood struct {
	AtlasID    string
	Name       string
	Borough    string
	Centroid   geo.Point
	StopID     string
	HasBorough bool
	Polygon    geo.Polygon
	HasPolygon bool
	featureIdx int
}

// Build resolves every feature in fc into a Neighborhood, matching it
// to the nearest active stop by centroid haversine distance and
// stamping a stable atlas_id back into the feature's properties.
func Build(fc *geojson.FeatureCollection, stops []ActiveStop) ([]Neighborhood, error) {
	used := map[string]int{}
	out := make([]Neighborhood, 0, len(fc.Features))

	for idx, f := range fc.Features {
		centroid, ok := featureCentroid(f.Geometry)
		if !ok {
			continue
		}

		name := firstProp(f.Properties, nameKeys)
		borough, hasBorough := firstPropOK(f.Properties, boroughKeys)

		id := stableID(f.Properties, name, idx, used)
		f.Properties["atlas_id"] = id

		stopID := nearestStop(centroid, stops)
		polygon, hasPolygon := geo.FromOrbGeometry(f.Geometry)

		out = append(out, Neighborhood{
			AtlasID:    id,
			Name:       name,
			Borough:    borough,
			Centroid:   centroid,
			StopID:     stopID,
			HasBorough: hasBorough,
			Polygon:    polygon,
			HasPolygon: hasPolygon,
			featureIdx: idx,
		})
	}

	return out, nil
}

func featureCentroid(g orb.Geometry) (geo.Point, bool) {
	switch t := g.(type) {
	case orb.Point:
		return geo.Point{Lon: t[0], Lat: t[1]}, true
	case orb.Polygon:
		return polygonCentroid(t), true
	case orb.MultiPolygon:
		if len(t) == 0 {
			return geo.Point{}, false
		}
		sumLon, sumLat, n := 0.0, 0.0, 0
		for _, poly := range t {
			for _, ring := range poly {
				for _, pt := range ring {
					sumLon += pt[0]
					sumLat += pt[1]
					n++
				}
			}
		}
		if n == 0 {
			return geo.Point{}, false
		}
		return geo.Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}, true
	default:
		return geo.Point{}, false
	}
}

func polygonCentroid(p orb.Polygon) geo.Point {
	sumLon, sumLat, n := 0.0, 0.0, 0
	for _, ring := range p {
		for _, pt := range ring {
			sumLon += pt[0]
			sumLat += pt[1]
			n++
		}
	}
	if n == 0 {
		return geo.Point{}
	}
	return geo.Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
}

func nearestStop(centroid geo.Point, stops []ActiveStop) string {
	best := ""
	bestDist := -1.0
	for _, s := range stops {
		d := geo.HaversineM(centroid, geo.Point{Lon: s.Lon, Lat: s.Lat})
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = s.ID
		}
	}
	return best
}

func firstProp(props geojson.Properties, keys []string) string {
	v, _ := firstPropOK(props, keys)
	return v
}

func firstPropOK(props geojson.Properties, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// stableID builds the identifier described in spec.md section 4.8:
// prefer a recognized id property, otherwise a slug of the name
// suffixed with the feature's ordinal index; collisions receive a
// "-<idx>" disambiguation suffix.
func stableID(props geojson.Properties, name string, idx int, used map[string]int) string {
	base := firstProp(props, idKeys)
	if base == "" {
		base = fmt.Sprintf("%s-%d", slugify(name), idx)
	}

	id := base
	if _, collided := used[base]; collided {
		id = fmt.Sprintf("%s-%d", base, idx)
	}
	used[base]++

	return id
}

func slugify(name string) string {
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

// SortedByAtlasID returns indexes of ns sorted by AtlasID, for
// deterministic neighborhood-ordinal assignment.
func SortedByAtlasID(ns []Neighborhood) []int {
	idx := make([]int, len(ns))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return ns[idx[i]].AtlasID < ns[idx[j]].AtlasID })
	return idx
}
