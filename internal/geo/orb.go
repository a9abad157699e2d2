package geo

import "github.com/paulmach/orb"

// FromOrbRing converts an orb.Ring into a geo.Ring.
func FromOrbRing(r orb.Ring) Ring {
	out := make(Ring, len(r))
	for i, pt := range r {
		out[i] = Point{Lon: pt[0], Lat: pt[1]}
	}
	return out
}

// FromOrbPolygon converts an orb.Polygon (outer ring + holes) into a
// geo.Polygon.
func FromOrbPolygon(p orb.Polygon) Polygon {
	if len(p) == 0 {
		return Polygon{}
	}
	poly := Polygon{Outer: FromOrbRing(p[0])}
	for _, hole := range p[1:] {
		poly.Holes = append(poly.Holes, FromOrbRing(hole))
	}
	return poly
}

// FromOrbGeometry converts a Polygon or MultiPolygon orb.Geometry into
// a single geo.Polygon, taking the largest-by-vertex-count member of a
// MultiPolygon as the representative shape (tessellation and naming
// only need one outer boundary per neighborhood feature).
func FromOrbGeometry(g orb.Geometry) (Polygon, bool) {
	switch t := g.(type) {
	case orb.Polygon:
		return FromOrbPolygon(t), true
	case orb.MultiPolygon:
		if len(t) == 0 {
			return Polygon{}, false
		}
		best := t[0]
		bestLen := 0
		if len(best) > 0 {
			bestLen = len(best[0])
		}
		for _, poly := range t[1:] {
			if len(poly) > 0 && len(poly[0]) > bestLen {
				best = poly
				bestLen = len(poly[0])
			}
		}
		return FromOrbPolygon(best), true
	default:
		return Polygon{}, false
	}
}
