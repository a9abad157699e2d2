// Package geo implements the planar geometry primitives the atlas
// pipeline needs: haversine distance, ray-cast polygon containment,
// centroids and bounds, per spec.md component C7. Geometry is treated
// as planar lon/lat throughout; no reprojection is performed, per
// spec.md section 1's non-goals.
package geo

import "math"

const (
	earthRadiusKm = 6371.0
	earthRadiusM  = 6371000.0
)

// Point is a lon/lat pair, matching orb.Point's (x, y) = (lon, lat)
// convention so geo interoperates directly with paulmach/orb types.
type Point struct {
	Lon float64
	Lat float64
}

// HaversineKm returns the great-circle distance between a and b in
// kilometers.
func HaversineKm(a, b Point) float64 {
	return haversine(a, b, earthRadiusKm)
}

// HaversineM returns the great-circle distance between a and b in
// meters.
func HaversineM(a, b Point) float64 {
	return haversine(a, b, earthRadiusM)
}

func haversine(a, b Point, radius float64) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return radius * c
}

// Ring is a closed sequence of points (first and last need not be
// equal; containment treats it as implicitly closed).
type Ring []Point

// Polygon is an outer ring with zero or more hole rings subtracted,
// per spec.md section 4.7.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Bound is an axis-aligned lon/lat bounding box.
type Bound struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// Contains reports whether p falls inside b (inclusive both ends).
func (b Bound) Contains(p Point) bool {
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon && p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Intersects reports whether two bounds overlap.
func (b Bound) Intersects(o Bound) bool {
	return b.MinLon <= o.MaxLon && o.MinLon <= b.MaxLon && b.MinLat <= o.MaxLat && o.MinLat <= b.MaxLat
}

// Union returns the smallest bound containing both b and o.
func (b Bound) Union(o Bound) Bound {
	return Bound{
		MinLon: math.Min(b.MinLon, o.MinLon),
		MinLat: math.Min(b.MinLat, o.MinLat),
		MaxLon: math.Max(b.MaxLon, o.MaxLon),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
	}
}

// RingBound returns the bounding box of a ring's vertices.
func RingBound(r Ring) Bound {
	b := Bound{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, p := range r {
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b
}

// PolygonBound returns the outer ring's bounding box (holes never
// extend a polygon's bound).
func PolygonBound(p Polygon) Bound {
	return RingBound(p.Outer)
}

// Centroid returns the unweighted mean of every vertex across the
// outer ring and any holes, per spec.md section 4.8 (a polygon's
// centroid is the mean of "all vertices from its polygon rings").
func Centroid(p Polygon) Point {
	sumLon, sumLat, n := 0.0, 0.0, 0
	for _, pt := range p.Outer {
		sumLon += pt.Lon
		sumLat += pt.Lat
		n++
	}
	for _, hole := range p.Holes {
		for _, pt := range hole {
			sumLon += pt.Lon
			sumLat += pt.Lat
			n++
		}
	}
	if n == 0 {
		return Point{}
	}
	return Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
}

// Contains reports whether pt falls inside p: inside the outer ring
// and outside every hole, per spec.md section 4.7.
func (p Polygon) Contains(pt Point) bool {
	if !ringContains(p.Outer, pt) {
		return false
	}
	for _, hole := range p.Holes {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

// ringContains implements the standard ray-casting test: count
// crossings of a horizontal ray from pt to +inf longitude against
// every edge where exactly one endpoint is above pt's latitude.
// Divisor guards avoid zero-division at near-horizontal edges.
func ringContains(ring Ring, pt Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := ring[i]
		vj := ring[j]

		if (vi.Lat > pt.Lat) != (vj.Lat > pt.Lat) {
			dy := vj.Lat - vi.Lat
			if math.Abs(dy) < 1e-12 {
				j = i
				continue
			}

			slope := (vj.Lon - vi.Lon) / dy
			if math.Abs(slope) < 1e-9 {
				slope = 0
			}

			xIntersect := vi.Lon + (pt.Lat-vi.Lat)*slope
			if pt.Lon < xIntersect {
				inside = !inside
			}
		}

		j = i
	}

	return inside
}
