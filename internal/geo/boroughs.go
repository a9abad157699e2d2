package geo

// BoroughPolygons are coarse hand-drawn fallback boundaries used when
// a neighborhood feature carries no borough property, per spec.md
// section 9's first open question. The vertex lists are deliberately
// rough approximations of the five boroughs' outlines, good enough to
// classify a centroid but not a GIS-grade boundary; containment uses
// the same half-open ray-cast rule as general polygon tests (section
// 4.7) since spec.md does not call for a different one here.
var BoroughPolygons = map[string]Polygon{
	"Manhattan": {Outer: Ring{
		{Lon: -74.019, Lat: 40.700},
		{Lon: -73.972, Lat: 40.707},
		{Lon: -73.933, Lat: 40.797},
		{Lon: -73.910, Lat: 40.875},
		{Lon: -73.933, Lat: 40.885},
		{Lon: -73.968, Lat: 40.825},
		{Lon: -74.013, Lat: 40.712},
		{Lon: -74.019, Lat: 40.700},
	}},
	"Brooklyn": {Outer: Ring{
		{Lon: -74.042, Lat: 40.570},
		{Lon: -73.856, Lat: 40.570},
		{Lon: -73.833, Lat: 40.650},
		{Lon: -73.866, Lat: 40.739},
		{Lon: -73.958, Lat: 40.739},
		{Lon: -74.042, Lat: 40.640},
		{Lon: -74.042, Lat: 40.570},
	}},
	"Queens": {Outer: Ring{
		{Lon: -73.962, Lat: 40.541},
		{Lon: -73.700, Lat: 40.541},
		{Lon: -73.700, Lat: 40.800},
		{Lon: -73.833, Lat: 40.800},
		{Lon: -73.866, Lat: 40.739},
		{Lon: -73.958, Lat: 40.739},
		{Lon: -73.962, Lat: 40.541},
	}},
	"Bronx": {Outer: Ring{
		{Lon: -73.933, Lat: 40.785},
		{Lon: -73.765, Lat: 40.785},
		{Lon: -73.765, Lat: 40.915},
		{Lon: -73.910, Lat: 40.915},
		{Lon: -73.933, Lat: 40.875},
		{Lon: -73.933, Lat: 40.785},
	}},
	"Staten Island": {Outer: Ring{
		{Lon: -74.259, Lat: 40.477},
		{Lon: -74.050, Lat: 40.477},
		{Lon: -74.050, Lat: 40.652},
		{Lon: -74.259, Lat: 40.652},
		{Lon: -74.259, Lat: 40.477},
	}},
}

// DefaultAllowedBoroughs are the two boroughs CorridorScorer admits
// origins from by default, per spec.md section 4.9.
var DefaultAllowedBoroughs = []string{"Brooklyn", "Queens"}

// DefaultTriBoroughs are the three boroughs whose feature bounds union
// to form Tessellator's global bounding box, per spec.md section 4.10.
var DefaultTriBoroughs = []string{"Manhattan", "Brooklyn", "Queens"}

// BoroughForPoint walks BoroughPolygons in a stable name order and
// returns the first one containing pt, or "" if none does.
func BoroughForPoint(pt Point) string {
	for _, name := range []string{"Manhattan", "Brooklyn", "Queens", "Bronx", "Staten Island"} {
		if BoroughPolygons[name].Contains(pt) {
			return name
		}
	}
	return ""
}
