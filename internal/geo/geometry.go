package geo

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Centroid returns the planar centroid of g. For polygons this is the
// area-weighted centre, which is not guaranteed to fall inside the shape.
func Centroid(g orb.Geometry) orb.Point {
	c, _ := planar.CentroidArea(g)
	return c
}

// CenterOf returns the centroid of a set of points, i.e. their mean after
// removing exact duplicates.
func CenterOf(points []orb.Point) orb.Point {
	seen := make(map[orb.Point]bool, len(points))
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		if seen[p] {
			continue
		}
		seen[p] = true
		mp = append(mp, p)
	}
	if len(mp) == 0 {
		return orb.Point{}
	}
	c, _ := planar.CentroidArea(mp)
	return c
}

// Simplify applies Douglas-Peucker simplification with the given tolerance
// in degrees. Rings that collapse below four points keep their original
// vertices so polygons stay valid. A non-positive tolerance returns g.
func Simplify(g orb.Geometry, tolerance float64) orb.Geometry {
	if tolerance <= 0 || g == nil {
		return g
	}
	dp := simplify.DouglasPeucker(tolerance)

	switch g := g.(type) {
	case orb.Polygon:
		return simplifyPolygon(dp, g)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			out[i] = simplifyPolygon(dp, p)
		}
		return out
	}
	return dp.Simplify(orb.Clone(g))
}

func simplifyPolygon(dp *simplify.DouglasPeuckerSimplifier, p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		s := dp.Ring(ring.Clone())
		if len(s) < 4 {
			s = ring.Clone()
		}
		out[i] = s
	}
	return out
}

// Bounds returns the latitude/longitude rectangle covering every geometry.
func Bounds(geoms []orb.Geometry) s2.Rect {
	rect := s2.EmptyRect()
	for _, g := range geoms {
		if g == nil {
			continue
		}
		b := g.Bound()
		rect = rect.AddPoint(s2.LatLngFromDegrees(b.Min[1], b.Min[0]))
		rect = rect.AddPoint(s2.LatLngFromDegrees(b.Max[1], b.Max[0]))
	}
	return rect
}

// Geohash encodes a point as a geohash string.
func Geohash(p orb.Point) string {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
		return ""
	}
	return geohash.Encode(p[1], p[0])
}
