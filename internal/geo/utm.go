package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// WGS84 ellipsoid and UTM constants.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	utmK0  = 0.9996
	utmE0  = 500000.0
	utmN0  = 10000000.0 // false northing, southern hemisphere
)

// utmToWGS84 converts a UTM easting/northing in the given zone to
// longitude/latitude degrees using the Snyder inverse series, which is
// accurate to well under a millimetre inside a zone.
func utmToWGS84(p orb.Point, zone int, south bool) orb.Point {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)

	x := p[0] - utmE0
	y := p[1]
	if south {
		y -= utmN0
	}
	lon0 := float64((zone-1)*6-180+3) * math.Pi / 180

	m := y / utmK0
	mu := m / (wgs84A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sin, cos, tan := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	c1 := ep2 * cos * cos
	t1 := tan * tan
	n1 := wgs84A / math.Sqrt(1-e2*sin*sin)
	r1 := wgs84A * (1 - e2) / math.Pow(1-e2*sin*sin, 1.5)
	d := x / (n1 * utmK0)

	lat := phi1 - (n1*tan/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lon := lon0 + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cos

	return orb.Point{lon * 180 / math.Pi, lat * 180 / math.Pi}
}
