package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type GeoSuite struct{}

var _ = Suite(&GeoSuite{})

const utm48S = `PROJCS["WGS_1984_UTM_Zone_48S",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",500000.0],PARAMETER["False_Northing",10000000.0],PARAMETER["Central_Meridian",105.0],PARAMETER["Scale_Factor",0.9996],PARAMETER["Latitude_Of_Origin",0.0],UNIT["Meter",1.0]]`

const webMercator = `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere",GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Mercator_Auxiliary_Sphere"],UNIT["Meter",1.0]]`

const geographic = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func (s *GeoSuite) TestDetectCRS(c *C) {
	crs, err := DetectCRS(utm48S)
	c.Assert(err, IsNil)
	c.Assert(crs, Equals, CRS{Kind: UTM, Zone: 48, South: true})
	c.Assert(crs.String(), Equals, "EPSG:32748")

	crs, err = DetectCRS(webMercator)
	c.Assert(err, IsNil)
	c.Assert(crs.Kind, Equals, WebMercator)

	crs, err = DetectCRS(geographic)
	c.Assert(err, IsNil)
	c.Assert(crs, Equals, WGS84)

	crs, err = DetectCRS("   ")
	c.Assert(err, IsNil)
	c.Assert(crs, Equals, WGS84)

	_, err = DetectCRS(`PROJCS["Lambert",PROJECTION["Lambert_Conformal_Conic"]]`)
	c.Assert(err, NotNil)

	_, err = DetectCRS("garbage")
	c.Assert(err, NotNil)
}

func (s *GeoSuite) TestParseCRS(c *C) {
	cases := map[string]CRS{
		"EPSG:4326":  WGS84,
		"epsg:3857":  {Kind: WebMercator},
		"900913":     {Kind: WebMercator},
		"EPSG:32648": {Kind: UTM, Zone: 48},
		"EPSG:32748": {Kind: UTM, Zone: 48, South: true},
	}
	for in, want := range cases {
		got, err := ParseCRS(in)
		c.Assert(err, IsNil, Commentf("input %q", in))
		c.Assert(got, Equals, want, Commentf("input %q", in))
	}

	for _, bad := range []string{"", "EPSG:2154", "EPSG:32661", "utm"} {
		_, err := ParseCRS(bad)
		c.Assert(err, NotNil, Commentf("input %q", bad))
	}
}

func (s *GeoSuite) TestUTMInverse(c *C) {
	p := utmToWGS84(orb.Point{345373.206878385, 9821993.449776318}, 48, true)
	c.Assert(near(p.Lon(), 103.61, 1e-6), Equals, true, Commentf("lon %v", p.Lon()))
	c.Assert(near(p.Lat(), -1.61, 1e-6), Equals, true, Commentf("lat %v", p.Lat()))

	// The central meridian on the equator maps back exactly.
	p = utmToWGS84(orb.Point{500000, 10000000}, 48, true)
	c.Assert(near(p.Lon(), 105, 1e-9), Equals, true)
	c.Assert(near(p.Lat(), 0, 1e-9), Equals, true)
}

func (s *GeoSuite) TestToWGS84(c *C) {
	src := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	c.Assert(ToWGS84(src, WGS84), DeepEquals, src)

	want := orb.Point{103.61, -1.61}
	merc := project.Point(want, project.WGS84.ToMercator)
	got := ToWGS84(merc, CRS{Kind: WebMercator}).(orb.Point)
	c.Assert(near(got.Lon(), want.Lon(), 1e-9), Equals, true)
	c.Assert(near(got.Lat(), want.Lat(), 1e-9), Equals, true)

	ring := orb.Polygon{{{345373.206878385, 9821993.449776318}, {500000, 10000000}, {400000, 9900000}, {345373.206878385, 9821993.449776318}}}
	out := ToWGS84(ring, CRS{Kind: UTM, Zone: 48, South: true}).(orb.Polygon)
	c.Assert(near(out[0][1].Lon(), 105, 1e-9), Equals, true)
	// Input is not mutated.
	c.Assert(ring[0][1], Equals, orb.Point{500000, 10000000})
}

func (s *GeoSuite) TestCentroid(c *C) {
	square := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	c.Assert(Centroid(square), Equals, orb.Point{1, 1})

	center := CenterOf([]orb.Point{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 2}})
	c.Assert(center, Equals, orb.Point{1, 1})

	c.Assert(CenterOf(nil), Equals, orb.Point{})
}

func (s *GeoSuite) TestSimplifyKeepsValidRings(c *C) {
	tri := orb.Polygon{{{0, 0}, {1, 0}, {0.5, 0.0001}, {0, 1}, {0, 0}}}
	out := Simplify(tri, 0.01).(orb.Polygon)
	c.Assert(len(out[0]) >= 4, Equals, true)
	c.Assert(out[0][0], Equals, out[0][len(out[0])-1])

	c.Assert(Simplify(tri, 0), DeepEquals, tri)
}

func (s *GeoSuite) TestBounds(c *C) {
	r := Bounds([]orb.Geometry{
		orb.Polygon{{{103, -2}, {104, -2}, {104, -1}, {103, -2}}},
		orb.Point{102.5, -1.5},
	})
	c.Assert(near(r.Lo().Lat.Degrees(), -2, 1e-9), Equals, true)
	c.Assert(near(r.Hi().Lat.Degrees(), -1, 1e-9), Equals, true)
	c.Assert(near(r.Lo().Lng.Degrees(), 102.5, 1e-9), Equals, true)
	c.Assert(near(r.Hi().Lng.Degrees(), 104, 1e-9), Equals, true)

	c.Assert(Bounds(nil).IsEmpty(), Equals, true)
}

func (s *GeoSuite) TestGeohash(c *C) {
	h := Geohash(orb.Point{10.40744, 57.64911})
	c.Assert(strings.HasPrefix(h, "u4pruyd"), Equals, true, Commentf("got %q", h))
	c.Assert(Geohash(orb.Point{math.NaN(), 0}), Equals, "")
}
