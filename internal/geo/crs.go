// Package geo holds the coordinate handling for region geometries:
// coordinate reference system detection, reprojection to WGS84, centroids,
// simplification and viewport bounds.
package geo

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Kind identifies a supported coordinate reference system family.
type Kind int

const (
	// Geographic is longitude/latitude in degrees (WGS84 and compatible datums).
	Geographic Kind = iota
	// WebMercator is EPSG:3857 spherical pseudo-Mercator in metres.
	WebMercator
	// UTM is a WGS84 Universal Transverse Mercator zone in metres.
	UTM
)

// CRS is a source coordinate reference system.
type CRS struct {
	Kind  Kind
	Zone  int  // UTM zone, 1..60
	South bool // UTM southern hemisphere
}

// WGS84 is the geographic target reference (EPSG:4326).
var WGS84 = CRS{Kind: Geographic}

func (c CRS) String() string {
	switch c.Kind {
	case WebMercator:
		return "EPSG:3857"
	case UTM:
		if c.South {
			return fmt.Sprintf("EPSG:%d", 32700+c.Zone)
		}
		return fmt.Sprintf("EPSG:%d", 32600+c.Zone)
	default:
		return "EPSG:4326"
	}
}

// ParseCRS parses an "EPSG:<code>" identifier. Supported codes are 4326,
// 3857 (and its 900913 alias), 326xx and 327xx.
func ParseCRS(code string) (CRS, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	s = strings.TrimPrefix(s, "EPSG:")
	n, err := strconv.Atoi(s)
	if err != nil {
		return CRS{}, fmt.Errorf("unsupported crs %q", code)
	}
	switch {
	case n == 4326:
		return WGS84, nil
	case n == 3857 || n == 900913:
		return CRS{Kind: WebMercator}, nil
	case n > 32600 && n <= 32660:
		return CRS{Kind: UTM, Zone: n - 32600}, nil
	case n > 32700 && n <= 32760:
		return CRS{Kind: UTM, Zone: n - 32700, South: true}, nil
	}
	return CRS{}, fmt.Errorf("unsupported crs %q", code)
}

var utmZonePattern = regexp.MustCompile(`UTM[ _]ZONE[ _]?(\d{1,2})([NS])`)

// DetectCRS inspects the WKT text of a shapefile's .prj sidecar. An empty
// string is treated as WGS84 since no reference was recorded.
func DetectCRS(wkt string) (CRS, error) {
	s := strings.ToUpper(strings.TrimSpace(wkt))
	if s == "" {
		return WGS84, nil
	}

	if strings.HasPrefix(s, "PROJCS") || strings.HasPrefix(s, "PROJCRS") {
		switch {
		case strings.Contains(s, "AUXILIARY_SPHERE"),
			strings.Contains(s, "PSEUDO-MERCATOR"),
			strings.Contains(s, "PSEUDO_MERCATOR"),
			strings.Contains(s, "\"EPSG\",\"3857\""),
			strings.Contains(s, "\"EPSG\",3857"):
			return CRS{Kind: WebMercator}, nil
		}
		if m := utmZonePattern.FindStringSubmatch(s); m != nil {
			zone, _ := strconv.Atoi(m[1])
			if zone < 1 || zone > 60 {
				return CRS{}, fmt.Errorf("invalid utm zone %d in projection", zone)
			}
			return CRS{Kind: UTM, Zone: zone, South: m[2] == "S"}, nil
		}
		return CRS{}, fmt.Errorf("unsupported projected crs: %.60s", wkt)
	}

	if strings.HasPrefix(s, "GEOGCS") || strings.HasPrefix(s, "GEOGCRS") || strings.HasPrefix(s, "GEODCRS") {
		return WGS84, nil
	}
	return CRS{}, fmt.Errorf("unrecognised crs definition: %.60s", wkt)
}

// projection returns the point transform from c to WGS84, or nil when c is
// already geographic.
func (c CRS) projection() orb.Projection {
	switch c.Kind {
	case WebMercator:
		return project.Mercator.ToWGS84
	case UTM:
		zone, south := c.Zone, c.South
		return func(p orb.Point) orb.Point {
			return utmToWGS84(p, zone, south)
		}
	}
	return nil
}

// ToWGS84 reprojects g from c to longitude/latitude. Geographic input is
// returned unchanged.
func ToWGS84(g orb.Geometry, c CRS) orb.Geometry {
	proj := c.projection()
	if proj == nil || g == nil {
		return g
	}
	return project.Geometry(orb.Clone(g), proj)
}
