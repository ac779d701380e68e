// Package dataset reads the two inputs of the map: the polygon shapefile of
// administrative boundaries and the attribute table of cluster percentages.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// Shape is one feature of the boundary shapefile.
type Shape struct {
	ID         string            // value of the identifier field
	Attributes map[string]string // every dbf field, keyed by upper-cased name
	Geometry   orb.Geometry      // orb.Polygon or orb.MultiPolygon, source CRS
}

// Layer is the content of a boundary shapefile.
type Layer struct {
	Path       string
	Fields     []string // upper-cased dbf field names in file order
	Shapes     []Shape
	Projection string // WKT from the .prj sidecar, empty when absent
}

// LoadShapes reads the polygon shapefile at path. The identifier field is
// looked up by upper-cased name. Null shapes are skipped.
func LoadShapes(path, idColumn string) (*Layer, error) {
	if len(path) < 4 || !strings.EqualFold(path[len(path)-4:], ".shp") {
		return nil, loadErr(path, "not a .shp file")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	// go-shp derives sidecar names by swapping the last three characters.
	base := path[:len(path)-3]
	if _, err := os.Stat(base + "dbf"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, loadErr(path, "missing attribute sidecar %sdbf", base)
		}
		return nil, &DataLoadError{Path: path, Err: err}
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer r.Close()

	layer := &Layer{Path: path}
	idField := -1
	want := upper(idColumn)
	for i, f := range r.Fields() {
		name := upper(f.String())
		layer.Fields = append(layer.Fields, name)
		if name == want {
			idField = i
		}
	}
	if idField < 0 {
		return nil, loadErr(path, "identifier field %q not found (fields: %s)", idColumn, strings.Join(layer.Fields, ", "))
	}

	for r.Next() {
		row, s := r.Shape()
		geom, err := toGeometry(s)
		if err != nil {
			return nil, loadErr(path, "feature %d: %w", row, err)
		}
		if geom == nil {
			log.Printf("dataset: skipping null shape %d in %s", row, path)
			continue
		}

		attrs := make(map[string]string, len(layer.Fields))
		for i, name := range layer.Fields {
			attrs[name] = cleanAttribute(r.ReadAttribute(row, i))
		}
		layer.Shapes = append(layer.Shapes, Shape{
			ID:         attrs[layer.Fields[idField]],
			Attributes: attrs,
			Geometry:   geom,
		})
	}
	if err := r.Err(); err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	if len(layer.Shapes) == 0 {
		return nil, loadErr(path, "no polygon features")
	}

	prj, err := os.ReadFile(base + "prj")
	switch {
	case err == nil:
		layer.Projection = strings.TrimSpace(string(prj))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &DataLoadError{Path: base + "prj", Err: err}
	}
	return layer, nil
}

// cleanAttribute strips the NUL and space padding dbf writers leave in
// fixed-width character fields.
func cleanAttribute(v string) string {
	return strings.TrimSpace(strings.TrimRight(v, "\x00 "))
}

// toGeometry converts a polygon record. It returns nil for null shapes.
func toGeometry(s shp.Shape) (orb.Geometry, error) {
	switch s := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Polygon:
		return polygonFromParts(s.Parts, s.Points), nil
	case *shp.PolygonZ:
		return polygonFromParts(s.Parts, s.Points), nil
	case *shp.PolygonM:
		return polygonFromParts(s.Parts, s.Points), nil
	}
	return nil, fmt.Errorf("unsupported shape type %T, expected polygons", s)
}

// polygonFromParts splits the flat point list into rings and groups them
// into polygons. A clockwise ring opens a new polygon; counter-clockwise
// rings are holes of the polygon before them.
func polygonFromParts(parts []int32, points []shp.Point) orb.Geometry {
	var mp orb.MultiPolygon
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(points)) {
			continue
		}

		ring := make(orb.Ring, 0, end-start+1)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if len(ring) < 4 {
			continue
		}

		if ring.Orientation() == orb.CCW && len(mp) > 0 {
			last := len(mp) - 1
			mp[last] = append(mp[last], ring)
			continue
		}
		if ring.Orientation() == orb.CCW {
			ring.Reverse()
		}
		mp = append(mp, orb.Polygon{ring})
	}

	switch len(mp) {
	case 0:
		return nil
	case 1:
		return mp[0]
	}
	return mp
}
