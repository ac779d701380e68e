// Package join merges boundary geometries with their attribute rows.
package join

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/paulmach/orb"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ziadkadry99/peta-ikm/internal/dataset"
	"github.com/ziadkadry99/peta-ikm/internal/geo"
)

// Side names the input an unmatched identifier came from.
type Side string

const (
	SideGeometry   Side = "geometry"
	SideAttributes Side = "attributes"
)

// Region is a boundary geometry joined with its attribute row.
type Region struct {
	ID       string
	Name     string       // title-cased ID for display
	Geometry orb.Geometry // WGS84
	Centroid orb.Point
	Columns  []string // attribute column names, shared by all regions
	Cells    []string // attribute values, same order as Columns
	IDColumn int      // index of the identifier in Columns
}

// Value returns the cell of the named column.
func (r Region) Value(column string) (string, bool) {
	for i, c := range r.Columns {
		if c == column {
			return r.Cells[i], true
		}
	}
	return "", false
}

// Unmatched is an identifier that found no partner on the other side.
type Unmatched struct {
	ID         string
	Side       Side
	Suggestion string // closest identifier on the other side, if any is close
}

func (u Unmatched) String() string {
	if u.Suggestion != "" {
		return fmt.Sprintf("%s %q (did you mean %q?)", u.Side, u.ID, u.Suggestion)
	}
	return fmt.Sprintf("%s %q", u.Side, u.ID)
}

// Result is the joined region set.
type Result struct {
	Regions  []Region // geometry order
	Dropped  []Unmatched
	Columns  []string
	IDColumn int
	Center   orb.Point // centroid of the region centroids
	CRS      geo.CRS   // source reference the geometries were converted from
}

// JoinError reports that no geometry matched any attribute row.
type JoinError struct {
	Geometries int
	Rows       int
	Dropped    []Unmatched
}

func (e *JoinError) Error() string {
	msg := fmt.Sprintf("no region matched: %d geometries and %d attribute rows share no identifier", e.Geometries, e.Rows)
	for _, d := range e.Dropped {
		if d.Suggestion != "" {
			return msg + "; e.g. " + d.String()
		}
	}
	return msg
}

// Options tunes the join.
type Options struct {
	// SourceCRS forces the geometry reference ("EPSG:32748"). Empty means
	// detect it from the shapefile's .prj.
	SourceCRS string
	// SimplifyTolerance in degrees; zero keeps every vertex.
	SimplifyTolerance float64
}

// Join performs an inner join of shapes and table rows on the identifier.
// Geometries are converted to WGS84 and centroids computed. Rows without a
// partner on either side are dropped and listed in Result.Dropped.
func Join(layer *dataset.Layer, table *dataset.Table, opts Options) (*Result, error) {
	crs, err := sourceCRS(layer, opts.SourceCRS)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: table.Columns, IDColumn: table.IDColumn, CRS: crs}
	matched := make(map[string]bool)
	shapeIDs := make([]string, 0, len(layer.Shapes))
	for _, s := range layer.Shapes {
		shapeIDs = append(shapeIDs, s.ID)
	}
	title := cases.Title(language.Und)

	var centroids []orb.Point
	for _, s := range layer.Shapes {
		row, ok := table.Lookup(s.ID)
		if !ok {
			res.Dropped = append(res.Dropped, Unmatched{
				ID:         s.ID,
				Side:       SideGeometry,
				Suggestion: closest(s.ID, table.IDs()),
			})
			continue
		}
		matched[s.ID] = true

		g := geo.Simplify(geo.ToWGS84(s.Geometry, crs), opts.SimplifyTolerance)
		c := geo.Centroid(g)
		centroids = append(centroids, c)
		res.Regions = append(res.Regions, Region{
			ID:       s.ID,
			Name:     title.String(s.ID),
			Geometry: g,
			Centroid: c,
			Columns:  table.Columns,
			Cells:    row.Cells,
			IDColumn: table.IDColumn,
		})
	}
	for _, r := range table.Rows {
		if !matched[r.ID] {
			res.Dropped = append(res.Dropped, Unmatched{
				ID:         r.ID,
				Side:       SideAttributes,
				Suggestion: closest(r.ID, shapeIDs),
			})
		}
	}

	if len(res.Regions) == 0 {
		return nil, &JoinError{Geometries: len(layer.Shapes), Rows: len(table.Rows), Dropped: res.Dropped}
	}
	res.Center = geo.CenterOf(centroids)
	return res, nil
}

func sourceCRS(layer *dataset.Layer, forced string) (geo.CRS, error) {
	if forced != "" {
		crs, err := geo.ParseCRS(forced)
		if err != nil {
			return geo.CRS{}, fmt.Errorf("source crs: %w", err)
		}
		return crs, nil
	}
	crs, err := geo.DetectCRS(layer.Projection)
	if err != nil {
		return geo.CRS{}, fmt.Errorf("detecting crs of %s: %w", layer.Path, err)
	}
	return crs, nil
}

// closest returns the candidate nearest to id by edit distance, or "" when
// none is within a third of the identifier's length.
func closest(id string, candidates []string) string {
	norm := strings.ToUpper(strings.TrimSpace(id))
	limit := len([]rune(norm)) / 3
	if limit < 2 {
		limit = 2
	}
	best, bestDist := "", limit+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(norm, strings.ToUpper(strings.TrimSpace(c)))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
