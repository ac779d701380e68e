// Package chart renders the per-region cluster bar charts shown in map
// popups and the province overview chart.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ziadkadry99/peta-ikm/internal/join"
)

// Popup chart size in pixels.
const (
	Width  = 300
	Height = 250
)

// Labels are the bar labels, one per cluster.
var Labels = []string{"Cluster 1", "Cluster 2", "Cluster 3"}

// Colors are the fixed bar colours: red, green, blue.
var Colors = []string{"#d7191c", "#1a9641", "#2b83ba"}

// DefaultColumns are the attribute columns holding the cluster values.
var DefaultColumns = []string{"CLUSTER 1", "CLUSTER 2", "CLUSTER 3"}

// ChartBuildError reports that a region does not have three numeric
// cluster values.
type ChartBuildError struct {
	Region string
	Reason string
}

func (e *ChartBuildError) Error() string {
	return fmt.Sprintf("building chart for %s: %s", e.Region, e.Reason)
}

// Artifact is a rendered region chart.
type Artifact struct {
	Title  string
	Labels []string
	Values []float64 // raw attribute values, unrounded
	Colors []string
	Width  int
	Height int
	SVG    []byte
}

// Selector picks the three cluster values from a region's attribute row.
// With no Columns it takes the first three non-identifier columns in order.
type Selector struct {
	Columns []string
}

// Named selects the given columns by name.
func Named(columns ...string) Selector { return Selector{Columns: columns} }

// Positional selects the first three non-identifier columns.
func Positional() Selector { return Selector{} }

func (s Selector) String() string {
	if len(s.Columns) == 0 {
		return "positional"
	}
	return strings.Join(s.Columns, ", ")
}

// Values returns the region's three cluster values.
func (s Selector) Values(r join.Region) ([]float64, error) {
	var (
		names []string
		cells []string
	)
	if len(s.Columns) == 0 {
		for i, c := range r.Columns {
			if i == r.IDColumn {
				continue
			}
			names = append(names, c)
			cells = append(cells, r.Cells[i])
			if len(cells) == len(Labels) {
				break
			}
		}
		if len(cells) < len(Labels) {
			return nil, &ChartBuildError{Region: r.Name, Reason: fmt.Sprintf("only %d value columns, need %d", len(cells), len(Labels))}
		}
	} else {
		if len(s.Columns) != len(Labels) {
			return nil, &ChartBuildError{Region: r.Name, Reason: fmt.Sprintf("%d cluster columns configured, need %d", len(s.Columns), len(Labels))}
		}
		for _, want := range s.Columns {
			i := columnIndex(r.Columns, want)
			if i < 0 {
				return nil, &ChartBuildError{Region: r.Name, Reason: fmt.Sprintf(
					"column %q not found (columns: %s); set cluster_columns to the value columns, or to [] to read the three columns after the identifier",
					want, strings.Join(r.Columns, ", "))}
			}
			names = append(names, r.Columns[i])
			cells = append(cells, r.Cells[i])
		}
	}

	values := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := parseValue(cell)
		if err != nil {
			return nil, &ChartBuildError{Region: r.Name, Reason: fmt.Sprintf("column %s: %v", names[i], err)}
		}
		values[i] = v
	}
	return values, nil
}

// Build renders the cluster bar chart of one region as SVG.
func Build(r join.Region, sel Selector) (*Artifact, error) {
	values, err := sel.Values(r)
	if err != nil {
		return nil, err
	}

	top := 100.0
	for _, v := range values {
		top = math.Max(top, v)
	}

	bars := make([]chart.Value, len(values))
	for i, v := range values {
		c := drawing.ColorFromHex(Colors[i])
		bars[i] = chart.Value{
			Value: v,
			Label: Labels[i],
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}

	bc := chart.BarChart{
		Title:      html.EscapeString(r.Name), // go-chart writes text unescaped
		TitleStyle: chart.Style{FontSize: 11},
		Width:      Width,
		Height:     Height,
		BarWidth:   50,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 10, Right: 10, Bottom: 10}},
		XAxis:      chart.Style{FontSize: 8},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 8},
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart for %s: %w", r.Name, err)
	}

	return &Artifact{
		Title:  r.Name,
		Labels: append([]string(nil), Labels...),
		Values: values,
		Colors: append([]string(nil), Colors...),
		Width:  Width,
		Height: Height,
		SVG:    buf.Bytes(),
	}, nil
}

// BuildAll renders one chart per region, stopping at the first failure.
func BuildAll(regions []join.Region, sel Selector) ([]*Artifact, error) {
	out := make([]*Artifact, 0, len(regions))
	for _, r := range regions {
		a, err := Build(r, sel)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// columnIndex finds want among columns, treating case, underscores,
// hyphens and runs of spaces alike.
func columnIndex(columns []string, want string) int {
	key := normalize(want)
	for i, c := range columns {
		if normalize(c) == key {
			return i
		}
	}
	return -1
}

func normalize(s string) string {
	s = strings.ToUpper(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseValue(cell string) (float64, error) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell), "%"))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a number", cell)
	}
	return v, nil
}
