// Package mapdoc composes the interactive region map and renders it as a
// self-contained Leaflet page.
package mapdoc

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/peta-ikm/internal/chart"
	"github.com/ziadkadry99/peta-ikm/internal/geo"
	"github.com/ziadkadry99/peta-ikm/internal/join"
)

// Defaults for Options fields left empty.
const (
	DefaultPageTitle   = "Peta IKM"
	DefaultHeading     = "📍 Visualisasi Klaster IKM Provinsi Jambi"
	DefaultTitle       = "📍 Peta IKM Provinsi Jambi"
	DefaultZoom        = 8
	DefaultTiles       = "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png"
	DefaultAttribution = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`
	DefaultWidth       = 1100
	DefaultHeight      = 700
)

// Popup box around the region chart.
const (
	PopupWidth    = 320
	PopupHeight   = 300
	PopupMaxWidth = 350
)

// Options controls composition.
type Options struct {
	PageTitle   string
	Heading     string
	Title       string
	Notes       string // markdown
	Zoom        int
	Tiles       string
	Attribution string
	Width       int
	Height      int
	Selector    chart.Selector
	Overview    []byte // optional overview chart SVG
}

func (o *Options) applyDefaults() {
	if o.PageTitle == "" {
		o.PageTitle = DefaultPageTitle
	}
	if o.Heading == "" {
		o.Heading = DefaultHeading
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Zoom == 0 {
		o.Zoom = DefaultZoom
	}
	if o.Tiles == "" {
		o.Tiles = DefaultTiles
	}
	if o.Attribution == "" {
		o.Attribution = DefaultAttribution
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
}

// LegendEntry is one line of the legend block.
type LegendEntry struct {
	Label       string
	Description string
	Color       string
}

// Legend is the fixed cluster legend.
var Legend = []LegendEntry{
	{Label: "Cluster 1", Description: "Rendah", Color: "#d7191c"},
	{Label: "Cluster 2", Description: "Sedang", Color: "#1a9641"},
	{Label: "Cluster 3", Description: "Tinggi", Color: "#2b83ba"},
}

// LegendTitle heads the legend block.
const LegendTitle = "Keterangan Cluster:"

// Style is the Leaflet path style of an overlay.
type Style struct {
	FillColor   string  `json:"fillColor"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	FillOpacity float64 `json:"fillOpacity"`
}

// RegionStyle is applied to every region polygon regardless of its values.
var RegionStyle = Style{FillColor: "#f0f0f0", Color: "gray", Weight: 1, FillOpacity: 0.5}

// Label is the region name placed at its centroid.
type Label struct {
	ElementID  string
	HTML       string
	Position   orb.Point
	IconSize   [2]int
	IconAnchor [2]int
}

// Overlay is one region on the map.
type Overlay struct {
	ID       string
	Name     string
	Geometry orb.Geometry
	Values   []float64
	Style    Style
	Tooltip  string
	Popup    string
	Label    Label
}

// Document is one composed map. It is rebuilt on every render.
type Document struct {
	ID          string
	PageTitle   string
	Heading     string
	Title       string
	LegendTitle string
	Legend      []LegendEntry
	Notes       template.HTML
	Overlays    []Overlay
	Center      orb.Point
	Zoom        int
	Tiles       string
	Attribution string
	Width       int
	Height      int
	Bounds      s2.Rect
	Overview    template.HTML
}

// Compose builds the map document for the joined regions. charts must hold
// one artifact per region, in region order.
func Compose(res *join.Result, charts []*chart.Artifact, opts Options) (*Document, error) {
	if len(charts) != len(res.Regions) {
		return nil, fmt.Errorf("composing map: %d charts for %d regions", len(charts), len(res.Regions))
	}
	opts.applyDefaults()

	notes, err := renderNotes(opts.Notes)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		ID:          uuid.New().String(),
		PageTitle:   opts.PageTitle,
		Heading:     opts.Heading,
		Title:       opts.Title,
		LegendTitle: LegendTitle,
		Legend:      Legend,
		Notes:       notes,
		Center:      res.Center,
		Zoom:        opts.Zoom,
		Tiles:       opts.Tiles,
		Attribution: opts.Attribution,
		Width:       opts.Width,
		Height:      opts.Height,
		Overview:    inlineSVG(opts.Overview),
	}

	geoms := make([]orb.Geometry, 0, len(res.Regions))
	for i, r := range res.Regions {
		values, err := opts.Selector.Values(r)
		if err != nil {
			return nil, err
		}
		doc.Overlays = append(doc.Overlays, Overlay{
			ID:       r.ID,
			Name:     r.Name,
			Geometry: r.Geometry,
			Values:   values,
			Style:    RegionStyle,
			Tooltip:  Tooltip(r.Name, values),
			Popup:    popup(charts[i]),
			Label: Label{
				ElementID:  "label-" + geo.Geohash(r.Centroid),
				HTML:       fmt.Sprintf(`<div style="font-size:9pt; color:gray;">%s</div>`, html.EscapeString(r.Name)),
				Position:   r.Centroid,
				IconSize:   [2]int{150, 36},
				IconAnchor: [2]int{0, 0},
			},
		})
		geoms = append(geoms, r.Geometry)
	}
	doc.Bounds = geo.Bounds(geoms)
	return doc, nil
}

// Tooltip formats the hover text: the bold name, then one line per cluster
// with two decimals.
func Tooltip(name string, values []float64) string {
	var b strings.Builder
	b.WriteString("<b>" + html.EscapeString(name) + "</b>")
	for i, v := range values {
		label := "Cluster " + strconv.Itoa(i+1)
		if i < len(chart.Labels) {
			label = chart.Labels[i]
		}
		b.WriteString("<br>" + label + ": " + strconv.FormatFloat(v, 'f', 2, 64) + "%")
	}
	return b.String()
}

func popup(a *chart.Artifact) string {
	return fmt.Sprintf(`<div class="region-chart" style="width:%dpx;height:%dpx;">%s</div>`, PopupWidth, PopupHeight, a.SVG)
}

func renderNotes(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting notes: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// inlineSVG strips any XML prolog so the chart can sit inside HTML.
func inlineSVG(svg []byte) template.HTML {
	if len(svg) == 0 {
		return ""
	}
	s := string(svg)
	if i := strings.Index(s, "<svg"); i > 0 {
		s = s[i:]
	}
	return template.HTML(s)
}

// FeatureCollection exports the overlays as GeoJSON. Each feature carries
// the region name, its cluster values and the tooltip text.
func (d *Document) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, o := range d.Overlays {
		f := geojson.NewFeature(o.Geometry)
		f.ID = o.ID
		f.Properties["name"] = o.Name
		for i, v := range o.Values {
			f.Properties["cluster_"+strconv.Itoa(i+1)] = v
		}
		f.Properties["centroid"] = []float64{o.Label.Position.Lon(), o.Label.Position.Lat()}
		f.Properties["tooltip"] = o.Tooltip
		fc.Append(f)
	}
	return fc
}
