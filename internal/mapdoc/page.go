package mapdoc

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/paulmach/orb/geojson"
)

type mapLabel struct {
	ID         string    `json:"id"`
	HTML       string    `json:"html"`
	LatLng     []float64 `json:"latlng"`
	IconSize   [2]int    `json:"iconSize"`
	IconAnchor [2]int    `json:"iconAnchor"`
}

type mapOverlay struct {
	ID       string            `json:"id"`
	Geometry *geojson.Geometry `json:"geometry"`
	Style    Style             `json:"style"`
	Tooltip  string            `json:"tooltip"`
	Popup    string            `json:"popup"`
	Label    mapLabel          `json:"label"`
}

type mapData struct {
	Center        []float64    `json:"center"`
	Zoom          int          `json:"zoom"`
	Tiles         string       `json:"tiles"`
	Attribution   string       `json:"attribution"`
	Bounds        [][]float64  `json:"bounds,omitempty"`
	PopupMaxWidth int          `json:"popupMaxWidth"`
	Overlays      []mapOverlay `json:"overlays"`
}

func buildMapData(d *Document) mapData {
	data := mapData{
		Center:        []float64{d.Center.Lat(), d.Center.Lon()},
		Zoom:          d.Zoom,
		Tiles:         d.Tiles,
		Attribution:   d.Attribution,
		PopupMaxWidth: PopupMaxWidth,
		Overlays:      make([]mapOverlay, 0, len(d.Overlays)),
	}
	if !d.Bounds.IsEmpty() {
		lo, hi := d.Bounds.Lo(), d.Bounds.Hi()
		data.Bounds = [][]float64{
			{lo.Lat.Degrees(), lo.Lng.Degrees()},
			{hi.Lat.Degrees(), hi.Lng.Degrees()},
		}
	}
	for _, o := range d.Overlays {
		data.Overlays = append(data.Overlays, mapOverlay{
			ID:       o.ID,
			Geometry: geojson.NewGeometry(o.Geometry),
			Style:    o.Style,
			Tooltip:  o.Tooltip,
			Popup:    o.Popup,
			Label: mapLabel{
				ID:         o.Label.ElementID,
				HTML:       o.Label.HTML,
				LatLng:     []float64{o.Label.Position.Lat(), o.Label.Position.Lon()},
				IconSize:   o.Label.IconSize,
				IconAnchor: o.Label.IconAnchor,
			},
		})
	}
	return data
}

func toJSON(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

var (
	pageTmpl  = template.Must(template.New("page").Funcs(template.FuncMap{"toJSON": toJSON}).Parse(pageHTML))
	errorTmpl = template.Must(template.New("error").Parse(errorHTML))
)

// WritePage renders the document as a complete HTML page.
func WritePage(w io.Writer, d *Document) error {
	view := struct {
		*Document
		Data mapData
	}{d, buildMapData(d)}
	if err := pageTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("rendering map page: %w", err)
	}
	return nil
}

// WriteError renders the page shown instead of the map when the pipeline
// fails. msg is displayed as a single banner.
func WriteError(w io.Writer, pageTitle, heading, msg string) error {
	if pageTitle == "" {
		pageTitle = DefaultPageTitle
	}
	if heading == "" {
		heading = DefaultHeading
	}
	data := struct{ PageTitle, Heading, Message string }{pageTitle, heading, msg}
	if err := errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering error page: %w", err)
	}
	return nil
}

const pageStyle = `
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0 auto; padding: 16px 24px; max-width: 1200px; color: #262730; }
  h1 { font-size: 28px; margin: 8px 0 16px; }
  .map-title { text-align: center; font-size: 20px; margin: 30px 0 5px; }
  .banner { padding: 12px 16px; border-radius: 6px; background: #ffe9e9; color: #7d1a1a; }
  .legend { font-size: 14px; padding-top: 10px; margin-left: 10px; }
  .legend ul { list-style: none; padding-left: 0; margin-top: 5px; }
  .swatch { display: inline-block; width: 12px; height: 12px; border-radius: 50%; margin-right: 6px; vertical-align: middle; }
  .notes { font-size: 13px; color: #555; margin: 8px 10px; }
  .overview { margin-top: 24px; overflow-x: auto; }
  .region-label { background: none; border: none; white-space: nowrap; }
`

const pageHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="document-id" content="{{.ID}}">
<title>{{.PageTitle}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<h3 class="map-title"><b>{{.Title}}</b></h3>
<div class="legend">
  <b>{{.LegendTitle}}</b>
  <ul>
  {{- range .Legend}}
    <li><span class="swatch" style="background: {{.Color}}"></span><b>{{.Label}}</b> – {{.Description}}</li>
  {{- end}}
  </ul>
</div>
{{- if .Notes}}
<div class="notes">{{.Notes}}</div>
{{- end}}
<div id="map" style="width: {{.Width}}px; height: {{.Height}}px;"></div>
{{- if .Overview}}
<div class="overview">{{.Overview}}</div>
{{- end}}
<script>
const data = {{toJSON .Data}};
const map = L.map('map').setView(data.center, data.zoom);
L.tileLayer(data.tiles, { attribution: data.attribution, subdomains: 'abcd', maxZoom: 19 }).addTo(map);
if (data.bounds) {
  map.setMaxBounds(L.latLngBounds(data.bounds).pad(2));
}
data.overlays.forEach(function (o) {
  L.geoJSON(o.geometry, { style: function () { return o.style; } })
    .bindTooltip(o.tooltip, { sticky: true })
    .bindPopup(o.popup, { maxWidth: data.popupMaxWidth })
    .addTo(map);
  const marker = L.marker(o.label.latlng, {
    interactive: false,
    icon: L.divIcon({ className: 'region-label', html: o.label.html, iconSize: o.label.iconSize, iconAnchor: o.label.iconAnchor })
  }).addTo(map);
  marker.getElement().id = o.label.id;
});
</script>
</body>
</html>
`

const errorHTML = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="UTF-8">
<title>{{.PageTitle}}</title>
<style>` + pageStyle + `</style>
</head>
<body>
<h1>{{.Heading}}</h1>
<div class="banner" role="alert">{{.Message}}</div>
</body>
</html>
`
