package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/ziadkadry99/peta-ikm/internal/join"
)

// Overview renders a grouped bar chart of every region's cluster values as
// SVG. Regions whose values cannot be read fail the whole chart.
func Overview(title string, regions []join.Region, sel Selector) ([]byte, error) {
	if len(regions) == 0 {
		return nil, errors.New("overview: no regions")
	}

	series := make([]plotter.Values, len(Labels))
	names := make([]string, len(regions))
	for i, r := range regions {
		values, err := sel.Values(r)
		if err != nil {
			return nil, err
		}
		for j, v := range values {
			series[j] = append(series[j], v)
		}
		names[i] = r.Name
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = "Persentase (%)"
	p.Y.Min = 0
	p.Legend.Top = true

	barWidth := vg.Points(10)
	for j, values := range series {
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("overview: %w", err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = rgba(Colors[j])
		bars.Offset = barWidth * vg.Length(j-1)
		p.Add(bars)
		p.Legend.Add(Labels[j], bars)
	}
	p.NominalX(names...)

	w := vg.Length(len(regions))*4*barWidth + 2*vg.Inch
	if w < 6*vg.Inch {
		w = 6 * vg.Inch
	}
	c := vgsvg.New(w, 4*vg.Inch)
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("overview: writing svg: %w", err)
	}
	return buf.Bytes(), nil
}

func rgba(hex string) color.Color {
	c := drawing.ColorFromHex(hex)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}
