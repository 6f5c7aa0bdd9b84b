// Package diagram renders charts of the turbine model with gonum/plot.
package diagram

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/windsim/internal/turbine"
	"github.com/san-kum/windsim/internal/viz"
)

var ErrNoData = errors.New("diagram: not enough points")

var (
	curveColor  = color.RGBA{R: 0, G: 119, B: 190, A: 255}
	markerColor = color.RGBA{R: 248, G: 5, B: 5, A: 255}
)

// Default chart size.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// PowerCurve plots power output in kW against wind speed. When current lies
// within the curve a marker and label show the present operating point.
func PowerCurve(curve []turbine.CurvePoint, current turbine.Inputs) (*plot.Plot, error) {
	if len(curve) < 2 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Power Output vs Wind Speed"
	p.X.Label.Text = "Wind Speed (m/s)"
	p.Y.Label.Text = "Power Output (kW)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(curve))
	for i, c := range curve {
		pts[i] = plotter.XY{X: c.WindSpeed, Y: c.Power / 1000}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = curveColor
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("%s, %d blades", current.Material, current.Blades), line)
	p.Legend.Top = true
	p.Legend.Left = true

	lo, hi := curve[0].WindSpeed, curve[len(curve)-1].WindSpeed
	if current.WindSpeed >= lo && current.WindSpeed <= hi {
		res := turbine.Calculate(current)
		op := plotter.XYs{{X: current.WindSpeed, Y: res.PowerOutput / 1000}}
		marker, err := plotter.NewScatter(op)
		if err != nil {
			return nil, err
		}
		marker.GlyphStyle.Shape = draw.CircleGlyph{}
		marker.GlyphStyle.Radius = vg.Points(5)
		marker.GlyphStyle.Color = markerColor
		p.Add(marker)

		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    op,
			Labels: []string{fmt.Sprintf("  %.0f W", res.PowerOutput)},
		})
		if err != nil {
			return nil, err
		}
		p.Add(label)
	}
	return p, nil
}

// BladeProjection is the rotor seen along its axis: each blade's x-y trace.
func BladeProjection(blades []viz.Blade) (*plot.Plot, error) {
	if len(blades) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Blade Projection (front view)"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Legend.Top = true

	for _, b := range blades {
		pts := make(plotter.XYs, len(b.Points))
		for i, v := range b.Points {
			pts[i] = plotter.XY{X: v.X, Y: v.Y}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		var c color.RGBA
		if _, err := fmt.Sscanf(b.Color, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return nil, fmt.Errorf("diagram: blade colour %q: %w", b.Color, err)
		}
		c.A = 255
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(b.Name, l)
	}
	return p, nil
}

// Write encodes p in format ("png", "svg", "pdf", ...).
func Write(w io.Writer, p *plot.Plot, width, height vg.Length, format string) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// PowerCurvePNG writes the power curve chart as PNG.
func PowerCurvePNG(w io.Writer, curve []turbine.CurvePoint, current turbine.Inputs) error {
	p, err := PowerCurve(curve, current)
	if err != nil {
		return err
	}
	return Write(w, p, Width, Height, "png")
}

// PowerCurveSVG writes the power curve chart as SVG.
func PowerCurveSVG(w io.Writer, curve []turbine.CurvePoint, current turbine.Inputs) error {
	p, err := PowerCurve(curve, current)
	if err != nil {
		return err
	}
	return Write(w, p, Width, Height, "svg")
}

// Save writes p to filename, picking the format from its extension and
// defaulting to PNG.
func Save(p *plot.Plot, filename string) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg", ".eps", ".tif", ".tiff":
		return p.Save(Width, Height, filename)
	default:
		return p.Save(Width, Height, filename+".png")
	}
}
