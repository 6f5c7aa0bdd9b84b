package export

import (
	"fmt"
	"image/color"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/windsim/internal/viz"
)

// BladesPlot projects the blade curves through cam and lays them out as a
// gonum plot with a legend. Farther blades are added first.
func BladesPlot(blades []viz.Blade, cam *viz.Camera) (*plot.Plot, error) {
	if len(blades) == 0 {
		return nil, fmt.Errorf("export: no blades to draw")
	}
	if cam == nil {
		cam = viz.NewCamera()
	}

	radius := 0.0
	for _, b := range blades {
		for _, p := range b.Points {
			radius = max(radius, p.Length())
		}
	}
	if radius == 0 {
		radius = 1
	}

	type projected struct {
		blade viz.Blade
		xys   plotter.XYs
		depth float64
	}
	proj := make([]projected, 0, len(blades))
	for _, b := range blades {
		xys := make(plotter.XYs, 0, len(b.Points))
		depth := 0.0
		for _, p := range b.Points {
			x, y, d, ok := cam.ProjectF(p.Scale(1/radius), 2, 2)
			if !ok {
				continue
			}
			xys = append(xys, plotter.XY{X: x - 1, Y: 1 - y})
			depth += d
		}
		if len(xys) < 2 {
			continue
		}
		proj = append(proj, projected{b, xys, depth / float64(len(xys))})
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })

	p := plot.New()
	p.Title.Text = "3D Blade Geometry"
	p.HideAxes()
	p.Legend.Top = true
	for _, pr := range proj {
		l, err := plotter.NewLine(pr.xys)
		if err != nil {
			return nil, err
		}
		c, err := ParseHexColor(pr.blade.Color)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = c
		l.LineStyle.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(pr.blade.Name, l)
	}
	hub, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return nil, err
	}
	hub.GlyphStyle.Shape = draw.CircleGlyph{}
	hub.GlyphStyle.Radius = vg.Points(3)
	hub.GlyphStyle.Color = color.Gray{Y: 80}
	p.Add(hub)

	p.X.Min, p.X.Max = -1.1, 1.1
	p.Y.Min, p.Y.Max = -1.1, 1.1
	return p, nil
}

// BladesSVG writes the projected blade plot as SVG.
func BladesSVG(w io.Writer, blades []viz.Blade, cam *viz.Camera, width, height vg.Length) error {
	return writePlot(w, blades, cam, width, height, "svg")
}

// BladesPNG writes the projected blade plot as PNG.
func BladesPNG(w io.Writer, blades []viz.Blade, cam *viz.Camera, width, height vg.Length) error {
	return writePlot(w, blades, cam, width, height, "png")
}

func writePlot(w io.Writer, blades []viz.Blade, cam *viz.Camera, width, height vg.Length, format string) error {
	p, err := BladesPlot(blades, cam)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// ParseHexColor parses "#rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("export: bad colour %q: %w", s, err)
	}
	return c, nil
}
