package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/windsim/internal/viz"
)

// Braille dot bit for each sub-pixel, row-major.
var dotBits = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasInks are the SVG fill colours for viz canvas inks on a light background.
var CanvasInks = map[int]string{
	viz.InkAxis:   "#999999",
	viz.InkBlade1: viz.BladeColors[0],
	viz.InkBlade2: viz.BladeColors[1],
	viz.InkBlade3: viz.BladeColors[2],
	viz.InkFan:    "#0000ff",
	viz.InkHub:    "#000000",
}

// CanvasToSVG draws every lit braille dot as a circle, coloured by its cell's ink.
func CanvasToSVG(canvas *viz.Canvas, scale float64, background string) string {
	if canvas == nil {
		return ""
	}
	if scale <= 0 {
		scale = 4
	}
	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	groups := make(map[int]*strings.Builder)
	order := make([]int, 0, len(CanvasInks))
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			pattern := int(canvas.Grid[row][col] - 0x2800)
			if pattern <= 0 {
				continue
			}
			ink := canvas.Ink[row][col]
			g, ok := groups[ink]
			if !ok {
				g = &strings.Builder{}
				groups[ink] = g
				order = append(order, ink)
			}
			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&dotBits[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(g, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
	for _, ink := range order {
		fill, ok := CanvasInks[ink]
		if !ok {
			fill = "#000000"
		}
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n%s</g>\n", fill, groups[ink].String())
	}
	sb.WriteString("</svg>")
	return sb.String()
}
