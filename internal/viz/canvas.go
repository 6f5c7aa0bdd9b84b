package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille pixel grid. Each cell also remembers the ink (palette
// index) of the last dot drawn into it, so blades keep their colours.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]int
	pen           int
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Ink:    make([][]int, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]int, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

// SetPen selects the ink used by subsequent drawing calls.
func (c *Canvas) SetPen(ink int) { c.pen = ink }

// Set lights the sub-pixel (x, y).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
	c.Ink[row][col] = c.pen
}

// IsSet reports whether the sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
			c.Ink[i][j] = 0
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawThickLine strokes parallel lines to approximate a wide blade.
func (c *Canvas) DrawThickLine(x0, y0, x1, y1, width int) {
	c.DrawLine(x0, y0, x1, y1)
	for w := 1; w < width; w++ {
		off := (w + 1) / 2
		if w%2 == 0 {
			off = -off
		}
		if absInt(x1-x0) > absInt(y1-y0) {
			c.DrawLine(x0, y0+off, x1, y1+off)
		} else {
			c.DrawLine(x0+off, y0, x1+off, y1)
		}
	}
}

func (c *Canvas) FillCircle(cx, cy, r int) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			if x*x+y*y <= r*r {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render colours each cell with inks[ink]; cells with an ink outside the
// palette are left unstyled.
func (c *Canvas) Render(inks []lipgloss.Style) string {
	var b strings.Builder
	for row := range c.Grid {
		for col, r := range c.Grid[row] {
			ink := c.Ink[row][col]
			if r == brailleBase || ink < 0 || ink >= len(inks) {
				b.WriteRune(r)
				continue
			}
			b.WriteString(inks[ink].Render(string(r)))
		}
		if row < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
