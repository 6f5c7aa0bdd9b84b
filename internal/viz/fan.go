package viz

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/turbine"
)

// DrawFan draws the 2D fan on c with the axes spanning ±s.Limit.
func DrawFan(c *Canvas, angle float64, s animation.Style) {
	cw, ch := c.PixelSize()
	limit := s.Limit
	if limit <= 0 {
		limit = animation.DefaultStyle().Limit
	}
	scale := float64(min(cw, ch)) / (2 * limit)
	ox, oy := float64(cw)/2, float64(ch)/2
	toPx := func(x, y float64) (int, int) {
		return int(math.Round(ox + x*scale)), int(math.Round(oy - y*scale))
	}

	width := 1
	if s.Size > 0 {
		width = max(1, int(math.Round(s.BladeWidth*float64(min(cw, ch))/float64(s.Size))))
	}
	c.SetPen(InkFan)
	for _, tip := range animation.BladeTips(angle, s.Blades, s.BladeLength) {
		x0, y0 := toPx(0, 0)
		x1, y1 := toPx(tip[0], tip[1])
		c.DrawThickLine(x0, y0, x1, y1, width)
	}
	c.SetPen(InkHub)
	hx, hy := toPx(0, 0)
	c.FillCircle(hx, hy, max(1, int(math.Round(s.HubRadius*scale))))
}

// FanTerminal plays the fan animation as ANSI frames on a braille canvas.
type FanTerminal struct {
	Out    io.Writer
	Width  int
	Height int
	Style  animation.Style
	Theme  Theme
	// Color disables lipgloss styling when false, e.g. for piped output.
	Color bool
}

func NewFanTerminal(out io.Writer, theme Theme) *FanTerminal {
	return &FanTerminal{
		Out:    out,
		Width:  40,
		Height: 20,
		Style:  animation.DefaultStyle(),
		Theme:  theme,
		Color:  true,
	}
}

// Frame renders one frame with its overlay text.
func (f *FanTerminal) Frame(angle float64, est turbine.FanEstimate) string {
	c := NewCanvas(f.Width, f.Height)
	DrawFan(c, angle, f.Style)
	var b strings.Builder
	if f.Color {
		b.WriteString(c.Render(f.Theme.Inks()))
	} else {
		b.WriteString(strings.TrimRight(c.String(), "\n"))
	}
	b.WriteString("\n\n" + turbine.FanHeading + "\n")
	for _, line := range est.Overlay() {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Play runs the bounded frame sequence for rpm, redrawing in place. With loops
// <= 0 it repeats until ctx is done.
func (f *FanTerminal) Play(ctx context.Context, rpm float64, frames, fps, loops int) error {
	angles := animation.Sequence(rpm, frames, fps)
	est := turbine.Fan(rpm)
	player := animation.NewPlayer(fps)
	for n := 0; loops <= 0 || n < loops; n++ {
		err := player.Play(ctx, len(angles), func(i int) error {
			_, err := fmt.Fprint(f.Out, "\x1b[H\x1b[2J"+f.Frame(angles[i], est))
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
