package animation

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"math"
)

// Style describes how a fan frame is drawn.
type Style struct {
	Size        int
	Blades      int
	BladeLength float64
	HubRadius   float64
	Limit       float64
	// BladeWidth is the stroke width in pixels.
	BladeWidth float64
}

func DefaultStyle() Style {
	return Style{
		Size:        320,
		Blades:      3,
		BladeLength: 1.2,
		HubRadius:   0.08,
		Limit:       1.5,
		BladeWidth:  10,
	}
}

const (
	colorBackground uint8 = iota
	colorBlade
	colorHub
)

var palette = color.Palette{
	color.White,
	color.RGBA{B: 0xff, A: 0xff},
	color.Black,
}

// DrawFrame renders one frame with the blades rotated to angle.
func DrawFrame(angle float64, s Style) *image.Paletted {
	if s.Size <= 0 {
		s.Size = DefaultStyle().Size
	}
	if s.Limit <= 0 {
		s.Limit = DefaultStyle().Limit
	}
	img := image.NewPaletted(image.Rect(0, 0, s.Size, s.Size), palette)

	scale := float64(s.Size) / (2 * s.Limit)
	toPx := func(x, y float64) (float64, float64) {
		return (x + s.Limit) * scale, (s.Limit - y) * scale
	}

	// hub underneath, blades on top
	cx, cy := toPx(0, 0)
	fillCircle(img, cx, cy, s.HubRadius*scale, colorHub)
	half := s.BladeWidth / 2
	for _, tip := range BladeTips(angle, s.Blades, s.BladeLength) {
		tx, ty := toPx(tip[0], tip[1])
		strokeSegment(img, cx, cy, tx, ty, half, colorBlade)
	}
	return img
}

// Frames renders every angle of a sequence, several frames at a time.
func Frames(angles []float64, s Style) []*image.Paletted {
	out := make([]*image.Paletted, len(angles))
	ParallelFor(len(angles), 4, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = DrawFrame(angles[i], s)
		}
	})
	return out
}

// EncodeGIF writes a looping animation with one delay per frame.
func EncodeGIF(w io.Writer, frames []*image.Paletted, fps int) error {
	if fps <= 0 {
		fps = DefaultFPS
	}
	delay := int(math.Round(100 / float64(fps)))
	if delay < 2 {
		delay = 2
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

func EncodePNG(w io.Writer, frame image.Image) error {
	return png.Encode(w, frame)
}

// strokeSegment paints every pixel within half of the segment, giving the
// blades round caps.
func strokeSegment(img *image.Paletted, x0, y0, x1, y1, half float64, idx uint8) {
	b := img.Bounds()
	minX := int(math.Floor(math.Min(x0, x1) - half))
	maxX := int(math.Ceil(math.Max(x0, x1) + half))
	minY := int(math.Floor(math.Min(y0, y1) - half))
	maxY := int(math.Ceil(math.Max(y0, y1) + half))
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	for py := max(minY, b.Min.Y); py <= min(maxY, b.Max.Y-1); py++ {
		for px := max(minX, b.Min.X); px <= min(maxX, b.Max.X-1); px++ {
			fx, fy := float64(px)+0.5, float64(py)+0.5
			t := 0.0
			if lenSq > 0 {
				t = ((fx-x0)*dx + (fy-y0)*dy) / lenSq
				t = math.Max(0, math.Min(1, t))
			}
			ex, ey := fx-(x0+t*dx), fy-(y0+t*dy)
			if ex*ex+ey*ey <= half*half {
				img.SetColorIndex(px, py, idx)
			}
		}
	}
}

func fillCircle(img *image.Paletted, cx, cy, r float64, idx uint8) {
	b := img.Bounds()
	for py := max(int(cy-r), b.Min.Y); py <= min(int(cy+r)+1, b.Max.Y-1); py++ {
		for px := max(int(cx-r), b.Min.X); px <= min(int(cx+r)+1, b.Max.X-1); px++ {
			fx, fy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if fx*fx+fy*fy <= r*r {
				img.SetColorIndex(px, py, idx)
			}
		}
	}
}
