package viz

import (
	"fmt"
	"math"
)

// BladeSamples is the number of points along each helical blade curve.
const BladeSamples = 100

// BladeColors cycle across blades.
var BladeColors = []string{"#f80505", "#3b00fd", "#000000"}

// Blade is one helical blade line of the 3D plot.
type Blade struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Points []Vec3 `json:"points"`
}

// BladeCurves traces each blade as a closed helical loop of radius length,
// rotated by i·2π/n about the hub axis, with 10% chord and 15% twist.
func BladeCurves(length float64, blades, samples int) []Blade {
	if blades <= 0 || samples <= 0 {
		return nil
	}
	out := make([]Blade, blades)
	for i := range out {
		angle := float64(i) * (2 * math.Pi / float64(blades))
		ca, sa := math.Cos(angle), math.Sin(angle)
		pts := make([]Vec3, samples)
		for k := range pts {
			theta := 0.0
			if samples > 1 {
				theta = 2 * math.Pi * float64(k) / float64(samples-1)
			}
			ct, st := math.Cos(theta), math.Sin(theta)
			pts[k] = Vec3{
				X: length*ct*ca - length*0.1*st*sa,
				Y: length*ct*sa + length*0.1*st*ca,
				Z: length * 0.15 * math.Sin(2*theta),
			}
		}
		out[i] = Blade{
			Name:   fmt.Sprintf("Blade %d", i+1),
			Color:  BladeColors[i%len(BladeColors)],
			Points: pts,
		}
	}
	return out
}

// BladeWireframe normalises the blades to unit radius and inks blade i with i+1.
func BladeWireframe(blades []Blade, length float64) *Wireframe {
	w := NewWireframe()
	if length <= 0 {
		length = 1
	}
	for i, b := range blades {
		pts := make([]Vec3, len(b.Points))
		for k, p := range b.Points {
			pts[k] = p.Scale(1 / length)
		}
		w.AddPolyline(pts, i%len(BladeColors)+1)
	}
	return w
}
