package viz

import (
	"math"
	"testing"
)

func TestBladeCurvesShape(t *testing.T) {
	blades := BladeCurves(25, 3, BladeSamples)
	if len(blades) != 3 {
		t.Fatalf("expected 3 blades, got %d", len(blades))
	}
	for i, b := range blades {
		if len(b.Points) != BladeSamples {
			t.Errorf("blade %d: %d points", i, len(b.Points))
		}
		if want := BladeColors[i]; b.Color != want {
			t.Errorf("blade %d colour %s, want %s", i, b.Color, want)
		}
	}
	if blades[0].Name != "Blade 1" || blades[2].Name != "Blade 3" {
		t.Errorf("unexpected names %q, %q", blades[0].Name, blades[2].Name)
	}
}

func TestBladeCurvesGeometry(t *testing.T) {
	const l = 10.0
	blades := BladeCurves(l, 4, BladeSamples)
	for i, b := range blades {
		a := float64(i) * math.Pi / 2
		first, last := b.Points[0], b.Points[len(b.Points)-1]
		if math.Abs(first.X-l*math.Cos(a)) > 1e-9 || math.Abs(first.Y-l*math.Sin(a)) > 1e-9 || first.Z != 0 {
			t.Errorf("blade %d starts at %+v", i, first)
		}
		if first.Sub(last).Length() > 1e-9 {
			t.Errorf("blade %d is not a closed loop", i)
		}
		for _, p := range b.Points {
			if math.Abs(p.Z) > 0.15*l+1e-9 {
				t.Fatalf("blade %d twist exceeds 15%%: z=%f", i, p.Z)
			}
		}
	}
}

func TestBladeColorsCycle(t *testing.T) {
	blades := BladeCurves(5, 4, 10)
	if blades[3].Color != BladeColors[0] {
		t.Errorf("fourth blade should reuse the first colour, got %s", blades[3].Color)
	}
}

func TestBladeCurvesEmpty(t *testing.T) {
	if BladeCurves(5, 0, 10) != nil || BladeCurves(5, 2, 0) != nil {
		t.Error("expected nil for empty input")
	}
}
