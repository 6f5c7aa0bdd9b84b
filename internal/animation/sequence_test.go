package animation

import (
	"math"
	"testing"
)

func TestAngleStep(t *testing.T) {
	// 60 rpm is one revolution per second: 30 frames cover a full turn.
	step := AngleStep(60, 30)
	if math.Abs(step*30-2*math.Pi) > 1e-12 {
		t.Errorf("expected 30 steps per revolution, got step %v", step)
	}

	if AngleStep(30, 0) != AngleStep(30, DefaultFPS) {
		t.Error("zero fps should fall back to the default rate")
	}
}

func TestSequence(t *testing.T) {
	angles := Sequence(30, DefaultFrames, DefaultFPS)
	if len(angles) != 30 {
		t.Fatalf("expected 30 frames, got %d", len(angles))
	}
	if angles[0] != 0 {
		t.Errorf("expected first angle 0, got %v", angles[0])
	}
	step := AngleStep(30, DefaultFPS)
	for i := 1; i < len(angles); i++ {
		if d := angles[i] - angles[i-1]; math.Abs(d-step) > 1e-12 {
			t.Fatalf("frame %d: expected step %v, got %v", i, step, d)
		}
	}

	if Sequence(30, 0, 30) != nil {
		t.Error("expected no angles for zero frames")
	}
}

func TestBladeTips(t *testing.T) {
	tips := BladeTips(0, 3, 1.2)
	if len(tips) != 3 {
		t.Fatalf("expected 3 tips, got %d", len(tips))
	}
	if math.Abs(tips[0][0]-1.2) > 1e-12 || math.Abs(tips[0][1]) > 1e-12 {
		t.Errorf("first blade should point along +x, got %v", tips[0])
	}
	for i, tip := range tips {
		if r := math.Hypot(tip[0], tip[1]); math.Abs(r-1.2) > 1e-12 {
			t.Errorf("blade %d: expected length 1.2, got %v", i, r)
		}
	}
	sumX, sumY := 0.0, 0.0
	for _, tip := range tips {
		sumX += tip[0]
		sumY += tip[1]
	}
	if math.Abs(sumX) > 1e-9 || math.Abs(sumY) > 1e-9 {
		t.Errorf("evenly spaced blades should cancel, got (%v, %v)", sumX, sumY)
	}
}
