package animation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestPlayEmitsEveryFrame(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPlayer(200)
	var seen []int
	start := time.Now()
	err := p.Play(context.Background(), 10, func(i int) error {
		seen = append(seen, i)
		return nil
	})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if len(seen) != 10 || seen[9] != 9 {
		t.Errorf("expected frames 0..9, got %v", seen)
	}
	if elapsed := time.Since(start); elapsed < 10*p.Interval() {
		t.Errorf("expected at least %v of playback, got %v", 10*p.Interval(), elapsed)
	}
}

func TestPlayCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPlayer(30)
	count := 0
	err := p.Play(ctx, DefaultFrames, func(i int) error {
		count++
		if i == 2 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 frames before cancel, got %d", count)
	}
}

func TestPlayStopsOnEmitError(t *testing.T) {
	boom := errors.New("render failed")
	err := NewPlayer(1000).Play(context.Background(), 5, func(i int) error {
		if i == 1 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected render error, got %v", err)
	}
}

func TestNewPlayerDefaultRate(t *testing.T) {
	if NewPlayer(0).FPS != DefaultFPS {
		t.Error("expected default fps")
	}
}
