package animation

import (
	"context"
	"time"
)

// Player emits a bounded number of frames at a fixed rate. Play blocks until
// every frame has been emitted or ctx is done.
type Player struct {
	FPS int
}

func NewPlayer(fps int) *Player {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Player{FPS: fps}
}

func (p *Player) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS)
}

// Play calls emit for frames 0..n-1, sleeping one interval after each.
func (p *Player) Play(ctx context.Context, n int, emit func(i int) error) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(i); err != nil {
			return err
		}
		timer.Reset(p.Interval())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
