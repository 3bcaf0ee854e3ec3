package simulation

import "github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"

// BoidView is what the renderer needs to draw one boid.
type BoidView struct {
	ID      int
	X, Y    float64
	Heading float64
}

// Snapshot is a copy of the engine state after a tick. It shares no memory
// with the engine, so it can cross goroutines freely.
type Snapshot struct {
	Tick   uint64
	Width  float64
	Height float64
	Boids  []BoidView
}

// NewSnapshot copies the current agent positions and headings out of e.
func NewSnapshot(e *flock.Engine) *Snapshot {
	agents := e.Agents()
	plane := e.Plane()
	snap := &Snapshot{
		Tick:   e.Ticks(),
		Width:  plane.Width,
		Height: plane.Height,
		Boids:  make([]BoidView, len(agents)),
	}
	for i := range agents {
		a := &agents[i]
		snap.Boids[i] = BoidView{ID: a.ID, X: a.Pos.X, Y: a.Pos.Y, Heading: a.Heading}
	}
	return snap
}
