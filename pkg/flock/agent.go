package flock

import (
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/spatial"
)

// Agent is one boid. ID is its index in the engine's arena.
// We export fields so the renderer can read them after each Tick.
type Agent struct {
	ID      int
	Pos     geometry.Vector2D
	Vel     geometry.Vector2D
	Heading float64      // atan2 of Vel as of the end of the last tick, display only
	Cell    spatial.Cell // bucket currently holding ID
}

// State is the position and velocity used to seed an agent.
type State struct {
	Pos geometry.Vector2D
	Vel geometry.Vector2D
}

// move advances the agent by one step and wraps it onto the plane.
// Heading follows the velocity used for the step; steering updates it again.
func (a *Agent) move(e *Engine) {
	a.Pos = e.plane.Wrap(a.Pos.Add(a.Vel.Mul(e.cfg.Speed)))
	a.Heading = a.Vel.Angle()
}
