package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/spatial"
)

// Stats summarizes the engine after the last Tick.
type Stats struct {
	Tick          uint64
	Population    int
	MeanSpeed     float64
	MaxSpeed      float64
	MeanNeighbors float64 // neighbors per agent seen during the last tick
	OccupiedCells int
}

// Stats computes a summary over all agents.
func (e *Engine) Stats() Stats {
	st := Stats{
		Tick:       e.tick,
		Population: len(e.agents),
	}
	if len(e.agents) == 0 {
		return st
	}

	occupied := make(map[spatial.Cell]struct{})
	var sum float64
	for i := range e.agents {
		a := &e.agents[i]
		speed := a.Vel.Len()
		sum += speed
		st.MaxSpeed = math.Max(st.MaxSpeed, speed)
		occupied[a.Cell] = struct{}{}
	}
	st.MeanSpeed = sum / float64(len(e.agents))
	st.MeanNeighbors = float64(e.lastNeighbors) / float64(len(e.agents))
	st.OccupiedCells = len(occupied)
	return st
}
