package flock

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
)

// Steering holds the four weighted terms added to an agent's velocity.
type Steering struct {
	Alignment  geometry.Vector2D // toward the normalized mean neighbor velocity
	Avoidance  geometry.Vector2D // away from neighbors
	Attraction geometry.Vector2D // toward the local centroid
	Random     geometry.Vector2D // unit jitter times RandomWeight
}

// Sum is the total velocity change.
func (s Steering) Sum() geometry.Vector2D {
	return s.Alignment.Add(s.Avoidance).Add(s.Attraction).Add(s.Random)
}

// steer computes the forces on a from a non-empty neighbor list.
// Velocity is not renormalized afterwards, so speed may drift over time.
func (e *Engine) steer(a *Agent, neighbors []int, rng *rand.Rand) Steering {
	n := float64(len(neighbors))

	var velSum, awaySum, posSum geometry.Vector2D
	for _, id := range neighbors {
		other := &e.agents[id]
		// other's image closest to a, so centroid and push-away follow the short path
		adjusted := e.plane.AdjustedPosition(a.Pos, other.Pos)

		velSum = velSum.Add(other.Vel)
		awaySum = awaySum.Sub(adjusted.Sub(a.Pos))
		posSum = posSum.Add(adjusted)
	}

	var s Steering
	if w := e.cfg.AlignmentWeight; w != 0 {
		s.Alignment = velSum.Mul(1 / n).Normalize().Sub(a.Vel).Mul(w)
	}
	if w := e.cfg.AvoidanceWeight; w != 0 {
		s.Avoidance = awaySum.Normalize().Mul(w)
	}
	if w := e.cfg.AttractionWeight; w != 0 {
		s.Attraction = posSum.Mul(1 / n).Sub(a.Pos).Normalize().Mul(w)
	}
	if w := e.cfg.RandomWeight; w != 0 {
		s.Random = geometry.NewVectorPolar(1, rng.Float64()*2*math.Pi).Mul(w)
	}
	return s
}
