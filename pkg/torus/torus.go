// Package torus measures distances on a rectangular plane whose edges wrap
// around to the opposite edge.
package torus

import (
	"math"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
)

// Wrap maps v into [0, extent). extent must be positive.
func Wrap(v, extent float64) float64 {
	r := math.Mod(v, extent)
	if r < 0 {
		r += extent
	}
	// -tiny + extent can round up to extent itself
	if r >= extent {
		r = 0
	}
	return r
}

// Plane is a Width x Height rectangle with wrap-around on both axes.
type Plane struct {
	Width  float64
	Height float64
}

// Wrap brings v back onto the plane.
func (p Plane) Wrap(v geometry.Vector2D) geometry.Vector2D {
	return geometry.Vector2D{X: Wrap(v.X, p.Width), Y: Wrap(v.Y, p.Height)}
}

// Contains reports whether v already lies in [0,Width) x [0,Height).
func (p Plane) Contains(v geometry.Vector2D) bool {
	return v.X >= 0 && v.X < p.Width && v.Y >= 0 && v.Y < p.Height
}

// DistanceSquared is the squared length of the shortest path from a to b.
func (p Plane) DistanceSquared(a, b geometry.Vector2D) float64 {
	dx := axisGap(a.X, b.X, p.Width)
	dy := axisGap(a.Y, b.Y, p.Height)
	return dx*dx + dy*dy
}

// Distance is the length of the shortest path from a to b.
func (p Plane) Distance(a, b geometry.Vector2D) float64 {
	return math.Sqrt(p.DistanceSquared(a, b))
}

// AdjustedPosition returns the copy of to (shifted by -extent, 0 or +extent
// on each axis) that lies closest to from.
func (p Plane) AdjustedPosition(from, to geometry.Vector2D) geometry.Vector2D {
	return geometry.Vector2D{
		X: nearestImage(from.X, to.X, p.Width),
		Y: nearestImage(from.Y, to.Y, p.Height),
	}
}

// Displacement is the vector travelled along the shortest path from -> to.
func (p Plane) Displacement(from, to geometry.Vector2D) geometry.Vector2D {
	return p.AdjustedPosition(from, to).Sub(from)
}

func axisGap(a, b, extent float64) float64 {
	d := math.Abs(a - b)
	return math.Min(d, extent-d)
}

// nearestImage picks among to-extent, to, to+extent. On a tie the earlier
// candidate wins so antipodal points always resolve the same way.
func nearestImage(from, to, extent float64) float64 {
	best := to - extent
	bestGap := math.Abs(best - from)
	for _, c := range [2]float64{to, to + extent} {
		if g := math.Abs(c - from); g < bestGap {
			best, bestGap = c, g
		}
	}
	return best
}
