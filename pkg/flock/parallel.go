package flock

import (
	"golang.org/x/sync/errgroup"
)

// tickParallel moves and relocates every agent first. Only once the grid is
// settled do the workers query neighbors and compute steering, each on its
// own slice of IDs, writing to e.next. Velocities are applied at the end so
// every agent steers against the same snapshot.
func (e *Engine) tickParallel() {
	for i := range e.agents {
		a := &e.agents[i]
		a.move(e)
		e.relocate(a)
	}

	total := len(e.agents)
	chunk := (total + len(e.workers) - 1) / len(e.workers)

	var g errgroup.Group
	for w, s := range e.workers {
		lo := w * chunk
		hi := min(lo+chunk, total)
		s.seen = 0
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			e.steerRange(lo, hi, s)
			return nil
		})
	}
	_ = g.Wait()

	e.lastNeighbors = 0
	for _, s := range e.workers {
		e.lastNeighbors += s.seen
	}
	for i := range e.agents {
		a := &e.agents[i]
		a.Vel = e.next[i]
		a.Heading = a.Vel.Angle()
	}
}

// steerRange only reads agents and the grid and writes e.next[lo:hi].
func (e *Engine) steerRange(lo, hi int, s *scratch) {
	for i := lo; i < hi; i++ {
		a := &e.agents[i]
		neighbors := e.queryNeighbors(a, s)
		if len(neighbors) == 0 {
			e.next[i] = a.Vel
			continue
		}
		s.seen += len(neighbors)
		e.next[i] = a.Vel.Add(e.steer(a, neighbors, s.rng).Sum())
	}
}
