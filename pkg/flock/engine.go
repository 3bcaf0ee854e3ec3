// Package flock runs the boids simulation: an arena of agents on a toroidal
// plane, a spatial grid for neighbor discovery and the four steering forces.
//
// An Engine is owned by its caller and is not safe for concurrent use;
// the caller invokes Tick once per frame and reads Agents in between.
package flock

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/torus"
)

var (
	// ErrUnknownAgent is returned for IDs outside the arena.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("engine is closed")
)

// Engine owns the grid and every agent.
type Engine struct {
	cfg      Config
	plane    torus.Plane
	grid     *spatial.Grid
	agents   []Agent
	radiusSq float64

	main    *scratch   // sequential tick
	workers []*scratch // parallel tick, one per goroutine
	next    []geometry.Vector2D

	tick          uint64
	lastNeighbors int
	closed        bool
}

// scratch holds the buffers and random source of one goroutine.
type scratch struct {
	candidates []int
	neighbors  []int
	rng        *rand.Rand
	seen       int
}

type options struct {
	rng     *rand.Rand
	initial []State
}

// Option customizes New.
type Option func(*options)

// WithRand makes the engine draw every random number from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithInitialState places agent i at states[i] instead of a random spot.
// len(states) must equal Config.Population.
func WithInitialState(states []State) Option {
	return func(o *options) { o.initial = states }
}

// New validates cfg, builds the grid and spawns the population.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.initial != nil && len(o.initial) != cfg.Population {
		return nil, fmt.Errorf("%w: %d initial states for a population of %d", ErrInvalidConfig, len(o.initial), cfg.Population)
	}
	rng := o.rng
	if rng == nil {
		rng = newRand(cfg.Seed)
	}

	grid, err := spatial.New(cfg.Width, cfg.Height, cfg.CellSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		cfg:      cfg,
		plane:    torus.Plane{Width: cfg.Width, Height: cfg.Height},
		grid:     grid,
		agents:   make([]Agent, cfg.Population),
		radiusSq: cfg.VisualRadius * cfg.VisualRadius,
		main:     &scratch{rng: rng},
	}
	e.spawn(o.initial, rng)

	if cfg.Workers > 1 {
		e.next = make([]geometry.Vector2D, cfg.Population)
		e.workers = make([]*scratch, cfg.Workers)
		for i := range e.workers {
			// each goroutine gets its own stream, derived from the main one
			e.workers[i] = &scratch{rng: rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))}
		}
	}
	return e, nil
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (e *Engine) spawn(initial []State, rng *rand.Rand) {
	for i := range e.agents {
		var st State
		if initial != nil {
			st = initial[i]
		} else {
			st = State{
				Pos: geometry.Vector2D{X: rng.Float64() * e.cfg.Width, Y: rng.Float64() * e.cfg.Height},
				Vel: geometry.NewVectorPolar(1, rng.Float64()*2*math.Pi),
			}
		}
		a := &e.agents[i]
		a.ID = i
		a.Pos = e.plane.Wrap(st.Pos)
		a.Vel = st.Vel
		a.Heading = st.Vel.Angle()
		a.Cell = e.grid.Insert(i, a.Pos)
	}
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Plane returns the wrap-around plane the agents live on.
func (e *Engine) Plane() torus.Plane { return e.plane }

// Grid exposes the spatial index for inspection. Callers must not mutate it.
func (e *Engine) Grid() *spatial.Grid { return e.grid }

// Agents returns the agent arena. The slice is owned by the engine: read it
// between ticks, never modify it or keep it across a Tick.
func (e *Engine) Agents() []Agent { return e.agents }

// Agent returns a copy of agent id.
func (e *Engine) Agent(id int) (Agent, bool) {
	if id < 0 || id >= len(e.agents) {
		return Agent{}, false
	}
	return e.agents[id], true
}

// Ticks is the number of completed Tick calls.
func (e *Engine) Ticks() uint64 { return e.tick }

// Tick advances the simulation by one step. For each agent in ID order it
// moves, relocates in the grid, finds its neighbors and steers. With
// Config.Workers > 1 the steering phase runs in parallel once every agent
// has moved.
func (e *Engine) Tick() {
	if e.closed {
		return
	}
	if len(e.workers) > 1 {
		e.tickParallel()
	} else {
		e.tickSequential()
	}
	e.tick++
}

func (e *Engine) tickSequential() {
	s := e.main
	s.seen = 0
	for i := range e.agents {
		a := &e.agents[i]

		a.move(e)
		e.relocate(a)

		neighbors := e.queryNeighbors(a, s)
		if len(neighbors) == 0 {
			continue
		}
		s.seen += len(neighbors)
		a.Vel = a.Vel.Add(e.steer(a, neighbors, s.rng).Sum())
		a.Heading = a.Vel.Angle()
	}
	e.lastNeighbors = s.seen
}

// relocate keeps a.Cell equal to the cell covering a.Pos.
func (e *Engine) relocate(a *Agent) {
	a.Cell, _ = e.grid.Relocate(a.ID, a.Cell, a.Pos)
}

// queryNeighbors returns the IDs strictly inside the visual radius of a,
// excluding a itself. The result lives in s and is reused by the next call.
func (e *Engine) queryNeighbors(a *Agent, s *scratch) []int {
	s.candidates = e.grid.QueryRadius(a.Pos, e.cfg.VisualRadius, s.candidates[:0])
	s.neighbors = s.neighbors[:0]
	for _, id := range s.candidates {
		if id == a.ID {
			continue
		}
		if e.plane.DistanceSquared(a.Pos, e.agents[id].Pos) < e.radiusSq {
			s.neighbors = append(s.neighbors, id)
		}
	}
	return s.neighbors
}

// Neighbors appends to dst the IDs agent id currently sees.
func (e *Engine) Neighbors(id int, dst []int) ([]int, error) {
	if id < 0 || id >= len(e.agents) {
		return dst, fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	return append(dst, e.queryNeighbors(&e.agents[id], e.main)...), nil
}

// Steer computes the four steering terms for agent id against the given
// neighbor IDs without applying them. An empty neighbor list yields a zero Steering.
func (e *Engine) Steer(id int, neighbors []int) (Steering, error) {
	if id < 0 || id >= len(e.agents) {
		return Steering{}, fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	if len(neighbors) == 0 {
		return Steering{}, nil
	}
	return e.steer(&e.agents[id], neighbors, e.main.rng), nil
}

// SetState moves agent id to pos (wrapped) with velocity vel and updates its cell.
func (e *Engine) SetState(id int, pos, vel geometry.Vector2D) error {
	if id < 0 || id >= len(e.agents) {
		return fmt.Errorf("%w: %d", ErrUnknownAgent, id)
	}
	if e.closed {
		return ErrClosed
	}
	if !pos.IsFinite() || !vel.IsFinite() {
		return fmt.Errorf("%w: non-finite state pos=%v vel=%v", ErrInvalidConfig, pos, vel)
	}
	a := &e.agents[id]
	a.Pos = e.plane.Wrap(pos)
	a.Vel = vel
	a.Heading = vel.Angle()
	e.relocate(a)
	return nil
}

// Close removes every agent from the grid. Tick is a no-op afterwards and
// SetState returns ErrClosed.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	for i := range e.agents {
		e.grid.Remove(e.agents[i].ID, e.agents[i].Cell)
	}
	e.closed = true
}

// CheckInvariants verifies that every agent is on the plane and stored in
// exactly one cell, the one covering its position.
func (e *Engine) CheckInvariants() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...))
	}

	if e.closed {
		if n := e.grid.Len(); n != 0 {
			fail("closed engine still has %d grid entries", n)
		}
		return errors.Join(errs...)
	}

	seen := make([]int, len(e.agents))
	e.grid.ForEach(func(id int, c spatial.Cell) {
		if id < 0 || id >= len(e.agents) {
			fail("grid cell %s holds unknown id %d", c, id)
			return
		}
		seen[id]++
		if c != e.agents[id].Cell {
			fail("agent %d found in cell %s but records %s", id, c, e.agents[id].Cell)
		}
	})

	for i := range e.agents {
		a := &e.agents[i]
		if !e.plane.Contains(a.Pos) {
			fail("agent %d at %v is off the %vx%v plane", a.ID, a.Pos, e.plane.Width, e.plane.Height)
		}
		if want := e.grid.CellFor(a.Pos); a.Cell != want {
			fail("agent %d records cell %s, position %v is in %s", a.ID, a.Cell, a.Pos, want)
		}
		if seen[i] != 1 {
			fail("agent %d stored in %d cells", a.ID, seen[i])
		}
	}
	return errors.Join(errs...)
}
