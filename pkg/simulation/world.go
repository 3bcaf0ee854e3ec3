package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// WorldActorName is the name the world is spawned under.
const WorldActorName = "world"

// WorldActor owns the flock engine. The mailbox processes one message at a
// time, so the engine is only ever touched by a single goroutine.
type WorldActor struct {
	engine *flock.Engine
	// Communication with UI
	snapshotCh chan<- *Snapshot
	verify     bool
	// --- Benchmark Stats ---
	ticksSinceLog int
	lastLogTime   time.Time
	frameLag      time.Duration
}

var _ actor.Actor = (*WorldActor)(nil)

// WorldOption customizes a WorldActor.
type WorldOption func(*WorldActor)

// WithInvariantChecks runs engine.CheckInvariants after every tick and logs failures.
func WithInvariantChecks() WorldOption {
	return func(w *WorldActor) { w.verify = true }
}

// NewWorldActor wraps engine. Snapshots are pushed to snapshotCh after every
// tick without blocking; a nil channel disables them.
func NewWorldActor(engine *flock.Engine, snapshotCh chan<- *Snapshot, opts ...WorldOption) *WorldActor {
	w := &WorldActor{
		engine:      engine,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// SpawnWorld starts a WorldActor for engine inside system.
func SpawnWorld(ctx context.Context, system actor.ActorSystem, engine *flock.Engine, snapshotCh chan<- *Snapshot, opts ...WorldOption) (*actor.PID, error) {
	pid, err := system.Spawn(ctx, WorldActorName, NewWorldActor(engine, snapshotCh, opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return pid, nil
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	cfg := w.engine.Config()
	ctx.ActorSystem().Logger().Infof("World is seeding %d boids on a %.0fx%.0f torus (radius %.1f, cell %.1f, workers %d)",
		cfg.Population, cfg.Width, cfg.Height, cfg.VisualRadius, cfg.CellSize, cfg.Workers)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started.")
		w.pushSnapshot()

	// The Main Simulation Step (Driven by Game Loop)
	case *timestamppb.Timestamp:
		w.engine.Tick()
		w.ticksSinceLog++
		w.frameLag = time.Since(msg.AsTime())

		if w.verify {
			if err := w.engine.CheckInvariants(); err != nil {
				ctx.Logger().Errorf("tick %d: %v", w.engine.Ticks(), err)
			}
		}
		w.logBenchmarks(ctx)
		w.pushSnapshot()

	case *emptypb.Empty:
		stats, err := statsToProto(w.engine.Stats())
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(stats)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		st := w.engine.Stats()
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | tick %d | lag %s | speed mean %.2f max %.2f | neighbors %.1f | cells %d",
			w.ticksSinceLog, st.Tick, w.frameLag.Round(time.Microsecond), st.MeanSpeed, st.MaxSpeed, st.MeanNeighbors, st.OccupiedCells)
		w.ticksSinceLog = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- NewSnapshot(w.engine):
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	w.engine.Close()
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}
