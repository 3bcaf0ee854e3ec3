package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestEngine(t *testing.T) *flock.Engine {
	t.Helper()
	cfg := *flock.DefaultConfig()
	cfg.Width, cfg.Height = 400, 300
	cfg.Population = 150
	cfg.CellSize = 50
	cfg.Seed = 7
	e, err := flock.New(cfg)
	if err != nil {
		t.Fatalf("flock.New failed: %v", err)
	}
	return e
}

func startSystem(t *testing.T) (context.Context, actor.ActorSystem) {
	t.Helper()
	ctx := context.Background()
	system, err := actor.NewActorSystem("BoidsTest", actor.WithLogger(golog.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem failed: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })
	return ctx, system
}

func TestWorldActor_TicksAndReportsStats(t *testing.T) {
	ctx, system := startSystem(t)
	engine := newTestEngine(t)
	snapshots := make(chan *Snapshot, 16)

	pid, err := SpawnWorld(ctx, system, engine, snapshots, WithInvariantChecks())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		if err := actor.Tell(ctx, pid, NewTick()); err != nil {
			t.Fatalf("Tell tick %d failed: %v", i, err)
		}
	}

	// the mailbox is FIFO: the reply comes after all five ticks
	resp, err := actor.Ask(ctx, pid, NewStatsRequest(), time.Second)
	if err != nil {
		t.Fatalf("Ask stats failed: %v", err)
	}
	reply, ok := resp.(*structpb.Struct)
	if !ok {
		t.Fatalf("stats reply is %T; want *structpb.Struct", resp)
	}
	st := StatsFromProto(reply)
	if st.Tick != 5 {
		t.Errorf("Tick = %d; want 5", st.Tick)
	}
	if st.Population != 150 {
		t.Errorf("Population = %d; want 150", st.Population)
	}

	var last *Snapshot
Loop:
	for {
		select {
		case snap := <-snapshots:
			last = snap
		default:
			break Loop
		}
	}
	if last == nil {
		t.Fatal("no snapshot was pushed")
	}
	if last.Tick != 5 || len(last.Boids) != 150 {
		t.Errorf("last snapshot tick %d with %d boids; want tick 5 with 150", last.Tick, len(last.Boids))
	}
	if last.Width != 400 || last.Height != 300 {
		t.Errorf("snapshot plane %vx%v; want 400x300", last.Width, last.Height)
	}
}

func TestWorldActor_NilSnapshotChannel(t *testing.T) {
	ctx, system := startSystem(t)
	pid, err := SpawnWorld(ctx, system, newTestEngine(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := actor.Tell(ctx, pid, NewTick()); err != nil {
		t.Fatal(err)
	}
	resp, err := actor.Ask(ctx, pid, NewStatsRequest(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if st := StatsFromProto(resp.(*structpb.Struct)); st.Tick != 1 {
		t.Errorf("Tick = %d; want 1", st.Tick)
	}
}

func TestNewSnapshot_CopiesState(t *testing.T) {
	engine := newTestEngine(t)
	snap := NewSnapshot(engine)

	agents := engine.Agents()
	for i, b := range snap.Boids {
		a := agents[i]
		if b.ID != a.ID || b.X != a.Pos.X || b.Y != a.Pos.Y || b.Heading != a.Heading {
			t.Fatalf("boid %d = %+v; want agent %+v", i, b, a)
		}
	}

	engine.Tick()
	if snap.Tick != 0 {
		t.Errorf("snapshot tick changed to %d after engine ticked", snap.Tick)
	}
}

func TestStatsProtoRoundTrip(t *testing.T) {
	in := flock.Stats{Tick: 42, Population: 10, MeanSpeed: 1.5, MaxSpeed: 3, MeanNeighbors: 2.25, OccupiedCells: 4}
	st, err := statsToProto(in)
	if err != nil {
		t.Fatal(err)
	}
	if out := StatsFromProto(st); out != in {
		t.Errorf("StatsFromProto = %+v; want %+v", out, in)
	}
}
