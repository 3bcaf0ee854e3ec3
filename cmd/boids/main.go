package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/internal/render"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

var errUnexpectedReply = errors.New("world replied with an unexpected message")

func main() {
	configFile := flag.String("config", "", "path to a .json or .toml config file (defaults are used when empty)")
	headless := flag.Bool("headless", false, "run without a window and print stats at the end")
	ticks := flag.Int("ticks", 1000, "number of ticks to run in headless mode")
	debug := flag.Bool("debug", false, "enable debug logging")
	verify := flag.Bool("verify", false, "check grid invariants after every tick")
	flag.Parse()

	level := golog.InfoLevel
	if *debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stdout)

	cfg := flock.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = simulation.LoadConfig(*configFile)
		if err != nil {
			log.Fatal(err)
		}
	}
	for _, w := range cfg.Warnings() {
		logger.Warnf("config: %s", w)
	}

	engine, err := flock.New(*cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("BoidsWorld", actor.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = system.Stop(ctx) }()

	var opts []simulation.WorldOption
	if *verify {
		opts = append(opts, simulation.WithInvariantChecks())
	}

	if *headless {
		if err := runHeadless(ctx, system, engine, *ticks, logger, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Buffered channel: UI reads, World writes
	snapshotCh := make(chan *simulation.Snapshot, 1)
	pid, err := simulation.SpawnWorld(ctx, system, engine, snapshotCh, opts...)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle("Boids on a torus")
	game := render.NewGame(ctx, pid, snapshotCh, cfg.Width, cfg.Height, cfg.CellSize)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}

// runHeadless drives the world for n ticks and logs the final stats.
func runHeadless(ctx context.Context, system actor.ActorSystem, engine *flock.Engine, n int, logger golog.Logger, opts []simulation.WorldOption) error {
	pid, err := simulation.SpawnWorld(ctx, system, engine, nil, opts...)
	if err != nil {
		return err
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := actor.Tell(ctx, pid, simulation.NewTick()); err != nil {
			return err
		}
	}
	// stats are answered after every queued tick
	resp, err := actor.Ask(ctx, pid, simulation.NewStatsRequest(), time.Minute)
	if err != nil {
		return err
	}
	reply, ok := resp.(*structpb.Struct)
	if !ok {
		return errUnexpectedReply
	}
	st := simulation.StatsFromProto(reply)
	elapsed := time.Since(start)
	logger.Infof("%d ticks in %s (%.1f ticks/sec)", st.Tick, elapsed.Round(time.Millisecond), float64(st.Tick)/elapsed.Seconds())
	logger.Infof("population %d | speed mean %.3f max %.3f | neighbors %.2f | cells %d",
		st.Population, st.MeanSpeed, st.MaxSpeed, st.MeanNeighbors, st.OccupiedCells)
	return nil
}
