// Package render draws the flock with ebiten. It never touches the engine:
// each frame it tells the world actor to tick and draws the newest snapshot
// the actor has pushed.
package render

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
)

var (
	backgroundColor = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	gridColor       = color.RGBA{R: 40, G: 40, B: 70, A: 255}
	boidColor       = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	leaderColor     = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	whiteImage      = ebiten.NewImage(3, 3)
)

const maxVertices = math.MaxUint16

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh <-chan *simulation.Snapshot
	lastState  *simulation.Snapshot

	width, height int
	cellSize      float64
	showGrid      bool

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame builds a viewer for a plane of width x height. When cellSize is
// positive the spatial grid lines are drawn under the boids.
func NewGame(ctx context.Context, worldPID *actor.PID, snapshotCh <-chan *simulation.Snapshot, width, height, cellSize float64) *Game {
	return &Game{
		ctx:        ctx,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  &simulation.Snapshot{}, // Avoid nil pointer
		width:      int(math.Ceil(width)),
		height:     int(math.Ceil(height)),
		cellSize:   cellSize,
		showGrid:   cellSize > 0,
	}
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	// Keep only the newest snapshot
Loop:
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			break Loop
		}
	}

	// Trigger Simulation Step
	return actor.Tell(g.ctx, g.worldPID, simulation.NewTick())
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundColor)
	if g.showGrid {
		g.drawGrid(screen)
	}

	// Batched DrawTriangles calls, flushed before uint16 indices overflow
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	for _, b := range g.lastState.Boids {
		if len(g.vertices)+3 > maxVertices {
			g.flush(screen)
		}
		clr := boidColor
		if b.ID == 0 {
			clr = leaderColor // follow one boid by eye
		}
		g.appendBoid(b, clr)
	}
	g.flush(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nTick: %d\nBoids: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Tick,
		len(g.lastState.Boids),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, 10, 10)
}

// appendBoid adds a triangle pointing along the boid's heading.
func (g *Game) appendBoid(b simulation.BoidView, clr color.RGBA) {
	angle := b.Heading
	tipX := b.X + math.Cos(angle)*6
	tipY := b.Y + math.Sin(angle)*6
	rightX := b.X + math.Cos(angle+2.5)*5
	rightY := b.Y + math.Sin(angle+2.5)*5
	leftX := b.X + math.Cos(angle-2.5)*5
	leftY := b.Y + math.Sin(angle-2.5)*5

	r, gr, bl, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	base := uint16(len(g.vertices))
	for _, p := range [3][2]float64{{tipX, tipY}, {rightX, rightY}, {leftX, leftY}} {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX: float32(p[0]), DstY: float32(p[1]),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: bl, ColorA: a,
		})
	}
	g.indices = append(g.indices, base, base+1, base+2)
}

func (g *Game) flush(screen *ebiten.Image) {
	if len(g.vertices) == 0 {
		return
	}
	screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	w, h := float32(g.width), float32(g.height)
	for x := g.cellSize; x < float64(g.width); x += g.cellSize {
		vector.StrokeLine(screen, float32(x), 0, float32(x), h, 1, gridColor, false)
	}
	for y := g.cellSize; y < float64(g.height); y += g.cellSize {
		vector.StrokeLine(screen, 0, float32(y), w, float32(y), 1, gridColor, false)
	}
}

func (g *Game) Layout(w, h int) (int, int) { return g.width, g.height }
