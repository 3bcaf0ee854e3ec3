package torus

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/geometry"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		extent float64
		want   float64
	}{
		{"inside", 42, 100, 42},
		{"zero", 0, 100, 0},
		{"exactly extent", 100, 100, 0},
		{"past extent", 103.5, 100, 3.5},
		{"negative", -1, 100, 99},
		{"far negative", -250, 100, 50},
		{"several laps", 730, 100, 30},
		{"tiny negative", -1e-18, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.v, tt.extent)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Wrap(%v, %v) = %v; want %v", tt.v, tt.extent, got, tt.want)
			}
			if got < 0 || got >= tt.extent {
				t.Errorf("Wrap(%v, %v) = %v is outside [0, %v)", tt.v, tt.extent, got, tt.extent)
			}
		})
	}
}

func TestPlane_Wrap(t *testing.T) {
	p := Plane{Width: 200, Height: 100}
	got := p.Wrap(geometry.Vector2D{X: -5, Y: 130})
	want := geometry.Vector2D{X: 195, Y: 30}
	if !got.Eq(want) {
		t.Errorf("Wrap = %v; want %v", got, want)
	}
	if !p.Contains(got) {
		t.Errorf("Contains(%v) = false after Wrap", got)
	}
	if p.Contains(geometry.Vector2D{X: 200, Y: 0}) {
		t.Error("Contains should exclude the far edge")
	}
}

func TestPlane_DistanceSquared_WrapBoundary(t *testing.T) {
	p := Plane{Width: 100, Height: 100}
	a := geometry.Vector2D{X: 1, Y: 50}
	b := geometry.Vector2D{X: 99, Y: 50}

	// wrap path of 2 beats the direct path of 98
	if got := p.DistanceSquared(a, b); got != 4 {
		t.Errorf("DistanceSquared(%v, %v) = %v; want 4", a, b, got)
	}
	if got := p.Distance(a, b); got != 2 {
		t.Errorf("Distance(%v, %v) = %v; want 2", a, b, got)
	}
}

func TestPlane_DistanceSquared_Symmetry(t *testing.T) {
	p := Plane{Width: 640, Height: 480}
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		a := geometry.Vector2D{X: rng.Float64() * p.Width, Y: rng.Float64() * p.Height}
		b := geometry.Vector2D{X: rng.Float64() * p.Width, Y: rng.Float64() * p.Height}
		if ab, ba := p.DistanceSquared(a, b), p.DistanceSquared(b, a); ab != ba {
			t.Fatalf("DistanceSquared not symmetric for %v, %v: %v vs %v", a, b, ab, ba)
		}
		// never longer than half the plane on each axis
		if d := p.DistanceSquared(a, b); d > (p.Width*p.Width+p.Height*p.Height)/4+1e-9 {
			t.Fatalf("DistanceSquared(%v, %v) = %v exceeds the half-diagonal", a, b, d)
		}
	}
}

func TestPlane_Displacement(t *testing.T) {
	p := Plane{Width: 200, Height: 200}
	tests := []struct {
		name     string
		from, to geometry.Vector2D
		want     geometry.Vector2D
	}{
		{"direct", geometry.Vector2D{X: 10, Y: 10}, geometry.Vector2D{X: 30, Y: 5}, geometry.Vector2D{X: 20, Y: -5}},
		{"across right edge", geometry.Vector2D{X: 199, Y: 100}, geometry.Vector2D{X: 5, Y: 100}, geometry.Vector2D{X: 6, Y: 0}},
		{"across left edge", geometry.Vector2D{X: 5, Y: 100}, geometry.Vector2D{X: 199, Y: 100}, geometry.Vector2D{X: -6, Y: 0}},
		{"across both edges", geometry.Vector2D{X: 2, Y: 198}, geometry.Vector2D{X: 197, Y: 3}, geometry.Vector2D{X: -5, Y: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Displacement(tt.from, tt.to)
			if !got.Eq(tt.want) {
				t.Errorf("Displacement(%v, %v) = %v; want %v", tt.from, tt.to, got, tt.want)
			}
			if !floatEq(got.LenSqr(), p.DistanceSquared(tt.from, tt.to)) {
				t.Errorf("Displacement length² %v disagrees with DistanceSquared %v", got.LenSqr(), p.DistanceSquared(tt.from, tt.to))
			}
		})
	}
}

func TestPlane_AdjustedPosition(t *testing.T) {
	p := Plane{Width: 200, Height: 200}
	got := p.AdjustedPosition(geometry.Vector2D{X: 199, Y: 1}, geometry.Vector2D{X: 5, Y: 195})
	want := geometry.Vector2D{X: 205, Y: -5}
	if !got.Eq(want) {
		t.Errorf("AdjustedPosition = %v; want %v", got, want)
	}
}

func TestPlane_Displacement_Antipodal(t *testing.T) {
	p := Plane{Width: 100, Height: 100}
	from := geometry.Vector2D{X: 0, Y: 0}
	to := geometry.Vector2D{X: 50, Y: 50}

	first := p.Displacement(from, to)
	if math.Abs(first.X) != 50 || math.Abs(first.Y) != 50 {
		t.Fatalf("Displacement(%v, %v) = %v; want magnitude 50 on each axis", from, to, first)
	}
	for i := 0; i < 10; i++ {
		if again := p.Displacement(from, to); again != first {
			t.Fatalf("antipodal displacement not stable: %v then %v", first, again)
		}
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}
