package flock

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig wraps every problem reported by Config.Validate.
	ErrInvalidConfig = errors.New("invalid flock config")
	// ErrInvariant is returned by Engine.CheckInvariants when the engine state is corrupt.
	ErrInvariant = errors.New("flock invariant violated")
)

// Config holds the constructor-time parameters of an Engine.
// The engine copies it; changing a Config after New has no effect.
type Config struct {
	// Plane
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`

	// Population
	Population int `json:"population" toml:"population"`

	// Perception
	VisualRadius float64 `json:"visualRadius" toml:"visualRadius"` // How far can they see?
	CellSize     float64 `json:"cellSize" toml:"cellSize"`         // Grid bucket side, keep >= VisualRadius

	// Movement: position += velocity * Speed each tick
	Speed float64 `json:"speed" toml:"speed"`

	// Force weights
	AlignmentWeight  float64 `json:"alignmentWeight" toml:"alignmentWeight"`   // Match neighbor heading
	AvoidanceWeight  float64 `json:"avoidanceWeight" toml:"avoidanceWeight"`   // Personal space
	AttractionWeight float64 `json:"attractionWeight" toml:"attractionWeight"` // Pull to local centroid
	RandomWeight     float64 `json:"randomWeight" toml:"randomWeight"`         // Jitter

	// Workers > 1 computes steering on that many goroutines after relocation.
	Workers int `json:"workers" toml:"workers"`
	// Seed for the random source; 0 picks a random seed.
	Seed uint64 `json:"seed" toml:"seed"`
}

// DefaultConfig returns a 1280x720 plane with a thousand boids.
func DefaultConfig() *Config {
	return &Config{
		Width:            1280,
		Height:           720,
		Population:       1000,
		VisualRadius:     30,
		CellSize:         100,
		Speed:            3,
		AlignmentWeight:  0.05,
		AvoidanceWeight:  0.04,
		AttractionWeight: 0.02,
		RandomWeight:     0.03,
		Workers:          1,
	}
}

// Validate reports every hard configuration error, joined. Each one wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	floats := []struct {
		name string
		v    float64
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"visualRadius", c.VisualRadius},
		{"cellSize", c.CellSize},
		{"speed", c.Speed},
		{"alignmentWeight", c.AlignmentWeight},
		{"avoidanceWeight", c.AvoidanceWeight},
		{"attractionWeight", c.AttractionWeight},
		{"randomWeight", c.RandomWeight},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			bad("%s must be finite, got %v", f.name, f.v)
		}
	}

	if !(c.Width > 0) {
		bad("width must be positive, got %v", c.Width)
	}
	if !(c.Height > 0) {
		bad("height must be positive, got %v", c.Height)
	}
	if !(c.CellSize > 0) {
		bad("cellSize must be positive, got %v", c.CellSize)
	}
	if c.Population <= 0 {
		bad("population must be positive, got %d", c.Population)
	}
	if c.VisualRadius < 0 {
		bad("visualRadius must not be negative, got %v", c.VisualRadius)
	}
	if c.Speed < 0 {
		bad("speed must not be negative, got %v", c.Speed)
	}
	if c.Workers < 0 {
		bad("workers must not be negative, got %d", c.Workers)
	}

	return errors.Join(errs...)
}

// Warnings lists settings that work but are probably not what the caller wants.
func (c *Config) Warnings() []string {
	var w []string
	if c.CellSize < c.VisualRadius {
		w = append(w, fmt.Sprintf("cellSize %v is smaller than visualRadius %v: each query scans more than 3x3 cells", c.CellSize, c.VisualRadius))
	}
	if 2*c.VisualRadius >= math.Min(c.Width, c.Height) {
		w = append(w, fmt.Sprintf("visualRadius %v spans the whole plane on at least one axis", c.VisualRadius))
	}
	return w
}
