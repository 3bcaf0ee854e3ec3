package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeFile(t, "boids.json", `{"width": 800, "height": 600, "population": 250, "seed": 12}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 || cfg.Population != 250 || cfg.Seed != 12 {
		t.Errorf("cfg = %+v; want 800x600, 250 boids, seed 12", cfg)
	}
	// unspecified fields keep their defaults
	if def := flock.DefaultConfig(); cfg.VisualRadius != def.VisualRadius || cfg.CellSize != def.CellSize {
		t.Errorf("defaults lost: radius %v cell %v", cfg.VisualRadius, cfg.CellSize)
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeFile(t, "boids.toml", `
width = 1000
height = 500
population = 64
visualRadius = 40
cellSize = 40
workers = 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Width != 1000 || cfg.Population != 64 || cfg.VisualRadius != 40 || cfg.Workers != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json unknown key", "a.json", `{"width": 100, "colour": "red"}`},
		{"json wrong type", "b.json", `{"population": "many"}`},
		{"json zero width", "c.json", `{"width": 0}`},
		{"json negative population", "d.json", `{"population": -5}`},
		{"json malformed", "e.json", `{"width": `},
		{"toml unknown key", "f.toml", "width = 100\nflockSize = 3\n"},
		{"toml zero cell size", "g.toml", "cellSize = 0\n"},
		{"toml malformed", "h.toml", "width = = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if cfg, err := LoadConfig(path); err == nil {
				t.Errorf("LoadConfig accepted %q: %+v", tt.content, cfg)
			}
		})
	}
}

func TestLoadConfig_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "boids.yaml", "width: 100\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrConfigFormat) {
		t.Errorf("LoadConfig error = %v; want ErrConfigFormat", err)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("LoadConfig succeeded on a missing file")
	}
}

func TestLoadConfig_ShippedFiles(t *testing.T) {
	for _, name := range []string{"boids.json", "boids.toml"} {
		path := filepath.Join("..", "..", "configs", name)
		if _, err := LoadConfig(path); err != nil {
			t.Errorf("LoadConfig(%s) failed: %v", path, err)
		}
	}
}
