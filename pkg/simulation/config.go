package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-toroidal-boids/pkg/flock"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchema string

const configSchemaURL = "config.schema.json"

// ErrConfigFormat is returned for files that are neither .json nor .toml.
var ErrConfigFormat = errors.New("unsupported config format")

// LoadConfig reads a .json or .toml file over flock.DefaultConfig.
// The document is checked against the embedded JSON schema, then the
// resulting config against flock.Config.Validate.
func LoadConfig(configFile string) (*flock.Config, error) {
	sch, err := compileConfigSchema()
	if err != nil {
		return nil, err
	}

	var cfg *flock.Config
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
		cfg, err = loadJSONConfig(configFile, sch)
	case ".toml":
		cfg, err = loadTOMLConfig(configFile, sch)
	default:
		return nil, fmt.Errorf("%w: %q", ErrConfigFormat, configFile)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", configFile, err)
	}
	return cfg, nil
}

func compileConfigSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(configSchemaURL, strings.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := c.Compile(configSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

func loadJSONConfig(configFile string, sch *jsonschema.Schema) (*flock.Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 1. Validate the raw document so unknown keys are caught
	if err := validateDocument(sch, b); err != nil {
		return nil, err
	}

	// 2. Unmarshal over the defaults
	cfg := flock.DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func loadTOMLConfig(configFile string, sch *jsonschema.Schema) (*flock.Config, error) {
	cfg := flock.DefaultConfig()
	md, err := toml.DecodeFile(configFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config validation failed: unknown keys %s", strings.Join(keys, ", "))
	}

	// TOML has no schema of its own: check the effective config against the JSON one
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := validateDocument(sch, b); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateDocument(sch *jsonschema.Schema, b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
