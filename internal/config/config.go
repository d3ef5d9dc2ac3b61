// Package config loads the optional hc.yaml compiler configuration file:
// which optimization passes run, and how large the target machine's floor
// is considered to be. There is no equivalent file in the teacher (Kanso
// has no target-machine resource limits to configure), so this package's
// shape is new, but its loading mechanics reuse gopkg.in/yaml.v3, already
// pulled in transitively by the teacher's LSP stack (glsp/kutil) and given
// a direct home here.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Passes toggles which internal/dataflow passes run. All default to true;
// disabling one is mainly useful for isolating a single pass's effect while
// debugging the pipeline.
type Passes struct {
	Liveness         bool `yaml:"liveness"`
	VariableMerge    bool `yaml:"variable_merge"`
	AccumulatorState bool `yaml:"accumulator_state"`
	BlockCleanup     bool `yaml:"block_cleanup"`
}

// Config is the root hc.yaml document.
type Config struct {
	// FloorSize bounds how many named cells the target's floor exposes; 0
	// means unbounded. The original game caps this at 16 on early levels.
	FloorSize int    `yaml:"floor_size"`
	Passes    Passes `yaml:"passes"`
}

// Default returns the configuration used when no hc.yaml is present: every
// pass enabled, no floor-size bound.
func Default() *Config {
	return &Config{
		Passes: Passes{
			Liveness:         true,
			VariableMerge:    true,
			AccumulatorState: true,
			BlockCleanup:     true,
		},
	}
}

// Load reads and parses path. Unmarshal only sets fields present in the
// document, so starting from Default() means any key the file omits keeps
// its default rather than silently becoming Go's zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
