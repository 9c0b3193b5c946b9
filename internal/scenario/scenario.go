// Package scenario loads simulation run descriptions from YAML files.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"phenocore/pkg/phenotype"
)

// Config describes one simulation run.
type Config struct {
	// RunID labels the run in series rows, reports and archived artifacts.
	RunID string `yaml:"run_id"`
	// Phenotype is a catalog model name, e.g. "Ki67 Basic".
	Phenotype string `yaml:"phenotype"`
	// Dt overrides the model's step size in minutes. Zero keeps the default.
	Dt float64 `yaml:"dt"`
	// Steps is the number of ticks to simulate.
	Steps int `yaml:"steps"`
	// InitialCells is the starting population. Zero defaults to 1.
	InitialCells int `yaml:"initial_cells"`
	// MaxCells caps population growth. Zero keeps the engine default.
	MaxCells int `yaml:"max_cells"`
	// Seed fixes the random source. Zero seeds from entropy.
	Seed uint64 `yaml:"seed"`
}

// Load reads and validates a scenario file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.InitialCells == 0 {
		c.InitialCells = 1
	}
}

// Validate checks the scenario for internal consistency. The phenotype name
// is resolved against the catalog so a typo fails before any cell steps.
func (c Config) Validate() error {
	if c.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	if c.Phenotype == "" {
		return fmt.Errorf("phenotype is required")
	}
	if _, err := phenotype.New(c.Phenotype, phenotype.Options{}); err != nil {
		return fmt.Errorf("phenotype: %w", err)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.InitialCells <= 0 {
		return fmt.Errorf("initial_cells must be positive, got %d", c.InitialCells)
	}
	if c.Dt < 0 {
		return fmt.Errorf("dt must not be negative, got %g", c.Dt)
	}
	if c.MaxCells < 0 {
		return fmt.Errorf("max_cells must not be negative, got %d", c.MaxCells)
	}
	if c.MaxCells > 0 && c.InitialCells > c.MaxCells {
		return fmt.Errorf("initial_cells %d exceed max_cells %d", c.InitialCells, c.MaxCells)
	}
	return nil
}

// Template builds the phenotype the run's cells are cloned from.
func (c Config) Template() (*phenotype.Phenotype, error) {
	opts := phenotype.Options{Dt: c.Dt}
	if c.Seed != 0 {
		opts.Source = phenotype.NewRandomSource(c.Seed)
	} else {
		opts.Source = phenotype.NewAutoSeededSource()
	}
	return phenotype.New(c.Phenotype, opts)
}
