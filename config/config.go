// Package config loads run configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selection controls the model-selection search.
type Selection struct {
	Strategy       string `yaml:"strategy"` // constant, bic, dic or cv
	ConstantStates int    `yaml:"constant_states"`
	MinStates      int    `yaml:"min_states"`
	MaxStates      int    `yaml:"max_states"`
	Seed           int64  `yaml:"seed"`
	Verbose        bool   `yaml:"verbose"`
}

// Training controls Baum-Welch fitting of each candidate.
type Training struct {
	MaxIterations     int     `yaml:"max_iterations"`
	ConvergenceThresh float64 `yaml:"convergence_thresh"`
	MinVariance       float64 `yaml:"min_variance"`
}

// Features lists the feature transforms applied to raw landmark
// sequences, in order.
type Features struct {
	Transforms []string `yaml:"transforms"`
}

// Paths locates the dataset and model files.
type Paths struct {
	Frames     string `yaml:"frames"`
	TrainWords string `yaml:"train_words"`
	TestWords  string `yaml:"test_words"`
	Models     string `yaml:"models"`
}

// Root is the top-level configuration.
type Root struct {
	Selection Selection `yaml:"selection"`
	Training  Training  `yaml:"training"`
	Features  Features  `yaml:"features"`
	Paths     Paths     `yaml:"paths"`
}

// Default returns the configuration used when no file is given.
func Default() *Root {
	return &Root{
		Selection: Selection{
			Strategy:       "bic",
			ConstantStates: 3,
			MinStates:      2,
			MaxStates:      10,
			Seed:           14,
		},
		Training: Training{
			MaxIterations:     100,
			ConvergenceThresh: 0.01,
			MinVariance:       0.01,
		},
		Features: Features{
			Transforms: []string{"normalize"},
		},
	}
}

// Load reads a YAML configuration file, filling unset fields from
// Default.
func Load(path string) (*Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Root) validate() error {
	switch c.Selection.Strategy {
	case "constant", "bic", "dic", "cv":
	default:
		return fmt.Errorf("unknown selection strategy %q", c.Selection.Strategy)
	}
	if c.Selection.MinStates < 1 {
		return fmt.Errorf("min_states must be positive")
	}
	if c.Selection.MaxStates <= c.Selection.MinStates {
		return fmt.Errorf("max_states must exceed min_states")
	}
	if c.Training.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive")
	}
	return nil
}
