// Package config loads and saves run parameter files and carries the named
// preset table. The YAML file is the on-disk counterpart of sim.Config.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/argonmd/internal/sim"
)

const (
	DefaultBoxLength        = 10.0
	DefaultNumAtoms         = 64
	DefaultTimestep         = 0.001
	DefaultTotalSteps       = 10000
	DefaultSnapshotInterval = 100
)

type Config struct {
	BoxLength        float64 `yaml:"box_length"`
	NumAtoms         int     `yaml:"num_atoms"`
	Timestep         float64 `yaml:"timestep"`
	TotalSteps       int     `yaml:"total_steps"`
	SnapshotInterval int     `yaml:"snapshot_interval"`
	TargetTemp       float64 `yaml:"target_temperature"`
	Tau              float64 `yaml:"tau"`
	Cutoff           float64 `yaml:"cutoff"`
	Seed             int64   `yaml:"seed"`
	Workers          int     `yaml:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		BoxLength:        DefaultBoxLength,
		NumAtoms:         DefaultNumAtoms,
		Timestep:         DefaultTimestep,
		TotalSteps:       DefaultTotalSteps,
		SnapshotInterval: DefaultSnapshotInterval,
		TargetTemp:       sim.DefaultTargetTemp,
		Tau:              sim.DefaultTau,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToSim converts the file representation to the runner's config.
func (c *Config) ToSim() sim.Config {
	return sim.Config{
		BoxLength:        c.BoxLength,
		NumAtoms:         c.NumAtoms,
		Dt:               c.Timestep,
		TotalSteps:       c.TotalSteps,
		SnapshotInterval: c.SnapshotInterval,
		TargetTemp:       c.TargetTemp,
		Tau:              c.Tau,
		Cutoff:           c.Cutoff,
		Seed:             c.Seed,
		Workers:          c.Workers,
	}
}
