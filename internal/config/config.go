package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultWStart   = 0.01
	DefaultWStop    = 100.0
	DefaultPoints   = 400
	DefaultKMax     = 50.0
	DefaultKPoints  = 200
	DefaultTs       = 0.1
)

// Config describes one analysis: the plant under study plus the sweep and
// sampling parameters the commands consume.
type Config struct {
	Plant    PlantConfig `yaml:"plant"`
	Sweep    SweepConfig `yaml:"sweep"`
	Gain     GainConfig  `yaml:"gain"`
	Dt       float64     `yaml:"dt"`
	Duration float64     `yaml:"duration"`
	Ts       float64     `yaml:"ts"`     // sample period for discretization
	Method   string      `yaml:"method"` // discretization or tuning method
}

// PlantConfig holds transfer-function coefficients, constant term first.
type PlantConfig struct {
	Num   []float64 `yaml:"num"`
	Den   []float64 `yaml:"den"`
	Delay float64   `yaml:"delay"`
}

// SweepConfig is a frequency sweep in rad/s.
type SweepConfig struct {
	Start  float64 `yaml:"start"`
	Stop   float64 `yaml:"stop"`
	Points int     `yaml:"points"`
	Scale  string  `yaml:"scale"`
}

// GainConfig is a root-locus gain range.
type GainConfig struct {
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Sweep: SweepConfig{
			Start:  DefaultWStart,
			Stop:   DefaultWStop,
			Points: DefaultPoints,
			Scale:  "log",
		},
		Gain: GainConfig{
			Max:    DefaultKMax,
			Points: DefaultKPoints,
		},
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		Ts:       DefaultTs,
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
	if err := cfg.Validate(); err != nil {
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

// Validate rejects configs no command could act on.
func (c *Config) Validate() error {
	if len(c.Plant.Den) < 2 {
		return fmt.Errorf("config: plant denominator needs at least 2 coefficients, got %d", len(c.Plant.Den))
	}
	if len(c.Plant.Num) == 0 {
		return fmt.Errorf("config: plant numerator is empty")
	}
	if c.Dt <= 0 || c.Duration <= 0 {
		return fmt.Errorf("config: dt and duration must be positive")
	}
	if c.Ts <= 0 {
		return fmt.Errorf("config: ts must be positive")
	}
	return nil
}
