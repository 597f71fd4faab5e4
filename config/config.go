// Package config loads actuator configuration from JSON and turns it into
// a runnable core setup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phasedrive/core"
)

// Waveform strategy names accepted in configuration files.
const (
	StrategySine  = "sine"
	StrategyTable = "table"
)

var (
	ErrUnknownStrategy = errors.New("config: unknown waveform strategy")
	ErrMissingTable    = errors.New("config: table strategy requires a table")
)

// ActuatorConfig describes one three-phase actuator.
type ActuatorConfig struct {
	// Strategy selects the waveform: "sine" or "table".
	Strategy string `json:"strategy"`

	// StepIncrement is the position advance per tick, in the waveform's
	// own units (radians for sine, degrees when units_per_cycle is 360,
	// table rows for table).
	StepIncrement float64 `json:"step_increment"`

	// DeadTimeUS is the dead time between switching half-bridge sides,
	// in microseconds.
	DeadTimeUS float64 `json:"dead_time_us"`

	// Max is the full-scale duty count of the PWM hardware.
	Max uint32 `json:"max"`

	// UnitsPerCycle sets the sine period (2*pi when zero; 360 gives a
	// degree-based waveform). Ignored for the table strategy.
	UnitsPerCycle float64 `json:"units_per_cycle"`

	// Table holds per-row phase values in percent, -100 to 100. Only
	// used (and required) by the table strategy.
	Table [][3]float64 `json:"table,omitempty"`
}

// LoadConfig parses a JSON configuration and fills in defaults.
func LoadConfig(jsonData []byte) (*ActuatorConfig, error) {
	var cfg ActuatorConfig
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills in missing configuration values.
func applyDefaults(cfg *ActuatorConfig) {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySine
	}
	if cfg.StepIncrement == 0 {
		if cfg.Strategy == StrategyTable {
			cfg.StepIncrement = 0.1
		} else {
			cfg.StepIncrement = 0.05
		}
	}
	if cfg.DeadTimeUS == 0 {
		cfg.DeadTimeUS = 1.0
	}
	if cfg.Max == 0 {
		cfg.Max = 65535
	}
}

// Waveform builds the configured waveform generator.
func (cfg *ActuatorConfig) Waveform() (core.Waveform, error) {
	switch cfg.Strategy {
	case StrategySine:
		if cfg.UnitsPerCycle != 0 {
			return core.NewSineWaveformUnits(cfg.UnitsPerCycle)
		}
		return core.NewSineWaveform(), nil
	case StrategyTable:
		if len(cfg.Table) == 0 {
			return nil, ErrMissingTable
		}
		return core.NewTableWaveform(cfg.Table)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Strategy)
	}
}

// Build assembles a core.Config ready to hand to NewActuator.
func (cfg *ActuatorConfig) Build() (core.Config, error) {
	waveform, err := cfg.Waveform()
	if err != nil {
		return core.Config{}, err
	}
	return core.Config{
		StepIncrement: cfg.StepIncrement,
		DeadTime:      time.Duration(cfg.DeadTimeUS * float64(time.Microsecond)),
		Max:           cfg.Max,
		Waveform:      waveform,
		Direction:     core.Forward,
	}, nil
}

// DefaultSineConfig returns the radian sine setup most boards start with.
func DefaultSineConfig() *ActuatorConfig {
	cfg := &ActuatorConfig{Strategy: StrategySine}
	applyDefaults(cfg)
	return cfg
}

// DefaultTableConfig returns the built-in 24-row step table setup.
func DefaultTableConfig() *ActuatorConfig {
	cfg := &ActuatorConfig{
		Strategy: StrategyTable,
		Table:    core.DefaultStepTable,
	}
	applyDefaults(cfg)
	return cfg
}
