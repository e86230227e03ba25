// Package config holds the settings of a simulation run and loads them
// from YAML or CUE files.
package config

import (
	"fmt"
	"time"

	"github.com/roach88/simkit/internal/engine"
	"github.com/roach88/simkit/internal/telegram"
)

// Defaults used when a setting is absent.
const (
	DefaultTicks     = 40
	DefaultSeed      = 1
	DefaultStewDelay = 0.000001
)

// Config is the effective configuration of one run.
//
// Field tags serve three readers: yaml.v3 for .yaml files, CUE Decode
// (json tags) for .cue files, and the journal, which stores the config as
// JSON next to the run.
type Config struct {
	Ticks      int     `yaml:"ticks" json:"ticks"`
	TimeStep   float64 `yaml:"time_step" json:"time_step"`
	FlushEvery int     `yaml:"flush_every" json:"flush_every"`

	// Interval is the real time between ticks, as a Go duration string.
	Interval string `yaml:"interval" json:"interval"`

	Seed     uint64 `yaml:"seed" json:"seed"`
	Realtime bool   `yaml:"realtime" json:"realtime"`

	Dedup Dedup `yaml:"dedup" json:"dedup"`

	// StewDelay is how long Elsa's stew takes, in clock units.
	StewDelay float64 `yaml:"stew_delay" json:"stew_delay"`

	Database    string `yaml:"database" json:"database"`
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`
}

// Dedup configures duplicate suppression of delayed telegrams.
type Dedup struct {
	Policy    string  `yaml:"policy" json:"policy"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Ticks:      DefaultTicks,
		TimeStep:   engine.DefaultTimeStep,
		FlushEvery: engine.DefaultFlushEvery,
		Interval:   "0s",
		Seed:       DefaultSeed,
		Dedup: Dedup{
			Policy:    string(engine.DedupTolerance),
			Tolerance: telegram.DefaultTolerance,
		},
		StewDelay: DefaultStewDelay,
	}
}

// Validate reports the first setting that cannot drive a simulation.
func (c Config) Validate() error {
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must be >= 0, got %d", c.Ticks)
	}
	if c.TimeStep <= 0 {
		return fmt.Errorf("time_step must be > 0, got %g", c.TimeStep)
	}
	if c.FlushEvery < 0 {
		return fmt.Errorf("flush_every must be >= 0, got %d", c.FlushEvery)
	}
	if _, err := c.IntervalDuration(); err != nil {
		return err
	}
	if _, err := engine.ParseDedupPolicy(c.Dedup.Policy); err != nil {
		return fmt.Errorf("dedup.policy: %w", err)
	}
	if c.Dedup.Tolerance <= 0 {
		return fmt.Errorf("dedup.tolerance must be > 0, got %g", c.Dedup.Tolerance)
	}
	if c.StewDelay <= 0 {
		return fmt.Errorf("stew_delay must be > 0, got %g", c.StewDelay)
	}
	return nil
}

// IntervalDuration parses Interval. The empty string means no wait.
func (c Config) IntervalDuration() (time.Duration, error) {
	if c.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("interval must be >= 0, got %s", d)
	}
	return d, nil
}

// EngineOptions translates the config into simulation options.
// The clock, sink, logger and run id are left to the caller.
func (c Config) EngineOptions() ([]engine.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, _ := engine.ParseDedupPolicy(c.Dedup.Policy)
	interval, _ := c.IntervalDuration()

	return []engine.Option{
		engine.WithTimeStep(c.TimeStep),
		engine.WithFlushEvery(c.FlushEvery),
		engine.WithDedup(policy),
		engine.WithTolerance(c.Dedup.Tolerance),
		engine.WithInterval(interval),
	}, nil
}
