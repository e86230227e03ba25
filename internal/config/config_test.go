package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 40, cfg.Ticks)
	assert.Equal(t, 1.0, cfg.TimeStep)
	assert.Equal(t, "tolerance", cfg.Dedup.Policy)
	assert.Equal(t, 0.25, cfg.Dedup.Tolerance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"negative ticks", func(c *Config) { c.Ticks = -1 }, "ticks"},
		{"zero time step", func(c *Config) { c.TimeStep = 0 }, "time_step"},
		{"negative flush cadence", func(c *Config) { c.FlushEvery = -2 }, "flush_every"},
		{"bad interval", func(c *Config) { c.Interval = "soon" }, "interval"},
		{"negative interval", func(c *Config) { c.Interval = "-1s" }, "interval"},
		{"unknown dedup policy", func(c *Config) { c.Dedup.Policy = "exact" }, "dedup.policy"},
		{"zero tolerance", func(c *Config) { c.Dedup.Tolerance = 0 }, "dedup.tolerance"},
		{"zero stew delay", func(c *Config) { c.StewDelay = 0 }, "stew_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestIntervalDuration(t *testing.T) {
	cfg := Default()
	cfg.Interval = "800ms"
	d, err := cfg.IntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 800*time.Millisecond, d)

	cfg.Interval = ""
	d, err = cfg.IntervalDuration()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestEngineOptions(t *testing.T) {
	opts, err := Default().EngineOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	bad := Default()
	bad.TimeStep = -1
	_, err = bad.EngineOptions()
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
ticks: 12
seed: 99
dedup:
  policy: none
interval: 10ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Ticks)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "none", cfg.Dedup.Policy)
	assert.Equal(t, 0.25, cfg.Dedup.Tolerance, "unset nested field keeps default")
	assert.Equal(t, 1.0, cfg.TimeStep, "unset field keeps default")
	assert.Equal(t, "10ms", cfg.Interval)
}

func TestLoad_YAMLEmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLRejectsUnknownField(t *testing.T) {
	_, err := Load(writeFile(t, "run.yaml", "tickz: 3\n"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err))
	assert.Contains(t, err.Error(), ErrCodeParseFailed)
}

func TestLoad_YAMLInvalidValue(t *testing.T) {
	_, err := Load(writeFile(t, "run.yaml", "time_step: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeInvalid)
}

func TestLoad_CUE(t *testing.T) {
	path := writeFile(t, "run.cue", `
ticks: 25
time_step: 0.5
dedup: policy: "none"
metrics_addr: ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Ticks)
	assert.Equal(t, 0.5, cfg.TimeStep)
	assert.Equal(t, "none", cfg.Dedup.Policy)
	assert.Equal(t, 0.25, cfg.Dedup.Tolerance)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, uint64(DefaultSeed), cfg.Seed)
	assert.Equal(t, DefaultStewDelay, cfg.StewDelay)
}

func TestLoad_CUEDefaultsMatchGo(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.cue", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_CUEErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{"syntax error", "ticks: {", ErrCodeParseFailed},
		{"unknown field", "tickz: 3\n", ErrCodeInvalid},
		{"constraint violation", "ticks: -4\n", ErrCodeInvalid},
		{"unknown dedup policy", "dedup: policy: \"exact\"\n", ErrCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "run.cue", tt.content))
			require.Error(t, err)
			assert.True(t, IsLoadError(err))
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	_, err = Load(writeFile(t, "run.toml", "ticks = 3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeUnsupported)
}
