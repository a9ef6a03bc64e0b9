package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-advisor/internal/errors"
	"options-advisor/internal/options"
)

func TestLoad_WritesTemplateOnFirstRun(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, statErr)

	assert.Equal(t, options.DefaultRiskFreeRate, cfg.Options.RiskFreeRate)
	assert.Equal(t, options.DefaultSelectorParams(), cfg.SelectorParams())
	assert.Equal(t, 10*time.Second, cfg.NSE.Timeout)
	assert.Equal(t, filepath.Join(dir, "advisor.db"), cfg.Store.Path)
}

func TestLoad_TemplateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, createTemplateConfig(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, options.DefaultSelectorParams(), cfg.SelectorParams())
	assert.True(t, cfg.NSE.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ReadsFileValues(t *testing.T) {
	dir := t.TempDir()
	content := `
[options]
risk_free_rate = 0.065
tolerance = 0.05
ladder_steps = 40
step_percent = 0.5

[nse]
base_url = "http://localhost:9999"
timeout = "3s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.InDelta(t, 0.065, cfg.Options.RiskFreeRate, 1e-12)
	params := cfg.SelectorParams()
	assert.InDelta(t, 0.05, params.Tolerance, 1e-12)
	assert.Equal(t, 40, params.LadderSteps)
	assert.InDelta(t, 0.005, params.StepPercent, 1e-12)
	// untouched keys keep their defaults
	assert.InDelta(t, 0.25, params.CallBandLow, 1e-12)

	bc := cfg.BrokerConfig()
	assert.Equal(t, "http://localhost:9999", bc.BaseURL)
	assert.Equal(t, 3*time.Second, bc.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_RISK_FREE_RATE", "0.05")
	t.Setenv("ADVISOR_NSE_BASE_URL", "http://example.test")
	t.Setenv("ADVISOR_NSE_TIMEOUT", "2s")
	t.Setenv("ADVISOR_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, cfg.Options.RiskFreeRate, 1e-12)
	assert.Equal(t, "http://example.test", cfg.NSE.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.NSE.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "debug", cfg.LoggingConfig().Level)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	// registered so the variable godotenv sets is cleared after the test
	t.Setenv("ADVISOR_RISK_FREE_RATE", "")
	os.Unsetenv("ADVISOR_RISK_FREE_RATE")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ADVISOR_RISK_FREE_RATE=0.04\n"), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.InDelta(t, 0.04, cfg.Options.RiskFreeRate, 1e-12)
}

func TestLoad_BadEnvValue(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADVISOR_NSE_TIMEOUT", "soon")

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"inverted call band", func(c *Config) { c.Options.CallBandLow = 0.5 }, false},
		{"positive put band", func(c *Config) { c.Options.PutBandHigh = 0.1 }, false},
		{"negative tolerance", func(c *Config) { c.Options.Tolerance = -0.01 }, false},
		{"no ladder", func(c *Config) { c.Options.LadderSteps = 0 }, false},
		{"zero step", func(c *Config) { c.Options.StepPercent = 0 }, false},
		{"absurd rate", func(c *Config) { c.Options.RiskFreeRate = 3 }, false},
		{"missing url", func(c *Config) { c.NSE.BaseURL = "" }, false},
		{"missing url with nse off", func(c *Config) { c.NSE.BaseURL = ""; c.NSE.Enabled = false }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errors.ErrConfigInvalid)
			}
		})
	}
}
