// Package config provides configuration management for the options advisor.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"options-advisor/internal/broker"
	"options-advisor/internal/errors"
	"options-advisor/internal/logging"
	"options-advisor/internal/options"
)

// Config holds all application configuration.
type Config struct {
	Options OptionsConfig `mapstructure:"options"`
	NSE     NSEConfig     `mapstructure:"nse"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
}

// OptionsConfig holds pricing and strike selection settings.
type OptionsConfig struct {
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
	CallBandLow     float64 `mapstructure:"call_band_low"`
	CallBandHigh    float64 `mapstructure:"call_band_high"`
	PutBandLow      float64 `mapstructure:"put_band_low"`
	PutBandHigh     float64 `mapstructure:"put_band_high"`
	CallTargetDelta float64 `mapstructure:"call_target_delta"`
	PutTargetDelta  float64 `mapstructure:"put_target_delta"`
	Tolerance       float64 `mapstructure:"tolerance"`
	LadderSteps     int     `mapstructure:"ladder_steps"`
	StepPercent     float64 `mapstructure:"step_percent"` // percent of spot per ladder step
}

// NSEConfig holds the exchange feed settings.
type NSEConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// StoreConfig holds the recommendation journal settings.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-advisor"
	}
	return filepath.Join(home, ".config", "options-advisor")
}

// Load loads configuration from the specified directory, writing a template
// config.toml on first use. If configDir is empty, uses the default directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// Optional .env next to config.toml; real environment variables win.
	envFile := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	p := options.DefaultSelectorParams()
	v.SetDefault("options.risk_free_rate", options.DefaultRiskFreeRate)
	v.SetDefault("options.call_band_low", p.CallBandLow)
	v.SetDefault("options.call_band_high", p.CallBandHigh)
	v.SetDefault("options.put_band_low", p.PutBandLow)
	v.SetDefault("options.put_band_high", p.PutBandHigh)
	v.SetDefault("options.call_target_delta", p.CallTargetDelta)
	v.SetDefault("options.put_target_delta", p.PutTargetDelta)
	v.SetDefault("options.tolerance", p.Tolerance)
	v.SetDefault("options.ladder_steps", p.LadderSteps)
	v.SetDefault("options.step_percent", p.StepPercent*100)

	nse := broker.DefaultNSEConfig()
	v.SetDefault("nse.enabled", true)
	v.SetDefault("nse.base_url", nse.BaseURL)
	v.SetDefault("nse.timeout", nse.Timeout)
	v.SetDefault("nse.user_agent", nse.UserAgent)

	lc := logging.DefaultLogConfig()
	v.SetDefault("log.level", lc.Level)
	v.SetDefault("log.file", lc.File)
	v.SetDefault("log.file_path", filepath.Join(configDir, "logs", "advisor.log"))
	v.SetDefault("log.max_size", lc.MaxSize)
	v.SetDefault("log.max_backups", lc.MaxBackups)
	v.SetDefault("log.max_age", lc.MaxAge)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "advisor.db"))
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ADVISOR_RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigInvalid, "ADVISOR_RISK_FREE_RATE=%q", v)
		}
		cfg.Options.RiskFreeRate = rate
	}
	if v := os.Getenv("ADVISOR_NSE_BASE_URL"); v != "" {
		cfg.NSE.BaseURL = v
	}
	if v := os.Getenv("ADVISOR_NSE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigInvalid, "ADVISOR_NSE_TIMEOUT=%q", v)
		}
		cfg.NSE.Timeout = d
	}
	if v := os.Getenv("ADVISOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	o := c.Options
	if o.RiskFreeRate < -0.1 || o.RiskFreeRate > 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "risk_free_rate %.4f outside [-0.1, 1]", o.RiskFreeRate)
	}
	if o.CallBandLow < 0 || o.CallBandLow > o.CallBandHigh || o.CallBandHigh > 1 {
		return errors.Wrapf(errors.ErrConfigInvalid, "call band [%.2f, %.2f] must satisfy 0 <= low <= high <= 1", o.CallBandLow, o.CallBandHigh)
	}
	if o.PutBandLow < -1 || o.PutBandLow > o.PutBandHigh || o.PutBandHigh > 0 {
		return errors.Wrapf(errors.ErrConfigInvalid, "put band [%.2f, %.2f] must satisfy -1 <= low <= high <= 0", o.PutBandLow, o.PutBandHigh)
	}
	if o.Tolerance < 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "tolerance must be non-negative")
	}
	if o.LadderSteps <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "ladder_steps must be positive")
	}
	if o.StepPercent <= 0 || o.StepPercent >= 100 {
		return errors.Wrap(errors.ErrConfigInvalid, "step_percent must be in (0, 100)")
	}
	if c.NSE.Enabled && c.NSE.BaseURL == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "nse.base_url is required when nse is enabled")
	}
	return nil
}

// SelectorParams maps the options section onto the strike selector.
func (c *Config) SelectorParams() options.SelectorParams {
	o := c.Options
	return options.SelectorParams{
		CallBandLow:     o.CallBandLow,
		CallBandHigh:    o.CallBandHigh,
		PutBandLow:      o.PutBandLow,
		PutBandHigh:     o.PutBandHigh,
		CallTargetDelta: o.CallTargetDelta,
		PutTargetDelta:  o.PutTargetDelta,
		Tolerance:       o.Tolerance,
		LadderSteps:     o.LadderSteps,
		StepPercent:     o.StepPercent / 100,
	}
}

// BrokerConfig maps the nse section onto the NSE client.
func (c *Config) BrokerConfig() broker.NSEConfig {
	return broker.NSEConfig{
		BaseURL:   c.NSE.BaseURL,
		Timeout:   c.NSE.Timeout,
		UserAgent: c.NSE.UserAgent,
	}
}

// LoggingConfig maps the log section onto the logger.
func (c *Config) LoggingConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Log.Level,
		Console:    true,
		File:       c.Log.File,
		FilePath:   c.Log.FilePath,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}
