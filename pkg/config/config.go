package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for devpulse.
type Config struct {
	// Workday defines the local hours counted as regular working time.
	Workday WorkdayConfig `koanf:"workday" toml:"workday"`

	// Risk thresholds for the risk detector.
	Risk RiskConfig `koanf:"risk" toml:"risk"`

	// Forecast settings for the time-series forecaster.
	Forecast ForecastConfig `koanf:"forecast" toml:"forecast"`

	// History settings for stored period metrics.
	History HistoryConfig `koanf:"history" toml:"history"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// WorkdayConfig bounds the working window used for after-hours detection.
type WorkdayConfig struct {
	StartHour int `koanf:"start_hour" toml:"start_hour"`
	EndHour   int `koanf:"end_hour" toml:"end_hour"`
}

// RiskConfig defines risk detector thresholds.
type RiskConfig struct {
	// RiskyChurn is the fixed churn threshold above which a commit is
	// flagged regardless of the period's distribution.
	RiskyChurn int `koanf:"risky_churn" toml:"risky_churn"`
	// SpikeSigma is the stddev multiplier for the statistical outlier rule.
	SpikeSigma float64 `koanf:"spike_sigma" toml:"spike_sigma"`
	// SpikeMinCommits is the minimum commit count before the statistical
	// rule applies.
	SpikeMinCommits int `koanf:"spike_min_commits" toml:"spike_min_commits"`
	// OutlierSigma is the stddev multiplier for the outlier-author check.
	OutlierSigma float64 `koanf:"outlier_sigma" toml:"outlier_sigma"`
}

// ForecastConfig controls the forecaster.
type ForecastConfig struct {
	// Window is the maximum number of trailing periods fed to the model.
	Window int `koanf:"window" toml:"window"`
	// MinHistory is the history length below which the forecaster falls
	// back to repeating the last value.
	MinHistory int `koanf:"min_history" toml:"min_history"`
	// DirectionBand is the fraction around the last observed value inside
	// which a forecast counts as flat.
	DirectionBand float64 `koanf:"direction_band" toml:"direction_band"`
}

// HistoryConfig controls period metric persistence.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workday: WorkdayConfig{
			StartHour: 9,
			EndHour:   18,
		},
		Risk: RiskConfig{
			RiskyChurn:      100,
			SpikeSigma:      2.0,
			SpikeMinCommits: 5,
			OutlierSigma:    1.0,
		},
		Forecast: ForecastConfig{
			Window:        12,
			MinHistory:    2,
			DirectionBand: 0.05,
		},
		History: HistoryConfig{
			Enabled: true,
			Dir:     ".devpulse/history",
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"devpulse.toml",
		"devpulse.yaml",
		"devpulse.yml",
		"devpulse.json",
		".devpulse.toml",
		".devpulse.yaml",
		".devpulse.yml",
		".devpulse.json",
	}

	searchDirs := []string{".", ".devpulse"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}
