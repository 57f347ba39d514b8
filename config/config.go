// Package config loads the command-line configuration: the markets to analyse
// and the parameters handed to the analysis packages.
package config

import (
	"github.com/creasty/defaults"

	"github.com/sartorproj/marketfit/conformance"
	"github.com/sartorproj/marketfit/fractal"
	"github.com/sartorproj/marketfit/gbm"
	"github.com/sartorproj/marketfit/timeseries"
)

// Config represents the complete application configuration.
type Config struct {
	Markets     []MarketConfig    `mapstructure:"markets" yaml:"markets" validate:"unique=Label,dive"`
	Conformance ConformanceConfig `mapstructure:"conformance" yaml:"conformance"`
	Simulation  SimulationConfig  `mapstructure:"simulation" yaml:"simulation"`
	Fractal     FractalConfig     `mapstructure:"fractal" yaml:"fractal"`
	Report      ReportConfig      `mapstructure:"report" yaml:"report"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// MarketConfig points at one CSV price history.
type MarketConfig struct {
	Label       string `mapstructure:"label" yaml:"label" validate:"required"`
	Path        string `mapstructure:"path" yaml:"path" validate:"required"`
	DateColumn  string `mapstructure:"date_column" yaml:"date_column" default:"Date"`
	ValueColumn string `mapstructure:"value_column" yaml:"value_column" default:"Close"`
	IDColumn    string `mapstructure:"id_column" yaml:"id_column"`
	IDFilter    string `mapstructure:"id_filter" yaml:"id_filter" validate:"required_with=IDColumn"`
}

// ConformanceConfig holds the conformance test parameters.
type ConformanceConfig struct {
	Alpha      float64 `mapstructure:"alpha" yaml:"alpha" default:"0.05" validate:"gt=0,lt=1"`
	LeadingGap string  `mapstructure:"leading_gap" yaml:"leading_gap" default:"backfill_from_last" validate:"leading_gap"`
	Workers    int     `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
	TailSigma  float64 `mapstructure:"tail_sigma" yaml:"tail_sigma" default:"3" validate:"gt=0"`
}

// SimulationConfig holds the GBM crash simulation parameters. Start price and
// drift are derived from the market named by Market, or the first market.
type SimulationConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled" default:"true"`
	Market           string  `mapstructure:"market" yaml:"market"`
	AnnualVolatility float64 `mapstructure:"annual_volatility" yaml:"annual_volatility" default:"0.2" validate:"gte=0"`
	HorizonYears     float64 `mapstructure:"horizon_years" yaml:"horizon_years" default:"0.003968253968253968" validate:"gt=0"`
	StepSize         float64 `mapstructure:"step_size" yaml:"step_size" default:"0.00001" validate:"gt=0"`
	PathCount        int     `mapstructure:"path_count" yaml:"path_count" default:"10" validate:"gte=1"`
	CrashThreshold   float64 `mapstructure:"crash_threshold" yaml:"crash_threshold" default:"-0.203" validate:"gt=-1"`
	MaxSteps         int     `mapstructure:"max_steps" yaml:"max_steps" default:"1000000" validate:"gte=2"`
	DriftPeriod      int     `mapstructure:"drift_period" yaml:"drift_period" default:"259" validate:"gte=1"`
	Seed             uint64  `mapstructure:"seed" yaml:"seed" default:"1"`
}

// FractalConfig holds the Hurst estimation parameters.
type FractalConfig struct {
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled" default:"true"`
	Market    string  `mapstructure:"market" yaml:"market"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance" default:"0.05" validate:"gte=0,lt=0.5"`
}

// ReportConfig selects the report encoding and destination ("-" is stdout).
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format" default:"json" validate:"oneof=json yaml"`
	Output string `mapstructure:"output" yaml:"output" default:"-" validate:"required"`

	// IncludePaths adds every simulated price path to the report.
	IncludePaths bool `mapstructure:"include_paths" yaml:"include_paths"`
	// IncludeQQ adds normal Q-Q plot coordinates of every market's returns.
	IncludeQQ bool `mapstructure:"include_qq" yaml:"include_qq"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" default:"console" validate:"oneof=console json"`
}

// DefaultConfig returns the configuration with every default applied and no markets.
func DefaultConfig() *Config {
	cfg := &Config{}
	// defaults.Set only fails on malformed tags
	if err := defaults.Set(cfg); err != nil {
		panic(err)
	}
	return cfg
}

// Tester builds the conformance tester described by the configuration.
func (c *Config) Tester() (*conformance.Tester, error) {
	policy, err := timeseries.ParseLeadingGapPolicy(c.Conformance.LeadingGap)
	if err != nil {
		return nil, err
	}
	return &conformance.Tester{
		Alpha:      c.Conformance.Alpha,
		LeadingGap: policy,
		Workers:    c.Conformance.Workers,
	}, nil
}

// Estimator builds the fractal estimator described by the configuration.
func (c *Config) Estimator() *fractal.Estimator {
	return &fractal.Estimator{Tolerance: c.Fractal.Tolerance}
}

// Params overlays the configured simulation parameters on base, which carries
// the start price and drift derived from a series.
func (s SimulationConfig) Params(base gbm.Params) gbm.Params {
	base.AnnualVolatility = s.AnnualVolatility
	base.HorizonYears = s.HorizonYears
	base.StepSize = s.StepSize
	base.PathCount = s.PathCount
	base.CrashThreshold = s.CrashThreshold
	base.MaxSteps = s.MaxSteps
	return base
}

// CSVOptions converts a market entry into loader options.
func (m MarketConfig) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.Name = m.Label
	if m.DateColumn != "" {
		opts.DateColumn = m.DateColumn
	}
	if m.ValueColumn != "" {
		opts.ValueColumn = m.ValueColumn
	}
	opts.IDColumn = m.IDColumn
	opts.IDFilter = m.IDFilter
	return opts
}

// Market returns the market labelled label, or the first market when label is empty.
func (c *Config) Market(label string) (MarketConfig, bool) {
	if len(c.Markets) == 0 {
		return MarketConfig{}, false
	}
	if label == "" {
		return c.Markets[0], true
	}
	for _, m := range c.Markets {
		if m.Label == label {
			return m, true
		}
	}
	return MarketConfig{}, false
}
