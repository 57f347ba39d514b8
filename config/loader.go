package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/hyp3rd/ewrap"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	sentinel "github.com/sartorproj/marketfit/errors"
	"github.com/sartorproj/marketfit/timeseries"
)

// EnvPrefix prefixes every environment override, e.g. MARKETFIT_SIMULATION_SEED.
const EnvPrefix = "MARKETFIT"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level":   "logging.level",
	"log-format":  "logging.format",
	"format":      "report.format",
	"output":      "report.output",
	"alpha":       "conformance.alpha",
	"leading-gap": "conformance.leading_gap",
	"workers":     "conformance.workers",
	"seed":        "simulation.seed",
	"paths":       "simulation.path_count",
}

// Flags returns the command-line flags understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("marketfit", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "path to the configuration file")
	fs.StringSliceP("market", "m", nil, "market to analyse as label=path.csv (repeatable, replaces configured markets)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: console or json")
	fs.StringP("format", "f", "", "report format: json or yaml")
	fs.StringP("output", "o", "", "report destination, - for stdout")
	fs.Float64("alpha", 0, "significance level of the conformance tests")
	fs.String("leading-gap", "", "leading return policy: backfill_from_last, backfill_next, drop, zero")
	fs.Int("workers", 0, "series evaluated concurrently, 0 for GOMAXPROCS")
	fs.Uint64("seed", 0, "seed of the crash simulation generator")
	fs.Int("paths", 0, "number of simulated paths")
	return fs
}

// Load reads configuration from defaults, the file at path, MARKETFIT_*
// environment variables and fs, in increasing order of precedence.
// With an empty path, marketfit.yaml is looked up in . and ./configs and may be absent.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("marketfit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, ewrap.Wrap(err, "binding flag "+flag)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, ewrap.Wrap(err, "failed to read config")
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, ewrap.Wrap(err, "failed to unmarshal config")
	}

	if fs != nil && fs.Changed("market") {
		entries, err := fs.GetStringSlice("market")
		if err != nil {
			return nil, ewrap.Wrap(err, "reading --market")
		}
		markets, err := ParseMarkets(entries)
		if err != nil {
			return nil, err
		}
		cfg.Markets = markets
	}

	for i := range cfg.Markets {
		if err := defaults.Set(&cfg.Markets[i]); err != nil {
			return nil, ewrap.Wrap(err, "applying market defaults")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseMarkets parses label=path pairs.
func ParseMarkets(entries []string) ([]MarketConfig, error) {
	markets := make([]MarketConfig, 0, len(entries))
	for _, entry := range entries {
		label, path, ok := strings.Cut(entry, "=")
		label, path = strings.TrimSpace(label), strings.TrimSpace(path)
		if !ok || label == "" || path == "" {
			return nil, sentinel.InvalidParameter("market", entry, "expected label=path")
		}
		markets = append(markets, MarketConfig{Label: label, Path: path})
	}
	return markets, nil
}

// setDefaults registers every scalar key with viper so environment
// variables can override keys absent from the file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("conformance.alpha", cfg.Conformance.Alpha)
	v.SetDefault("conformance.leading_gap", cfg.Conformance.LeadingGap)
	v.SetDefault("conformance.workers", cfg.Conformance.Workers)
	v.SetDefault("conformance.tail_sigma", cfg.Conformance.TailSigma)

	v.SetDefault("simulation.enabled", cfg.Simulation.Enabled)
	v.SetDefault("simulation.market", cfg.Simulation.Market)
	v.SetDefault("simulation.annual_volatility", cfg.Simulation.AnnualVolatility)
	v.SetDefault("simulation.horizon_years", cfg.Simulation.HorizonYears)
	v.SetDefault("simulation.step_size", cfg.Simulation.StepSize)
	v.SetDefault("simulation.path_count", cfg.Simulation.PathCount)
	v.SetDefault("simulation.crash_threshold", cfg.Simulation.CrashThreshold)
	v.SetDefault("simulation.max_steps", cfg.Simulation.MaxSteps)
	v.SetDefault("simulation.drift_period", cfg.Simulation.DriftPeriod)
	v.SetDefault("simulation.seed", cfg.Simulation.Seed)

	v.SetDefault("fractal.enabled", cfg.Fractal.Enabled)
	v.SetDefault("fractal.market", cfg.Fractal.Market)
	v.SetDefault("fractal.tolerance", cfg.Fractal.Tolerance)

	v.SetDefault("report.format", cfg.Report.Format)
	v.SetDefault("report.output", cfg.Report.Output)
	v.SetDefault("report.include_paths", cfg.Report.IncludePaths)
	v.SetDefault("report.include_qq", cfg.Report.IncludeQQ)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// registration only fails for an empty tag
	_ = v.RegisterValidation("leading_gap", func(fl validator.FieldLevel) bool {
		_, err := timeseries.ParseLeadingGapPolicy(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			key := strings.TrimPrefix(fe.Namespace(), "Config.")
			return sentinel.InvalidParameter(key, fe.Value(), fieldMessage(fe))
		}
		return ewrap.Wrap(err, "validating config")
	}

	if label := c.Simulation.Market; c.Simulation.Enabled && label != "" {
		if _, ok := c.Market(label); !ok {
			return sentinel.InvalidParameter("simulation.market", label, "no market with this label")
		}
	}
	if label := c.Fractal.Market; c.Fractal.Enabled && label != "" {
		if _, ok := c.Market(label); !ok {
			return sentinel.InvalidParameter("fractal.market", label, "no market with this label")
		}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", fe.Param())
	case "unique":
		return fmt.Sprintf("%s must be unique", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "leading_gap":
		return "must be one of: backfill_from_last, backfill_next, drop, zero"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
