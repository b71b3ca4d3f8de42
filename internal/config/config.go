// Package config loads the run configuration from a JSON/YAML file,
// OPTION_GREEKS_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// PayoffConfig is the spot sweep used for the profit/loss curve.
type PayoffConfig struct {
	Min    float64 `mapstructure:"min"`
	Max    float64 `mapstructure:"max"`
	Points int     `mapstructure:"points"`
}

type Config struct {
	Underlying string       `mapstructure:"underlying"`
	Provider   string       `mapstructure:"provider"`
	APIKey     string       `mapstructure:"api_key"`
	DataDir    string       `mapstructure:"data_dir"`
	Spot       float64      `mapstructure:"spot"`
	Strike     float64      `mapstructure:"strike"`
	Expiry     float64      `mapstructure:"expiry"`
	Rate       float64      `mapstructure:"rate"`
	Volatility float64      `mapstructure:"volatility"`
	Payoff     PayoffConfig `mapstructure:"payoff"`
	ReportDir  string       `mapstructure:"report_dir"`
	Verbosity  int          `mapstructure:"verbosity"`
	Listen     string       `mapstructure:"listen"`
	Workers    int          `mapstructure:"workers"`

	// SpotExplicit is true when the spot came from the config file, the
	// environment or the command line rather than the built-in default.
	// Only an explicit spot may stand in for a provider lookup.
	SpotExplicit bool `mapstructure:"-"`
}

const (
	ProviderStatic    = "static"
	ProviderMassive   = "massive"
	ProviderSynthetic = "synthetic"
	ProviderLocal     = "local"

	EnvPrefix = "OPTION_GREEKS"
)

const (
	DefaultSpot       = 100.0
	DefaultStrike     = 100.0
	DefaultExpiry     = 0.5
	DefaultRate       = 0.05
	DefaultVolatility = 0.2
	DefaultPayoffMin  = 50.0
	DefaultPayoffMax  = 150.0
	DefaultPoints     = 200
	DefaultListen     = ":8080"
)

// Default returns the configuration used when no file is given.
// Decoding built-in defaults cannot fail; a failure is a programming error.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := map[string]interface{}{
		"underlying":    "",
		"provider":      ProviderStatic,
		"api_key":       "",
		"data_dir":      "data",
		"spot":          DefaultSpot,
		"strike":        DefaultStrike,
		"expiry":        DefaultExpiry,
		"rate":          DefaultRate,
		"volatility":    DefaultVolatility,
		"payoff.min":    DefaultPayoffMin,
		"payoff.max":    DefaultPayoffMax,
		"payoff.points": DefaultPoints,
		"report_dir":    "",
		"verbosity":     1,
		"listen":        DefaultListen,
		"workers":       0,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads path (when non-empty), applies environment overrides and
// validates the result. Market inputs are not range-checked here; the pricing
// engine reports those as domain errors.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	_, spotInEnv := os.LookupEnv(EnvPrefix + "_SPOT")
	cfg.SpotExplicit = v.InConfig("spot") || spotInEnv

	// same fallback the market data tooling has always used
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MASSIVE_API_KEY")
	}

	return cfg, Validate(cfg)
}

// Validate checks the structural parameters of a configuration.
func Validate(cfg *Config) error {
	switch cfg.Provider {
	case ProviderStatic, ProviderSynthetic:
	case ProviderLocal:
		if cfg.Underlying == "" {
			return errors.New("local provider requires an underlying ticker")
		}
	case ProviderMassive:
		if cfg.Underlying == "" {
			return errors.New("massive provider requires an underlying ticker")
		}
		if cfg.APIKey == "" {
			return errors.New("massive provider requires api_key or MASSIVE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.Payoff.Points < 1 {
		return errors.New("invalid payoff.points")
	}
	if cfg.Payoff.Max < cfg.Payoff.Min {
		return errors.New("payoff.max must not be below payoff.min")
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 3 {
		return errors.New("invalid verbosity")
	}
	if cfg.Workers < 0 {
		return errors.New("invalid workers count")
	}
	return nil
}
