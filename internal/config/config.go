// Package config loads the taps configuration.
//
// Values are layered, highest precedence first: command-line flags,
// TAPS_-prefixed environment variables, then a YAML config file
// named .taps.yaml, searched in the working directory and then in the taps
// directory under the user config directory. Every flag of the executing command becomes a
// configuration key of the same name.
package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/taps/internal/filter"
	"github.com/hupe1980/taps/internal/transformer"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TAPS"

// Log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	logLevels  = []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	logFormats = []string{LogFormatText, LogFormatJSON}
)

// Config is the resolved taps configuration.
type Config struct {
	LogLevel  string `mapstructure:"log-level" json:"logLevel"`
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// Quiet raises the effective log level to error.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// FilterType selects the size filter; empty disables filtering.
	FilterType string `mapstructure:"filter-type" json:"filterType"`

	// FilterMinSize and FilterMaxSize are the inclusive size bounds in
	// bytes. FilterMaxSize may be +Inf.
	FilterMinSize int     `mapstructure:"filter-min-size" json:"filterMinSize"`
	FilterMaxSize float64 `mapstructure:"filter-max-size" json:"-"`

	// Transformer is the selected transformer name.
	Transformer string `mapstructure:"transformer" json:"transformer"`

	// Settings holds every remaining key by flag name, including
	// transformer options such as "file-dir".
	Settings map[string]any `mapstructure:",remain" json:"-"`

	// ConfigFile is the config file that was read, if any. Set by Load.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:      LogLevelInfo,
		LogFormat:     LogFormatText,
		FilterMaxSize: math.Inf(1),
		Transformer:   transformer.DefaultTransformer,
	}
}

// Validate checks the log settings and the filter settings.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %s", c.LogFormat, strings.Join(logFormats, ", "))
	}

	return c.FilterConfig().Validate()
}

// EffectiveLogLevel returns LogLevel, or error when Quiet is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// FilterConfig returns the filter settings.
func (c *Config) FilterConfig() filter.Config {
	return filter.Config{
		Type:    filter.Type(c.FilterType),
		MinSize: c.FilterMinSize,
		MaxSize: c.FilterMaxSize,
	}
}

// ChoiceConfig returns the transformer selection.
func (c *Config) ChoiceConfig() transformer.ChoiceConfig {
	return transformer.ChoiceConfig{Transformer: c.Transformer}
}

// Load resolves the configuration for cmd. configFile, when non-empty, must
// exist; otherwise the default locations are searched and a missing file is
// not an error. cmd may be nil. Each call uses its own viper instance.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	d := Default()
	for key, value := range map[string]any{
		"log-level":              d.LogLevel,
		"log-format":             d.LogFormat,
		"quiet":                  d.Quiet,
		filter.FlagType:          d.FilterType,
		filter.FlagMinSize:       d.FilterMinSize,
		filter.FlagMaxSize:       d.FilterMaxSize,
		transformer.SelectorFlag: d.Transformer,
	} {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := v.BindPFlags(cmd.LocalFlags()); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}

		if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
			return nil, fmt.Errorf("binding inherited flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".taps")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "taps"))
	}

	err := v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}

	return fmt.Errorf("parsing config file: %w", err)
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the Config stored in ctx, or Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
