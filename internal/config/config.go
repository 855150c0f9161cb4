// Package config handles configuration loading and validation for sheetsql
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration keys,
// e.g. SHEETSQL_LOG_LEVEL for log.level.
const EnvPrefix = "SHEETSQL"

// Config holds all configuration for the sheetsql command
type Config struct {
	Engine string       `mapstructure:"engine"`
	Paths  []string     `mapstructure:"paths"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
	REPL   REPLConfig   `mapstructure:"repl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// OutputConfig controls how query results are printed
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	Prompt      string `mapstructure:"prompt"`
	HistoryFile string `mapstructure:"history_file"`
}

var (
	validEngines = map[string]bool{"native": true, "sqlite": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFmts = map[string]bool{"console": true, "json": true}
	validOutputs = map[string]bool{"table": true, "csv": true, "json": true, "yaml": true}
)

// Default configuration values
func defaultConfig() *Config {
	return &Config{
		Engine: "native",
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
			Output: "stderr",
		},
		Output: OutputConfig{
			Format: "table",
		},
		REPL: REPLConfig{
			Prompt:      "sheetsql> ",
			HistoryFile: "",
		},
	}
}

// Load reads configuration from file and environment.
// An empty configPath searches ./sheetsql.yaml and $HOME/.sheetsql/sheetsql.yaml;
// a missing file there is not an error.
func Load(configPath string) (*Config, error) {
	return load(viper.New(), configPath)
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	cfg := defaultConfig()
	v.SetDefault("engine", cfg.Engine)
	v.SetDefault("paths", []string{})
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("repl.prompt", cfg.REPL.Prompt)
	v.SetDefault("repl.history_file", cfg.REPL.HistoryFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("sheetsql")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.sheetsql")

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok { //nolint:errorlint // viper returns the value type
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Engine = strings.ToLower(cfg.Engine)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that configuration values are sensible
func (c *Config) Validate() error {
	if !validEngines[strings.ToLower(c.Engine)] {
		return fmt.Errorf("invalid engine: %s (want native or sqlite)", c.Engine)
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if !validLogFmts[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if !validOutputs[strings.ToLower(c.Output.Format)] {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("paths must not contain empty entries")
		}
	}
	return nil
}

// Merge overrides configured values with non-empty command line values.
func (c *Config) Merge(engine string, paths []string) {
	if engine != "" {
		c.Engine = strings.ToLower(engine)
	}
	if len(paths) > 0 {
		c.Paths = paths
	}
}
