// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/petenewcomb/psx-go/executor"
	"github.com/petenewcomb/psx-go/internal/cerr"
	"github.com/spf13/viper"
)

// Config holds psxwalk's settings, gathered from flags, PSXWALK_* environment
// variables and an optional YAML file, in that order of precedence.
type Config struct {
	executor.Config `mapstructure:",squash"`

	// MaxDepth limits how many levels below the root are visited. Negative
	// means no limit.
	MaxDepth int           `mapstructure:"max_depth"`
	LogLevel string        `mapstructure:"log_level"`
	Trace    bool          `mapstructure:"trace"`
	Metrics  bool          `mapstructure:"metrics"`
	Progress time.Duration `mapstructure:"progress"`
}

var defaultConfig = Config{
	Config:   executor.DefaultConfig,
	MaxDepth: -1,
	LogLevel: "warn",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", defaultConfig.Workers)
	v.SetDefault("blocking_workers", defaultConfig.BlockingWorkers)
	v.SetDefault("max_depth", defaultConfig.MaxDepth)
	v.SetDefault("log_level", defaultConfig.LogLevel)
	v.SetDefault("trace", defaultConfig.Trace)
	v.SetDefault("metrics", defaultConfig.Metrics)
	v.SetDefault("progress", defaultConfig.Progress)
}

// loadConfig resolves the configuration held by v, reading configFile first if
// it is non-empty.
func loadConfig(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("PSXWALK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers == 0 {
		return fmt.Errorf("%w: workers must be non-zero", ErrInvalidConfig)
	}
	if c.BlockingWorkers == 0 {
		return fmt.Errorf("%w: blocking_workers must be non-zero", ErrInvalidConfig)
	}
	if c.Progress < 0 {
		return fmt.Errorf("%w: progress must not be negative", ErrInvalidConfig)
	}
	return nil
}

const ErrInvalidConfig = cerr.Error("invalid configuration")
