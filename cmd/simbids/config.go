package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings shared by flags, simbids.yaml and SIMBIDS_* variables.
type Config struct {
	LogLevel    string `mapstructure:"log-level"`
	Granularity string `mapstructure:"granularity"`
	Compression string `mapstructure:"compression"`
	FillFiles   bool   `mapstructure:"fill-files"`
	FillWorkers int    `mapstructure:"fill-workers"`
	Register    string `mapstructure:"register"`
	Datalad     string `mapstructure:"datalad"`
	OCILayout   string `mapstructure:"oci-layout"`
}

// newViper returns a viper instance with defaults, config file search
// paths and environment binding set up.
func newViper(home string) *viper.Viper {
	v := viper.New()
	v.SetDefault("log-level", "info")
	v.SetDefault("granularity", "none")
	v.SetDefault("compression", "deflate")
	v.SetDefault("fill-files", false)
	v.SetDefault("fill-workers", -1)
	v.SetDefault("register", "none")
	v.SetDefault("datalad", "datalad")
	v.SetDefault("oci-layout", "")

	v.SetConfigName("simbids")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "simbids"))
	}

	v.SetEnvPrefix("SIMBIDS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads the config file, if any, and decodes all settings.
// An explicit file set with SetConfigFile must exist.
func loadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
