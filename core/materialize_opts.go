package simbids

import (
	"log/slog"

	"github.com/meigma/simbids/skeleton"
)

// materializeConfig holds configuration for skeleton materialization.
type materializeConfig struct {
	logger      *slog.Logger
	progress    ProgressFunc
	description *skeleton.Mapping
}

// MaterializeOption configures skeleton materialization.
type MaterializeOption func(*materializeConfig)

// MaterializeWithLogger sets the logger for materialization.
// If not set, logging is disabled.
func MaterializeWithLogger(logger *slog.Logger) MaterializeOption {
	return func(cfg *materializeConfig) {
		cfg.logger = logger
	}
}

// MaterializeWithProgress sets a callback that receives an event after
// each data file is written.
func MaterializeWithProgress(fn ProgressFunc) MaterializeOption {
	return func(cfg *materializeConfig) {
		cfg.progress = fn
	}
}

// MaterializeWithDefaultDescription replaces the dataset description used
// when the skeleton has no dataset_description key.
func MaterializeWithDefaultDescription(desc *skeleton.Mapping) MaterializeOption {
	return func(cfg *materializeConfig) {
		cfg.description = desc
	}
}

// DefaultDescription returns the dataset description written when the
// skeleton does not provide one.
func DefaultDescription() *skeleton.Mapping {
	return skeleton.FromPairs("Name", "Default", "BIDSVersion", "1.6.0")
}
