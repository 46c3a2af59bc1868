package simbids

import "log/slog"

// fillConfig holds configuration for filling placeholder files.
type fillConfig struct {
	size      int64
	extension string
	workers   int
	logger    *slog.Logger
	progress  ProgressFunc
}

// FillOption configures [Fill].
type FillOption func(*fillConfig)

// FillWithSize overrides the number of random bytes written per file.
func FillWithSize(n int64) FillOption {
	return func(cfg *fillConfig) {
		cfg.size = n
	}
}

// FillWithExtension selects which files are filled by name suffix.
func FillWithExtension(ext string) FillOption {
	return func(cfg *fillConfig) {
		cfg.extension = ext
	}
}

// FillWithWorkers sets how many files are filled concurrently.
// Values < 0 fill serially, zero uses GOMAXPROCS.
// Without this option files are filled one at a time.
func FillWithWorkers(n int) FillOption {
	return func(cfg *fillConfig) {
		cfg.workers = n
	}
}

// FillWithLogger sets the logger for filling.
// If not set, logging is disabled.
func FillWithLogger(logger *slog.Logger) FillOption {
	return func(cfg *fillConfig) {
		cfg.logger = logger
	}
}

// FillWithProgress sets a callback that receives an event per filled file.
func FillWithProgress(fn ProgressFunc) FillOption {
	return func(cfg *fillConfig) {
		cfg.progress = fn
	}
}
