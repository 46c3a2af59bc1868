package simbids

import (
	"io/fs"
	"log/slog"

	"github.com/meigma/simbids/registry"
)

// Version is the simulator version. It appears in archive names and in
// derivative dataset descriptions.
const Version = "0.1.0"

// simulateConfig holds configuration for [Simulate].
type simulateConfig struct {
	granularity Granularity
	compression Compression
	fill        bool
	fillWorkers int
	version     string
	registrar   registry.Registrar
	logger      *slog.Logger
	progress    ProgressFunc
	configFS    fs.FS
}

// SimulateOption configures [Simulate].
type SimulateOption func(*simulateConfig)

// WithGranularity selects how the dataset is archived.
// The default, GranularityNone, leaves the tree unarchived.
func WithGranularity(g Granularity) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.granularity = g
	}
}

// WithFillFiles fills every .nii.gz file with random bytes before archiving.
func WithFillFiles(enabled bool) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.fill = enabled
	}
}

// WithFillWorkers sets how many files are filled concurrently.
// Values < 0 fill serially (the default), zero uses GOMAXPROCS.
func WithFillWorkers(n int) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.fillWorkers = n
	}
}

// WithCompression sets the zip method used for archive entries.
func WithCompression(c Compression) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.compression = c
	}
}

// WithVersion overrides the version embedded in archive names.
func WithVersion(v string) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.version = v
	}
}

// WithRegistrar records the output with r once the dataset is complete.
func WithRegistrar(r registry.Registrar) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.registrar = r
	}
}

// WithLogger sets the logger for all simulation steps.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.logger = logger
	}
}

// WithProgress sets a callback that receives progress events from every stage.
// The callback may be invoked concurrently while files are filled.
func WithProgress(fn ProgressFunc) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.progress = fn
	}
}

// WithConfigFS replaces the bundled skeletons that configuration names are
// looked up in. fsys must hold them below bids_mri/.
func WithConfigFS(fsys fs.FS) SimulateOption {
	return func(cfg *simulateConfig) {
		cfg.configFS = fsys
	}
}
