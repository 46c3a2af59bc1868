package simbids

import "log/slog"

// archiveConfig holds configuration for archive creation.
type archiveConfig struct {
	compression Compression
	logger      *slog.Logger
	progress    ProgressFunc
}

// ArchiveOption configures [Archive].
type ArchiveOption func(*archiveConfig)

// ArchiveWithCompression sets the zip method for archive entries.
// The default is CompressionDeflate. CompressionZstd uses zip method 93,
// which not every unzip tool supports.
func ArchiveWithCompression(c Compression) ArchiveOption {
	return func(cfg *archiveConfig) {
		cfg.compression = c
	}
}

// ArchiveWithLogger sets the logger for archiving.
// If not set, logging is disabled.
func ArchiveWithLogger(logger *slog.Logger) ArchiveOption {
	return func(cfg *archiveConfig) {
		cfg.logger = logger
	}
}

// ArchiveWithProgress sets a callback that receives an event per archive.
func ArchiveWithProgress(fn ProgressFunc) ArchiveOption {
	return func(cfg *archiveConfig) {
		cfg.progress = fn
	}
}
