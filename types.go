package simbids

import simcore "github.com/meigma/simbids/core"

type (
	// Granularity selects the packaging unit for archives.
	Granularity = simcore.Granularity

	// Compression identifies the zip method used for archive entries.
	Compression = simcore.Compression
)

// Re-export granularity constants.
const (
	GranularityNone    = simcore.GranularityNone
	GranularitySubject = simcore.GranularitySubject
	GranularitySession = simcore.GranularitySession
)

// Re-export compression constants.
const (
	CompressionDeflate = simcore.CompressionDeflate
	CompressionStore   = simcore.CompressionStore
	CompressionZstd    = simcore.CompressionZstd
)

var (
	// ParseGranularity parses "none", "subject" or "session".
	ParseGranularity = simcore.ParseGranularity

	// ParseCompression parses "deflate", "store" or "zstd".
	ParseCompression = simcore.ParseCompression
)
