package simbids

import (
	"github.com/meigma/simbids/core/internal/simtype"
)

type (
	// ProgressEvent represents a progress update during simulation.
	ProgressEvent = simtype.ProgressEvent

	// ProgressStage identifies the current phase of an operation.
	ProgressStage = simtype.ProgressStage

	// ProgressFunc receives progress updates during operations.
	ProgressFunc = simtype.ProgressFunc

	// Granularity selects the packaging unit for archives.
	Granularity = simtype.Granularity

	// Compression identifies the zip method used for archive entries.
	Compression = simtype.Compression
)

// Re-export progress stage constants.
const (
	StageMaterializing = simtype.StageMaterializing
	StageFilling       = simtype.StageFilling
	StageArchiving     = simtype.StageArchiving
	StageRegistering   = simtype.StageRegistering
)

// Re-export granularity constants.
const (
	GranularityNone    = simtype.GranularityNone
	GranularitySubject = simtype.GranularitySubject
	GranularitySession = simtype.GranularitySession
)

// Re-export compression constants.
const (
	CompressionDeflate = simtype.CompressionDeflate
	CompressionStore   = simtype.CompressionStore
	CompressionZstd    = simtype.CompressionZstd
)

var (
	// ParseGranularity parses "none", "subject" or "session".
	ParseGranularity = simtype.ParseGranularity

	// ParseCompression parses "deflate", "store" or "zstd".
	ParseCompression = simtype.ParseCompression
)
