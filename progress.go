package simbids

import simcore "github.com/meigma/simbids/core"

// Re-export progress types from core package.
type (
	// ProgressEvent represents a progress update during a simulation.
	ProgressEvent = simcore.ProgressEvent

	// ProgressStage identifies the current phase of a simulation.
	ProgressStage = simcore.ProgressStage

	// ProgressFunc receives progress updates.
	// Implementations must be safe for concurrent calls.
	ProgressFunc = simcore.ProgressFunc
)

// Re-export progress stage constants.
const (
	StageMaterializing = simcore.StageMaterializing
	StageFilling       = simcore.StageFilling
	StageArchiving     = simcore.StageArchiving
	StageRegistering   = simcore.StageRegistering
)
