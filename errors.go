package simbids

import (
	"errors"

	simcore "github.com/meigma/simbids/core"
	"github.com/meigma/simbids/registry"
)

// Errors re-exported from core.
var (
	// ErrInvalidConfig is returned when an option has an unrecognized value.
	ErrInvalidConfig = simcore.ErrInvalidConfig

	// ErrMalformedConfig is returned when a skeleton cannot be decoded or
	// has the wrong shape.
	ErrMalformedConfig = simcore.ErrMalformedConfig

	// ErrMissingField is returned when a file entry lacks its suffix.
	ErrMissingField = simcore.ErrMissingField

	// ErrInvalidWildcard is returned when "*" has no preceding subject.
	ErrInvalidWildcard = simcore.ErrInvalidWildcard

	// ErrDestinationExists is returned when the dataset directory already exists.
	ErrDestinationExists = simcore.ErrDestinationExists
)

// Errors re-exported from registry.
var (
	// ErrCommandFailed is returned when a registration command fails.
	ErrCommandFailed = registry.ErrCommandFailed
)

// ErrConfigNotFound is returned when the configuration is neither a
// bundled skeleton nor an existing file.
var ErrConfigNotFound = errors.New("simbids: config not found")
