package simbids

import (
	"errors"

	"github.com/meigma/simbids/core/internal/simtype"
	"github.com/meigma/simbids/skeleton"
)

// Sentinel errors re-exported from the skeleton and internal packages.
var (
	// ErrInvalidConfig is returned when an option such as the granularity
	// has an unrecognized value.
	ErrInvalidConfig = simtype.ErrInvalidConfig

	// ErrMalformedConfig is returned when a skeleton cannot be decoded or
	// has the wrong shape.
	ErrMalformedConfig = skeleton.ErrMalformedConfig

	// ErrMissingField is returned when a file entry lacks its suffix.
	ErrMissingField = skeleton.ErrMissingField

	// ErrInvalidWildcard is returned when "*" has no preceding subject.
	ErrInvalidWildcard = skeleton.ErrInvalidWildcard
)

// Sentinel errors specific to the core package.
var (
	// ErrDestinationExists is returned when the materialization target
	// already exists.
	ErrDestinationExists = errors.New("simbids: destination exists")
)
