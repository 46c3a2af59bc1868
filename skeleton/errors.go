package skeleton

import "errors"

var (
	// ErrMalformedConfig is returned when a skeleton cannot be decoded as JSON
	// or YAML, or when a decoded value has the wrong shape.
	ErrMalformedConfig = errors.New("skeleton: malformed configuration")

	// ErrMissingField is returned when a file entry lacks a required key.
	ErrMissingField = errors.New("skeleton: missing required field")

	// ErrInvalidWildcard is returned when the "*" marker is used by a subject
	// that has no preceding subject to copy.
	ErrInvalidWildcard = errors.New("skeleton: invalid wildcard reference")
)
