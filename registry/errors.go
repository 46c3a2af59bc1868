package registry

import "errors"

// Sentinel errors for registration.
var (
	// ErrCommandFailed is returned when an external command exits with an error.
	ErrCommandFailed = errors.New("registry: command failed")

	// ErrNothingToRegister is returned when Register is called without entries.
	ErrNothingToRegister = errors.New("registry: nothing to register")
)
