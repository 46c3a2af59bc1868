package derivatives

import "errors"

// Sentinel errors for derivative handling.
var (
	// ErrDescriptionNotFound is returned when the input dataset has no
	// dataset_description.json.
	ErrDescriptionNotFound = errors.New("derivatives: dataset description not found")

	// ErrInvalidQuerySpec is returned when a query spec cannot be parsed or
	// the selector does not point at an object of queries.
	ErrInvalidQuerySpec = errors.New("derivatives: invalid query spec")

	// ErrMultipleMatches is returned when a query matches more than one
	// file and multiple matches are not allowed.
	ErrMultipleMatches = errors.New("derivatives: multiple matches")

	// ErrMissingSubject is returned when Collect is called without a subject entity.
	ErrMissingSubject = errors.New("derivatives: missing subject entity")
)
