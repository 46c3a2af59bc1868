package simtype

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when an option value is not recognized.
var ErrInvalidConfig = errors.New("simbids: invalid configuration")

// Granularity selects the packaging unit for archives.
type Granularity uint8

const (
	// GranularityNone leaves the dataset as a plain directory tree.
	GranularityNone Granularity = iota

	// GranularitySubject writes one archive per subject.
	GranularitySubject

	// GranularitySession writes one archive per subject and session.
	GranularitySession
)

// String returns the name used on the command line and in config files.
func (g Granularity) String() string {
	switch g {
	case GranularityNone:
		return "none"
	case GranularitySubject:
		return "subject"
	case GranularitySession:
		return "session"
	default:
		return "unknown"
	}
}

// Valid reports whether g is one of the defined granularities.
func (g Granularity) Valid() bool {
	return g <= GranularitySession
}

// ParseGranularity parses "none", "subject" or "session".
// An empty string means none.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", "none":
		return GranularityNone, nil
	case "subject":
		return GranularitySubject, nil
	case "session":
		return GranularitySession, nil
	default:
		return 0, fmt.Errorf("%w: granularity %q (want none, subject or session)", ErrInvalidConfig, s)
	}
}
