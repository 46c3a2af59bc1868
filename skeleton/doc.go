// Package skeleton models the declarative description of a BIDS dataset.
//
// A skeleton is an ordered mapping from subject identifiers to the sessions,
// modalities and files that should exist for that subject:
//
//	dataset_description: {Name: Example, BIDSVersion: 1.6.0}
//	"01":
//	  - session: "01"
//	    anat: {suffix: T1w}
//	    dwi:
//	      - {suffix: dwi, acq: HASC55AP, metadata: {PhaseEncodingDirection: j}}
//	"02": "*"
//
// Key order is significant. It drives the wildcard marker "*", which repeats
// the previous subject's sessions, and the order entities appear in
// generated filenames. Mappings are therefore decoded into [Mapping], an
// insertion-ordered map, rather than Go maps.
//
// Decoding ([Decode]) produces the raw tree. [Parse] turns the raw tree into
// typed values ([Dataset], [Subject], [FileEntry]) without mutating it, and
// [Resolve] expands wildcards into a flat list of subjects.
package skeleton
