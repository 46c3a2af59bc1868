// Package simbids simulates BIDS datasets for testing neuroimaging
// pipelines.
//
// A simulation turns a skeleton, a nested JSON or YAML description of
// subjects, sessions, modalities and files, into a directory tree of
// placeholder files, optionally fills the data files with random bytes,
// packages the result into zip archives and records the output in a
// version-controlled data store.
//
// # Quick Start
//
// Simulate a bundled configuration with one archive per subject:
//
//	out, err := simbids.Simulate(ctx, "/tmp/sim", "multi_ses_qsiprep.yaml",
//	    simbids.WithGranularity(simbids.GranularitySubject),
//	    simbids.WithFillFiles(true),
//	)
//
// The configuration argument is either the name of a bundled skeleton
// (see the configs package) or a path to a skeleton file.
//
// # Skeletons
//
//	dataset_description: {Name: Example, BIDSVersion: 1.9.0}
//	"01":
//	  - session: pre
//	    anat: {suffix: T1w, metadata: {EchoTime: 0.005}}
//	"02": "*"
//
// Subject "02" repeats the sessions of the subject before it.
//
// For the individual steps use the core package; for registration backends
// see the registry package.
package simbids
