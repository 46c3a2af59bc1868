// Package simbids turns BIDS dataset skeletons into files on disk.
//
// The package provides the three low-level steps of a dataset simulation:
//
//   - [Materialize] writes a skeleton as a directory tree of empty data
//     files, JSON sidecars and a dataset_description.json
//   - [Fill] gives placeholder data files a fixed amount of random content
//   - [Archive] packages the tree into zip files per subject or per session
//
// Materialization goes through a billy.Filesystem so callers can target
// the OS (osfs) or memory (memfs). Archiving works on a real directory
// through [os.Root] and never follows symbolic links.
//
// The root simbids package combines these steps with configuration lookup
// and version-control registration.
package simbids
