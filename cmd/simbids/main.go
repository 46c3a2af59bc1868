// Command simbids simulates BIDS datasets.
//
// Usage:
//
//	simbids raw-mri <bids_dir> <config> [--fill-files] [--granularity subject|session]
//	simbids skeleton <bids_dir> [--subjects N] [--sessions N] [--output file]
//	simbids describe <input_dir> <output_dir>
//	simbids collect <bids_dir> [--entity key=value]... [--allow-multiple]
//	simbids configs
//	simbids version
//
// Defaults for every flag can be set in simbids.yaml (current directory or
// $HOME/.config/simbids) or through SIMBIDS_* environment variables, for
// example SIMBIDS_FILL_FILES=true.
package main

import (
	"os"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
