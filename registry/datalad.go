package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Datalad registers entries in a DataLad dataset.
//
// The directory is turned into a dataset with "datalad create --force",
// which keeps existing content, and the entries are saved in one commit.
type Datalad struct {
	// Runner executes datalad. Defaults to ExecRunner.
	Runner Runner

	// Binary is the datalad executable. Defaults to "datalad".
	Binary string

	Logger *slog.Logger
}

// Register implements [Registrar].
func (d Datalad) Register(ctx context.Context, dir string, entries []string, message string) error {
	if len(entries) == 0 {
		return ErrNothingToRegister
	}
	bin := d.Binary
	if bin == "" {
		bin = "datalad"
	}
	run := runner(d.Runner)
	log := logger(d.Logger)

	log.Info("creating datalad dataset", "dir", dir)
	if err := run.Run(ctx, dir, bin, "create", "--force", dir); err != nil {
		return fmt.Errorf("datalad create: %w", err)
	}

	args := append([]string{"save", "-d", dir, "-m", message}, entries...)
	log.Info("saving to datalad dataset", "dir", dir, "entries", len(entries))
	if err := run.Run(ctx, dir, bin, args...); err != nil {
		return fmt.Errorf("datalad save: %w", err)
	}
	return nil
}
