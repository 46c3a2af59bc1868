package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Default commit identity used by [Git].
const (
	DefaultAuthorName  = "SimBIDS"
	DefaultAuthorEmail = "simbids@localhost"
)

// Git registers entries in a plain git repository.
type Git struct {
	// Runner executes git. Defaults to ExecRunner.
	Runner Runner

	// AuthorName and AuthorEmail set the commit identity.
	AuthorName  string
	AuthorEmail string

	Logger *slog.Logger
}

// Register implements [Registrar]. The repository is initialized if
// needed; "git init" is a no-op on an existing repository.
func (g Git) Register(ctx context.Context, dir string, entries []string, message string) error {
	if len(entries) == 0 {
		return ErrNothingToRegister
	}
	name, email := g.AuthorName, g.AuthorEmail
	if name == "" {
		name = DefaultAuthorName
	}
	if email == "" {
		email = DefaultAuthorEmail
	}
	run := runner(g.Runner)
	log := logger(g.Logger)

	log.Info("registering with git", "dir", dir, "entries", len(entries))
	if err := run.Run(ctx, dir, "git", "init", "--quiet"); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	add := append([]string{"add", "--"}, entries...)
	if err := run.Run(ctx, dir, "git", add...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	commit := []string{
		"-c", "user.name=" + name,
		"-c", "user.email=" + email,
		"commit", "--quiet", "-m", message,
	}
	if err := run.Run(ctx, dir, "git", commit...); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}
