package registry

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Registrar records the entries of dir with a commit message.
// Entries are paths relative to dir.
type Registrar interface {
	Register(ctx context.Context, dir string, entries []string, message string) error
}

// Runner runs an external command in dir.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Logger receives the command line and its output at debug level.
	Logger *slog.Logger
}

// Run executes name with args in dir. A non-zero exit status is returned
// as ErrCommandFailed carrying the command's combined output.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug("running command", "dir", dir, "cmd", name, "args", args)
	err := cmd.Run()
	if out.Len() > 0 {
		logger.Debug("command output", "cmd", name, "output", strings.TrimSpace(out.String()))
	}
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v: %s", ErrCommandFailed, name, strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return nil
}

func runner(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
