package simbids

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/meigma/simbids/configs"
	simcore "github.com/meigma/simbids/core"
	"github.com/meigma/simbids/skeleton"
)

// DatasetDir is the directory below the output directory that holds the
// simulated dataset.
const DatasetDir = simcore.ArchiveRoot

// Registration commit messages.
const (
	MessageArchived = "Add zipped simulated dataset"
	MessagePlain    = "Add simulated dataset"
)

// Simulate builds a simulated dataset below outputDir and returns outputDir.
//
// config names a bundled skeleton (with or without its .yaml extension)
// or, failing that, a path to a JSON or YAML skeleton file. The skeleton is
// materialized into outputDir/simbids, which must not exist yet. With
// WithFillFiles the .nii.gz files receive random content. With a
// granularity other than none the tree is packaged into zip archives next
// to the dataset directory (see core.Archive). A registrar set through
// WithRegistrar finally records the archives together with whatever is
// left of the dataset directory.
//
// An unrecognized granularity fails with ErrInvalidConfig before any
// configuration is read or anything is written.
func Simulate(ctx context.Context, outputDir, config string, opts ...SimulateOption) (string, error) {
	cfg := simulateConfig{
		version:     Version,
		fillWorkers: -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if !cfg.granularity.Valid() {
		return "", fmt.Errorf("%w: granularity %d", ErrInvalidConfig, cfg.granularity)
	}

	data, source, err := loadConfig(cfg, config)
	if err != nil {
		return "", err
	}
	log.Info("using skeleton", "config", config, "source", source)

	m, err := skeleton.Decode(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", config, err)
	}

	fsys := osfs.New(outputDir)
	res, err := simcore.Materialize(ctx, fsys, DatasetDir, m,
		simcore.MaterializeWithLogger(log),
		simcore.MaterializeWithProgress(cfg.progress),
	)
	if err != nil {
		return "", err
	}
	log.Info("materialized dataset", "dir", filepath.Join(outputDir, DatasetDir), "files", len(res.Files))

	if cfg.fill {
		stats, err := simcore.Fill(ctx, fsys, DatasetDir,
			simcore.FillWithWorkers(cfg.fillWorkers),
			simcore.FillWithLogger(log),
			simcore.FillWithProgress(cfg.progress),
		)
		if err != nil {
			return "", err
		}
		log.Info("filled data files", "files", stats.Files, "bytes", stats.Bytes)
	}

	archived, err := simcore.Archive(ctx, filepath.Join(outputDir, DatasetDir), cfg.granularity, cfg.version,
		simcore.ArchiveWithCompression(cfg.compression),
		simcore.ArchiveWithLogger(log),
		simcore.ArchiveWithProgress(cfg.progress),
	)
	if err != nil {
		return "", err
	}

	if cfg.registrar != nil {
		entries, message := registerEntries(outputDir, archived)
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{Stage: StageRegistering, Path: outputDir, FilesTotal: len(entries)})
		}
		if err := cfg.registrar.Register(ctx, outputDir, entries, message); err != nil {
			return "", fmt.Errorf("register: %w", err)
		}
		log.Info("registered dataset", "dir", outputDir, "entries", len(entries))
	}

	return outputDir, nil
}

// registerEntries lists the top-level names Simulate produced below
// outputDir: the dataset directory when it still exists, then the archives.
func registerEntries(outputDir string, archived *simcore.ArchiveResult) ([]string, string) {
	var entries []string
	if info, err := os.Stat(filepath.Join(outputDir, DatasetDir)); err == nil && info.IsDir() {
		entries = append(entries, DatasetDir)
	}
	if len(archived.Archives) == 0 {
		return entries, MessagePlain
	}
	for _, a := range archived.Archives {
		entries = append(entries, a.Name)
	}
	return entries, MessageArchived
}

// loadConfig resolves config to skeleton bytes. It returns "bundled" or
// the file path as the source.
func loadConfig(cfg simulateConfig, config string) ([]byte, string, error) {
	bundled := cfg.configFS
	if bundled == nil {
		bundled = configs.FS()
	}
	data, err := configs.LookupFS(bundled, config)
	if err == nil {
		return data, "bundled", nil
	}
	if !errors.Is(err, configs.ErrNotFound) {
		return nil, "", err
	}

	info, err := os.Stat(config)
	if err != nil || info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s", ErrConfigNotFound, config)
	}
	data, err = os.ReadFile(config) //nolint:gosec // user-provided config path
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", config, err)
	}
	return data, config, nil
}
