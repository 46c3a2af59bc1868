package simbids

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/meigma/simbids/core/internal/batch"
	"github.com/meigma/simbids/skeleton"
)

// FillSize is the number of random bytes written to each filled file.
const FillSize int64 = 10 * 1024 * 1024

// FillStats summarizes a [Fill] call.
type FillStats struct {
	// Files is the number of files filled.
	Files int

	// Bytes is the total number of bytes written.
	Bytes uint64
}

// Fill overwrites every regular file below root whose name ends in
// .nii.gz with FillSize random bytes. Other files are left as they are.
// The content is not a valid image; it only gives the files a size.
func Fill(ctx context.Context, fsys billy.Filesystem, root string, opts ...FillOption) (FillStats, error) {
	cfg := fillConfig{
		size:      FillSize,
		extension: skeleton.DefaultExtension,
		workers:   -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	paths, err := fillTargets(fsys, root, cfg.extension)
	if err != nil {
		return FillStats{}, err
	}
	logger.Info("filling placeholder files", "root", root, "files", len(paths), "bytes_per_file", cfg.size)

	proc := batch.NewProcessor(
		batch.WithWorkers(cfg.workers),
		batch.WithProcessorLogger(logger),
		batch.WithProgress(func(path string, s batch.ProcessStats) {
			if cfg.progress == nil {
				return
			}
			cfg.progress(ProgressEvent{
				Stage:      StageFilling,
				Path:       path,
				BytesDone:  s.TotalBytes,
				BytesTotal: uint64(cfg.size) * uint64(len(paths)), //nolint:gosec // sizes are non-negative
				FilesDone:  s.Processed,
				FilesTotal: len(paths),
			})
		}),
	)
	stats, err := proc.Process(ctx, paths, func(_ context.Context, p string) (int64, error) {
		return fillFile(fsys, p, cfg.size)
	})
	if err != nil {
		return FillStats{Files: stats.Processed, Bytes: stats.TotalBytes}, fmt.Errorf("fill: %w", err)
	}
	return FillStats{Files: stats.Processed, Bytes: stats.TotalBytes}, nil
}

// fillTargets lists the regular files below root ending in ext, sorted.
func fillTargets(fsys billy.Filesystem, root, ext string) ([]string, error) {
	var paths []string
	err := util.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() && strings.HasSuffix(info.Name(), ext) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(paths)
	return paths, nil
}

func fillFile(fsys billy.Filesystem, p string, size int64) (int64, error) {
	f, err := fsys.OpenFile(p, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.CopyN(f, rand.Reader, size)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", p, err)
	}
	return n, nil
}
