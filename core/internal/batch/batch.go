// Package batch runs per-file work with a bounded number of workers.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Func processes one path and returns the number of bytes it wrote.
type Func func(ctx context.Context, path string) (int64, error)

// Processor applies a Func to a list of paths.
type Processor struct {
	workers  int // 0 = GOMAXPROCS, <0 = serial, >0 = fixed count
	logger   *slog.Logger
	progress func(path string, stats ProcessStats)
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Processor) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of concurrent workers.
// Values < 0 force serial processing. Zero uses GOMAXPROCS.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		p.workers = n
	}
}

// WithProcessorLogger sets the logger for batch processing operations.
// If not set, logging is disabled.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithProgress registers a callback invoked after each path completes
// with the running totals. Calls are serialized.
func WithProgress(fn func(path string, stats ProcessStats)) ProcessorOption {
	return func(p *Processor) {
		p.progress = fn
	}
}

// NewProcessor creates a new batch processor.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs fn for every path. Processing stops on the first error and
// the context passed to fn is canceled.
func (p *Processor) Process(ctx context.Context, paths []string, fn Func) (ProcessStats, error) {
	var (
		mu    sync.Mutex
		stats ProcessStats
	)
	done := func(path string, n int64) {
		mu.Lock()
		defer mu.Unlock()
		stats.add(ProcessStats{Processed: 1, TotalBytes: uint64(n)}) //nolint:gosec // n is a non-negative byte count
		if p.progress != nil {
			p.progress(path, stats)
		}
	}

	workers := p.workerCount(len(paths))
	p.log().Debug("batch processing", "paths", len(paths), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := fn(gctx, path)
			if err != nil {
				return err
			}
			done(path, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// workerCount determines the number of workers to use for n paths.
func (p *Processor) workerCount(n int) int {
	if n < 2 || p.workers < 0 {
		return 1
	}
	workers := p.workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		return 1
	}
	return workers
}
