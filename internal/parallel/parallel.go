// Package parallel provides bounded fan-out helpers for evaluating data sets
// on several network clones at once.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 8,
	}
}

// WithWorkers returns cfg with NumWorkers set to n. A non-positive n
// disables parallel execution.
func (cfg Config) WithWorkers(n int) Config {
	cfg.NumWorkers = max(n, 1)
	cfg.Enabled = n > 1
	return cfg
}

// Workers returns the number of chunks Chunks will use for n items.
func (cfg Config) Workers(n int) int {
	if n <= 0 {
		return 0
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		return 1
	}
	return min(cfg.NumWorkers, n/max(cfg.MinChunkSize, 1))
}

// Chunks splits [0, n) into Workers(n) contiguous ranges and calls
// f(ctx, worker, start, end) for each range, worker being the range index.
// Ranges run on separate goroutines; with a single range f runs on the
// calling goroutine.
//
// The first error cancels ctx for the remaining ranges and is returned.
func Chunks(ctx context.Context, n int, cfg Config, f func(ctx context.Context, worker, start, end int) error) error {
	workers := cfg.Workers(n)
	switch workers {
	case 0:
		return nil
	case 1:
		return f(ctx, 0, 0, n)
	}

	g, ctx := errgroup.WithContext(ctx)
	chunkSize := (n + workers - 1) / workers
	for worker, start := 0, 0; start < n; worker, start = worker+1, start+chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(ctx, worker, start, end)
		})
	}
	return g.Wait()
}
