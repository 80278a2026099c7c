package kinten

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one batch runs.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent batches; each may hold an office
	// application or a browser.
	MaxPoolSize = 4

	// cpuDivisor leaves headroom for the backends' own processes.
	cpuDivisor = 2
)

// ErrSharedOutputDir rejects a batch whose output directory is already used
// by an earlier request in the same RunBatches call.
var ErrSharedOutputDir = errors.New("output directory shared with another batch")

// RunBatches converts independent batches concurrently, at most workers at
// a time (ResolvePoolSize picks a default when workers <= 0). Every batch
// gets its own backend session; batches must target distinct output
// directories. Results and errors are indexed like reqs; a rejected request
// gets a failed result carrying its error.
func RunBatches(ctx context.Context, conv *Converter, reqs []Request, workers int) ([]*BatchResult, []error) {
	results := make([]*BatchResult, len(reqs))
	errs := make([]error, len(reqs))

	seen := make(map[string]int, len(reqs))
	var g errgroup.Group
	g.SetLimit(ResolvePoolSize(workers))

	for i, req := range reqs {
		key := filepath.Clean(req.OutputDir)
		if first, dup := seen[key]; dup {
			errs[i] = fmt.Errorf("%w: %s (request %d)", ErrSharedOutputDir, req.OutputDir, first)
			results[i] = fatalResult("", req.OutputDir, "", errs[i])
			continue
		}
		seen[key] = i

		g.Go(func() error {
			results[i], errs[i] = conv.Convert(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results, errs
}

// ResolvePoolSize determines how many batches run at once.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
