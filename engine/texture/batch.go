package texture

import (
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Result is the outcome of loading one file in a batch.
type Result struct {
	Path  string
	Image *image.NRGBA
	Err   error
}

var (
	poolOnce   sync.Once
	poolMu     sync.Mutex
	sharedPool worker.DynamicWorkerPool
)

// decodePool returns the package's long lived decode pool, growing it to at least workers.
// Callers hold poolMu.
func decodePool(workers int) worker.DynamicWorkerPool {
	poolOnce.Do(func() {
		sharedPool = worker.NewDynamicWorkerPool(workers, 256, 1*time.Second)
	})
	if n := workers - sharedPool.GetMaxWorkers(); n > 0 {
		sharedPool.IncreaseMaxWorkers(n)
	}
	return sharedPool
}

// LoadBatch decodes image files concurrently on a shared worker pool. Uploading stays with the
// caller since GPU calls belong to the render goroutine.
//
// Parameters:
//   - paths: the image files
//   - workers: the pool size to grow to, 0 or more than the CPU count for one worker per CPU
//
// Returns:
//   - []Result: one result per path, in input order
func LoadBatch(paths []string, workers int) []Result {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, runtime.NumCPU())

	var wg sync.WaitGroup
	poolMu.Lock()
	pool := decodePool(workers)
	for i, path := range paths {
		wg.Add(1)
		idx, p := i, path
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := Load(p)
				results[idx] = Result{Path: p, Image: img, Err: err}
				return nil, nil
			},
		})
	}
	size := pool.GetMaxWorkers()
	poolMu.Unlock()
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Warn("texture: load failed", "path", r.Path, "error", r.Err)
		}
	}
	slog.Debug("texture: batch loaded", "files", len(paths), "failed", failed, "workers", size)
	return results
}
