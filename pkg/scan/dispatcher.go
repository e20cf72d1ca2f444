package scan

import (
	"context"
	"runtime"
	"sync"

	"github.com/mverbeek/peoplescan/pkg/detect"
	"github.com/mverbeek/peoplescan/pkg/logging"
	"github.com/mverbeek/peoplescan/pkg/models"
)

// DefaultWorkers returns the classification pool size: one worker per
// CPU minus one kept free for the interactive controlling goroutine.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// Dispatcher classifies batches of image files on a fixed worker pool.
// Each worker builds its own detector once and reuses it for the pool's
// lifetime. Results are delivered in submission order, incrementally.
type Dispatcher struct {
	workers int
	factory detect.Factory
	logger  logging.Logger
}

// NewDispatcher creates a dispatcher with the given pool size
func NewDispatcher(workers int, factory detect.Factory, logger logging.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Dispatcher{workers: workers, factory: factory, logger: logger}
}

// Classify submits files to the pool and returns a channel yielding one
// result per file, in the order the files were given, as soon as each
// ordered result is ready. A failure classifying a single file resolves
// to HasPeople=false and never aborts the batch. Cancelling ctx
// discards all queued and in-flight work and closes the channel early.
func (d *Dispatcher) Classify(ctx context.Context, files []string) <-chan models.ClassificationResult {
	// One single-slot channel per file keeps workers from ever blocking
	// on delivery while the consumer waits for the next ordered result.
	slots := make([]chan bool, len(files))
	for i := range slots {
		slots[i] = make(chan bool, 1)
	}

	tasks := make(chan int)
	go func() {
		defer close(tasks)
		for i := range files {
			select {
			case tasks <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.runWorker(ctx, files, tasks, slots)
		}()
	}

	out := make(chan models.ClassificationResult)
	go func() {
		defer close(out)
		for i := range files {
			var has bool
			select {
			case has = <-slots[i]:
			case <-ctx.Done():
				return
			}
			select {
			case out <- models.ClassificationResult{Path: files[i], HasPeople: has}:
			case <-ctx.Done():
				return
			}
		}
		wg.Wait()
	}()

	return out
}

// runWorker owns one detector instance for its whole lifetime
func (d *Dispatcher) runWorker(ctx context.Context, files []string, tasks <-chan int, slots []chan bool) {
	detector, err := d.factory()
	if err != nil {
		// Without a detector this worker can only resolve its share of
		// the batch to "no people"; the failure is logged once.
		d.logger.Error(ctx, "Failed to construct detector", err, nil)
		detector = nil
	}

	for i := range tasks {
		has := false
		if detector != nil {
			v, cerr := detector.Classify(ctx, files[i])
			if cerr != nil {
				d.logger.Warn(ctx, "Classification failed, treating as no person", logging.Fields{
					"file":  files[i],
					"error": cerr.Error(),
				})
			} else {
				has = v
			}
		}
		slots[i] <- has
	}
}
