package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pypln-web/internal/search"
)

type IndexRunner interface {
	Run(ctx context.Context) (*search.Report, error)
}

// IndexWorker runs the indexer inside the process that owns the search
// index, on a fixed interval and whenever a run is requested.
type IndexWorker struct {
	runner   IndexRunner
	interval time.Duration
	requests <-chan struct{}
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIndexWorker(runner IndexRunner, interval time.Duration, log *slog.Logger) *IndexWorker {
	if log == nil {
		log = slog.Default()
	}
	return &IndexWorker{
		runner:   runner,
		interval: interval,
		log:      log,
	}
}

// Listen makes the worker run on every value received from requests. It
// must be called before Start.
func (w *IndexWorker) Listen(requests <-chan struct{}) {
	w.requests = requests
}

// Start launches the loop. A non-positive interval disables periodic runs;
// with no request channel either, the worker does not start.
func (w *IndexWorker) Start(ctx context.Context) {
	if w.cancel != nil || (w.interval <= 0 && w.requests == nil) {
		return
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		var tick <-chan time.Time
		if w.interval > 0 {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-tick:
				w.runOnce(workerCtx)
			case <-w.requests:
				w.log.Info("index run requested")
				w.runOnce(workerCtx)
			}
		}
	}()
}

func (w *IndexWorker) runOnce(ctx context.Context) {
	report, err := w.runner.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("index worker run failed", "error", err)
		}
		return
	}
	if report.Skipped {
		w.log.Debug("index worker skipped, lock held elsewhere")
	}
}

func (w *IndexWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
