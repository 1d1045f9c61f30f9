package ratesource

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

// Watcher refreshes on a cron schedule (six fields, with seconds).
// OnUpdate runs after every completed fetch, with the current table and
// the fetch error if there was one.
type Watcher struct {
	Cron     *cron.Cron
	OnUpdate func(t currency.Table, err error)

	mu        sync.Mutex
	refresher *Refresher
}

// NewWatcher wraps a refresher. Overlapping runs are skipped.
func NewWatcher(r *Refresher) *Watcher {
	return &Watcher{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		refresher: r,
	}
}

// Schedule registers the refresh task.
func (w *Watcher) Schedule(ctx context.Context, spec string) error {
	if _, err := w.Cron.AddFunc(spec, func() { w.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// RunOnce performs one refresh synchronously.
func (w *Watcher) RunOnce(ctx context.Context) {
	w.mu.Lock()
	job := w.refresher.Start(ctx)
	w.mu.Unlock()
	if job == nil {
		return
	}

	res := job.Run()

	w.mu.Lock()
	w.refresher.Complete(res)
	t := w.refresher.Table()
	w.mu.Unlock()

	if w.OnUpdate != nil {
		w.OnUpdate(t, res.Err)
	}
}

// Run starts the scheduler and blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Cron.Start()
	log.Println("ratecalc: rate watcher started")
	<-ctx.Done()

	w.mu.Lock()
	w.refresher.Cancel()
	w.mu.Unlock()

	<-w.Cron.Stop().Done()
	log.Println("ratecalc: rate watcher stopped")
}
