package ratesource

import (
	"context"
	"log"
	"time"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

// Result is the outcome of one Job.
type Result struct {
	Table    currency.Table
	Err      error
	Duration time.Duration

	gen uint64
}

// Job is a single in-flight fetch. Run touches only the job itself, so it
// may block on any goroutine.
type Job struct {
	ctx     context.Context
	fetcher Fetcher
	gen     uint64
}

// Run performs the fetch.
func (j *Job) Run() Result {
	start := time.Now()
	t, err := j.fetcher.Fetch(j.ctx)
	return Result{Table: t, Err: err, Duration: time.Since(start), gen: j.gen}
}

// Refresher owns the current rate snapshot and at most one in-flight job.
// It has no locks: Start, Complete and Cancel must be called from one
// goroutine, the owner's event loop.
type Refresher struct {
	fetcher Fetcher

	table       currency.Table
	lastErr     error
	lastAttempt time.Time

	gen    uint64
	cancel context.CancelFunc
}

// NewRefresher starts from an empty table.
func NewRefresher(f Fetcher) *Refresher {
	return &Refresher{fetcher: f}
}

// Seed installs a table from elsewhere, e.g. a cache, without a fetch.
func (r *Refresher) Seed(t currency.Table) { r.table = t }

// Start returns a job to run, or nil if one is already in flight.
func (r *Refresher) Start(ctx context.Context) *Job {
	if r.cancel != nil {
		return nil
	}
	r.gen++
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return &Job{ctx: jobCtx, fetcher: r.fetcher, gen: r.gen}
}

// Complete applies res and reports whether the snapshot changed. Results
// from cancelled jobs are ignored; a failed fetch keeps the old snapshot.
func (r *Refresher) Complete(res Result) bool {
	if res.gen != r.gen || r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	r.lastAttempt = time.Now()

	if res.Err != nil {
		r.lastErr = res.Err
		log.Printf("ratecalc: rate refresh failed: %v", res.Err)
		return false
	}
	r.table = res.Table
	r.lastErr = nil
	return true
}

// Cancel aborts the in-flight job, if any. Its result will be ignored.
func (r *Refresher) Cancel() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

// InFlight reports whether a job has started and not completed.
func (r *Refresher) InFlight() bool { return r.cancel != nil }

// Table returns the current snapshot.
func (r *Refresher) Table() currency.Table { return r.table }

// LastErr is the error from the most recent completed job, or nil.
func (r *Refresher) LastErr() error { return r.lastErr }

// LastAttempt is when the most recent job completed.
func (r *Refresher) LastAttempt() time.Time { return r.lastAttempt }
