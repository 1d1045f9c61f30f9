package ratesource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/ratecalc/internal/currency"
)

type fakeFetcher struct {
	tables []currency.Table
	errs   []error
	calls  int
}

func (f *fakeFetcher) Fetch(ctx context.Context) (currency.Table, error) {
	i := f.calls
	f.calls++
	if err := ctx.Err(); err != nil {
		return currency.Table{}, err
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return currency.Table{}, err
	}
	return f.tables[i], nil
}

func table(code, rate string) currency.Table {
	return currency.NewTable("USD", time.Now(), map[string]string{code: rate})
}

func TestRefresherSingleFlight(t *testing.T) {
	r := NewRefresher(&fakeFetcher{tables: []currency.Table{table("EUR", "0.9")}})

	job := r.Start(context.Background())
	if job == nil {
		t.Fatal("Start returned nil on idle refresher")
	}
	if r.Start(context.Background()) != nil {
		t.Fatal("second Start while in flight should be nil")
	}
	if !r.InFlight() {
		t.Fatal("InFlight = false with a running job")
	}

	if !r.Complete(job.Run()) {
		t.Fatal("Complete did not apply a good result")
	}
	if got, _ := r.Table().Rate("EUR"); got != "0.9" {
		t.Fatalf("Rate(EUR) = %q, want 0.9", got)
	}
	if r.InFlight() {
		t.Fatal("still in flight after Complete")
	}
	if r.LastAttempt().IsZero() {
		t.Fatal("LastAttempt not recorded")
	}
}

func TestRefresherKeepsTableOnError(t *testing.T) {
	f := &fakeFetcher{
		tables: []currency.Table{table("EUR", "0.9"), {}},
		errs:   []error{nil, errors.New("boom")},
	}
	r := NewRefresher(f)
	r.Complete(r.Start(context.Background()).Run())

	if r.Complete(r.Start(context.Background()).Run()) {
		t.Fatal("failed fetch reported as applied")
	}
	if got, _ := r.Table().Rate("EUR"); got != "0.9" {
		t.Fatalf("table lost after error: %v", r.Table().Rates())
	}
	if r.LastErr() == nil {
		t.Fatal("LastErr = nil after failure")
	}
}

func TestRefresherIgnoresCancelledResult(t *testing.T) {
	r := NewRefresher(&fakeFetcher{tables: []currency.Table{table("EUR", "0.9"), table("GBP", "0.8")}})

	stale := r.Start(context.Background())
	r.Cancel()
	res := stale.Run()
	if r.Complete(res) {
		t.Fatal("result of a cancelled job was applied")
	}
	if !r.Table().IsEmpty() {
		t.Fatal("table changed by cancelled job")
	}

	// A new job can start after cancel and its result is applied.
	fresh := r.Start(context.Background())
	if fresh == nil {
		t.Fatal("Start after Cancel returned nil")
	}
	if !r.Complete(fresh.Run()) {
		t.Fatal("fresh job not applied")
	}
	// The stale result arriving late is still ignored.
	if r.Complete(res) {
		t.Fatal("late stale result applied")
	}
}

func TestRefresherSeed(t *testing.T) {
	r := NewRefresher(&fakeFetcher{})
	r.Seed(table("CHF", "0.88"))
	if got, _ := r.Table().Rate("CHF"); got != "0.88" {
		t.Fatalf("Seed not visible: %v", r.Table().Rates())
	}
}

func TestWatcherRunOnce(t *testing.T) {
	r := NewRefresher(&fakeFetcher{tables: []currency.Table{table("EUR", "0.9")}})
	w := NewWatcher(r)

	var got currency.Table
	w.OnUpdate = func(tbl currency.Table, err error) {
		if err != nil {
			t.Errorf("OnUpdate err = %v", err)
		}
		got = tbl
	}
	w.RunOnce(context.Background())
	if got.Len() != 1 {
		t.Fatalf("OnUpdate table len = %d, want 1", got.Len())
	}
}

func TestWatcherScheduleRejectsBadSpec(t *testing.T) {
	w := NewWatcher(NewRefresher(&fakeFetcher{}))
	if err := w.Schedule(context.Background(), "every minute"); err == nil {
		t.Fatal("Schedule accepted a bad cron spec")
	}
	if err := w.Schedule(context.Background(), "*/30 * * * * *"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
}
