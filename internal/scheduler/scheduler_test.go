package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"StockForecast/internal/app"
	"StockForecast/internal/cache"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/collector"
	"StockForecast/internal/forecast"
	"StockForecast/internal/report"
	"StockForecast/internal/store"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return nil
}

func newTestScheduler(t *testing.T, loader collector.Loader) (*Scheduler, *recordingNotifier) {
	t.Helper()
	return newTestSchedulerWithStore(t, loader, nil)
}

func newTestSchedulerWithStore(t *testing.T, loader collector.Loader, st store.Store) (*Scheduler, *recordingNotifier) {
	t.Helper()
	bc := cache.New(time.Hour, time.Minute, st)
	col := collector.NewCollector(loader, bc, cleaning.Options{})
	runner := app.NewRunner(col, func() forecast.Engine { return forecast.NewModel(forecast.DefaultConfig()) }, st, 20)
	n := &recordingNotifier{}
	c := &app.Components{
		Cache:    bc,
		Runner:   runner,
		Notifier: n,
		Report:   report.Options{OutputDir: t.TempDir()},
	}
	start := time.Now().AddDate(0, -3, 0)
	return NewScheduler(context.Background(), c, []string{"GOOG", "MSFT"}, 1, start), n
}

func TestScheduler_RefreshAll(t *testing.T) {
	loader := &collector.MockLoader{Price: 50}
	s, n := newTestScheduler(t, loader)

	s.RefreshAll()
	s.RefreshAll()

	if loader.Calls != 4 {
		t.Errorf("expected cache invalidation to force 4 loads, got %d", loader.Calls)
	}
	if len(n.msgs) != 4 || !strings.Contains(n.msgs[0], "GOOG forecast") {
		t.Errorf("unexpected notifications %v", n.msgs)
	}
	files, _ := filepath.Glob(filepath.Join(s.Report.OutputDir, "*.html"))
	if len(files) != 2 {
		t.Errorf("expected 2 html reports, got %v", files)
	}
}

func TestScheduler_RefreshBypassesDiskTier(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	loader := &collector.MockLoader{Price: 50}
	s, _ := newTestSchedulerWithStore(t, loader, st)
	s.WriteHTML = false

	s.RefreshAll()
	s.RefreshAll()

	if loader.Calls != 4 {
		t.Errorf("expected every refresh to reload from the source, got %d loads", loader.Calls)
	}
}

func TestScheduler_RefreshFailureNotifies(t *testing.T) {
	loader := &collector.MockLoader{Err: os.ErrNotExist}
	s, n := newTestScheduler(t, loader)
	s.WriteHTML = false
	s.RefreshAll()
	if len(n.msgs) != 2 || !strings.Contains(n.msgs[0], "GOOG refresh failed") {
		t.Errorf("expected failure notifications, got %v", n.msgs)
	}
}

func TestScheduler_StopWaitsForRunRefreshNow(t *testing.T) {
	loader := &collector.MockLoader{Price: 20}
	s, n := newTestScheduler(t, loader)
	s.WriteHTML = false
	s.Start()
	s.RunRefreshNow()
	s.Stop()

	if loader.Calls != 2 {
		t.Errorf("expected the refresh to finish before Stop returned, got %d loads", loader.Calls)
	}
	if len(n.msgs) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(n.msgs))
	}
}

func TestScheduler_RegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockLoader{Price: 1})
	if err := s.RegisterAll("0 0 22 * * 1-5", "0 */30 * * * *"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Cron.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterAll("bogus", "0 */30 * * * *"); err == nil {
		t.Error("expected error for bad cron spec")
	}
	s.purgeTask()
}
