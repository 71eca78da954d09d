package cache

import (
	"path/filepath"
	"testing"
	"time"

	"StockForecast/internal/model"
	"StockForecast/internal/store"
)

func TestKey(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	if got := Key("GOOG", start, end); got != "GOOG|2020-01-01|2024-06-30" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestBarCache_MemoryHitAndInvalidate(t *testing.T) {
	c := New(time.Hour, time.Minute, nil)
	rows := []model.RawRow{{Date: "2024-01-01", Close: 1.0}}
	c.Set("GOOG|a|b", "GOOG", rows)
	c.Set("MSFT|a|b", "MSFT", rows)

	if got, ok := c.Get("GOOG|a|b"); !ok || len(got) != 1 {
		t.Fatalf("expected hit, got %v %v", got, ok)
	}
	if n, err := c.Invalidate("GOOG"); err != nil || n != 1 {
		t.Errorf("expected 1 invalidated, got %d (%v)", n, err)
	}
	if _, ok := c.Get("GOOG|a|b"); ok {
		t.Error("expected miss after invalidate")
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Items != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestBarCache_DiskTier(t *testing.T) {
	disk, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer disk.Close()

	writer := New(time.Hour, time.Minute, disk)
	writer.Set("SONY|a|b", "SONY", []model.RawRow{{Date: "2024-01-01", Close: 5.0}})

	reader := New(time.Hour, time.Minute, disk)
	got, ok := reader.Get("SONY|a|b")
	if !ok || len(got) != 1 || got[0].Close != "5" {
		t.Fatalf("expected disk hit with text cell, got %+v %v", got, ok)
	}
	if reader.Stats().DiskHits != 1 {
		t.Errorf("expected 1 disk hit, got %+v", reader.Stats())
	}
	if _, ok := reader.Get("SONY|a|b"); !ok || reader.Stats().Hits != 1 {
		t.Errorf("expected promoted entry to hit memory, got %+v", reader.Stats())
	}
}

func TestBarCache_InvalidateClearsDiskTier(t *testing.T) {
	disk, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer disk.Close()

	c := New(time.Hour, time.Minute, disk)
	c.Set("GOOG|a|b", "GOOG", []model.RawRow{{Date: "2024-01-01", Close: 1.0}})
	c.Set("MSFT|a|b", "MSFT", []model.RawRow{{Date: "2024-01-01", Close: 2.0}})

	if _, err := c.Invalidate("GOOG"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := c.Get("GOOG|a|b"); ok {
		t.Error("expected miss after invalidate, disk snapshot was promoted")
	}
	if _, ok := New(time.Hour, time.Minute, disk).Get("MSFT|a|b"); !ok {
		t.Error("expected other tickers to stay on disk")
	}
}

func TestBarCache_StaleDiskEntryIgnored(t *testing.T) {
	disk, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer disk.Close()

	c := New(time.Hour, time.Minute, disk)
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	c.Set("GME|a|b", "GME", []model.RawRow{{Date: "2024-01-01"}})

	fresh := New(time.Hour, time.Minute, disk)
	if _, ok := fresh.Get("GME|a|b"); ok {
		t.Error("expected stale disk entry to miss")
	}
	n, err := fresh.Purge()
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
}
