package cache

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"StockForecast/internal/model"
	"StockForecast/internal/store"
)

// Stats reports cache effectiveness since construction.
type Stats struct {
	Items    int
	Hits     int64
	DiskHits int64
	Misses   int64
}

// BarCache keeps fetched raw rows in memory with a TTL and optionally backs
// them with a persistent store checked on a memory miss.
type BarCache struct {
	mem  *gocache.Cache
	disk store.Store
	ttl  time.Duration
	now  func() time.Time

	hits     atomic.Int64
	diskHits atomic.Int64
	misses   atomic.Int64
}

// New creates a cache. disk may be nil.
func New(ttl, cleanupInterval time.Duration, disk store.Store) *BarCache {
	if disk == nil {
		disk = store.NewNoopStore()
	}
	return &BarCache{
		mem:  gocache.New(ttl, cleanupInterval),
		disk: disk,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Key builds the cache key for a ticker and date range.
func Key(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// Get returns the cached rows for key. A disk hit is promoted to memory for
// the remainder of its TTL.
func (c *BarCache) Get(key string) ([]model.RawRow, bool) {
	if v, ok := c.mem.Get(key); ok {
		c.hits.Add(1)
		return v.([]model.RawRow), true
	}

	snap, err := c.disk.LoadBars(key)
	if err != nil {
		log.Printf("[WARN] cache disk lookup %s: %v", key, err)
	}
	if snap != nil {
		age := c.now().Sub(snap.FetchedAt)
		if age < c.ttl {
			c.mem.Set(key, snap.Rows, c.ttl-age)
			c.diskHits.Add(1)
			return snap.Rows, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores rows under key in both tiers.
func (c *BarCache) Set(key, ticker string, rows []model.RawRow) {
	c.mem.Set(key, rows, gocache.DefaultExpiration)
	snap := &store.Snapshot{Key: key, Ticker: ticker, Rows: rows, FetchedAt: c.now()}
	if err := c.disk.SaveBars(snap); err != nil {
		log.Printf("[WARN] cache disk write %s: %v", key, err)
	}
}

// Invalidate drops every entry of ticker from both tiers and returns how many
// memory entries were removed.
func (c *BarCache) Invalidate(ticker string) (int, error) {
	prefix := ticker + "|"
	n := 0
	for k := range c.mem.Items() {
		if strings.HasPrefix(k, prefix) {
			c.mem.Delete(k)
			n++
		}
	}
	if _, err := c.disk.DeleteBars(ticker); err != nil {
		return n, fmt.Errorf("invalidate disk tier: %w", err)
	}
	return n, nil
}

// Purge removes expired entries from both tiers.
func (c *BarCache) Purge() (int64, error) {
	c.mem.DeleteExpired()
	n, err := c.disk.PurgeBefore(c.now().Add(-c.ttl))
	if err != nil {
		return 0, fmt.Errorf("purge disk tier: %w", err)
	}
	return n, nil
}

func (c *BarCache) Stats() Stats {
	return Stats{
		Items:    c.mem.ItemCount(),
		Hits:     c.hits.Load(),
		DiskHits: c.diskHits.Load(),
		Misses:   c.misses.Load(),
	}
}
