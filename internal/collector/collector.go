package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockForecast/internal/cache"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

// Dataset is everything known about one ticker after loading and cleaning.
type Dataset struct {
	Ticker    string
	Start     time.Time
	End       time.Time
	Raw       []model.RawRow
	Cleaned   *cleaning.Result
	Series    *model.Series
	FromCache bool
}

// Collector orchestrates loading, caching and cleaning.
type Collector struct {
	Loader  Loader
	Cache   *cache.BarCache
	Options cleaning.Options
}

// NewCollector creates a new Collector. barCache may be nil.
func NewCollector(loader Loader, barCache *cache.BarCache, opts cleaning.Options) *Collector {
	return &Collector{Loader: loader, Cache: barCache, Options: opts}
}

// Collect returns the cleaned dataset for ticker in [start, end].
func (c *Collector) Collect(ctx context.Context, ticker string, start, end time.Time) (*Dataset, error) {
	key := cache.Key(ticker, start, end)

	var rows []model.RawRow
	fromCache := false
	if c.Cache != nil {
		rows, fromCache = c.Cache.Get(key)
	}
	if !fromCache {
		loaded, err := c.Loader.Load(ctx, ticker, start, end)
		if err != nil {
			return nil, fmt.Errorf("load %s via %s: %w", ticker, c.Loader.Name(), err)
		}
		rows = loaded
		if c.Cache != nil {
			c.Cache.Set(key, ticker, rows)
		}
		log.Printf("[INFO] loaded %d rows for %s via %s", len(rows), ticker, c.Loader.Name())
	} else {
		log.Printf("[INFO] cache hit for %s (%d rows)", key, len(rows))
	}

	res, err := cleaning.Clean(rows, c.Options)
	if err != nil {
		return nil, fmt.Errorf("clean %s: %w", ticker, err)
	}
	for _, w := range res.Warnings {
		log.Printf("[WARN] %s: %s", ticker, w)
	}
	if n := res.Removed(); n > 0 {
		log.Printf("[INFO] %s: removed %d rows (%d outside [%.2f, %.2f], %d inconsistent)",
			ticker, n, len(res.Outliers), res.Bounds.Lower, res.Bounds.Upper, len(res.Inconsistent))
	}

	return &Dataset{
		Ticker:    ticker,
		Start:     start,
		End:       end,
		Raw:       rows,
		Cleaned:   res,
		Series:    &model.Series{Ticker: ticker, Bars: res.Bars},
		FromCache: fromCache,
	}, nil
}
