package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"StockForecast/internal/app"
	"StockForecast/internal/cache"
	"StockForecast/internal/notifier"
	"StockForecast/internal/report"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *app.Runner
	Cache     *cache.BarCache
	Notifier  notifier.Notifier
	Report    report.Options
	Tickers   []string
	Years     int
	From      time.Time
	WriteHTML bool
	Ctx       context.Context

	wg sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, c *app.Components, tickers []string, years int, start time.Time) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Runner:    c.Runner,
		Cache:     c.Cache,
		Notifier:  c.Notifier,
		Report:    c.Report,
		Tickers:   tickers,
		Years:     years,
		From:      start,
		WriteHTML: true,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh and purge tasks.
func (s *Scheduler) RegisterAll(refreshCron, purgeCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshAll); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs, including one
// started by RunRefreshNow.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow starts an out-of-schedule refresh in the background.
func (s *Scheduler) RunRefreshNow() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RefreshAll()
	}()
}

// RefreshAll reruns every configured ticker with fresh data.
func (s *Scheduler) RefreshAll() {
	log.Printf("[INFO] running refresh for %d tickers", len(s.Tickers))
	for _, t := range s.Tickers {
		if s.Ctx.Err() != nil {
			return
		}
		s.refresh(t)
	}
}

func (s *Scheduler) refresh(ticker string) {
	if s.Cache != nil {
		if _, err := s.Cache.Invalidate(ticker); err != nil {
			log.Printf("[WARN] refresh %s: %v", ticker, err)
		}
	}
	rep, err := s.Runner.Run(s.Ctx, app.Request{Ticker: ticker, Years: s.Years, Start: s.From})
	if err != nil {
		log.Printf("[ERROR] refresh %s: %v", ticker, err)
		s.trySend(notifier.FormatFailure(ticker, err))
		return
	}

	if s.WriteHTML {
		path, err := report.WriteHTML(rep.View, s.Report, time.Now())
		if err != nil {
			log.Printf("[ERROR] write report for %s: %v", ticker, err)
		} else {
			log.Printf("[INFO] report written: %s", path)
		}
	}

	if fc := rep.View.Forecast; len(fc) > 0 {
		s.trySend(notifier.FormatForecastDigest(ticker, rep.View.Indicators, fc[len(fc)-1], s.Years))
	}
}

func (s *Scheduler) purgeTask() {
	if s.Cache == nil {
		return
	}
	n, err := s.Cache.Purge()
	if err != nil {
		log.Printf("[ERROR] cache purge: %v", err)
		return
	}
	st := s.Cache.Stats()
	log.Printf("[INFO] cache purge: %d stored snapshots dropped, %d in memory (hits=%d disk=%d misses=%d)",
		n, st.Items, st.Hits, st.DiskHits, st.Misses)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
