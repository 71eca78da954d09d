package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"StockForecast/internal/calculator"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/collector"
	"StockForecast/internal/forecast"
	"StockForecast/internal/report"
	"StockForecast/internal/store"
)

// Request describes one forecast run.
type Request struct {
	Ticker string
	Years  int
	Start  time.Time
	End    time.Time // zero means today
}

// Report is the outcome of a run.
type Report struct {
	RunID       string
	View        *report.View
	HorizonDays int
}

// EngineFactory builds a fresh forecast engine for each run.
type EngineFactory func() forecast.Engine

// Runner wires collection, cleaning, forecasting and presentation.
type Runner struct {
	Collector *collector.Collector
	NewEngine EngineFactory
	Store     store.Store
	MAWindow  int
	Now       func() time.Time
}

// NewRunner creates a Runner. st may be nil.
func NewRunner(col *collector.Collector, newEngine EngineFactory, st store.Store, maWindow int) *Runner {
	if st == nil {
		st = store.NewNoopStore()
	}
	return &Runner{
		Collector: col,
		NewEngine: newEngine,
		Store:     st,
		MAWindow:  maWindow,
		Now:       time.Now,
	}
}

// Run executes collect, train and predict for req.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Ticker == "" {
		return nil, errors.New("ticker is required")
	}
	if req.Years < 1 {
		return nil, fmt.Errorf("years must be positive, got %d", req.Years)
	}
	runID := uuid.NewString()
	log.Printf("[INFO] run %s: %s, %d year(s)", runID, req.Ticker, req.Years)

	end := req.End
	if end.IsZero() {
		end = r.Now()
	}
	ds, err := r.Collector.Collect(ctx, req.Ticker, req.Start, end)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	view := &report.View{
		Ticker:  req.Ticker,
		Years:   req.Years,
		Raw:     ds.Raw,
		Cleaned: ds.Cleaned,
		Series:  ds.Series,
		Summary: calculator.Describe(ds.Series.Bars),
	}

	if ind, err := calculator.ComputeIndicators(ds.Series, r.MAWindow); err != nil {
		log.Printf("[WARN] run %s: indicators: %v", runID, err)
	} else {
		view.Indicators = ind
	}

	horizon := forecast.HorizonDays(req.Years)
	engine := r.NewEngine()
	if err := engine.Fit(ctx, cleaning.TrainingFrame(ds.Series.Bars)); err != nil {
		return nil, fmt.Errorf("run %s: fit %s: %w", runID, req.Ticker, err)
	}
	fc, err := engine.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("run %s: predict %s: %w", runID, req.Ticker, err)
	}
	view.Forecast = fc

	rep := &Report{RunID: runID, View: view, HorizonDays: horizon}

	r.record(rep, ds)
	log.Printf("[INFO] run %s: done, %d rows trained, %d rows predicted", runID, ds.Series.Len(), len(fc))
	return rep, nil
}

func (r *Runner) record(rep *Report, ds *collector.Dataset) {
	v := rep.View
	rec := &store.RunRecord{
		RunID:       rep.RunID,
		Ticker:      v.Ticker,
		Years:       v.Years,
		Rows:        ds.Series.Len(),
		Removed:     ds.Cleaned.Removed(),
		Warnings:    len(ds.Cleaned.Warnings),
		HorizonDays: rep.HorizonDays,
		FinishedAt:  r.Now(),
	}
	if v.Indicators != nil {
		rec.LastClose = v.Indicators.LastClose
	}
	if n := len(v.Forecast); n > 0 {
		last := v.Forecast[n-1]
		rec.FinalYHat, rec.FinalLower, rec.FinalUpper = last.YHat, last.Lower, last.Upper
	}
	if err := r.Store.RecordRun(rec); err != nil {
		log.Printf("[ERROR] record run %s: %v", rep.RunID, err)
	}
}
