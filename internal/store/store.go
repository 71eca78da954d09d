package store

import (
	"time"

	"StockForecast/internal/model"
)

// Snapshot is a set of raw rows persisted under a cache key.
type Snapshot struct {
	Key       string
	Ticker    string
	Rows      []model.RawRow
	FetchedAt time.Time
}

// RunRecord summarizes one forecast run for later analysis.
type RunRecord struct {
	RunID       string
	Ticker      string
	Years       int
	Rows        int
	Removed     int
	Warnings    int
	LastClose   float64
	FinalYHat   float64
	FinalLower  float64
	FinalUpper  float64
	HorizonDays int
	FinishedAt  time.Time
}

// Store persists fetched rows and run history.
type Store interface {
	SaveBars(snap *Snapshot) error
	// LoadBars returns (nil, nil) when nothing is stored under key.
	LoadBars(key string) (*Snapshot, error)
	// PurgeBefore drops snapshots fetched before t and returns how many were removed.
	PurgeBefore(t time.Time) (int64, error)
	// DeleteBars drops every snapshot of ticker and returns how many were removed.
	DeleteBars(ticker string) (int64, error)
	RecordRun(rec *RunRecord) error
	Close() error
}
