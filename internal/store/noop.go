package store

import "time"

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveBars(_ *Snapshot) error             { return nil }
func (n *NoopStore) LoadBars(_ string) (*Snapshot, error)   { return nil, nil }
func (n *NoopStore) PurgeBefore(_ time.Time) (int64, error) { return 0, nil }
func (n *NoopStore) DeleteBars(_ string) (int64, error)     { return 0, nil }
func (n *NoopStore) RecordRun(_ *RunRecord) error           { return nil }
func (n *NoopStore) Close() error                           { return nil }
