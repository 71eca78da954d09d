package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// RawRow is one unvalidated daily row as handed over by a loader.
// Cells may be nil, numbers or text; Date may be a string or a time.Time.
type RawRow struct {
	Date     interface{}
	Open     interface{}
	High     interface{}
	Low      interface{}
	Close    interface{}
	AdjClose interface{}
	Volume   interface{}
}

// Bar represents a single trading day after type normalization.
type Bar struct {
	Date     time.Time
	Open     null.Float
	High     null.Float
	Low      null.Float
	Close    null.Float
	AdjClose null.Float
	Volume   null.Int
}

// Series holds the cleaned daily bars for one ticker, strictly increasing by date.
type Series struct {
	Ticker string
	Bars   []Bar
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Dates returns the bar dates in order.
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Date
	}
	return out
}

// Closes returns the close column; missing closes are skipped.
func (s *Series) Closes() []float64 {
	out := make([]float64, 0, len(s.Bars))
	for _, b := range s.Bars {
		if b.Close.Valid {
			out = append(out, b.Close.Float64)
		}
	}
	return out
}

// Tail returns the last n bars (or all of them when n exceeds the length).
func (s *Series) Tail(n int) []Bar {
	if n >= len(s.Bars) || n < 0 {
		return s.Bars
	}
	return s.Bars[len(s.Bars)-n:]
}

// OutlierBounds are the Tukey fences computed from the close column.
type OutlierBounds struct {
	Q1         float64
	Q3         float64
	IQR        float64
	Lower      float64
	Upper      float64
	Multiplier float64
}

// Contains reports whether v lies inside the closed interval [Lower, Upper].
func (b OutlierBounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}
