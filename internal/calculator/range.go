package calculator

import (
	"errors"
	"math"

	"StockForecast/internal/model"
)

// TradingDays52w is the number of sessions in a 52-week window.
const TradingDays52w = 252

// WindowRange scans the most recent days bars and returns the highest high and
// lowest low. Missing fields are skipped.
func WindowRange(bars []model.Bar, days int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	start := len(bars) - days
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars[start:] {
		if b.High.Valid && b.High.Float64 > high {
			high = b.High.Float64
		}
		if b.Low.Valid && b.Low.Float64 < low {
			low = b.Low.Float64
		}
	}
	if math.IsInf(high, 0) || math.IsInf(low, 0) {
		return 0, 0, errors.New("no high/low values in window")
	}
	return high, low, nil
}

// RangePosition returns where price sits within [low, high] (0.0~1.0).
func RangePosition(price, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (price - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
