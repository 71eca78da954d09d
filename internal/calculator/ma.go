package calculator

import (
	"errors"

	"StockForecast/internal/model"
)

// DefaultMAWindow is the rolling mean window drawn over the close price.
const DefaultMAWindow = 20

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingPoint is one value of a rolling statistic; Valid is false until the
// window is full or when the window contains a missing value.
type RollingPoint struct {
	Value float64
	Valid bool
}

// RollingMean computes the window-period mean of the close column in date order.
// The first window-1 points are undefined.
func RollingMean(bars []model.Bar, window int) ([]RollingPoint, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	out := make([]RollingPoint, len(bars))
	sum := 0.0
	missing := 0
	for i, b := range bars {
		if b.Close.Valid {
			sum += b.Close.Float64
		} else {
			missing++
		}
		if i >= window {
			old := bars[i-window].Close
			if old.Valid {
				sum -= old.Float64
			} else {
				missing--
			}
		}
		if i >= window-1 && missing == 0 {
			out[i] = RollingPoint{Value: sum / float64(window), Valid: true}
		}
	}
	return out, nil
}

func extractCloses(bars []model.Bar) []float64 {
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close.Valid {
			closes = append(closes, b.Close.Float64)
		}
	}
	return closes
}
