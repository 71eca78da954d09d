package forecast

import (
	"context"
	"errors"
	"time"

	"StockForecast/internal/model"
)

var (
	// ErrInsufficientData is returned when fewer than two distinct dates are available.
	ErrInsufficientData = errors.New("forecast: need at least 2 observations on distinct dates")
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("forecast: model has not been fitted")
)

// Engine fits a time series model and projects it forward.
type Engine interface {
	Fit(ctx context.Context, points []model.TrainingPoint) error
	// Predict returns one row per history date followed by horizonDays
	// consecutive calendar days.
	Predict(horizonDays int) ([]model.ForecastPoint, error)
}

// FutureDates returns the history dates followed by days consecutive calendar
// days after the last one.
func FutureDates(history []time.Time, days int) []time.Time {
	out := make([]time.Time, 0, len(history)+max(days, 0))
	out = append(out, history...)
	if len(history) == 0 {
		return out
	}
	last := history[len(history)-1]
	for i := 1; i <= days; i++ {
		out = append(out, last.AddDate(0, 0, i))
	}
	return out
}

// HorizonDays converts a forecast period in years to calendar days.
func HorizonDays(years int) int {
	return years * 365
}
