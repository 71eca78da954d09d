package collector

import (
	"context"
	"math"
	"time"

	"StockForecast/internal/model"
)

// MockLoader returns controllable fixed data for development and testing.
type MockLoader struct {
	Price float64
	Rows  []model.RawRow
	Err   error
	Calls int
}

func (m *MockLoader) Name() string { return "mock" }

func (m *MockLoader) Load(_ context.Context, _ string, start, end time.Time) ([]model.RawRow, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Rows != nil {
		return tidyRows(m.Rows, start, end), nil
	}
	return generateMockRows(m.Price, start, end), nil
}

// generateMockRows produces one weekday row per day with a gentle trend and a
// weekly wiggle.
func generateMockRows(basePrice float64, start, end time.Time) []model.RawRow {
	if end.IsZero() {
		end = time.Now()
	}
	var rows []model.RawRow
	i := 0
	for d := calendarDate(start); !d.After(calendarDate(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := basePrice * (1 + float64(i)*0.001 + 0.01*math.Sin(float64(i)/5*2*math.Pi))
		rows = append(rows, model.RawRow{
			Date:     d,
			Open:     p * 0.999,
			High:     p * 1.005,
			Low:      p * 0.995,
			Close:    p,
			AdjClose: p,
			Volume:   int64(1000000),
		})
		i++
	}
	return rows
}
