package collector

import (
	"context"
	"sort"
	"time"

	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

// Loader fetches raw daily rows for a ticker over an inclusive date range.
type Loader interface {
	Load(ctx context.Context, ticker string, start, end time.Time) ([]model.RawRow, error)
	Name() string
}

type datedRow struct {
	date time.Time
	row  model.RawRow
}

// tidyRows sorts rows ascending, keeps the last row per date and drops rows
// outside [start, end]. Rows whose date cannot be parsed are appended
// unchanged so the cleaning stage can report them.
func tidyRows(rows []model.RawRow, start, end time.Time) []model.RawRow {
	from := calendarDate(start)
	to := calendarDate(end)

	byDate := make(map[time.Time]int)
	var dated []datedRow
	var undated []model.RawRow
	for _, r := range rows {
		d, err := cleaning.ParseDate(r.Date)
		if err != nil {
			undated = append(undated, r)
			continue
		}
		if (!start.IsZero() && d.Before(from)) || (!end.IsZero() && d.After(to)) {
			continue
		}
		if i, ok := byDate[d]; ok {
			dated[i].row = r
			continue
		}
		byDate[d] = len(dated)
		dated = append(dated, datedRow{date: d, row: r})
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].date.Before(dated[j].date) })

	out := make([]model.RawRow, 0, len(dated)+len(undated))
	for _, d := range dated {
		out = append(out, d.row)
	}
	return append(out, undated...)
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
