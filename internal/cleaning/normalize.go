package cleaning

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"StockForecast/internal/model"
)

// Column names a raw input column.
type Column string

const (
	ColDate     Column = "Date"
	ColOpen     Column = "Open"
	ColHigh     Column = "High"
	ColLow      Column = "Low"
	ColClose    Column = "Close"
	ColAdjClose Column = "Adj Close"
	ColVolume   Column = "Volume"
)

// NumericColumns lists the numeric columns in input order.
var NumericColumns = []Column{ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume}

// DateLayout is the calendar date format used everywhere a date is printed.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// missingTokens are textual cells that mean "no value" rather than a bad value.
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"na":   true,
	"n/a":  true,
	"-":    true,
}

// cellState is the outcome of coercing a single cell.
type cellState int

const (
	cellValid cellState = iota
	cellMissing
	cellInvalid
)

// Normalize coerces raw rows into typed bars. Prices become floats and volume an
// integer; a cell that cannot be coerced becomes missing and yields a warning.
// A row whose date cannot be parsed is dropped with a warning. Rows must be
// strictly increasing by date.
func Normalize(rows []model.RawRow) ([]model.Bar, []CoercionWarning, error) {
	if len(rows) == 0 {
		return nil, nil, ErrEmptyInput
	}

	bars := make([]model.Bar, 0, len(rows))
	var warnings []CoercionWarning

	for i, row := range rows {
		date, err := ParseDate(row.Date)
		if err != nil {
			warnings = append(warnings, CoercionWarning{Row: i, Value: cellText(row.Date), Reason: err.Error()})
			continue
		}
		if n := len(bars); n > 0 && !date.After(bars[n-1].Date) {
			return nil, warnings, &OrderError{Row: i, Date: date, Prev: bars[n-1].Date}
		}

		bar := model.Bar{Date: date}
		cells := []struct {
			col Column
			raw interface{}
			dst *null.Float
		}{
			{ColOpen, row.Open, &bar.Open},
			{ColHigh, row.High, &bar.High},
			{ColLow, row.Low, &bar.Low},
			{ColClose, row.Close, &bar.Close},
			{ColAdjClose, row.AdjClose, &bar.AdjClose},
		}
		for _, c := range cells {
			v, state, reason := coerceFloat(c.raw)
			switch state {
			case cellValid:
				*c.dst = null.FloatFrom(v)
			case cellInvalid:
				warnings = append(warnings, CoercionWarning{Row: i, Column: c.col, Value: cellText(c.raw), Reason: reason})
			}
		}

		vol, state, reason := coerceVolume(row.Volume)
		switch state {
		case cellValid:
			bar.Volume = null.IntFrom(vol)
		case cellInvalid:
			warnings = append(warnings, CoercionWarning{Row: i, Column: ColVolume, Value: cellText(row.Volume), Reason: reason})
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, warnings, ErrEmptyInput
	}
	return bars, warnings, nil
}

// coerceFloat converts a raw cell into a non-negative finite float.
func coerceFloat(raw interface{}) (float64, cellState, string) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, cellMissing, ""
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, cellInvalid, "not a number"
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if missingTokens[strings.ToLower(s)] {
			return 0, cellMissing, ""
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, cellInvalid, "not a number"
		}
		f = parsed
	default:
		return 0, cellInvalid, fmt.Sprintf("unsupported type %T", raw)
	}

	if math.IsNaN(f) {
		return 0, cellMissing, ""
	}
	if math.IsInf(f, 0) {
		return 0, cellInvalid, "infinite value"
	}
	if f < 0 {
		return 0, cellInvalid, "negative value"
	}
	return f, cellValid, ""
}

// maxVolume is 2^63, the first float64 that no longer fits an int64.
const maxVolume = float64(1 << 63)

// coerceVolume converts a raw cell into a non-negative integer share count.
// Fractional and out-of-range values are invalid.
func coerceVolume(raw interface{}) (int64, cellState, string) {
	switch v := raw.(type) {
	case int64:
		if v < 0 {
			return 0, cellInvalid, "negative value"
		}
		return v, cellValid, ""
	case int:
		if v < 0 {
			return 0, cellInvalid, "negative value"
		}
		return int64(v), cellValid, ""
	case uint64:
		if v > math.MaxInt64 {
			return 0, cellInvalid, "volume out of range"
		}
		return int64(v), cellValid, ""
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			if n < 0 {
				return 0, cellInvalid, "negative value"
			}
			return n, cellValid, ""
		}
	}

	f, state, reason := coerceFloat(raw)
	if state != cellValid {
		return 0, state, reason
	}
	if f >= maxVolume {
		return 0, cellInvalid, "volume out of range"
	}
	if f != math.Trunc(f) {
		return 0, cellInvalid, "fractional volume"
	}
	return int64(f), cellValid, ""
}

// ParseDate accepts a time.Time, a unix timestamp or one of dateLayouts and
// returns the calendar date at UTC midnight.
func ParseDate(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, fmt.Errorf("zero date")
		}
		return toCalendarDate(v), nil
	case int64:
		return toCalendarDate(time.Unix(v, 0).UTC()), nil
	case int:
		return toCalendarDate(time.Unix(int64(v), 0).UTC()), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return toCalendarDate(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unable to parse date")
	case nil:
		return time.Time{}, fmt.Errorf("missing date")
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", raw)
	}
}

// toCalendarDate drops the time of day and the zone, keeping the local calendar date.
func toCalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cellText(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
