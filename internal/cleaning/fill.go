package cleaning

import (
	"github.com/guregu/null/v6"

	"StockForecast/internal/model"
)

// ForwardFill replaces every missing numeric field with the most recent prior
// non-missing value of the same field. Leading gaps stay missing. The input is
// not modified.
func ForwardFill(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, len(bars))
	copy(out, bars)

	var open, high, low, cls, adj null.Float
	var vol null.Int
	for i := range out {
		b := &out[i]
		fillFloat(&b.Open, &open)
		fillFloat(&b.High, &high)
		fillFloat(&b.Low, &low)
		fillFloat(&b.Close, &cls)
		fillFloat(&b.AdjClose, &adj)
		if b.Volume.Valid {
			vol = b.Volume
		} else if vol.Valid {
			b.Volume = vol
		}
	}
	return out
}

func fillFloat(cur, last *null.Float) {
	if cur.Valid {
		*last = *cur
		return
	}
	if last.Valid {
		*cur = *last
	}
}

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column Column
	Count  int
}

// MissingCounts counts missing cells per numeric column, in column order.
func MissingCounts(bars []model.Bar) []MissingCount {
	counts := make([]MissingCount, len(NumericColumns))
	for i, c := range NumericColumns {
		counts[i].Column = c
	}
	for _, b := range bars {
		for i, valid := range []bool{b.Open.Valid, b.High.Valid, b.Low.Valid, b.Close.Valid, b.AdjClose.Valid, b.Volume.Valid} {
			if !valid {
				counts[i].Count++
			}
		}
	}
	return counts
}

// RequiredColumns must carry at least one usable value; the outlier fences are
// undefined otherwise. Other columns may be entirely absent.
var RequiredColumns = []Column{ColClose}

// checkColumns fails when a required column has no usable value at all.
func checkColumns(bars []model.Bar, missing []MissingCount) error {
	for _, req := range RequiredColumns {
		for _, mc := range missing {
			if mc.Column == req && mc.Count == len(bars) {
				return &AllColumnsMissingError{Column: mc.Column}
			}
		}
	}
	return nil
}
