package cleaning

import (
	"fmt"
	"math"
	"sort"

	"StockForecast/internal/model"
)

// DefaultIQRMultiplier is the classical Tukey fence multiplier.
const DefaultIQRMultiplier = 1.5

// ValidMultiplier reports whether k is usable as a fence multiplier: finite
// and strictly positive.
func ValidMultiplier(k float64) bool {
	return k > 0 && !math.IsInf(k, 0)
}

// Quantile returns the p-quantile of values using linear interpolation between
// order statistics at index p*(n-1). It returns NaN for an empty sample.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// ComputeBounds derives the Tukey fences from the non-missing closes of bars.
func ComputeBounds(bars []model.Bar, multiplier float64) (model.OutlierBounds, error) {
	if !ValidMultiplier(multiplier) {
		return model.OutlierBounds{}, fmt.Errorf("cleaning: invalid IQR multiplier %v", multiplier)
	}
	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		if b.Close.Valid {
			closes = append(closes, b.Close.Float64)
		}
	}
	if len(closes) == 0 {
		return model.OutlierBounds{}, &AllColumnsMissingError{Column: ColClose}
	}
	sort.Float64s(closes)

	q1 := quantileSorted(closes, 0.25)
	q3 := quantileSorted(closes, 0.75)
	iqr := q3 - q1
	return model.OutlierBounds{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		Lower:      q1 - multiplier*iqr,
		Upper:      q3 + multiplier*iqr,
		Multiplier: multiplier,
	}, nil
}

// RemoveOutliers drops bars whose close lies strictly outside bounds. Bars with a
// missing close are kept. Order is preserved; the removed bars are returned
// separately.
func RemoveOutliers(bars []model.Bar, bounds model.OutlierBounds) (kept, removed []model.Bar) {
	kept = make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close.Valid && !bounds.Contains(b.Close.Float64) {
			removed = append(removed, b)
			continue
		}
		kept = append(kept, b)
	}
	return kept, removed
}

// DropInconsistent drops bars whose present prices break the low bound.
func DropInconsistent(bars []model.Bar) (kept, dropped []model.Bar) {
	kept = make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if consistent(b) {
			kept = append(kept, b)
		} else {
			dropped = append(dropped, b)
		}
	}
	return kept, dropped
}

// consistent checks low <= open, close, high and low <= high over present fields.
func consistent(b model.Bar) bool {
	if !b.Low.Valid {
		return true
	}
	low := b.Low.Float64
	for _, f := range []struct {
		v     float64
		valid bool
	}{
		{b.Open.Float64, b.Open.Valid},
		{b.High.Float64, b.High.Valid},
		{b.Close.Float64, b.Close.Valid},
	} {
		if f.valid && f.v < low {
			return false
		}
	}
	return true
}
