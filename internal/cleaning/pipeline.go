package cleaning

import (
	"StockForecast/internal/model"
)

// Options tunes the pipeline. The zero value uses the documented defaults; a
// multiplier that is not finite and positive falls back to the default too.
type Options struct {
	IQRMultiplier float64
}

func (o Options) multiplier() float64 {
	if !ValidMultiplier(o.IQRMultiplier) {
		return DefaultIQRMultiplier
	}
	return o.IQRMultiplier
}

// Result is the output of one cleaning pass.
type Result struct {
	Bars         []model.Bar
	Bounds       model.OutlierBounds
	Missing      []MissingCount // per column, after coercion and before gap fill
	Outliers     []model.Bar
	Inconsistent []model.Bar
	Warnings     []CoercionWarning
}

// Removed returns the total number of dropped bars.
func (r *Result) Removed() int {
	return len(r.Outliers) + len(r.Inconsistent)
}

// Clean runs type normalization, forward fill and outlier removal over rows.
func Clean(rows []model.RawRow, opts Options) (*Result, error) {
	bars, warnings, err := Normalize(rows)
	if err != nil {
		return nil, err
	}
	missing := MissingCounts(bars)
	if err := checkColumns(bars, missing); err != nil {
		return nil, err
	}

	filled := ForwardFill(bars)

	bounds, err := ComputeBounds(filled, opts.multiplier())
	if err != nil {
		return nil, err
	}
	kept, outliers := RemoveOutliers(filled, bounds)
	kept, inconsistent := DropInconsistent(kept)

	return &Result{
		Bars:         kept,
		Bounds:       bounds,
		Missing:      missing,
		Outliers:     outliers,
		Inconsistent: inconsistent,
		Warnings:     warnings,
	}, nil
}
