package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

// Describe returns count/mean/std/min/quartiles/max for every numeric column.
// Missing cells are excluded; std is the sample standard deviation.
func Describe(bars []model.Bar) []model.ColumnSummary {
	cols := make([][]float64, len(cleaning.NumericColumns))
	for _, b := range bars {
		for i, f := range []struct {
			v     float64
			valid bool
		}{
			{b.Open.Float64, b.Open.Valid},
			{b.High.Float64, b.High.Valid},
			{b.Low.Float64, b.Low.Valid},
			{b.Close.Float64, b.Close.Valid},
			{b.AdjClose.Float64, b.AdjClose.Valid},
			{float64(b.Volume.Int64), b.Volume.Valid},
		} {
			if f.valid {
				cols[i] = append(cols[i], f.v)
			}
		}
	}

	out := make([]model.ColumnSummary, len(cols))
	for i, values := range cols {
		out[i] = summarize(string(cleaning.NumericColumns[i]), values)
	}
	return out
}

func summarize(name string, values []float64) model.ColumnSummary {
	s := model.ColumnSummary{Column: name, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	s.Mean = stat.Mean(values, nil)
	s.Std = math.NaN()
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	s.Min = cleaning.Quantile(values, 0)
	s.P25 = cleaning.Quantile(values, 0.25)
	s.P50 = cleaning.Quantile(values, 0.5)
	s.P75 = cleaning.Quantile(values, 0.75)
	s.Max = cleaning.Quantile(values, 1)
	return s
}
