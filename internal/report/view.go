package report

import (
	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

// Options controls what the presentation layer shows.
type Options struct {
	MAWindow   int
	CandleDays int
	TailRows   int
	OutputDir  string
}

// DefaultOptions returns the stock display settings.
func DefaultOptions() Options {
	return Options{MAWindow: 20, CandleDays: 10, TailRows: 5, OutputDir: "output"}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MAWindow <= 0 {
		o.MAWindow = d.MAWindow
	}
	if o.CandleDays <= 0 {
		o.CandleDays = d.CandleDays
	}
	if o.TailRows <= 0 {
		o.TailRows = d.TailRows
	}
	if o.OutputDir == "" {
		o.OutputDir = d.OutputDir
	}
	return o
}

// View is everything one ticker report displays.
type View struct {
	Ticker     string
	Years      int
	Raw        []model.RawRow
	Cleaned    *cleaning.Result
	Series     *model.Series
	Summary    []model.ColumnSummary
	Indicators *model.Indicators
	Forecast   []model.ForecastPoint
}

// Future returns the forecast rows past the last observed date.
func (v *View) Future() []model.ForecastPoint {
	if v.Series == nil || v.Series.Len() == 0 {
		return v.Forecast
	}
	last := v.Series.Bars[v.Series.Len()-1].Date
	for i, p := range v.Forecast {
		if p.DS.After(last) {
			return v.Forecast[i:]
		}
	}
	return nil
}
