package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"StockForecast/internal/calculator"
	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

const (
	upColor   = "lime"
	downColor = "crimson"
	undefined = "-"
)

func dateLabels(bars []model.Bar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Date.Format(cleaning.DateLayout)
	}
	return out
}

func lineValue(valid bool, v float64) opts.LineData {
	if !valid {
		return opts.LineData{Value: undefined}
	}
	return opts.LineData{Value: v}
}

func baseOpts(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
	}
}

// CandlestickChart plots the last days bars that carry a full OHLC quad.
func CandlestickChart(ticker string, bars []model.Bar, days int) *charts.Kline {
	if days < len(bars) {
		bars = bars[len(bars)-days:]
	}
	var x []string
	var data []opts.KlineData
	for _, b := range bars {
		if !(b.Open.Valid && b.High.Valid && b.Low.Valid && b.Close.Valid) {
			continue
		}
		x = append(x, b.Date.Format(cleaning.DateLayout))
		data = append(data, opts.KlineData{Value: [4]float64{b.Open.Float64, b.Close.Float64, b.Low.Float64, b.High.Float64}})
	}

	k := charts.NewKLine()
	k.SetGlobalOptions(append(baseOpts(fmt.Sprintf("%s Candlestick", ticker)),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))...)
	k.SetXAxis(x).AddSeries(ticker, data, charts.WithItemStyleOpts(opts.ItemStyle{
		Color:        upColor,
		Color0:       downColor,
		BorderColor:  upColor,
		BorderColor0: downColor,
	}))
	return k
}

// CloseWithMAChart plots the close together with its rolling mean.
func CloseWithMAChart(ticker string, bars []model.Bar, window int) *charts.Line {
	closes := make([]opts.LineData, len(bars))
	for i, b := range bars {
		closes[i] = lineValue(b.Close.Valid, b.Close.Float64)
	}
	ma := make([]opts.LineData, len(bars))
	points, err := calculator.RollingMean(bars, window)
	if err != nil {
		log.Printf("[WARN] rolling mean: %v", err)
	}
	for i := range ma {
		if i < len(points) {
			ma[i] = lineValue(points[i].Valid, points[i].Value)
		} else {
			ma[i] = opts.LineData{Value: undefined}
		}
	}

	l := charts.NewLine()
	l.SetGlobalOptions(append(baseOpts(fmt.Sprintf("%s Close and %d-day MA", ticker, window)),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))...)
	l.SetXAxis(dateLabels(bars)).
		AddSeries("Close", closes, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries(fmt.Sprintf("MA%d", window), ma, charts.WithLineChartOpts(opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(false),
		}))
	return l
}

// VolumeChart plots daily volume, coloured by the day's direction.
func VolumeChart(ticker string, bars []model.Bar) *charts.Bar {
	data := make([]opts.BarData, len(bars))
	for i, b := range bars {
		if !b.Volume.Valid {
			data[i] = opts.BarData{Value: undefined}
			continue
		}
		color := upColor
		if b.Open.Valid && b.Close.Valid && b.Close.Float64 < b.Open.Float64 {
			color = downColor
		}
		data[i] = opts.BarData{Value: b.Volume.Int64, ItemStyle: &opts.ItemStyle{Color: color}}
	}

	bc := charts.NewBar()
	bc.SetGlobalOptions(append(baseOpts(fmt.Sprintf("%s Volume", ticker)),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))...)
	bc.SetXAxis(dateLabels(bars)).AddSeries("Volume", data)
	return bc
}

// SeriesChart plots open and close of the cleaned series.
func SeriesChart(bars []model.Bar) *charts.Line {
	open := make([]opts.LineData, len(bars))
	cls := make([]opts.LineData, len(bars))
	for i, b := range bars {
		open[i] = lineValue(b.Open.Valid, b.Open.Float64)
		cls[i] = lineValue(b.Close.Valid, b.Close.Float64)
	}

	l := charts.NewLine()
	l.SetGlobalOptions(append(baseOpts("Time Series data"),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))...)
	l.SetXAxis(dateLabels(bars)).
		AddSeries("stock_open", open, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})).
		AddSeries("stock_close", cls, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return l
}

// ForecastChart plots observed closes, the prediction and its interval.
func ForecastChart(ticker string, bars []model.Bar, fc []model.ForecastPoint) *charts.Line {
	actual := make(map[time.Time]float64, len(bars))
	for _, b := range bars {
		if b.Close.Valid {
			actual[b.Date] = b.Close.Float64
		}
	}

	x := make([]string, len(fc))
	y := make([]opts.LineData, len(fc))
	yhat := make([]opts.LineData, len(fc))
	lower := make([]opts.LineData, len(fc))
	upper := make([]opts.LineData, len(fc))
	for i, p := range fc {
		x[i] = p.DS.Format(cleaning.DateLayout)
		v, ok := actual[p.DS]
		y[i] = lineValue(ok, v)
		yhat[i] = opts.LineData{Value: p.YHat}
		lower[i] = opts.LineData{Value: p.Lower}
		upper[i] = opts.LineData{Value: p.Upper}
	}

	noSymbol := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	band := charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Opacity: opts.Float(0.6)})

	l := charts.NewLine()
	l.SetGlobalOptions(append(baseOpts(fmt.Sprintf("Forecast plot for %s", ticker)),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}))...)
	l.SetXAxis(x).
		AddSeries("y", y, noSymbol).
		AddSeries("yhat", yhat, noSymbol).
		AddSeries("yhat_lower", lower, noSymbol, band).
		AddSeries("yhat_upper", upper, noSymbol, band,
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.08)}))
	return l
}

// ComponentsChart plots the additive components of the prediction.
func ComponentsChart(fc []model.ForecastPoint) *charts.Line {
	x := make([]string, len(fc))
	trend := make([]opts.LineData, len(fc))
	season := make([]opts.LineData, len(fc))
	var hasSeason bool
	for i, p := range fc {
		x[i] = p.DS.Format(cleaning.DateLayout)
		trend[i] = opts.LineData{Value: p.Trend}
		season[i] = opts.LineData{Value: p.Seasonality}
		hasSeason = hasSeason || p.Seasonality != 0
	}

	noSymbol := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	l := charts.NewLine()
	l.SetGlobalOptions(baseOpts("Forecast components")...)
	l.SetXAxis(x).AddSeries("trend", trend, noSymbol)
	if hasSeason {
		l.AddSeries("seasonality", season, noSymbol)
	}
	return l
}

// BuildPage assembles every chart for v into one HTML page.
func BuildPage(v *View, o Options) *components.Page {
	o = o.withDefaults()
	page := components.NewPage().SetPageTitle(fmt.Sprintf("%s Stock Forecast", v.Ticker))

	var bars []model.Bar
	if v.Series != nil {
		bars = v.Series.Bars
	}
	if len(bars) > 0 {
		page.AddCharts(
			CandlestickChart(v.Ticker, bars, o.CandleDays),
			CloseWithMAChart(v.Ticker, bars, o.MAWindow),
			VolumeChart(v.Ticker, bars),
			SeriesChart(bars),
		)
	}
	if len(v.Forecast) > 0 {
		page.AddCharts(ForecastChart(v.Ticker, bars, v.Forecast), ComponentsChart(v.Forecast))
	}
	return page
}

// WriteHTML renders v to <OutputDir>/<ticker>_<date>.html and returns the path.
func WriteHTML(v *View, o Options, now time.Time) (string, error) {
	o = o.withDefaults()
	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(o.OutputDir, fmt.Sprintf("%s_%s.html", v.Ticker, now.Format(cleaning.DateLayout)))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := BuildPage(v, o).Render(f); err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	return path, nil
}
