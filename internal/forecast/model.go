package forecast

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	forecaster "github.com/aouyang1/go-forecaster"
	"github.com/aouyang1/go-forecaster/changepoint"
	fcast "github.com/aouyang1/go-forecaster/forecast"
	"gonum.org/v1/gonum/stat/distuv"

	"StockForecast/internal/model"
)

const (
	day          = 24 * time.Hour
	weeklyPeriod = 7 * day
	yearlyPeriod = time.Duration(365.25 * float64(day))
)

// Config holds the model hyperparameters.
type Config struct {
	IntervalWidth    float64
	Changepoints     int
	ChangepointRange float64
	WeeklyOrder      int
	YearlyOrder      int
}

// DefaultConfig mirrors the usual additive-model defaults.
func DefaultConfig() Config {
	return Config{
		IntervalWidth:    0.8,
		Changepoints:     25,
		ChangepointRange: 0.8,
		WeeklyOrder:      3,
		YearlyOrder:      10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if !(c.IntervalWidth > 0 && c.IntervalWidth < 1) {
		c.IntervalWidth = d.IntervalWidth
	}
	if c.Changepoints < 0 {
		c.Changepoints = 0
	}
	if !(c.ChangepointRange > 0 && c.ChangepointRange <= 1) {
		c.ChangepointRange = d.ChangepointRange
	}
	if c.WeeklyOrder <= 0 {
		c.WeeklyOrder = d.WeeklyOrder
	}
	if c.YearlyOrder <= 0 {
		c.YearlyOrder = d.YearlyOrder
	}
	return c
}

// ZScore returns the two-sided normal quantile for the interval width.
func (c Config) ZScore() float64 {
	return distuv.UnitNormal.Quantile((1 + c.IntervalWidth) / 2)
}

// Model fits a go-forecaster additive model (piecewise-linear trend plus
// Fourier seasonality) and reports its output as ForecastPoints.
type Model struct {
	cfg Config

	f       *forecaster.Forecaster
	history []time.Time
	weekly  bool
	yearly  bool
}

// NewModel creates an unfitted model.
func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg.withDefaults()}
}

// Seasonalities reports which seasonal components the last fit enabled.
func (m *Model) Seasonalities() (weekly, yearly bool) { return m.weekly, m.yearly }

func (m *Model) Fit(ctx context.Context, points []model.TrainingPoint) error {
	pts := usablePoints(points)
	if len(pts) < 2 || !pts[len(pts)-1].DS.After(pts[0].DS) {
		return ErrInsufficientData
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.f = nil
	m.history = make([]time.Time, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		m.history[i] = p.DS
		ys[i] = p.Y
	}
	span := m.history[len(m.history)-1].Sub(m.history[0])
	m.weekly = span >= 2*weeklyPeriod && minGap(m.history) < weeklyPeriod
	m.yearly = float64(span) >= 2*float64(yearlyPeriod)

	f, err := forecaster.New(m.options())
	if err != nil {
		return fmt.Errorf("forecast: build model: %w", err)
	}
	if err := f.Fit(m.history, ys); err != nil {
		return fmt.Errorf("forecast: fit: %w", err)
	}
	m.f = f
	log.Printf("[INFO] forecast fitted on %d points (weekly=%v yearly=%v)", len(pts), m.weekly, m.yearly)
	return nil
}

func (m *Model) options() *forecaster.Options {
	opt := forecaster.NewDefaultOptions()

	var seasons []fcast.SeasonalityConfig
	if m.weekly {
		seasons = append(seasons, fcast.NewWeeklySeasonalityConfig(m.cfg.WeeklyOrder))
	}
	if m.yearly {
		seasons = append(seasons, fcast.SeasonalityConfig{Name: "yearly", Orders: m.cfg.YearlyOrder, Period: yearlyPeriod})
	}

	cps := make([]changepoint.Changepoint, 0, m.cfg.Changepoints)
	for i, t := range PlaceChangepoints(m.history, m.cfg.Changepoints, m.cfg.ChangepointRange) {
		cps = append(cps, changepoint.New(fmt.Sprintf("cp_%d", i), t))
	}

	series := opt.SeriesOptions.ForecastOptions
	series.SeasonalityOptions.SeasonalityConfigs = seasons
	series.ChangepointOptions = fcast.ChangepointOptions{Changepoints: cps}

	// residual bands follow the trend only
	opt.UncertaintyOptions.ForecastOptions.SeasonalityOptions.SeasonalityConfigs = nil
	opt.UncertaintyOptions.ResidualZscore = m.cfg.ZScore()
	return opt
}

// Predict returns the history rows followed by horizonDays calendar days.
func (m *Model) Predict(horizonDays int) ([]model.ForecastPoint, error) {
	if m.f == nil {
		return nil, ErrNotFitted
	}
	return m.PredictAt(FutureDates(m.history, horizonDays))
}

// PredictAt evaluates the fitted model at arbitrary dates.
func (m *Model) PredictAt(dates []time.Time) ([]model.ForecastPoint, error) {
	if m.f == nil {
		return nil, ErrNotFitted
	}
	res, err := m.f.Predict(dates)
	if err != nil {
		return nil, fmt.Errorf("forecast: predict: %w", err)
	}
	return toPoints(res)
}

// toPoints flattens go-forecaster's column-oriented results into rows.
func toPoints(res *forecaster.Results) ([]model.ForecastPoint, error) {
	n := len(res.T)
	if len(res.Forecast) != n || len(res.Upper) != n || len(res.Lower) != n {
		return nil, fmt.Errorf("forecast: result columns differ in length (t=%d yhat=%d upper=%d lower=%d)",
			n, len(res.Forecast), len(res.Upper), len(res.Lower))
	}
	trend := res.SeriesComponents.Trend
	season := res.SeriesComponents.Seasonality
	out := make([]model.ForecastPoint, n)
	for i := range out {
		p := model.ForecastPoint{
			DS:    res.T[i],
			YHat:  res.Forecast[i],
			Lower: math.Min(res.Lower[i], res.Forecast[i]),
			Upper: math.Max(res.Upper[i], res.Forecast[i]),
		}
		if i < len(trend) {
			p.Trend = trend[i]
		}
		if i < len(season) {
			p.Seasonality = season[i]
		}
		out[i] = p
	}
	return out, nil
}

// usablePoints drops non-finite values and sorts by date.
func usablePoints(points []model.TrainingPoint) []model.TrainingPoint {
	pts := make([]model.TrainingPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		pts = append(pts, p)
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].DS.Before(pts[j].DS) })
	return pts
}

// PlaceChangepoints picks n potential changepoints from the history dates,
// evenly spaced by index over the first frac of the history and excluding the
// first date.
func PlaceChangepoints(history []time.Time, n int, frac float64) []time.Time {
	size := int(math.Floor(float64(len(history)) * frac))
	if n > size-1 {
		n = size - 1
	}
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		t := history[int(math.Round(float64(i)*float64(size-1)/float64(n)))]
		if len(out) > 0 && !t.After(out[len(out)-1]) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func minGap(dates []time.Time) time.Duration {
	g := time.Duration(math.MaxInt64)
	for i := 1; i < len(dates); i++ {
		if d := dates[i].Sub(dates[i-1]); d > 0 && d < g {
			g = d
		}
	}
	return g
}
