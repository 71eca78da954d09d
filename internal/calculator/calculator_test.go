package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"StockForecast/internal/model"
)

func closeBars(closes ...float64) []model.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Date: base.AddDate(0, 0, i), Close: null.FloatFrom(c)}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if _, err := CalculateSMA([]float64{1}, 3); err == nil {
		t.Error("expected error for short input")
	}
}

func TestRollingMean_UndefinedWarmup(t *testing.T) {
	pts, err := RollingMean(closeBars(1, 2, 3, 4, 5), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pts[0].Valid || pts[1].Valid {
		t.Error("first window-1 points must be undefined")
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		p := pts[i+2]
		if !p.Valid || math.Abs(p.Value-w) > 1e-12 {
			t.Errorf("point %d: expected %v, got %+v", i+2, w, p)
		}
	}
}

func TestRollingMean_MissingValueInWindow(t *testing.T) {
	bars := closeBars(1, 2, 3, 4)
	bars[1].Close = null.Float{}
	pts, _ := RollingMean(bars, 2)
	if pts[1].Valid || pts[2].Valid {
		t.Error("windows touching a missing close must be undefined")
	}
	if !pts[3].Valid || pts[3].Value != 3.5 {
		t.Errorf("expected 3.5 at index 3, got %+v", pts[3])
	}
}

func TestCalculateRSI_Monotonic(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
	}
	rsi, err := CalculateRSI(closeBars(up...), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected RSI 100 for rising series, got %v", rsi)
	}

	rsi, _ = CalculateRSI(closeBars(1, 2, 3), 14)
	if rsi != 50 {
		t.Errorf("expected neutral 50 for short series, got %v", rsi)
	}
}

func TestWindowRange(t *testing.T) {
	bars := closeBars(10, 11, 12)
	for i := range bars {
		bars[i].High = null.FloatFrom(bars[i].Close.Float64 + 1)
		bars[i].Low = null.FloatFrom(bars[i].Close.Float64 - 1)
	}
	high, low, err := WindowRange(bars, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high != 13 || low != 10 {
		t.Errorf("expected [10, 13], got [%v, %v]", low, high)
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		price, high, low, want float64
	}{
		{50, 100, 0, 0.5},
		{150, 100, 0, 1},
		{-5, 100, 0, 0},
		{7, 7, 7, 0.5},
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.price, tt.high, tt.low)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v, %v, %v): expected %v, got %v", tt.price, tt.high, tt.low, tt.want, got)
		}
	}
}

func TestDescribe(t *testing.T) {
	bars := closeBars(1, 2, 3, 4)
	sum := Describe(bars)
	if len(sum) != 6 {
		t.Fatalf("expected 6 columns, got %d", len(sum))
	}
	c := sum[3]
	if c.Column != "Close" || c.Count != 4 {
		t.Fatalf("unexpected close summary %+v", c)
	}
	if c.Mean != 2.5 || c.Min != 1 || c.Max != 4 || c.P25 != 1.75 || c.P75 != 3.25 {
		t.Errorf("unexpected close stats %+v", c)
	}
	if math.Abs(c.Std-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("expected sample std, got %v", c.Std)
	}
	if sum[0].Count != 0 || !math.IsNaN(sum[0].Mean) {
		t.Errorf("expected empty open summary, got %+v", sum[0])
	}
}

func TestComputeIndicators_CloseOnly(t *testing.T) {
	s := &model.Series{Ticker: "TEST", Bars: closeBars(10, 12, 11, 14)}
	ind, err := ComputeIndicators(s, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ind.LastClose != 14 || ind.MA != 12.5 {
		t.Errorf("unexpected indicators %+v", ind)
	}
	if ind.High52w != 14 || ind.Low52w != 10 || ind.Position52 != 1 {
		t.Errorf("expected close-range fallback, got %+v", ind)
	}
}
