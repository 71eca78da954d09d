package model

import "time"

// ColumnSummary is a descriptive statistics row for one numeric column.
type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

// Indicators holds the technical indicators shown next to the summary.
type Indicators struct {
	LastClose  float64
	MA         float64
	MAWindow   int
	RSI14      float64
	High52w    float64
	Low52w     float64
	Position52 float64 // 0.0 ~ 1.0
}

// TrainingPoint is one {ds, y} observation fed to the forecast engine.
type TrainingPoint struct {
	DS time.Time
	Y  float64
}

// ForecastPoint is one predicted row with its uncertainty interval and components.
type ForecastPoint struct {
	DS          time.Time
	YHat        float64
	Lower       float64
	Upper       float64
	Trend       float64
	Seasonality float64
}
