package calculator

import (
	"errors"
	"fmt"

	"StockForecast/internal/model"
)

// RSIPeriod is the lookback used for the daily RSI.
const RSIPeriod = 14

// ComputeIndicators derives the indicator panel from a cleaned series.
func ComputeIndicators(s *model.Series, maWindow int) (*model.Indicators, error) {
	closes := s.Closes()
	if len(closes) == 0 {
		return nil, errors.New("series has no close values")
	}
	if maWindow <= 0 {
		maWindow = DefaultMAWindow
	}

	ind := &model.Indicators{
		LastClose: closes[len(closes)-1],
		MAWindow:  maWindow,
	}

	if ma, err := CalculateSMA(closes, maWindow); err == nil {
		ind.MA = ma
	} else {
		ind.MAWindow = 0
	}

	rsi, err := CalculateRSI(s.Bars, RSIPeriod)
	if err != nil {
		return nil, fmt.Errorf("RSI: %w", err)
	}
	ind.RSI14 = rsi

	high, low, err := WindowRange(s.Bars, TradingDays52w)
	if err != nil {
		// Close-only series: fall back to the close range.
		window := closes[max(0, len(closes)-TradingDays52w):]
		high, low = window[0], window[0]
		for _, c := range window {
			if c > high {
				high = c
			}
			if c < low {
				low = c
			}
		}
	}
	ind.High52w = high
	ind.Low52w = low

	pos, err := RangePosition(ind.LastClose, high, low)
	if err != nil {
		return nil, fmt.Errorf("52w position: %w", err)
	}
	ind.Position52 = pos
	return ind, nil
}
