package calculator

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"StockForecast/internal/model"
)

// CalculateRSI returns the Wilder RSI of the valid closes in bars. With fewer
// than period+1 closes the neutral value 50 is returned.
func CalculateRSI(bars []model.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	closes := extractCloses(bars)
	if len(closes) <= period {
		return 50.0, nil
	}

	gains, losses := splitMoves(closes)
	n := float64(period)
	avgGain := floats.Sum(gains[:period]) / n
	avgLoss := floats.Sum(losses[:period]) / n
	for i := period; i < len(gains); i++ {
		avgGain += (gains[i] - avgGain) / n
		avgLoss += (losses[i] - avgLoss) / n
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	return 100.0 - 100.0/(1.0+avgGain/avgLoss), nil
}

// splitMoves separates day-over-day changes into non-negative gains and losses.
func splitMoves(closes []float64) (gains, losses []float64) {
	gains = make([]float64, len(closes)-1)
	losses = make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if d := closes[i] - closes[i-1]; d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	return gains, losses
}
