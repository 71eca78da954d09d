package cleaning

import "StockForecast/internal/model"

// TrainingFrame renames Date/Close to ds/y for the forecast engine. Bars with a
// missing close are dropped rather than filled.
func TrainingFrame(bars []model.Bar) []model.TrainingPoint {
	out := make([]model.TrainingPoint, 0, len(bars))
	for _, b := range bars {
		if !b.Close.Valid {
			continue
		}
		out = append(out, model.TrainingPoint{DS: toCalendarDate(b.Date), Y: b.Close.Float64})
	}
	return out
}
