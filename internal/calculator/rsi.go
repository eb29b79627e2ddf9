package calculator

import (
	"fmt"

	"RSILab/internal/model"
)

// CalculateRSISeries computes the Wilder-smoothed RSI for every point of the
// series. The first `period` entries are left undefined. The seed is the simple
// average gain and loss of the first `period` changes; later values use
// avg = (avg*(period-1) + x) / period.
func CalculateRSISeries(series model.PriceSeries, period int) (model.RSISeries, error) {
	if period < 1 {
		return model.RSISeries{}, &model.ValidationError{
			Field:  "lookback",
			Reason: fmt.Sprintf("period must be >= 1, got %d", period),
		}
	}

	out := model.RSISeries{
		Symbol: series.Symbol,
		Period: period,
		Points: make([]model.RSIPoint, len(series.Points)),
	}
	for i, p := range series.Points {
		out.Points[i].Time = p.Time
	}
	if len(series.Points) <= period {
		return out, nil
	}

	closes := series.Closes()

	// Initial average gain/loss over the first `period` changes
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change // make positive
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out.Points[period].Value = rsiFromAverages(avgGain, avgLoss)
	out.Points[period].Valid = true

	// Wilder smoothing for remaining bars
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out.Points[i].Value = rsiFromAverages(avgGain, avgLoss)
		out.Points[i].Valid = true
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
