package calculator

import (
	"time"

	"RSILab/internal/model"
)

// UpperCrossings returns every date where RSI rose from below the threshold to
// at-or-above it: RSI(d-1) < t && RSI(d) >= t.
func UpperCrossings(rsi model.RSISeries, threshold float64) []time.Time {
	return Crossings(rsi, threshold, model.Upper)
}

// LowerCrossings returns every date where RSI fell from above the threshold to
// at-or-below it: RSI(d-1) > t && RSI(d) <= t.
func LowerCrossings(rsi model.RSISeries, threshold float64) []time.Time {
	return Crossings(rsi, threshold, model.Lower)
}

// Crossings scans the defined part of the series in date order. The first
// defined date never qualifies since it has no defined predecessor.
func Crossings(rsi model.RSISeries, threshold float64, dir model.Direction) []time.Time {
	defined := rsi.Defined()
	if len(defined) < 2 {
		return nil
	}
	var dates []time.Time
	for i := 1; i < len(defined); i++ {
		prev, cur := defined[i-1].Value, defined[i].Value
		if crossed(prev, cur, threshold, dir) {
			dates = append(dates, defined[i].Time)
		}
	}
	return dates
}

func crossed(prev, cur, threshold float64, dir model.Direction) bool {
	switch dir {
	case model.Upper:
		return prev < threshold && cur >= threshold
	case model.Lower:
		return prev > threshold && cur <= threshold
	default:
		return false
	}
}
