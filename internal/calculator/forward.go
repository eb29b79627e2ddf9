package calculator

import (
	"fmt"
	"time"

	"RSILab/internal/model"
)

// ForwardReturns returns price(t)/price(at) for every point with
// at <= t <= at + horizonDays*24h, in date order. The window is cut short at
// the end of the series and never padded, so the result holds between 1 and
// horizonDays+1 ratios on a daily series. The first ratio is always 1.
func ForwardReturns(series model.PriceSeries, at time.Time, horizonDays int) ([]float64, error) {
	if horizonDays < 0 {
		return nil, &model.ValidationError{
			Field:  "horizon_days",
			Reason: fmt.Sprintf("must be >= 0, got %d", horizonDays),
		}
	}
	idx, ok := series.IndexOf(at)
	if !ok {
		return nil, &model.LookupError{Symbol: series.Symbol, Time: at}
	}
	return AppendForwardReturns(nil, series, idx, horizonDays), nil
}

// AppendForwardReturns is ForwardReturns for a known, in-range index. Ratios are
// appended to dst so callers can pool samples without extra allocations.
func AppendForwardReturns(dst []float64, series model.PriceSeries, idx, horizonDays int) []float64 {
	base := series.Points[idx]
	end := base.Time.Add(time.Duration(horizonDays) * 24 * time.Hour)
	for _, p := range series.Points[idx:] {
		if p.Time.After(end) {
			break
		}
		dst = append(dst, p.Close/base.Close)
	}
	return dst
}
