package collector

import (
	"context"
	"time"

	"RSILab/internal/model"
)

// Fetcher defines the interface for fetching daily adjusted closes.
// Both start and end are inclusive calendar dates.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error)
	Name() string
}

// dateOf truncates t to its calendar date at UTC midnight.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
