package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"RSILab/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Points []model.PricePoint
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	points := m.Points
	if points == nil {
		points = generateMockPoints(m.Price, start, end)
	}
	return model.PriceSeries{Symbol: symbol, Points: points}.Between(dateOf(start), dateOf(end)), nil
}

// generateMockPoints emits one point per weekday with a slow upward drift.
func generateMockPoints(basePrice float64, start, end time.Time) []model.PricePoint {
	var points []model.PricePoint
	i := 0
	for d := dateOf(start); !d.After(dateOf(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		points = append(points, model.PricePoint{Time: d, Close: basePrice * (1 + float64(i)*0.001)})
		i++
	}
	return points
}

// Collector loads validated price series for the configured symbol.
type Collector struct {
	Fetcher Fetcher
	Live    Fetcher // used by CollectRecent when set, typically the uncached fetcher
	Symbol  string
	Start   time.Time
	End     time.Time
}

// NewCollector creates a new Collector for a fixed analysis window.
func NewCollector(fetcher Fetcher, symbol string, start, end time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Start: start, End: end}
}

// Collect fetches the configured analysis window.
func (c *Collector) Collect(ctx context.Context) (model.PriceSeries, error) {
	return c.CollectRange(ctx, c.Symbol, c.Start, c.End)
}

// CollectRecent fetches the trailing window of `days` calendar days ending today.
func (c *Collector) CollectRecent(ctx context.Context, days int) (model.PriceSeries, error) {
	end := dateOf(time.Now())
	f := c.Fetcher
	if c.Live != nil {
		f = c.Live
	}
	return collectWith(ctx, f, c.Symbol, end.AddDate(0, 0, -days), end)
}

// CollectRange fetches [start, end] for symbol and validates the result.
func (c *Collector) CollectRange(ctx context.Context, symbol string, start, end time.Time) (model.PriceSeries, error) {
	return collectWith(ctx, c.Fetcher, symbol, start, end)
}

func collectWith(ctx context.Context, f Fetcher, symbol string, start, end time.Time) (model.PriceSeries, error) {
	series, err := f.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("fetch %s history: %w", symbol, err)
	}
	if err := series.Validate(); err != nil {
		return model.PriceSeries{}, fmt.Errorf("%s history: %w", symbol, err)
	}
	first, _ := series.First()
	last, _ := series.Last()
	log.Printf("[INFO] %s: %d points %s..%s via %s", symbol, series.Len(),
		first.Time.Format("2006-01-02"), last.Time.Format("2006-01-02"), f.Name())
	return series, nil
}
