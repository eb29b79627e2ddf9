package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PricePoint is a single dated adjusted close.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"` // adjusted close
}

// PriceSeries holds an ordered, de-duplicated run of adjusted closes for one symbol.
// Treat it as read-only once loaded: analysis code shares it between goroutines.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close values in series order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// First returns the earliest point.
func (s PriceSeries) First() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[0], true
}

// Last returns the most recent point.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// IndexOf returns the position of the point dated exactly t.
func (s PriceSeries) IndexOf(t time.Time) (int, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Time.Before(t) })
	if i < len(s.Points) && s.Points[i].Time.Equal(t) {
		return i, true
	}
	return -1, false
}

// Between returns the sub-series with start <= time <= end. The result shares
// the backing array with s.
func (s PriceSeries) Between(start, end time.Time) PriceSeries {
	lo := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Time.Before(start) })
	hi := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Time.After(end) })
	if hi < lo {
		hi = lo
	}
	return PriceSeries{Symbol: s.Symbol, Points: s.Points[lo:hi]}
}

// Validate checks the series is non-empty, strictly increasing by date and
// carries usable prices. Zero closes are rejected because they cannot serve as
// a forward-return base.
func (s PriceSeries) Validate() error {
	if len(s.Points) == 0 {
		return &ValidationError{Field: "prices", Reason: ErrEmptySeries.Error(), Err: ErrEmptySeries}
	}
	for i, p := range s.Points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return &ValidationError{
				Field:  "prices",
				Reason: fmt.Sprintf("invalid close %v at %s", p.Close, p.Time.Format("2006-01-02")),
			}
		}
		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return &ValidationError{
				Field: "prices",
				Reason: fmt.Sprintf("dates not strictly increasing at index %d (%s after %s)",
					i, p.Time.Format("2006-01-02"), s.Points[i-1].Time.Format("2006-01-02")),
			}
		}
	}
	return nil
}

// MergePoints combines two point slices into one sorted by time. When both
// carry the same date the point from newer wins.
func MergePoints(older, newer []PricePoint) []PricePoint {
	byTime := make(map[int64]PricePoint, len(older)+len(newer))
	for _, p := range older {
		byTime[p.Time.UnixNano()] = p
	}
	for _, p := range newer {
		byTime[p.Time.UnixNano()] = p
	}
	merged := make([]PricePoint, 0, len(byTime))
	for _, p := range byTime {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Time.Before(merged[j].Time) })
	return merged
}
