package model

import "time"

// RSIPoint is one entry of an RSI series. Valid is false while the lookback
// window has not filled yet.
type RSIPoint struct {
	Time  time.Time
	Value float64
	Valid bool
}

// RSISeries is aligned 1:1 with the PriceSeries it was computed from.
type RSISeries struct {
	Symbol string
	Period int
	Points []RSIPoint
}

// Defined returns the entries past the undefined prefix. The result shares the
// backing array with s.
func (s RSISeries) Defined() []RSIPoint {
	for i, p := range s.Points {
		if p.Valid {
			return s.Points[i:]
		}
	}
	return nil
}

// Latest returns the most recent defined value.
func (s RSISeries) Latest() (RSIPoint, bool) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Valid {
			return s.Points[i], true
		}
	}
	return RSIPoint{}, false
}

// RSIZone classifies an RSI value against the conventional 20/30/70/80 levels.
type RSIZone string

const (
	ZoneDeepOversold   RSIZone = "DEEP_OVERSOLD"
	ZoneOversold       RSIZone = "OVERSOLD"
	ZoneNeutral        RSIZone = "NEUTRAL"
	ZoneOverbought     RSIZone = "OVERBOUGHT"
	ZoneDeepOverbought RSIZone = "DEEP_OVERBOUGHT"
)

// ZoneOf maps an RSI value to its zone.
func ZoneOf(rsi float64) RSIZone {
	switch {
	case rsi <= 20:
		return ZoneDeepOversold
	case rsi <= 30:
		return ZoneOversold
	case rsi < 70:
		return ZoneNeutral
	case rsi < 80:
		return ZoneOverbought
	default:
		return ZoneDeepOverbought
	}
}
