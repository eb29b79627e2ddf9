package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptySeries is reported when a price series has no points.
var ErrEmptySeries = errors.New("price series is empty")

// ValidationError rejects malformed input before any computation starts.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // optional sentinel, exposed through Unwrap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// LookupError means a date expected in a price series was not found. It points
// at an alignment bug between an RSI series and its prices.
type LookupError struct {
	Symbol string
	Time   time.Time
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("date %s not found in %s price series", e.Time.Format("2006-01-02"), e.Symbol)
}
