package calculator

import (
	"math/rand"
	"testing"
	"time"

	talib "github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSILab/internal/model"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func makeSeries(closes ...float64) model.PriceSeries {
	s := model.PriceSeries{Symbol: "TEST", Points: make([]model.PricePoint, len(closes))}
	for i, c := range closes {
		s.Points[i] = model.PricePoint{Time: day0.AddDate(0, 0, i), Close: c}
	}
	return s
}

func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := 100.0
	for i := range closes {
		price *= 1 + 0.04*(rng.Float64()-0.5)
		closes[i] = price
	}
	return closes
}

func TestCalculateRSISeries_UndefinedPrefix(t *testing.T) {
	s := makeSeries(randomWalk(1, 40)...)
	for _, period := range []int{1, 5, 14, 39} {
		rsi, err := CalculateRSISeries(s, period)
		require.NoError(t, err)
		require.Len(t, rsi.Points, s.Len())
		for i, p := range rsi.Points {
			assert.Equal(t, s.Points[i].Time, p.Time, "period %d index %d misaligned", period, i)
			assert.Equal(t, i >= period, p.Valid, "period %d index %d validity", period, i)
		}
	}
}

func TestCalculateRSISeries_ShortSeriesAllUndefined(t *testing.T) {
	rsi, err := CalculateRSISeries(makeSeries(100, 101, 102), 3)
	require.NoError(t, err)
	assert.Empty(t, rsi.Defined())
	_, ok := rsi.Latest()
	assert.False(t, ok)
}

func TestCalculateRSISeries_RejectsBadPeriod(t *testing.T) {
	for _, period := range []int{0, -3} {
		_, err := CalculateRSISeries(makeSeries(1, 2, 3), period)
		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "lookback", verr.Field)
	}
}

func TestCalculateRSISeries_Bounded(t *testing.T) {
	s := makeSeries(randomWalk(7, 500)...)
	for period := 1; period <= 40; period++ {
		rsi, err := CalculateRSISeries(s, period)
		require.NoError(t, err)
		for _, p := range rsi.Defined() {
			if p.Value < 0 || p.Value > 100 {
				t.Fatalf("period %d: RSI %v out of [0,100] at %s", period, p.Value, p.Time)
			}
		}
	}
}

func TestCalculateRSISeries_ConstantSeriesIs100(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 42
	}
	rsi, err := CalculateRSISeries(makeSeries(closes...), 14)
	require.NoError(t, err)
	defined := rsi.Defined()
	require.Len(t, defined, 16)
	for _, p := range defined {
		assert.Equal(t, 100.0, p.Value)
	}
}

func TestCalculateRSISeries_HandComputed(t *testing.T) {
	// changes: +1, -1, +2, -1
	rsi, err := CalculateRSISeries(makeSeries(10, 11, 10, 12, 11), 2)
	require.NoError(t, err)

	// seed over +1, -1: gain 0.5, loss 0.5
	assert.InDelta(t, 50.0, rsi.Points[2].Value, 1e-12)
	// +2: gain (0.5+2)/2 = 1.25, loss 0.25 -> rs 5
	assert.InDelta(t, 100-100/6.0, rsi.Points[3].Value, 1e-12)
	// -1: gain 0.625, loss 0.625 -> 50
	assert.InDelta(t, 50.0, rsi.Points[4].Value, 1e-12)
}

func TestCalculateRSISeries_MatchesTALib(t *testing.T) {
	closes := randomWalk(2024, 300)
	s := makeSeries(closes...)
	for _, period := range []int{2, 5, 14, 27, 40} {
		rsi, err := CalculateRSISeries(s, period)
		require.NoError(t, err)
		want := talib.Rsi(closes, period)
		for i := period; i < len(closes); i++ {
			assert.InDelta(t, want[i], rsi.Points[i].Value, 1e-8, "period %d index %d", period, i)
		}
	}
}
