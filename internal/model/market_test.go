package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func series(closes ...float64) PriceSeries {
	s := PriceSeries{Symbol: "TEST"}
	for i, c := range closes {
		s.Points = append(s.Points, PricePoint{Time: day0.AddDate(0, 0, i), Close: c})
	}
	return s
}

func TestPriceSeries_Validate(t *testing.T) {
	tests := []struct {
		name string
		s    PriceSeries
		ok   bool
	}{
		{"valid", series(1, 2, 3), true},
		{"empty", PriceSeries{}, false},
		{"zero close", series(1, 0, 3), false},
		{"negative close", series(1, -2), false},
		{"nan close", series(1, math.NaN()), false},
		{"inf close", series(math.Inf(1)), false},
		{"duplicate date", PriceSeries{Points: []PricePoint{{Time: day0, Close: 1}, {Time: day0, Close: 2}}}, false},
		{"decreasing date", PriceSeries{Points: []PricePoint{{Time: day0.AddDate(0, 0, 1), Close: 1}, {Time: day0, Close: 2}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "prices", verr.Field)
		})
	}
	assert.ErrorIs(t, PriceSeries{}.Validate(), ErrEmptySeries)
}

func TestPriceSeries_IndexOfAndBetween(t *testing.T) {
	s := series(10, 11, 12, 13, 14)

	i, ok := s.IndexOf(day0.AddDate(0, 0, 3))
	assert.True(t, ok)
	assert.Equal(t, 3, i)
	_, ok = s.IndexOf(day0.AddDate(0, 0, 9))
	assert.False(t, ok)
	_, ok = s.IndexOf(day0.Add(time.Hour))
	assert.False(t, ok)

	sub := s.Between(day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 3))
	assert.Equal(t, []float64{11, 12, 13}, sub.Closes())
	assert.Equal(t, "TEST", sub.Symbol)

	assert.Zero(t, s.Between(day0.AddDate(0, 0, 10), day0.AddDate(0, 0, 20)).Len())
	assert.Zero(t, s.Between(day0.AddDate(0, 0, 3), day0.AddDate(0, 0, 1)).Len())

	first, ok := s.First()
	require.True(t, ok)
	assert.Equal(t, 10.0, first.Close)
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 14.0, last.Close)
	_, ok = PriceSeries{}.Last()
	assert.False(t, ok)
}

func TestMergePoints(t *testing.T) {
	older := series(1, 2, 3).Points
	newer := []PricePoint{
		{Time: day0.AddDate(0, 0, 4), Close: 5},
		{Time: day0.AddDate(0, 0, 2), Close: 30},
	}
	got := MergePoints(older, newer)
	require.Len(t, got, 4)
	assert.Equal(t, []float64{1, 2, 30, 5}, PriceSeries{Points: got}.Closes())
	assert.NoError(t, PriceSeries{Points: got}.Validate())
}

func TestZoneOf(t *testing.T) {
	cases := map[float64]RSIZone{
		0:    ZoneDeepOversold,
		20:   ZoneDeepOversold,
		25:   ZoneOversold,
		30:   ZoneOversold,
		50:   ZoneNeutral,
		70:   ZoneOverbought,
		79.9: ZoneOverbought,
		80:   ZoneDeepOverbought,
		100:  ZoneDeepOverbought,
	}
	for v, want := range cases {
		assert.Equal(t, want, ZoneOf(v), "rsi=%v", v)
	}
}

func TestRSISeries_DefinedAndLatest(t *testing.T) {
	s := RSISeries{Points: []RSIPoint{
		{Time: day0},
		{Time: day0.AddDate(0, 0, 1)},
		{Time: day0.AddDate(0, 0, 2), Value: 40, Valid: true},
		{Time: day0.AddDate(0, 0, 3), Value: 60, Valid: true},
	}}
	assert.Len(t, s.Defined(), 2)
	p, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 60.0, p.Value)

	_, ok = RSISeries{Points: []RSIPoint{{Time: day0}}}.Latest()
	assert.False(t, ok)
	assert.Nil(t, RSISeries{}.Defined())
}
