package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSILab/internal/calculator"
	"RSILab/internal/model"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func cell(p, th int, avg float64) model.SweepCell {
	return model.SweepCell{Lookback: p, Threshold: th, Events: 2, Samples: 20, Average: avg}
}

func empty(p, th int) model.SweepCell {
	return model.SweepCell{Lookback: p, Threshold: th, Empty: true}
}

func table(t *testing.T, dir model.Direction) *model.SweepTable {
	t.Helper()
	tbl, err := model.NewSweepTable(dir, []int{5, 6, 7}, []int{60, 70}, []model.SweepCell{
		cell(5, 60, 1.5), cell(5, 70, -2.0),
		cell(6, 60, 0.25), empty(6, 70),
		empty(7, 60), empty(7, 70),
	})
	require.NoError(t, err)
	return tbl
}

func TestPivotRows(t *testing.T) {
	rows := PivotRows(table(t, model.Upper))
	assert.Equal(t, [][]string{
		{"lookback", "60", "70"},
		{"5", "1.5000", "-2.0000"},
		{"6", "0.2500", ""},
		{"7", "", ""},
	}, rows)
}

func TestWritePivotCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePivotCSV(&buf, table(t, model.Lower)))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "", recs[3][1])
}

func TestWritePivotText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePivotText(&buf, table(t, model.Lower)))
	out := buf.String()
	assert.Contains(t, out, "crossed below")
	assert.Contains(t, out, "+1.50")
	assert.Contains(t, out, "-2.00")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, 2, strings.Count(lines[4], "-"), "empty cells print as dashes")
}

func TestSavePivots(t *testing.T) {
	res := &model.SweepResult{
		Symbol:      "^N225",
		Start:       day0,
		End:         day0.AddDate(1, 0, 0),
		HorizonDays: 30,
		Upper:       table(t, model.Upper),
		Lower:       table(t, model.Lower),
	}
	dir := filepath.Join(t.TempDir(), "reports")
	paths, err := SavePivots(dir, res)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "N225_upper_20200101_20210101_h30.csv", filepath.Base(paths[0]))
	assert.Equal(t, "N225_lower_20200101_20210101_h30.csv", filepath.Base(paths[1]))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "lookback,60,70\n"))
	}
}

func TestTopLookbacks(t *testing.T) {
	up := TopLookbacks(table(t, model.Upper), 5)
	require.Len(t, up, 2, "lookback 7 has no crossings and is not ranked")
	assert.Equal(t, RankedLookback{Lookback: 5, Threshold: 70, Average: -2.0, Events: 2}, up[0])
	assert.Equal(t, 6, up[1].Lookback)

	down := TopLookbacks(table(t, model.Lower), 1)
	require.Len(t, down, 1)
	assert.Equal(t, 5, down[0].Lookback)
	assert.Equal(t, 60, down[0].Threshold)
	assert.Equal(t, 1.5, down[0].Average)

	assert.Len(t, TopLookbacks(table(t, model.Lower), 0), 2)
}

func TestWriteTop(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTop(&buf, table(t, model.Upper), 3))
	assert.Contains(t, buf.String(), "1. p=5")

	tbl, err := model.NewSweepTable(model.Upper, []int{5}, []int{60}, []model.SweepCell{empty(5, 60)})
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, WriteTop(&buf, tbl, 3))
	assert.Contains(t, buf.String(), "no crossings")
}

func TestRSIRows(t *testing.T) {
	prices := model.PriceSeries{Symbol: "TEST"}
	for i, c := range []float64{10, 11, 12, 11, 10, 9, 10, 11} {
		prices.Points = append(prices.Points, model.PricePoint{Time: day0.AddDate(0, 0, i), Close: c})
	}
	rsi, err := calculator.CalculateRSISeries(prices, 3)
	require.NoError(t, err)

	rows, err := RSIRows(prices, rsi)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, day0.AddDate(0, 0, 3), rows[0].Point.Time)
	for _, r := range rows {
		assert.Equal(t, model.ZoneOf(r.RSI), r.Zone)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRSICSV(&buf, rows))
	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "close", "rsi", "zone"}, recs[0])
	assert.Len(t, recs, 6)

	buf.Reset()
	require.NoError(t, WriteRSIText(&buf, rows, 2))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))

	_, err = RSIRows(prices.Between(day0, day0.AddDate(0, 0, 2)), rsi)
	assert.Error(t, err)
}
