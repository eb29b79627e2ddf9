package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSILab/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "rsilab.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func sampleResult(t *testing.T, symbol string, shift float64) *model.SweepResult {
	t.Helper()
	lbs, ths := []int{5, 6}, []int{70, 80}
	var cells []model.SweepCell
	for _, p := range lbs {
		for _, th := range ths {
			cells = append(cells, model.SweepCell{Lookback: p, Threshold: th, Events: 3, Samples: 60,
				Average: float64(p) - float64(th)/10 + shift})
		}
	}
	cells[3] = model.SweepCell{Lookback: 6, Threshold: 80, Empty: true}
	upper, err := model.NewSweepTable(model.Upper, lbs, ths, cells)
	require.NoError(t, err)
	lower, err := model.NewSweepTable(model.Lower, lbs, ths, cells)
	require.NoError(t, err)
	return &model.SweepResult{
		Symbol:      symbol,
		Start:       time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC),
		HorizonDays: 30,
		Upper:       upper,
		Lower:       lower,
	}
}

func TestSQLiteRecorder_SweepRoundTrip(t *testing.T) {
	r := newTestRecorder(t)
	res := sampleResult(t, "^N225", 0)

	id, err := r.RecordSweep(&SweepRun{Result: res, Workers: 4, TriggerType: model.TriggerManual, Duration: time.Second})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	got, err := r.LatestSweep("^N225")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.RunID)
	assert.Equal(t, res.Start, got.Result.Start)
	assert.Equal(t, res.End, got.Result.End)
	assert.Equal(t, 30, got.Result.HorizonDays)
	assert.Equal(t, res.Upper.Cells(), got.Result.Upper.Cells())
	assert.Equal(t, res.Lower.Cells(), got.Result.Lower.Cells())

	c, ok := got.Result.Upper.Cell(6, 80)
	require.True(t, ok)
	assert.True(t, c.Empty, "NULL average loads back as an empty cell")

	var nulls int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM sweep_cells WHERE run_id = ? AND average IS NULL`, id).Scan(&nulls))
	assert.Equal(t, 2, nulls)
}

func TestSQLiteRecorder_LatestSweepPicksNewest(t *testing.T) {
	r := newTestRecorder(t)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	_, err := r.RecordSweep(&SweepRun{Result: sampleResult(t, "^N225", 0)})
	require.NoError(t, err)
	clock = clock.Add(7 * 24 * time.Hour)
	newest, err := r.RecordSweep(&SweepRun{Result: sampleResult(t, "^N225", 1)})
	require.NoError(t, err)
	_, err = r.RecordSweep(&SweepRun{Result: sampleResult(t, "^GSPC", 2)})
	require.NoError(t, err)

	got, err := r.LatestSweep("^N225")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newest, got.RunID)
	c, _ := got.Result.Upper.Cell(5, 70)
	assert.InDelta(t, 5-7+1.0, c.Average, 1e-12)

	none, err := r.LatestSweep("UNKNOWN")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLiteRecorder_RecordSignal(t *testing.T) {
	r := newTestRecorder(t)
	sig := &model.TradeSignal{
		Symbol:      "^N225",
		Time:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Action:      model.ActionBuy,
		Price:       38000,
		RSI:         18.5,
		PrevRSI:     22.1,
		Params:      model.StrategyParams{TimePeriod: 14, RSIUpper: 80, RSILower: 20},
		TriggerType: model.TriggerDaily,
	}
	require.NoError(t, r.RecordSignal(sig))

	var (
		action, barDate string
		rsi             float64
	)
	require.NoError(t, r.db.QueryRow(`SELECT action, bar_date, rsi FROM signals`).Scan(&action, &barDate, &rsi))
	assert.Equal(t, "BUY", action)
	assert.Equal(t, "2024-05-01", barDate)
	assert.Equal(t, 18.5, rsi)
}

func TestSQLiteRecorder_RejectsNilResult(t *testing.T) {
	r := newTestRecorder(t)
	_, err := r.RecordSweep(&SweepRun{})
	assert.Error(t, err)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	id, err := r.RecordSweep(&SweepRun{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	got, err := r.LatestSweep("^N225")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, r.Close())
}
