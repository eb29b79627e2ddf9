package sweep

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"RSILab/internal/calculator"
	"RSILab/internal/model"
)

// Params describes one sweep grid.
type Params struct {
	Lookbacks       []int
	UpperThresholds []int
	LowerThresholds []int
	HorizonDays     int
	Workers         int // 0 means runtime.NumCPU()
}

// Validate rejects malformed grids before any computation starts.
func (p Params) Validate() error {
	if len(p.Lookbacks) == 0 {
		return &model.ValidationError{Field: "lookback_range", Reason: "no lookback periods"}
	}
	if err := checkUnique("lookback_range", p.Lookbacks); err != nil {
		return err
	}
	for _, lb := range p.Lookbacks {
		if lb < 1 {
			return &model.ValidationError{Field: "lookback_range", Reason: fmt.Sprintf("lookback %d < 1", lb)}
		}
	}
	for _, grid := range []struct {
		field string
		ths   []int
	}{
		{"upper_threshold_range", p.UpperThresholds},
		{"lower_threshold_range", p.LowerThresholds},
	} {
		field, ths := grid.field, grid.ths
		if len(ths) == 0 {
			return &model.ValidationError{Field: field, Reason: "no thresholds"}
		}
		if err := checkUnique(field, ths); err != nil {
			return err
		}
		for _, th := range ths {
			if th < 0 || th > 100 {
				return &model.ValidationError{Field: field, Reason: fmt.Sprintf("threshold %d outside [0,100]", th)}
			}
		}
	}
	if p.HorizonDays < 0 {
		return &model.ValidationError{Field: "horizon_days", Reason: fmt.Sprintf("must be >= 0, got %d", p.HorizonDays)}
	}
	if p.Workers < 0 {
		return &model.ValidationError{Field: "workers", Reason: fmt.Sprintf("must be >= 0, got %d", p.Workers)}
	}
	return nil
}

func checkUnique(field string, values []int) error {
	seen := make(map[int]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return &model.ValidationError{Field: field, Reason: fmt.Sprintf("duplicate value %d", v)}
		}
		seen[v] = struct{}{}
	}
	return nil
}

// lookbackRow holds the cells computed for one lookback period. Each worker
// owns exactly one row.
type lookbackRow struct {
	upper []model.SweepCell
	lower []model.SweepCell
}

// Run computes the upper and lower sweep tables for series. Lookback periods
// are processed in parallel; rows are merged in lookback order, so the result
// is identical to a sequential run.
func Run(ctx context.Context, series model.PriceSeries, p Params) (*model.SweepResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	rows := make([]lookbackRow, len(p.Lookbacks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, lb := range p.Lookbacks {
		i, lb := i, lb
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := sweepLookback(series, lb, p)
			if err != nil {
				return fmt.Errorf("lookback %d: %w", lb, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var upperCells, lowerCells []model.SweepCell
	for _, row := range rows {
		upperCells = append(upperCells, row.upper...)
		lowerCells = append(lowerCells, row.lower...)
	}
	upper, err := model.NewSweepTable(model.Upper, p.Lookbacks, p.UpperThresholds, upperCells)
	if err != nil {
		return nil, fmt.Errorf("build upper table: %w", err)
	}
	lower, err := model.NewSweepTable(model.Lower, p.Lookbacks, p.LowerThresholds, lowerCells)
	if err != nil {
		return nil, fmt.Errorf("build lower table: %w", err)
	}

	first, _ := series.First()
	last, _ := series.Last()
	return &model.SweepResult{
		Symbol:      series.Symbol,
		Start:       first.Time,
		End:         last.Time,
		HorizonDays: p.HorizonDays,
		Upper:       upper,
		Lower:       lower,
	}, nil
}

func sweepLookback(series model.PriceSeries, lookback int, p Params) (lookbackRow, error) {
	rsi, err := calculator.CalculateRSISeries(series, lookback)
	if err != nil {
		return lookbackRow{}, err
	}

	var row lookbackRow
	for _, th := range p.UpperThresholds {
		dates := calculator.UpperCrossings(rsi, float64(th))
		cell, err := Aggregate(series, dates, p.HorizonDays)
		if err != nil {
			return lookbackRow{}, fmt.Errorf("upper threshold %d: %w", th, err)
		}
		cell.Lookback, cell.Threshold = lookback, th
		row.upper = append(row.upper, cell)
	}
	for _, th := range p.LowerThresholds {
		dates := calculator.LowerCrossings(rsi, float64(th))
		cell, err := Aggregate(series, dates, p.HorizonDays)
		if err != nil {
			return lookbackRow{}, fmt.Errorf("lower threshold %d: %w", th, err)
		}
		cell.Lookback, cell.Threshold = lookback, th
		row.lower = append(row.lower, cell)
	}
	return row, nil
}

// Aggregate pools the forward ratios of every crossing date in date order and
// returns the cell with Average = mean*100 - 100. With no crossing dates the
// cell is marked Empty. Lookback and Threshold are left for the caller.
func Aggregate(series model.PriceSeries, dates []time.Time, horizonDays int) (model.SweepCell, error) {
	cell := model.SweepCell{Events: len(dates)}
	if len(dates) == 0 {
		cell.Empty = true
		return cell, nil
	}

	var pooled []float64
	for _, d := range dates {
		idx, ok := series.IndexOf(d)
		if !ok {
			return model.SweepCell{}, &model.LookupError{Symbol: series.Symbol, Time: d}
		}
		pooled = calculator.AppendForwardReturns(pooled, series, idx, horizonDays)
	}

	sum := 0.0
	for _, r := range pooled {
		sum += r
	}
	avg := sum / float64(len(pooled))
	cell.Samples = len(pooled)
	cell.Average = avg*100 - 100
	return cell, nil
}
