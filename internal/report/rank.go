package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"

	"RSILab/internal/model"
)

// RankedLookback is a lookback together with its most extreme cell.
type RankedLookback struct {
	Lookback  int
	Threshold int
	Average   float64
	Events    int
}

// TopLookbacks ranks lookbacks by their most extreme non-empty cell: the
// lowest average for the upper table (strongest pull-back after overbought)
// and the highest for the lower table (strongest rebound after oversold).
// At most n lookbacks are returned; n <= 0 returns all of them.
func TopLookbacks(tbl *model.SweepTable, n int) []RankedLookback {
	cells := lo.Filter(tbl.Cells(), func(c model.SweepCell, _ int) bool { return !c.Empty })
	lowFirst := tbl.Direction() == model.Upper
	sort.SliceStable(cells, func(i, j int) bool {
		if lowFirst {
			return cells[i].Average < cells[j].Average
		}
		return cells[i].Average > cells[j].Average
	})

	// the first cell per lookback is its most extreme one
	ranked := lo.UniqBy(cells, func(c model.SweepCell) int { return c.Lookback })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return lo.Map(ranked, func(c model.SweepCell, _ int) RankedLookback {
		return RankedLookback{Lookback: c.Lookback, Threshold: c.Threshold, Average: c.Average, Events: c.Events}
	})
}

// WriteTop prints the ranking produced by TopLookbacks.
func WriteTop(w io.Writer, tbl *model.SweepTable, n int) error {
	top := TopLookbacks(tbl, n)
	if _, err := fmt.Fprintf(w, "Top %d lookbacks (%s):\n", len(top), tbl.Direction()); err != nil {
		return err
	}
	if len(top) == 0 {
		_, err := fmt.Fprintln(w, "  no crossings in any cell")
		return err
	}
	for i, r := range top {
		if _, err := fmt.Fprintf(w, "  %d. p=%-3d t=%-3d %+.3f%% (%d events)\n",
			i+1, r.Lookback, r.Threshold, r.Average, r.Events); err != nil {
			return err
		}
	}
	return nil
}
