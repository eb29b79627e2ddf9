package model

import (
	"fmt"
	"time"
)

// Direction selects which side of a threshold a crossing is measured on.
type Direction string

const (
	// Upper crossings: RSI rises from below to at-or-above the threshold.
	Upper Direction = "UPPER"
	// Lower crossings: RSI falls from above to at-or-below the threshold.
	Lower Direction = "LOWER"
)

// SweepKey addresses one cell of a sweep grid.
type SweepKey struct {
	Lookback  int
	Threshold int
}

// SweepCell is the outcome for one (lookback, threshold) pair. Average is the
// pooled mean forward ratio expressed as percent deviation from 100 and is
// meaningful only when Empty is false.
type SweepCell struct {
	Lookback  int
	Threshold int
	Events    int // crossing dates found
	Samples   int // pooled forward ratios
	Average   float64
	Empty     bool
}

// Value returns the average and whether the cell holds one.
func (c SweepCell) Value() (float64, bool) {
	if c.Empty {
		return 0, false
	}
	return c.Average, true
}

func (c SweepCell) String() string {
	if c.Empty {
		return fmt.Sprintf("p=%d t=%d: empty", c.Lookback, c.Threshold)
	}
	return fmt.Sprintf("p=%d t=%d: %+.3f%% (%d events, %d samples)",
		c.Lookback, c.Threshold, c.Average, c.Events, c.Samples)
}

// SweepTable is a complete grid over Lookbacks × Thresholds for one direction.
// It is built once by NewSweepTable and never mutated afterwards.
type SweepTable struct {
	direction  Direction
	lookbacks  []int
	thresholds []int
	cells      map[SweepKey]SweepCell
}

// NewSweepTable builds a table from cells. Every (lookback, threshold)
// combination must be present exactly once.
func NewSweepTable(dir Direction, lookbacks, thresholds []int, cells []SweepCell) (*SweepTable, error) {
	t := &SweepTable{
		direction:  dir,
		lookbacks:  append([]int(nil), lookbacks...),
		thresholds: append([]int(nil), thresholds...),
		cells:      make(map[SweepKey]SweepCell, len(cells)),
	}
	for _, c := range cells {
		k := SweepKey{Lookback: c.Lookback, Threshold: c.Threshold}
		if _, dup := t.cells[k]; dup {
			return nil, fmt.Errorf("duplicate sweep cell p=%d t=%d", c.Lookback, c.Threshold)
		}
		t.cells[k] = c
	}
	for _, p := range t.lookbacks {
		for _, th := range t.thresholds {
			if _, ok := t.cells[SweepKey{Lookback: p, Threshold: th}]; !ok {
				return nil, fmt.Errorf("missing sweep cell p=%d t=%d", p, th)
			}
		}
	}
	if len(t.cells) != len(t.lookbacks)*len(t.thresholds) {
		return nil, fmt.Errorf("sweep table has %d cells, grid expects %d",
			len(t.cells), len(t.lookbacks)*len(t.thresholds))
	}
	return t, nil
}

func (t *SweepTable) Direction() Direction { return t.direction }

// Lookbacks returns a copy of the row keys in sweep order.
func (t *SweepTable) Lookbacks() []int { return append([]int(nil), t.lookbacks...) }

// Thresholds returns a copy of the column keys in sweep order.
func (t *SweepTable) Thresholds() []int { return append([]int(nil), t.thresholds...) }

// Cell looks up one grid cell.
func (t *SweepTable) Cell(lookback, threshold int) (SweepCell, bool) {
	c, ok := t.cells[SweepKey{Lookback: lookback, Threshold: threshold}]
	return c, ok
}

// Cells returns every cell ordered by lookback, then threshold.
func (t *SweepTable) Cells() []SweepCell {
	out := make([]SweepCell, 0, len(t.cells))
	for _, p := range t.lookbacks {
		for _, th := range t.thresholds {
			out = append(out, t.cells[SweepKey{Lookback: p, Threshold: th}])
		}
	}
	return out
}

// Row returns the cells of one lookback ordered by threshold.
func (t *SweepTable) Row(lookback int) []SweepCell {
	out := make([]SweepCell, 0, len(t.thresholds))
	for _, th := range t.thresholds {
		if c, ok := t.cells[SweepKey{Lookback: lookback, Threshold: th}]; ok {
			out = append(out, c)
		}
	}
	return out
}

// SweepResult bundles both tables of one analysis run.
type SweepResult struct {
	Symbol      string
	Start       time.Time
	End         time.Time
	HorizonDays int
	Upper       *SweepTable
	Lower       *SweepTable
}
