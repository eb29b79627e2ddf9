package recorder

import (
	"time"

	"RSILab/internal/model"
)

// SweepRun holds one completed sweep together with how it was produced.
type SweepRun struct {
	Result      *model.SweepResult
	Workers     int
	TriggerType model.TriggerType
	Duration    time.Duration
}

// RecordedSweep is a sweep loaded back from storage.
type RecordedSweep struct {
	RunID      string
	RecordedAt time.Time
	Result     *model.SweepResult
}

// Recorder persists sweep results and strategy signals for later analysis.
type Recorder interface {
	// RecordSweep stores both tables of a run and returns the generated run id.
	RecordSweep(run *SweepRun) (string, error)
	RecordSignal(sig *model.TradeSignal) error
	// LatestSweep returns the most recent sweep for symbol, or nil when none exists.
	LatestSweep(symbol string) (*RecordedSweep, error)
	Close() error
}
