package recorder

import (
	"github.com/google/uuid"

	"RSILab/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSweep(_ *SweepRun) (string, error)      { return uuid.NewString(), nil }
func (n *NoopRecorder) RecordSignal(_ *model.TradeSignal) error      { return nil }
func (n *NoopRecorder) LatestSweep(_ string) (*RecordedSweep, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                 { return nil }
