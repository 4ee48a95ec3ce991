package operations

import (
	"time"

	"github.com/google/uuid"

	"edupulse/pkg/contracts/domain"
)

// RunState is the shared state of one pipeline run. Each stage reads what
// its predecessor produced and writes its own output; nothing is mutated
// after the producing stage completes.
type RunState struct {
	ID        string
	StartedAt time.Time

	// Rows accumulates the normalized rows of every source that parsed.
	Rows []domain.NormalizedRow
	// Records is the canonical set the consolidator produced.
	Records []domain.CanonicalRecord
	// Report is set by the validation stage on success.
	Report *domain.QualityReport
	// Observations collects quality events across all stages.
	Observations *domain.ObservationLog

	stages []*StageState
}

// NewRunState creates the state for a fresh run with a unique run ID.
func NewRunState() *RunState {
	return &RunState{
		ID:           uuid.NewString(),
		StartedAt:    time.Now(),
		Observations: &domain.ObservationLog{},
	}
}

// TrackStage registers a stage state and returns it.
func (s *RunState) TrackStage(id, name string) *StageState {
	st := NewStageState(id, name)
	s.stages = append(s.stages, st)
	return st
}

// Stages returns the tracked stage states in execution order.
func (s *RunState) Stages() []*StageState {
	out := make([]*StageState, len(s.stages))
	copy(out, s.stages)
	return out
}
