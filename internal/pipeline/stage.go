package pipeline

import (
	"time"

	"epicli/internal/files"
)

// Stage identifiers in execution order
const (
	StageAcquisition = "acquisition"
	StageAnalysis    = "analysis"
	StageRendering   = "rendering"
)

// StageStatus is the lifecycle state of one pipeline stage
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageActive    StageStatus = "active"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageState tracks one stage's outcome through a run. The pipeline runs
// stages sequentially, so the state needs no locking.
type StageState struct {
	ID      string
	Name    string
	Status  StageStatus
	Err     error
	Message string

	start time.Time
	end   time.Time
}

func newStageState(id, name string) *StageState {
	return &StageState{ID: id, Name: name, Status: StagePending}
}

// Start marks the stage active
func (s *StageState) Start() {
	s.start = time.Now()
	s.Status = StageActive
}

// Complete marks the stage completed
func (s *StageState) Complete() {
	s.end = time.Now()
	s.Status = StageCompleted
}

// Fail marks the stage failed with the error that stopped it
func (s *StageState) Fail(err error) {
	s.end = time.Now()
	s.Status = StageFailed
	s.Err = err
}

// Skip marks a stage that never ran and records why
func (s *StageState) Skip(reason string) {
	s.end = time.Now()
	s.Status = StageSkipped
	s.Message = reason
}

// Duration returns how long the stage ran
func (s *StageState) Duration() time.Duration {
	if s.start.IsZero() {
		return 0
	}
	if s.end.IsZero() {
		return time.Since(s.start)
	}
	return s.end.Sub(s.start)
}

// Result carries the stage outcomes, row counters, and artifact manifest
// of one run.
type Result struct {
	Acquisition *StageState
	Analysis    *StageState
	Rendering   *StageState

	ParsedRows  int
	CleanedRows int
	WindowRows  int
	Artifacts   []files.Artifact
}

func newResult() *Result {
	return &Result{
		Acquisition: newStageState(StageAcquisition, "data acquisition"),
		Analysis:    newStageState(StageAnalysis, "analysis"),
		Rendering:   newStageState(StageRendering, "visualization"),
	}
}

// Stages returns the stage states in execution order
func (r *Result) Stages() []*StageState {
	return []*StageState{r.Acquisition, r.Analysis, r.Rendering}
}

// ExitCode is the process exit contract: zero only when every stage
// completed; a failed or skipped stage makes the run a failure.
func (r *Result) ExitCode() int {
	for _, stage := range r.Stages() {
		if stage.Status != StageCompleted {
			return 1
		}
	}
	return 0
}
