package store

import (
	"time"

	"github.com/google/uuid"
)

// RunKind identifies which engine produced a run.
type RunKind string

const (
	KindTrain   RunKind = "train"
	KindSimplex RunKind = "simplex"
)

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// ValidateRunID checks that runID is a canonical UUID as produced by NewRunID.
// Anything else could name a path outside the runs directory.
func ValidateRunID(runID string) error {
	if runID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	id, err := uuid.Parse(runID)
	if err != nil || id.String() != runID {
		return &ValidationError{Field: "RunID", Reason: "must be a UUID: " + runID}
	}
	return nil
}

// TrainSummary is the persisted result of a gradient-descent run.
type TrainSummary struct {
	Objective     string    `json:"objective"`
	Initial       []float64 `json:"initial"`
	Final         []float64 `json:"final"`
	Iterations    int       `json:"iterations"`
	FinalValue    float64   `json:"finalValue"`
	FinalGradNorm float64   `json:"finalGradNorm"`
	Outcome       string    `json:"outcome"`
	LearningRate  float64   `json:"learningRate"`
	Tolerance     float64   `json:"tolerance"`
	MaxIterations int       `json:"maxIterations"`
}

// SimplexSummary is the persisted result of a Simplex solve.
type SimplexSummary struct {
	Input       string    `json:"input"`
	Constraints int       `json:"constraints"`
	Variables   int       `json:"variables"`
	Status      string    `json:"status"`
	Solution    []float64 `json:"solution,omitempty"`
	Objective   float64   `json:"objective"`
}

// RunRecord is a stored optimization run. Exactly one of Train and Simplex is set.
type RunRecord struct {
	// RunID is the unique identifier for this run
	RunID string `json:"runId"`

	// Kind says which engine produced the run
	Kind RunKind `json:"kind"`

	// Timestamp records when the run finished
	Timestamp time.Time `json:"timestamp"`

	// Duration is the wall-clock solve time
	Duration time.Duration `json:"duration"`

	Train   *TrainSummary   `json:"train,omitempty"`
	Simplex *SimplexSummary `json:"simplex,omitempty"`
}

// RunInfo is the listing view of a run.
type RunInfo struct {
	RunID     string    `json:"runId"`
	Kind      RunKind   `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   string    `json:"outcome"`
	Value     float64   `json:"value"`
}

// NewTrainRecord creates a record for a finished training run.
func NewTrainRecord(runID string, summary TrainSummary, duration time.Duration) *RunRecord {
	return &RunRecord{
		RunID:     runID,
		Kind:      KindTrain,
		Timestamp: time.Now(),
		Duration:  duration,
		Train:     &summary,
	}
}

// NewSimplexRecord creates a record for a finished Simplex solve.
func NewSimplexRecord(runID string, summary SimplexSummary, duration time.Duration) *RunRecord {
	return &RunRecord{
		RunID:     runID,
		Kind:      KindSimplex,
		Timestamp: time.Now(),
		Duration:  duration,
		Simplex:   &summary,
	}
}

// ToInfo converts a full record to its listing view.
func (r *RunRecord) ToInfo() RunInfo {
	info := RunInfo{
		RunID:     r.RunID,
		Kind:      r.Kind,
		Timestamp: r.Timestamp,
	}
	switch {
	case r.Train != nil:
		info.Outcome = r.Train.Outcome
		info.Value = r.Train.FinalValue
	case r.Simplex != nil:
		info.Outcome = r.Simplex.Status
		info.Value = r.Simplex.Objective
	}
	return info
}

// Validate checks that the record is complete enough to be stored.
func (r *RunRecord) Validate() error {
	if err := ValidateRunID(r.RunID); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	switch r.Kind {
	case KindTrain:
		if r.Train == nil {
			return &ValidationError{Field: "Train", Reason: "required for train runs"}
		}
		if r.Simplex != nil {
			return &ValidationError{Field: "Simplex", Reason: "must be empty for train runs"}
		}
		if len(r.Train.Final) != len(r.Train.Initial) {
			return &ValidationError{Field: "Train.Final", Reason: "length must match Train.Initial"}
		}
		if r.Train.Iterations < 0 {
			return &ValidationError{Field: "Train.Iterations", Reason: "cannot be negative"}
		}
	case KindSimplex:
		if r.Simplex == nil {
			return &ValidationError{Field: "Simplex", Reason: "required for simplex runs"}
		}
		if r.Train != nil {
			return &ValidationError{Field: "Train", Reason: "must be empty for simplex runs"}
		}
		if r.Simplex.Status == "" {
			return &ValidationError{Field: "Simplex.Status", Reason: "cannot be empty"}
		}
	default:
		return &ValidationError{Field: "Kind", Reason: "must be train or simplex"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
