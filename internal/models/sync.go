package models

import (
	"errors"
	"fmt"
	"time"
)

// RunState is the lifecycle state of a [SyncRun].
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// Outcome records what happened to one proposed action.
type Outcome string

const (
	OutcomeApplied  Outcome = "applied"
	OutcomeDeclined Outcome = "declined"
	OutcomeFailed   Outcome = "failed"
)

// SyncRun is one journaled reconciliation pass.
type SyncRun struct {
	base
	reference  ServiceName
	target     ServiceName
	kind       MediaKind
	state      RunState
	proposed   int
	applied    int
	declined   int
	failed     int
	errMessage string
	finishedAt *time.Time
}

// NewSyncRun creates a running pass from reference to target.
func NewSyncRun(sequence int, reference, target ServiceName, kind MediaKind) *SyncRun {
	return &SyncRun{
		base:      newBase(sequence),
		reference: reference,
		target:    target,
		kind:      kind,
		state:     RunRunning,
	}
}

func (r *SyncRun) Reference() ServiceName { return r.reference }
func (r *SyncRun) Target() ServiceName    { return r.target }
func (r *SyncRun) Kind() MediaKind        { return r.kind }
func (r *SyncRun) State() RunState        { return r.state }
func (r *SyncRun) Proposed() int          { return r.proposed }
func (r *SyncRun) Applied() int           { return r.applied }
func (r *SyncRun) Declined() int          { return r.declined }
func (r *SyncRun) Failed() int            { return r.failed }
func (r *SyncRun) ErrMessage() string     { return r.errMessage }
func (r *SyncRun) FinishedAt() *time.Time { return r.finishedAt }

// SetCounts replaces the tallies. Used when scanning from storage.
func (r *SyncRun) SetCounts(proposed, applied, declined, failed int) {
	r.proposed, r.applied, r.declined, r.failed = proposed, applied, declined, failed
}

// SetProposed records how many actions reconciliation produced.
func (r *SyncRun) SetProposed(n int) { r.proposed = n }

// Record tallies one action outcome.
func (r *SyncRun) Record(o Outcome) {
	switch o {
	case OutcomeApplied:
		r.applied++
	case OutcomeDeclined:
		r.declined++
	case OutcomeFailed:
		r.failed++
	}
}

// Finish moves the run to a terminal state. A non-nil err marks it failed.
func (r *SyncRun) Finish(err error) {
	now := time.Now()
	r.finishedAt = &now
	r.updatedAt = now
	if err != nil {
		r.state = RunFailed
		r.errMessage = err.Error()
		return
	}
	r.state = RunCompleted
}

// Restore sets the terminal fields read back from storage.
func (r *SyncRun) Restore(state RunState, errMessage string, finishedAt *time.Time) {
	r.state, r.errMessage, r.finishedAt = state, errMessage, finishedAt
}

func (r *SyncRun) Validate() error {
	if r.reference == "" || r.target == "" {
		return errors.New("reference and target services are required")
	}
	if r.reference == r.target {
		return fmt.Errorf("reference and target must differ, both are %s", r.reference)
	}
	switch r.state {
	case RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run state %q", r.state)
	}
	if r.proposed < 0 || r.applied < 0 || r.declined < 0 || r.failed < 0 {
		return errors.New("counts cannot be negative")
	}
	return nil
}

// SyncAction is the journaled outcome of one proposed action.
type SyncAction struct {
	base
	runID    string
	action   ProposedAction
	outcome  Outcome
	errorMsg string
}

// NewSyncAction records the outcome of action within run runID.
func NewSyncAction(sequence int, runID string, action ProposedAction, outcome Outcome, cause error) *SyncAction {
	a := &SyncAction{
		base:    newBase(sequence),
		runID:   runID,
		action:  action,
		outcome: outcome,
	}
	if cause != nil {
		a.errorMsg = cause.Error()
	}
	return a
}

func (a *SyncAction) RunID() string          { return a.runID }
func (a *SyncAction) Action() ProposedAction { return a.action }
func (a *SyncAction) Outcome() Outcome       { return a.outcome }
func (a *SyncAction) ErrorMessage() string   { return a.errorMsg }

func (a *SyncAction) Validate() error {
	if a.runID == "" {
		return errors.New("run id is required")
	}
	if a.action.Kind == NoOp {
		return errors.New("no-op actions are not journaled")
	}
	if a.action.ID <= 0 {
		return fmt.Errorf("invalid media id %d", a.action.ID)
	}
	switch a.outcome {
	case OutcomeApplied, OutcomeDeclined:
	case OutcomeFailed:
		if a.errorMsg == "" {
			return errors.New("failed outcome requires an error message")
		}
	default:
		return fmt.Errorf("invalid outcome %q", a.outcome)
	}
	return nil
}
