package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/services"
	"github.com/desertthunder/lsx/internal/shared"
)

// Journal records sync runs. [repositories.Journal] implements it.
type Journal interface {
	StartRun(run *models.SyncRun) error
	RecordAction(action *models.SyncAction) error
	FinishRun(run *models.SyncRun) error
}

// Sessions pairs the authorized sessions for one pass.
type Sessions struct {
	Reference *models.Session
	Target    *models.Session
}

// Plan is the fetched state of both services and the actions that reconcile them.
type Plan struct {
	Kind      models.MediaKind
	Reference *models.ListModel
	Target    *models.ListModel
	Actions   []models.ProposedAction
}

// ActionResult is the outcome of one confirmed or declined action.
type ActionResult struct {
	Action  models.ProposedAction
	Outcome models.Outcome
	Err     error
}

// SyncResult contains all data from a full sync pass.
type SyncResult struct {
	Plan     *Plan
	Results  []ActionResult
	Applied  int
	Declined int
	Failed   int
	Run      *models.SyncRun // nil without a journal
}

// SyncEngine brings a target service into agreement with a reference service.
//
// A pass is Plan (fetch both lists concurrently, then reconcile) followed by Apply (confirm and
// write one action at a time). A failed mutation is reported and the loop continues.
type SyncEngine struct {
	reference services.Service
	target    services.Updater
	journal   Journal
	logger    *log.Logger
}

// NewSyncEngine creates an engine. A nil logger discards output.
func NewSyncEngine(reference services.Service, target services.Updater, logger *log.Logger) *SyncEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &SyncEngine{reference: reference, target: target, logger: logger}
}

// WithJournal records every pass and action outcome in j.
func (e *SyncEngine) WithJournal(j Journal) *SyncEngine {
	e.journal = j
	return e
}

// Plan fetches both lists and reconciles them. Nothing is written. Any fetch failure aborts the
// plan with no partial result; [models.AuthExpiredError] is returned unwrapped so the caller can
// re-authorize.
func (e *SyncEngine) Plan(ctx context.Context, sessions Sessions, kind models.MediaKind, progress chan<- ProgressUpdate) (*Plan, error) {
	if e.reference == nil || e.target == nil {
		return nil, fmt.Errorf("%w: reference and target services are required", shared.ErrServiceUnavailable)
	}
	if e.reference.Name() == e.target.Name() {
		return nil, fmt.Errorf("%w: reference and target are both %s", shared.ErrInvalidConfig, e.target.Name())
	}
	if !sessions.Reference.Valid() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, e.reference.Name().Display())
	}
	if !sessions.Target.Valid() {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, e.target.Name().Display())
	}

	plan := &Plan{Kind: kind}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sendProgress(progress, fetchUpdate(FetchReference, e.reference.Name(), kind))
		m, err := e.reference.FetchList(gctx, sessions.Reference, kind)
		if err != nil {
			return err
		}
		plan.Reference = m
		sendProgress(progress, fetchedUpdate(FetchReference, m))
		return nil
	})
	g.Go(func() error {
		sendProgress(progress, fetchUpdate(FetchTarget, e.target.Name(), kind))
		m, err := e.target.FetchList(gctx, sessions.Target, kind)
		if err != nil {
			return err
		}
		plan.Target = m
		sendProgress(progress, fetchedUpdate(FetchTarget, m))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug("fetched lists", "kind", kind, "reference", plan.Reference.Len(), "target", plan.Target.Len())

	actions, err := Reconcile(plan.Reference, plan.Target, kind)
	if err != nil {
		return nil, err
	}
	plan.Actions = actions

	sendProgress(progress, reconcileUpdate(actions))
	e.logger.Info("reconciled", "kind", kind, "actions", len(actions))
	return plan, nil
}

// Apply confirms and writes each action in order. Exactly one mutation is in flight at a time.
//
// A rejected mutation is recorded as failed and the next action proceeds. An expired target
// session stops the loop and is returned, since every later write would fail the same way.
// Cancellation stops before the next action.
func (e *SyncEngine) Apply(ctx context.Context, session *models.Session, actions []models.ProposedAction, gate Confirmer, progress chan<- ProgressUpdate) ([]ActionResult, error) {
	return e.apply(ctx, session, actions, gate, progress, nil)
}

func (e *SyncEngine) apply(ctx context.Context, session *models.Session, actions []models.ProposedAction, gate Confirmer, progress chan<- ProgressUpdate, run *models.SyncRun) ([]ActionResult, error) {
	if gate == nil {
		gate = DenyAll
	}

	total := len(actions)
	results := make([]ActionResult, 0, total)

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		step := i + 1
		sendProgress(progress, confirmUpdate(step, total, action))

		result := ActionResult{Action: action, Outcome: models.OutcomeDeclined}
		if gate.Confirm(action) {
			result.Outcome = models.OutcomeApplied
			if err := e.target.Apply(ctx, session, action); err != nil {
				result.Outcome, result.Err = models.OutcomeFailed, err
			}
		}

		results = append(results, result)
		e.record(run, result)
		sendProgress(progress, appliedUpdate(step, total, result))

		switch result.Outcome {
		case models.OutcomeApplied:
			e.logger.Info("applied", "action", action.Kind, "id", action.ID, "title", action.Title, "progress", action.Progress)
		case models.OutcomeDeclined:
			e.logger.Debug("declined", "action", action.Kind, "id", action.ID, "title", action.Title)
		case models.OutcomeFailed:
			e.logger.Error("mutation failed", "action", action.Kind, "id", action.ID, "title", action.Title, "err", result.Err)
			if errors.Is(result.Err, models.ErrAuthExpired) {
				return results, result.Err
			}
		}
	}
	return results, nil
}

// Run performs a full pass: plan, then confirm and apply every action through gate.
func (e *SyncEngine) Run(ctx context.Context, sessions Sessions, kind models.MediaKind, gate Confirmer, progress chan<- ProgressUpdate) (*SyncResult, error) {
	plan, err := e.Plan(ctx, sessions, kind, progress)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Plan: plan}
	result.Run = e.startRun(kind, len(plan.Actions))

	results, err := e.apply(ctx, sessions.Target, plan.Actions, gate, progress, result.Run)
	result.Results = results
	for _, r := range results {
		switch r.Outcome {
		case models.OutcomeApplied:
			result.Applied++
		case models.OutcomeDeclined:
			result.Declined++
		case models.OutcomeFailed:
			result.Failed++
		}
	}

	e.finishRun(result.Run, err)
	return result, err
}

// startRun opens a journal entry. Journal failures are logged and never fail the sync.
func (e *SyncEngine) startRun(kind models.MediaKind, proposed int) *models.SyncRun {
	if e.journal == nil {
		return nil
	}

	run := models.NewSyncRun(0, e.reference.Name(), e.target.Name(), kind)
	run.SetProposed(proposed)
	if err := e.journal.StartRun(run); err != nil {
		e.logger.Warn("journal unavailable, continuing without it", "err", err)
		return nil
	}
	return run
}

func (e *SyncEngine) record(run *models.SyncRun, result ActionResult) {
	if run == nil {
		return
	}
	run.Record(result.Outcome)

	entry := models.NewSyncAction(0, run.ID(), result.Action, result.Outcome, result.Err)
	if err := e.journal.RecordAction(entry); err != nil {
		e.logger.Warn("failed to journal action", "id", result.Action.ID, "err", err)
	}
}

func (e *SyncEngine) finishRun(run *models.SyncRun, err error) {
	if run == nil {
		return
	}
	run.Finish(err)
	if err := e.journal.FinishRun(run); err != nil {
		e.logger.Warn("failed to journal run", "run", run.ID(), "err", err)
	}
}
