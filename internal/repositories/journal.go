package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/lsx/internal/models"
)

// Journal records sync runs and their action outcomes in one database.
type Journal struct {
	Runs    *SyncRunRepository
	Actions *SyncActionRepository
}

// NewJournal creates a Journal over db. Migrations must already be applied.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{
		Runs:    NewSyncRunRepository(db),
		Actions: NewSyncActionRepository(db),
	}
}

// StartRun persists a new running pass.
func (j *Journal) StartRun(run *models.SyncRun) error {
	return j.Runs.Create(run)
}

// RecordAction persists one outcome under a started run.
func (j *Journal) RecordAction(a *models.SyncAction) error {
	if a.RunID() == "" {
		return fmt.Errorf("cannot record action %d: run was never started", a.Action().ID)
	}
	return j.Actions.Create(a)
}

// FinishRun writes the run's terminal state and tallies.
func (j *Journal) FinishRun(run *models.SyncRun) error {
	return j.Runs.Update(run)
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(limit int) ([]*models.SyncRun, error) {
	return j.Runs.List(map[string]any{"limit": limit})
}
