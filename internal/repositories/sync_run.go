package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
)

const runColumns = `id, sequence, reference_service, target_service, media_kind, state, proposed, applied,
	declined, failed, error_message, finished_at, created_at, updated_at, deleted_at`

// SyncRunRepository implements models.Repository[*models.SyncRun].
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts a new run with generated ID and sequence
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO sync_runs (id, sequence, reference_service, target_service, media_kind, state, proposed, applied,
			declined, failed, error_message, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.Reference(),
		run.Target(),
		run.Kind().String(),
		run.State(),
		run.Proposed(),
		run.Applied(),
		run.Declined(),
		run.Failed(),
		run.ErrMessage(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	run.SetSequence(sequence)
	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync run not found: %s", id)
	}
	return run, err
}

// Update writes the run's state, tallies, and finish time
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET state = ?, proposed = ?, applied = ?, declined = ?, failed = ?, error_message = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.State(),
		run.Proposed(),
		run.Applied(),
		run.Declined(),
		run.Failed(),
		run.ErrMessage(),
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	return affected(result, "sync run", run.ID())
}

// Delete soft-deletes a run by ID
func (r *SyncRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE sync_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}
	return affected(result, "sync run", id)
}

// List retrieves runs newest first.
//
// Supported criteria: reference_service, target_service, media_kind, state (strings) and limit (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + runColumns + ` FROM sync_runs WHERE deleted_at IS NULL`
	args := []any{}

	for _, column := range []string{"reference_service", "target_service", "media_kind", "state"} {
		if v, ok := criteria[column].(string); ok && v != "" {
			query += " AND " + column + " = ?"
			args = append(args, v)
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func (r *SyncRunRepository) scan(row rowScanner) (*models.SyncRun, error) {
	var (
		id         string
		sequence   int
		reference  string
		target     string
		mediaKind  string
		state      string
		proposed   int
		applied    int
		declined   int
		failed     int
		errMessage string
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &reference, &target, &mediaKind, &state, &proposed, &applied,
		&declined, &failed, &errMessage, &finishedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	kind, err := models.ParseMediaKind(mediaKind)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run %s: %w", id, err)
	}

	run := models.NewSyncRun(sequence, models.ServiceName(reference), models.ServiceName(target), kind)
	run.SetID(id)
	run.SetCounts(proposed, applied, declined, failed)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	var finished *time.Time
	if finishedAt.Valid {
		finished = &finishedAt.Time
	}
	run.Restore(models.RunState(state), errMessage, finished)

	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}
	return run, nil
}
