package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
)

const actionColumns = `id, sequence, run_id, kind, target_service, media_kind, media_id, title, status, progress,
	score, repeating, outcome, error_message, created_at, updated_at, deleted_at`

// SyncActionRepository implements models.Repository[*models.SyncAction].
type SyncActionRepository struct {
	db *sql.DB
}

// NewSyncActionRepository creates a new SyncActionRepository with the given database connection
func NewSyncActionRepository(db *sql.DB) *SyncActionRepository {
	return &SyncActionRepository{db: db}
}

// Create inserts a new action outcome. The owning run must already exist.
func (r *SyncActionRepository) Create(a *models.SyncAction) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "sync_actions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	action := a.Action()

	query := `
		INSERT INTO sync_actions (id, sequence, run_id, kind, target_service, media_kind, media_id, title, status,
			progress, score, repeating, outcome, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		a.RunID(),
		action.Kind.String(),
		action.Target,
		action.MediaKind.String(),
		action.ID,
		action.Title,
		action.Status,
		action.Progress,
		action.Score,
		action.Repeating,
		a.Outcome(),
		a.ErrorMessage(),
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync action: %w", err)
	}

	a.SetID(id)
	a.SetSequence(sequence)
	return nil
}

// Get retrieves an action by ID, excluding soft-deleted actions
func (r *SyncActionRepository) Get(id string) (*models.SyncAction, error) {
	query := `SELECT ` + actionColumns + ` FROM sync_actions WHERE id = ? AND deleted_at IS NULL`

	a, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync action not found: %s", id)
	}
	return a, err
}

// Update rewrites the outcome of an action, e.g. after a manual retry.
func (r *SyncActionRepository) Update(a *models.SyncAction) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	a.SetUpdatedAt(now)

	result, err := r.db.Exec(`
		UPDATE sync_actions
		SET outcome = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, a.Outcome(), a.ErrorMessage(), now, a.ID())
	if err != nil {
		return fmt.Errorf("failed to update sync action: %w", err)
	}
	return affected(result, "sync action", a.ID())
}

// Delete soft-deletes an action by ID
func (r *SyncActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE sync_actions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete sync action: %w", err)
	}
	return affected(result, "sync action", id)
}

// List retrieves actions in the order they were recorded.
//
// Supported criteria: run_id and outcome.
func (r *SyncActionRepository) List(criteria map[string]any) ([]*models.SyncAction, error) {
	query := `SELECT ` + actionColumns + ` FROM sync_actions WHERE deleted_at IS NULL`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if outcome, ok := criteria["outcome"].(string); ok && outcome != "" {
		query += " AND outcome = ?"
		args = append(args, outcome)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync actions: %w", err)
	}
	defer rows.Close()

	var actions []*models.SyncAction
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return actions, nil
}

func (r *SyncActionRepository) scan(row rowScanner) (*models.SyncAction, error) {
	var (
		id         string
		sequence   int
		runID      string
		kind       string
		target     string
		mediaKind  string
		mediaID    int
		title      string
		status     string
		progress   int
		score      int
		repeating  bool
		outcome    string
		errMessage string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &runID, &kind, &target, &mediaKind, &mediaID, &title, &status, &progress,
		&score, &repeating, &outcome, &errMessage, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync action: %w", err)
	}

	mk, err := models.ParseMediaKind(mediaKind)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync action %s: %w", id, err)
	}
	ak, err := models.ParseActionKind(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync action %s: %w", id, err)
	}

	action := models.ProposedAction{
		Kind:      ak,
		Target:    models.ServiceName(target),
		MediaKind: mk,
		ID:        mediaID,
		Title:     title,
		Status:    models.Status(status),
		Progress:  progress,
		Score:     score,
		Repeating: repeating,
	}

	var cause error
	if errMessage != "" {
		cause = errors.New(errMessage)
	}

	a := models.NewSyncAction(sequence, runID, action, models.Outcome(outcome), cause)
	a.SetID(id)
	a.SetCreatedAt(createdAt)
	a.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		a.SetDeletedAt(&deletedAt.Time)
	}
	return a, nil
}
