package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newRun(t *testing.T, repo *SyncRunRepository) *models.SyncRun {
	t.Helper()
	run := models.NewSyncRun(0, models.AniList, models.MyAnimeList, models.Episodic)
	if err := repo.Create(run); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return run
}

func update(id, progress int) models.ProposedAction {
	return models.ProposedAction{
		Kind:      models.UpdateRemoteEntry,
		Target:    models.MyAnimeList,
		MediaKind: models.Episodic,
		ID:        id,
		Title:     "Mushishi",
		Status:    models.MALWatching,
		Progress:  progress,
		Score:     8,
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "sync_runs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without sequence")
	}
}

func TestSyncRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := newRun(t, repo)

		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := models.NewSyncRun(0, models.AniList, models.AniList, models.Episodic)

		if err := repo.Create(run); err == nil || !strings.Contains(err.Error(), "validation failed") {
			t.Errorf("expected validation error, got %v", err)
		}
		if run.ID() != "" {
			t.Error("invalid run must not receive an ID")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := newRun(t, repo)

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Reference() != models.AniList || got.Target() != models.MyAnimeList || got.Kind() != models.Episodic {
			t.Errorf("unexpected run %s -> %s (%s)", got.Reference(), got.Target(), got.Kind())
		}
		if got.State() != models.RunRunning || got.FinishedAt() != nil {
			t.Errorf("expected running run without finish time, got %s", got.State())
		}

		if _, err := repo.Get("missing"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := newRun(t, repo)

		run.SetProposed(2)
		run.Record(models.OutcomeApplied)
		run.Record(models.OutcomeFailed)
		run.Finish(errors.New("partial failure"))

		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.State() != models.RunFailed || got.ErrMessage() != "partial failure" {
			t.Errorf("got state %s message %q", got.State(), got.ErrMessage())
		}
		if got.Proposed() != 2 || got.Applied() != 1 || got.Failed() != 1 {
			t.Errorf("unexpected tallies %d/%d/%d", got.Proposed(), got.Applied(), got.Failed())
		}
		if got.FinishedAt() == nil {
			t.Error("expected finish time")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := newRun(t, repo)

		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected error when getting deleted run")
		}
		if err := repo.Delete(run.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
		if err := repo.Update(run); err == nil {
			t.Error("expected error updating deleted run")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		first := newRun(t, repo)
		manga := models.NewSyncRun(0, models.AniList, models.MyAnimeList, models.Chaptered)
		if err := repo.Create(manga); err != nil {
			t.Fatal(err)
		}
		last := newRun(t, repo)

		runs, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 || runs[0].ID() != last.ID() || runs[2].ID() != first.ID() {
			t.Errorf("expected newest first, got %d runs", len(runs))
		}

		runs, _ = repo.List(map[string]any{"media_kind": "manga"})
		if len(runs) != 1 || runs[0].ID() != manga.ID() {
			t.Errorf("expected only the manga run, got %d", len(runs))
		}

		runs, _ = repo.List(map[string]any{"limit": 2})
		if len(runs) != 2 {
			t.Errorf("expected 2 runs, got %d", len(runs))
		}

		runs, _ = repo.List(map[string]any{"state": string(models.RunCompleted)})
		if len(runs) != 0 {
			t.Errorf("expected no completed runs, got %d", len(runs))
		}
	})
}

func TestSyncActionRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		db := setupTestDB(t)
		run := newRun(t, NewSyncRunRepository(db))
		repo := NewSyncActionRepository(db)

		a := models.NewSyncAction(0, run.ID(), update(42, 10), models.OutcomeApplied, nil)
		if err := repo.Create(a); err != nil {
			t.Fatalf("failed to create action: %v", err)
		}

		got, err := repo.Get(a.ID())
		if err != nil {
			t.Fatalf("failed to get action: %v", err)
		}
		action := got.Action()
		if action.Kind != models.UpdateRemoteEntry || action.ID != 42 || action.Progress != 10 || action.Score != 8 {
			t.Errorf("unexpected action %+v", action)
		}
		if action.Status != models.MALWatching || action.MediaKind != models.Episodic {
			t.Errorf("unexpected status %s (%s)", action.Status, action.MediaKind)
		}
		if got.RunID() != run.ID() || got.Outcome() != models.OutcomeApplied {
			t.Errorf("unexpected run %s outcome %s", got.RunID(), got.Outcome())
		}
	})

	t.Run("Failed Outcome Keeps Message", func(t *testing.T) {
		db := setupTestDB(t)
		run := newRun(t, NewSyncRunRepository(db))
		repo := NewSyncActionRepository(db)

		cause := &models.MutationError{Code: "invalid_parameters", Message: "bad score"}
		a := models.NewSyncAction(0, run.ID(), update(7, 1), models.OutcomeFailed, cause)
		if err := repo.Create(a); err != nil {
			t.Fatal(err)
		}

		got, _ := repo.Get(a.ID())
		if got.ErrorMessage() != "invalid_parameters: bad score" {
			t.Errorf("unexpected message %q", got.ErrorMessage())
		}
	})

	t.Run("Foreign Key", func(t *testing.T) {
		repo := NewSyncActionRepository(setupTestDB(t))
		a := models.NewSyncAction(0, "no-such-run", update(1, 1), models.OutcomeApplied, nil)
		if err := repo.Create(a); err == nil {
			t.Error("expected foreign key violation for unknown run")
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		run := newRun(t, NewSyncRunRepository(db))
		repo := NewSyncActionRepository(db)

		a := models.NewSyncAction(0, run.ID(), update(5, 3), models.OutcomeDeclined, nil)
		if err := repo.Create(a); err != nil {
			t.Fatal(err)
		}

		retried := models.NewSyncAction(a.Sequence(), run.ID(), a.Action(), models.OutcomeApplied, nil)
		retried.SetID(a.ID())
		if err := repo.Update(retried); err != nil {
			t.Fatalf("failed to update action: %v", err)
		}

		got, _ := repo.Get(a.ID())
		if got.Outcome() != models.OutcomeApplied {
			t.Errorf("expected applied, got %s", got.Outcome())
		}
	})

	t.Run("List By Run", func(t *testing.T) {
		db := setupTestDB(t)
		runs := NewSyncRunRepository(db)
		first, second := newRun(t, runs), newRun(t, runs)
		repo := NewSyncActionRepository(db)

		for i, runID := range []string{first.ID(), first.ID(), second.ID()} {
			outcome := models.OutcomeApplied
			if i == 1 {
				outcome = models.OutcomeDeclined
			}
			if err := repo.Create(models.NewSyncAction(0, runID, update(i+1, i), outcome, nil)); err != nil {
				t.Fatal(err)
			}
		}

		actions, err := repo.List(map[string]any{"run_id": first.ID()})
		if err != nil {
			t.Fatalf("failed to list actions: %v", err)
		}
		if len(actions) != 2 || actions[0].Action().ID != 1 || actions[1].Action().ID != 2 {
			t.Errorf("expected actions 1 and 2 in order, got %d", len(actions))
		}

		actions, _ = repo.List(map[string]any{"outcome": string(models.OutcomeDeclined)})
		if len(actions) != 1 {
			t.Errorf("expected one declined action, got %d", len(actions))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		run := newRun(t, NewSyncRunRepository(db))
		repo := NewSyncActionRepository(db)

		a := models.NewSyncAction(0, run.ID(), update(9, 9), models.OutcomeApplied, nil)
		if err := repo.Create(a); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete(a.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if actions, _ := repo.List(nil); len(actions) != 0 {
			t.Errorf("deleted action should be excluded, got %d", len(actions))
		}
	})
}

func TestJournal(t *testing.T) {
	j := NewJournal(setupTestDB(t))

	run := models.NewSyncRun(0, models.AniList, models.MyAnimeList, models.Chaptered)
	if err := j.StartRun(run); err != nil {
		t.Fatalf("failed to start run: %v", err)
	}

	if err := j.RecordAction(models.NewSyncAction(0, "", update(1, 1), models.OutcomeApplied, nil)); err == nil {
		t.Error("expected error for action without run")
	}

	if err := j.RecordAction(models.NewSyncAction(0, run.ID(), update(1, 1), models.OutcomeApplied, nil)); err != nil {
		t.Fatalf("failed to record action: %v", err)
	}
	run.SetProposed(1)
	run.Record(models.OutcomeApplied)
	run.Finish(nil)
	if err := j.FinishRun(run); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	recent, err := j.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].State() != models.RunCompleted || recent[0].Applied() != 1 {
		t.Errorf("unexpected journal contents: %+v", recent)
	}
}
