package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/tasks"
	tu "github.com/desertthunder/lsx/internal/testing"
)

var sessions = tasks.Sessions{
	Reference: &models.Session{AccessToken: "al"},
	Target:    &models.Session{AccessToken: "mal"},
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, ref []models.Entry, target []models.Entry) (*Model, *tu.MockService) {
	t.Helper()
	reference := &tu.MockService{
		ServiceName: models.AniList,
		Lists:       map[models.MediaKind]*models.ListModel{models.Episodic: tu.ListOf(models.AniList, models.Episodic, ref...)},
	}
	mock := &tu.MockService{
		ServiceName: models.MyAnimeList,
		Lists:       map[models.MediaKind]*models.ListModel{models.Episodic: tu.ListOf(models.MyAnimeList, models.Episodic, target...)},
		ApplyErrs:   map[int]error{},
	}

	m := NewModel(context.Background(), tasks.NewSyncEngine(reference, mock, nil), sessions, models.Episodic)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, mock
}

// drain runs cmd and every command it produces until the chain ends.
func drain(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func twoEntries() []models.Entry {
	return []models.Entry{
		{ID: 1, CrossRefID: models.Ptr(11), Title: "Mushishi", Status: models.StatusCurrent, Progress: models.Ptr(10)},
		{ID: 2, CrossRefID: models.Ptr(22), Title: "Haibane Renmei", Status: models.StatusCompleted, Progress: models.Ptr(13)},
	}
}

func TestModel_Loading(t *testing.T) {
	t.Run("plan moves to plan view", func(t *testing.T) {
		m, _ := newTestModel(t, twoEntries(), nil)
		if m.view != LoadingView {
			t.Fatalf("expected loading view, got %v", m.view)
		}

		drain(m, m.Init())

		if m.view != PlanView {
			t.Fatalf("expected plan view, got %v", m.view)
		}
		if len(m.plan.Actions) != 2 {
			t.Errorf("expected 2 actions, got %d", len(m.plan.Actions))
		}
		if !strings.Contains(m.View(), "Mushishi") {
			t.Error("plan view should list proposed changes")
		}
	})

	t.Run("agreeing lists go straight to results", func(t *testing.T) {
		m, _ := newTestModel(t, twoEntries()[:1], []models.Entry{{ID: 11, Status: models.MALWatching, Progress: models.Ptr(10)}})
		drain(m, m.Init())

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "already agree") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("plan error is shown", func(t *testing.T) {
		m, _ := newTestModel(t, nil, nil)
		m.Update(planCompleteMsg(nil, &models.AuthExpiredError{Service: models.AniList}))

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if !errors.Is(m.Err(), models.ErrAuthExpired) {
			t.Errorf("expected auth expired, got %v", m.Err())
		}
		if !strings.Contains(m.View(), "Sync stopped") {
			t.Error("expected error header")
		}
	})

	t.Run("quit while loading", func(t *testing.T) {
		m, _ := newTestModel(t, nil, nil)
		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestModel_Review(t *testing.T) {
	review := func(t *testing.T) (*Model, *tu.MockService) {
		t.Helper()
		m, mock := newTestModel(t, twoEntries(), nil)
		drain(m, m.Init())
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != ReviewView {
			t.Fatalf("expected review view, got %v", m.view)
		}
		return m, mock
	}

	t.Run("y applies and advances", func(t *testing.T) {
		m, mock := review(t)
		if !strings.Contains(m.View(), "Change 1 of 2") {
			t.Errorf("unexpected view:\n%s", m.View())
		}

		_, cmd := m.Update(keyPress("y"))
		drain(m, cmd)

		applied := mock.Applied()
		if len(applied) != 1 || applied[0].ID != 11 {
			t.Fatalf("expected action 11 applied, got %+v", applied)
		}
		if m.index != 1 || m.view != ReviewView {
			t.Errorf("expected second action under review, index %d view %v", m.index, m.view)
		}
	})

	t.Run("only lowercase y approves", func(t *testing.T) {
		for _, k := range []string{"Y", "n", "yes", " "} {
			t.Run(k, func(t *testing.T) {
				m, mock := review(t)
				_, cmd := m.Update(keyPress(k))
				drain(m, cmd)

				if len(mock.Applied()) != 0 {
					t.Errorf("%q should not approve", k)
				}
				if got := m.Results()[0].Outcome; got != models.OutcomeDeclined {
					t.Errorf("expected declined, got %s", got)
				}
			})
		}
	})

	t.Run("keys are ignored while a mutation is in flight", func(t *testing.T) {
		m, mock := review(t)
		_, first := m.Update(keyPress("y"))
		_, second := m.Update(keyPress("y"))
		if second != nil {
			t.Error("expected no command while applying")
		}
		drain(m, first)
		if len(mock.Applied()) != 1 {
			t.Errorf("expected exactly one mutation, got %d", len(mock.Applied()))
		}
	})

	t.Run("failure is recorded and review continues", func(t *testing.T) {
		m, mock := review(t)
		mock.ApplyErrs[11] = &models.MutationError{Code: "invalid_parameters"}

		_, cmd := m.Update(keyPress("y"))
		drain(m, cmd)
		_, cmd = m.Update(keyPress("y"))
		drain(m, cmd)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		results := m.Results()
		if len(results) != 2 || results[0].Outcome != models.OutcomeFailed || results[1].Outcome != models.OutcomeApplied {
			t.Errorf("unexpected results %+v", results)
		}
		if !strings.Contains(m.View(), "Failed: 1") {
			t.Errorf("unexpected view:\n%s", m.View())
		}
	})

	t.Run("expired session stops review", func(t *testing.T) {
		m, mock := review(t)
		mock.ApplyErrs[11] = &models.AuthExpiredError{Service: models.MyAnimeList}

		_, cmd := m.Update(keyPress("y"))
		drain(m, cmd)

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if !errors.Is(m.Err(), models.ErrAuthExpired) {
			t.Errorf("expected auth expired, got %v", m.Err())
		}
		if len(m.Results()) != 1 {
			t.Errorf("expected one decided action, got %d", len(m.Results()))
		}
	})

	t.Run("ctrl+c ends review without deciding", func(t *testing.T) {
		m, mock := review(t)
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		if m.view != ResultView {
			t.Fatalf("expected result view, got %v", m.view)
		}
		if len(m.Results()) != 0 || len(mock.Applied()) != 0 {
			t.Error("nothing should be decided")
		}
	})
}

func TestItems(t *testing.T) {
	a := models.ProposedAction{
		Kind: models.UpdateRemoteEntry, Target: models.MyAnimeList, MediaKind: models.Episodic,
		ID: 11, Title: "Mushishi", Status: models.MALWatching, ReferenceProgress: 10, TargetProgress: models.Ptr(8),
	}

	item := actionItem{action: a}
	if item.Title() != "[update] Mushishi" {
		t.Errorf("Title() = %q", item.Title())
	}
	if want := "episodes 10 (MyAnimeList: 8) • Watching"; item.Description() != want {
		t.Errorf("Description() = %q, want %q", item.Description(), want)
	}

	a.TargetProgress = nil
	if !strings.Contains(actionItem{action: a}.Description(), "not on list") {
		t.Error("expected missing target progress")
	}

	failed := resultItem{result: tasks.ActionResult{Action: a, Outcome: models.OutcomeFailed, Err: errors.New("rejected")}}
	if failed.Title() != "✗ Mushishi" || failed.Description() != "rejected" {
		t.Errorf("unexpected failed item %q %q", failed.Title(), failed.Description())
	}
	declined := resultItem{result: tasks.ActionResult{Action: a, Outcome: models.OutcomeDeclined}}
	if declined.Title() != "- Mushishi" || declined.Description() != "declined" {
		t.Errorf("unexpected declined item %q %q", declined.Title(), declined.Description())
	}
}
