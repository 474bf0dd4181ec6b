package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	PlanView
	ReviewView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	engine   *tasks.SyncEngine
	sessions tasks.Sessions
	kind     models.MediaKind

	width  int
	height int

	plan       *tasks.Plan
	planList   list.Model
	resultList list.Model
	index      int
	applying   bool
	results    []tasks.ActionResult

	progressChan chan tasks.ProgressUpdate
	planDone     chan Msg
	progress     tasks.ProgressUpdate

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.SyncEngine, sessions tasks.Sessions, kind models.MediaKind) *Model {
	return &Model{
		ctx:      ctx,
		view:     LoadingView,
		engine:   engine,
		sessions: sessions,
		kind:     kind,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Results returns the outcome of every decided action so far.
func (m *Model) Results() []tasks.ActionResult {
	return append([]tasks.ActionResult(nil), m.results...)
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error { return m.err }

// Init starts fetching and reconciling both lists.
func (m *Model) Init() tea.Cmd {
	return m.startPlan()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		switch m.view {
		case PlanView, ReviewView:
			m.planList.SetSize(m.listSize())
		case ResultView:
			m.resultList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case PlanView:
			return m.handlePlanKeys(msg)
		case ReviewView:
			return m.handleReviewKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgPlanComplete:
		data := msg.data.(planResult)
		m.progressChan, m.planDone = nil, nil
		if data.err != nil {
			m.err = data.err
			m.showResults()
			return m, nil
		}
		m.plan = data.plan
		if len(m.plan.Actions) == 0 {
			m.showResults()
			return m, nil
		}
		m.planList = list.New(actionItems(m.plan.Actions), list.NewDefaultDelegate(), 0, 0)
		m.planList.Title = fmt.Sprintf("%d proposed changes to %s", len(m.plan.Actions), m.plan.Target.Service.Display())
		m.planList.SetSize(m.listSize())
		m.view = PlanView
		return m, nil

	case MsgActionApplied:
		data := msg.data.(applyResult)
		m.applying = false
		m.results = append(m.results, data.result)
		if data.err != nil {
			m.err = data.err
			m.showResults()
			return m, nil
		}
		m.index++
		if m.index >= len(m.plan.Actions) {
			m.showResults()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.review):
		m.index = 0
		m.view = ReviewView
		return m, nil
	}

	var cmd tea.Cmd
	m.planList, cmd = m.planList.Update(msg)
	return m, cmd
}

// handleReviewKeys is the confirmation gate. Only the exact key "y" approves; every other key,
// including "Y", declines the current action. ctrl+c stops reviewing without deciding the rest.
func (m *Model) handleReviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.applying {
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		m.showResults()
		return m, nil
	}

	approved := msg.String() == tasks.Affirmative
	m.applying = true
	return m, m.decide(m.plan.Actions[m.index], approved)
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlanView:
		m.planList, cmd = m.planList.Update(msg)
	case ResultView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) showResults() {
	m.resultList = list.New(resultItems(m.results), list.NewDefaultDelegate(), 0, 0)
	m.resultList.Title = "Results"
	m.resultList.SetSize(m.listSize())
	m.view = ResultView
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 0), max(m.height-8, 0)
}

func (m *Model) startPlan() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.planDone = make(chan Msg, 1)

	progress, done := m.progressChan, m.planDone
	go func() {
		plan, err := m.engine.Plan(m.ctx, m.sessions, m.kind, progress)
		close(progress)
		done <- planCompleteMsg(plan, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.planDone
	return func() tea.Msg {
		if progress == nil {
			return nil
		}
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

// decide runs one action through the engine with the user's decision as its gate.
func (m *Model) decide(action models.ProposedAction, approved bool) tea.Cmd {
	gate := tasks.ConfirmFunc(func(models.ProposedAction) bool { return approved })
	return func() tea.Msg {
		results, err := m.engine.Apply(m.ctx, m.sessions.Target, []models.ProposedAction{action}, gate, nil)
		result := tasks.ActionResult{Action: action, Outcome: models.OutcomeDeclined}
		if len(results) > 0 {
			result = results[0]
		}
		return actionAppliedMsg(result, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case PlanView:
		return m.renderPlan()
	case ReviewView:
		return m.renderReview()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("Reconciling %s lists", m.kind))

	var phase string
	switch m.progress.Phase {
	case tasks.FetchReference, tasks.FetchTarget:
		phase = "Fetching lists..."
	case tasks.ReconcilePhase:
		phase = "Comparing lists..."
	default:
		phase = "Starting..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderPlan() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.review, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.planList.View(), helpView)
}

func (m *Model) renderReview() string {
	action := m.plan.Actions[m.index]
	title := styles.title.Render(fmt.Sprintf("Change %d of %d", m.index+1, len(m.plan.Actions)))

	verb := "Update"
	if action.Kind == models.CreateRemoteEntry {
		verb = "Add to"
	}

	noun := action.MediaKind.ProgressNoun()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", action.Title)
	fmt.Fprintf(&b, "%s on %s: %d\n", noun, styles.service(m.plan.Reference.Service), action.ReferenceProgress)
	fmt.Fprintf(&b, "%s on %s: %s\n", noun, styles.service(action.Target), targetProgress(action))
	fmt.Fprintf(&b, "Status: %s", action.Status.Label())
	if action.Repeating {
		b.WriteString(" (repeating)")
	}
	card := styles.card.Render(b.String())

	prompt := fmt.Sprintf("%s %s?", verb, action.Target.Display())
	if m.applying {
		prompt = styles.warn.Render("Applying...")
	}

	hint := styles.help.Render("Only y applies. Any other key skips this change.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n\n%s", title, card, prompt, hint, helpView)
}

func (m *Model) renderResult() string {
	var applied, declined, failed int
	for _, r := range m.results {
		switch r.Outcome {
		case models.OutcomeApplied:
			applied++
		case models.OutcomeDeclined:
			declined++
		case models.OutcomeFailed:
			failed++
		}
	}

	var header string
	switch {
	case m.err != nil:
		header = styles.err.Render(fmt.Sprintf("Sync stopped: %v", m.err))
	case m.plan != nil && len(m.plan.Actions) == 0:
		header = styles.ok.Render("✓ Lists already agree")
	default:
		header = styles.ok.Render("✓ Review complete")
	}

	summary := fmt.Sprintf("\nApplied: %d  Skipped: %d  Failed: %d", applied, declined, failed)
	if failed > 0 {
		summary += "\n" + styles.warn.Render(fmt.Sprintf("%d changes were rejected by the target service", failed))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	if len(m.results) == 0 {
		return fmt.Sprintf("%s\n%s\n\n%s", header, summary, helpView)
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, summary, m.resultList.View(), helpView)
}
