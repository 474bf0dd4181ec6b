package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/tasks"
)

var (
	_ list.Item = actionItem{}
	_ list.Item = resultItem{}
)

// actionItem wraps [models.ProposedAction] to implement [list.Item].
type actionItem struct {
	action models.ProposedAction
}

func (i actionItem) FilterValue() string { return i.action.Title }
func (i actionItem) Title() string       { return fmt.Sprintf("[%s] %s", i.action.Kind, i.action.Title) }
func (i actionItem) Description() string {
	return fmt.Sprintf("%s %d (%s: %s) • %s", i.action.MediaKind.ProgressNoun(), i.action.ReferenceProgress,
		i.action.Target.Display(), targetProgress(i.action), i.action.Status.Label())
}

// resultItem wraps [tasks.ActionResult] to implement [list.Item].
type resultItem struct {
	result tasks.ActionResult
}

func (i resultItem) FilterValue() string { return i.result.Action.Title }
func (i resultItem) Title() string {
	switch i.result.Outcome {
	case models.OutcomeApplied:
		return "✓ " + i.result.Action.Title
	case models.OutcomeFailed:
		return "✗ " + i.result.Action.Title
	default:
		return "- " + i.result.Action.Title
	}
}
func (i resultItem) Description() string {
	if i.result.Err != nil {
		return i.result.Err.Error()
	}
	return string(i.result.Outcome)
}

func targetProgress(a models.ProposedAction) string {
	if a.TargetProgress == nil {
		return "not on list"
	}
	return fmt.Sprintf("%d", *a.TargetProgress)
}

func actionItems(actions []models.ProposedAction) []list.Item {
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = actionItem{action: a}
	}
	return items
}

func resultItems(results []tasks.ActionResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
