package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/lsx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgPlanComplete
	MsgActionApplied
)

type planResult struct {
	plan *tasks.Plan
	err  error
}

type applyResult struct {
	result tasks.ActionResult
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// planCompleteMsg is the constructor for [MsgPlanComplete]
func planCompleteMsg(plan *tasks.Plan, err error) Msg {
	return Msg{kind: MsgPlanComplete, data: planResult{plan, err}}
}

// actionAppliedMsg is the constructor for [MsgActionApplied]
func actionAppliedMsg(result tasks.ActionResult, err error) Msg {
	return Msg{kind: MsgActionApplied, data: applyResult{result, err}}
}
