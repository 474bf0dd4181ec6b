// Package ui implements an interactive sync review using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for one reconciliation pass:
//  1. [LoadingView] : Fetch both lists and reconcile, with live progress updates
//  2. [PlanView] : Browse every proposed action before deciding
//  3. [ReviewView] : Decide one action at a time; only y applies, any other key skips
//  4. [ResultView] : The outcome of every action, failures with their upstream message
//
// The review screen is a confirmation gate: each decision runs through [tasks.SyncEngine.Apply]
// for that single action, and the next action is shown only after the previous write returns.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Keyboard navigation uses vim-style bindings (j/k, enter, y, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
