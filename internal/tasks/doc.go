// Package tasks reconciles a target list service against a reference service with real-time
// progress reporting.
//
// # Core Operations
//
//  1. [Reconcile] : pure comparison of two [models.ListModel] values
//     - Skips entries without a cross-reference id
//     - Matches by cross-reference id against the target's local id
//     - Emits create for missing entries, update when progress differs
//
//  2. [SyncEngine.Plan] and [SyncEngine.Apply] : fetch, reconcile, confirm, write
//     - Both lists are fetched concurrently and must complete before reconciling
//     - Each action passes through a [Confirmer] before it is written
//     - A rejected mutation never blocks the remaining actions
//
//  3. [BackupLists] : fetch lists and write them through the formatter backup sink
//
// # Confirmation
//
// [Confirmer] is a synchronous callback. [PromptConfirmer] reads one console line per action,
// [AlwaysApprove] and [DenyAll] are the non-interactive policies, and the review TUI in
// package ui provides an interactive one.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for
// advanced UI rendering. Updates use select with default to prevent blocking.
//
// # Journal
//
// The optional [Journal] interface records each pass and every action outcome. Journal errors
// are logged and never fail a sync.
package tasks
