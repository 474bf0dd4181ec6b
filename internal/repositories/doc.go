// Package repositories implements the SQLite sync journal.
//
// A journal records each reconciliation pass as a [models.SyncRun] and every confirmed, declined,
// or failed action within it as a [models.SyncAction]. Proposed actions themselves are never
// persisted; only their outcomes are.
//
// Key Implementations:
//   - [SyncRunRepository] : passes with state and outcome tallies
//   - [SyncActionRepository] : per-action outcomes keyed by run
//   - [Journal] : the pair, as consumed by the sync engine
//
// Both repositories soft delete via deleted_at and exclude deleted rows by default.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
