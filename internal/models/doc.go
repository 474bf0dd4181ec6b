// Package models defines the domain entities shared by every lsx package.
//
// The package contains three categories of types:
//
// 1. List model: the normalized, in-memory shape of one service's list
//   - [MediaKind] : episodic (anime) vs. chaptered (manga) mode for a pass
//   - [Status] : a status value from either service's vocabulary
//   - [Entry] : one list entry with its optional cross-reference id
//   - [ListModel] : entries partitioned by status, partitions independently addressable
//
// 2. Sync values: produced and consumed within one reconciliation pass
//   - [ProposedAction] : create/update request against the target service
//   - [Session] : the authorized session for one service
//
// 3. Persistent entities: sync journal records with full lifecycle management
//   - [SyncRun] : one reconciliation pass and its outcome counters
//   - [SyncAction] : one proposed action and what happened to it
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation,
// and soft delete support. The Repository[T] interface defines standard CRUD operations for database access.
package models
