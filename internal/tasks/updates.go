package tasks

import (
	"fmt"

	"github.com/desertthunder/lsx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchReference Phase = iota
	FetchTarget
	ReconcilePhase
	Confirm
	Apply
	Backup
)

func (p Phase) String() string {
	switch p {
	case FetchReference:
		return "fetch_reference"
	case FetchTarget:
		return "fetch_target"
	case ReconcilePhase:
		return "reconcile"
	case Confirm:
		return "confirm"
	case Apply:
		return "apply"
	case Backup:
		return "backup"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchUpdate(phase Phase, service models.ServiceName, kind models.MediaKind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s list from %s...", kind, service.Display()),
	}
}

func fetchedUpdate(phase Phase, m *models.ListModel) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d entries from %s", m.Len(), m.Service.Display()),
		Data:    m,
	}
}

func reconcileUpdate(actions []models.ProposedAction) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcilePhase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d entries need changes", len(actions)),
		Data:    actions,
	}
}

func confirmUpdate(step, total int, action models.ProposedAction) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Confirm,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, action.Summary()),
		Data:    action,
	}
}

func appliedUpdate(step, total int, result ActionResult) ProgressUpdate {
	var message string
	switch result.Outcome {
	case models.OutcomeApplied:
		message = fmt.Sprintf("[%d/%d] ✓ %s", step, total, result.Action.Title)
	case models.OutcomeDeclined:
		message = fmt.Sprintf("[%d/%d] - %s (skipped)", step, total, result.Action.Title)
	default:
		message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, result.Action.Title, result.Err)
	}
	return ProgressUpdate{
		Phase:   Apply,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result,
	}
}

func backupUpdate(step, total int, result BackupResult) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] ✓ %s %s (%d entries) -> %s", step, total, result.Service.Display(), result.Kind, result.Entries, result.Path)
	if result.Err != nil {
		message = fmt.Sprintf("[%d/%d] ✗ %s %s: %v", step, total, result.Service.Display(), result.Kind, result.Err)
	}
	return ProgressUpdate{
		Phase:   Backup,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result,
	}
}
