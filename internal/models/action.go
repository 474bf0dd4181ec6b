package models

import "fmt"

// ActionKind discriminates a [ProposedAction].
type ActionKind int

const (
	NoOp ActionKind = iota
	CreateRemoteEntry
	UpdateRemoteEntry
)

func (k ActionKind) String() string {
	switch k {
	case CreateRemoteEntry:
		return "create"
	case UpdateRemoteEntry:
		return "update"
	default:
		return "noop"
	}
}

// ParseActionKind is the inverse of [ActionKind.String].
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "noop":
		return NoOp, nil
	case "create":
		return CreateRemoteEntry, nil
	case "update":
		return UpdateRemoteEntry, nil
	}
	return NoOp, fmt.Errorf("unknown action kind %q", s)
}

// ProposedAction is one corrective step against the target service.
//
// For [CreateRemoteEntry] the ID is the reference entry's cross-reference id, which is the
// creation key on the target. For [UpdateRemoteEntry] it is the target entry's local id. The two
// coincide because matching is by id equality. Actions are never persisted; the journal records
// outcomes as [SyncAction] values.
type ProposedAction struct {
	Kind      ActionKind
	Target    ServiceName
	MediaKind MediaKind
	ID        int
	Title     string

	Status    Status // mapped into the target vocabulary
	Progress  int
	Score     int // truncated toward zero
	Repeating bool

	// Display context for confirmation.
	ReferenceStatus   Status
	ReferenceProgress int
	TargetProgress    *int // nil when the target has no entry
}

// Summary renders the action on one line for prompts and logs.
func (a ProposedAction) Summary() string {
	target := "none"
	if a.TargetProgress != nil {
		target = fmt.Sprintf("%d", *a.TargetProgress)
	}
	return fmt.Sprintf("%s %q (id %d): %s %d (on %s: %s) -> %s",
		a.Kind, a.Title, a.ID, a.MediaKind.ProgressNoun(), a.ReferenceProgress,
		a.Target.Display(), target, a.Status.Label())
}
