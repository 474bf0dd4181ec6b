package tasks

import (
	"fmt"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/vocabulary"
)

// Reconcile compares reference (the source of truth) with target and returns the actions that
// bring target into agreement, in reference partition order then entry order.
//
// Entries without a cross-reference id are skipped. Matching is by cross-reference id equal to
// the target's local id, never by title. Only a progress difference triggers an update;
// status and score ride along. An absent progress reads as zero on either side.
//
// The only error is [models.UnmappedStatusError], which aborts the whole pass.
func Reconcile(reference, target *models.ListModel, kind models.MediaKind) ([]models.ProposedAction, error) {
	if reference.Kind != kind || target.Kind != kind {
		return nil, fmt.Errorf("cannot reconcile %s with %s lists as %s", reference.Kind, target.Kind, kind)
	}

	var actions []models.ProposedAction
	for _, entry := range reference.Entries() {
		if entry.CrossRefID == nil {
			continue
		}

		mapping, err := vocabulary.Forward(entry.Status, kind)
		if err != nil {
			return nil, err
		}

		id := *entry.CrossRefID
		progress := entry.ProgressOrZero()
		action := models.ProposedAction{
			Kind:              models.CreateRemoteEntry,
			Target:            target.Service,
			MediaKind:         kind,
			ID:                id,
			Title:             entry.Title,
			Status:            mapping.Status,
			Progress:          progress,
			Score:             vocabulary.Score(entry.Score),
			Repeating:         mapping.Repeating,
			ReferenceStatus:   entry.Status,
			ReferenceProgress: progress,
		}

		if existing, ok := target.Lookup(id); ok {
			current := existing.ProgressOrZero()
			if current == progress {
				continue
			}
			action.Kind = models.UpdateRemoteEntry
			action.TargetProgress = models.Ptr(current)
		}

		actions = append(actions, action)
	}
	return actions, nil
}
