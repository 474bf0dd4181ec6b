package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/formatter"
	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
	"github.com/desertthunder/lsx/internal/tasks"
)

// Sync plans one reconciliation pass and applies it through the selected confirmation policy.
//
// Without flags every action is confirmed at a y/N prompt. --yes approves all, --dry-run declines
// all. An expired session is re-authorized once and the pass reruns from a fresh fetch.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKind(cmd.StringArg("kind"))
	if err != nil {
		return err
	}

	yes, dryRun := cmd.Bool("yes"), cmd.Bool("dry-run")
	if yes && dryRun {
		return fmt.Errorf("%w: --yes and --dry-run are mutually exclusive", shared.ErrInvalidFlag)
	}

	var gate tasks.Confirmer
	switch {
	case yes:
		gate = tasks.AlwaysApprove
	case dryRun:
		gate = tasks.DenyAll
	default:
		gate = tasks.NewPromptConfirmer(r.input, r.output)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}
	if cmd.Bool("journal") {
		journal, err := r.openJournal()
		if err != nil {
			return err
		}
		engine.WithJournal(journal)
	}

	var result *tasks.SyncResult
	err = r.withReauth(ctx, func() error {
		sessions, err := r.sessions()
		if err != nil {
			return err
		}
		result, err = engine.Run(ctx, sessions, kind, gate, nil)
		return err
	})
	if result != nil {
		r.writeSyncSummary(result, dryRun)
	}
	return err
}

// engine wires AniList as reference and MyAnimeList as target.
func (r *Runner) engine() (*tasks.SyncEngine, error) {
	if _, err := r.service(models.AniList); err != nil {
		return nil, err
	}
	if _, err := r.service(models.MyAnimeList); err != nil {
		return nil, err
	}
	return tasks.NewSyncEngine(r.anilist, r.mal, r.logger), nil
}

// sessions loads both stored sessions.
func (r *Runner) sessions() (tasks.Sessions, error) {
	reference, err := r.store.Session(models.AniList)
	if err != nil {
		return tasks.Sessions{}, err
	}
	target, err := r.store.Session(models.MyAnimeList)
	if err != nil {
		return tasks.Sessions{}, err
	}
	return tasks.Sessions{Reference: reference, Target: target}, nil
}

func (r *Runner) writeSyncSummary(result *tasks.SyncResult, dryRun bool) {
	plan := result.Plan
	r.writePlainHeader(fmt.Sprintf("%s sync: %s → %s", plan.Kind, plan.Reference.Service.Display(), plan.Target.Service.Display()))

	if len(plan.Actions) == 0 {
		r.writePlain("✓ Lists already agree (%d entries compared)\n", plan.Reference.Len())
		return
	}

	noun := plan.Kind.ProgressNoun()
	table := formatter.Table{Headers: []string{"Action", "ID", "Title", noun, "Status", "Outcome"}}
	for _, res := range result.Results {
		a := res.Action
		outcome := string(res.Outcome)
		if dryRun {
			outcome = "planned"
		}
		if res.Err != nil {
			outcome = fmt.Sprintf("%s: %v", res.Outcome, res.Err)
		}
		table.Append(a.Kind.String(), fmt.Sprint(a.ID), a.Title, progressChange(a), a.Status.Label(), outcome)
	}
	if err := table.Render(r.output); err != nil {
		r.logger.Warn("failed to render summary", "err", err)
	}

	if dryRun {
		r.writePlainln("%d changes proposed, none applied (dry run)", len(plan.Actions))
		return
	}
	r.writePlainln("Applied: %d  Declined: %d  Failed: %d", result.Applied, result.Declined, result.Failed)
	if result.Run != nil {
		r.writePlain("Journaled as run %s\n", result.Run.ID())
	}
}

func progressChange(a models.ProposedAction) string {
	if a.TargetProgress == nil {
		return fmt.Sprintf("- → %d", a.Progress)
	}
	return fmt.Sprintf("%d → %d", *a.TargetProgress, a.Progress)
}

func parseKind(s string) (models.MediaKind, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: kind (anime or manga)", shared.ErrMissingArgument)
	}
	kind, err := models.ParseMediaKind(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return kind, nil
}
