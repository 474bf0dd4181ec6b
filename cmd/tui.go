package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
	"github.com/desertthunder/lsx/internal/tasks"
	"github.com/desertthunder/lsx/internal/ui"
)

// ProgramFunc runs an interactive model until it quits.
type ProgramFunc func(ctx context.Context, model tea.Model) error

func runProgram(ctx context.Context, model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// TUI launches the interactive review screen for one media kind.
//
// An expired session ends the screen, re-authorizes that service and opens a fresh review.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	kind, err := parseKind(cmd.StringArg("kind"))
	if err != nil {
		return err
	}
	if _, err := r.engine(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.tuiLogPath())
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()

	return r.withReauth(ctx, func() error {
		sessions, err := r.sessions()
		if err != nil {
			return err
		}

		engine := tasks.NewSyncEngine(r.anilist, r.mal, fileLogger)
		model := ui.NewModel(ctx, engine, sessions, kind)
		if err := r.program(ctx, model); err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}

		var applied, declined, failed int
		for _, res := range model.Results() {
			switch res.Outcome {
			case models.OutcomeApplied:
				applied++
			case models.OutcomeDeclined:
				declined++
			case models.OutcomeFailed:
				failed++
			}
		}
		r.writePlain("Applied: %d  Declined: %d  Failed: %d\n", applied, declined, failed)
		return model.Err()
	})
}

// tuiLogPath places the review log beside the journal, or beside the session store when the
// journal is in memory.
func (r *Runner) tuiLogPath() string {
	dir := filepath.Dir(r.config.Sessions.Path)
	if p := r.config.Database.Path; p != "" && p != ":memory:" {
		dir = filepath.Dir(p)
	}
	return filepath.Join(dir, "lsx-tui.log")
}
