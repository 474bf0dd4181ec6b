package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/formatter"
	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/repositories"
	"github.com/desertthunder/lsx/internal/shared"
)

// Setup writes the config template if none exists, then initializes the journal database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = cmd.String("config")
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}
	r.config = config

	r.logger.Info("initializing database", "path", config.Database.Path)
	if _, err := r.openJournal(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	statuses, err := shared.MigrationStatuses(r.db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Journal ready at %s (%d migrations)\n", config.Database.Path, len(statuses))

	if !config.Credentials.AniList.Configured() || !config.Credentials.MyAnimeList.Configured() {
		r.writePlainln("Next steps:")
		r.writePlain("1. Fill in [credentials.anilist] and [credentials.myanimelist] in %s\n", configPath)
		r.writePlain("2. Run 'lsx auth anilist' and 'lsx auth myanimelist'\n")
	}
	return nil
}

// runView is the JSON shape of a journaled run.
type runView struct {
	ID         string     `json:"id"`
	Reference  string     `json:"reference"`
	Target     string     `json:"target"`
	Kind       string     `json:"kind"`
	State      string     `json:"state"`
	Proposed   int        `json:"proposed"`
	Applied    int        `json:"applied"`
	Declined   int        `json:"declined"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newRunView(run *models.SyncRun) runView {
	return runView{
		ID:         run.ID(),
		Reference:  string(run.Reference()),
		Target:     string(run.Target()),
		Kind:       run.Kind().String(),
		State:      string(run.State()),
		Proposed:   run.Proposed(),
		Applied:    run.Applied(),
		Declined:   run.Declined(),
		Failed:     run.Failed(),
		Error:      run.ErrMessage(),
		StartedAt:  run.CreatedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

// History prints recent journaled runs, or the actions of one run with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	journal, err := r.openJournal()
	if err != nil {
		return err
	}

	if id := cmd.String("run"); id != "" {
		return r.historyActions(journal, id)
	}

	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", shared.ErrInvalidFlag)
	}

	runs, err := journal.Recent(limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]runView, len(runs))
		for i, run := range runs {
			views[i] = newRunView(run)
		}
		return r.writeJSON(views)
	}

	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded. Use 'lsx sync --journal'.\n")
	}

	table := formatter.Table{Headers: []string{"Run", "Started", "Kind", "State", "Proposed", "Applied", "Declined", "Failed"}}
	for _, run := range runs {
		table.Append(
			run.ID(),
			run.CreatedAt().Local().Format(time.DateTime),
			run.Kind().String(),
			string(run.State()),
			fmt.Sprint(run.Proposed()),
			fmt.Sprint(run.Applied()),
			fmt.Sprint(run.Declined()),
			fmt.Sprint(run.Failed()),
		)
	}
	return table.Render(r.output)
}

func (r *Runner) historyActions(journal *repositories.Journal, runID string) error {
	run, err := journal.Runs.Get(runID)
	if err != nil {
		return err
	}
	actions, err := journal.Actions.List(map[string]any{"run_id": runID})
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Run %s (%s, %s)", run.ID(), run.Kind(), run.State()))
	table := formatter.Table{Headers: []string{"Action", "ID", "Title", "Progress", "Outcome", "Error"}}
	for _, a := range actions {
		pa := a.Action()
		table.Append(pa.Kind.String(), fmt.Sprint(pa.ID), pa.Title, fmt.Sprint(pa.Progress), string(a.Outcome()), a.ErrorMessage())
	}
	return table.Render(r.output)
}
