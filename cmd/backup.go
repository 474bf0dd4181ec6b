package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/formatter"
	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
	"github.com/desertthunder/lsx/internal/tasks"
)

// Backup fetches AniList lists and writes one file per media kind.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	kinds := []models.MediaKind{models.Episodic, models.Chaptered}
	if arg := cmd.StringArg("kind"); arg != "" && !strings.EqualFold(arg, "all") {
		kind, err := parseKind(arg)
		if err != nil {
			return err
		}
		kinds = []models.MediaKind{kind}
	}

	format := cmd.String("format")
	if format == "" {
		format = r.config.Backup.Format
	}
	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Backup.Directory
	}

	svc, err := r.service(models.AniList)
	if err != nil {
		return err
	}

	opts := tasks.BackupOpts{Format: f, Directory: dir, RateLimit: r.config.API.RequestsPerSecond}

	var results []tasks.BackupResult
	err = r.withReauth(ctx, func() error {
		session, err := r.store.Session(models.AniList)
		if err != nil {
			return err
		}
		results, err = tasks.BackupLists(ctx, nil, svc, session, kinds, opts)
		return err
	})

	for _, res := range results {
		if res.Err != nil {
			r.writePlain("✗ %s: %v\n", res.Kind, res.Err)
			continue
		}
		r.writePlain("✓ %s: %d entries → %s\n", res.Kind, res.Entries, res.Path)
	}
	return err
}

// List prints a service's normalized list, as a table or in a backup format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	name, err := models.ParseServiceName(cmd.StringArg("service"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}
	kind, err := parseKind(cmd.StringArg("kind"))
	if err != nil {
		return err
	}

	svc, err := r.service(name)
	if err != nil {
		return err
	}

	var list *models.ListModel
	err = r.withReauth(ctx, func() error {
		session, err := r.store.Session(name)
		if err != nil {
			return err
		}
		list, err = svc.FetchList(ctx, session, kind)
		return err
	})
	if err != nil {
		return err
	}

	if format := cmd.String("format"); format != "" {
		f, err := formatter.ParseFormat(format)
		if err != nil {
			return err
		}
		return formatter.Write(r.output, formatter.NewBackup(list), f)
	}

	table := formatter.Table{Headers: []string{"Status", "ID", "Cross ID", "Title", kind.ProgressNoun(), "Score"}}
	for _, e := range list.Entries() {
		crossRef := "-"
		if e.CrossRefID != nil {
			crossRef = fmt.Sprint(*e.CrossRefID)
		}
		status := e.Status.Label()
		if e.Repeating {
			status += " (repeating)"
		}
		table.Append(status, fmt.Sprint(e.ID), crossRef, e.Title, fmt.Sprint(e.ProgressOrZero()), fmt.Sprint(e.ScoreOrZero()))
	}
	if err := table.Render(r.output); err != nil {
		return err
	}
	return r.writePlainln("%s %s list: %d entries", name.Display(), kind, list.Len())
}
