package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/auth"
	"github.com/desertthunder/lsx/internal/formatter"
	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
)

// Auth runs the full authorization handshake for one service and stores the session.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("%w: service (anilist or myanimelist)", shared.ErrMissingArgument)
	}
	name, err := models.ParseServiceName(arg)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	session, err := r.authorize(ctx, name)
	if err != nil {
		return err
	}

	if session.UserName != "" {
		return r.writePlain("✓ Authorized with %s as %s\n", name.Display(), session.UserName)
	}
	return r.writePlain("✓ Authorized with %s\n", name.Display())
}

// authorize performs the handshake and persists the resulting session.
func (r *Runner) authorize(ctx context.Context, name models.ServiceName) (*models.Session, error) {
	svc, err := r.service(name)
	if err != nil {
		return nil, err
	}

	creds := r.credentials(name)
	flow, err := auth.NewFlow(svc, r.config.Server.Addr(), creds.RedirectURI, r.config.Server.RedirectTimeout(), r.logger, r.output)
	if err != nil {
		return nil, err
	}
	flow.WithBrowser(r.browser)

	session, err := flow.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.store.Save(name, session); err != nil {
		return nil, err
	}
	r.logger.Info("session saved", "service", name, "path", r.store.Path)
	return session, nil
}

// AuthStatus prints which services have a stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sessions, err := r.store.Load()
	if err != nil {
		return err
	}

	table := formatter.Table{Headers: []string{"Service", "Status", "User", "Refreshable"}}
	for _, name := range []models.ServiceName{models.AniList, models.MyAnimeList} {
		session := sessions.Get(name)
		if !session.Valid() {
			table.Append(name.Display(), "✗ not authorized", "-", "-")
			continue
		}

		user := "-"
		if session.UserName != "" {
			user = session.UserName
		} else if session.UserID != 0 {
			user = fmt.Sprintf("#%d", session.UserID)
		}
		refreshable := "no"
		if session.RefreshToken != "" {
			refreshable = "yes"
		}
		table.Append(name.Display(), "✓ authorized", user, refreshable)
	}

	return table.Render(r.output)
}

// AuthRefresh trades a stored refresh token for a new session.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	name, err := models.ParseServiceName(cmd.StringArg("service"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMissingArgument, err)
	}

	svc, err := r.service(name)
	if err != nil {
		return err
	}

	current, err := r.store.Session(name)
	if err != nil {
		return err
	}
	if current.RefreshToken == "" {
		return fmt.Errorf("%w: %s", shared.ErrNoRefreshToken, name.Display())
	}

	session, err := svc.Refresh(ctx, current)
	if err != nil {
		return err
	}
	if session.UserID == 0 && session.UserName == "" {
		session.UserID, session.UserName = current.UserID, current.UserName
	}

	if err := r.store.Save(name, session); err != nil {
		return err
	}
	r.logger.Info("session refreshed", "service", name)
	return r.writePlain("✓ Refreshed %s session\n", name.Display())
}

// AuthLogout removes one stored session, or every session without an argument.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.StringArg("service")
	if arg == "" {
		if err := r.store.Clear(""); err != nil {
			return err
		}
		return r.writePlain("✓ Removed all sessions\n")
	}

	name, err := models.ParseServiceName(arg)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := r.store.Clear(name); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s session\n", name.Display())
}
