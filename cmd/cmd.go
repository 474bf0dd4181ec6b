// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand writes the config template and initializes the journal database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the sync journal",
		Action: r.Setup,
	}
}

// authCommand handles authorization and stored sessions
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "auth",
		Usage:     "Authorize with a list service",
		ArgsUsage: "<anilist|myanimelist>",
		Action:    r.Auth,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show stored sessions",
				Action: r.AuthStatus,
			},
			{
				Name:  "refresh",
				Usage: "Trade a stored refresh token for a new session",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "service"},
				},
				Action: r.AuthRefresh,
			},
			{
				Name:  "logout",
				Usage: "Remove a stored session, or all of them",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "service"},
				},
				Action: r.AuthLogout,
			},
		},
	}
}

// syncCommand reconciles MyAnimeList against AniList
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Propose and apply changes that bring MyAnimeList in line with AniList",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Apply every proposed change without asking",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print proposed changes without applying any",
			},
			&cli.BoolFlag{
				Name:  "journal",
				Usage: "Record the run in the sync journal",
			},
		},
		Action: r.Sync,
	}
}

// backupCommand writes AniList lists to disk
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Back up AniList lists (anime, manga or all)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Backup format: toml, json, yaml, csv or markdown",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"o"},
				Usage:   "Output directory",
			},
		},
		Action: r.Backup,
	}
}

// listCommand prints a normalized list
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print a service's list as lsx sees it",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "service"},
			&cli.StringArg{Name: "kind"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Write in a backup format instead of a table",
			},
		},
		Action: r.List,
	}
}

// historyCommand shows recent journaled runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent sync runs from the journal",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the actions of one run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive review.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"review", "ui"},
		Usage:   "Review proposed changes interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "kind"},
		},
		Action: r.TUI,
	}
}
