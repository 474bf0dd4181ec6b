package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/repositories"
	"github.com/desertthunder/lsx/internal/services"
	"github.com/desertthunder/lsx/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *shared.SessionStore
	anilist    services.Service
	mal        services.Updater
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	browser    func(string) error
	program    ProgramFunc
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Services left nil are built from the loaded configuration.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Store       *shared.SessionStore
	AniList     services.Service
	MyAnimeList services.Updater
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	Browser     func(string) error
	Program     ProgramFunc
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}
	if opts.Program == nil {
		opts.Program = runProgram
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		anilist:    opts.AniList,
		mal:        opts.MyAnimeList,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		browser:    opts.Browser,
		program:    opts.Program,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "lsx",
		Usage:   "Bring a MyAnimeList list into agreement with AniList",
		Version: "0.3.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, syncCommand, backupCommand, listCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads configuration and builds whatever dependencies were not injected.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config == nil || cmd.IsSet("config") {
		r.configPath = cmd.String("config")
		config, err := shared.LoadConfigOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if r.store == nil {
		store, err := shared.NewSessionStore(r.config.Sessions.Path)
		if err != nil {
			return ctx, err
		}
		r.store = store
	}

	r.buildServices()
	return ctx, nil
}

// buildServices creates the service clients for every configured OAuth client.
func (r *Runner) buildServices() {
	api := services.NewAPIClient(r.httpClient, r.config.API.RequestsPerSecond)

	if r.anilist == nil && r.config.Credentials.AniList.Configured() {
		if svc, err := services.NewAniListService(r.config.Credentials.AniList, api); err != nil {
			r.logger.Warn("AniList client not available", "err", err)
		} else {
			r.anilist = svc
		}
	}

	if r.mal == nil && r.config.Credentials.MyAnimeList.Configured() {
		if svc, err := services.NewMALService(r.config.Credentials.MyAnimeList, api, r.config.API.PageSize); err != nil {
			r.logger.Warn("MyAnimeList client not available", "err", err)
		} else {
			r.mal = svc
		}
	}
}

// service returns the client for name or explains which credentials are missing.
func (r *Runner) service(name models.ServiceName) (services.Service, error) {
	switch name {
	case models.AniList:
		if r.anilist != nil {
			return r.anilist, nil
		}
		return nil, fmt.Errorf("%w: set credentials.anilist or %s/%s", shared.ErrMissingCredentials, shared.EnvAniListClientID, shared.EnvAniListSecret)
	case models.MyAnimeList:
		if r.mal != nil {
			return r.mal, nil
		}
		return nil, fmt.Errorf("%w: set credentials.myanimelist or %s", shared.ErrMissingCredentials, shared.EnvMALClientID)
	}
	return nil, fmt.Errorf("%w: unknown service %q", shared.ErrInvalidArgument, name)
}

func (r *Runner) credentials(name models.ServiceName) shared.ClientConfig {
	if name == models.AniList {
		return r.config.Credentials.AniList
	}
	return r.config.Credentials.MyAnimeList
}

// openJournal opens and migrates the sync journal. The connection is reused until [Runner.Close].
func (r *Runner) openJournal() (*repositories.Journal, error) {
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, err
		}
		r.db = db
	}
	return repositories.NewJournal(r.db), nil
}

// Close releases the journal connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// withReauth runs fn and, if a session was rejected as expired, re-authorizes that service once
// and runs fn again against freshly fetched state.
func (r *Runner) withReauth(ctx context.Context, fn func() error) error {
	err := fn()

	var expired *models.AuthExpiredError
	if !errors.As(err, &expired) {
		return err
	}

	r.logger.Warn("session expired, re-authorizing", "service", expired.Service)
	r.writePlain("! %s session expired\n", expired.Service.Display())
	if _, err := r.authorize(ctx, expired.Service); err != nil {
		return err
	}
	return fn()
}

func (r *Runner) writeJSON(data any) error {
	output, err := shared.MarshalJSON(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
