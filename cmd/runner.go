package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/repositories"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/session"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	api        *services.APIService
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      *bufio.Reader

	store   session.TokenStore
	session *session.Session
	db      *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Store      session.TokenStore // nil opens the sqlite store named in the config
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
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
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout.Duration}
	}

	api := services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient).WithLogger(opts.Logger)

	return &Runner{
		config:     opts.Config,
		api:        api,
		catalog:    services.NewAcervoService(api),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      bufio.NewReader(opts.Input),
		store:      opts.Store,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "acervo",
		Usage:   "Browse and manage the Acervo Mestre resource catalog",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log every API request",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(r.logger, log.DebugLevel)
			}
			return ctx, nil
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, resourcesCommand, playlistsCommand, tagsCommand,
		usersCommand, apiCommand, tuiCommand, sandboxCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger of the runner and of the API client.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.api.WithLogger(l)
}

// Close releases the session database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// connect opens the session once and attaches it to the API client as token source.
func (r *Runner) connect() (*session.Session, error) {
	if r.session != nil {
		return r.session, nil
	}

	store := r.store
	if store == nil {
		db, err := shared.OpenSessionDatabase(r.config.Session.Database, r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		r.db = db
		store = repositories.NewTokenRepository(db)
	}

	s, err := session.Open(store, r.logger)
	if err != nil {
		return nil, err
	}
	r.api.WithTokenSource(s)
	r.session = s
	return s, nil
}

// client returns the catalog with the stored token attached, signed in or not.
func (r *Runner) client() (services.Catalog, error) {
	if _, err := r.connect(); err != nil {
		return nil, err
	}
	return r.catalog, nil
}

// requireUser returns the signed-in user, fetching the profile from the backend.
func (r *Runner) requireUser(ctx context.Context) (*models.User, error) {
	s, err := r.connect()
	if err != nil {
		return nil, err
	}
	if !s.Authenticated() {
		return nil, fmt.Errorf("%w: run 'acervo auth login' first", shared.ErrNotAuthenticated)
	}
	if u := s.User(); u != nil {
		return u, nil
	}
	return s.LoadProfile(ctx, r.catalog)
}

// requireStaff is [Runner.requireUser] restricted to managers and coordinators.
func (r *Runner) requireStaff(ctx context.Context) (*models.User, error) {
	u, err := r.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !r.session.Staff() {
		return nil, shared.NewValidationError("perfil", "Acesso restrito a gestores e coordenadores.", shared.ErrForbidden)
	}
	return u, nil
}

// confirmer asks on the terminal unless --yes was passed.
func (r *Runner) confirmer(cmd *cli.Command) tasks.ConfirmFunc {
	if cmd.Bool("yes") {
		return nil
	}
	return func(prompt string) bool {
		r.writePlain("%s [s/N] ", prompt)
		line, _ := r.input.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "s", "sim", "y", "yes":
			return true
		}
		return false
	}
}

// secret returns the flag value or reads one line from the input after prompting.
func (r *Runner) secret(cmd *cli.Command, flag, prompt string) string {
	if v := cmd.String(flag); v != "" {
		return v
	}
	r.writePlain("%s: ", prompt)
	line, _ := r.input.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// parseID reads the first positional argument as an id.
func parseID(cmd *cli.Command, name string) (int, error) {
	v := cmd.Args().Get(0)
	if v == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return models.ParseID(v)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
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
