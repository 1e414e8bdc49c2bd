package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/repositories"
	"github.com/desertthunder/shopx/internal/services"
	"github.com/desertthunder/shopx/internal/shared"
	"github.com/desertthunder/shopx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	catalog    services.Catalog
	auth       services.Authenticator
	db         *sql.DB
	sessions   *repositories.SessionStore
	views      *repositories.ViewPreference
	history    *repositories.SubmissionRepository
	engine     *tasks.CatalogEngine
	notices    chan tasks.Notice
	openURL    func(string) error
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	HTTPClient *http.Client
	Catalog    services.Catalog
	Auth       services.Authenticator
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a database the runner still serves API commands, but session, view and history commands report
// [shared.ErrServiceUnavailable].
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(context.Background(), opts.Config.API.Token, opts.Config.API.Timeout())
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)
	}
	if opts.Catalog == nil {
		opts.Catalog = services.NewCatalogService(opts.API)
	}
	if opts.Auth == nil {
		opts.Auth = services.NewConfigAuthenticator(opts.Config.Credentials)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		catalog:    opts.Catalog,
		auth:       opts.Auth,
		db:         opts.DB,
		notices:    make(chan tasks.Notice, 16),
		openURL:    shared.OpenBrowser,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	var recorder tasks.Recorder
	if opts.DB != nil {
		state := repositories.NewStateRepository(opts.DB)
		r.sessions = repositories.NewSessionStore(state)
		fallback, _ := models.ParseViewMode(opts.Config.UI.DefaultView)
		r.views = repositories.NewViewPreference(state, fallback)
		r.history = repositories.NewSubmissionRepository(opts.DB)
		recorder = repositories.NewSubmissionRecorder(r.history)
	}

	r.engine = tasks.NewCatalogEngine(opts.Catalog, tasks.EngineOpts{
		Recorder:  recorder,
		Notices:   r.notices,
		Logger:    opts.Logger,
		PageSize:  opts.Config.UI.PageSize,
		PageDelta: opts.Config.UI.PageDelta,
		Workers:   opts.Config.API.Workers,
		RateLimit: opts.Config.API.RateLimit,
	})

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, videosCommand, categoriesCommand, viewCommand, apiCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.engine != nil {
		r.engine.SetLogger(l)
	}
}

// requireSession returns the signed-in session. Catalog commands call it before touching the API.
func (r *Runner) requireSession() (*models.Session, error) {
	if r.sessions == nil {
		return nil, fmt.Errorf("%w: database not initialized, run 'shopx setup database'", shared.ErrServiceUnavailable)
	}

	sess, err := r.sessions.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("%w: run 'shopx auth login' first", shared.ErrNotAuthenticated)
	}
	return sess, nil
}

// drainNotices prints every notice queued by the engine so far.
func (r *Runner) drainNotices() {
	for {
		select {
		case n := <-r.notices:
			r.writePlain("%s\n", n)
		default:
			return
		}
	}
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
