package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/wicket/internal/repositories"
	"github.com/desertthunder/wicket/internal/services"
	"github.com/desertthunder/wicket/internal/shared"
	"github.com/desertthunder/wicket/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	preset     bool
	fetcher    services.MatchFetcher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A non-nil Config is used as-is and the config file is never read.
// Fetcher replaces the Cricbuzz client.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Fetcher    services.MatchFetcher
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	preset := opts.Config != nil
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
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		preset:     preset,
		fetcher:    opts.Fetcher,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		dashboardCommand, fetchCommand, historyCommand, setupCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file (unless one was injected), applies .env
// overrides and validates the result.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.IsSet("config") || r.configPath == "" {
		r.configPath = cmd.String("config")
	}

	if !r.preset {
		config, err := shared.LoadConfig(r.configPath)
		switch {
		case err == nil:
			r.config = config
		case errors.Is(err, shared.ErrMissingConfig):
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		default:
			return ctx, err
		}
	}

	if err := r.config.ApplyEnv(cmd.String("env-file")); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// matchID picks the --match flag over the configured match.
func (r *Runner) matchID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.String("match"))
	if id == "" {
		id = r.config.Sync.MatchID
	}
	if id == "" {
		return "", errors.WithHint(
			errors.Wrap(shared.ErrMissingArgument, "no match id"),
			"pass --match or set sync.match_id",
		)
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return "", errors.Wrapf(shared.ErrInvalidArgument, "match id %q is not numeric", id)
		}
	}
	return id, nil
}

// newFetcher returns the injected fetcher or a Cricbuzz client built from the config.
func (r *Runner) newFetcher() (services.MatchFetcher, error) {
	if r.fetcher != nil {
		return r.fetcher, nil
	}
	if err := r.config.RequireCredentials(); err != nil {
		return nil, err
	}

	p := r.config.Provider
	return services.NewCricbuzzClient(services.ClientOpts{
		BaseURL:    p.BaseURL,
		APIKey:     p.APIKey,
		APIHost:    p.APIHost,
		Timeout:    p.Timeout.Duration,
		RateLimit:  p.RateLimit,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "component", "cricbuzz"),
	}), nil
}

// openJournal opens the journal database when enabled. The returned closer is never nil.
func (r *Runner) openJournal() (tasks.Journal, func(), error) {
	if !r.config.Database.Journal {
		return nil, func() {}, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, func() {}, err
	}
	repo := repositories.NewFetchAttemptRepository(db)
	return repositories.NewJournalAdapter(repo, repositories.DefaultJournalSize), func() { db.Close() }, nil
}

// openRepository opens the journal database for reading.
func (r *Runner) openRepository() (*repositories.FetchAttemptRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewFetchAttemptRepository(db), db, nil
}

// newEngine wires an engine for matchID from the config.
func (r *Runner) newEngine(matchID string, auto bool, journal tasks.Journal) (*tasks.Engine, error) {
	fetcher, err := r.newFetcher()
	if err != nil {
		return nil, err
	}

	s := r.config.Sync
	return tasks.NewEngine(tasks.EngineOpts{
		Fetcher: fetcher,
		Policy: tasks.RetryPolicy{
			Interval:    s.Interval.Duration,
			Cap:         s.BackoffCap.Duration,
			MaxAttempts: s.MaxRetryAttempts,
		},
		MatchID:     matchID,
		AutoRefresh: auto,
		QueueSize:   s.QueueSize,
		Journal:     journal,
		Logger:      shared.WithLogger(r.logger, "component", "engine"),
	})
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
		return errors.Wrap(err, "failed to marshal JSON")
	}

	return r.write(append(output, '\n'))
}

func (r *Runner) write(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return errors.Wrap(err, "failed to write output")
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	return r.write([]byte(fmt.Sprintf(format, args...)))
}
