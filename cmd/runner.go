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
	"github.com/desertthunder/kwscan/internal/collector"
	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/repositories"
	"github.com/desertthunder/kwscan/internal/services"
	"github.com/desertthunder/kwscan/internal/shared"
	"github.com/desertthunder/kwscan/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     tasks.Searcher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	maxCores   int
	collect    func(string) (models.FileSet, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     tasks.Searcher // Defaults to a [services.SearchClient] built from Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	MaxCores   int
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.MaxCores < 1 {
		opts.MaxCores = shared.MaxCores()
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		maxCores:   opts.MaxCores,
		collect:    collector.Collect,
	}
	if r.client == nil {
		r.client = r.newSearchClient()
	}
	return r
}

func (r *Runner) newSearchClient() *services.SearchClient {
	return services.NewSearchClient(services.SearchClientOpts{
		BaseURL:          r.config.Server.URL,
		HTTPClient:       r.httpClient,
		Token:            r.config.Server.Token,
		ProgressInterval: r.config.Server.ProgressInterval(),
		Logger:           r.logger,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		searchCommand, tuiCommand, coresCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before applies global flags ahead of any command action.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and the search client it owns.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if _, ok := r.client.(*services.SearchClient); ok {
		r.client = r.newSearchClient()
	}
}

// newOrchestrator builds an orchestrator, recording history when save is set or configured.
//
// The returned close function releases the history database, if one was opened.
func (r *Runner) newOrchestrator(save bool) (*tasks.Orchestrator, func(), error) {
	opts := tasks.OrchestratorOpts{
		Client:   r.client,
		Logger:   r.logger,
		MaxCores: r.maxCores,
	}
	closeFn := func() {}

	if save || r.config.Search.History {
		db, err := r.openDatabase()
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = repositories.NewHistoryAdapter(repositories.NewSearchRepository(db))
		closeFn = func() { db.Close() }
	}

	return tasks.NewOrchestrator(opts), closeFn, nil
}

func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// defaultWorkers is the configured worker count, or the built-in default.
func (r *Runner) defaultWorkers() int {
	if n := r.config.Search.NumWorkers; n > 0 {
		return tasks.ClampWorkers(n, r.maxCores)
	}
	return tasks.DefaultWorkerCount(r.maxCores)
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
