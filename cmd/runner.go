package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tuniverse/tvx/internal/repositories"
	"github.com/tuniverse/tvx/internal/services"
	"github.com/tuniverse/tvx/internal/shared"
	"github.com/tuniverse/tvx/internal/tasks"
	"github.com/tuniverse/tvx/internal/tokens"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	client     services.Client
	api        *services.APIService
	store      *tokens.Store
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.PassportEngine
	snapshots  *repositories.PassportRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Client     services.Client
	API        *services.APIService
	Store      *tokens.Store
	Snapshots  *repositories.PassportRepository
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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
	if opts.Store == nil {
		opts.Store = tokens.NewStore(nil)
	}

	// A typed nil repository must not become a non-nil SnapshotStore.
	var snapshotStore tasks.SnapshotStore
	if opts.Snapshots != nil {
		snapshotStore = opts.Snapshots
	}
	engine := tasks.NewPassportEngine(opts.Client, opts.API, snapshotStore)

	return &Runner{
		config:     opts.Config,
		client:     opts.Client,
		api:        opts.API,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     engine,
		snapshots:  opts.Snapshots,
	}
}

// SetLogger swaps the runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, playlistsCommand, passportCommand, historyCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireToken restores the persisted session and returns its access token.
// The precondition is checked before any network call is attempted.
func (r *Runner) requireToken() (string, error) {
	token := r.store.Restore("")
	if !token.Present() {
		return "", fmt.Errorf("%w: run 'tvx auth login' first", shared.ErrNotAuthenticated)
	}
	return token.AccessToken, nil
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
