package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytq/internal/documents"
	"github.com/desertthunder/ytq/internal/repositories"
	"github.com/desertthunder/ytq/internal/services"
	"github.com/desertthunder/ytq/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store and the provider are opened on first use so that setup commands run without credentials.
type Runner struct {
	config      *shared.Config
	store       *repositories.Store
	provider    services.Provider
	transcripts services.TranscriptFetcher
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openBrowser func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Store       *repositories.Store
	Provider    services.Provider
	Transcripts services.TranscriptFetcher
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenBrowser func(url string) error
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
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}
	if opts.Transcripts == nil {
		opts.Transcripts = services.NewTranscriptService("", opts.HTTPClient)
	}

	return &Runner{
		config:      opts.Config,
		store:       opts.Store,
		provider:    opts.Provider,
		transcripts: opts.Transcripts,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		channelCommand, playlistCommand, watchCommand, syncCommand, videoCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Store returns the configured store, connecting on first use.
//
// A mongodb:// URI selects the document backend, anything else is a SQLite path
// migrated to the latest schema on open.
func (r *Runner) Store(ctx context.Context) (*repositories.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	db := r.config.Database
	if db.IsMongo() {
		r.logger.Debug("connecting to mongodb", "database", db.Name)
		store, err := documents.NewStore(ctx, db.URI, db.Name, uint64(max(db.MaxOpenConns, 0)), uint64(max(db.MaxIdleConns, 0)))
		if err != nil {
			return nil, err
		}
		r.store = store
		return store, nil
	}

	r.logger.Debug("opening sqlite database", "path", db.URI)
	conn, err := shared.NewDatabase(db.URI)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(conn, db.MaxOpenConns, db.MaxIdleConns)

	applied, err := shared.RunMigrations(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}

	r.store = repositories.NewSQLiteStore(conn)
	return r.store, nil
}

// Provider returns the YouTube Data API client, creating it on first use.
func (r *Runner) Provider(ctx context.Context) (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	yt, err := services.NewYouTubeService(ctx, services.YouTubeOptions{
		APIKey:            r.config.YouTube.APIKey,
		RequestsPerSecond: r.config.YouTube.RequestsPerSecond,
		MaxRetries:        r.config.YouTube.MaxRetries,
		HTTPClient:        r.httpClient,
		Logger:            r.logger,
	})
	if err != nil {
		return nil, err
	}
	r.provider = yt
	return yt, nil
}

// Close releases the store, if one was opened.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
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

// errorEnvelope is printed to stderr when a command fails.
type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeError renders err as the JSON error envelope on w.
func writeError(w io.Writer, err error) {
	data, mErr := json.MarshalIndent(errorEnvelope{Status: "error", Message: err.Error()}, "", "  ")
	if mErr != nil {
		fmt.Fprintf(w, "{\"status\":\"error\",\"message\":%q}\n", err.Error())
		return
	}
	fmt.Fprintf(w, "%s\n", data)
}
