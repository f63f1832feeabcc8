package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// DB is used instead of opening config.Database when set.
	DB *sql.DB
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, catalogCommand, layoutCommand, browseCommand, anchorsCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens the configured database on first use and applies pending migrations.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("database opened", "path", r.config.Database.Path)
	r.db = db
	return db, nil
}

// source builds the item source selected by the config: the remote item server when source.url
// is set, the local catalog otherwise. The returned key names the list for scroll anchors.
func (r *Runner) source(ctx context.Context) (gallery.Source, string, error) {
	cfg := r.config.Source
	if cfg.Remote() {
		client := r.httpClient
		if client == nil {
			client = services.NewBearerClient(ctx, cfg.Token)
		}
		api := services.NewAPIService(cfg.URL, client)
		return services.NewRemoteSource(api, cfg.PageSize, cfg.RateLimit, shared.WithLogger(r.logger, "source", cfg.URL)), "remote:" + cfg.URL, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, "", err
	}
	return repositories.NewCatalogSource(repositories.NewMediaRepository(db), cfg.PageSize), "catalog", nil
}

// galleryOptions converts the config into engine options.
func (r *Runner) galleryOptions(source gallery.Source) gallery.Options {
	l, t := r.config.Layout, r.config.Tiles
	return gallery.Options{
		Layout: gallery.LayoutConfig{
			Version:        1,
			BaseWidth:      l.BaseWidth,
			MinLanes:       l.MinLanes,
			MaxLanes:       l.MaxLanes,
			HorizontalGap:  l.HorizontalGap,
			VerticalGap:    l.VerticalGap,
			ExpandToFill:   l.ExpandToFill,
			ReflowDuration: l.Reflow(),
		},
		Tiles: gallery.TileConfig{
			MinTileHeight: t.MinTileHeight,
			FooterHeight:  t.FooterHeight,
			OverscanRows:  t.OverscanRows,
		},
		Source: source,
		Logger: shared.WithLogger(r.logger, "component", "gallery"),
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
