package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/scrollstore"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive gallery over the configured item source.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.LogLevel))
	r.SetLogger(fileLogger)

	source, key, err := r.source(ctx)
	if err != nil {
		return err
	}
	if k := cmd.String("key"); k != "" {
		key = k
	}

	var store scrollstore.Store
	if db, err := r.database(); err == nil {
		store = repositories.NewAnchorRepository(db)
	} else {
		r.logger.Warn("scroll anchors will not persist", "error", err)
		store = scrollstore.NewMemoryStore()
	}

	opts := r.galleryOptions(source)
	model := ui.NewModel(ctx, ui.Options{
		Engine: gallery.New(opts),
		Store:  store,
		Saver:  scrollstore.NewSaver(store, r.config.Scroll.Debounce(), r.logger),
		Key:    key,
		Title:  "mosaic · " + key,
		Open:   r.opener(ctx),
		Smooth: opts.Layout.ReflowDuration,
		Logger: r.logger,
	})

	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// opener returns the enter-key action for the browser. Only catalogued items have a local file to
// open, so remote sources get none.
func (r *Runner) opener(ctx context.Context) func(gallery.Item) error {
	if r.config.Source.Remote() || r.db == nil {
		return nil
	}
	repo := repositories.NewMediaRepository(r.db)
	return func(item gallery.Item) error {
		media, err := repo.GetBySequence(ctx, item.ID)
		if err != nil {
			return err
		}
		return shared.OpenExternal(media.Path())
	}
}
