package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/desertthunder/mosaic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CatalogImport scans a directory and records every decodable image in the catalog.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	root := cmd.StringArg("dir")
	if root == "" {
		return fmt.Errorf("%w: directory to import", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	engine := tasks.NewImportEngine(repositories.NewMediaRepository(db), r.logger)

	r.logger.Info("starting import", "root", root)
	r.writePlain("Importing media from %s...\n", root)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	verbose := cmd.Bool("verbose")
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ScanFiles:
				r.writePlain("📂 %s\n", update.Message)
			case tasks.SaveMedia:
				if verbose {
					r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
				}
			}
		}
	}()

	result, err := engine.Import(ctx, progressCh, tasks.ImportOpts{
		Root:       root,
		Recursive:  cmd.Bool("recursive"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progressCh)
	<-done

	if result == nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete")
	r.writePlain("Root: %s\n", result.Root)
	r.writePlain("Imported: %d\n", result.Imported)
	r.writePlain("Already catalogued: %d\n", result.Skipped)
	r.writePlain("Failed: %d\n", result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailed files:\n")
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.Path, res.Error)
			}
		}
	}
	return err
}

// CatalogList prints catalogued media in insertion order.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewMediaRepository(db)

	media, err := repo.Page(ctx, cmd.Int64("after"), cmd.Int("limit"))
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if format == formatter.FormatJSON {
		return r.writeJSON(formatter.MediaRows(media), cmd.Bool("pretty"))
	}

	out, err := formatter.ExportMedia(formatter.MediaRows(media), format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if format == formatter.FormatTable {
		total, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		r.writePlain("\n%d of %d items\n", len(media), total)
	}
	return nil
}

// CatalogOpen opens a catalogued file with the system viewer.
func (r *Runner) CatalogOpen(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: item id %q", shared.ErrInvalidArgument, raw)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	item, err := repositories.NewMediaRepository(db).GetBySequence(ctx, seq)
	if err != nil {
		return err
	}

	r.logger.Info("opening media", "id", seq, "path", item.Path())
	return shared.OpenExternal(item.Path())
}
