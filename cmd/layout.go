package main

import (
	"context"
	"fmt"
	"math"

	"github.com/desertthunder/mosaic/internal/formatter"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/urfave/cli/v3"
)

// LayoutExport computes the grid for a container width and prints or saves the placements.
func (r *Runner) LayoutExport(ctx context.Context, cmd *cli.Command) error {
	width := cmd.Float("width")
	if width <= 0 {
		return fmt.Errorf("%w: --width must be positive", shared.ErrInvalidArgument)
	}
	limit := cmd.Int("limit")
	format := cmd.String("format")
	output := cmd.String("output")

	source, key, err := r.source(ctx)
	if err != nil {
		return err
	}

	engine := gallery.New(r.galleryOptions(source))
	engine.SetContainerWidth(width)
	if err := loadAll(ctx, engine, limit); err != nil {
		return err
	}
	r.logger.Info("layout computed", "source", key, "items", engine.Len(), "lanes", engine.Layout().Lanes)

	export := formatter.NewLayoutExport(engine, width)
	if output != "" {
		if err := formatter.WriteLayoutExport(export, format, output); err != nil {
			return err
		}
		return r.writePlain("✓ Layout of %d items written to %s\n", len(export.Tiles), output)
	}

	data, err := formatter.ExportLayout(export, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadAll drives the engine's paginator with an unbounded viewport until limit items are loaded
// or the source runs out. limit <= 0 loads everything.
func loadAll(ctx context.Context, engine *gallery.Engine, limit int) error {
	engine.SetViewport(math.Inf(1))
	for limit <= 0 || engine.Len() < limit {
		fetch := engine.CheckPagination()
		if fetch == nil {
			break
		}
		if err := engine.ApplyPage(fetch(ctx)); err != nil {
			return err
		}
	}
	if limit > 0 && engine.Len() > limit {
		engine.SetItems(engine.Items()[:limit], nil)
	}
	return nil
}
