package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/urfave/cli/v3"
)

type anchorRow struct {
	Key       string    `json:"key"`
	Offset    float64   `json:"offset"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnchorsList prints the saved scroll anchors, most recently updated first.
func (r *Runner) AnchorsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	anchors, err := repositories.NewAnchorRepository(db).List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]anchorRow, len(anchors))
		for i, a := range anchors {
			rows[i] = anchorRow{Key: a.Key(), Offset: a.Offset(), UpdatedAt: a.UpdatedAt()}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(anchors) == 0 {
		return r.writePlain("No saved scroll anchors\n")
	}
	r.writePlainHeader("Scroll Anchors")
	for _, a := range anchors {
		r.writePlain("%-32s %10.0f  %s\n", a.Key(), a.Offset(), a.UpdatedAt().Local().Format(time.DateTime))
	}
	return nil
}

// AnchorsClear deletes one anchor with --key, or all of them.
func (r *Runner) AnchorsClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewAnchorRepository(db)

	if key := cmd.String("key"); key != "" {
		if err := repo.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete anchor %q: %w", key, err)
		}
		r.logger.Info("scroll anchor deleted", "key", key)
		return r.writePlain("✓ Deleted anchor %s\n", key)
	}

	n, err := repo.Clear(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("scroll anchors cleared", "count", n)
	return r.writePlain("✓ Deleted %d anchors\n", n)
}
