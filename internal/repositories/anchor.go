package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// AnchorRepository persists [models.ScrollAnchor] records, one per key.
//
// It satisfies scrollstore.Store through [AnchorRepository.Save] and [AnchorRepository.Restore].
type AnchorRepository struct {
	db *sql.DB
}

// NewAnchorRepository creates a new [AnchorRepository] with the given database connection
func NewAnchorRepository(db *sql.DB) *AnchorRepository {
	return &AnchorRepository{db: db}
}

// Save upserts the offset for key.
func (r *AnchorRepository) Save(ctx context.Context, key string, offset float64) error {
	anchor := models.NewScrollAnchor(key, offset)
	if err := anchor.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO scroll_anchors (id, key, scroll_offset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET scroll_offset = excluded.scroll_offset, updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, shared.GenerateID(), key, offset, anchor.CreatedAt(), anchor.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to save scroll anchor: %w", err)
	}
	return nil
}

// Restore returns the saved offset for key. The second return is false when none exists.
func (r *AnchorRepository) Restore(ctx context.Context, key string) (float64, bool, error) {
	anchor, err := r.GetByKey(ctx, key)
	if errors.Is(err, shared.ErrAnchorNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return anchor.Offset(), true, nil
}

// GetByKey retrieves the anchor stored for key.
func (r *AnchorRepository) GetByKey(ctx context.Context, key string) (*models.ScrollAnchor, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, key, scroll_offset, created_at, updated_at FROM scroll_anchors WHERE key = ?
	`, key)
	anchor, err := scanAnchor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAnchorNotFound, key)
	}
	return anchor, err
}

// List returns every anchor, most recently updated first.
func (r *AnchorRepository) List(ctx context.Context) ([]*models.ScrollAnchor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, key, scroll_offset, created_at, updated_at FROM scroll_anchors ORDER BY updated_at DESC, key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scroll anchors: %w", err)
	}
	defer rows.Close()

	var anchors []*models.ScrollAnchor
	for rows.Next() {
		anchor, err := scanAnchor(rows)
		if err != nil {
			return nil, err
		}
		anchors = append(anchors, anchor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scroll anchors: %w", err)
	}
	return anchors, nil
}

// Delete removes the anchor for key.
func (r *AnchorRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scroll_anchors WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete scroll anchor: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAnchorNotFound, key)
	}
	return nil
}

// Clear removes every anchor and returns how many were deleted.
func (r *AnchorRepository) Clear(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scroll_anchors`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear scroll anchors: %w", err)
	}
	return result.RowsAffected()
}

func scanAnchor(s scanner) (*models.ScrollAnchor, error) {
	var (
		id        string
		key       string
		offset    float64
		createdAt time.Time
		updatedAt time.Time
	)
	if err := s.Scan(&id, &key, &offset, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan scroll anchor: %w", err)
	}

	anchor := models.NewScrollAnchor(key, offset)
	anchor.SetID(id)
	anchor.SetCreatedAt(createdAt)
	anchor.SetUpdatedAt(updatedAt)
	return anchor, nil
}
