package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// ErrDuplicatePath is returned by [MediaRepository.Create] when the path is already catalogued.
var ErrDuplicatePath = errors.New("media path already catalogued")

// MediaRepository implements [models.Repository] for [models.MediaItem] persistence.
type MediaRepository struct {
	db *sql.DB
}

// NewMediaRepository creates a new [MediaRepository] with the given database connection
func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, sequence, path, kind, width, height, size_bytes, created_at`

// Create inserts a new media item with a generated ID and the next sequence number.
func (r *MediaRepository) Create(ctx context.Context, item *models.MediaItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(ctx, tx, "media_items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `INSERT INTO media_items (` + mediaColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		id, sequence, item.Path(), item.Kind(), item.Width(), item.Height(), item.SizeBytes(), item.CreatedAt())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: media_items.path") {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, item.Path())
		}
		return fmt.Errorf("failed to insert media item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit media item: %w", err)
	}

	item.SetID(id)
	item.SetSequence(sequence)
	return nil
}

// Get retrieves a media item by ID
func (r *MediaRepository) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = ?`, id)
	item, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	return item, err
}

// GetBySequence retrieves a media item by its sequence number, which is also its gallery item ID.
func (r *MediaRepository) GetBySequence(ctx context.Context, sequence int64) (*models.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE sequence = ?`, sequence)
	item, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrItemNotFound, sequence)
	}
	return item, err
}

// Delete removes a media item by ID. Sequence numbers of the remaining rows are untouched.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	return nil
}

// List returns the first limit items in sequence order. limit <= 0 returns everything.
func (r *MediaRepository) List(ctx context.Context, limit int) ([]*models.MediaItem, error) {
	return r.Page(ctx, 0, limit)
}

// Page returns up to limit items whose sequence is greater than after, in sequence order.
// limit <= 0 means no limit.
func (r *MediaRepository) Page(ctx context.Context, after int64, limit int) ([]*models.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE sequence > ? ORDER BY sequence`
	args := []any{after}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer rows.Close()

	var items []*models.MediaItem
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media items: %w", err)
	}
	return items, nil
}

// Count returns the number of catalogued items.
func (r *MediaRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count media items: %w", err)
	}
	return n, nil
}

// Exists reports whether path is already catalogued.
func (r *MediaRepository) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM media_items WHERE path = ?)`, path).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check media path: %w", err)
	}
	return exists, nil
}

// SaveMedia implements the catalog import task's writer. Paths that are already catalogued are
// skipped and reported as not created.
func (r *MediaRepository) SaveMedia(ctx context.Context, item *models.MediaItem) (bool, error) {
	err := r.Create(ctx, item)
	if errors.Is(err, ErrDuplicatePath) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(s scanner) (*models.MediaItem, error) {
	var (
		id        string
		sequence  int64
		path      string
		kind      string
		width     int
		height    int
		sizeBytes int64
		createdAt time.Time
	)

	if err := s.Scan(&id, &sequence, &path, &kind, &width, &height, &sizeBytes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan media item: %w", err)
	}

	item := models.NewMediaItem(path, width, height, sizeBytes)
	item.SetID(id)
	item.SetSequence(sequence)
	item.SetKind(kind)
	item.SetCreatedAt(createdAt)
	return item, nil
}
