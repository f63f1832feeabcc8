package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/shared"
)

// Media kinds.
const (
	KindImage = "image"
	KindVideo = "video"
)

// MediaItem is a catalogued media file.
//
// Sequence is assigned on insert and is the stable paging cursor: the gallery shows items in
// sequence order and uses it as the numeric item id.
type MediaItem struct {
	id        string
	sequence  int64
	path      string
	kind      string
	width     int
	height    int
	sizeBytes int64
	createdAt time.Time
}

// NewMediaItem creates an unsaved image item.
func NewMediaItem(path string, width, height int, sizeBytes int64) *MediaItem {
	return &MediaItem{
		path:      path,
		kind:      KindImage,
		width:     width,
		height:    height,
		sizeBytes: sizeBytes,
		createdAt: time.Now(),
	}
}

func (m *MediaItem) ID() string           { return m.id }
func (m *MediaItem) Sequence() int64      { return m.sequence }
func (m *MediaItem) Path() string         { return m.path }
func (m *MediaItem) Kind() string         { return m.kind }
func (m *MediaItem) Width() int           { return m.width }
func (m *MediaItem) Height() int          { return m.height }
func (m *MediaItem) SizeBytes() int64     { return m.sizeBytes }
func (m *MediaItem) CreatedAt() time.Time { return m.createdAt }

func (m *MediaItem) SetID(id string)          { m.id = id }
func (m *MediaItem) SetSequence(seq int64)    { m.sequence = seq }
func (m *MediaItem) SetKind(kind string)      { m.kind = kind }
func (m *MediaItem) SetCreatedAt(t time.Time) { m.createdAt = t }
func (m *MediaItem) SetDimensions(w, h int)   { m.width, m.height = w, h }

// Name returns the file name without its directory.
func (m *MediaItem) Name() string { return filepath.Base(m.path) }

// Validate checks if the media item's data is valid.
func (m *MediaItem) Validate() error {
	if strings.TrimSpace(m.path) == "" {
		return fmt.Errorf("%w: media path is required", shared.ErrInvalidInput)
	}
	if m.kind != KindImage && m.kind != KindVideo {
		return fmt.Errorf("%w: unknown media kind %q", shared.ErrInvalidInput, m.kind)
	}
	if m.width < 0 || m.height < 0 {
		return fmt.Errorf("%w: dimensions must not be negative", shared.ErrInvalidInput)
	}
	return nil
}

// ToItem converts the record to the gallery's item shape. Unknown dimensions stay 0, which the
// gallery treats as a square tile.
func (m *MediaItem) ToItem() gallery.Item {
	return gallery.Item{ID: m.sequence, Width: float64(m.width), Height: float64(m.height)}
}

// ToItems converts a batch of records.
func ToItems(media []*MediaItem) []gallery.Item {
	items := make([]gallery.Item, len(media))
	for i, m := range media {
		items[i] = m.ToItem()
	}
	return items
}
