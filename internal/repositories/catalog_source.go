package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// CatalogSource implements gallery.Source over [MediaRepository].
//
// It keeps a sequence cursor; a failed load leaves the cursor in place so the next call retries the
// same page.
type CatalogSource struct {
	repo     *MediaRepository
	pageSize int

	mu     sync.Mutex
	cursor int64
	done   bool
}

// NewCatalogSource creates a source that loads pageSize items per call.
func NewCatalogSource(repo *MediaRepository, pageSize int) *CatalogSource {
	return &CatalogSource{repo: repo, pageSize: max(pageSize, 1)}
}

// LoadPage returns the next page of catalogued items.
func (s *CatalogSource) LoadPage(ctx context.Context) (gallery.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return gallery.Page{}, nil
	}

	// One extra row tells whether another page follows.
	media, err := s.repo.Page(ctx, s.cursor, s.pageSize+1)
	if err != nil {
		return gallery.Page{}, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}

	hasMore := len(media) > s.pageSize
	if hasMore {
		media = media[:s.pageSize]
	}
	if len(media) > 0 {
		s.cursor = media[len(media)-1].Sequence()
	}
	s.done = !hasMore

	return gallery.Page{Items: models.ToItems(media), HasMore: hasMore}, nil
}

// Reset rewinds the cursor to the start of the catalog.
func (s *CatalogSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
	s.done = false
}

// Cursor returns the sequence of the last item handed out.
func (s *CatalogSource) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}
