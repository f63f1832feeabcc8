package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/shared"
	"golang.org/x/time/rate"
)

// RemoteSource implements gallery.Source against a mosaic item server.
type RemoteSource struct {
	api      *APIService
	pageSize int
	limiter  *rate.Limiter
	logger   *log.Logger

	mu     sync.Mutex
	cursor int64
	done   bool
}

// NewRemoteSource creates a source reading pageSize items per request, at most requestsPerSecond
// requests per second. requestsPerSecond <= 0 disables pacing.
func NewRemoteSource(api *APIService, pageSize int, requestsPerSecond float64, logger *log.Logger) *RemoteSource {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &RemoteSource{
		api:      api,
		pageSize: max(pageSize, 1),
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// LoadPage fetches the page after the current cursor.
func (s *RemoteSource) LoadPage(ctx context.Context) (gallery.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return gallery.Page{}, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return gallery.Page{}, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}

	q := url.Values{}
	q.Set("after", strconv.FormatInt(s.cursor, 10))
	q.Set("limit", strconv.Itoa(s.pageSize))

	var resp PageResponse
	if err := s.api.GetJSON(ctx, ItemsPath+"?"+q.Encode(), &resp); err != nil {
		s.logger.Warn("remote page failed", "after", s.cursor, "error", err)
		return gallery.Page{}, fmt.Errorf("%w: %w", shared.ErrSourceUnavailable, err)
	}

	switch {
	case resp.Next > 0:
		s.cursor = resp.Next
	case len(resp.Items) > 0:
		s.cursor = resp.Items[len(resp.Items)-1].ID
	}
	s.done = !resp.HasMore
	s.logger.Debug("remote page loaded", "items", len(resp.Items), "cursor", s.cursor, "more", resp.HasMore)

	return resp.ToPage(), nil
}

// Reset rewinds the cursor to the first page.
func (s *RemoteSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = 0
	s.done = false
}

// Cursor returns the current "after" cursor.
func (s *RemoteSource) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}
