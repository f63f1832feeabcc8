// Package scrollstore persists scroll anchors so a list resumes where the user left it.
//
// An anchor is one (key, offset) record per logical list, e.g. a route or query key. [Saver] sits
// between the scroll handler and a [Store] and bounds how often offsets are written; [Restore] reads an
// anchor once at mount and clamps it to the content that is currently loaded.
package scrollstore

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/shared"
	"golang.org/x/time/rate"
)

// Store keeps one offset per key.
type Store interface {
	Save(ctx context.Context, key string, offset float64) error
	Restore(ctx context.Context, key string) (float64, bool, error)
}

// MemoryStore is an in-process [Store].
type MemoryStore struct {
	mu      sync.Mutex
	offsets map[string]float64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{offsets: make(map[string]float64)}
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, key string, offset float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offsets[key] = offset
	return nil
}

// Restore implements [Store].
func (m *MemoryStore) Restore(_ context.Context, key string) (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offset, ok := m.offsets[key]
	return offset, ok, nil
}

// Saver debounces scroll offsets on their way to a [Store].
//
// Record keeps the latest offset per key and writes it only when the limiter allows; offsets that
// arrive in between stay pending until the next allowed write or [Saver.Flush]. A key gets its first
// record on the first scroll away from 0.
type Saver struct {
	store   Store
	limiter *rate.Limiter
	logger  *log.Logger

	mu      sync.Mutex
	pending map[string]float64
	written map[string]float64
}

// NewSaver creates a saver that writes at most once per interval. interval <= 0 writes every change.
func NewSaver(store Store, interval time.Duration, logger *log.Logger) *Saver {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &Saver{
		store:   store,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		pending: make(map[string]float64),
		written: make(map[string]float64),
	}
}

// Record notes the current offset for key and writes it if the write budget allows.
func (s *Saver) Record(ctx context.Context, key string, offset float64) error {
	s.mu.Lock()
	last, seen := s.written[key]
	if !seen && offset == 0 {
		s.mu.Unlock()
		return nil
	}
	if seen && last == offset {
		delete(s.pending, key)
		s.mu.Unlock()
		return nil
	}
	s.pending[key] = offset
	s.mu.Unlock()

	if !s.limiter.Allow() {
		return nil
	}
	return s.flushKey(ctx, key)
}

// Flush writes every pending offset. Called when the list unmounts.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.pending))
	for k := range s.pending {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	for _, k := range keys {
		if err := s.flushKey(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Pending reports whether key has an offset waiting to be written.
func (s *Saver) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[key]
	return ok
}

// Seed marks key as already stored at offset, so a restored list does not rewrite its anchor until
// the user scrolls.
func (s *Saver) Seed(key string, offset float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written[key] = offset
}

func (s *Saver) flushKey(ctx context.Context, key string) error {
	s.mu.Lock()
	offset, ok := s.pending[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.pending, key)
	s.mu.Unlock()

	if err := s.store.Save(ctx, key, offset); err != nil {
		s.mu.Lock()
		if _, newer := s.pending[key]; !newer {
			s.pending[key] = offset
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.written[key] = offset
	s.mu.Unlock()
	s.logger.Debug("scroll anchor saved", "key", key, "offset", offset)
	return nil
}

// Restore reads the anchor for key and clamps it to [0, totalHeight-viewport]. The second return is
// false when no anchor exists.
func Restore(ctx context.Context, store Store, key string, totalHeight, viewport float64) (float64, bool, error) {
	offset, ok, err := store.Restore(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	return gallery.ClampOffset(offset, totalHeight, viewport), true, nil
}
