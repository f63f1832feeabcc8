package scrollstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingStore records every write.
type countingStore struct {
	*MemoryStore
	mu     sync.Mutex
	writes []float64
	err    error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore()}
}

func (s *countingStore) Save(ctx context.Context, key string, offset float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, offset)
	return s.MemoryStore.Save(ctx, key, offset)
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, ok, err := store.Restore(ctx, "feed"); ok || err != nil {
		t.Errorf("expected no anchor, got ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, "feed", 500); err != nil {
		t.Fatal(err)
	}
	offset, ok, err := store.Restore(ctx, "feed")
	if err != nil || !ok || offset != 500 {
		t.Errorf("Restore() = %v, %v, %v; want 500", offset, ok, err)
	}
	if _, ok, _ := store.Restore(ctx, "search:cats"); ok {
		t.Error("keys must not share anchors")
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Save(ctx, "feed", 500)
	store.Save(ctx, "deep", 5000)

	tests := []struct {
		name  string
		key   string
		total float64
		want  float64
		ok    bool
	}{
		{"within content", "feed", 2000, 500, true},
		{"clamped to loaded content", "deep", 2000, 1400, true},
		{"content shorter than viewport", "feed", 300, 0, true},
		{"missing", "other", 2000, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Restore(ctx, store, tt.key, tt.total, 600)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || ok != tt.ok {
				t.Errorf("Restore() = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSaver(t *testing.T) {
	ctx := context.Background()

	t.Run("first record waits for a scroll away from the top", func(t *testing.T) {
		store := newCountingStore()
		s := NewSaver(store, 0, nil)

		if err := s.Record(ctx, "feed", 0); err != nil {
			t.Fatal(err)
		}
		if store.count() != 0 {
			t.Error("offset 0 should not create an anchor")
		}

		s.Record(ctx, "feed", 120)
		s.Record(ctx, "feed", 120)
		s.Record(ctx, "feed", 0)
		if store.count() != 2 {
			t.Errorf("expected 2 writes, got %d", store.count())
		}
		if offset, _, _ := store.Restore(ctx, "feed"); offset != 0 {
			t.Errorf("scrolling back to the top should be saved, got %v", offset)
		}
	})

	t.Run("debounced writes stay pending until flushed", func(t *testing.T) {
		store := newCountingStore()
		s := NewSaver(store, time.Hour, nil)

		for _, offset := range []float64{100, 200, 300, 400} {
			if err := s.Record(ctx, "feed", offset); err != nil {
				t.Fatal(err)
			}
		}
		if store.count() != 1 {
			t.Fatalf("expected one write inside the interval, got %d", store.count())
		}
		if !s.Pending("feed") {
			t.Error("latest offset should be pending")
		}

		if err := s.Flush(ctx); err != nil {
			t.Fatal(err)
		}
		if offset, _, _ := store.Restore(ctx, "feed"); offset != 400 {
			t.Errorf("flush should write the latest offset, got %v", offset)
		}
		if s.Pending("feed") {
			t.Error("nothing should be pending after a flush")
		}
		if store.count() != 2 {
			t.Errorf("expected 2 writes, got %d", store.count())
		}
	})

	t.Run("failed writes stay pending", func(t *testing.T) {
		store := newCountingStore()
		store.err = errors.New("disk full")
		s := NewSaver(store, 0, nil)

		if err := s.Record(ctx, "feed", 50); err == nil {
			t.Fatal("expected the store error")
		}
		if !s.Pending("feed") {
			t.Error("offset should be kept for a later flush")
		}

		store.err = nil
		if err := s.Flush(ctx); err != nil {
			t.Fatal(err)
		}
		if offset, ok, _ := store.Restore(ctx, "feed"); !ok || offset != 50 {
			t.Errorf("expected 50 after retry, got %v", offset)
		}
	})

	t.Run("seeded anchors are not rewritten", func(t *testing.T) {
		store := newCountingStore()
		s := NewSaver(store, 0, nil)
		s.Seed("feed", 500)

		s.Record(ctx, "feed", 500)
		if store.count() != 0 {
			t.Error("restored offset should not be written back")
		}
		s.Record(ctx, "feed", 520)
		if store.count() != 1 {
			t.Errorf("expected a write after scrolling, got %d", store.count())
		}
	})

	t.Run("save then restore round trip", func(t *testing.T) {
		store := NewMemoryStore()
		s := NewSaver(store, 0, nil)
		s.Record(ctx, "feed", 500)
		s.Flush(ctx)

		got, ok, err := Restore(ctx, store, "feed", 5000, 600)
		if err != nil || !ok || got != 500 {
			t.Errorf("Restore() = %v, %v, %v; want 500", got, ok, err)
		}
	})
}
