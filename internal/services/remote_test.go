package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/mosaic/internal/shared"
)

// catalogServer serves total items with ids 1..total, honoring after and limit.
func catalogServer(t *testing.T, total int, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ItemsPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if fail != nil && fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		after, _ := strconv.Atoi(r.URL.Query().Get("after"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var resp PageResponse
		for id := after + 1; id <= total && len(resp.Items) < limit; id++ {
			resp.Items = append(resp.Items, ItemJSON{ID: int64(id), Width: 100, Height: float64(100 + id)})
		}
		if n := len(resp.Items); n > 0 && resp.Items[n-1].ID < int64(total) {
			resp.HasMore = true
			resp.Next = resp.Items[n-1].ID
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestRemoteSource(t *testing.T) {
	ctx := context.Background()

	t.Run("pages until exhausted", func(t *testing.T) {
		server := catalogServer(t, 5, nil)
		defer server.Close()

		src := NewRemoteSource(NewAPIService(server.URL, nil), 2, 0, nil)
		var ids []int64
		for {
			page, err := src.LoadPage(ctx)
			if err != nil {
				t.Fatalf("LoadPage() error = %v", err)
			}
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			if !page.HasMore {
				break
			}
		}

		if len(ids) != 5 {
			t.Fatalf("expected 5 items, got %v", ids)
		}
		for i, id := range ids {
			if id != int64(i+1) {
				t.Errorf("position %d has id %d", i, id)
			}
		}

		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 0 {
			t.Errorf("exhausted source returned %+v, %v", page, err)
		}
	})

	t.Run("failure keeps cursor", func(t *testing.T) {
		var fail atomic.Bool
		server := catalogServer(t, 4, &fail)
		defer server.Close()

		src := NewRemoteSource(NewAPIService(server.URL, nil), 2, 0, nil)
		if _, err := src.LoadPage(ctx); err != nil {
			t.Fatalf("LoadPage() error = %v", err)
		}

		fail.Store(true)
		_, err := src.LoadPage(ctx)
		if !errors.Is(err, shared.ErrSourceUnavailable) || !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected wrapped source error, got %v", err)
		}
		if src.Cursor() != 2 {
			t.Errorf("cursor moved on failure: %d", src.Cursor())
		}

		fail.Store(false)
		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 2 || page.Items[0].ID != 3 {
			t.Errorf("retry returned %+v, %v", page, err)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		server := catalogServer(t, 3, nil)
		defer server.Close()

		src := NewRemoteSource(NewAPIService(server.URL, nil), 10, 0, nil)
		if _, err := src.LoadPage(ctx); err != nil {
			t.Fatalf("LoadPage() error = %v", err)
		}
		src.Reset()
		if src.Cursor() != 0 {
			t.Errorf("Cursor() = %d after Reset", src.Cursor())
		}
		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 3 {
			t.Errorf("after Reset LoadPage() = %d items, %v", len(page.Items), err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := catalogServer(t, 3, nil)
		defer server.Close()

		src := NewRemoteSource(NewAPIService(server.URL, nil), 1, 0.001, nil)
		if _, err := src.LoadPage(ctx); err != nil {
			t.Fatalf("LoadPage() error = %v", err)
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := src.LoadPage(cancelled); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})
}
