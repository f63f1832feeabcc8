package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedMedia(t *testing.T, repo *MediaRepository, n int) []*models.MediaItem {
	t.Helper()
	items := make([]*models.MediaItem, n)
	for i := range n {
		items[i] = models.NewMediaItem(fmt.Sprintf("/photos/%03d.jpg", i), 100+i, 200, 1024)
		if err := repo.Create(context.Background(), items[i]); err != nil {
			t.Fatalf("failed to create media item %d: %v", i, err)
		}
	}
	return items
}

func TestMediaRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		item := models.NewMediaItem("/photos/a.jpg", 640, 480, 2048)

		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("failed to create media item: %v", err)
		}
		if item.ID() == "" {
			t.Error("media ID should be set after creation")
		}
		if item.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", item.Sequence())
		}
	})

	t.Run("Create assigns increasing sequences", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		items := seedMedia(t, repo, 3)
		for i, item := range items {
			if item.Sequence() != int64(i+1) {
				t.Errorf("item %d: expected sequence %d, got %d", i, i+1, item.Sequence())
			}
		}
	})

	t.Run("Create duplicate path", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		seedMedia(t, repo, 1)

		err := repo.Create(ctx, models.NewMediaItem("/photos/000.jpg", 1, 1, 1))
		if !errors.Is(err, ErrDuplicatePath) {
			t.Fatalf("expected ErrDuplicatePath, got %v", err)
		}

		created, err := repo.SaveMedia(ctx, models.NewMediaItem("/photos/000.jpg", 1, 1, 1))
		if err != nil || created {
			t.Errorf("SaveMedia() = %v, %v; want false, nil", created, err)
		}
	})

	t.Run("Create invalid", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		if err := repo.Create(ctx, models.NewMediaItem("", 1, 1, 1)); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		items := seedMedia(t, repo, 2)

		got, err := repo.Get(ctx, items[1].ID())
		if err != nil {
			t.Fatalf("failed to get media item: %v", err)
		}
		if got.Path() != items[1].Path() || got.Width() != items[1].Width() || got.Sequence() != 2 {
			t.Errorf("Get() = %s %d #%d", got.Path(), got.Width(), got.Sequence())
		}

		bySeq, err := repo.GetBySequence(ctx, 2)
		if err != nil {
			t.Fatalf("failed to get by sequence: %v", err)
		}
		if bySeq.ID() != items[1].ID() {
			t.Errorf("GetBySequence() returned %s, want %s", bySeq.ID(), items[1].ID())
		}
	})

	t.Run("Get not found", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		if _, err := repo.Get(ctx, "missing"); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("Page", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		seedMedia(t, repo, 5)

		first, err := repo.Page(ctx, 0, 2)
		if err != nil {
			t.Fatalf("failed to page: %v", err)
		}
		if len(first) != 2 || first[0].Sequence() != 1 || first[1].Sequence() != 2 {
			t.Fatalf("unexpected first page: %d items", len(first))
		}

		rest, err := repo.Page(ctx, first[1].Sequence(), 0)
		if err != nil {
			t.Fatalf("failed to page: %v", err)
		}
		if len(rest) != 3 || rest[0].Sequence() != 3 {
			t.Errorf("expected 3 remaining items starting at #3, got %d", len(rest))
		}
	})

	t.Run("Delete and Count", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		items := seedMedia(t, repo, 3)

		if err := repo.Delete(ctx, items[0].ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete(ctx, items[0].ID()); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound on second delete, got %v", err)
		}

		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("failed to count: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 items, got %d", n)
		}

		exists, err := repo.Exists(ctx, items[1].Path())
		if err != nil || !exists {
			t.Errorf("Exists() = %v, %v", exists, err)
		}
	})
}

func TestAnchorRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Save and Restore", func(t *testing.T) {
		repo := NewAnchorRepository(setupTestDB(t))

		if err := repo.Save(ctx, "catalog", 500); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		offset, ok, err := repo.Restore(ctx, "catalog")
		if err != nil || !ok || offset != 500 {
			t.Errorf("Restore() = %v, %v, %v; want 500, true, nil", offset, ok, err)
		}
	})

	t.Run("Save upserts", func(t *testing.T) {
		repo := NewAnchorRepository(setupTestDB(t))

		for _, offset := range []float64{100, 250.5} {
			if err := repo.Save(ctx, "catalog", offset); err != nil {
				t.Fatalf("failed to save: %v", err)
			}
		}

		anchors, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(anchors) != 1 {
			t.Fatalf("expected one anchor per key, got %d", len(anchors))
		}
		if anchors[0].Offset() != 250.5 {
			t.Errorf("expected offset 250.5, got %v", anchors[0].Offset())
		}
	})

	t.Run("Restore missing", func(t *testing.T) {
		repo := NewAnchorRepository(setupTestDB(t))
		offset, ok, err := repo.Restore(ctx, "nothing")
		if err != nil || ok || offset != 0 {
			t.Errorf("Restore() = %v, %v, %v; want 0, false, nil", offset, ok, err)
		}
	})

	t.Run("Save invalid", func(t *testing.T) {
		repo := NewAnchorRepository(setupTestDB(t))
		if err := repo.Save(ctx, "", 1); err == nil {
			t.Error("expected error for empty key")
		}
		if err := repo.Save(ctx, "k", -5); err == nil {
			t.Error("expected error for negative offset")
		}
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		repo := NewAnchorRepository(setupTestDB(t))
		for _, key := range []string{"a", "b", "c"} {
			if err := repo.Save(ctx, key, 1); err != nil {
				t.Fatalf("failed to save %s: %v", key, err)
			}
		}

		if err := repo.Delete(ctx, "a"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete(ctx, "a"); !errors.Is(err, shared.ErrAnchorNotFound) {
			t.Errorf("expected ErrAnchorNotFound, got %v", err)
		}

		n, err := repo.Clear(ctx)
		if err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 anchors cleared, got %d", n)
		}
	})
}

func TestCatalogSource(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through the catalog", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		seedMedia(t, repo, 5)
		src := NewCatalogSource(repo, 2)

		var ids []int64
		for i := 0; i < 3; i++ {
			page, err := src.LoadPage(ctx)
			if err != nil {
				t.Fatalf("LoadPage() error = %v", err)
			}
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			wantMore := i < 2
			if page.HasMore != wantMore {
				t.Errorf("page %d: HasMore = %v, want %v", i, page.HasMore, wantMore)
			}
		}

		if len(ids) != 5 {
			t.Fatalf("expected 5 items, got %d", len(ids))
		}
		for i, id := range ids {
			if id != int64(i+1) {
				t.Errorf("item %d has id %d", i, id)
			}
		}

		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 0 || page.HasMore {
			t.Errorf("exhausted source returned %+v, %v", page, err)
		}
	})

	t.Run("exact multiple of page size", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		seedMedia(t, repo, 4)
		src := NewCatalogSource(repo, 2)

		first, _ := src.LoadPage(ctx)
		second, _ := src.LoadPage(ctx)
		if !first.HasMore || second.HasMore {
			t.Errorf("HasMore = %v, %v; want true, false", first.HasMore, second.HasMore)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		repo := NewMediaRepository(setupTestDB(t))
		seedMedia(t, repo, 3)
		src := NewCatalogSource(repo, 10)

		if _, err := src.LoadPage(ctx); err != nil {
			t.Fatalf("LoadPage() error = %v", err)
		}
		if src.Cursor() != 3 {
			t.Errorf("Cursor() = %d, want 3", src.Cursor())
		}

		src.Reset()
		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 3 {
			t.Errorf("after Reset LoadPage() = %d items, %v", len(page.Items), err)
		}
	})

	t.Run("failure keeps cursor", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMediaRepository(db)
		seedMedia(t, repo, 3)
		src := NewCatalogSource(repo, 2)

		if _, err := src.LoadPage(ctx); err != nil {
			t.Fatalf("LoadPage() error = %v", err)
		}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := src.LoadPage(cancelled); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Fatalf("expected ErrSourceUnavailable, got %v", err)
		}
		if src.Cursor() != 2 {
			t.Errorf("cursor moved on failure: %d", src.Cursor())
		}

		page, err := src.LoadPage(ctx)
		if err != nil || len(page.Items) != 1 || page.Items[0].ID != 3 {
			t.Errorf("retry returned %+v, %v", page, err)
		}
	})
}
