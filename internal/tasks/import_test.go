package tasks

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
)

type mockWriter struct {
	mu    sync.Mutex
	seen  map[string]bool
	saved []*models.MediaItem
	err   error
}

func newMockWriter() *mockWriter {
	return &mockWriter{seen: make(map[string]bool)}
}

func (m *mockWriter) SaveMedia(ctx context.Context, item *models.MediaItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.seen[item.Path()] {
		return false, nil
	}
	m.seen[item.Path()] = true
	m.saved = append(m.saved, item)
	return true, nil
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// fixtureDir lays out:
//
//	a.png 40x20, b.PNG 10x30, notes.txt, broken.jpg, .hidden.png, nested/c.png 5x5
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 40, 20)
	writePNG(t, filepath.Join(dir, "b.PNG"), 10, 30)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not an image")
	writeFile(t, filepath.Join(dir, "broken.jpg"), "not a jpeg either")
	writePNG(t, filepath.Join(dir, ".hidden.png"), 1, 1)
	writePNG(t, filepath.Join(dir, "nested", "c.png"), 5, 5)
	return dir
}

func TestScanMedia(t *testing.T) {
	dir := fixtureDir(t)

	t.Run("flat", func(t *testing.T) {
		paths, err := ScanMedia(dir, false)
		if err != nil {
			t.Fatalf("ScanMedia() error = %v", err)
		}
		want := []string{"a.png", "b.PNG", "broken.jpg"}
		if len(paths) != len(want) {
			t.Fatalf("ScanMedia() = %v, want %v", paths, want)
		}
		for i, p := range paths {
			if filepath.Base(p) != want[i] {
				t.Errorf("path %d = %s, want %s", i, filepath.Base(p), want[i])
			}
			if !filepath.IsAbs(p) {
				t.Errorf("path %s should be absolute", p)
			}
		}
	})

	t.Run("recursive", func(t *testing.T) {
		paths, err := ScanMedia(dir, true)
		if err != nil {
			t.Fatalf("ScanMedia() error = %v", err)
		}
		if len(paths) != 4 {
			t.Errorf("expected 4 files, got %v", paths)
		}
	})

	t.Run("not a directory", func(t *testing.T) {
		_, err := ScanMedia(filepath.Join(dir, "a.png"), false)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := ScanMedia(filepath.Join(dir, "nope"), false); err == nil {
			t.Error("expected error for missing root")
		}
	})
}

func TestProbeImage(t *testing.T) {
	dir := fixtureDir(t)

	res := ProbeImage(filepath.Join(dir, "a.png"))
	if res.Error != nil {
		t.Fatalf("ProbeImage() error = %v", res.Error)
	}
	if res.Width != 40 || res.Height != 20 || res.Size == 0 {
		t.Errorf("ProbeImage() = %+v", res)
	}

	bad := ProbeImage(filepath.Join(dir, "broken.jpg"))
	if !errors.Is(bad.Error, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for broken file, got %v", bad.Error)
	}
}

func TestImport(t *testing.T) {
	t.Run("imports decodable images", func(t *testing.T) {
		dir := fixtureDir(t)
		writer := newMockWriter()
		engine := NewImportEngine(writer, nil)
		prog := make(chan ProgressUpdate, 64)

		result, err := engine.Import(context.Background(), prog, ImportOpts{Root: dir, Recursive: true, NumWorkers: 2})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		if result.Total != 4 || result.Imported != 3 || result.Failed != 1 || result.Skipped != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		if len(writer.saved) != 3 {
			t.Errorf("expected 3 saved items, got %d", len(writer.saved))
		}
		for i := 1; i < len(result.Results); i++ {
			if result.Results[i-1].Path > result.Results[i].Path {
				t.Errorf("results not sorted by path")
			}
		}
		for i := 1; i < len(writer.saved); i++ {
			if writer.saved[i-1].Path() > writer.saved[i].Path() {
				t.Errorf("saved out of path order: %s before %s", writer.saved[i-1].Path(), writer.saved[i].Path())
			}
		}

		close(prog)
		phases := map[Phase]int{}
		for u := range prog {
			phases[u.Phase]++
		}
		if phases[ScanFiles] != 2 || phases[SaveMedia] != 4 {
			t.Errorf("unexpected progress phases: %v", phases)
		}
	})

	t.Run("second run skips catalogued paths", func(t *testing.T) {
		dir := fixtureDir(t)
		writer := newMockWriter()
		engine := NewImportEngine(writer, nil)
		opts := ImportOpts{Root: dir}

		if _, err := engine.Import(context.Background(), nil, opts); err != nil {
			t.Fatalf("first Import() error = %v", err)
		}
		result, err := engine.Import(context.Background(), nil, opts)
		if err != nil {
			t.Fatalf("second Import() error = %v", err)
		}
		if result.Imported != 0 || result.Skipped != 2 {
			t.Errorf("expected 2 skipped on re-import, got %+v", result)
		}
	})

	t.Run("writer errors count as failures", func(t *testing.T) {
		dir := fixtureDir(t)
		writer := newMockWriter()
		writer.err = errors.New("disk full")

		result, err := NewImportEngine(writer, nil).Import(context.Background(), nil, ImportOpts{Root: dir})
		if err != nil {
			t.Fatalf("Import() error = %v", err)
		}
		if result.Failed != 3 || result.Imported != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := fixtureDir(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewImportEngine(newMockWriter(), nil).Import(ctx, nil, ImportOpts{Root: dir})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Imported != 0 {
			t.Errorf("expected empty partial result, got %+v", result)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := NewImportEngine(nil, nil).Import(context.Background(), nil, ImportOpts{Root: "."}); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
		if _, err := NewImportEngine(newMockWriter(), nil).Import(context.Background(), nil, ImportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{ScanFiles, "scan_files"},
		{ProbeMedia, "probe_media"},
		{SaveMedia, "save_media"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}
