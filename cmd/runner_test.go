package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/repositories"
	"github.com/desertthunder/mosaic/internal/server"
	"github.com/desertthunder/mosaic/internal/shared"
	tu "github.com/desertthunder/mosaic/internal/testing"
	"github.com/urfave/cli/v3"
)

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

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
}

// newTestRunner returns a runner over an in-memory database that writes to the returned buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		DB:     setupTestDB(t),
		Logger: shared.NewDiscardLogger(),
		Output: output,
	}), output
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "mosaic", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"mosaic"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if expected := `{"key":"value"}` + "\n"; output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("%d items\n", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3 items\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("x"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		want := []string{"setup", "catalog", "layout", "browse", "anchors", "serve"}

		commands := runner.register()
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %s, got %s", i, name, commands[i].Name)
			}
		}
	})

	t.Run("galleryOptions", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Layout.BaseWidth = 150
		config.Layout.ExpandToFill = true
		config.Tiles.OverscanRows = 2
		runner := NewRunner(RunnerOpts{Config: config})

		opts := runner.galleryOptions(nil)
		if opts.Layout.BaseWidth != 150 || !opts.Layout.ExpandToFill {
			t.Errorf("layout not converted: %+v", opts.Layout)
		}
		if opts.Layout.ReflowDuration != config.Layout.Reflow() {
			t.Errorf("expected reflow %v, got %v", config.Layout.Reflow(), opts.Layout.ReflowDuration)
		}
		if opts.Tiles.OverscanRows != 2 {
			t.Errorf("expected overscan 2, got %d", opts.Tiles.OverscanRows)
		}
		if err := opts.Layout.Validate(); err != nil {
			t.Errorf("converted layout should validate: %v", err)
		}
	})
}

func TestLoadAll(t *testing.T) {
	pages := []tu.MockStep{
		{Page: gallery.Page{Items: tu.Items(1, 10, 100, 100), HasMore: true}},
		{Page: gallery.Page{Items: tu.Items(11, 10, 100, 100), HasMore: true}},
		{Page: gallery.Page{Items: tu.Items(21, 10, 100, 100), HasMore: false}},
	}

	t.Run("loads every page", func(t *testing.T) {
		engine := gallery.New(gallery.Options{Source: tu.NewMockSource(pages...)})
		engine.SetContainerWidth(1040)
		if err := loadAll(context.Background(), engine, 0); err != nil {
			t.Fatalf("loadAll failed: %v", err)
		}
		if engine.Len() != 30 {
			t.Errorf("expected 30 items, got %d", engine.Len())
		}
	})

	t.Run("stops at the limit", func(t *testing.T) {
		src := tu.NewMockSource(pages...)
		engine := gallery.New(gallery.Options{Source: src})
		engine.SetContainerWidth(1040)
		if err := loadAll(context.Background(), engine, 15); err != nil {
			t.Fatalf("loadAll failed: %v", err)
		}
		if engine.Len() != 15 {
			t.Errorf("expected 15 items, got %d", engine.Len())
		}
		if src.Calls() != 2 {
			t.Errorf("expected 2 page loads, got %d", src.Calls())
		}
	})

	t.Run("surfaces page errors", func(t *testing.T) {
		engine := gallery.New(gallery.Options{Source: tu.NewMockSource(tu.MockStep{Err: errors.New("offline")})})
		engine.SetContainerWidth(1040)
		err := loadAll(context.Background(), engine, 0)
		if !errors.Is(err, shared.ErrPageFailed) {
			t.Errorf("expected ErrPageFailed, got %v", err)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("setup database", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")
		dbPath := filepath.Join(dir, "mosaic.db")
		if err := os.WriteFile(configPath, []byte("[database]\npath = \""+filepath.ToSlash(dbPath)+"\"\n"), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewDiscardLogger(), Output: &bytes.Buffer{}})
		if err := run(t, runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
		if runner.config.Database.Path != filepath.ToSlash(dbPath) {
			t.Errorf("runner should adopt the loaded config, got %s", runner.config.Database.Path)
		}
	})

	t.Run("catalog import and list", func(t *testing.T) {
		runner, output := newTestRunner(t)
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "a.png"), 40, 30)
		writePNG(t, filepath.Join(dir, "b.png"), 20, 60)

		if err := run(t, runner, "catalog", "import", dir); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if !strings.Contains(output.String(), "Imported: 2") {
			t.Errorf("expected import summary, got %s", output.String())
		}

		output.Reset()
		if err := run(t, runner, "catalog", "list", "--format", "csv"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "a.png") || !strings.Contains(output.String(), "b.png") {
			t.Errorf("expected both files listed, got %s", output.String())
		}

		output.Reset()
		if err := run(t, runner, "catalog", "import", dir); err != nil {
			t.Fatalf("re-import failed: %v", err)
		}
		if !strings.Contains(output.String(), "Already catalogued: 2") {
			t.Errorf("re-import should skip known files, got %s", output.String())
		}
	})

	t.Run("catalog open rejects bad ids", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(t, runner, "catalog", "open", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := run(t, runner, "catalog", "open", "42"); !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("layout from the catalog", func(t *testing.T) {
		runner, output := newTestRunner(t)
		dir := t.TempDir()
		for _, name := range []string{"a.png", "b.png", "c.png"} {
			writePNG(t, filepath.Join(dir, name), 50, 50)
		}
		if err := run(t, runner, "catalog", "import", dir); err != nil {
			t.Fatalf("import failed: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "layout", "--width", "1040", "--format", "json"); err != nil {
			t.Fatalf("layout failed: %v", err)
		}
		got := output.String()
		for _, want := range []string{`"lanes": 5`, `"item_width": 200`, `"total_height": 200`} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %s in %s", want, got)
			}
		}
	})

	t.Run("layout to file", func(t *testing.T) {
		runner, output := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "layout.csv")

		if err := run(t, runner, "layout", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("layout failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), "written to") {
			t.Errorf("expected confirmation, got %s", output.String())
		}
	})

	t.Run("layout rejects unknown formats", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(t, runner, "layout", "--format", "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("layout from a remote catalog", func(t *testing.T) {
		db := setupTestDB(t)
		dir := t.TempDir()
		writePNG(t, filepath.Join(dir, "a.png"), 400, 200)
		repo := repositories.NewMediaRepository(db)
		seeder := NewRunner(RunnerOpts{DB: db, Logger: shared.NewDiscardLogger(), Output: &bytes.Buffer{}})
		if err := run(t, seeder, "catalog", "import", dir); err != nil {
			t.Fatalf("import failed: %v", err)
		}

		srv := httptest.NewServer(server.NewCatalogRouter(repo, "secret", shared.NewDiscardLogger()))
		defer srv.Close()

		config := shared.DefaultConfig()
		config.Source.URL = srv.URL
		config.Source.Token = "secret"
		config.Source.RateLimit = 0
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewDiscardLogger(), Output: output})

		if err := run(t, runner, "layout", "--width", "1040", "--format", "json"); err != nil {
			t.Fatalf("remote layout failed: %v", err)
		}
		if !strings.Contains(output.String(), `"height": 100`) {
			t.Errorf("expected a 200x100 tile, got %s", output.String())
		}
		if runner.db != nil {
			t.Error("remote layout should not open the local database")
		}
	})

	t.Run("anchors list and clear", func(t *testing.T) {
		runner, output := newTestRunner(t)
		anchors := repositories.NewAnchorRepository(runner.db)
		ctx := context.Background()
		for key, offset := range map[string]float64{"catalog": 500, "remote:x": 20} {
			if err := anchors.Save(ctx, key, offset); err != nil {
				t.Fatalf("failed to save anchor: %v", err)
			}
		}

		if err := run(t, runner, "anchors", "list", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"key": "catalog"`) || !strings.Contains(output.String(), `"offset": 500`) {
			t.Errorf("unexpected listing %s", output.String())
		}

		output.Reset()
		if err := run(t, runner, "anchors", "clear", "--key", "catalog"); err != nil {
			t.Fatalf("clear key failed: %v", err)
		}
		if _, ok, _ := anchors.Restore(ctx, "catalog"); ok {
			t.Error("anchor should be deleted")
		}

		output.Reset()
		if err := run(t, runner, "anchors", "clear"); err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if !strings.Contains(output.String(), "Deleted 1 anchors") {
			t.Errorf("unexpected output %s", output.String())
		}
	})
}
