package tasks

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/shared"
	"golang.org/x/time/rate"
)

// ImageExtensions lists the file extensions the import probes, lower case.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// ImportOpts contains configuration for catalog imports.
type ImportOpts struct {
	Root       string  // Directory to scan
	Recursive  bool    // Descend into subdirectories
	NumWorkers int     // Concurrent probes (default: 4, max: 16)
	RateLimit  float64 // Files dispatched per second, 0 for unlimited
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string
	Width   int
	Height  int
	Size    int64
	Created bool
	Error   error
}

// ImportResult summarizes an import.
type ImportResult struct {
	Root     string
	Total    int
	Imported int
	Skipped  int
	Failed   int
	Results  []FileResult
}

// Import scans opts.Root and catalogues every image it can decode.
//
// Items are saved, and results returned, in path order regardless of which worker probed them. A
// cancelled context stops dispatch and returns what was processed so far together with the context
// error.
func (e *ImportEngine) Import(ctx context.Context, prog chan<- ProgressUpdate, opts ImportOpts) (*ImportResult, error) {
	if e.writer == nil {
		return nil, fmt.Errorf("%w: media writer not initialized", shared.ErrSourceUnavailable)
	}
	if opts.Root == "" {
		return nil, fmt.Errorf("%w: import root", shared.ErrMissingArgument)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 16 {
		opts.NumWorkers = 16
	}

	e.sendProgress(prog, scanningUpdate(opts.Root))
	paths, err := ScanMedia(opts.Root, opts.Recursive)
	if err != nil {
		return nil, err
	}
	e.sendProgress(prog, scannedUpdate(len(paths)))
	e.logger.Info("scanned import root", "root", opts.Root, "files", len(paths))

	result := &ImportResult{Root: opts.Root, Total: len(paths), Results: make([]FileResult, 0, len(paths))}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	limiter := rate.NewLimiter(limit, 1)

	jobs := make(chan string, len(paths))
	probed := make(chan FileResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.probeWorker(ctx, &wg, jobs, probed)
	}

	go func() {
		defer close(jobs)
		for i, path := range paths {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- path
			e.sendProgress(prog, probingUpdate(i+1, len(paths), path))
		}
	}()

	go func() {
		wg.Wait()
		close(probed)
	}()

	probes := make([]FileResult, 0, len(paths))
	for res := range probed {
		probes = append(probes, res)
	}
	// Workers finish in any order; saving in path order keeps catalogue sequences stable across runs.
	sort.Slice(probes, func(i, j int) bool { return probes[i].Path < probes[j].Path })

	for i, res := range probes {
		if ctx.Err() != nil {
			break
		}
		completed := i + 1
		if res.Error == nil {
			item := models.NewMediaItem(res.Path, res.Width, res.Height, res.Size)
			res.Created, res.Error = e.writer.SaveMedia(ctx, item)
		}

		switch {
		case res.Error != nil:
			result.Failed++
			e.logger.Warn("import failed", "path", res.Path, "error", res.Error)
			e.sendProgress(prog, failedUpdate(completed, len(paths), res))
		case res.Created:
			result.Imported++
			e.sendProgress(prog, savedUpdate(completed, len(paths), res))
		default:
			result.Skipped++
			e.sendProgress(prog, skippedUpdate(completed, len(paths), res))
		}
		result.Results = append(result.Results, res)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// probeWorker decodes image headers for paths from the jobs channel.
func (e *ImportEngine) probeWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, results chan<- FileResult) {
	defer wg.Done()

	for path := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- ProbeImage(path)
	}
}

// ProbeImage reads the header of the image at path. Only the header is decoded.
func ProbeImage(path string) FileResult {
	res := FileResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		res.Error = fmt.Errorf("failed to open: %w", err)
		return res
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		res.Size = info.Size()
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		res.Error = fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
		return res
	}
	res.Width, res.Height = cfg.Width, cfg.Height
	return res
}

// ScanMedia returns the absolute paths of image files under root in lexical order. Hidden files and
// directories are skipped.
func ScanMedia(root string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat import root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	var paths []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == abs {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if isImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return paths, nil
}

func isImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
