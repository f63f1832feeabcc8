// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/mosaic/internal/gallery"
)

// MockSource is a scripted test double for [gallery.Source].
//
// Each LoadPage call pops the next step; once the script runs out it returns an empty final page.
type MockSource struct {
	mu    sync.Mutex
	steps []MockStep
	calls int
}

// MockStep is one scripted LoadPage outcome.
type MockStep struct {
	Page gallery.Page
	Err  error
}

func NewMockSource(steps ...MockStep) *MockSource {
	return &MockSource{steps: steps}
}

func (m *MockSource) LoadPage(ctx context.Context) (gallery.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return gallery.Page{}, err
	}
	if len(m.steps) == 0 {
		return gallery.Page{}, nil
	}
	step := m.steps[0]
	m.steps = m.steps[1:]
	return step.Page, step.Err
}

// Calls returns how many times LoadPage ran.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Items builds n items numbered from start with the given intrinsic size.
func Items(start, n int, width, height float64) []gallery.Item {
	items := make([]gallery.Item, n)
	for i := range items {
		items[i] = gallery.Item{ID: int64(start + i), Width: width, Height: height}
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
