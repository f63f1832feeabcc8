package gallery

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/shared"
)

// Page is one batch of items from a [Source].
type Page struct {
	Items   []Item
	HasMore bool
}

// Source supplies items page by page. Each call returns the page after the previous one; errors
// surface as a returned error and must leave the cursor where it was so the next call retries.
type Source interface {
	LoadPage(ctx context.Context) (Page, error)
}

// PageResult is the outcome of one [Fetch]. Identity ties it to the list it was requested for.
type PageResult struct {
	Identity uint64
	Page     Page
	Err      error
}

// Fetch performs one page load. It is safe to run on any goroutine.
type Fetch func(ctx context.Context) PageResult

// Paginator decides when to ask the [Source] for the next page.
//
// A request is issued when the window's last index reaches the loaded tail, more data is available,
// and no request is outstanding. The in-flight flag is checked and set synchronously on the caller's
// goroutine, so any number of window recomputations while a fetch is outstanding issue nothing.
type Paginator struct {
	source   Source
	logger   *log.Logger
	identity uint64
	inFlight bool
	hasMore  bool
	lastErr  error
	requests int
}

// NewPaginator creates a paginator for source. A nil logger discards output.
func NewPaginator(source Source, logger *log.Logger) *Paginator {
	return &Paginator{source: source, logger: orDiscard(logger), hasMore: true}
}

// Check returns a [Fetch] when the window qualifies for the next page, or nil.
// The caller must run the returned fetch exactly once and hand its result to [Paginator.Resolve].
func (p *Paginator) Check(w VirtualWindow, loaded int) Fetch {
	if p.source == nil || p.inFlight || !p.hasMore {
		return nil
	}
	if w.Last < loaded-1 {
		return nil
	}

	p.inFlight = true
	p.requests++
	identity := p.identity
	source := p.source
	p.logger.Debug("requesting next page", "loaded", loaded, "last", w.Last, "identity", identity)

	return func(ctx context.Context) PageResult {
		page, err := source.LoadPage(ctx)
		if err != nil {
			err = fmt.Errorf("%w: %w", shared.ErrPageFailed, err)
		}
		return PageResult{Identity: identity, Page: page, Err: err}
	}
}

// Resolve records the outcome of a fetch. It reports whether the result belongs to the current list;
// stale results are dropped without touching any state.
//
// On failure the in-flight flag clears, HasMore is left alone, and the error is kept in
// [Paginator.LastErr] until the next success. Nothing is retried here: the next qualifying
// [Paginator.Check] issues a fresh request.
func (p *Paginator) Resolve(res PageResult) bool {
	if res.Identity != p.identity {
		p.logger.Debug("dropping stale page", "identity", res.Identity, "current", p.identity)
		return false
	}
	p.inFlight = false
	if res.Err != nil {
		p.lastErr = res.Err
		p.logger.Warn("page request failed", "error", res.Err)
		return true
	}
	p.lastErr = nil
	p.hasMore = res.Page.HasMore
	return true
}

// Reset starts tracking a new list identity, optionally with a new source. Any outstanding fetch
// becomes stale.
func (p *Paginator) Reset(identity uint64, source Source) {
	p.identity = identity
	if source != nil {
		p.source = source
	}
	p.inFlight = false
	p.hasMore = true
	p.lastErr = nil
}

// InFlight reports whether a fetch is outstanding.
func (p *Paginator) InFlight() bool { return p.inFlight }

// HasMore reports whether the source has more pages.
func (p *Paginator) HasMore() bool { return p.hasMore }

// LastErr returns the most recent failure, cleared by the next success or a reset.
func (p *Paginator) LastErr() error { return p.lastErr }

// Requests returns how many fetches have been issued.
func (p *Paginator) Requests() int { return p.requests }

// Identity returns the current list identity.
func (p *Paginator) Identity() uint64 { return p.identity }
