package gallery

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/shared"
)

// Options configures an [Engine].
type Options struct {
	Layout LayoutConfig
	Tiles  TileConfig
	Source Source
	Logger *log.Logger
	// Estimator overrides the [HeightPolicy] built from Tiles.
	Estimator Estimator
	// Debug panics on placement invariant violations instead of clamping.
	Debug bool
}

// Tile is what the rendering boundary receives for each materialized item.
type Tile struct {
	Index     int
	Item      Item
	Lane      int
	Rect      Rect
	Magnify   Magnification
	TabStop   bool
	Focused   bool
	Placement Placement
}

type dirtyFlags struct {
	layout    bool // width, config or count changed
	repack    bool // placements must be rebuilt from scratch
	placement bool // new items to place
}

// Engine composes the gallery components for one list.
//
// Inputs are pushed in through the setters, which only mark what they invalidate. [Engine.Measure]
// recomputes exactly those structures; queries call it first, so a query never sees stale geometry
// once a size-affecting input has changed.
type Engine struct {
	logger *log.Logger

	cfg    LayoutConfig
	tiles  TileConfig
	width  float64
	view   float64
	scroll float64

	items    []Item
	identity uint64

	layout Layout
	cache  *HeightCache
	placer *Placer
	virt   *Virtualizer
	pager  *Paginator
	nav    *Navigator

	dirty dirtyFlags
}

// New creates an engine. Zero-valued layout and tile settings fall back to the defaults.
func New(opts Options) *Engine {
	if opts.Layout.BaseWidth == 0 {
		opts.Layout = DefaultLayoutConfig()
	}
	if opts.Tiles == (TileConfig{}) {
		opts.Tiles = DefaultTileConfig()
	}
	logger := orDiscard(opts.Logger)

	estimate := opts.Estimator
	if estimate == nil {
		estimate = HeightPolicy{MinTileHeight: opts.Tiles.MinTileHeight, FooterHeight: opts.Tiles.FooterHeight}.Estimate
	}

	cache := NewHeightCache()
	placer := NewPlacer(cache, estimate)
	placer.Debug = opts.Debug

	return &Engine{
		logger: logger,
		cfg:    opts.Layout,
		tiles:  opts.Tiles,
		cache:  cache,
		placer: placer,
		virt:   NewVirtualizer(opts.Tiles.OverscanRows),
		pager:  NewPaginator(opts.Source, logger),
		nav:    NewNavigator(),
		dirty:  dirtyFlags{layout: true},
	}
}

// SetConfig installs a new layout config. A value with the same version and geometry is ignored.
func (e *Engine) SetConfig(cfg LayoutConfig) {
	if cfg.Version == e.cfg.Version && cfg.sameGeometry(e.cfg) {
		e.cfg.ReflowDuration = cfg.ReflowDuration
		return
	}
	if !cfg.sameGeometry(e.cfg) {
		// Geometry changed; placements and cached heights are rebuilt.
		e.placer.Invalidate()
		e.dirty.repack = true
	}
	e.logger.Debug("layout config changed", "version", cfg.Version)
	e.cfg = cfg
	e.dirty.layout = true
}

// Config returns the current layout config.
func (e *Engine) Config() LayoutConfig { return e.cfg }

// SetContainerWidth is pushed by the host on resize. Zero or negative means "not measured".
func (e *Engine) SetContainerWidth(w float64) {
	if w == e.width {
		return
	}
	e.width = w
	e.dirty.layout = true
}

// SetViewport is pushed by the host on resize.
func (e *Engine) SetViewport(h float64) { e.view = max(h, 0) }

// SetScroll is pushed by the host on every scroll event. It never triggers re-placement.
func (e *Engine) SetScroll(y float64) { e.scroll = max(y, 0) }

// Scroll returns the current scroll offset.
func (e *Engine) Scroll() float64 { return e.scroll }

// Viewport returns the viewport height.
func (e *Engine) Viewport() float64 { return e.view }

// SetItems replaces the list wholesale (a new query). It starts a new list identity: placements are
// repacked, focus is reset, scroll returns to the top and any outstanding page becomes stale.
// A non-nil source replaces the current one.
func (e *Engine) SetItems(items []Item, source Source) {
	e.identity++
	e.items = append(e.items[:0:0], items...)
	e.placer.Reset()
	e.pager.Reset(e.identity, source)
	e.nav.Reset()
	e.scroll = 0
	e.dirty.layout = true
	e.dirty.repack = true
	e.dirty.placement = true
}

// AppendItems adds items after the current tail. Only the new items are placed.
func (e *Engine) AppendItems(items []Item) {
	if len(items) == 0 {
		return
	}
	e.items = append(e.items, items...)
	e.dirty.layout = true
	e.dirty.placement = true
}

// Items returns the loaded items. The slice must not be modified.
func (e *Engine) Items() []Item { return e.items }

// Len returns the number of loaded items.
func (e *Engine) Len() int { return len(e.items) }

// Identity returns the current list identity.
func (e *Engine) Identity() uint64 { return e.identity }

// Measure recomputes whatever the pending input changes invalidated.
func (e *Engine) Measure() {
	if !e.dirty.layout && !e.dirty.repack && !e.dirty.placement {
		return
	}

	prevLanes := e.layout.Lanes
	if e.dirty.layout {
		e.layout = CalculateLayout(e.width, e.cfg, len(e.items))
		if e.layout.Lanes != prevLanes {
			e.logger.Debug("lane count changed", "from", prevLanes, "to", e.layout.Lanes, "width", e.width)
		}
	}

	if e.dirty.repack {
		e.placer.Reset()
	}
	from := e.placer.Place(e.items, e.layout.Lanes, e.layout.ItemWidth, e.cfg.VerticalGap)
	e.virt.SetPlacements(e.placer.Placements(), e.placer.TotalHeight(), e.layout.Lanes, from)
	e.virt.Measure()
	e.nav.Clamp(len(e.items))

	e.dirty = dirtyFlags{}
}

// Layout returns the current layout.
func (e *Engine) Layout() Layout {
	e.Measure()
	return e.layout
}

// TotalHeight returns the content height.
func (e *Engine) TotalHeight() float64 {
	e.Measure()
	return e.virt.TotalHeight()
}

// MaxScroll returns the largest useful scroll offset.
func (e *Engine) MaxScroll() float64 {
	e.Measure()
	return e.virt.MaxOffset(e.view)
}

// Window returns the materialized range for the current scroll offset.
func (e *Engine) Window() VirtualWindow {
	e.Measure()
	if !e.layout.Ready() {
		return VirtualWindow{First: 0, Last: -1}
	}
	return e.virt.Window(e.scroll, e.view)
}

// Visible returns the tiles to render for the current window.
func (e *Engine) Visible() []Tile {
	w := e.Window()
	if w.Empty() {
		return nil
	}

	tiles := make([]Tile, 0, w.Len())
	total := e.virt.TotalHeight()
	for i := w.First; i <= w.Last; i++ {
		pl, _ := e.virt.Placement(i)
		item := e.items[i]
		tiles = append(tiles, Tile{
			Index:     i,
			Item:      item,
			Lane:      pl.Lane,
			Placement: pl,
			Rect:      Rect{X: e.layout.LaneX(pl.Lane), Y: pl.Start, W: e.layout.ItemWidth, H: pl.Height},
			Magnify: Magnify(MagnifyInput{
				Lane:           pl.Lane,
				Lanes:          e.layout.Lanes,
				PlacedWidth:    e.layout.ItemWidth,
				IntrinsicWidth: item.Width,
				Start:          pl.Start,
				Height:         pl.Height,
				TotalHeight:    total,
			}),
			TabStop: e.nav.TabStop(i, w),
			Focused: e.nav.Focused() == i,
		})
	}
	return tiles
}

// NavResult is the outcome of [Engine.Navigate].
type NavResult struct {
	Index    int
	Scrolled bool
	Focused  bool
}

// Navigate moves focus in dir. When the target is not mounted the engine scrolls to it, recomputes
// the window and focuses it once mounted.
func (e *Engine) Navigate(dir Direction) NavResult {
	w := e.Window()
	if !e.layout.Ready() {
		return NavResult{Index: -1}
	}
	intent := e.nav.Move(dir, len(e.items), e.layout.Lanes, w)
	if intent.Index < 0 {
		return NavResult{Index: -1}
	}
	if intent.Focus {
		e.scroll = e.virt.OffsetFor(intent.Index, e.scroll, e.view, AlignAuto)
		return NavResult{Index: intent.Index, Focused: true}
	}

	e.scroll = e.virt.OffsetFor(intent.Index, e.scroll, e.view, AlignAuto)
	idx, ok := e.nav.Mounted(e.Window())
	return NavResult{Index: intent.Index, Scrolled: true, Focused: ok && idx == intent.Index}
}

// Focus records a focus change from outside keyboard navigation.
func (e *Engine) Focus(i int) {
	if i >= 0 && i < len(e.items) {
		e.nav.Focus(i)
	}
}

// Focused returns the focused index, -1 if none.
func (e *Engine) Focused() int { return e.nav.Focused() }

// Navigator exposes the focus navigator.
func (e *Engine) Navigator() *Navigator { return e.nav }

// CheckPagination returns a [Fetch] when the current window has reached the loaded tail.
func (e *Engine) CheckPagination() Fetch {
	return e.pager.Check(e.Window(), len(e.items))
}

// ApplyPage feeds a fetch result back. Items from a successful page are appended. The fetch error,
// if any, is returned so the host can surface it; stale results are dropped silently.
func (e *Engine) ApplyPage(res PageResult) error {
	if !e.pager.Resolve(res) {
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	e.AppendItems(res.Page.Items)
	e.logger.Debug("page applied", "items", len(res.Page.Items), "loaded", len(e.items), "more", res.Page.HasMore)
	return nil
}

// Paginator exposes the pagination coordinator.
func (e *Engine) Paginator() *Paginator { return e.pager }

// RestoreScroll applies a saved offset, clamped to the current content so it never jumps past the
// end of a list that has not loaded that far yet. Returns the applied offset.
func (e *Engine) RestoreScroll(offset float64) float64 {
	e.scroll = ClampOffset(offset, e.TotalHeight(), e.view)
	return e.scroll
}

// ClampOffset keeps offset within [0, max(totalHeight-viewport, 0)].
func ClampOffset(offset, totalHeight, viewport float64) float64 {
	return clamp(offset, 0, max(totalHeight-viewport, 0))
}

// HeightCache exposes the engine's height cache.
func (e *Engine) HeightCache() *HeightCache { return e.cache }

// Placements returns the current placements.
func (e *Engine) Placements() []Placement {
	e.Measure()
	return e.placer.Placements()
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return shared.NewDiscardLogger()
	}
	return l
}
