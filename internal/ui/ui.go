package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/gallery"
	"github.com/desertthunder/mosaic/internal/scrollstore"
	"github.com/desertthunder/mosaic/internal/shared"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	// statusRows is the number of terminal rows used by the status line.
	statusRows = 1
	frame      = time.Second / 60
)

// Options configures a browser [Model].
type Options struct {
	Engine *gallery.Engine
	// Store and Saver persist the scroll anchor under Key. Both may be nil.
	Store scrollstore.Store
	Saver *scrollstore.Saver
	Key   string
	Cell  CellSize
	Title string
	// Open is called with the focused item on enter. Nil disables opening.
	Open func(item gallery.Item) error
	// Smooth animates page scrolls over this long. Zero jumps.
	Smooth time.Duration
	Logger *log.Logger
}

// Model is the gallery browser.
type Model struct {
	ctx    context.Context
	engine *gallery.Engine
	store  scrollstore.Store
	saver  *scrollstore.Saver
	key    string
	cell   CellSize
	title  string
	open   func(item gallery.Item) error
	smooth time.Duration
	logger *log.Logger

	width  int
	height int

	// restoring holds a saved offset that is re-applied after each page until the content is tall
	// enough to reach it or the source runs out.
	restoring bool
	restoreTo float64
	loading   bool
	err       error
	notice    string
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	quitting  bool

	// anim eases the scroll offset towards animTo, one frame per tick.
	anim    *gween.Tween
	animTo  float64
	ticking bool
}

// NewModel creates a browser over opts.Engine.
func NewModel(ctx context.Context, opts Options) *Model {
	if !opts.Cell.valid() {
		opts.Cell = DefaultCellSize()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}
	if opts.Title == "" {
		opts.Title = "mosaic"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:     ctx,
		engine:  opts.Engine,
		store:   opts.Store,
		saver:   opts.Saver,
		key:     opts.Key,
		cell:    opts.Cell,
		title:   opts.Title,
		open:    opts.Open,
		smooth:  opts.Smooth,
		logger:  opts.Logger,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init restores the scroll anchor and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.restoreAnchor())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, m.maybeFetch()

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPageLoaded:
		res := msg.data.(gallery.PageResult)
		m.loading = false
		if err := m.engine.ApplyPage(res); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.continueRestore()
		return m, m.maybeFetch()

	case MsgAnchorRestored:
		r := msg.data.(anchorRestored)
		if r.err != nil {
			m.logger.Warn("failed to restore scroll anchor", "key", m.key, "error", r.err)
		}
		if r.ok && r.offset > 0 {
			m.restoring = true
			m.restoreTo = r.offset
			if m.saver != nil {
				m.saver.Seed(m.key, r.offset)
			}
			m.continueRestore()
		}
		return m, m.maybeFetch()

	case MsgAnchorSaved:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("failed to save scroll anchor", "key", m.key, "error", err)
		}
		return m, nil

	case MsgScrollFrame:
		return m, m.stepAnimation()

	case MsgOpened:
		if err, _ := msg.data.(error); err != nil {
			m.notice = fmt.Sprintf("open failed: %v", err)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil
	case key.Matches(msg, m.keys.up):
		return m, m.navigate(gallery.Up)
	case key.Matches(msg, m.keys.down):
		return m, m.navigate(gallery.Down)
	case key.Matches(msg, m.keys.left):
		return m, m.navigate(gallery.Left)
	case key.Matches(msg, m.keys.right):
		return m, m.navigate(gallery.Right)
	case key.Matches(msg, m.keys.home):
		return m, m.navigate(gallery.Home)
	case key.Matches(msg, m.keys.end):
		return m, m.navigate(gallery.End)
	case key.Matches(msg, m.keys.pageUp):
		return m, m.pageBy(-m.engine.Viewport())
	case key.Matches(msg, m.keys.pageDown):
		return m, m.pageBy(m.engine.Viewport())
	case key.Matches(msg, m.keys.halfUp):
		return m, m.pageBy(-m.engine.Viewport() / 2)
	case key.Matches(msg, m.keys.halfDown):
		return m, m.pageBy(m.engine.Viewport() / 2)
	case key.Matches(msg, m.keys.tab):
		m.focusTabStop()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.openFocused()
	case key.Matches(msg, m.keys.retry):
		if m.err == nil {
			return m, nil
		}
		m.err = nil
		return m, m.maybeFetch()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m, m.scrollBy(-3 * m.cell.H)
	case tea.MouseButtonWheelDown:
		return m, m.scrollBy(3 * m.cell.H)
	case tea.MouseButtonLeft:
		if i, ok := m.tileAt(msg.X, msg.Y); ok {
			m.engine.Focus(i)
		}
	}
	return m, nil
}

// View renders the grid, the status line and the help line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return m.spinner.View() + " starting..."
	}

	rows := m.gridRows()
	var grid string
	switch {
	case m.engine.Len() == 0 && m.loading:
		grid = placeholder(m.width, rows, m.spinner.View()+" loading...")
	case m.engine.Len() == 0 && m.err == nil:
		grid = placeholder(m.width, rows, styles.help.Render("nothing to show"))
	default:
		c := newCanvas(m.width, rows)
		c.draw(m.engine.Visible(), m.engine.Scroll(), m.cell)
		grid = c.render(styles)
	}

	return lipgloss.JoinVertical(lipgloss.Left, grid, m.statusLine(), m.help.View(m.keys))
}

func placeholder(width, rows int, msg string) string {
	return lipgloss.Place(width, max(rows, 1), lipgloss.Center, lipgloss.Center, msg)
}

func (m *Model) statusLine() string {
	parts := []string{styles.status.Render(m.title)}

	n := m.engine.Len()
	focused := m.engine.Focused()
	if focused >= 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", focused+1, n))
	} else {
		parts = append(parts, fmt.Sprintf("%d items", n))
	}
	parts = append(parts, fmt.Sprintf("%d lanes", m.engine.Layout().Lanes))

	if mag, ok := m.focusedMagnification(); ok {
		parts = append(parts, fmt.Sprintf("zoom %.2f× from %s", mag.Scale, mag.Origin))
	}

	if total := m.engine.TotalHeight(); total > 0 {
		pct := 100.0
		if maxScroll := m.engine.MaxScroll(); maxScroll > 0 {
			pct = m.engine.Scroll() / maxScroll * 100
		}
		parts = append(parts, fmt.Sprintf("%3.0f%%", pct))
	}

	switch {
	case m.err != nil:
		parts = append(parts, styles.err.Render(fmt.Sprintf("load failed: %v", m.err))+styles.help.Render(" (r to retry)"))
	case m.loading:
		parts = append(parts, m.spinner.View()+" loading")
	case !m.engine.Paginator().HasMore() && n > 0:
		parts = append(parts, styles.ok.Render("all loaded"))
	}
	if m.notice != "" {
		parts = append(parts, styles.warn.Render(m.notice))
	}

	return strings.Join(parts, "  ")
}

func (m *Model) focusedMagnification() (gallery.Magnification, bool) {
	focused := m.engine.Focused()
	for _, t := range m.engine.Visible() {
		if t.Index == focused {
			return t.Magnify, true
		}
	}
	return gallery.Magnification{}, false
}

// resize pushes the terminal size into the engine in layout units.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.engine.SetContainerWidth(float64(width) * m.cell.W)
	m.engine.SetViewport(float64(m.gridRows()) * m.cell.H)
	m.engine.SetScroll(gallery.ClampOffset(m.engine.Scroll(), m.engine.TotalHeight(), m.engine.Viewport()))
}

func (m *Model) gridRows() int {
	helpRows := 1
	if m.help.ShowAll {
		for _, group := range m.keys.FullHelp() {
			helpRows = max(helpRows, len(group))
		}
	}
	return max(m.height-statusRows-helpRows, 1)
}

func (m *Model) navigate(dir gallery.Direction) tea.Cmd {
	before := m.engine.Scroll()
	m.restoring = false
	m.anim = nil
	m.engine.Navigate(dir)
	if m.engine.Scroll() != before {
		return tea.Batch(m.recordScroll(), m.maybeFetch())
	}
	return m.maybeFetch()
}

func (m *Model) scrollBy(delta float64) tea.Cmd {
	m.restoring = false
	m.anim = nil
	next := gallery.ClampOffset(m.engine.Scroll()+delta, m.engine.TotalHeight(), m.engine.Viewport())
	if next == m.engine.Scroll() {
		return m.maybeFetch()
	}
	m.engine.SetScroll(next)
	return tea.Batch(m.recordScroll(), m.maybeFetch())
}

// pageBy scrolls by delta, eased over the smooth duration when one is set. Repeated presses extend
// the running animation from its target.
func (m *Model) pageBy(delta float64) tea.Cmd {
	if m.smooth <= 0 {
		return m.scrollBy(delta)
	}
	m.restoring = false
	from := m.engine.Scroll()
	base := from
	if m.anim != nil {
		base = m.animTo
	}
	next := gallery.ClampOffset(base+delta, m.engine.TotalHeight(), m.engine.Viewport())
	if next == from {
		m.anim = nil
		return m.maybeFetch()
	}
	m.anim = gween.New(float32(from), float32(next), float32(m.smooth.Seconds()), ease.OutCubic)
	m.animTo = next
	if m.ticking {
		return nil
	}
	m.ticking = true
	return scrollFrame()
}

func scrollFrame() tea.Cmd {
	return tea.Tick(frame, func(time.Time) tea.Msg { return scrollFrameMsg() })
}

// stepAnimation advances the scroll animation by one frame. The last frame lands exactly on the
// target and records it.
func (m *Model) stepAnimation() tea.Cmd {
	m.ticking = false
	if m.anim == nil {
		return nil
	}
	val, done := m.anim.Update(float32(frame.Seconds()))
	if done {
		m.engine.SetScroll(m.animTo)
		m.anim = nil
		return tea.Batch(m.recordScroll(), m.maybeFetch())
	}
	m.engine.SetScroll(gallery.ClampOffset(float64(val), m.engine.TotalHeight(), m.engine.Viewport()))
	m.ticking = true
	return tea.Batch(scrollFrame(), m.maybeFetch())
}

func (m *Model) focusTabStop() {
	w := m.engine.Window()
	for i := w.First; i <= w.Last && !w.Empty(); i++ {
		if m.engine.Navigator().TabStop(i, w) {
			m.engine.Focus(i)
			return
		}
	}
}

// tileAt maps a terminal cell to the visible tile under it.
func (m *Model) tileAt(col, row int) (int, bool) {
	for _, t := range m.engine.Visible() {
		r := toCells(t.Rect, m.engine.Scroll(), m.cell)
		if col >= r.col0 && col <= r.col1 && row >= r.row0 && row <= r.row1 {
			return t.Index, true
		}
	}
	return -1, false
}

// continueRestore re-applies a pending anchor against the content loaded so far.
func (m *Model) continueRestore() {
	if !m.restoring {
		return
	}
	applied := m.engine.RestoreScroll(m.restoreTo)
	if applied >= m.restoreTo || !m.engine.Paginator().HasMore() {
		m.restoring = false
		m.logger.Debug("scroll anchor restored", "key", m.key, "offset", applied)
	}
}

func (m *Model) maybeFetch() tea.Cmd {
	if m.err != nil {
		return nil
	}
	fetch := m.engine.CheckPagination()
	if fetch == nil {
		return nil
	}
	m.loading = true
	ctx := m.ctx
	return func() tea.Msg {
		return pageLoadedMsg(fetch(ctx))
	}
}

func (m *Model) restoreAnchor() tea.Cmd {
	if m.store == nil || m.key == "" {
		return nil
	}
	store, key, ctx := m.store, m.key, m.ctx
	return func() tea.Msg {
		offset, ok, err := store.Restore(ctx, key)
		return anchorRestoredMsg(offset, ok, err)
	}
}

func (m *Model) recordScroll() tea.Cmd {
	if m.saver == nil || m.key == "" {
		return nil
	}
	saver, key, ctx, offset := m.saver, m.key, m.ctx, m.engine.Scroll()
	return func() tea.Msg {
		return anchorSavedMsg(saver.Record(ctx, key, offset))
	}
}

func (m *Model) openFocused() tea.Cmd {
	i := m.engine.Focused()
	if m.open == nil || i < 0 || i >= m.engine.Len() {
		return nil
	}
	item, open := m.engine.Items()[i], m.open
	return func() tea.Msg {
		return openedMsg(open(item))
	}
}

// quit flushes the pending scroll anchor before exiting.
func (m *Model) quit() tea.Cmd {
	m.quitting = true
	if m.saver != nil && m.key != "" {
		if err := m.saver.Record(m.ctx, m.key, m.engine.Scroll()); err != nil {
			m.logger.Warn("failed to record scroll anchor", "error", err)
		}
		if err := m.saver.Flush(m.ctx); err != nil {
			m.logger.Warn("failed to flush scroll anchor", "error", err)
		}
	}
	return tea.Quit
}

// Err returns the last page load error.
func (m *Model) Err() error { return m.err }

// ScrollRows returns the scroll offset in terminal rows.
func (m *Model) ScrollRows() int { return int(math.Round(m.engine.Scroll() / m.cell.H)) }
