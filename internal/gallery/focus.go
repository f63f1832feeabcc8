package gallery

// Direction is a navigation key.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	Home
	End
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case Home:
		return "home"
	case End:
		return "end"
	default:
		return ""
	}
}

// NavPhase is the navigator state.
type NavPhase int

const (
	Idle       NavPhase = iota
	Navigating          // waiting for the target to mount
)

// FocusState is the keyboard focus bookkeeping. LastFocused is -1 before anything was focused.
type FocusState struct {
	LastFocused int
}

// Intent tells the host what a navigation step needs.
//
// When Scroll is set the target is not mounted: the host scrolls to it and calls
// [Navigator.Mounted] once the new window is computed. Focus is set when the target can be focused
// right away.
type Intent struct {
	Index  int
	Scroll bool
	Focus  bool
}

// Navigator moves keyboard focus across the grid and decides which tile is the tab stop.
//
// Movement treats the grid as row-major: index i sits in lane i%lanes, row i/lanes. Targets are
// clamped to [0, n-1], so an out-of-range move is never an error.
type Navigator struct {
	state  FocusState
	phase  NavPhase
	target int
}

// NewNavigator returns an idle navigator with nothing focused.
func NewNavigator() *Navigator {
	return &Navigator{state: FocusState{LastFocused: -1}, target: -1}
}

// Move computes the target of dir from the focused index. Before anything is focused the first
// mounted item is the origin.
func (n *Navigator) Move(dir Direction, count, lanes int, w VirtualWindow) Intent {
	if count <= 0 {
		return Intent{Index: -1}
	}
	lanes = max(lanes, 1)

	from := n.state.LastFocused
	if n.phase == Navigating && n.target >= 0 {
		from = n.target
	}
	if from < 0 || from >= count {
		from = clampInt(w.First, 0, count-1)
	}

	to := from
	switch dir {
	case Left:
		to = from - 1
	case Right:
		to = from + 1
	case Up:
		to = from - lanes
	case Down:
		to = from + lanes
	case Home:
		to = 0
	case End:
		to = count - 1
	}
	to = clampInt(to, 0, count-1)

	if !w.Contains(to) {
		n.phase = Navigating
		n.target = to
		return Intent{Index: to, Scroll: true}
	}

	n.focus(to)
	return Intent{Index: to, Focus: true}
}

// Mounted is called after the window changes. While navigating it reports the target once it has
// mounted, focuses it and returns to idle.
func (n *Navigator) Mounted(w VirtualWindow) (int, bool) {
	if n.phase != Navigating || !w.Contains(n.target) {
		return -1, false
	}
	idx := n.target
	n.focus(idx)
	return idx, true
}

// Focus records a focus change coming from outside the navigator (pointer, tab).
func (n *Navigator) Focus(i int) { n.focus(i) }

func (n *Navigator) focus(i int) {
	n.state.LastFocused = i
	n.phase = Idle
	n.target = -1
}

// TabStop reports whether index i is the single tab-reachable tile in w: the last focused tile when
// it is mounted, otherwise the first mounted tile.
func (n *Navigator) TabStop(i int, w VirtualWindow) bool {
	if !w.Contains(i) {
		return false
	}
	if w.Contains(n.state.LastFocused) {
		return i == n.state.LastFocused
	}
	return i == w.First
}

// Focused returns the last focused index, -1 if none.
func (n *Navigator) Focused() int { return n.state.LastFocused }

// Phase returns the navigator state.
func (n *Navigator) Phase() NavPhase { return n.phase }

// Target returns the pending target while navigating, -1 otherwise.
func (n *Navigator) Target() int { return n.target }

// Reset forgets focus, used when the list is replaced.
func (n *Navigator) Reset() {
	n.state.LastFocused = -1
	n.phase = Idle
	n.target = -1
}

// Clamp keeps the focus inside a list of count items.
func (n *Navigator) Clamp(count int) {
	if count == 0 {
		n.Reset()
		return
	}
	if n.state.LastFocused >= count {
		n.state.LastFocused = count - 1
	}
	if n.target >= count {
		n.target = count - 1
	}
}
