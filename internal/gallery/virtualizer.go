package gallery

import (
	"math"
	"sort"
)

// VirtualWindow is the contiguous index range that must be materialized. Last < First means nothing.
type VirtualWindow struct {
	First       int
	Last        int
	TotalHeight float64
}

// Empty reports whether the window holds no items.
func (w VirtualWindow) Empty() bool { return w.Last < w.First }

// Len returns the number of items in the window.
func (w VirtualWindow) Len() int {
	if w.Empty() {
		return 0
	}
	return w.Last - w.First + 1
}

// Contains reports whether index i is materialized.
func (w VirtualWindow) Contains(i int) bool { return i >= w.First && i <= w.Last }

// Align controls where [Virtualizer.OffsetFor] puts the target item.
type Align int

const (
	AlignAuto   Align = iota // scroll the least distance that makes the item fully visible
	AlignStart               // item top at viewport top
	AlignCenter              // item centered in the viewport
)

// Virtualizer maps a scroll offset to the [VirtualWindow] of placed items.
//
// Greedy shortest-lane packing places each item at the minimum lane height, which only grows, so
// placement starts are non-decreasing by index. That lets both window edges be found by binary
// search: the last index is the last start below the viewport bottom, the first index is the first
// position where the running maximum of ends passes the viewport top.
type Virtualizer struct {
	overscan      int // rows added on each side of the strict range
	overscanLanes int

	placements []Placement
	total      float64
	maxEnd     []float64
	dirtyFrom  int
	dirty      bool
}

// NewVirtualizer creates a virtualizer that pads the window by overscanRows rows on both ends.
func NewVirtualizer(overscanRows int) *Virtualizer {
	return &Virtualizer{overscan: max(overscanRows, 0)}
}

// SetPlacements hands new placements to the virtualizer. changedFrom is the first index whose
// placement differs from the previous call; everything before it is assumed unchanged.
// The running-maximum index is rebuilt lazily on the next [Virtualizer.Measure] or window query.
func (v *Virtualizer) SetPlacements(placements []Placement, total float64, lanes, changedFrom int) {
	v.placements = placements
	v.total = total
	if lanes > 0 {
		v.overscanLanes = lanes
	}
	if !v.dirty || changedFrom < v.dirtyFrom {
		v.dirtyFrom = changedFrom
	}
	v.dirty = true
}

// Measure rebuilds the search index for placements changed since the last call.
func (v *Virtualizer) Measure() {
	if !v.dirty {
		return
	}
	from := clampInt(v.dirtyFrom, 0, len(v.maxEnd))
	from = min(from, len(v.placements))
	v.maxEnd = v.maxEnd[:from]
	running := 0.0
	if from > 0 {
		running = v.maxEnd[from-1]
	}
	for _, pl := range v.placements[from:] {
		running = math.Max(running, pl.End())
		v.maxEnd = append(v.maxEnd, running)
	}
	v.dirty = false
	v.dirtyFrom = len(v.placements)
}

// TotalHeight returns the content height.
func (v *Virtualizer) TotalHeight() float64 { return v.total }

// MaxOffset returns the largest meaningful scroll offset for a viewport of the given height.
func (v *Virtualizer) MaxOffset(viewport float64) float64 {
	return math.Max(v.total-viewport, 0)
}

// Window returns every item intersecting [scroll, scroll+viewport), padded by the overscan.
func (v *Virtualizer) Window(scroll, viewport float64) VirtualWindow {
	v.Measure()
	w := VirtualWindow{First: 0, Last: -1, TotalHeight: v.total}
	n := len(v.placements)
	if n == 0 || viewport <= 0 {
		return w
	}

	top := math.Max(scroll, 0)
	bottom := scroll + viewport

	first := sort.Search(n, func(i int) bool { return v.maxEnd[i] > top })
	last := sort.Search(n, func(i int) bool { return v.placements[i].Start >= bottom }) - 1
	switch {
	case first >= n:
		// Scrolled past the content; keep the tail mounted so focus has somewhere to land.
		first, last = n-1, n-1
	case last < 0:
		first, last = 0, 0
	}
	if last < first {
		last = first
	}

	pad := v.overscan * max(v.overscanLanes, 1)
	w.First = max(first-pad, 0)
	w.Last = min(last+pad, n-1)
	return w
}

// OffsetFor returns the scroll offset that brings item index into a viewport of the given height.
// index is clamped to the placed range; current is the present offset, used by [AlignAuto].
func (v *Virtualizer) OffsetFor(index int, current, viewport float64, align Align) float64 {
	n := len(v.placements)
	if n == 0 {
		return 0
	}
	pl := v.placements[clampInt(index, 0, n-1)]

	var offset float64
	switch align {
	case AlignStart:
		offset = pl.Start
	case AlignCenter:
		offset = pl.Start + pl.Height/2 - viewport/2
	default:
		switch {
		case pl.Start < current:
			offset = pl.Start
		case pl.End() > current+viewport:
			offset = math.Min(pl.Start, pl.End()-viewport)
		default:
			offset = current
		}
	}
	return clamp(offset, 0, v.MaxOffset(viewport))
}

// Placement returns the placement for index.
func (v *Virtualizer) Placement(index int) (Placement, bool) {
	if index < 0 || index >= len(v.placements) {
		return Placement{}, false
	}
	return v.placements[index], true
}

// Len returns the number of placed items.
func (v *Virtualizer) Len() int { return len(v.placements) }
