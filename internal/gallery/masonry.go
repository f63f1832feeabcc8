package gallery

import (
	"fmt"
	"math"
)

// Aspect ratio bounds applied before estimating a tile height. They keep panoramas and tall strips
// from dominating the grid.
const (
	MinAspect = 0.33
	MaxAspect = 2.0
)

// minPlacedHeight is the floor used when an estimator returns a non-positive height outside debug mode.
const minPlacedHeight = 1.0

// Placement is the lane and vertical extent assigned to one item.
type Placement struct {
	Lane   int
	Start  float64
	Height float64
}

// End returns Start+Height.
func (p Placement) End() float64 { return p.Start + p.Height }

// Estimator returns the tile height for an item rendered at itemWidth.
type Estimator func(item Item, itemWidth float64) float64

// HeightPolicy is the default [Estimator]:
// clamp(h/w, [MinAspect], [MaxAspect]) * itemWidth, floored at MinTileHeight, plus FooterHeight.
type HeightPolicy struct {
	MinTileHeight float64
	FooterHeight  float64
}

// Estimate implements [Estimator].
func (p HeightPolicy) Estimate(item Item, itemWidth float64) float64 {
	aspect := clamp(item.Aspect(), MinAspect, MaxAspect)
	return math.Max(aspect*itemWidth, p.MinTileHeight) + p.FooterHeight
}

// Placer packs items into lanes, shortest lane first.
//
// Packing is append-only: [Placer.Place] with a longer list places only the new suffix, so items that
// were already placed never move. A full repack happens when the lane count, item width or vertical
// gap changes, or after [Placer.Reset].
type Placer struct {
	// Debug turns invariant violations (overlap, negative height) into panics instead of clamping.
	Debug bool

	estimate Estimator
	cache    *HeightCache

	lanes       int
	itemWidth   float64
	gap         float64
	placements  []Placement
	laneHeights []float64
}

// NewPlacer creates a placer backed by cache. A nil cache gets a private one.
func NewPlacer(cache *HeightCache, estimate Estimator) *Placer {
	if cache == nil {
		cache = NewHeightCache()
	}
	if estimate == nil {
		estimate = HeightPolicy{}.Estimate
	}
	return &Placer{cache: cache, estimate: estimate}
}

// Reset forgets every placement. The next Place packs from scratch; cached heights are kept since
// they are keyed by item ID.
func (p *Placer) Reset() {
	p.placements = p.placements[:0]
	p.laneHeights = nil
}

// Invalidate forgets placements and cached heights. Used when the estimator inputs change.
func (p *Placer) Invalidate() {
	p.Reset()
	p.cache.Clear()
}

// Place brings the placements in line with items and returns the index of the first placement that
// changed. A return equal to len(items) means nothing changed.
func (p *Placer) Place(items []Item, lanes int, itemWidth, gap float64) int {
	if lanes <= 0 {
		p.lanes = 0
		p.Reset()
		return 0
	}

	full := lanes != p.lanes || gap != p.gap || len(items) < len(p.placements) || p.laneHeights == nil
	if p.cache.SyncLanes(lanes) {
		full = true
	}
	if itemWidth != p.itemWidth {
		// Heights were estimated at the old width.
		p.cache.Clear()
		full = true
	}
	p.lanes = lanes
	p.itemWidth = itemWidth
	p.gap = gap

	from := len(p.placements)
	if full {
		p.placements = p.placements[:0]
		p.laneHeights = make([]float64, lanes)
		from = 0
	}

	for i := from; i < len(items); i++ {
		p.placements = append(p.placements, p.placeOne(items[i]))
	}
	return from
}

func (p *Placer) placeOne(item Item) Placement {
	lane := 0
	for l := 1; l < len(p.laneHeights); l++ {
		if p.laneHeights[l] < p.laneHeights[lane] {
			lane = l
		}
	}

	h, ok := p.cache.Get(item.ID)
	if !ok {
		h = p.estimate(item, p.itemWidth)
		p.cache.Set(item.ID, h)
	}
	if h <= 0 || math.IsNaN(h) {
		if p.Debug {
			panic(fmt.Sprintf("gallery: non-positive height %v for item %d", h, item.ID))
		}
		h = minPlacedHeight
		p.cache.Set(item.ID, h)
	}

	start := p.laneHeights[lane]
	if p.Debug && len(p.placements) > 0 {
		if prev := p.lastInLane(lane); prev != nil && start < prev.End() {
			panic(fmt.Sprintf("gallery: item %d overlaps lane %d at %v < %v", item.ID, lane, start, prev.End()))
		}
	}

	p.laneHeights[lane] += h + p.gap
	return Placement{Lane: lane, Start: start, Height: h}
}

func (p *Placer) lastInLane(lane int) *Placement {
	for i := len(p.placements) - 1; i >= 0; i-- {
		if p.placements[i].Lane == lane {
			return &p.placements[i]
		}
	}
	return nil
}

// Placements returns the current placements, indexed like the item list. The slice is owned by the
// placer and is only valid until the next Place.
func (p *Placer) Placements() []Placement { return p.placements }

// Lanes returns the lane count the placements were computed for.
func (p *Placer) Lanes() int { return p.lanes }

// TotalHeight returns the height of the tallest lane, without the trailing gap.
func (p *Placer) TotalHeight() float64 {
	if len(p.placements) == 0 {
		return 0
	}
	tallest := 0.0
	for _, h := range p.laneHeights {
		tallest = math.Max(tallest, h)
	}
	return math.Max(tallest-p.gap, 0)
}

// LaneHeight returns the running height of lane, trailing gap included.
func (p *Placer) LaneHeight(lane int) float64 {
	if lane < 0 || lane >= len(p.laneHeights) {
		return 0
	}
	return p.laneHeights[lane]
}

// Verify checks that no two placements in the same lane overlap and that every height is positive.
func Verify(placements []Placement) error {
	ends := map[int]float64{}
	for i, pl := range placements {
		if pl.Height <= 0 {
			return fmt.Errorf("placement %d: non-positive height %v", i, pl.Height)
		}
		if end, ok := ends[pl.Lane]; ok && pl.Start < end {
			return fmt.Errorf("placement %d: starts at %v inside lane %d (previous end %v)", i, pl.Start, pl.Lane, end)
		}
		ends[pl.Lane] = pl.End()
	}
	return nil
}
