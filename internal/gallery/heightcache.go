package gallery

// HeightCache remembers the last estimated height per item ID.
//
// The cache is keyed to the lane count it was filled under and is cleared when that changes. The
// [Placer] also clears it when the item width changes under a fixed lane count. Scrolling never
// touches it.
type HeightCache struct {
	lanes   int
	heights map[int64]float64
}

// NewHeightCache creates an empty cache.
func NewHeightCache() *HeightCache {
	return &HeightCache{heights: make(map[int64]float64)}
}

// Get returns the cached height for id.
func (c *HeightCache) Get(id int64) (float64, bool) {
	h, ok := c.heights[id]
	return h, ok
}

// Set stores the height for id.
func (c *HeightCache) Set(id int64, h float64) {
	c.heights[id] = h
}

// Len returns the number of cached heights.
func (c *HeightCache) Len() int { return len(c.heights) }

// Clear drops every cached height.
func (c *HeightCache) Clear() {
	clear(c.heights)
}

// SyncLanes clears the cache if lanes differs from the lane count it was filled under.
// Reports whether it cleared.
func (c *HeightCache) SyncLanes(lanes int) bool {
	if c.lanes == lanes {
		return false
	}
	c.lanes = lanes
	if len(c.heights) == 0 {
		return false
	}
	c.Clear()
	return true
}
