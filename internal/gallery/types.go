package gallery

import (
	"fmt"
	"time"

	"github.com/desertthunder/mosaic/internal/shared"
)

// Item is a media item as supplied by a [Source]. The engine only reads it.
type Item struct {
	ID     int64
	Width  float64 // intrinsic width
	Height float64 // intrinsic height
}

// Aspect returns height/width, or 1 when either dimension is unknown.
func (i Item) Aspect() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 1
	}
	return i.Height / i.Width
}

// LayoutConfig holds the user-tunable layout settings.
//
// Version is bumped by whoever produces a new value; the engine treats a value with an unchanged
// Version and identical fields as a no-op.
type LayoutConfig struct {
	Version        uint64
	BaseWidth      float64
	MinLanes       int
	MaxLanes       int
	HorizontalGap  float64
	VerticalGap    float64
	ExpandToFill   bool
	ReflowDuration time.Duration
}

// DefaultLayoutConfig mirrors the defaults shipped in config.example.toml.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Version:        1,
		BaseWidth:      200,
		MinLanes:       1,
		MaxLanes:       12,
		HorizontalGap:  8,
		VerticalGap:    8,
		ReflowDuration: 200 * time.Millisecond,
	}
}

// Validate checks the config for values the layout math cannot work with.
func (c LayoutConfig) Validate() error {
	switch {
	case c.BaseWidth <= 0:
		return fmt.Errorf("%w: base width must be positive, got %v", shared.ErrInvalidConfig, c.BaseWidth)
	case c.MinLanes < 1:
		return fmt.Errorf("%w: min lanes must be at least 1, got %d", shared.ErrInvalidConfig, c.MinLanes)
	case c.MaxLanes < c.MinLanes:
		return fmt.Errorf("%w: max lanes (%d) below min lanes (%d)", shared.ErrInvalidConfig, c.MaxLanes, c.MinLanes)
	case c.HorizontalGap < 0 || c.VerticalGap < 0:
		return fmt.Errorf("%w: gaps must not be negative", shared.ErrInvalidConfig)
	case c.ReflowDuration < 0:
		return fmt.Errorf("%w: reflow duration must not be negative", shared.ErrInvalidConfig)
	}
	return nil
}

// sameGeometry reports whether two configs produce the same layout.
// ReflowDuration and Version are ignored.
func (c LayoutConfig) sameGeometry(o LayoutConfig) bool {
	return c.BaseWidth == o.BaseWidth &&
		c.MinLanes == o.MinLanes &&
		c.MaxLanes == o.MaxLanes &&
		c.HorizontalGap == o.HorizontalGap &&
		c.VerticalGap == o.VerticalGap &&
		c.ExpandToFill == o.ExpandToFill
}

// TileConfig controls tile height estimation and overscan.
type TileConfig struct {
	MinTileHeight float64
	FooterHeight  float64
	OverscanRows  int
}

// DefaultTileConfig returns the tile defaults.
func DefaultTileConfig() TileConfig {
	return TileConfig{MinTileHeight: 80, FooterHeight: 0, OverscanRows: 4}
}

// Rect is a placed rectangle in content coordinates (y grows downward from the top of the grid).
type Rect struct {
	X, Y, W, H float64
}

// Bottom returns Y+H.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Right returns X+W.
func (r Rect) Right() float64 { return r.X + r.W }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
