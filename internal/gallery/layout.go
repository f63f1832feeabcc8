package gallery

import "math"

// Layout is the concrete grid geometry for one container width.
//
// Lanes == 0 means the container has not been measured yet. Callers render a placeholder and never
// index lanes in that state. Count == 0 is reported separately by [Layout.Empty].
type Layout struct {
	Lanes           int
	ItemWidth       float64
	MaxContentWidth float64
	Offset          float64 // left inset of the grid block inside the container
	Gap             float64
	Count           int
}

// Ready reports whether the container width is known.
func (l Layout) Ready() bool { return l.Lanes > 0 }

// Empty reports whether there is nothing to render.
func (l Layout) Empty() bool { return l.Count == 0 }

// LaneX returns the left edge of lane.
func (l Layout) LaneX(lane int) float64 {
	return l.Offset + float64(lane)*(l.ItemWidth+l.Gap)
}

// CalculateLayout turns a container width into a lane count and tile width.
//
// The lane count is the largest that fits baseWidth tiles separated by the horizontal gap, clamped to
// the configured bounds. With ExpandToFill the tiles stretch so the lanes and gaps fill the width
// exactly; otherwise tiles keep the base width and the block is centered.
func CalculateLayout(containerWidth float64, cfg LayoutConfig, n int) Layout {
	out := Layout{Gap: cfg.HorizontalGap, Count: n}
	if containerWidth <= 0 || cfg.BaseWidth <= 0 {
		return out
	}

	gap := cfg.HorizontalGap
	lanes := int(math.Floor((containerWidth + gap) / (cfg.BaseWidth + gap)))
	minLanes := max(cfg.MinLanes, 1)
	maxLanes := max(cfg.MaxLanes, minLanes)
	lanes = clampInt(lanes, minLanes, maxLanes)

	out.Lanes = lanes
	gaps := float64(lanes-1) * gap

	if cfg.ExpandToFill {
		out.ItemWidth = math.Max((containerWidth-gaps)/float64(lanes), 1)
		out.MaxContentWidth = out.ItemWidth*float64(lanes) + gaps
		return out
	}

	out.ItemWidth = cfg.BaseWidth
	out.MaxContentWidth = float64(lanes)*(cfg.BaseWidth+gap) - gap
	out.Offset = math.Max((containerWidth-out.MaxContentWidth)/2, 0)
	return out
}
