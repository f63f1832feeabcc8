package gallery

import "math"

// Scale bounds for hover magnification.
const (
	MinHoverScale = 1.05
	MaxHoverScale = 2.5
	// intrinsicHeadroom lets a tile grow slightly past its source resolution.
	intrinsicHeadroom = 1.1
	// growSlack absorbs rounding when growth exactly fills the room on both sides.
	growSlack = 1e-9
)

// OriginX is the horizontal anchor of the transform; the tile grows away from it.
type OriginX int

const (
	OriginCenter OriginX = iota // grow symmetrically
	OriginLeft                  // grow rightward
	OriginRight                 // grow leftward
)

func (o OriginX) String() string {
	switch o {
	case OriginLeft:
		return "left"
	case OriginRight:
		return "right"
	default:
		return "center"
	}
}

// OriginY is the vertical anchor of the transform.
type OriginY int

const (
	OriginMiddle OriginY = iota
	OriginTop            // grow downward
	OriginBottom         // grow upward
)

func (o OriginY) String() string {
	switch o {
	case OriginTop:
		return "top"
	case OriginBottom:
		return "bottom"
	default:
		return "center"
	}
}

// Origin is a transform origin.
type Origin struct {
	X OriginX
	Y OriginY
}

// String renders the origin as "<x> <y>", e.g. "left top".
func (o Origin) String() string { return o.X.String() + " " + o.Y.String() }

// Magnification is the hover transform for one tile.
type Magnification struct {
	Scale  float64
	Origin Origin
}

// MagnifyInput describes a placed tile and the grid around it.
type MagnifyInput struct {
	Lane           int
	Lanes          int
	PlacedWidth    float64
	IntrinsicWidth float64
	Start          float64 // placed top
	Height         float64 // placed height
	TotalHeight    float64 // grid content height
}

// Magnify picks the largest hover scale a tile can take without leaving the grid, and the origin to
// grow from.
//
// The target is clamp(min(lanes*placedWidth, intrinsicWidth*1.1)/placedWidth, 1.05, 2.5). Three
// horizontal modes are weighed, each limited by the lanes free on the relevant side: rightward
// (1+spaceRight), leftward (1+spaceLeft) and symmetric (1+2*min(spaceLeft, spaceRight)). The mode with
// the largest achievable scale wins, symmetric on ties. Vertically the tile grows around its center
// when both sides have room, otherwise away from the nearer edge. When the grid is too short for the
// growth, the scale is capped to what fits, down to 1 on a single-row grid.
func Magnify(in MagnifyInput) Magnification {
	if in.Lanes <= 0 || in.PlacedWidth <= 0 {
		return Magnification{Scale: 1}
	}

	target := math.Min(float64(in.Lanes)*in.PlacedWidth, in.IntrinsicWidth*intrinsicHeadroom) / in.PlacedWidth
	target = clamp(target, MinHoverScale, MaxHoverScale)
	target = math.Max(math.Min(target, verticalCapacity(in)), 1)

	lane := clampInt(in.Lane, 0, in.Lanes-1)
	spaceLeft := float64(lane)
	spaceRight := float64(in.Lanes - 1 - lane)

	modes := []struct {
		origin   OriginX
		capacity float64
	}{
		{OriginCenter, 1 + 2*math.Min(spaceLeft, spaceRight)},
		{OriginLeft, 1 + spaceRight},
		{OriginRight, 1 + spaceLeft},
	}

	best := Magnification{Scale: 0}
	for _, m := range modes {
		scale := math.Min(m.capacity, target)
		if scale > best.Scale {
			best = Magnification{Scale: scale, Origin: Origin{X: m.origin}}
		}
	}
	best.Origin.Y = verticalOrigin(in, best.Scale)
	return best
}

// roomAbove and roomBelow are the free grid space on either side of the tile.
func (in MagnifyInput) roomAbove() float64 { return math.Max(in.Start, 0) }
func (in MagnifyInput) roomBelow() float64 {
	return math.Max(in.TotalHeight-(in.Start+in.Height), 0)
}

// verticalCapacity is the largest scale whose growth fits above and below the tile with one of the
// three vertical origins. An unmeasured grid does not limit the scale.
func verticalCapacity(in MagnifyInput) float64 {
	if in.Height <= 0 || in.TotalHeight <= 0 {
		return math.Inf(1)
	}
	above, below := in.roomAbove(), in.roomBelow()
	room := math.Max(2*math.Min(above, below), math.Max(above, below))
	return 1 + room/in.Height
}

func verticalOrigin(in MagnifyInput, scale float64) OriginY {
	grow := in.Height * (scale - 1)
	if grow <= 0 || in.TotalHeight <= 0 {
		return OriginMiddle
	}
	above, below := in.roomAbove(), in.roomBelow()
	switch {
	case math.Min(above, below)+growSlack >= grow/2:
		return OriginMiddle
	case below >= above:
		return OriginTop
	default:
		return OriginBottom
	}
}
