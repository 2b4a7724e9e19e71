// Package drag maps pointer coordinates to grid positions while a card is
// being dragged.
//
// The browser (or any other front end) reports raw pixel coordinates. This
// package snaps them to grid cells, decides whether the dragged card should
// swap with the card under it or be placed above or below it, and applies
// the result to the layout. Hit testing always runs against the positions the
// cards had when the drag started, so the layout reshuffling underneath the
// pointer does not feed back into the decision.
//
// Between pointer events the caller keeps a [State], which also carries the
// hysteresis memory that stops the above/below decision from flickering when
// the pointer hovers around the middle of a card.
package drag

import (
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// Placement says where the dragged card goes relative to the card under it.
type Placement string

const (
	NoPlacement Placement = ""
	Above       Placement = "above"
	Below       Placement = "below"
)

// DefaultHysteresis is the distance, in grid rows, the card centre has to
// travel past a target's midpoint before an above/below decision flips.
const DefaultHysteresis = 0.3

// OriginalPos is an item's position in both viewports when the drag started.
type OriginalPos struct {
	X       int `json:"x"`
	Y       int `json:"y"`
	MobileX int `json:"mobileX"`
	MobileY int `json:"mobileY"`
}

func (p OriginalPos) in(v grid.Viewport) (x, y int) {
	if v == grid.Mobile {
		return p.MobileX, p.MobileY
	}
	return p.X, p.Y
}

// State is the per-drag bookkeeping. It is created by [Begin] and updated by
// [GridPosition] on every pointer move.
type State struct {
	Item        *grid.Item
	MouseDeltaX float64
	MouseDeltaY float64

	// Original holds the positions of all items, keyed by ID, at drag start.
	Original map[string]OriginalPos

	LastTargetID  string
	LastPlacement Placement
}

// Begin starts dragging it. deltaX and deltaY are the offset from the pointer
// to the card's top-left corner, in pixels.
func Begin(it *grid.Item, items []*grid.Item, deltaX, deltaY float64) *State {
	orig := make(map[string]OriginalPos, len(items))
	for _, other := range items {
		orig[other.ID] = OriginalPos{X: other.X, Y: other.Y, MobileX: other.MobileX, MobileY: other.MobileY}
	}
	return &State{
		Item:        it,
		MouseDeltaX: deltaX,
		MouseDeltaY: deltaY,
		Original:    orig,
	}
}

func (s *State) clearTarget() {
	s.LastTargetID = ""
	s.LastPlacement = NoPlacement
}

// Container is the on-screen box of the grid, in pixels.
type Container struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Width float64 `json:"width"`
}

// Metrics are the pixel constants of the rendered grid.
type Metrics struct {
	Margin       float64 `json:"margin" toml:"margin"`
	MobileMargin float64 `json:"mobileMargin" toml:"mobile_margin"`
	Hysteresis   float64 `json:"hysteresis" toml:"hysteresis"`
}

// DefaultMetrics returns the metrics of the stock stylesheet.
func DefaultMetrics() Metrics {
	return Metrics{Margin: 16, MobileMargin: 12, Hysteresis: DefaultHysteresis}
}

func (m Metrics) margin(v grid.Viewport) float64 {
	if v == grid.Mobile {
		return m.MobileMargin
	}
	return m.Margin
}

// CellSize returns the edge length of one grid cell in pixels.
func (m Metrics) CellSize(c Container, v grid.Viewport) float64 {
	return (c.Width - m.margin(v)*2) / float64(grid.Columns())
}

// Position is the outcome of one pointer move.
type Position struct {
	X          int       `json:"x"`
	Y          int       `json:"y"`
	SwapWithID string    `json:"swapWithId,omitempty"`
	Placement  Placement `json:"placement,omitempty"`
}

// =============================================================================
// Pointer Mapping
// =============================================================================

// GridPosition converts a pointer position to the cell the dragged card should
// move to in viewport v.
//
// The card's top-left corner is snapped to an even column and, on mobile, an
// even row. If the card's centre then lies inside another card's original
// rectangle, one of two things happens. Cards of identical size that started
// on the same row swap: the result is the target's original position and
// SwapWithID names it. Otherwise the card is placed directly above or below
// the target. Dragging upwards always places above; dragging downwards
// compares the centre against the target's midpoint, with st's hysteresis
// memory keeping the previous decision until the centre is clearly past it.
//
// st is updated in place. ok is false when st has no dragged item or the
// container has no usable width.
func GridPosition(clientX, clientY float64, c Container, m Metrics, st *State, items []*grid.Item, v grid.Viewport) (pos Position, ok bool) {
	if st == nil || st.Item == nil {
		return Position{}, false
	}
	cell := m.CellSize(c, v)
	if cell <= 0 {
		return Position{}, false
	}

	x := clientX + st.MouseDeltaX
	y := clientY + st.MouseDeltaY
	card := st.Item.Rect(v)

	draggedOrigY := 0
	if p, found := st.Original[st.Item.ID]; found {
		_, draggedOrigY = p.in(v)
	}

	gridX, gridY := snap(x, y, c, m.margin(v), cell, card.W, v)

	centerX := float64(gridX) + float64(card.W)/2
	centerY := float64(gridY) + float64(card.H)/2

	hysteresis := m.Hysteresis
	if hysteresis < 0 {
		hysteresis = 0
	}

	for _, other := range items {
		if other == st.Item {
			continue
		}
		p, found := st.Original[other.ID]
		if !found {
			continue
		}
		otherX, otherY := p.in(v)
		size := other.Rect(v)

		if centerX < float64(otherX) || centerX >= float64(otherX+size.W) ||
			centerY < float64(otherY) || centerY >= float64(otherY+size.H) {
			continue
		}

		if card.W == size.W && card.H == size.H && draggedOrigY == otherY {
			st.LastTargetID = other.ID
			st.LastPlacement = NoPlacement
			return Position{X: otherX, Y: otherY, SwapWithID: other.ID}, true
		}

		var placement Placement
		if gridY < draggedOrigY {
			placement = Above
		} else {
			mid := float64(otherY) + float64(size.H)/2
			switch {
			case st.LastTargetID == other.ID && st.LastPlacement == Above:
				placement = Above
				if centerY > mid+hysteresis {
					placement = Below
				}
			case st.LastTargetID == other.ID && st.LastPlacement == Below:
				placement = Below
				if centerY < mid-hysteresis {
					placement = Above
				}
			case centerY < mid:
				placement = Above
			default:
				placement = Below
			}
		}

		st.LastTargetID = other.ID
		st.LastPlacement = placement

		gridY = otherY
		if placement == Below {
			gridY = otherY + size.H
		}
		return Position{X: gridX, Y: gridY, Placement: placement}, true
	}

	st.clearTarget()
	return Position{X: gridX, Y: gridY}, true
}

// snap converts the card's top-left pixel position to a cell. Columns are
// always even; rows are even on mobile.
func snap(x, y float64, c Container, margin, cell float64, cardW int, v grid.Viewport) (gridX, gridY int) {
	gridX = grid.Clamp(grid.Round((x-c.Left-margin)/cell), 0, grid.Columns()-cardW)
	gridX = floorEven(gridX)

	gridY = max(grid.Round((y-c.Top-margin)/cell), 0)
	if v == grid.Mobile {
		gridY = floorEven(gridY)
	}
	return gridX, gridY
}

func floorEven(n int) int {
	if n < 0 {
		return (n - 1) / 2 * 2
	}
	return n / 2 * 2
}

// PixelToGrid converts a drop point (for example a dropped file) to the cell
// a card of width cardW should be created at.
func PixelToGrid(clientX, clientY float64, c Container, m Metrics, v grid.Viewport, cardW int) (gridX, gridY int) {
	cell := m.CellSize(c, v)
	if cell <= 0 {
		return 0, 0
	}
	return snap(clientX, clientY, c, m.margin(v), cell, cardW, v)
}

// ViewportCenterGridY returns the fractional grid row under the vertical
// middle of a window of the given height, for use as a placement hint.
func ViewportCenterGridY(c Container, m Metrics, windowHeight float64, v grid.Viewport) grid.ViewportCenter {
	cell := m.CellSize(c, v)
	if cell <= 0 {
		return grid.ViewportCenter{Viewport: v}
	}
	return grid.ViewportCenter{
		GridY:    (windowHeight/2 - c.Top - m.margin(v)) / cell,
		Viewport: v,
	}
}

// =============================================================================
// Applying a Drag
// =============================================================================

// Apply moves the dragged card to pos in viewport v and re-settles the
// layout. Every item is first put back where it was when the drag started,
// so calling Apply on each pointer move never accumulates pushes from earlier
// moves. A swap also moves the target to the dragged card's original cell.
func Apply(items []*grid.Item, st *State, pos Position, v grid.Viewport) {
	if st == nil || st.Item == nil {
		return
	}

	for _, it := range items {
		if p, found := st.Original[it.ID]; found {
			x, y := p.in(v)
			it.Move(v, x, y)
		}
	}

	if pos.SwapWithID != "" {
		if target := grid.Find(items, pos.SwapWithID); target != nil && target != st.Item {
			r := st.Item.Rect(v)
			target.Move(v, r.X, r.Y)
		}
	}

	st.Item.Move(v, pos.X, pos.Y)
	grid.FixCollisions(items, st.Item, v, false)
}
