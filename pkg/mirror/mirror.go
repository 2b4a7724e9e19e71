// Package mirror keeps the desktop and mobile layouts of a page loosely in
// sync.
//
// Every card has a desktop and a mobile geometry. As long as the user has
// only arranged one of the two, the other is derived from it: sizes scale by
// two between the viewports, desktop positions map proportionally onto
// mobile, and mobile layouts re-flow into the wider desktop grid. Once both
// have been edited by hand, mirroring stops so neither overwrites the other.
package mirror

import (
	"math"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// EditedOn records which viewports the user has edited by hand.
type EditedOn int

const (
	Never   EditedOn = 0
	Desktop EditedOn = 1
	Mobile  EditedOn = 2
	Both    EditedOn = 3
)

// Mark returns e with viewport v recorded as edited.
func (e EditedOn) Mark(v grid.Viewport) EditedOn {
	if v == grid.Mobile {
		return e | Mobile
	}
	return e | Desktop
}

// String returns a short label for logs.
func (e EditedOn) String() string {
	switch e {
	case Never:
		return "never"
	case Desktop:
		return "desktop"
	case Mobile:
		return "mobile"
	case Both:
		return "both"
	}
	return "unknown"
}

// ShouldMirror reports whether edits should still be copied to the other
// viewport, which is the case until both have been edited.
func ShouldMirror(e EditedOn) bool {
	return e != Both
}

// snapEven rounds v to the nearest even number, at least 2.
func snapEven(v float64) int {
	return max(2, grid.Round(v/2)*2)
}

// ItemSize derives one viewport's size of it from the other's.
//
// Mobile to desktop halves both sides, snaps the width to an even number and
// clamps the result to the card type's limits from reg (default 2..Columns
// wide, at least 1 high). Desktop to mobile doubles both sides, capped at the
// grid width and at least 2 high; limits are in desktop units and do not
// apply. reg may be nil.
func ItemSize(it *grid.Item, fromMobile bool, reg *cards.Registry) {
	cols := grid.Columns()

	if !fromMobile {
		it.MobileW = min(it.W*2, cols)
		it.MobileH = max(it.H*2, 2)
		return
	}

	l := reg.Limits(it.CardType)

	minW, maxW := 2, cols
	if l.MinW > 0 {
		minW = l.MinW
	}
	if l.MaxW > 0 {
		maxW = l.MaxW
	}
	minH, maxH := 1, math.MaxInt
	if l.MinH > 0 {
		minH = l.MinH
	}
	if l.MaxH > 0 {
		maxH = l.MaxH
	}

	it.W = grid.Clamp(snapEven(float64(it.MobileW)/2), minW, maxW)
	it.H = grid.Clamp(grid.Round(float64(it.MobileH)/2), minH, maxH)
}

// Layout rebuilds the other viewport of items from the edited one.
//
// Sizes are mirrored first. Going from mobile to desktop, items are then
// placed one by one, in mobile reading order, at the first free desktop
// position, so the result uses the full desktop width instead of copying the
// narrow mobile column. Going from desktop to mobile, positions are doubled,
// clamped into the grid and normalized.
func Layout(items []*grid.Item, fromMobile bool, reg *cards.Registry) {
	for _, it := range items {
		ItemSize(it, fromMobile, reg)
	}

	if fromMobile {
		placed := make([]*grid.Item, 0, len(items))
		for _, it := range grid.ReadingOrder(items, grid.Mobile) {
			it.X, it.Y = 0, 0
			grid.FindValidPosition(it, placed, grid.Desktop)
			placed = append(placed, it)
		}
		return
	}

	cols := grid.Columns()
	for _, it := range items {
		it.MobileX = grid.Clamp(it.X*2, 0, cols-it.MobileW)
		it.MobileY = max(0, it.Y*2)
	}
	grid.FixAllCollisions(items, grid.Mobile)
}

// Sync mirrors items from the viewport that was just edited if e still
// allows it, and reports whether it did.
func Sync(items []*grid.Item, edited grid.Viewport, e EditedOn, reg *cards.Registry) bool {
	if !ShouldMirror(e) {
		return false
	}
	Layout(items, edited == grid.Mobile, reg)
	return true
}
