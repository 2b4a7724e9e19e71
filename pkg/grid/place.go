package grid

// =============================================================================
// Placement
// =============================================================================

// ViewportCenter is an optional hint for where a new item should go: the grid
// row under the middle of the visible screen, measured in the viewport the
// user is looking at.
type ViewportCenter struct {
	GridY    float64  `json:"gridY"`
	Viewport Viewport `json:"viewport"`
}

// SetPositionOfNewItem assigns both geometries of newItem so that it fits
// into items (which must not contain it) without overlapping anything. Sizes
// are taken as given.
//
// Without a hint each viewport is searched independently, row-major from the
// top-left, for the first free cell. With a hint the item is centred
// vertically on the hint in the viewport the user is looking at, the other
// viewport follows at the matching height (rows double from desktop to
// mobile), and in both only even columns are tried. A row without room falls
// back to column 0 and relies on a later normalization pass.
func SetPositionOfNewItem(newItem *Item, items []*Item, center *ViewportCenter) {
	if center == nil {
		FindValidPosition(newItem, items, Desktop)
		FindValidPosition(newItem, items, Mobile)
		return
	}

	if center.Viewport == Mobile {
		mobileY := max(0, Round(center.GridY-float64(newItem.MobileH)/2))
		mobileY = mobileY / 2 * 2
		newItem.MobileY = mobileY
		newItem.MobileX = evenColumn(newItem, items, Mobile)

		newItem.Y = max(0, Round(float64(mobileY)/2))
		newItem.X = evenColumn(newItem, items, Desktop)
		return
	}

	newItem.Y = max(0, Round(center.GridY-float64(newItem.H)/2))
	newItem.X = evenColumn(newItem, items, Desktop)

	newItem.MobileY = max(0, newItem.Y*2)
	newItem.MobileX = evenColumn(newItem, items, Mobile)
}

// evenColumn returns the first even column where newItem fits at its current
// row in viewport v, or 0.
func evenColumn(newItem *Item, items []*Item, v Viewport) int {
	r := newItem.Rect(v)
	for x := 0; x <= Columns()-r.W; x += 2 {
		r.X = x
		if fits(r, items, newItem, v) {
			return x
		}
	}
	return 0
}

// FindValidPosition moves newItem in viewport v to the first free position in
// row-major order, starting at the top-left corner. items must not contain
// newItem. An item wider than the grid is placed at column 0 below everything
// else.
func FindValidPosition(newItem *Item, items []*Item, v Viewport) {
	r := newItem.Rect(v)
	cols := Columns()

	if r.W > cols {
		newItem.Move(v, 0, bottom(items, v))
		return
	}

	for y := 0; ; y++ {
		r.Y = y
		for x := 0; x <= cols-r.W; x++ {
			r.X = x
			if fits(r, items, newItem, v) {
				newItem.Move(v, x, y)
				return
			}
		}
	}
}

// fits reports whether r overlaps none of items other than self.
func fits(r Rect, items []*Item, self *Item, v Viewport) bool {
	for _, it := range items {
		if it != self && r.Overlaps(it.Rect(v)) {
			return false
		}
	}
	return true
}

// bottom returns the first row below every item in viewport v.
func bottom(items []*Item, v Viewport) int {
	b := 0
	for _, it := range items {
		b = max(b, it.Rect(v).Bottom())
	}
	return b
}

// Height returns the number of rows the layout occupies in viewport v.
func Height(items []*Item, v Viewport) int {
	return bottom(items, v)
}

// =============================================================================
// Simulation
// =============================================================================

// SimulateFinalPosition reports where the item with the given ID would end up
// if it were moved to (x, y) in viewport v and the layout re-settled. items
// are not modified. ok is false when no item has that ID.
func SimulateFinalPosition(items []*Item, id string, x, y int, v Viewport) (pos Rect, ok bool) {
	clones := CloneAll(items)
	moved := Find(clones, id)
	if moved == nil {
		return Rect{}, false
	}

	moved.Move(v, x, y)
	FixCollisions(clones, moved, v, false)
	return moved.Rect(v), true
}
