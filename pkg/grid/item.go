package grid

import (
	"fmt"
	"math"
	"slices"
	"sync/atomic"
)

// DefaultColumns is the column count of both viewports unless configured otherwise.
const DefaultColumns = 8

var columns atomic.Int64

func init() {
	columns.Store(DefaultColumns)
}

// Columns returns the grid width in cells. It is the same for desktop and mobile.
func Columns() int {
	return int(columns.Load())
}

// SetColumns sets the process-wide column count. It is meant to be called once
// during start-up, before any layout work happens. Values below 1 are ignored.
func SetColumns(n int) {
	if n < 1 {
		return
	}
	columns.Store(int64(n))
}

// =============================================================================
// Viewport
// =============================================================================

// Viewport selects which of an item's two geometries an operation reads and writes.
type Viewport int

const (
	Desktop Viewport = iota
	Mobile
)

// String returns "desktop" or "mobile".
func (v Viewport) String() string {
	if v == Mobile {
		return "mobile"
	}
	return "desktop"
}

// MarshalText encodes the viewport as "desktop" or "mobile".
func (v Viewport) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes "desktop" or "mobile".
func (v *Viewport) UnmarshalText(b []byte) error {
	p, err := ParseViewport(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Other returns the opposite viewport.
func (v Viewport) Other() Viewport {
	if v == Mobile {
		return Desktop
	}
	return Mobile
}

// ParseViewport parses "desktop" or "mobile" (empty means desktop).
func ParseViewport(s string) (Viewport, error) {
	switch s {
	case "", "desktop":
		return Desktop, nil
	case "mobile":
		return Mobile, nil
	}
	return Desktop, fmt.Errorf("invalid viewport: %q (must be one of: desktop, mobile)", s)
}

// =============================================================================
// Item
// =============================================================================

// Item is one placed card.
//
// The JSON keys match the stored card record so items can be decoded straight
// from the persistence layer.
type Item struct {
	ID string `json:"id" bson:"id"`

	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`

	MobileX int `json:"mobileX" bson:"mobileX"`
	MobileY int `json:"mobileY" bson:"mobileY"`
	MobileW int `json:"mobileW" bson:"mobileW"`
	MobileH int `json:"mobileH" bson:"mobileH"`

	CardType string         `json:"cardType" bson:"cardType"`
	CardData map[string]any `json:"cardData" bson:"cardData"`

	Color     string `json:"color,omitempty" bson:"color,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	Version   int    `json:"version,omitempty" bson:"version,omitempty"`
	Page      string `json:"page,omitempty" bson:"page,omitempty"`
}

// Rect returns the item's rectangle in viewport v.
func (it *Item) Rect(v Viewport) Rect {
	if v == Mobile {
		return Rect{X: it.MobileX, Y: it.MobileY, W: it.MobileW, H: it.MobileH}
	}
	return Rect{X: it.X, Y: it.Y, W: it.W, H: it.H}
}

// Move sets the item's position in viewport v.
func (it *Item) Move(v Viewport, x, y int) {
	if v == Mobile {
		it.MobileX, it.MobileY = x, y
		return
	}
	it.X, it.Y = x, y
}

// Resize sets the item's size in viewport v.
func (it *Item) Resize(v Viewport, w, h int) {
	if v == Mobile {
		it.MobileW, it.MobileH = w, h
		return
	}
	it.W, it.H = w, h
}

func (it *Item) setX(v Viewport, x int) {
	if v == Mobile {
		it.MobileX = x
		return
	}
	it.X = x
}

func (it *Item) setY(v Viewport, y int) {
	if v == Mobile {
		it.MobileY = y
		return
	}
	it.Y = y
}

// clampX keeps the item inside the grid horizontally.
func (it *Item) clampX(v Viewport) {
	r := it.Rect(v)
	it.setX(v, Clamp(r.X, 0, Columns()-r.W))
}

// Clone returns a deep copy of the item. CardData is copied one level deep.
func (it *Item) Clone() *Item {
	c := *it
	if it.CardData != nil {
		c.CardData = make(map[string]any, len(it.CardData))
		for k, v := range it.CardData {
			c.CardData[k] = v
		}
	}
	return &c
}

// =============================================================================
// Collections
// =============================================================================

// CloneAll deep-copies a slice of items.
func CloneAll(items []*Item) []*Item {
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Find returns the item with the given ID, or nil.
func Find(items []*Item, id string) *Item {
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// indexOf returns the index of the item pointer in items, or -1.
func indexOf(items []*Item, target *Item) int {
	for i, it := range items {
		if it == target {
			return i
		}
	}
	return -1
}

// OnPage returns the items belonging to page. Items without a page belong to
// every page, which is how records written before multi-page support are read.
func OnPage(items []*Item, page string) []*Item {
	var out []*Item
	for _, it := range items {
		if it.Page == "" || it.Page == page {
			out = append(out, it)
		}
	}
	return out
}

// readingOrder returns the indices of items sorted top-to-bottom, then
// left-to-right in viewport v. Ties keep their input order.
func readingOrder(items []*Item, v Viewport) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareRects(items[a].Rect(v), items[b].Rect(v))
	})
	return order
}

func compareRects(a, b Rect) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// ReadingOrder returns a copy of items sorted by (y, x) in viewport v.
func ReadingOrder(items []*Item, v Viewport) []*Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b *Item) int {
		return compareRects(a.Rect(v), b.Rect(v))
	})
	return out
}

// SortItems orders items by their row-major desktop cell index. It is the
// order cards are listed in when a page is rendered without a grid.
func SortItems(items []*Item) {
	cols := Columns()
	slices.SortStableFunc(items, func(a, b *Item) int {
		return (a.Y*cols + a.X) - (b.Y*cols + b.X)
	})
}

// Round rounds half-way values up, towards positive infinity.
func Round(f float64) int {
	return int(math.Floor(f + 0.5))
}
