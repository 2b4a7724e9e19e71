package cards

import (
	"github.com/google/uuid"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// RecordVersion is the schema version stamped on saved cards.
const RecordVersion = 2

// FallbackColor is used when neither the card nor its type picks a color.
const FallbackColor = "base"

// NewID returns a fresh card ID. IDs are UUIDv7, so they sort by creation
// time like the record keys they are stored under.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewItem creates an empty card of the given type on page: 2x2 on desktop,
// 4x4 on mobile, positioned at the origin, then customized by the type's
// CreateNew hook. The caller still has to place it.
//
// An empty cardType creates an untyped card. Unknown types are rejected.
func (r *Registry) NewItem(page, cardType string) (*grid.Item, error) {
	it := &grid.Item{
		ID:       NewID(),
		W:        2,
		H:        2,
		MobileW:  4,
		MobileH:  4,
		CardType: cardType,
		CardData: map[string]any{},
		Page:     page,
	}

	if cardType == "" {
		return it, nil
	}

	d, ok := r.Lookup(cardType)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidCardType, "unknown card type %q", cardType)
	}
	if d.CreateNew != nil {
		d.CreateNew(it)
	}
	if it.CardData == nil {
		it.CardData = map[string]any{}
	}
	it.CardType = cardType
	return it, nil
}

// Color returns the card's effective color.
func (r *Registry) Color(it *grid.Item) string {
	if it.Color != "" {
		return it.Color
	}
	if d, ok := r.Lookup(it.CardType); ok && d.DefaultColor != "" {
		return d.DefaultColor
	}
	return FallbackColor
}

// Migrate runs the type's Migrate hook on every item that has one and
// reports how many items were passed to a hook.
func (r *Registry) Migrate(items []*grid.Item) int {
	n := 0
	for _, it := range items {
		d, ok := r.Lookup(it.CardType)
		if !ok || d.Migrate == nil {
			continue
		}
		if it.CardData == nil {
			it.CardData = map[string]any{}
		}
		d.Migrate(it)
		n++
	}
	return n
}

// ClampSize returns w and h limited to what a card of cardType may measure in
// viewport v. Type limits are in desktop cells, so mobile sizes are only kept
// inside the grid.
func (r *Registry) ClampSize(cardType string, v grid.Viewport, w, h int) (int, int) {
	if v == grid.Mobile {
		return grid.Clamp(w, 1, grid.Columns()), max(h, 1)
	}

	l := r.Limits(cardType)

	maxW := grid.Columns()
	if l.MaxW > 0 {
		maxW = min(maxW, l.MaxW)
	}
	w = grid.Clamp(w, max(l.MinW, 1), maxW)

	h = max(h, max(l.MinH, 1))
	if l.MaxH > 0 {
		h = min(h, l.MaxH)
	}
	return w, h
}
