package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/bentogrid/pkg/cache"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
	"github.com/matzehuels/bentogrid/pkg/observability"
)

// Layout operations.
const (
	OpSettle  = "settle"
	OpCompact = "compact"
	OpMove    = "move"
	OpPlace   = "place"
	OpMirror  = "mirror"
)

// ValidOps is the set of supported layout operations.
var ValidOps = map[string]bool{
	OpSettle:  true,
	OpCompact: true,
	OpMove:    true,
	OpPlace:   true,
	OpMirror:  true,
}

// =============================================================================
// Layout Requests
// =============================================================================

// LayoutRequest is one stateless layout operation on a set of items.
type LayoutRequest struct {
	Op       string        `json:"op"`
	Viewport grid.Viewport `json:"viewport"`
	Items    []*grid.Item  `json:"items"`

	// Move: the card to move, its new position and optionally its new size.
	ID          string `json:"id,omitempty"`
	X           int    `json:"x,omitempty"`
	Y           int    `json:"y,omitempty"`
	W           int    `json:"w,omitempty"`
	H           int    `json:"h,omitempty"`
	SkipCompact bool   `json:"skipCompact,omitempty"`

	// Place: either a ready item or a card type to create one from, plus an
	// optional placement hint.
	Item     *grid.Item           `json:"item,omitempty"`
	CardType string               `json:"cardType,omitempty"`
	Page     string               `json:"page,omitempty"`
	Center   *grid.ViewportCenter `json:"center,omitempty"`
}

// LayoutResult is the outcome of a layout operation.
type LayoutResult struct {
	Items []*grid.Item `json:"items"`

	// Item is the moved or placed card.
	Item *grid.Item `json:"item,omitempty"`

	// Height is the number of rows the layout occupies in the request's viewport.
	Height int `json:"height"`
}

// Validate checks the request. Items must have valid IDs, positive sizes and
// unique IDs; geometry may overlap or be out of bounds.
func (req *LayoutRequest) Validate() error {
	if !ValidOps[req.Op] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid op: %q (must be one of: settle, compact, move, place, mirror)", req.Op)
	}

	seen := make(map[string]bool, len(req.Items))
	for i, it := range req.Items {
		if it == nil {
			return errors.New(errors.ErrCodeInvalidItem, "item %d is null", i)
		}
		if err := document.ValidateItem(it); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidItem, "duplicate item ID %q", it.ID)
		}
		seen[it.ID] = true
	}

	switch req.Op {
	case OpMove:
		if !seen[req.ID] {
			return errors.New(errors.ErrCodeItemNotFound, "no item %q to move", req.ID)
		}
		if (req.W > 0) != (req.H > 0) || req.W < 0 || req.H < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "resize needs both w and h")
		}
	case OpPlace:
		if req.Item == nil {
			break
		}
		if err := document.ValidateItem(req.Item); err != nil {
			return err
		}
		if seen[req.Item.ID] {
			return errors.New(errors.ErrCodeInvalidItem, "item %q is already placed", req.Item.ID)
		}
	}
	return nil
}

// =============================================================================
// Layout Execution
// =============================================================================

// Layout runs req with caching and reports whether the result came from the
// cache. The request's items are not modified.
func (r *Runner) Layout(ctx context.Context, req LayoutRequest) (*LayoutResult, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}

	// Placing a card of a given type creates a fresh ID, so the result
	// cannot be reused.
	cacheable := !(req.Op == OpPlace && req.Item == nil)

	var key string
	if cacheable {
		data, err := json.Marshal(req)
		if err != nil {
			return nil, false, fmt.Errorf("serialize request for cache key: %w", err)
		}
		key = r.Keyer.LayoutKey(cache.Hash(data), cache.LayoutKeyOpts{
			Op:       req.Op,
			Viewport: req.Viewport.String(),
			Columns:  grid.Columns(),
			Registry: r.Registry.Fingerprint(),
		})
		if res, hit, err := cache.GetJSON[*LayoutResult](ctx, r.Cache, "layout", key); err == nil && hit && res != nil {
			return res, true, nil
		}
	}

	start := time.Now()
	res, err := r.computeLayout(req)
	if err != nil {
		return nil, false, err
	}
	observability.Pipeline().OnNormalize(ctx, req.Viewport.String(), len(res.Items), time.Since(start))
	r.Logger.Debug("computed layout",
		"op", req.Op,
		"viewport", req.Viewport,
		"items", len(res.Items),
		"duration", time.Since(start))

	if cacheable {
		_ = cache.SetJSON(ctx, r.Cache, "layout", key, res, DefaultLayoutTTL)
	}
	return res, false, nil
}

// computeLayout applies req to a copy of its items.
func (r *Runner) computeLayout(req LayoutRequest) (*LayoutResult, error) {
	items := grid.CloneAll(req.Items)
	v := req.Viewport
	res := &LayoutResult{}

	switch req.Op {
	case OpSettle:
		grid.FixAllCollisions(items, v)

	case OpCompact:
		grid.CompactItems(items, v)

	case OpMove:
		it := grid.Find(items, req.ID)
		if req.W > 0 {
			w, h := r.Registry.ClampSize(it.CardType, v, req.W, req.H)
			it.Resize(v, w, h)
		}
		it.Move(v, req.X, max(0, req.Y))
		grid.FixCollisions(items, it, v, req.SkipCompact)
		res.Item = it

	case OpPlace:
		it, err := r.newItem(req)
		if err != nil {
			return nil, err
		}
		grid.SetPositionOfNewItem(it, items, req.Center)
		items = append(items, it)
		grid.FixCollisions(items, it, grid.Desktop, false)
		grid.FixCollisions(items, it, grid.Mobile, false)
		res.Item = it

	case OpMirror:
		mirror.Layout(items, v == grid.Mobile, r.Registry)
	}

	res.Items = items
	res.Height = grid.Height(items, v)
	return res, nil
}

func (r *Runner) newItem(req LayoutRequest) (*grid.Item, error) {
	if req.Item != nil {
		return req.Item.Clone(), nil
	}
	return r.Registry.NewItem(req.Page, req.CardType)
}
