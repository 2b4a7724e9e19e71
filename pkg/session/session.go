// Package session holds the state of one page being edited.
//
// A [Session] owns a [document.Document], remembers which viewport the user
// is looking at and carries the in-flight drag, if any. Every mutating
// operation goes through the layout engine, so after it returns the active
// viewport is valid and settled. Edits also update the document's edited-on
// flag and, while the page has only ever been edited on one viewport, mirror
// the layout onto the other one.
//
// # Usage
//
//	sess, err := session.New(doc, cards.Default, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	if _, err := sess.Add("text", nil); err != nil {
//	    return err
//	}
//	if err := sess.Move(id, 4, 0); err != nil {
//	    return err
//	}
//
// Sessions are persisted between CLI invocations by a [Store]; see
// [FileStore] and [DraftStore].
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

// DefaultTTL is how long an untouched editing session is kept.
const DefaultTTL = 7 * 24 * time.Hour

// Session is one editing session.
type Session struct {
	ID        string             `json:"id"`
	Doc       *document.Document `json:"document"`
	Viewport  grid.Viewport      `json:"viewport"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at"`

	// Drag is the in-flight drag, nil when nothing is being dragged.
	Drag *drag.State `json:"-"`

	reg *cards.Registry
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New starts a session on doc. A nil reg means [cards.Default].
func New(doc *document.Document, reg *cards.Registry, ttl time.Duration) (*Session, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "session needs a document")
	}
	id, err := GenerateID()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate session id")
	}

	now := time.Now()
	return &Session{
		ID:        id,
		Doc:       doc,
		Viewport:  grid.Desktop,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		reg:       reg,
	}, nil
}

// SetRegistry replaces the card registry, e.g. after loading a session from
// a store. A nil reg means [cards.Default].
func (s *Session) SetRegistry(reg *cards.Registry) {
	s.reg = reg
}

func (s *Session) registry() *cards.Registry {
	if s.reg == nil {
		return cards.Default
	}
	return s.reg
}

// Items returns the cards of the session's page.
func (s *Session) Items() []*grid.Item {
	return s.Doc.Items()
}

func (s *Session) find(id string) (*grid.Item, error) {
	it := grid.Find(s.Items(), id)
	if it == nil {
		return nil, errors.New(errors.ErrCodeItemNotFound, "no card %q on page %s", id, s.Doc.Page)
	}
	return it, nil
}

// afterEdit records that the active viewport was edited and mirrors the
// layout onto the other viewport while that is still allowed.
func (s *Session) afterEdit() {
	s.Doc.EditedOn = s.Doc.EditedOn.Mark(s.Viewport)
	mirror.Sync(s.Items(), s.Viewport, s.Doc.EditedOn, s.registry())
}

// =============================================================================
// Editing
// =============================================================================

// SwitchViewport changes the viewport subsequent edits apply to. Any drag in
// progress is cancelled.
func (s *Session) SwitchViewport(v grid.Viewport) {
	if s.Drag != nil {
		s.CancelDrag()
	}
	s.Viewport = v
}

// Move moves a card to (x, y) in the active viewport and pushes whatever it
// lands on out of the way.
func (s *Session) Move(id string, x, y int) error {
	it, err := s.find(id)
	if err != nil {
		return err
	}
	it.Move(s.Viewport, x, max(0, y))
	grid.FixCollisions(s.Items(), it, s.Viewport, false)
	s.afterEdit()
	return nil
}

// Resize changes a card's size in the active viewport. On desktop the size is
// limited to what the card type allows; both viewports keep it inside the grid.
func (s *Session) Resize(id string, w, h int) error {
	it, err := s.find(id)
	if err != nil {
		return err
	}
	w, h = s.registry().ClampSize(it.CardType, s.Viewport, w, h)
	it.Resize(s.Viewport, w, h)
	grid.FixCollisions(s.Items(), it, s.Viewport, false)
	s.afterEdit()
	return nil
}

// Add creates a card of cardType and places it. center is the optional
// "middle of the screen" hint; without it the card goes to the first free
// cell.
func (s *Session) Add(cardType string, center *grid.ViewportCenter) (*grid.Item, error) {
	it, err := s.registry().NewItem(s.Doc.Page, cardType)
	if err != nil {
		return nil, err
	}

	grid.SetPositionOfNewItem(it, s.Items(), center)
	s.Doc.Cards = append(s.Doc.Cards, it)

	items := s.Items()
	grid.FixCollisions(items, it, grid.Desktop, false)
	grid.FixCollisions(items, it, grid.Mobile, false)
	s.afterEdit()
	return it, nil
}

// Remove deletes a card and lets the rest of the page settle.
func (s *Session) Remove(id string) error {
	if _, err := s.find(id); err != nil {
		return err
	}

	kept := s.Doc.Cards[:0]
	for _, it := range s.Doc.Cards {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	clear(s.Doc.Cards[len(kept):])
	s.Doc.Cards = kept

	items := s.Items()
	grid.CompactItems(items, grid.Desktop)
	grid.CompactItems(items, grid.Mobile)
	s.afterEdit()
	return nil
}

// SetColor changes a card's color. An empty color resets it to the type's
// default.
func (s *Session) SetColor(id, color string) error {
	it, err := s.find(id)
	if err != nil {
		return err
	}
	it.Color = color
	return nil
}

// Normalize re-settles both viewports. It is run on freshly loaded pages,
// whose stored geometry may be stale or overlapping. It does not count as an
// edit.
func (s *Session) Normalize() {
	items := s.Items()
	grid.FixAllCollisions(items, grid.Desktop)
	grid.FixAllCollisions(items, grid.Mobile)
}

// Mirror copies the active viewport's layout onto the other one, regardless
// of the edited-on flag.
func (s *Session) Mirror() {
	mirror.Layout(s.Items(), s.Viewport == grid.Mobile, s.registry())
}

// Preview reports where a card would end up if it were moved to (x, y) in
// the active viewport, without changing anything.
func (s *Session) Preview(id string, x, y int) (grid.Rect, error) {
	r, ok := grid.SimulateFinalPosition(s.Items(), id, x, y, s.Viewport)
	if !ok {
		return grid.Rect{}, errors.New(errors.ErrCodeItemNotFound, "no card %q on page %s", id, s.Doc.Page)
	}
	return r, nil
}

// =============================================================================
// Dragging
// =============================================================================

// BeginDrag starts dragging a card. dx and dy are the pointer's offset from
// the card's top-left corner in pixels.
func (s *Session) BeginDrag(id string, dx, dy float64) error {
	it, err := s.find(id)
	if err != nil {
		return err
	}
	s.Drag = drag.Begin(it, s.Items(), dx, dy)
	return nil
}

// DragTo handles one pointer move. The layout is updated live; ok is false
// when no drag is in progress or the pointer could not be mapped.
func (s *Session) DragTo(clientX, clientY float64, c drag.Container, m drag.Metrics) (pos drag.Position, ok bool) {
	if s.Drag == nil {
		return drag.Position{}, false
	}
	items := s.Items()
	pos, ok = drag.GridPosition(clientX, clientY, c, m, s.Drag, items, s.Viewport)
	if !ok {
		return pos, false
	}
	drag.Apply(items, s.Drag, pos, s.Viewport)
	return pos, true
}

// EndDrag finishes the drag and keeps the layout it produced.
func (s *Session) EndDrag() {
	if s.Drag == nil {
		return
	}
	s.Drag = nil
	s.afterEdit()
}

// CancelDrag puts every card back where it was when the drag began.
func (s *Session) CancelDrag() {
	if s.Drag == nil {
		return
	}
	for _, it := range s.Items() {
		if p, ok := s.Drag.Original[it.ID]; ok {
			it.Move(grid.Desktop, p.X, p.Y)
			it.Move(grid.Mobile, p.MobileX, p.MobileY)
		}
	}
	s.Drag = nil
}
