// Package document models one page of a user's bento site: its cards, the
// page's publication metadata and the flag that tracks which viewports have
// been arranged by hand.
//
// Documents are the unit the store persists and the cache holds. The layout
// engine never sees a Document, only its Cards slice.
package document

import (
	"strings"

	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

// DefaultPage is the record key of a user's main page.
const DefaultPage = "blento.self"

// DefaultBaseURL is where published pages live unless configured otherwise.
const DefaultBaseURL = "https://blento.app"

// Document is one page with all its cards.
type Document struct {
	Handle string `json:"handle" bson:"handle"`
	DID    string `json:"did,omitempty" bson:"did,omitempty"`
	Page   string `json:"page" bson:"page"`

	Cards []*grid.Item `json:"cards" bson:"cards"`

	Profile     *Profile     `json:"profile,omitempty" bson:"profile,omitempty"`
	Publication *Publication `json:"publication,omitempty" bson:"publication,omitempty"`

	EditedOn mirror.EditedOn `json:"editedOn,omitempty" bson:"editedOn,omitempty"`

	// UpdatedAt is when the document was last fetched from or written to
	// the store, in Unix milliseconds.
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Profile is the subset of the owner's profile a page falls back on.
type Profile struct {
	DisplayName string `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Publication is the page's public metadata.
type Publication struct {
	Name        string       `json:"name,omitempty" bson:"name,omitempty"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	URL         string       `json:"url,omitempty" bson:"url,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty" bson:"preferences,omitempty"`
}

// Preferences are per-page display settings. Nil pointers mean unset.
type Preferences struct {
	HideProfileSection *bool  `json:"hideProfileSection,omitempty" bson:"hideProfileSection,omitempty"`
	HideProfile        *bool  `json:"hideProfile,omitempty" bson:"hideProfile,omitempty"`
	ProfilePosition    string `json:"profilePosition,omitempty" bson:"profilePosition,omitempty"`
}

// New returns an empty document for handle's page. An empty page means
// DefaultPage.
func New(handle, page string) *Document {
	if page == "" {
		page = DefaultPage
	}
	return &Document{Handle: handle, Page: page, Cards: []*grid.Item{}}
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	c := *d
	c.Cards = grid.CloneAll(d.Cards)
	if d.Profile != nil {
		p := *d.Profile
		c.Profile = &p
	}
	if d.Publication != nil {
		c.Publication = d.Publication.clone()
	}
	return &c
}

func (p *Publication) clone() *Publication {
	c := *p
	if p.Preferences != nil {
		prefs := *p.Preferences
		c.Preferences = &prefs
	}
	return &c
}

// IsDefaultPage reports whether d is the user's main page.
func (d *Document) IsDefaultPage() bool {
	return d.Page == DefaultPage
}

// PageSlug returns the page name without its "blento." prefix.
func (d *Document) PageSlug() string {
	return strings.TrimPrefix(d.Page, "blento.")
}

// Name returns the page title: the publication name, the profile's display
// name or the handle, whichever is set first.
func (d *Document) Name() string {
	if d.Publication != nil && d.Publication.Name != "" {
		return d.Publication.Name
	}
	if d.Profile != nil && d.Profile.DisplayName != "" {
		return d.Profile.DisplayName
	}
	return d.Handle
}

// Description returns the publication description, falling back to the
// profile description.
func (d *Document) Description() string {
	if d.Publication != nil && d.Publication.Description != "" {
		return d.Publication.Description
	}
	if d.Profile != nil {
		return d.Profile.Description
	}
	return ""
}

// HideProfileSection reports whether the profile header is hidden. Explicit
// preferences win (the older hideProfile key is honoured); otherwise only
// the main page shows it.
func (d *Document) HideProfileSection() bool {
	if d.Publication != nil && d.Publication.Preferences != nil {
		prefs := d.Publication.Preferences
		if prefs.HideProfileSection != nil {
			return *prefs.HideProfileSection
		}
		if prefs.HideProfile != nil {
			return *prefs.HideProfile
		}
	}
	return !d.IsDefaultPage()
}

// ProfilePosition returns "side" or "top".
func (d *Document) ProfilePosition() string {
	if d.Publication != nil && d.Publication.Preferences != nil && d.Publication.Preferences.ProfilePosition != "" {
		return d.Publication.Preferences.ProfilePosition
	}
	return "side"
}

// URL returns the public address of the page under baseURL.
func (d *Document) URL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u := strings.TrimSuffix(baseURL, "/") + "/" + d.Handle
	if !d.IsDefaultPage() {
		u += "/" + d.PageSlug()
	}
	return u
}

// EnsurePublication fills in a publication record for d if it has none and
// sets its URL if missing. The legacy hideProfile preference is copied to
// hideProfileSection when only the former is set.
func (d *Document) EnsurePublication(baseURL string) {
	if d.Publication != nil && d.Publication.Preferences != nil {
		prefs := d.Publication.Preferences
		if prefs.HideProfile != nil && prefs.HideProfileSection == nil {
			v := *prefs.HideProfile
			prefs.HideProfileSection = &v
		}
	}

	if d.Publication == nil {
		hide := d.HideProfileSection()
		d.Publication = &Publication{
			Name:        d.Name(),
			Description: d.Description(),
			Preferences: &Preferences{HideProfileSection: &hide},
		}
	}
	if d.Publication.URL == "" {
		d.Publication.URL = d.URL(baseURL)
	}
}

// Items returns the cards that belong to this page.
func (d *Document) Items() []*grid.Item {
	return grid.OnPage(d.Cards, d.Page)
}
