// Package cards is the card-type registry.
//
// A card's type decides how it is rendered, which is out of scope here, and
// a handful of things the layout engine does care about: the size a fresh
// card starts with, the limits it may be resized to, its default color and
// how records written by older versions are upgraded. Each type is described
// by a [Definition]; definitions live in a [Registry], and [Default] holds the
// built-in set.
package cards

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// Limits bounds a card's desktop size. Zero means unbounded on that side.
type Limits struct {
	MinW int `json:"minW,omitempty"`
	MaxW int `json:"maxW,omitempty"`
	MinH int `json:"minH,omitempty"`
	MaxH int `json:"maxH,omitempty"`
}

// Definition describes one card type.
type Definition struct {
	Type         string   `json:"type"`
	Name         string   `json:"name,omitempty"`
	DefaultColor string   `json:"defaultColor,omitempty"`
	Groups       []string `json:"groups,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`

	AllowSetColor bool `json:"allowSetColor,omitempty"`
	CanHaveLabel  bool `json:"canHaveLabel,omitempty"`

	Limits Limits `json:"limits"`

	// CreateNew customizes a freshly created card: size and initial data.
	CreateNew func(it *grid.Item) `json:"-"`

	// Migrate upgrades a card loaded from storage in place.
	Migrate func(it *grid.Item) `json:"-"`
}

// DisplayName returns Name, falling back to Type.
func (d *Definition) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Type
}

// Registry maps card types to their definitions. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates a registry holding defs. It panics on duplicate or
// empty types, which are programming errors in the built-in tables.
func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a definition. Types must be non-empty and unique.
func (r *Registry) Register(d *Definition) error {
	if d == nil || d.Type == "" {
		return errors.New(errors.ErrCodeInvalidCardType, "card definition needs a type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.defs[d.Type]; dup {
		return errors.New(errors.ErrCodeInvalidCardType, "card type %q already registered", d.Type)
	}
	r.defs[d.Type] = d
	return nil
}

// Lookup returns the definition for cardType.
func (r *Registry) Lookup(cardType string) (*Definition, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[cardType]
	return d, ok
}

// Limits returns the size limits for cardType, or zero limits for unknown types.
func (r *Registry) Limits(cardType string) Limits {
	if d, ok := r.Lookup(cardType); ok {
		return d.Limits
	}
	return Limits{}
}

// Types returns all registered types, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Fingerprint hashes every type's size limits. Layouts computed against two
// registries with the same fingerprint are interchangeable.
func (r *Registry) Fingerprint() string {
	types := r.Types()
	limits := make(map[string]Limits, len(types))
	for _, t := range types {
		limits[t] = r.Limits(t)
	}
	data, _ := json.Marshal(limits)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Search returns the definitions whose type, name, group or keywords contain
// query (case-insensitive), sorted by type. An empty query matches everything.
func (r *Registry) Search(query string) []*Definition {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []*Definition
	for _, t := range r.Types() {
		d, _ := r.Lookup(t)
		if q == "" || d.matches(q) {
			out = append(out, d)
		}
	}
	return out
}

func (d *Definition) matches(q string) bool {
	fields := append([]string{d.Type, d.Name}, d.Groups...)
	fields = append(fields, d.Keywords...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
