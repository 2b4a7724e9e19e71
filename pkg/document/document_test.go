package document

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

func card(id string, x, y int) *grid.Item {
	return &grid.Item{
		ID: id, X: x, Y: y, W: 2, H: 2,
		MobileX: 0, MobileY: y * 2, MobileW: 4, MobileH: 4,
		CardType: "text", CardData: map[string]any{"text": id},
	}
}

func sampleDocument() *Document {
	d := New("alice.bsky.social", "")
	d.Cards = []*grid.Item{card("a", 0, 0), card("b", 2, 0)}
	d.EditedOn = mirror.Desktop
	return d
}

func TestNew(t *testing.T) {
	d := New("alice.bsky.social", "")
	if d.Page != DefaultPage {
		t.Errorf("Page = %q, want %q", d.Page, DefaultPage)
	}
	if d.Cards == nil {
		t.Error("Cards should be an empty slice, not nil")
	}
}

func TestRoundTrip(t *testing.T) {
	d := sampleDocument()
	path := filepath.Join(t.TempDir(), "page.json")

	if err := WriteFile(d, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if got.Handle != d.Handle || got.Page != d.Page || got.EditedOn != mirror.Desktop {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.Cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(got.Cards))
	}
	for i := range d.Cards {
		if !grid.Equal(got.Cards[i], d.Cards[i]) {
			t.Errorf("card %d changed: %+v -> %+v", i, d.Cards[i], got.Cards[i])
		}
	}
}

func TestMarshal_RecordKeys(t *testing.T) {
	data, err := Marshal(sampleDocument())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"mobileX"`, `"cardType"`, `"cardData"`, `"editedOn": 1`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output missing %s", key)
		}
	}
}

func TestUnmarshal_Defaults(t *testing.T) {
	d, err := Unmarshal([]byte(`{"handle":"alice.bsky.social","cards":null}`))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d.Page != DefaultPage || d.Cards == nil {
		t.Errorf("defaults not applied: %+v", d)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := Unmarshal([]byte(`{"cards": 7}`))
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("Unmarshal() error = %v, want INVALID_DOCUMENT", err)
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.IsNotFound(err) {
		t.Errorf("ReadFile() error = %v, want not found", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		code   errors.Code
	}{
		{"valid", func(d *Document) {}, ""},
		{"bad handle", func(d *Document) { d.Handle = "../x" }, errors.ErrCodeInvalidHandle},
		{"bad page", func(d *Document) { d.Page = "self" }, errors.ErrCodeInvalidPage},
		{"bad editedOn", func(d *Document) { d.EditedOn = 7 }, errors.ErrCodeInvalidDocument},
		{"duplicate id", func(d *Document) { d.Cards[1].ID = "a" }, errors.ErrCodeInvalidItem},
		{"empty id", func(d *Document) { d.Cards[0].ID = "" }, errors.ErrCodeInvalidItem},
		{"zero width", func(d *Document) { d.Cards[0].W = 0 }, errors.ErrCodeInvalidItem},
		{"zero mobile height", func(d *Document) { d.Cards[1].MobileH = 0 }, errors.ErrCodeInvalidItem},
		{"null card", func(d *Document) { d.Cards[0] = nil }, errors.ErrCodeInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := sampleDocument()
			tt.mutate(d)
			err := Validate(d)
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	stored := sampleDocument()
	stored.Cards = append(stored.Cards, card("c", 4, 0))

	edited := stored.Clone()
	// Drop c, move b, add d.
	edited.Cards = edited.Cards[:2]
	edited.Cards[1].Move(grid.Desktop, 2, 2)
	edited.Cards = append(edited.Cards, card("d", 0, 2))

	now := time.Date(2024, 5, 1, 12, 30, 0, 123e6, time.UTC)
	ch := Diff(stored, edited, now)

	var put []string
	for _, it := range ch.Put {
		put = append(put, it.ID)
		if it.UpdatedAt != "2024-05-01T12:30:00.123Z" {
			t.Errorf("%s UpdatedAt = %q", it.ID, it.UpdatedAt)
		}
		if it.Page != DefaultPage || it.Version != 2 {
			t.Errorf("%s not stamped: page=%q version=%d", it.ID, it.Page, it.Version)
		}
	}
	if strings.Join(put, ",") != "b,d" {
		t.Errorf("Put = %v, want [b d]", put)
	}
	if strings.Join(ch.Delete, ",") != "c" {
		t.Errorf("Delete = %v, want [c]", ch.Delete)
	}
	if edited.Cards[0].UpdatedAt != "" {
		t.Error("unchanged card should not be stamped")
	}
	if edited.Cards[1].UpdatedAt == "" {
		t.Error("changed card in the edited document should be stamped too")
	}

	merged := Apply(stored.Cards, ch)
	if len(merged) != 3 || merged[0].ID != "a" || merged[1].ID != "b" || merged[2].ID != "d" {
		t.Fatalf("Apply() = %v", merged)
	}
	if merged[1].Y != 2 {
		t.Errorf("Apply() kept stale b: %+v", merged[1])
	}
}

func TestDiff_NewPage(t *testing.T) {
	ch := Diff(nil, sampleDocument(), time.Now())
	if len(ch.Put) != 2 || len(ch.Delete) != 0 {
		t.Errorf("Diff(nil) = %d puts, %d deletes", len(ch.Put), len(ch.Delete))
	}
	if Diff(sampleDocument(), sampleDocument(), time.Now()).Empty() != true {
		t.Error("identical documents should produce no changes")
	}
}

func TestGetters(t *testing.T) {
	yes := true
	d := New("alice.bsky.social", "blento.links")
	d.Profile = &Profile{DisplayName: "Alice", Description: "hi"}

	if d.Name() != "Alice" || d.Description() != "hi" {
		t.Errorf("Name/Description = %q/%q", d.Name(), d.Description())
	}
	if !d.HideProfileSection() {
		t.Error("secondary pages hide the profile by default")
	}
	if d.ProfilePosition() != "side" {
		t.Errorf("ProfilePosition() = %q", d.ProfilePosition())
	}
	if got := d.URL(""); got != "https://blento.app/alice.bsky.social/links" {
		t.Errorf("URL() = %q", got)
	}

	d.Publication = &Publication{Name: "Links", Preferences: &Preferences{HideProfile: &yes}}
	d.Page = DefaultPage
	if d.Name() != "Links" || !d.HideProfileSection() {
		t.Error("publication should take precedence")
	}
	if got := d.URL("https://example.com/"); got != "https://example.com/alice.bsky.social" {
		t.Errorf("URL() = %q", got)
	}
}

func TestEnsurePublication(t *testing.T) {
	d := New("alice.bsky.social", "blento.links")
	d.EnsurePublication("")

	p := d.Publication
	if p == nil || p.Name != "alice.bsky.social" || p.URL != "https://blento.app/alice.bsky.social/links" {
		t.Fatalf("publication = %+v", p)
	}
	if p.Preferences == nil || p.Preferences.HideProfileSection == nil || !*p.Preferences.HideProfileSection {
		t.Error("hideProfileSection should default to true on secondary pages")
	}

	no := false
	d2 := New("bob.bsky.social", "")
	d2.Publication = &Publication{URL: "https://bob.dev", Preferences: &Preferences{HideProfile: &no}}
	d2.EnsurePublication("")
	if d2.Publication.URL != "https://bob.dev" {
		t.Error("existing URL must be kept")
	}
	if hs := d2.Publication.Preferences.HideProfileSection; hs == nil || *hs {
		t.Error("legacy hideProfile should be copied to hideProfileSection")
	}
}

func TestClone(t *testing.T) {
	d := sampleDocument()
	d.Publication = &Publication{Name: "x", Preferences: &Preferences{ProfilePosition: "top"}}
	c := d.Clone()

	c.Cards[0].X = 6
	c.Publication.Preferences.ProfilePosition = "side"

	if d.Cards[0].X != 0 || d.Publication.Preferences.ProfilePosition != "top" {
		t.Error("Clone should not share cards or publication")
	}
}

func TestItems(t *testing.T) {
	d := sampleDocument()
	d.Cards[0].Page = "blento.other"
	if got := d.Items(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Items() = %v", got)
	}
}
