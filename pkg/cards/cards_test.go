package cards

import (
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

func TestNewItem_Defaults(t *testing.T) {
	it, err := Default.NewItem("blento.self", "")
	if err != nil {
		t.Fatalf("NewItem() error = %v", err)
	}
	if it.W != 2 || it.H != 2 || it.MobileW != 4 || it.MobileH != 4 {
		t.Errorf("size = %dx%d / %dx%d, want 2x2 / 4x4", it.W, it.H, it.MobileW, it.MobileH)
	}
	if it.X != 0 || it.Y != 0 || it.MobileX != 0 || it.MobileY != 0 {
		t.Error("new item should start at the origin")
	}
	if it.Page != "blento.self" || it.ID == "" || it.CardData == nil {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestNewItem_CreateNewHook(t *testing.T) {
	tests := []struct {
		cardType         string
		w, h, mobW, mobH int
	}{
		{"text", 2, 2, 4, 4},
		{"button", 2, 1, 4, 2},
		{"section", grid.Columns(), 1, grid.Columns(), 2},
		{"spotify", 4, 5, 8, 10},
		{"statusphere", 2, 3, 4, 5},
		{"tetris", 4, 6, 8, 12},
	}

	for _, tt := range tests {
		t.Run(tt.cardType, func(t *testing.T) {
			it, err := Default.NewItem("blento.self", tt.cardType)
			if err != nil {
				t.Fatalf("NewItem() error = %v", err)
			}
			if it.CardType != tt.cardType {
				t.Errorf("CardType = %q, want %q", it.CardType, tt.cardType)
			}
			if it.W != tt.w || it.H != tt.h || it.MobileW != tt.mobW || it.MobileH != tt.mobH {
				t.Errorf("size = %dx%d / %dx%d, want %dx%d / %dx%d",
					it.W, it.H, it.MobileW, it.MobileH, tt.w, tt.h, tt.mobW, tt.mobH)
			}
		})
	}

	it, _ := Default.NewItem("blento.self", "text")
	if it.CardData["text"] != "hello world" {
		t.Errorf("text card data = %v", it.CardData)
	}
}

func TestNewItem_UnknownType(t *testing.T) {
	_, err := Default.NewItem("blento.self", "hologram")
	if !errors.Is(err, errors.ErrCodeInvalidCardType) {
		t.Errorf("NewItem() error = %v, want INVALID_CARD_TYPE", err)
	}
}

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	prev := ""
	for i := 0; i < 50; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate ID %s", id)
		}
		seen[id] = true
		if len(id) != 36 {
			t.Errorf("ID %q is not a UUID", id)
		}
		// UUIDv7 starts with a millisecond timestamp, so IDs never go backwards.
		if prev != "" && id[:13] < prev[:13] {
			t.Errorf("ID %s sorts before %s", id, prev)
		}
		prev = id
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry(&Definition{Type: "a"})

	if err := r.Register(&Definition{Type: "a"}); !errors.Is(err, errors.ErrCodeInvalidCardType) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if err := r.Register(&Definition{}); err == nil {
		t.Error("empty type should be rejected")
	}
	if err := r.Register(&Definition{Type: "b"}); err != nil {
		t.Errorf("Register() error = %v", err)
	}
	if got := r.Types(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Types() = %v", got)
	}
}

func TestLookup_NilRegistry(t *testing.T) {
	var r *Registry
	if _, ok := r.Lookup("text"); ok {
		t.Error("nil registry should find nothing")
	}
	if l := r.Limits("button"); l != (Limits{}) {
		t.Errorf("Limits() = %+v, want zero", l)
	}
}

func TestFingerprint(t *testing.T) {
	a := NewRegistry(&Definition{Type: "a", Limits: Limits{MaxH: 1}}, &Definition{Type: "b"})
	same := NewRegistry(&Definition{Type: "b", Name: "B"}, &Definition{Type: "a", Limits: Limits{MaxH: 1}})
	taller := NewRegistry(&Definition{Type: "a", Limits: Limits{MaxH: 2}}, &Definition{Type: "b"})

	if a.Fingerprint() != same.Fingerprint() {
		t.Error("registries with equal limits should share a fingerprint")
	}
	if a.Fingerprint() == taller.Fingerprint() {
		t.Error("changed limits should change the fingerprint")
	}
	var empty *Registry
	if empty.Fingerprint() == a.Fingerprint() {
		t.Error("nil registry should not match a populated one")
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		name string
		item *grid.Item
		want string
	}{
		{"explicit", &grid.Item{CardType: "button", Color: "red"}, "red"},
		{"type default", &grid.Item{CardType: "tetris"}, "accent"},
		{"fallback", &grid.Item{CardType: "text"}, FallbackColor},
		{"unknown type", &grid.Item{CardType: "nope"}, FallbackColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Default.Color(tt.item); got != tt.want {
				t.Errorf("Color() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	status := &grid.Item{CardType: "statusphere", CardData: map[string]any{"title": "mood"}}
	labelled := &grid.Item{CardType: "statusphere", CardData: map[string]any{"title": "a", "label": "b"}}
	gh := &grid.Item{CardType: "githubProfile", CardData: map[string]any{"href": "https://github.com/octocat/"}}
	plain := &grid.Item{CardType: "text"}

	n := Default.Migrate([]*grid.Item{status, labelled, gh, plain})

	if n != 3 {
		t.Errorf("Migrate() = %d, want 3", n)
	}
	if status.CardData["label"] != "mood" {
		t.Errorf("statusphere label = %v, want mood", status.CardData["label"])
	}
	if labelled.CardData["label"] != "b" {
		t.Errorf("existing label overwritten: %v", labelled.CardData["label"])
	}
	if gh.CardData["user"] != "octocat" {
		t.Errorf("github user = %v, want octocat", gh.CardData["user"])
	}
}

func TestClampSize(t *testing.T) {
	tests := []struct {
		cardType     string
		v            grid.Viewport
		w, h         int
		wantW, wantH int
	}{
		{"button", grid.Desktop, 1, 9, 2, 4},
		{"section", grid.Desktop, 8, 3, 8, 1},
		{"spotify", grid.Desktop, 2, 2, 4, 5},
		{"text", grid.Desktop, 12, 0, 8, 1},
		{"unknown", grid.Desktop, 3, 3, 3, 3},
		{"section", grid.Mobile, 8, 2, 8, 2},
		{"button", grid.Mobile, 1, 9, 1, 9},
		{"spotify", grid.Mobile, 2, 2, 2, 2},
		{"text", grid.Mobile, 12, 0, 8, 1},
	}
	for _, tt := range tests {
		w, h := Default.ClampSize(tt.cardType, tt.v, tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("ClampSize(%s, %s, %d, %d) = %d, %d, want %d, %d", tt.cardType, tt.v, tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestSearch(t *testing.T) {
	got := Default.Search("GAME")
	var types []string
	for _, d := range got {
		types = append(types, d.Type)
	}
	if !slices.Equal(types, []string{"dino-game", "tetris"}) {
		t.Errorf("Search(GAME) = %v", types)
	}

	if all := Default.Search(""); len(all) != len(Default.Types()) {
		t.Errorf("empty search returned %d of %d", len(all), len(Default.Types()))
	}

	for _, d := range Default.Search("last.fm") {
		if !strings.HasPrefix(d.Type, "lastfm") {
			t.Errorf("unexpected match %s", d.Type)
		}
	}
}
