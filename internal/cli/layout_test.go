package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSettleCommand(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2), card("b", 0, 0, 4, 2))

	if _, err := execute(t, "settle", path, "--no-cache"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	items := readPage(t, path).Items()
	b := grid.Find(items, "b")
	if b.Y != 2 {
		t.Errorf("desktop b.Y = %d, want 2", b.Y)
	}
	if b.MobileY != 4 {
		t.Errorf("mobile b.Y = %d, want 4", b.MobileY)
	}
	for _, v := range []grid.Viewport{grid.Desktop, grid.Mobile} {
		if !grid.Valid(items, v) || !grid.Settled(items, v) {
			t.Errorf("%s layout not valid and settled", v)
		}
	}
}

func TestSettleCommandOutput(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2), card("b", 0, 0, 4, 2))
	out := filepath.Join(dir, "out.json")

	if _, err := execute(t, "settle", path, "-o", out, "--viewport", "desktop"); err != nil {
		t.Fatalf("settle: %v", err)
	}

	if b := grid.Find(readPage(t, path).Items(), "b"); b.Y != 0 {
		t.Errorf("input was modified: b.Y = %d", b.Y)
	}
	b := grid.Find(readPage(t, out).Items(), "b")
	if b.Y != 2 {
		t.Errorf("desktop b.Y = %d, want 2", b.Y)
	}
	if b.MobileY != 0 {
		t.Errorf("mobile b.Y = %d, want untouched 0", b.MobileY)
	}
}

func TestMoveCommand(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2), card("b", 4, 0, 4, 2))

	if _, err := execute(t, "move", path, "b", "0", "0"); err != nil {
		t.Fatalf("move: %v", err)
	}

	doc := readPage(t, path)
	items := doc.Items()
	a, b := grid.Find(items, "a"), grid.Find(items, "b")
	if got := b.Rect(grid.Desktop); got != (grid.Rect{X: 0, Y: 0, W: 4, H: 2}) {
		t.Errorf("b = %+v, want at 0,0", got)
	}
	if got := a.Rect(grid.Desktop); got != (grid.Rect{X: 0, Y: 2, W: 4, H: 2}) {
		t.Errorf("a = %+v, want pushed to 0,2", got)
	}
	if doc.EditedOn != mirror.Desktop {
		t.Errorf("EditedOn = %v, want desktop", doc.EditedOn)
	}
	if b.MobileY >= a.MobileY {
		t.Errorf("mobile not mirrored: b.Y = %d, a.Y = %d", b.MobileY, a.MobileY)
	}
}

func TestMoveCommandResize(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 2, 2))

	if _, err := execute(t, "move", path, "a", "2", "0", "--size", "4x3"); err != nil {
		t.Fatalf("move: %v", err)
	}
	a := grid.Find(readPage(t, path).Items(), "a")
	if got := a.Rect(grid.Desktop); got != (grid.Rect{X: 2, Y: 0, W: 4, H: 3}) {
		t.Errorf("a = %+v, want 2,0 4x3", got)
	}
}

func TestMoveCommandErrors(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 2, 2))

	tests := []struct {
		name string
		args []string
	}{
		{"bad x", []string{"move", path, "a", "x", "0"}},
		{"bad size", []string{"move", path, "a", "0", "0", "--size", "4"}},
		{"bad viewport", []string{"move", path, "a", "0", "0", "--viewport", "tablet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := execute(t, "move", path, "nope", "0", "0")
	if !errors.IsNotFound(err) {
		t.Errorf("unknown card: err = %v, want not found", err)
	}
	_, err = execute(t, "move", filepath.Join(dir, "missing.json"), "a", "0", "0")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestAddCommand(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2))

	if _, err := execute(t, "add", path, "button"); err != nil {
		t.Fatalf("add: %v", err)
	}

	items := readPage(t, path).Items()
	if len(items) != 2 {
		t.Fatalf("got %d cards, want 2", len(items))
	}
	var added *grid.Item
	for _, it := range items {
		if it.ID != "a" {
			added = it
		}
	}
	if added.CardType != "button" || added.W != 2 || added.H != 1 {
		t.Errorf("added = %s %dx%d, want button 2x1", added.CardType, added.W, added.H)
	}
	for _, v := range []grid.Viewport{grid.Desktop, grid.Mobile} {
		if !grid.Valid(items, v) {
			t.Errorf("%s layout invalid after add", v)
		}
	}

	if _, err := execute(t, "add", path, "no-such-card"); !errors.IsValidation(err) {
		t.Errorf("unknown type: err = %v, want validation error", err)
	}
}

func TestRemoveCommand(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2), card("b", 0, 2, 4, 2))

	if _, err := execute(t, "remove", path, "a"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	items := readPage(t, path).Items()
	if len(items) != 1 {
		t.Fatalf("got %d cards, want 1", len(items))
	}
	if b := items[0]; b.Y != 0 || b.MobileY != 0 {
		t.Errorf("b at desktop y %d, mobile y %d, want both 0", b.Y, b.MobileY)
	}
}

func TestColorCommand(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 4, 2))

	if _, err := execute(t, "color", path, "a", "red"); err != nil {
		t.Fatalf("color: %v", err)
	}
	if a := grid.Find(readPage(t, path).Items(), "a"); a.Color != "red" {
		t.Errorf("color = %q, want red", a.Color)
	}

	if _, err := execute(t, "color", path, "a"); err != nil {
		t.Fatalf("color reset: %v", err)
	}
	if a := grid.Find(readPage(t, path).Items(), "a"); a.Color != "" {
		t.Errorf("color = %q, want reset", a.Color)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"", 0, 0, false},
		{"4x2", 4, 2, false},
		{"8X1", 8, 1, false},
		{"4", 0, 0, true},
		{"0x2", 0, 0, true},
		{"ax2", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := parseSize(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSize(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if w != tt.w || h != tt.h {
			t.Errorf("parseSize(%q) = %d, %d, want %d, %d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestParsePoint(t *testing.T) {
	x, y, err := parsePoint("216.5, 16")
	if err != nil || x != 216.5 || y != 16 {
		t.Errorf("parsePoint = %v, %v, %v", x, y, err)
	}
	for _, in := range []string{"", "1", "a,b"} {
		if _, _, err := parsePoint(in); err == nil {
			t.Errorf("parsePoint(%q) should fail", in)
		}
	}
}
