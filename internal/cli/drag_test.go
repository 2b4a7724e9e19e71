package cli

import (
	"testing"

	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/mirror"
)

func TestDragCommandSwap(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 2, 2), card("b", 2, 0, 2, 2))

	if _, err := execute(t, "drag", path, "a", "2,0", "--cells"); err != nil {
		t.Fatalf("drag: %v", err)
	}

	doc := readPage(t, path)
	a, b := grid.Find(doc.Items(), "a"), grid.Find(doc.Items(), "b")
	if a.X != 2 || a.Y != 0 || b.X != 0 || b.Y != 0 {
		t.Errorf("a = (%d,%d), b = (%d,%d); want swapped", a.X, a.Y, b.X, b.Y)
	}
	if doc.EditedOn != mirror.Desktop {
		t.Errorf("EditedOn = %v, want desktop", doc.EditedOn)
	}
}

func TestDragCommandPixels(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 2, 2), card("b", 2, 0, 2, 2))

	// 216,16 is the top-left corner of cell 2,0 on an 832px page.
	if _, err := execute(t, "drag", path, "a", "100,16", "216,16"); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if a := grid.Find(readPage(t, path).Items(), "a"); a.X != 2 {
		t.Errorf("a.X = %d, want 2", a.X)
	}
}

func TestDragCommandErrors(t *testing.T) {
	dir := testEnv(t)
	path := writePage(t, dir, card("a", 0, 0, 2, 2))

	_, err := execute(t, "drag", path, "zz", "0,0")
	if !errors.IsNotFound(err) {
		t.Errorf("unknown card: err = %v, want not found", err)
	}
	if _, err := execute(t, "drag", path, "a", "0;0"); err == nil {
		t.Error("bad point should fail")
	}

	// A failed drag leaves the file untouched.
	if a := grid.Find(readPage(t, path).Items(), "a"); a.X != 0 || a.Y != 0 {
		t.Errorf("a moved to %d,%d", a.X, a.Y)
	}
}

func TestCellToPixel(t *testing.T) {
	m := drag.DefaultMetrics()
	c := drag.Container{Width: 832}

	x, y := cellToPixel(2, 1, c, m, grid.Desktop)
	if x != 216 || y != 116 {
		t.Errorf("desktop = %v,%v, want 216,116", x, y)
	}

	c.Left, c.Top = 10, 20
	x, y = cellToPixel(0, 0, c, m, grid.Mobile)
	if x != 22 || y != 32 {
		t.Errorf("mobile origin = %v,%v, want 22,32", x, y)
	}
}
