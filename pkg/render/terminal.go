package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// Default cell size in terminal characters. Terminal glyphs are about twice as
// tall as they are wide, so 6×3 draws roughly square cells.
const (
	DefaultCellWidth  = 6
	DefaultCellHeight = 3
)

const (
	boxPlain    = "┌┐└┘─│"
	boxSelected = "╔╗╚╝═║"
	emptyCell   = '·'
)

var styleEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

// Option configures a renderer.
type Option func(*renderer)

type renderer struct {
	cellW, cellH int
	reg          *cards.Registry
	selected     string
	color        bool
}

// WithCellSize sets the size of one grid cell in characters. Cells need at
// least 3×3 characters so every box has an interior; smaller values are raised.
func WithCellSize(w, h int) Option {
	return func(r *renderer) { r.cellW, r.cellH = max(w, 3), max(h, 3) }
}

// WithRegistry sets the registry used for card names and default colors.
func WithRegistry(reg *cards.Registry) Option { return func(r *renderer) { r.reg = reg } }

// WithSelected draws the card with the given ID with a heavy border.
func WithSelected(id string) Option { return func(r *renderer) { r.selected = id } }

// WithoutColor disables lipgloss styling.
func WithoutColor() Option { return func(r *renderer) { r.color = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{
		cellW: DefaultCellWidth,
		cellH: DefaultCellHeight,
		reg:   cards.Default,
		color: true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// =============================================================================
// Terminal
// =============================================================================

// Terminal draws the layout of items in viewport v. The result has one line
// per character row and no trailing newline; an empty layout yields "".
func Terminal(items []*grid.Item, v grid.Viewport, opts ...Option) string {
	r := newRenderer(opts...)
	rows := grid.Height(items, v)
	if rows == 0 {
		return ""
	}

	c := newCanvas(grid.Columns()*r.cellW, rows*r.cellH)
	c.dots(r.cellW, r.cellH)
	for k, it := range items {
		box := boxPlain
		if it.ID == r.selected {
			box = boxSelected
		}
		c.box(k, r.pixelRect(it.Rect(v)), []rune(box), r.labels(it))
	}

	lines := make([]string, c.h)
	for y := range lines {
		lines[y] = r.line(c, y, items)
	}
	return strings.Join(lines, "\n")
}

// pixelRect converts a cell rectangle into character coordinates.
func (r renderer) pixelRect(g grid.Rect) grid.Rect {
	return grid.Rect{X: g.X * r.cellW, Y: g.Y * r.cellH, W: g.W * r.cellW, H: g.H * r.cellH}
}

// labels returns the lines printed inside a card: its type name and, when the
// card has a custom color, that color.
func (r renderer) labels(it *grid.Item) []string {
	name := it.CardType
	if d, ok := r.reg.Lookup(it.CardType); ok {
		name = d.DisplayName()
	}
	out := []string{name}
	if it.Color != "" {
		out = append(out, it.Color)
	}
	return out
}

// line renders row y, styling each run of characters owned by the same card.
func (r renderer) line(c *canvas, y int, items []*grid.Item) string {
	row, owners := c.cells[y], c.owner[y]
	if !r.color {
		return string(row)
	}

	var b strings.Builder
	start := 0
	for x := 1; x <= len(row); x++ {
		if x < len(row) && owners[x] == owners[start] {
			continue
		}
		b.WriteString(r.style(owners[start], items).Render(string(row[start:x])))
		start = x
	}
	return b.String()
}

func (r renderer) style(owner int, items []*grid.Item) lipgloss.Style {
	if owner < 0 {
		return styleEmpty
	}
	it := items[owner]
	s := lipgloss.NewStyle().Foreground(swatchFor(r.reg.Color(it)).term)
	if it.ID == r.selected {
		s = s.Bold(true)
	}
	return s
}

// =============================================================================
// Canvas
// =============================================================================

// canvas is a character grid that remembers which card drew each character.
type canvas struct {
	w, h  int
	cells [][]rune
	owner [][]int
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]rune, h), owner: make([][]int, h)}
	for y := 0; y < h; y++ {
		c.cells[y] = []rune(strings.Repeat(" ", w))
		c.owner[y] = make([]int, w)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

// dots marks the center of every cell so empty space stays readable.
func (c *canvas) dots(cellW, cellH int) {
	for y := cellH / 2; y < c.h; y += cellH {
		for x := cellW / 2; x < c.w; x += cellW {
			c.cells[y][x] = emptyCell
		}
	}
}

func (c *canvas) set(x, y int, ch rune, owner int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = ch
	c.owner[y][x] = owner
}

// box draws a bordered rectangle filled with blanks and writes labels on the
// interior lines, truncated to fit. box holds the corner and edge glyphs in
// the order top-left, top-right, bottom-left, bottom-right, horizontal,
// vertical.
func (c *canvas) box(owner int, r grid.Rect, box []rune, labels []string) {
	x0, y0 := r.X, r.Y
	x1, y1 := r.Right()-1, r.Bottom()-1
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			ch := ' '
			switch {
			case y == y0 && x == x0:
				ch = box[0]
			case y == y0 && x == x1:
				ch = box[1]
			case y == y1 && x == x0:
				ch = box[2]
			case y == y1 && x == x1:
				ch = box[3]
			case y == y0 || y == y1:
				ch = box[4]
			case x == x0 || x == x1:
				ch = box[5]
			}
			c.set(x, y, ch, owner)
		}
	}

	inner := r.W - 2
	for i, label := range labels {
		y := y0 + 1 + i
		if y >= y1 || inner <= 0 {
			return
		}
		for j, ch := range []rune(truncate(label, inner)) {
			c.set(x0+1+j, y, ch, owner)
		}
	}
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 1 {
		return string(rs[:n])
	}
	return string(rs[:n-1]) + "…"
}
