package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// cardInset is the gap in pixels between a card and its cell boundary.
const cardInset = 6

const cardCSS = `
    .card rect { stroke: #d4d4d4; stroke-width: 1; }
    .card.selected rect { stroke: #171717; stroke-width: 3; }
    .card text { font-family: ui-sans-serif, system-ui, sans-serif; font-size: 13px; fill: #171717; }`

// SVG draws the layout of items in viewport v at the pixel scale of container
// c. The page is as tall as the layout plus one margin above and below.
func SVG(items []*grid.Item, v grid.Viewport, c drag.Container, m drag.Metrics, opts ...Option) []byte {
	r := newRenderer(opts...)

	margin := m.Margin
	if v == grid.Mobile {
		margin = m.MobileMargin
	}
	cell := m.CellSize(c, v)
	height := margin*2 + float64(grid.Height(items, v))*cell

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		c.Width, height, c.Width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardCSS)

	for _, it := range items {
		g := it.Rect(v)
		x := margin + float64(g.X)*cell + cardInset
		y := margin + float64(g.Y)*cell + cardInset
		w := max(float64(g.W)*cell-cardInset*2, 0)
		h := max(float64(g.H)*cell-cardInset*2, 0)

		class := "card"
		if it.ID == r.selected {
			class += " selected"
		}
		labels := r.labels(it)

		fmt.Fprintf(&buf, `  <g class="%s" id="card-%s">`+"\n", class, escapeXML(it.ID))
		fmt.Fprintf(&buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="16" fill="%s"/>`+"\n",
			x, y, w, h, swatchFor(r.reg.Color(it)).hex)
		fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f">%s</text>`+"\n", x+12, y+22, escapeXML(labels[0]))
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
