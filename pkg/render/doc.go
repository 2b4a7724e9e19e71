// Package render draws a bento layout for humans.
//
// Two outputs are provided, both reading a single viewport of an item set:
//
//   - [Terminal] draws the grid with box-drawing characters, one box per card,
//     colored with lipgloss. It backs the CLI preview and the interactive
//     editor.
//   - [SVG] draws the page at pixel scale using the same container and
//     metrics the drag mapper works with, so the output matches what a
//     browser would show.
//
// Renderers never modify the items they are given and make no attempt to
// repair an invalid layout: overlapping cards are drawn on top of each other
// in slice order.
package render
