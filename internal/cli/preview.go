package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/render"
)

// previewCommand draws a page in the terminal or as SVG.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		viewport string
		svgOut   string
		width    float64
		selected string
		simulate string
		cellSize string
	)

	cmd := &cobra.Command{
		Use:   "preview [page.json]",
		Short: "Draw a page in the terminal or as SVG",
		Long: `Draw a page's layout in the terminal, or as an SVG file with --svg.

--simulate ID:X,Y shows where a card would end up if it were moved to column
X, row Y, without changing the page.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load page %s: %w", args[0], err)
			}
			v, err := grid.ParseViewport(viewport)
			if err != nil {
				return err
			}
			items := doc.Items()

			if simulate != "" {
				id, x, y, err := parseSimulate(simulate)
				if err != nil {
					return err
				}
				r, ok := grid.SimulateFinalPosition(items, id, x, y, v)
				if !ok {
					return errors.New(errors.ErrCodeItemNotFound, "no card %q on page %s", id, doc.Page)
				}
				items = grid.CloneAll(items)
				it := grid.Find(items, id)
				it.Move(v, x, y)
				grid.FixCollisions(items, it, v, false)
				selected = id
				printInfo("%s would land at %d,%d", id, r.X, r.Y)
			}

			if svgOut != "" {
				cfg, err := c.Config()
				if err != nil {
					return err
				}
				svg := render.SVG(items, v, drag.Container{Width: width}, cfg.Metrics(),
					render.WithRegistry(cards.Default), render.WithSelected(selected))
				if err := os.WriteFile(svgOut, svg, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", svgOut, err)
				}
				printSuccess("Rendered %s layout", v)
				printFile(svgOut)
				return nil
			}

			opts := []render.Option{render.WithRegistry(cards.Default), render.WithSelected(selected)}
			if cellSize != "" {
				w, h, err := parseSize(cellSize)
				if err != nil {
					return err
				}
				opts = append(opts, render.WithCellSize(w, h))
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%s · %s · %s", doc.Handle, doc.PageSlug(), v)))
			if out := render.Terminal(items, v, opts...); out != "" {
				fmt.Println(out)
			} else {
				printInfo("Page has no cards")
			}
			printLayoutStats(len(items), grid.Height(items, grid.Desktop), grid.Height(items, grid.Mobile), false)
			return nil
		},
	}

	cmd.Flags().StringVar(&viewport, "viewport", "desktop", "viewport: desktop or mobile")
	cmd.Flags().StringVar(&svgOut, "svg", "", "write an SVG file instead of drawing in the terminal")
	cmd.Flags().Float64Var(&width, "width", 832, "page width in pixels (SVG)")
	cmd.Flags().StringVar(&selected, "select", "", "highlight a card")
	cmd.Flags().StringVar(&simulate, "simulate", "", "preview a move as ID:X,Y")
	cmd.Flags().StringVar(&cellSize, "cell", "", "terminal cell size as WxH characters (default 6x3)")

	return cmd
}

// parseSimulate parses "ID:X,Y".
func parseSimulate(s string) (id string, x, y int, err error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return "", 0, 0, fmt.Errorf("invalid --simulate %q (want ID:X,Y)", s)
	}
	xs, ys, ok := strings.Cut(s[i+1:], ",")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid --simulate %q (want ID:X,Y)", s)
	}
	x, y, err = parseCell(xs, ys)
	if err != nil {
		return "", 0, 0, err
	}
	return s[:i], x, y, nil
}
