package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/drag"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/session"
)

// dragCommand replays a pointer drag against a page.
func (c *CLI) dragCommand() *cobra.Command {
	var (
		flags     pageFlags
		width     float64
		inCells   bool
		grabPoint string
	)

	cmd := &cobra.Command{
		Use:   "drag [page.json] [card-id] [X,Y]...",
		Short: "Replay a pointer drag of a card",
		Long: `Replay a pointer drag of a card and keep the resulting layout.

Each X,Y is a pointer position in pixels relative to the page, in the order
the pointer visited them; the last one is where the card is dropped. With
--cells the points are grid cells instead and are converted to the pixel
position of that cell's top-left corner.

Dropping a card onto one of the same size that started on the same row swaps
the two. Otherwise the card is placed above or below the card under it.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			metrics := cfg.Metrics()
			container := drag.Container{Width: width}

			var last drag.Position
			s, err := c.editPage(args[0], flags, func(s *session.Session) error {
				it := grid.Find(s.Items(), args[1])
				if it == nil {
					return errors.New(errors.ErrCodeItemNotFound, "no card %q on page %s", args[1], s.Doc.Page)
				}

				var gx, gy float64
				if grabPoint != "" {
					var err error
					if gx, gy, err = parsePoint(grabPoint); err != nil {
						return err
					}
				}
				if err := s.BeginDrag(it.ID, -gx, -gy); err != nil {
					return err
				}

				for _, arg := range args[2:] {
					x, y, err := parsePoint(arg)
					if err != nil {
						s.CancelDrag()
						return err
					}
					if inCells {
						x, y = cellToPixel(x, y, container, metrics, s.Viewport)
						x, y = x+gx, y+gy
					}
					pos, ok := s.DragTo(x, y, container, metrics)
					if !ok {
						s.CancelDrag()
						return fmt.Errorf("cannot map pointer to the grid (page width %.0f)", width)
					}
					c.Logger.Debug("drag", "x", x, "y", y, "gridX", pos.X, "gridY", pos.Y,
						"swap", pos.SwapWithID, "placement", pos.Placement)
					last = pos
				}
				s.EndDrag()
				return nil
			})
			if err != nil {
				return err
			}

			it := grid.Find(s.Items(), args[1])
			r := it.Rect(s.Viewport)
			switch {
			case last.SwapWithID != "":
				printSuccess("Swapped %s with %s", it.ID, last.SwapWithID)
			case last.Placement != drag.NoPlacement:
				printSuccess("Dropped %s %s another card", it.ID, last.Placement)
			default:
				printSuccess("Dropped %s", it.ID)
			}
			printDetail("Now at %d,%d (%s)", r.X, r.Y, s.Viewport)
			return nil
		},
	}
	flags.register(cmd, "desktop", "viewport: desktop or mobile")
	cmd.Flags().Float64Var(&width, "width", 832, "page width in pixels")
	cmd.Flags().BoolVar(&inCells, "cells", false, "points are grid cells instead of pixels")
	cmd.Flags().StringVar(&grabPoint, "grab", "", "pointer offset inside the card in pixels, as X,Y (default: top-left corner)")
	return cmd
}

// cellToPixel returns the pixel position of a cell's top-left corner.
func cellToPixel(x, y float64, c drag.Container, m drag.Metrics, v grid.Viewport) (float64, float64) {
	margin := m.Margin
	if v == grid.Mobile {
		margin = m.MobileMargin
	}
	cell := m.CellSize(c, v)
	return c.Left + margin + x*cell, c.Top + margin + y*cell
}
