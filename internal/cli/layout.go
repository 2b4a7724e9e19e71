package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/pipeline"
	"github.com/matzehuels/bentogrid/pkg/session"
)

// All layout commands read a page document (as written by 'pull'), change it
// and write it back in place unless --output is given.

// pageFlags are the flags shared by the layout commands.
type pageFlags struct {
	output   string
	viewport string
	noCache  bool
}

func (f *pageFlags) register(cmd *cobra.Command, viewport, viewportHelp string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&f.viewport, "viewport", viewport, viewportHelp)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *pageFlags) outputFor(input string) string {
	if f.output != "" {
		return f.output
	}
	return input
}

// viewports parses the --viewport flag. "both" is accepted when allowBoth is
// set and yields desktop then mobile.
func (f *pageFlags) viewports(allowBoth bool) ([]grid.Viewport, error) {
	if allowBoth && f.viewport == "both" {
		return []grid.Viewport{grid.Desktop, grid.Mobile}, nil
	}
	v, err := grid.ParseViewport(f.viewport)
	if err != nil {
		return nil, err
	}
	return []grid.Viewport{v}, nil
}

// =============================================================================
// Settle, Compact & Mirror
// =============================================================================

func (c *CLI) settleCommand() *cobra.Command {
	return c.layoutOpCommand(pipeline.OpSettle,
		"settle [page.json]",
		"Resolve overlaps and pack cards upwards",
		`Resolve every overlap on a page and pack the cards upwards.

Cards higher up keep their place; cards below are pushed down until nothing
overlaps, then everything is compacted. Run it on pages edited by hand or
written by other tools.`)
}

func (c *CLI) compactCommand() *cobra.Command {
	return c.layoutOpCommand(pipeline.OpCompact,
		"compact [page.json]",
		"Move cards up into free rows",
		`Move every card up as far as it goes without overlapping another card.`)
}

func (c *CLI) layoutOpCommand(op, use, short, long string) *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := flags.viewports(true)
			if err != nil {
				return err
			}
			return c.runLayoutOp(cmd.Context(), args[0], op, vs, flags)
		},
	}
	flags.register(cmd, "both", "viewport: desktop, mobile or both")
	return cmd
}

func (c *CLI) mirrorCommand() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "mirror [page.json]",
		Short: "Derive one viewport's layout from the other",
		Long: `Derive one viewport's layout from the other.

With --viewport desktop (the default) the mobile layout is rebuilt from the
desktop one: cards become twice as wide and tall, capped to the grid width, and
are re-stacked top to bottom. With --viewport mobile the desktop layout is
rebuilt from the mobile one by packing cards back into rows.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vs, err := flags.viewports(false)
			if err != nil {
				return err
			}
			return c.runLayoutOp(cmd.Context(), args[0], pipeline.OpMirror, vs, flags)
		},
	}
	flags.register(cmd, "desktop", "source viewport: desktop or mobile")
	return cmd
}

// runLayoutOp applies a stateless layout operation to the page's cards in
// each viewport and writes the page back.
func (c *CLI) runLayoutOp(ctx context.Context, input, op string, vs []grid.Viewport, flags pageFlags) error {
	doc, err := document.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load page %s: %w", input, err)
	}

	runner, err := c.newLayoutRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	items := doc.Items()
	cached := len(vs) > 0
	for _, v := range vs {
		res, hit, err := runner.Layout(ctx, pipeline.LayoutRequest{Op: op, Viewport: v, Items: items})
		if err != nil {
			return fmt.Errorf("%s %s layout: %w", op, v, err)
		}
		logger.Debug("layout", "op", op, "viewport", v, "height", res.Height, "cached", hit)
		copyGeometry(items, res.Items)
		cached = cached && hit
	}
	prog.done(fmt.Sprintf("Laid out %d cards", len(items)))

	output := flags.outputFor(input)
	if err := document.WriteFile(doc, output); err != nil {
		return fmt.Errorf("write page %s: %w", output, err)
	}

	printSuccess("%s done", strings.ToUpper(op[:1])+op[1:])
	printFile(output)
	printLayoutStats(len(items), grid.Height(items, grid.Desktop), grid.Height(items, grid.Mobile), cached)
	return nil
}

// copyGeometry copies both geometries from src onto the items of dst with the
// same ID.
func copyGeometry(dst, src []*grid.Item) {
	for _, s := range src {
		if d := grid.Find(dst, s.ID); d != nil {
			d.X, d.Y, d.W, d.H = s.X, s.Y, s.W, s.H
			d.MobileX, d.MobileY, d.MobileW, d.MobileH = s.MobileX, s.MobileY, s.MobileW, s.MobileH
		}
	}
}

// =============================================================================
// Card Edits
// =============================================================================

// editPage loads a page into a session on the requested viewport, runs fn and
// writes the page back.
func (c *CLI) editPage(input string, flags pageFlags, fn func(s *session.Session) error) (*session.Session, error) {
	doc, err := document.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", input, err)
	}
	vs, err := flags.viewports(false)
	if err != nil {
		return nil, err
	}

	s, err := session.New(doc, cards.Default, session.DefaultTTL)
	if err != nil {
		return nil, err
	}
	s.SwitchViewport(vs[0])
	if err := fn(s); err != nil {
		return nil, err
	}

	output := flags.outputFor(input)
	if err := document.WriteFile(doc, output); err != nil {
		return nil, fmt.Errorf("write page %s: %w", output, err)
	}
	return s, nil
}

func (c *CLI) moveCommand() *cobra.Command {
	var (
		flags pageFlags
		size  string
	)
	cmd := &cobra.Command{
		Use:   "move [page.json] [card-id] [x] [y]",
		Short: "Move (and optionally resize) a card",
		Long: `Move a card to column x, row y and push whatever it lands on downwards.

The edit applies to one viewport. As long as the other viewport has never
been arranged by hand it is rebuilt from this one.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseCell(args[2], args[3])
			if err != nil {
				return err
			}
			w, h, err := parseSize(size)
			if err != nil {
				return err
			}

			s, err := c.editPage(args[0], flags, func(s *session.Session) error {
				if w > 0 {
					if err := s.Resize(args[1], w, h); err != nil {
						return err
					}
				}
				return s.Move(args[1], x, y)
			})
			if err != nil {
				return err
			}

			it := grid.Find(s.Items(), args[1])
			r := it.Rect(s.Viewport)
			printSuccess("Moved %s to %d,%d (%dx%d)", StyleHighlight.Render(it.ID), r.X, r.Y, r.W, r.H)
			printDetail("Edited: %s", s.Doc.EditedOn)
			return nil
		},
	}
	flags.register(cmd, "desktop", "viewport: desktop or mobile")
	cmd.Flags().StringVar(&size, "size", "", "new size as WxH, e.g. 4x2")
	return cmd
}

func (c *CLI) addCommand() *cobra.Command {
	var (
		flags   pageFlags
		centerY float64
	)
	cmd := &cobra.Command{
		Use:   "add [page.json] [card-type]",
		Short: "Add a new card",
		Long: `Add a new card of the given type in the first free spot.

With --center-y the card is placed in the first free spot at or below that
row, the way a card added from the middle of the screen would be.
Run 'bentogrid cards' to list the card types.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var added *grid.Item
			s, err := c.editPage(args[0], flags, func(s *session.Session) error {
				var center *grid.ViewportCenter
				if cmd.Flags().Changed("center-y") {
					center = &grid.ViewportCenter{GridY: centerY, Viewport: s.Viewport}
				}
				it, err := s.Add(args[1], center)
				added = it
				return err
			})
			if err != nil {
				return err
			}

			r := added.Rect(s.Viewport)
			printSuccess("Added %s card %s at %d,%d", args[1], StyleHighlight.Render(added.ID), r.X, r.Y)
			return nil
		},
	}
	flags.register(cmd, "desktop", "viewport: desktop or mobile")
	cmd.Flags().Float64Var(&centerY, "center-y", 0, "grid row at the middle of the screen")
	return cmd
}

func (c *CLI) removeCommand() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "remove [page.json] [card-id]",
		Short: "Remove a card and close the gap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.editPage(args[0], flags, func(s *session.Session) error {
				return s.Remove(args[1])
			})
			if err != nil {
				return err
			}
			printSuccess("Removed %s (%d cards left)", args[1], len(s.Items()))
			return nil
		},
	}
	flags.register(cmd, "desktop", "viewport: desktop or mobile")
	return cmd
}

func (c *CLI) colorCommand() *cobra.Command {
	var flags pageFlags
	cmd := &cobra.Command{
		Use:   "color [page.json] [card-id] [color]",
		Short: "Set a card's color (empty resets to the type default)",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := ""
			if len(args) == 3 {
				color = args[2]
			}
			s, err := c.editPage(args[0], flags, func(s *session.Session) error {
				return s.SetColor(args[1], color)
			})
			if err != nil {
				return err
			}
			it := grid.Find(s.Items(), args[1])
			printSuccess("%s is now %s", it.ID, cards.Default.Color(it))
			return nil
		},
	}
	flags.register(cmd, "desktop", "viewport: desktop or mobile")
	return cmd
}

// =============================================================================
// Argument Parsing
// =============================================================================

func parseCell(xs, ys string) (x, y int, err error) {
	if x, err = strconv.Atoi(xs); err != nil {
		return 0, 0, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	if y, err = strconv.Atoi(ys); err != nil {
		return 0, 0, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return x, y, nil
}

// parseSize parses "WxH". An empty string means no size.
func parseSize(s string) (w, h int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q (want WxH)", s)
	}
	w, errW := strconv.Atoi(ws)
	h, errH := strconv.Atoi(hs)
	if errW != nil || errH != nil || w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("invalid size %q (want WxH with positive numbers)", s)
	}
	return w, h, nil
}

// parsePoint parses "X,Y" with float coordinates.
func parsePoint(s string) (x, y float64, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if errX != nil || errY != nil {
		return 0, 0, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	return x, y, nil
}
