package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/cards"
)

// cardsCommand lists the registered card types.
func (c *CLI) cardsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "cards [query]",
		Short: "List card types and their size limits",
		Long: `List the card types that can be added to a page.

The optional query filters by type, name, group or keyword.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			defs := cards.Default.Search(query)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(defs)
			}
			if len(defs) == 0 {
				printInfo("No card types match %q", query)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cardTable(defs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print definitions as JSON")
	return cmd
}

// cardTable renders definitions as a table of type, name, size limits and
// default color.
func cardTable(defs []*cards.Definition) string {
	rows := make([][]string, len(defs))
	for i, d := range defs {
		color := d.DefaultColor
		if color == "" {
			color = "base"
		}
		rows[i] = []string{d.Type, d.DisplayName(), formatLimits(d.Limits), color}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Name", "Size", "Color").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 1:
				return StyleValue
			}
			return StyleDim
		}).
		Render()
}

// formatLimits renders limits like "w 2-8 · h 2-4". Unbounded sides are left
// out.
func formatLimits(l cards.Limits) string {
	var parts []string
	if s := formatRange(l.MinW, l.MaxW); s != "" {
		parts = append(parts, "w "+s)
	}
	if s := formatRange(l.MinH, l.MaxH); s != "" {
		parts = append(parts, "h "+s)
	}
	if len(parts) == 0 {
		return "any size"
	}
	return strings.Join(parts, " · ")
}

func formatRange(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("%d-%d", lo, hi)
	case lo > 0:
		return fmt.Sprintf(">=%d", lo)
	case hi > 0:
		return fmt.Sprintf("<=%d", hi)
	}
	return ""
}
