package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/cards"
	"github.com/matzehuels/bentogrid/pkg/document"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/render"
	"github.com/matzehuels/bentogrid/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Command
// =============================================================================

// editCommand opens the interactive page editor.
func (c *CLI) editCommand() *cobra.Command {
	var (
		output       string
		viewport     string
		cell         string
		discardDraft bool
	)

	cmd := &cobra.Command{
		Use:   "edit [page.json]",
		Short: "Edit a page interactively in the terminal",
		Long: `Edit a page interactively in the terminal.

Every change is kept as a draft while you work. Quitting without saving keeps
the draft, and the next 'edit' of the same page resumes it. Saving writes the
page file and drops the draft.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			doc, err := document.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("load page %s: %w", args[0], err)
			}
			v, err := grid.ParseViewport(viewport)
			if err != nil {
				return err
			}
			cw, ch, err := parseSize(cell)
			if err != nil {
				return err
			}

			drafts, err := newDraftStore()
			if err != nil {
				logger.Warn("drafts unavailable, edits are only kept on save", "error", err)
			}
			sess, resumed, err := openSession(ctx, drafts, doc, discardDraft)
			if err != nil {
				return err
			}
			if resumed {
				printInfo("Resuming unsaved edit of %s", doc.Page)
			}
			sess.SwitchViewport(v)

			m := newEditorModel(sess, drafts)
			if cw > 0 {
				m.cellW, m.cellH = cw, ch
			}
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("editor: %w", err)
			}
			result := final.(editorModel)

			if !result.saved {
				if result.dirty && drafts != nil {
					printInfo("Draft kept")
					printNextStep("Resume", appName+" edit "+args[0])
				}
				return nil
			}

			if output == "" {
				output = args[0]
			}
			if err := document.WriteFile(sess.Doc, output); err != nil {
				return fmt.Errorf("write page %s: %w", output, err)
			}
			if drafts != nil {
				if err := drafts.Discard(ctx, sess.Doc.Handle, sess.Doc.Page); err != nil {
					logger.Warn("discard draft", "error", err)
				}
			}
			items := sess.Items()
			printSuccess("Saved %s", sess.Doc.Page)
			printFile(output)
			printLayoutStats(len(items), grid.Height(items, grid.Desktop), grid.Height(items, grid.Mobile), false)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	cmd.Flags().StringVar(&viewport, "viewport", "desktop", "viewport to start in: desktop or mobile")
	cmd.Flags().StringVar(&cell, "cell", "", "cell size in characters as WxH")
	cmd.Flags().BoolVar(&discardDraft, "discard-draft", false, "start over instead of resuming an unsaved edit")
	return cmd
}

// openSession resumes the draft for doc's page or starts a new session.
func openSession(ctx context.Context, drafts *session.DraftStore, doc *document.Document, discard bool) (*session.Session, bool, error) {
	if drafts != nil {
		if discard {
			if err := drafts.Discard(ctx, doc.Handle, doc.Page); err != nil {
				return nil, false, err
			}
		} else {
			draft, err := drafts.Get(ctx, doc.Handle, doc.Page)
			if err != nil {
				return nil, false, err
			}
			if draft != nil {
				draft.SetRegistry(cards.Default)
				return draft, true, nil
			}
		}
	}
	sess, err := session.New(doc, cards.Default, session.DefaultTTL)
	return sess, false, err
}

// =============================================================================
// Editor Model
// =============================================================================

// draftSavedMsg reports the outcome of an autosave.
type draftSavedMsg struct{ err error }

// editorModel is the bubbletea model of the page editor.
type editorModel struct {
	sess   *session.Session
	drafts *session.DraftStore

	selected string
	status   string
	dirty    bool
	saved    bool

	// picking is set while the card type picker is open.
	picking bool
	types   []string
	cursor  int

	cellW, cellH int
}

func newEditorModel(sess *session.Session, drafts *session.DraftStore) editorModel {
	m := editorModel{
		sess:   sess,
		drafts: drafts,
		types:  cards.Default.Types(),
		cellW:  render.DefaultCellWidth,
		cellH:  render.DefaultCellHeight,
	}
	if order := grid.ReadingOrder(sess.Items(), sess.Viewport); len(order) > 0 {
		m.selected = order[0].ID
	}
	return m
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case draftSavedMsg:
		if msg.err != nil {
			m.status = "draft not saved: " + msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

func (m editorModel) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	edited := false

	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "s":
		m.saved = true
		return m, tea.Quit
	case "tab":
		m.selectNext(1)
	case "shift+tab":
		m.selectNext(-1)
	case "v":
		m.sess.SwitchViewport(m.sess.Viewport.Other())
		m.status = "viewing " + m.sess.Viewport.String()
	case "a":
		m.picking = true
		m.cursor = 0
	case "left", "h", "right", "l", "up", "k", "down", "j":
		dx, dy := direction(key)
		if r, ok := m.selectedRect(); ok {
			err = m.sess.Move(m.selected, r.X+dx, r.Y+dy)
			edited = true
		}
	case "H", "L", "K", "J":
		dw, dh := direction(strings.ToLower(key))
		if r, ok := m.selectedRect(); ok {
			err = m.sess.Resize(m.selected, max(1, r.W+dw), max(1, r.H+dh))
			edited = true
		}
	case "d":
		if m.selected != "" {
			id := m.selected
			m.selectNext(1)
			if err = m.sess.Remove(id); err == nil {
				if m.selected == id {
					m.selected = ""
				}
				m.status = "removed " + id
			}
			edited = true
		}
	case "c":
		if it := grid.Find(m.sess.Items(), m.selected); it != nil {
			err = m.sess.SetColor(it.ID, nextColor(it.Color))
			m.status = "color " + cards.Default.Color(it)
			edited = true
		}
	case "n":
		m.sess.Normalize()
		m.status = "normalized"
		edited = true
	case "m":
		m.sess.Mirror()
		m.status = "mirrored " + m.sess.Viewport.String() + " onto " + m.sess.Viewport.Other().String()
		edited = true
	}

	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	if edited {
		m.dirty = true
		return m, m.autosave()
	}
	return m, nil
}

func (m editorModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.picking = false
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.types)-1 {
			m.cursor++
		}
	case "enter":
		m.picking = false
		if len(m.types) == 0 {
			return m, nil
		}
		it, err := m.sess.Add(m.types[m.cursor], nil)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.selected = it.ID
		m.status = "added " + it.CardType
		m.dirty = true
		return m, m.autosave()
	}
	return m, nil
}

// autosave stores a snapshot of the session as the page's draft.
func (m editorModel) autosave() tea.Cmd {
	if m.drafts == nil {
		return nil
	}
	snap := *m.sess
	snap.Doc = m.sess.Doc.Clone()
	snap.Drag = nil
	drafts := m.drafts
	return func() tea.Msg {
		return draftSavedMsg{err: drafts.Save(context.Background(), &snap)}
	}
}

// selectNext moves the selection step cards along the reading order,
// wrapping around.
func (m *editorModel) selectNext(step int) {
	order := grid.ReadingOrder(m.sess.Items(), m.sess.Viewport)
	if len(order) == 0 {
		m.selected = ""
		return
	}
	i := slices.IndexFunc(order, func(it *grid.Item) bool { return it.ID == m.selected })
	if i < 0 {
		m.selected = order[0].ID
		return
	}
	n := len(order)
	m.selected = order[((i+step)%n+n)%n].ID
}

func (m editorModel) selectedRect() (grid.Rect, bool) {
	it := grid.Find(m.sess.Items(), m.selected)
	if it == nil {
		return grid.Rect{}, false
	}
	return it.Rect(m.sess.Viewport), true
}

func direction(key string) (dx, dy int) {
	switch key {
	case "left", "h":
		return -1, 0
	case "right", "l":
		return 1, 0
	case "up", "k":
		return 0, -1
	case "down", "j":
		return 0, 1
	}
	return 0, 0
}

// nextColor cycles through the palette. After the last color it goes back
// to the card type's default.
func nextColor(current string) string {
	colors := append([]string{""}, render.Colors()...)
	i := slices.Index(colors, current)
	return colors[(i+1)%len(colors)]
}

func (m editorModel) View() string {
	var b strings.Builder

	doc := m.sess.Doc
	b.WriteString(StyleTitle.Render("Editing " + doc.Handle + "/" + doc.PageSlug()))
	b.WriteString(listDimStyle.Render(" · " + m.sess.Viewport.String()))
	b.WriteString("\n")

	if m.picking {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ add  esc cancel"))
		b.WriteString("\n\n")
		for i, t := range m.types {
			if i == m.cursor {
				b.WriteString(listSelectedStyle.Render("▸ " + t))
			} else {
				b.WriteString(listNormalStyle.Render("  " + t))
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(listDimStyle.Render("tab select  ←↑↓→ move  HJKL resize  a add  d delete  c color  v viewport  m mirror  n settle  s save  q quit"))
	b.WriteString("\n\n")
	b.WriteString(render.Terminal(m.sess.Items(), m.sess.Viewport,
		render.WithSelected(m.selected),
		render.WithCellSize(m.cellW, m.cellH)))
	b.WriteString("\n")

	if it := grid.Find(m.sess.Items(), m.selected); it != nil {
		r := it.Rect(m.sess.Viewport)
		b.WriteString(listNormalStyle.Render(fmt.Sprintf("%s  %s  %d,%d %dx%d", it.ID, it.CardType, r.X, r.Y, r.W, r.H)))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(listDimStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}
