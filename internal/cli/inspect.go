package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stepgraph/pkg/flow"
	"github.com/matzehuels/stepgraph/pkg/tree"
)

// inspectCommand creates the inspect command, an interactive tree browser.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Browse the reconstructed tree of a step graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := flow.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			t, err := tree.Reconstruct(g)
			if err != nil {
				return fmt.Errorf("reconstruct %s: %w", args[0], err)
			}

			p := tea.NewProgram(NewInspectModel(args[0], t), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}

// Inspect styles
var (
	inspectSelectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	inspectNormalStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	inspectContainerStyle = lipgloss.NewStyle().Foreground(colorYellow)
	inspectDimStyle       = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// InspectModel - Interactive tree browser
// =============================================================================

// inspectRow is one visible line of the browser.
type inspectRow struct {
	path  string
	depth int
	node  tree.Node
}

// InspectModel is the bubbletea model for browsing a step tree. Nodes with
// children or branches can be collapsed; the selected node's details are
// shown below the tree.
type InspectModel struct {
	Title  string
	Tree   tree.Tree
	Cursor int
	Offset int
	Height int

	collapsed map[string]bool
	rows      []inspectRow
}

// NewInspectModel creates a browser for t with every node expanded.
func NewInspectModel(title string, t tree.Tree) InspectModel {
	m := InspectModel{
		Title:     title,
		Tree:      t,
		Height:    20,
		collapsed: make(map[string]bool),
	}
	m.rows = visibleRows(t, m.collapsed)
	return m
}

// visibleRows lists the nodes not hidden under a collapsed ancestor.
func visibleRows(t tree.Tree, collapsed map[string]bool) []inspectRow {
	var rows []inspectRow
	tree.Walk(t, func(path string, depth int, n tree.Node) bool {
		rows = append(rows, inspectRow{path: path, depth: depth, node: n})
		return !collapsed[path]
	})
	return rows
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "enter", " ":
			m.setCollapsed(!m.isCollapsed())
		case "left", "h":
			m.setCollapsed(true)
		case "right", "l":
			m.setCollapsed(false)
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail pane.
		m.Height = max(msg.Height-14, 5)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

// Selected returns the node under the cursor.
func (m InspectModel) Selected() (tree.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return tree.Node{}, false
	}
	return m.rows[m.Cursor].node, true
}

// Rows returns the number of visible rows.
func (m InspectModel) Rows() int { return len(m.rows) }

func (m InspectModel) isCollapsed() bool {
	if m.Cursor >= len(m.rows) {
		return false
	}
	return m.collapsed[m.rows[m.Cursor].path]
}

// setCollapsed folds or unfolds the selected node. Leaves are left alone.
// The map is copied so earlier model values keep their own state.
func (m *InspectModel) setCollapsed(v bool) {
	if m.Cursor >= len(m.rows) {
		return
	}
	row := m.rows[m.Cursor]
	if row.node.IsLeaf() || m.collapsed[row.path] == v {
		return
	}
	next := make(map[string]bool, len(m.collapsed)+1)
	for k, c := range m.collapsed {
		next[k] = c
	}
	next[row.path] = v
	m.collapsed = next
	m.rows = visibleRows(m.Tree, m.collapsed)
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(inspectDimStyle.Render("↑/↓ navigate  ⏎ fold  ←/→ collapse/expand  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		row := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		line := cursor + strings.Repeat("  ", row.depth) + m.fold(row) + rowLabel(row.node)

		switch {
		case i == m.Cursor:
			b.WriteString(inspectSelectedStyle.Render(line))
		case row.node.IsContainer():
			b.WriteString(inspectContainerStyle.Render(line))
		default:
			b.WriteString(inspectNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(inspectDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	b.WriteString("\n\n")

	if n, ok := m.Selected(); ok {
		b.WriteString(detailTable(n))
	}
	return b.String()
}

func (m InspectModel) fold(row inspectRow) string {
	switch {
	case row.node.IsLeaf():
		return "  "
	case m.collapsed[row.path]:
		return "+ "
	default:
		return "- "
	}
}

func rowLabel(n tree.Node) string {
	switch n.Type {
	case tree.NodeContainer:
		return fmt.Sprintf("[%s] %d branches", n.ContainerType, len(n.Branches))
	default:
		if n.Kind == tree.KindLoop {
			return n.StepName + " ↻"
		}
		return n.StepName
	}
}

// detailTable renders the fields of n as a two-column table.
func detailTable(n tree.Node) string {
	var rows [][]string
	switch n.Type {
	case tree.NodeContainer:
		rows = [][]string{
			{"container", string(n.ContainerType)},
			{"branches", fmt.Sprint(len(n.Branches))},
			{"steps", fmt.Sprint(len(tree.StepNames(n.Branches)))},
		}
	default:
		step := n.Original
		rows = [][]string{
			{"step", n.StepName},
			{"type", string(step.Type)},
			{"next", orDash(strings.Join(step.Next, ", "))},
		}
		if step.BoxNext {
			rows = append(rows, []string{"box ends", orDash(step.BoxEnds)})
		}
		if step.Doc != "" {
			rows = append(rows, []string{"doc", step.Doc})
		}
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle.Padding(0, 1)
			}
			return StyleValue.Padding(0, 1)
		}).
		Render()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
