// Package browser is an interactive terminal browser over extracted
// schemas: a collapsible tree on the left, details of the selected node on
// the right, and a fuzzy filter over table and view names.
package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/ddlschema/internal/schema"
	"github.com/sadopc/ddlschema/internal/theme"
)

// SchemasMsg replaces the browsed schemas, e.g. after a watched file
// changed. A non-nil Err is shown in the status line and keeps the previous
// schemas.
type SchemasMsg struct {
	Schemas []schema.Schema
	Err     error
}

// Model is the schema browser.
type Model struct {
	schemas []schema.Schema
	nodes   []*TreeNode
	flat    []*TreeNode // flattened visible nodes
	cursor  int
	offset  int

	detail       []string
	detailOffset int

	filter    textinput.Model
	filtering bool

	keys     KeyMap
	help     help.Model
	showHelp bool
	err      error
	title    string

	width  int
	height int
}

// New creates a browser over schemas. title is shown above the tree.
func New(schemas []schema.Schema, title string) Model {
	ti := textinput.New()
	ti.Placeholder = "table or view name"
	ti.Prompt = "/"
	ti.Width = 30

	m := Model{
		schemas: schemas,
		filter:  ti,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		title:   title,
	}
	m.rebuild(true)
	return m
}

// Run starts a full-screen browser in the background. The channel receives
// the program's result once the user quits; SchemasMsg updates can be sent
// through the returned program while it runs.
func Run(m Model, opts ...tea.ProgramOption) (*tea.Program, <-chan error) {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()
	return p, done
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles browser messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case SchemasMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.schemas = msg.Schemas
			m.rebuild(true)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateTree(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.rebuild(true)
		return m, nil
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.rebuild(false)
	}
	return m, cmd
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.ClearFilter):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.rebuild(true)
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.selectionChanged()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.flat)-1 {
			m.cursor++
			m.selectionChanged()
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.selectionChanged()
	case key.Matches(msg, m.keys.Bottom):
		if len(m.flat) > 0 {
			m.cursor = len(m.flat) - 1
			m.selectionChanged()
		}
	case key.Matches(msg, m.keys.Expand):
		if node := m.Selected(); node != nil && len(node.Children) > 0 {
			node.Expanded = !node.Expanded
			m.flatten()
		}
	case key.Matches(msg, m.keys.Collapse):
		if node := m.Selected(); node != nil && node.Expanded {
			node.Expanded = false
			m.flatten()
		}
	case key.Matches(msg, m.keys.DetailUp):
		m.detailOffset -= m.detailHeight() / 2
		m.clampDetail()
	case key.Matches(msg, m.keys.DetailDown):
		m.detailOffset += m.detailHeight() / 2
		m.clampDetail()
	}
	return m, nil
}

// Selected returns the node under the cursor, or nil for an empty tree.
func (m Model) Selected() *TreeNode {
	if m.cursor < 0 || m.cursor >= len(m.flat) {
		return nil
	}
	return m.flat[m.cursor]
}

// Filter returns the current filter text.
func (m Model) Filter() string {
	return m.filter.Value()
}

// rebuild recreates the tree from schemas and the filter. With keep set the
// selection stays on the node with the same path when it still exists;
// otherwise the first table or view is selected.
func (m *Model) rebuild(keep bool) {
	var path string
	expanded := make(map[string]bool)
	if keep {
		if node := m.Selected(); node != nil {
			path = m.pathOf(node)
		}
		for _, n := range m.flat {
			if n.Expanded {
				expanded[m.pathOf(n)] = true
			}
		}
	}

	m.nodes = buildTree(m.schemas, m.filter.Value())
	m.walk(m.nodes, func(n *TreeNode) {
		if expanded[m.pathOf(n)] {
			n.Expanded = true
		}
	})
	m.cursor = 0
	m.offset = 0
	m.flatten()

	for i, n := range m.flat {
		if path != "" && m.pathOf(n) == path {
			m.cursor = i
			break
		}
		if path == "" && !keep && (n.Kind == NodeTable || n.Kind == NodeView) {
			m.cursor = i
			break
		}
	}
	m.selectionChanged()
}

func (m *Model) walk(nodes []*TreeNode, fn func(*TreeNode)) {
	for _, n := range nodes {
		fn(n)
		m.walk(n.Children, fn)
	}
}

func (m *Model) pathOf(node *TreeNode) string {
	parts := []string{node.Schema.Name, fmt.Sprint(node.Kind)}
	switch {
	case node.Table != nil:
		parts = append(parts, node.Table.Name)
	case node.View != nil:
		parts = append(parts, node.View.Name)
	}
	if node.Kind == NodeColumn {
		parts = append(parts, node.Label)
	}
	return strings.Join(parts, "\x00")
}

func (m *Model) flatten() {
	m.flat = nil
	for _, node := range m.nodes {
		m.flattenNode(node)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) flattenNode(node *TreeNode) {
	m.flat = append(m.flat, node)
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child)
		}
	}
}

func (m *Model) selectionChanged() {
	m.ensureVisible()
	m.detail = detailLines(m.Selected(), theme.Current)
	m.detailOffset = 0
}

// treeHeight is the number of tree rows that fit in the left pane.
func (m Model) treeHeight() int {
	// border (2) + title (1) + status line (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) detailHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) ensureVisible() {
	visible := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *Model) clampDetail() {
	maxOffset := len(m.detail) - m.detailHeight()
	if m.detailOffset > maxOffset {
		m.detailOffset = maxOffset
	}
	if m.detailOffset < 0 {
		m.detailOffset = 0
	}
}
