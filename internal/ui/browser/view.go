package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ddlschema/internal/theme"
)

// View renders the browser.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	th := theme.Current

	treeW := m.width / 3
	if treeW < 24 {
		treeW = 24
	}
	if treeW > m.width-10 {
		treeW = m.width - 10
	}
	detailW := m.width - treeW

	tree := m.renderTree(treeW, th)
	detail := m.renderDetail(detailW, th)
	body := lipgloss.JoinHorizontal(lipgloss.Top, tree, detail)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus(th))
}

func (m Model) renderTree(width int, th *theme.Theme) string {
	innerW := max(width-2, 1)
	innerH := max(m.height-3, 1)

	title := " " + m.title + " "
	if m.title == "" {
		title = " Schemas "
	}
	lines := []string{th.TreeTitle.Width(innerW).Render(title)}

	if len(m.flat) == 0 {
		msg := "  No tables or views."
		if m.filter.Value() != "" {
			msg = fmt.Sprintf("  Nothing matches %q.", m.filter.Value())
		}
		lines = append(lines, "", th.MutedText.Render(msg))
	}

	end := min(m.offset+m.treeHeight(), len(m.flat))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderNode(m.flat[i], i == m.cursor, innerW, th))
	}

	return th.FocusedBorder.Width(innerW).Height(innerH).Render(strings.Join(lines, "\n"))
}

func (m Model) renderNode(node *TreeNode, selected bool, width int, th *theme.Theme) string {
	indent := strings.Repeat("  ", node.Depth)

	var icon string
	switch node.Kind {
	case NodeSchema:
		icon = "■ "
	case NodeTableGroup:
		icon = "≡ "
	case NodeTable:
		icon = "◆ "
	case NodeViewGroup:
		icon = "◎ "
	case NodeView:
		icon = "◇ "
	case NodeColumn:
		icon = "  "
	}

	expandIcon := "  "
	if len(node.Children) > 0 {
		if node.Expanded {
			expandIcon = "▼ "
		} else {
			expandIcon = "▶ "
		}
	}

	line := indent + expandIcon + icon + node.Label
	var colType string
	if node.Column != nil && node.Column.TypeName != "" {
		colType = " " + node.Column.TypeName
	}
	line = fit(line+colType, width)

	if selected {
		return th.TreeSelected.Render(line)
	}

	switch node.Kind {
	case NodeSchema, NodeTableGroup, NodeViewGroup:
		return th.TreeSchema.Render(line)
	case NodeTable:
		return th.TreeTable.Render(line)
	case NodeView:
		return th.TreeView.Render(line)
	default:
		if node.Column != nil && node.Column.IsPrimaryKey {
			return th.TreeColumn.Bold(true).Render(line)
		}
		return th.TreeColumn.Render(line)
	}
}

func (m Model) renderDetail(width int, th *theme.Theme) string {
	innerW := max(width-2, 1)
	innerH := max(m.height-3, 1)

	end := min(m.detailOffset+m.detailHeight(), len(m.detail))
	var lines []string
	if m.detailOffset < end {
		lines = m.detail[m.detailOffset:end]
	}
	return th.UnfocusedBorder.Width(innerW).Height(innerH).Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus(th *theme.Theme) string {
	switch {
	case m.filtering:
		return th.FilterPrompt.Render(m.filter.View())
	case m.err != nil:
		return th.ErrorText.Render("reload failed: " + m.err.Error())
	case m.showHelp:
		return m.help.FullHelpView(m.keys.FullHelp())
	}

	status := m.help.ShortHelpView(m.keys.ShortHelp())
	if f := m.filter.Value(); f != "" {
		status = th.StatusBarKey.Render("filter: "+f) + " " + status
	}
	return status
}

// fit truncates or pads s to exactly width runes.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}
