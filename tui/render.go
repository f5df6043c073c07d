package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/playback"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle  = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	logStyle     = lipgloss.NewStyle().Faint(true).
			Border(lipgloss.NormalBorder()).Padding(0, 1)
	statBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).Align(lipgloss.Center).Width(13)

	maxStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	minStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	leafStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	evalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	currentStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	skippedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	cutStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// renderTree draws the tree as the shell does, colouring each line by the
// node it shows.
func renderTree(tree *gametree.Node, st playback.State) string {
	var styles []lipgloss.Style
	tree.Walk(func(n *gametree.Node, _ int) bool {
		styles = append(styles, nodeStyle(n, st))
		return true
	})
	lines := strings.Split(strings.TrimRight(gametree.Display(tree, st.Decorate), "\n"), "\n")
	var sb strings.Builder
	for i, line := range lines {
		// Display writes one line per node in pre-order, the same order
		// as Walk. Connectors are left unstyled.
		branch, label := splitBranch(line)
		sb.WriteString(branch)
		if i < len(styles) {
			label = styles[i].Render(label)
		}
		sb.WriteString(label)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func nodeStyle(n *gametree.Node, st playback.State) lipgloss.Style {
	switch {
	case n.ID == st.Current:
		return currentStyle
	case st.Skipped[n.ID]:
		return skippedStyle
	case st.Pruned[n.ID]:
		return cutStyle
	}
	if _, ok := st.Evaluated[n.ID]; ok && n.IsLeaf() {
		return evalStyle
	}
	switch {
	case n.IsLeaf():
		return leafStyle
	case n.Role == gametree.Max:
		return maxStyle
	}
	return minStyle
}

// splitBranch separates the box-drawing prefix from the node label.
func splitBranch(line string) (string, string) {
	i := strings.IndexFunc(line, func(r rune) bool {
		return !strings.ContainsRune("│├└─ ", r)
	})
	if i < 0 {
		return line, ""
	}
	return line[:i], line[i:]
}
