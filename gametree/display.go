package gametree

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// Decorator returns extra text to show beside a node. It may return "".
type Decorator func(n *Node) string

// ToDisplayText renders the tree with box-drawing connectors, one node per
// line.
func (n *Node) ToDisplayText() string {
	return Display(n, nil)
}

func Display(root *Node, decorate Decorator) string {
	var sb strings.Builder
	displayNode(&sb, root, "", "", decorate)
	return sb.String()
}

func displayNode(sb *strings.Builder, n *Node, prefix, childPrefix string, decorate Decorator) {
	sb.WriteString(prefix)
	sb.WriteString(nodeLabel(n))
	if decorate != nil {
		if extra := decorate(n); extra != "" {
			sb.WriteString("  ")
			sb.WriteString(extra)
		}
	}
	sb.WriteByte('\n')
	for i, c := range n.Children {
		if i == len(n.Children)-1 {
			displayNode(sb, c, childPrefix+"└── ", childPrefix+"    ", decorate)
		} else {
			displayNode(sb, c, childPrefix+"├── ", childPrefix+"│   ", decorate)
		}
	}
}

func nodeLabel(n *Node) string {
	v := "?"
	if n.Value != nil {
		v = strconv.Itoa(*n.Value)
	}
	kind := n.Role.String()
	if n.IsLeaf() {
		kind = "leaf"
	}
	return fmt.Sprintf("%s %s = %s", kind, n.ID, v)
}

// DOT builds a graphviz digraph of the tree. Decorations are appended to
// node labels.
func DOT(root *Node, decorate Decorator) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("gametree"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	var err error
	root.Walk(func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		label := nodeLabel(n)
		if decorate != nil {
			if extra := decorate(n); extra != "" {
				label += `\n` + extra
			}
		}
		attrs := map[string]string{
			"label": dotQuote(label),
			"shape": dotShape(n),
		}
		if err = g.AddNode("gametree", dotQuote(n.ID), attrs); err != nil {
			return false
		}
		for _, c := range n.Children {
			if err = g.AddEdge(dotQuote(n.ID), dotQuote(c.ID), true, nil); err != nil {
				return false
			}
		}
		return true
	})
	if err != nil {
		return "", err
	}
	return g.String(), nil
}

// dotQuote wraps s in double quotes without escaping, so `\n` stays a
// graphviz line break. IDs and labels never contain quotes.
func dotQuote(s string) string {
	return `"` + s + `"`
}

func dotShape(n *Node) string {
	switch {
	case n.IsLeaf():
		return "box"
	case n.Role == Max:
		return "triangle"
	}
	return "invtriangle"
}

// SaveDOT writes the digraph for root to outFile.
func SaveDOT(root *Node, decorate Decorator, outFile string) error {
	out, err := DOT(root, decorate)
	if err != nil {
		return err
	}
	return os.WriteFile(outFile, []byte(out), 0644)
}
