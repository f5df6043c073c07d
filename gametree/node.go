// Package gametree holds the synthetic two-player game tree that the search
// engine solves: the node model, a random builder, a compact notation for
// hand-built trees, and text/graphviz renderings.
package gametree

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Role says whose turn it is to choose among a node's children.
type Role int8

const (
	Max Role = iota
	Min
)

func (r Role) String() string {
	switch r {
	case Max:
		return "MAX"
	case Min:
		return "MIN"
	}
	return "Role(" + strconv.Itoa(int(r)) + ")"
}

// Opposite returns the role of the player moving next.
func (r Role) Opposite() Role {
	if r == Max {
		return Min
	}
	return Max
}

func (r Role) MarshalText() ([]byte, error) {
	if r != Max && r != Min {
		return nil, fmt.Errorf("%w: unknown role %d", ErrInvalidArgument, r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	role, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = role
	return nil
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "MAX", "max", "Max":
		return Max, nil
	case "MIN", "min", "Min":
		return Min, nil
	}
	return Max, fmt.Errorf("%w: role must be max or min, got %q", ErrInvalidArgument, s)
}

// Node is a single game-tree position. A node is a leaf iff it has no
// children. Leaves carry their utility from creation; internal nodes have a
// nil Value until a search resolves them.
type Node struct {
	ID       string  `json:"id" yaml:"id"`
	Role     Role    `json:"player" yaml:"player"`
	Value    *int    `json:"value" yaml:"value"`
	Children []*Node `json:"children" yaml:"children"`
}

// NewLeaf creates a leaf with a fixed utility.
func NewLeaf(id string, role Role, value int) *Node {
	return &Node{ID: id, Role: role, Value: &value, Children: []*Node{}}
}

// NewInternal creates an unresolved internal node.
func NewInternal(id string, role Role, children ...*Node) *Node {
	return &Node{ID: id, Role: role, Children: children}
}

func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Resolved reports whether the node has a value.
func (n *Node) Resolved() bool {
	return n.Value != nil
}

// ValueOr returns the node's value, or def if it has none.
func (n *Node) ValueOr(def int) int {
	if n.Value == nil {
		return def
	}
	return *n.Value
}

// SetValue writes the node's value. The int is copied so two nodes never
// share storage.
func (n *Node) SetValue(v int) {
	n.Value = &v
}

// Copy returns a deep copy of the subtree rooted at n.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:       n.ID,
		Role:     n.Role,
		Children: make([]*Node, len(n.Children)),
	}
	if n.Value != nil {
		c.SetValue(*n.Value)
	}
	for i, child := range n.Children {
		c.Children[i] = child.Copy()
	}
	return c
}

// Unsolved returns a deep copy with every internal value cleared, ready to be
// searched again.
func (n *Node) Unsolved() *Node {
	c := n.Copy()
	c.Walk(func(d *Node, _ int) bool {
		if !d.IsLeaf() {
			d.Value = nil
		}
		return true
	})
	return c
}

// Walk visits the subtree in pre-order, left to right. Returning false from
// fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.ID == id {
			found = node
			return false
		}
		return true
	})
	return found
}

// Leaves returns the leaves in left-to-right order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// Depth is the length of the longest root-to-leaf path.
func (n *Node) Depth() int {
	d := 0
	n.Walk(func(_ *Node, depth int) bool {
		if depth > d {
			d = depth
		}
		return true
	})
	return d
}

// Size is the total number of nodes.
func (n *Node) Size() int {
	sz := 0
	n.Walk(func(*Node, int) bool {
		sz++
		return true
	})
	return sz
}

func (n *Node) String() string {
	v := "?"
	if n.Value != nil {
		v = strconv.Itoa(*n.Value)
	}
	return fmt.Sprintf("<node %s %v val: %s children: %d>", n.ID, n.Role, v, len(n.Children))
}

func childID(parent string, idx int) string {
	return parent + "-" + strconv.Itoa(idx)
}
