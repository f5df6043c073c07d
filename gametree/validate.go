package gametree

import (
	"fmt"
	"math"
)

// UtilityLimit bounds the magnitude of leaf utilities. Searches use
// ±math.MaxInt32 as their unbounded window, so every real utility has to
// compare strictly inside it.
const UtilityLimit = math.MaxInt32 - 1

// InUtilityRange reports whether v is a legal leaf utility.
func InUtilityRange(v int) bool {
	return v >= -UtilityLimit && v <= UtilityLimit
}

// CheckStructure checks what holds for every tree, solved or not: no nil
// nodes, unique IDs, known roles, and leaf utilities within UtilityLimit.
func CheckStructure(root *Node) error {
	return walkChecked(root, nil)
}

// Validate checks that root is a well-formed, unsolved tree: unique IDs,
// every leaf valued, no internal node valued yet.
func Validate(root *Node) error {
	return walkChecked(root, func(n *Node) error {
		switch {
		case n.IsLeaf() && n.Value == nil:
			return fmt.Errorf("%w: leaf %s has no value", ErrInvalidArgument, n.ID)
		case !n.IsLeaf() && n.Value != nil:
			return fmt.Errorf("%w: internal node %s is already resolved", ErrInvalidArgument, n.ID)
		}
		return nil
	})
}

// walkChecked runs the structural checks over root and, when they pass for a
// node, extra. Children are only entered once they are known to be non-nil.
func walkChecked(root *Node, extra func(*Node) error) error {
	if root == nil {
		return fmt.Errorf("%w: nil tree", ErrInvalidArgument)
	}
	seen := make(map[string]struct{})
	var err error
	root.Walk(func(n *Node, _ int) bool {
		if err != nil {
			return false
		}
		if _, ok := seen[n.ID]; ok {
			err = fmt.Errorf("%w: duplicate node id %q", ErrInvalidArgument, n.ID)
			return false
		}
		seen[n.ID] = struct{}{}
		switch {
		case n.Role != Max && n.Role != Min:
			err = fmt.Errorf("%w: node %s has unknown role %d", ErrInvalidArgument, n.ID, n.Role)
		case n.IsLeaf() && n.Value != nil && !InUtilityRange(*n.Value):
			err = fmt.Errorf("%w: leaf %s utility %d outside ±%d", ErrInvalidArgument, n.ID, *n.Value, UtilityLimit)
		case extra != nil:
			err = extra(n)
		}
		if err != nil {
			return false
		}
		for _, c := range n.Children {
			if c == nil {
				err = fmt.Errorf("%w: node %s has a nil child", ErrInvalidArgument, n.ID)
				return false
			}
		}
		return true
	})
	return err
}
