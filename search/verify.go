package search

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/domino14/gametrace/gametree"
)

// Verify checks that res is a faithful record of a search over res.Tree.
// Every violation found is reported; each one wraps ErrInvariantViolation.
func Verify(res *Result) error {
	if res == nil || res.Tree == nil {
		return fmt.Errorf("%w: empty result", ErrInvariantViolation)
	}
	// The walks below assume non-nil children and unique IDs.
	if err := gametree.CheckStructure(res.Tree); err != nil {
		return fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	var errs *multierror.Error
	violation := func(format string, args ...any) {
		errs = multierror.Append(errs, fmt.Errorf("%w: "+format,
			append([]any{ErrInvariantViolation}, args...)...))
	}

	nodes := make(map[string]*gametree.Node)
	parents := make(map[string]string)
	res.Tree.Walk(func(n *gametree.Node, _ int) bool {
		nodes[n.ID] = n
		for _, c := range n.Children {
			parents[c.ID] = n.ID
		}
		return true
	})

	root := res.Tree
	if !root.Resolved() {
		violation("root %s is unresolved", root.ID)
	} else if *root.Value != res.Value {
		violation("root value %d does not match result value %d", *root.Value, res.Value)
	}

	visited := make(map[string]bool)
	pruned := make(map[string]bool)
	evaluations := make(map[string]int)
	lastUpdate := make(map[string]int)
	for i, st := range res.Steps {
		n, ok := nodes[st.Node]
		if !ok {
			violation("step %d references unknown node %q", i, st.Node)
			continue
		}
		for id := st.Node; id != ""; id = parents[id] {
			if pruned[id] {
				violation("step %d on %s follows the cutoff at %s", i, st.Node, id)
				break
			}
		}
		visited[st.Node] = true
		switch st.Action {
		case ActionEvaluate:
			if !n.IsLeaf() {
				violation("step %d evaluates internal node %s", i, n.ID)
			} else if !n.Resolved() {
				violation("step %d evaluates leaf %s which has no utility", i, n.ID)
			} else if st.Value == nil || *st.Value != *n.Value {
				violation("step %d reports a value for leaf %s other than its utility", i, n.ID)
			}
			evaluations[n.ID]++
		case ActionMax, ActionMin:
			want := ActionMin
			if n.Role == gametree.Max {
				want = ActionMax
			}
			if n.IsLeaf() || st.Action != want {
				violation("step %d: %s on %s node %s", i, st.Action, n.Role, n.ID)
			}
			if st.Value == nil {
				violation("step %d: %s on %s carries no value", i, st.Action, n.ID)
			} else {
				lastUpdate[n.ID] = *st.Value
			}
		case ActionPrune:
			if n.IsLeaf() {
				violation("step %d prunes leaf %s", i, n.ID)
			}
			if st.Value != nil {
				violation("step %d: prune on %s carries a value", i, n.ID)
			}
			pruned[n.ID] = true
		default:
			violation("step %d has unknown action %q", i, st.Action)
		}
	}

	leavesVisited := 0
	root.Walk(func(n *gametree.Node, _ int) bool {
		if !visited[n.ID] {
			if !n.IsLeaf() && n.Resolved() {
				violation("unvisited node %s is resolved", n.ID)
			}
			for _, id := range visitedBelow(n, visited) {
				violation("node %s visited under unvisited %s", id, n.ID)
			}
			return false
		}
		if n.IsLeaf() {
			leavesVisited++
			if !n.Resolved() {
				violation("leaf %s has no utility", n.ID)
			}
			if evaluations[n.ID] != 1 {
				violation("leaf %s evaluated %d times", n.ID, evaluations[n.ID])
			}
			return true
		}
		verifyInternal(n, visited, pruned[n.ID], lastUpdate, violation)
		return true
	})

	total := 0
	for _, c := range evaluations {
		total += c
	}
	if total != leavesVisited {
		violation("%d evaluate steps for %d visited leaves", total, leavesVisited)
	}
	return errs.ErrorOrNil()
}

func verifyInternal(n *gametree.Node, visited map[string]bool, pruned bool,
	lastUpdate map[string]int, violation func(string, ...any)) {

	if !n.Resolved() {
		violation("visited internal node %s is unresolved", n.ID)
		return
	}
	k := 0
	for k < len(n.Children) && visited[n.Children[k].ID] {
		k++
	}
	if k == 0 {
		violation("internal node %s resolved without visiting a child", n.ID)
		return
	}
	if k < len(n.Children) && !pruned {
		violation("internal node %s resolved with %d of %d children and no cutoff",
			n.ID, k, len(n.Children))
	}

	for _, c := range n.Children[:k] {
		if !c.Resolved() {
			// reported when the walk reaches c
			return
		}
	}
	best := *n.Children[0].Value
	for _, c := range n.Children[1:k] {
		if n.Role == gametree.Max {
			best = max(best, *c.Value)
		} else {
			best = min(best, *c.Value)
		}
	}
	if *n.Value != best {
		violation("node %s resolved to %d, children give %d", n.ID, *n.Value, best)
	}
	if v, ok := lastUpdate[n.ID]; ok && v != *n.Value {
		violation("node %s last reported %d but resolved to %d", n.ID, v, *n.Value)
	}
}

// visitedBelow lists visited nodes strictly under n.
func visitedBelow(n *gametree.Node, visited map[string]bool) []string {
	var ids []string
	for _, c := range n.Children {
		c.Walk(func(d *gametree.Node, _ int) bool {
			if visited[d.ID] {
				ids = append(ids, d.ID)
			}
			return true
		})
	}
	return ids
}
