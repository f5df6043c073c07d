// Package playback turns a solved step log into a sequence of renderable
// states and drives the cursor through it on a timer.
package playback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

// State is everything a renderer needs at one cursor position. It is
// derived from the step log and never stored.
type State struct {
	Cursor    int
	Total     int
	Evaluated map[string]int
	Pruned    map[string]bool
	// Skipped holds nodes under a cutoff seen so far: children of a pruned
	// node that the search never visited, and their descendants.
	Skipped map[string]bool
	Current string
	Step    *search.Step
	Message string
	Done    bool
}

// StateAt folds steps[0..cursor] of res in order. A cursor out of range is
// clamped; a nil or empty result gives the empty state with cursor -1.
func StateAt(res *search.Result, cursor int) State {
	st := State{
		Cursor:    -1,
		Evaluated: map[string]int{},
		Pruned:    map[string]bool{},
		Skipped:   map[string]bool{},
	}
	if res == nil || len(res.Steps) == 0 {
		return st
	}
	st.Total = len(res.Steps)
	cursor = clamp(cursor, 0, len(res.Steps)-1)
	st.Cursor = cursor

	for _, step := range res.Steps[:cursor+1] {
		switch step.Action {
		case search.ActionEvaluate, search.ActionMax, search.ActionMin:
			if step.Value != nil {
				st.Evaluated[step.Node] = *step.Value
			}
		case search.ActionPrune:
			st.Pruned[step.Node] = true
		}
	}
	if len(st.Pruned) > 0 && res.Tree != nil {
		markSkipped(res.Tree, res.Steps[:cursor+1], &st)
	}

	step := res.Steps[cursor]
	st.Step = &step
	st.Current = step.Node
	st.Message = Describe(step)
	st.Done = cursor == len(res.Steps)-1
	return st
}

// markSkipped marks every child of a pruned node that has no step in the
// folded prefix, along with its descendants. A node's visited children all
// precede its prune step.
func markSkipped(tree *gametree.Node, folded []search.Step, st *State) {
	visited := lo.SliceToMap(folded, func(s search.Step) (string, bool) {
		return s.Node, true
	})
	tree.Walk(func(n *gametree.Node, _ int) bool {
		if !st.Pruned[n.ID] {
			return true
		}
		for _, c := range n.Children {
			if visited[c.ID] {
				continue
			}
			c.Walk(func(d *gametree.Node, _ int) bool {
				st.Skipped[d.ID] = true
				return true
			})
		}
		return true
	})
}

// EvaluatedIDs returns the evaluated node IDs, sorted.
func (s State) EvaluatedIDs() []string {
	ids := lo.Keys(s.Evaluated)
	sort.Strings(ids)
	return ids
}

// Decorate annotates a node for gametree.Display using this state.
func (s State) Decorate(n *gametree.Node) string {
	out := ""
	if v, ok := s.Evaluated[n.ID]; ok && !n.IsLeaf() {
		out = fmt.Sprintf("[%d]", v)
	} else if ok {
		out = "[eval]"
	}
	if s.Pruned[n.ID] {
		out += " ✂"
	}
	if s.Skipped[n.ID] {
		out += " (pruned)"
	}
	if n.ID == s.Current {
		out += " ◀"
	}
	return strings.TrimSpace(out)
}

// Describe is the status-line text for a step.
func Describe(step search.Step) string {
	v := 0
	if step.Value != nil {
		v = *step.Value
	}
	switch step.Action {
	case search.ActionEvaluate:
		return fmt.Sprintf("Evaluating leaf: %d", v)
	case search.ActionMax:
		return fmt.Sprintf("MAX chooses: %d", v)
	case search.ActionMin:
		return fmt.Sprintf("MIN chooses: %d", v)
	case search.ActionPrune:
		return "Pruning: " + step.Message
	}
	return string(step.Action)
}

// Summary is the status-line text once playback has finished.
func Summary(res *search.Result) string {
	return fmt.Sprintf("Complete! Optimal value: %d", res.Value)
}

func clamp(v, low, high int) int {
	return max(low, min(v, high))
}
