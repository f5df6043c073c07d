package search

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/gametrace/gametree"
)

// Algorithm identifies the strategy that produced a result.
type Algorithm int

const (
	Minimax Algorithm = iota
	AlphaBeta
)

func (a Algorithm) String() string {
	switch a {
	case Minimax:
		return "minimax"
	case AlphaBeta:
		return "alphabeta"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// DisplayName is the human-readable strategy name.
func (a Algorithm) DisplayName() string {
	switch a {
	case Minimax:
		return "Standard Minimax"
	case AlphaBeta:
		return "Alpha-Beta Pruning"
	}
	return a.String()
}

func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimax", "mm":
		return Minimax, nil
	case "alphabeta", "alpha-beta", "ab":
		return AlphaBeta, nil
	}
	return Minimax, fmt.Errorf("%w: algorithm must be \"minimax\" or \"alphabeta\", got %q",
		gametree.ErrInvalidArgument, s)
}

func (a Algorithm) MarshalText() ([]byte, error) {
	if a != Minimax && a != AlphaBeta {
		return nil, fmt.Errorf("%w: unknown algorithm %d", gametree.ErrInvalidArgument, int(a))
	}
	return []byte(a.String()), nil
}

func (a *Algorithm) UnmarshalText(b []byte) error {
	alg, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

// Result is the output of one solve: the resolved tree copy, the root's
// value, and the ordered step log. It must not be modified once returned.
type Result struct {
	Algorithm Algorithm      `json:"algorithm" yaml:"algorithm"`
	Tree      *gametree.Node `json:"tree" yaml:"tree"`
	Value     int            `json:"value" yaml:"value"`
	Steps     []Step         `json:"steps" yaml:"steps"`
}

// Len is the number of steps in the log.
func (r *Result) Len() int {
	return len(r.Steps)
}

// Count returns how many steps have the given action.
func (r *Result) Count(action Action) int {
	return lo.CountBy(r.Steps, func(s Step) bool {
		return s.Action == action
	})
}

// StepsFor returns the steps that concern node id, in log order.
func (r *Result) StepsFor(id string) []Step {
	return lo.Filter(r.Steps, func(s Step, _ int) bool {
		return s.Node == id
	})
}

// Unvisited returns the IDs of nodes the search never reached, in
// pre-order. It is empty unless a cutoff occurred.
func (r *Result) Unvisited() []string {
	visited := lo.SliceToMap(r.Steps, func(s Step) (string, struct{}) {
		return s.Node, struct{}{}
	})
	var ids []string
	r.Tree.Walk(func(n *gametree.Node, _ int) bool {
		if _, ok := visited[n.ID]; !ok {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

type Stats struct {
	Evaluations int
	Updates     int
	Prunes      int
	Total       int
	Unvisited   int
}

func (r *Result) Stats() Stats {
	return Stats{
		Evaluations: r.Count(ActionEvaluate),
		Updates:     r.Count(ActionMax) + r.Count(ActionMin),
		Prunes:      r.Count(ActionPrune),
		Total:       r.Len(),
		Unvisited:   len(r.Unvisited()),
	}
}

func (r *Result) String() string {
	st := r.Stats()
	return fmt.Sprintf("%s: value %d, %d steps (%d evaluations, %d prunes)",
		r.Algorithm.DisplayName(), r.Value, st.Total, st.Evaluations, st.Prunes)
}
