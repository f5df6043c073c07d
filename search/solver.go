// Package search solves a gametree with minimax or alpha-beta pruning and
// records every decision as an ordered, replayable step log.
package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/gametree"
)

// thanks Wikipedia:
/**function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth = 0 or node is a terminal node then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cut-off *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cut-off *)
        return value
**/

var ErrInvariantViolation = errors.New("invariant violation")

// Strategy is anything that can turn an unsolved tree into a Result.
type Strategy interface {
	Solve(root *gametree.Node) (*Result, error)
	// Variant names the algorithm plus any option that changes the step
	// log, so two strategies with the same Variant produce the same logs.
	Variant() string
}

// Solver implements both strategies; they share one traversal and differ
// only in whether the window is tracked and tested.
type Solver struct {
	algorithm      Algorithm
	disablePruning bool
	runningUpdates bool
	verify         bool
}

func NewSolver(alg Algorithm) *Solver {
	return &Solver{algorithm: alg}
}

// NewMinimax and NewAlphaBeta are shorthands for NewSolver.
func NewMinimax() *Solver {
	return NewSolver(Minimax)
}

func NewAlphaBeta() *Solver {
	return NewSolver(AlphaBeta)
}

func (s *Solver) Algorithm() Algorithm {
	return s.algorithm
}

func (s *Solver) Variant() string {
	v := s.algorithm.String()
	if s.algorithm == AlphaBeta && s.disablePruning {
		v += "+nopruning"
	}
	if s.algorithm == Minimax && s.runningUpdates {
		v += "+running"
	}
	return v
}

// SetPruningDisabled keeps tracking the window but never cuts off. Only
// meaningful for AlphaBeta.
func (s *Solver) SetPruningDisabled(d bool) {
	s.disablePruning = d
}

// SetRunningUpdates makes Minimax emit a max/min step after every child
// rather than once per node. AlphaBeta always emits after every child.
func (s *Solver) SetRunningUpdates(r bool) {
	s.runningUpdates = r
}

// SetVerification makes Solve check the result with Verify before
// returning it.
func (s *Solver) SetVerification(v bool) {
	s.verify = v
}

// Solve searches a deep copy of root. root itself is never modified.
func (s *Solver) Solve(root *gametree.Node) (*Result, error) {
	if s.algorithm != Minimax && s.algorithm != AlphaBeta {
		return nil, fmt.Errorf("%w: unknown algorithm %d", gametree.ErrInvalidArgument, int(s.algorithm))
	}
	if err := gametree.Validate(root); err != nil {
		return nil, err
	}
	log.Debug().Str("algorithm", s.algorithm.String()).
		Bool("pruning-disabled", s.disablePruning).
		Bool("running-updates", s.runningUpdates).
		Bool("verify", s.verify).
		Msg("solve-config")

	tstart := time.Now()
	tree := root.Copy()
	r := &run{
		bounded:  s.algorithm == AlphaBeta,
		pruning:  s.algorithm == AlphaBeta && !s.disablePruning,
		everyUpd: s.algorithm == AlphaBeta || s.runningUpdates,
	}
	value := r.search(tree, NegInfinity, Infinity)

	res := &Result{
		Algorithm: s.algorithm,
		Tree:      tree,
		Value:     value,
		Steps:     r.steps,
	}
	if s.verify {
		if err := Verify(res); err != nil {
			log.Error().Err(err).Str("algorithm", s.algorithm.String()).Msg("solve-invariant-violation")
			return nil, err
		}
	}
	log.Debug().
		Int("value", value).
		Int("steps", len(r.steps)).
		Int("evaluations", r.evaluations).
		Dur("elapsed", time.Since(tstart)).
		Msg("solve-returning")
	return res, nil
}

type run struct {
	bounded  bool
	pruning  bool
	everyUpd bool

	steps       []Step
	evaluations int
}

func (r *run) emit(st Step, alpha, beta int) {
	if r.bounded {
		st.Alpha = intp(alpha)
		st.Beta = intp(beta)
	}
	r.steps = append(r.steps, st)
}

// search resolves n and returns its value. The window is only consulted
// when r.bounded; Minimax passes it through untouched.
func (r *run) search(n *gametree.Node, α, β int) int {
	if n.IsLeaf() {
		r.evaluations++
		v := *n.Value
		r.emit(Step{Node: n.ID, Action: ActionEvaluate, Value: intp(v)}, α, β)
		return v
	}

	maximizing := n.Role == gametree.Max
	best := Infinity
	action := ActionMin
	if maximizing {
		best = NegInfinity
		action = ActionMax
	}

	for i, child := range n.Children {
		v := r.search(child, α, β)
		if maximizing {
			best = max(best, v)
			if r.bounded {
				α = max(α, best)
			}
		} else {
			best = min(best, v)
			if r.bounded {
				β = min(β, best)
			}
		}
		if r.everyUpd || i == len(n.Children)-1 {
			r.emit(Step{Node: n.ID, Action: action, Value: intp(best)}, α, β)
		}
		if r.pruning && β <= α {
			r.emit(Step{Node: n.ID, Action: ActionPrune, Message: cutoffMessage(n.Role, α, β)}, α, β)
			break
		}
	}
	n.SetValue(best)
	return best
}

func cutoffMessage(role gametree.Role, α, β int) string {
	kind := "Alpha"
	if role == gametree.Max {
		kind = "Beta"
	}
	return fmt.Sprintf("%s cutoff: %s <= %s", kind, FormatBound(β), FormatBound(α))
}
