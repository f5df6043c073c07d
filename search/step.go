package search

import (
	"fmt"
	"math"
	"strconv"
)

// Action is the kind of decision a step records.
type Action string

const (
	ActionEvaluate Action = "evaluate"
	ActionMax      Action = "max"
	ActionMin      Action = "min"
	ActionPrune    Action = "prune"
)

const (
	// Infinity stands in for an unbounded alpha/beta. Leaf utilities are
	// held within ±gametree.UtilityLimit, so no reachable value collides
	// with it.
	Infinity    = math.MaxInt32
	NegInfinity = -Infinity
)

// Step is one entry in the step log.
type Step struct {
	Node    string `json:"node" yaml:"node"`
	Action  Action `json:"action" yaml:"action"`
	Value   *int   `json:"value,omitempty" yaml:"value,omitempty"`
	Alpha   *int   `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Beta    *int   `json:"beta,omitempty" yaml:"beta,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// HasBounds reports whether the step carries an alpha-beta window.
func (s Step) HasBounds() bool {
	return s.Alpha != nil && s.Beta != nil
}

func (s Step) String() string {
	str := fmt.Sprintf("%-8s %s", s.Action, s.Node)
	if s.Value != nil {
		str += fmt.Sprintf(" val=%d", *s.Value)
	}
	if s.HasBounds() {
		str += fmt.Sprintf(" α=%s β=%s", FormatBound(*s.Alpha), FormatBound(*s.Beta))
	}
	if s.Message != "" {
		str += " (" + s.Message + ")"
	}
	return str
}

// FormatBound prints an alpha/beta value, showing the sentinels as infinity.
func FormatBound(v int) string {
	switch {
	case v >= Infinity:
		return "+∞"
	case v <= NegInfinity:
		return "-∞"
	}
	return strconv.Itoa(v)
}

func intp(v int) *int {
	return &v
}
