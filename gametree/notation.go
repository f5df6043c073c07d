package gametree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a tree written in nested-list notation: a leaf is a signed
// integer and an internal node is a bracketed, comma-separated list of
// children, e.g. "[[3,2],[2,7]]". IDs are assigned by path from "root" and
// roles alternate starting with rootRole.
func Parse(s string, rootRole Role) (*Node, error) {
	p := &parser{src: s}
	n, err := p.node(RootID, rootRole)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return n, nil
}

// Format writes n in the notation Parse accepts. Unresolved leaves are
// written as "?".
func Format(n *Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

// Fingerprint identifies a tree's shape, root role and leaf utilities.
func Fingerprint(n *Node) string {
	return n.Role.String() + ":" + Format(n)
}

func format(sb *strings.Builder, n *Node) {
	if n.IsLeaf() {
		if n.Value == nil {
			sb.WriteByte('?')
			return
		}
		sb.WriteString(strconv.Itoa(*n.Value))
		return
	}
	sb.WriteByte('[')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(',')
		}
		format(sb, c)
	}
	sb.WriteByte(']')
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: position %d: %s", ErrInvalidArgument, p.pos,
		fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) node(id string, role Role) (*Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	if p.src[p.pos] != '[' {
		v, err := p.integer()
		if err != nil {
			return nil, err
		}
		return NewLeaf(id, role, v), nil
	}
	p.pos++
	var children []*Node
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ']' {
			if len(children) == 0 {
				return nil, p.errorf("internal node %s declares no children", id)
			}
			p.pos++
			return NewInternal(id, role, children...), nil
		}
		if len(children) > 0 {
			if p.pos >= len(p.src) || p.src[p.pos] != ',' {
				return nil, p.errorf("expected ',' or ']'")
			}
			p.pos++
		}
		child, err := p.node(childID(id, len(children)), role.Opposite())
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
}

func (p *parser) integer() (int, error) {
	start := p.pos
	if p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	v, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		p.pos = start
		return 0, p.errorf("expected an integer or '['")
	}
	if !InUtilityRange(v) {
		p.pos = start
		return 0, p.errorf("utility %d outside ±%d", v, UtilityLimit)
	}
	return v, nil
}
