package gametree

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

type fixedSource struct {
	vals []int
	pos  int
}

func (f *fixedSource) Intn(n int) int {
	v := f.vals[f.pos%len(f.vals)] % n
	f.pos++
	return v
}

func TestBuildDepthZero(t *testing.T) {
	is := is.New(t)
	// Intn(21) returning 17 yields utility 7.
	root, err := Build(0, Min, &fixedSource{vals: []int{17}})
	is.NoErr(err)
	is.True(root.IsLeaf())
	is.Equal(root.ID, "root")
	is.Equal(root.Role, Min)
	is.Equal(*root.Value, 7)
}

func TestBuildNegativeDepth(t *testing.T) {
	is := is.New(t)
	_, err := Build(-1, Max, nil)
	is.True(errors.Is(err, ErrInvalidArgument))
}

func TestBuildShape(t *testing.T) {
	is := is.New(t)
	for seed := int64(0); seed < 25; seed++ {
		root, err := Build(4, Max, NewSeededSource(seed))
		is.NoErr(err)
		is.Equal(root.Depth(), 4)
		root.Walk(func(n *Node, depth int) bool {
			if depth%2 == 0 {
				is.Equal(n.Role, Max)
			} else {
				is.Equal(n.Role, Min)
			}
			if depth == 4 {
				is.True(n.IsLeaf())
				is.True(*n.Value >= MinUtility && *n.Value <= MaxUtility)
			} else {
				is.True(len(n.Children) >= MinChildren && len(n.Children) <= MaxChildren)
				is.True(n.Value == nil)
				for i, c := range n.Children {
					is.Equal(c.ID, childID(n.ID, i))
				}
			}
			return true
		})
		is.NoErr(Validate(root))
	}
}

func TestBuildDeterministic(t *testing.T) {
	is := is.New(t)
	a, err := Build(3, Max, NewSeededSource(42))
	is.NoErr(err)
	b, err := Build(3, Max, NewSeededSource(42))
	is.NoErr(err)
	is.Equal(a, b)
	is.Equal(Format(a), Format(b))

	c, err := Build(3, Max, NewSeededSource(43))
	is.NoErr(err)
	is.True(Format(a) != Format(c))
}

func TestCopyIsDeep(t *testing.T) {
	is := is.New(t)
	root, err := Parse("[[3,2],[2,7]]", Max)
	is.NoErr(err)
	cp := root.Copy()
	is.Equal(root, cp)

	cp.SetValue(99)
	*cp.Children[0].Children[0].Value = -5
	is.True(root.Value == nil)
	is.Equal(*root.Children[0].Children[0].Value, 3)
}

func TestParseAndFormat(t *testing.T) {
	is := is.New(t)
	root, err := Parse(" [ [3, -2] , [2,7,+4] ] ", Max)
	is.NoErr(err)
	is.Equal(Format(root), "[[3,-2],[2,7,4]]")
	is.Equal(Fingerprint(root), "MAX:[[3,-2],[2,7,4]]")
	is.Equal(root.Children[1].Role, Min)
	is.Equal(root.Children[1].Children[2].ID, "root-1-2")
	is.Equal(root.Children[1].Children[2].Role, Max)
	is.Equal(len(root.Leaves()), 5)
	is.Equal(root.Size(), 8)
	is.Equal(root.Find("root-0-1").ValueOr(0), -2)
	is.True(root.Find("root-9") == nil)

	leaf, err := Parse("7", Min)
	is.NoErr(err)
	is.True(leaf.IsLeaf())
	is.Equal(*leaf.Value, 7)
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	for _, bad := range []string{"", "[]", "[[1,2],[]]", "[1,2", "[1;2]", "[1,2]]", "x"} {
		_, err := Parse(bad, Max)
		is.True(errors.Is(err, ErrInvalidArgument))
	}
}

func TestValidate(t *testing.T) {
	is := is.New(t)
	is.True(errors.Is(Validate(nil), ErrInvalidArgument))

	root, err := Parse("[1,2]", Max)
	is.NoErr(err)
	root.SetValue(2)
	is.True(errors.Is(Validate(root), ErrInvalidArgument))

	dup := NewInternal("root", Max, NewLeaf("x", Min, 1), NewLeaf("x", Min, 2))
	is.True(errors.Is(Validate(dup), ErrInvalidArgument))

	unvalued := NewInternal("root", Max, &Node{ID: "root-0", Role: Min})
	is.True(errors.Is(Validate(unvalued), ErrInvalidArgument))
}

func TestCheckStructure(t *testing.T) {
	is := is.New(t)
	solved, err := Parse("[1,2]", Max)
	is.NoErr(err)
	solved.SetValue(2)
	is.NoErr(CheckStructure(solved))

	holed := NewInternal("root", Max, NewLeaf("root-0", Min, 1), nil)
	is.True(errors.Is(CheckStructure(holed), ErrInvalidArgument))
	is.True(errors.Is(Validate(holed), ErrInvalidArgument))

	selfNamed := NewInternal("root", Max, NewLeaf("root", Min, 1))
	is.True(errors.Is(CheckStructure(selfNamed), ErrInvalidArgument))

	is.True(errors.Is(CheckStructure(NewLeaf("root", Max, UtilityLimit+1)), ErrInvalidArgument))
	is.NoErr(CheckStructure(NewLeaf("root", Max, -UtilityLimit)))

	_, err = Parse("[1,-2147483647]", Max)
	is.True(errors.Is(err, ErrInvalidArgument))
	_, err = Parse("[1,2147483646]", Max)
	is.NoErr(err)
}

func TestDisplay(t *testing.T) {
	is := is.New(t)
	root, err := Parse("[[3,2],5]", Max)
	is.NoErr(err)
	expected := "MAX root = ?\n" +
		"├── MIN root-0 = ?\n" +
		"│   ├── leaf root-0-0 = 3\n" +
		"│   └── leaf root-0-1 = 2\n" +
		"└── leaf root-1 = 5\n"
	is.Equal(root.ToDisplayText(), expected)

	decorated := Display(root, func(n *Node) string {
		if n.ID == "root-1" {
			return "*"
		}
		return ""
	})
	is.True(strings.Contains(decorated, "leaf root-1 = 5  *\n"))
}

func TestDOT(t *testing.T) {
	is := is.New(t)
	root, err := Parse("[[3,2],5]", Max)
	is.NoErr(err)
	out, err := DOT(root, nil)
	is.NoErr(err)
	is.True(strings.Contains(out, "digraph gametree"))
	is.True(strings.Contains(out, `"root"->"root-0"`))
	is.True(strings.Contains(out, `"root-0"->"root-0-1"`))

	path := filepath.Join(t.TempDir(), "tree.dot")
	is.NoErr(SaveDOT(root, nil, path))
	written, err := os.ReadFile(path)
	is.NoErr(err)
	is.Equal(string(written), out)
}

func TestRoleText(t *testing.T) {
	is := is.New(t)
	var r Role
	is.NoErr(r.UnmarshalText([]byte("MIN")))
	is.Equal(r, Min)
	b, err := Max.MarshalText()
	is.NoErr(err)
	is.Equal(string(b), "MAX")
	_, err = ParseRole("both")
	is.True(errors.Is(err, ErrInvalidArgument))
	is.Equal(Min.Opposite(), Max)
}
