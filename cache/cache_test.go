package cache

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

func TestSolveMemoizes(t *testing.T) {
	is := is.New(t)
	Reset()
	tree, err := gametree.Parse("[[3,2],[2,7]]", gametree.Max)
	is.NoErr(err)

	first, err := Solve(search.NewAlphaBeta(), tree)
	is.NoErr(err)
	second, err := Solve(search.NewAlphaBeta(), tree)
	is.NoErr(err)
	is.True(first == second)

	mm, err := Solve(search.NewMinimax(), tree)
	is.NoErr(err)
	is.True(mm != first)
	is.Equal(mm.Value, first.Value)

	hits, misses := Stats()
	is.Equal(hits, 1)
	is.Equal(misses, 2)
}

func TestVariantsDoNotCollide(t *testing.T) {
	is := is.New(t)
	Reset()
	tree, err := gametree.Parse("[[3,2],[2,7]]", gametree.Max)
	is.NoErr(err)

	pruned, err := Solve(search.NewAlphaBeta(), tree)
	is.NoErr(err)
	s := search.NewAlphaBeta()
	s.SetPruningDisabled(true)
	full, err := Solve(s, tree)
	is.NoErr(err)
	is.True(full.Len() > pruned.Len())

	// Same shape with a different root role is a different tree.
	minTree, err := gametree.Parse("[[3,2],[2,7]]", gametree.Min)
	is.NoErr(err)
	other, err := Solve(search.NewAlphaBeta(), minTree)
	is.NoErr(err)
	is.True(other != pruned)
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	Reset()
	boom := errors.New("boom")
	calls := 0
	fail := func(string) (*search.Result, error) {
		calls++
		return nil, boom
	}
	_, err := Load("k", fail)
	is.True(errors.Is(err, boom))
	_, err = Load("k", fail)
	is.True(errors.Is(err, boom))
	is.Equal(calls, 2)
}

func TestFullCacheStartsOver(t *testing.T) {
	is := is.New(t)
	CreateGlobalResultCache()
	GlobalResultCache.maxEntries = 2
	defer CreateGlobalResultCache()

	for _, notation := range []string{"[1,2]", "[3,4]", "[5,6]"} {
		tree, err := gametree.Parse(notation, gametree.Max)
		is.NoErr(err)
		_, err = Solve(search.NewMinimax(), tree)
		is.NoErr(err)
	}
	GlobalResultCache.Lock()
	n := len(GlobalResultCache.objects)
	GlobalResultCache.Unlock()
	is.Equal(n, 1)

	tree, err := gametree.Parse("[1,2]", gametree.Max)
	is.NoErr(err)
	is.True(strings.HasPrefix(Key("minimax", tree), "minimax/"))
	is.True(Key("minimax", tree) != Key("alphabeta", tree))
}
