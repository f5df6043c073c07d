package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func solve(t *testing.T, notation string, s *search.Solver) *search.Result {
	t.Helper()
	tree, err := gametree.Parse(notation, gametree.Max)
	require.NoError(t, err)
	res, err := s.Solve(tree)
	require.NoError(t, err)
	return res
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	st, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close()

	res := solve(t, "[[3,2],[2,7]]", search.NewAlphaBeta())
	id, err := st.Save(ctx, "lecture", res)
	require.NoError(t, err)

	e, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "lecture", e.Label)
	assert.Equal(t, search.AlphaBeta, e.Algorithm)
	assert.Equal(t, 2, e.Value)
	assert.Equal(t, res.Len(), e.Steps)
	assert.Equal(t, "MAX:[[3,2],[2,7]]", e.Tree)
	assert.Equal(t, res, e.Result)
	assert.NoError(t, search.Verify(e.Result))
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	var ids []int64
	for _, s := range []*search.Solver{search.NewMinimax(), search.NewAlphaBeta(), search.NewMinimax()} {
		id, err := st.Save(ctx, "", solve(t, "[3,5]", s))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	entries, err := st.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[2], entries[0].ID)
	assert.Equal(t, ids[1], entries[1].ID)
	assert.Nil(t, entries[0].Result)
	assert.Contains(t, entries[1].String(), "alphabeta")
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Load(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(st.Delete(ctx, 42), ErrNotFound))

	id, err := st.Save(ctx, "x", solve(t, "[1]", search.NewMinimax()))
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, id))
	_, err = st.Load(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.Save(ctx, "nil", nil)
	assert.True(t, errors.Is(err, gametree.ErrInvalidArgument))
}

func TestLoadVerifiesPayload(t *testing.T) {
	ctx := context.Background()
	st, err := Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	id, err := st.Save(ctx, "", solve(t, "[3,5]", search.NewMinimax()))
	require.NoError(t, err)
	payload := `{"algorithm": "minimax", "value": 5, "steps": [],
		"tree": {"id": "root", "player": "MAX", "value": 5, "children": [null]}}`
	_, err = st.db.ExecContext(ctx, `UPDATE traces SET payload = ? WHERE id = ?`, payload, id)
	require.NoError(t, err)

	_, err = st.Load(ctx, id)
	assert.ErrorIs(t, err, search.ErrInvariantViolation)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, isBusy(errors.New("no such table: traces")))
}
