package traceio

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
)

func solved(t *testing.T) *search.Result {
	t.Helper()
	tree, err := gametree.Parse("[[3,2],[2,7]]", gametree.Max)
	require.NoError(t, err)
	res, err := search.NewAlphaBeta().Solve(tree)
	require.NoError(t, err)
	return res
}

func TestRoundTrip(t *testing.T) {
	res := solved(t)
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, res, f))
			got, err := Read(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, res, got)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	res := solved(t)
	dir := t.TempDir()
	for _, name := range []string{"trace.json", "trace.yml", "trace.YAML"} {
		fn := filepath.Join(dir, name)
		require.NoError(t, WriteFile(fn, res))
		got, err := ReadFile(fn)
		require.NoError(t, err)
		assert.Equal(t, res.Steps, got.Steps)
		assert.Equal(t, res.Value, got.Value)
	}
}

func TestYAMLUsesNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, solved(t), FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "algorithm: alphabeta")
	assert.Contains(t, out, "player: MAX")
	assert.Contains(t, out, "action: prune")
}

func TestUnknownExtension(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "trace.txt"), solved(t))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestTamperedTraceRejected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, solved(t), FormatJSON))
	// Claim a different optimal value.
	tampered := strings.Replace(buf.String(), `"value": 2,
  "steps"`, `"value": 7,
  "steps"`, 1)
	require.NotEqual(t, buf.String(), tampered)
	_, err := Read(strings.NewReader(tampered), FormatJSON)
	assert.True(t, errors.Is(err, search.ErrInvariantViolation))
}

func TestMalformedTreeRejected(t *testing.T) {
	cases := []struct {
		name  string
		trace string
	}{
		{"nil child", `{"algorithm": "minimax", "value": 1, "steps": [],
			"tree": {"id": "root", "player": "MAX", "value": 1, "children": [null]}}`},
		{"child reuses parent id", `{"algorithm": "minimax", "value": 1,
			"steps": [{"node": "root", "action": "evaluate", "value": 1}],
			"tree": {"id": "root", "player": "MAX", "value": 1, "children": [
				{"id": "root", "player": "MIN", "value": 1, "children": []}]}}`},
		{"utility at the window bound", `{"algorithm": "minimax", "value": -2147483647,
			"steps": [{"node": "root-0", "action": "evaluate", "value": -2147483647}],
			"tree": {"id": "root", "player": "MAX", "value": -2147483647, "children": [
				{"id": "root-0", "player": "MIN", "value": -2147483647, "children": []}]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := Read(strings.NewReader(tc.trace), FormatJSON)
				done <- err
			}()
			select {
			case err := <-done:
				assert.ErrorIs(t, err, search.ErrInvariantViolation)
				assert.ErrorIs(t, err, gametree.ErrInvalidArgument)
			case <-time.After(5 * time.Second):
				t.Fatal("Read did not return")
			}
		})
	}
}

func TestReadGarbage(t *testing.T) {
	_, err := Read(strings.NewReader("{not json"), FormatJSON)
	assert.Error(t, err)
	fn := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(fn, []byte("{}"), 0o644))
	_, err = ReadFile(fn)
	assert.Error(t, err)
}
