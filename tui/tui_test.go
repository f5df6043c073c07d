package tui

import (
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/playback"
	"github.com/domino14/gametrace/search"
	"github.com/domino14/gametrace/shell"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func press(t *testing.T, m model, msg tea.KeyMsg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSolveAndStep(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	sc := shell.NewHeadlessController(cfg, io.Discard)
	defer sc.Cleanup()
	m := newModel(cfg, sc, NewLogCapture(10))

	is.True(strings.Contains(m.View(), "Generate a tree to begin"))

	m = press(t, m, runes("a"))
	is.Equal(m.algorithm, search.AlphaBeta)
	m = press(t, m, runes("s"))
	is.NoErr(m.err)
	is.True(sc.Result() != nil)
	is.Equal(sc.Playback().Cursor(), 0)
	is.True(strings.Contains(m.View(), "[1/"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	is.Equal(sc.Playback().Cursor(), 1)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	is.Equal(sc.Playback().Cursor(), 0)

	m = press(t, m, runes("e"))
	is.Equal(sc.Playback().Cursor(), sc.Playback().Len()-1)
	is.True(strings.Contains(m.View(), "Complete! Optimal value:"))
	is.True(strings.Contains(m.View(), "evaluations"))

	m = press(t, m, runes("r"))
	is.Equal(sc.Playback().Cursor(), 0)
}

func TestDepthAndSpeed(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	sc := shell.NewHeadlessController(cfg, io.Discard)
	defer sc.Cleanup()
	m := newModel(cfg, sc, nil)
	is.Equal(m.depth, 3)
	m = press(t, m, runes("d"))
	is.Equal(m.depth, 4)
	m = press(t, m, runes("d"))
	is.Equal(m.depth, 2)

	for i := 0; i < 10; i++ {
		m = press(t, m, runes("+"))
	}
	is.Equal(m.interval, minInterval)
}

func TestListenerFeedsChannel(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigPlaybackInterval, "5ms")
	sc := shell.NewHeadlessController(cfg, io.Discard)
	defer sc.Cleanup()
	m := newModel(cfg, sc, nil)
	m = press(t, m, runes("s"))
	is.NoErr(m.err)
	m = press(t, m, runes(" "))
	msg := waitForStep(m.steps)()
	st, ok := msg.(stepMsg)
	is.True(ok)
	is.True(st.Cursor >= 1)
	sc.Playback().Pause()
}

func TestRenderTree(t *testing.T) {
	is := is.New(t)
	tree, err := gametree.Parse("[[3,2],[2,7]]", gametree.Max)
	is.NoErr(err)
	res, err := search.NewAlphaBeta().Solve(tree)
	is.NoErr(err)
	out := renderTree(tree, playback.StateAt(res, 7))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	is.Equal(len(lines), tree.Size())
	is.True(strings.Contains(lines[len(lines)-1], "root-1-1 = 7"))

	branch, label := splitBranch("│   ├── leaf root-0-1 = 2")
	is.Equal(branch, "│   ├── ")
	is.Equal(label, "leaf root-0-1 = 2")
}

func TestLogCaptureTail(t *testing.T) {
	is := is.New(t)
	lc := NewLogCapture(3)
	for _, s := range []string{"a\n", "b\n", "c\n", "d\n"} {
		_, err := lc.Write([]byte(s))
		is.NoErr(err)
	}
	is.Equal(lc.GetMessages(), "b\nc\nd\n")
	is.Equal(lc.Tail(2), "c\nd\n")
	lc.Clear()
	is.Equal(lc.Tail(2), "")
}
