package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/playback"
	"github.com/domino14/gametrace/search"
	"github.com/domino14/gametrace/shell"
)

const (
	minInterval = 50 * time.Millisecond
	maxInterval = 5 * time.Second
)

type model struct {
	keys keyMap
	help help.Model

	config *config.Config
	shell  *shell.ShellController
	steps  chan playback.State
	logs   *LogCapture

	algorithm search.Algorithm
	depth     int
	interval  time.Duration
	showLogs  bool
	width     int
	err       error // some displayed error
}

type keyMap struct {
	Gen       key.Binding
	Depth     key.Binding
	Algorithm key.Binding
	Solve     key.Binding
	Play      key.Binding
	Step      key.Binding
	Back      key.Binding
	Reset     key.Binding
	End       key.Binding
	Faster    key.Binding
	Slower    key.Binding
	Logs      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Gen, k.Solve, k.Play, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Gen, k.Depth, k.Algorithm, k.Solve},
		{k.Play, k.Step, k.Back, k.Reset, k.End},
		{k.Faster, k.Slower, k.Logs, k.Help, k.Quit},
	}
}

var keys = keyMap{
	Gen: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "generate tree"),
	),
	Depth: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "cycle depth 2-4"),
	),
	Algorithm: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle algorithm"),
	),
	Solve: key.NewBinding(
		key.WithKeys("s", "enter"),
		key.WithHelp("s", "solve"),
	),
	Play: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "play/pause"),
	),
	Step: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "step forward"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "step back"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r", "home"),
		key.WithHelp("r", "reset"),
	),
	End: key.NewBinding(
		key.WithKeys("e", "end"),
		key.WithHelp("e", "jump to end"),
	),
	Faster: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "faster"),
	),
	Slower: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "slower"),
	),
	Logs: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "toggle log"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func newModel(cfg *config.Config, sc *shell.ShellController, logs *LogCapture) model {
	alg, err := search.ParseAlgorithm(cfg.GetString(config.ConfigAlgorithm))
	m := model{
		keys:      keys,
		help:      help.New(),
		config:    cfg,
		shell:     sc,
		steps:     make(chan playback.State, 16),
		logs:      logs,
		algorithm: alg,
		depth:     min(max(cfg.GetInt(config.ConfigDepth), 2), 4),
		interval:  cfg.GetDuration(config.ConfigPlaybackInterval),
		err:       err,
	}
	steps := m.steps
	sc.SetPlaybackListener(func(st playback.State) {
		// Drop the redraw rather than block the ticker; the next one
		// renders the latest state anyway.
		select {
		case steps <- st:
		default:
		}
	})
	return m
}

type stepMsg playback.State

func waitForStep(steps chan playback.State) tea.Cmd {
	return func() tea.Msg {
		return stepMsg(<-steps)
	}
}

func (m model) Init() tea.Cmd {
	return waitForStep(m.steps)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case stepMsg:
		return m, waitForStep(m.steps)

	case tea.KeyMsg:
		m.err = nil
		pb := m.shell.Playback()
		switch {
		case key.Matches(msg, m.keys.Quit):
			pb.Pause()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Logs):
			m.showLogs = !m.showLogs
		case key.Matches(msg, m.keys.Gen):
			m.err = m.shell.Generate(m.depth)
		case key.Matches(msg, m.keys.Depth):
			m.depth = m.depth%4 + 1
			if m.depth < 2 {
				m.depth = 2
			}
		case key.Matches(msg, m.keys.Algorithm):
			if m.algorithm == search.Minimax {
				m.algorithm = search.AlphaBeta
			} else {
				m.algorithm = search.Minimax
			}
		case key.Matches(msg, m.keys.Solve):
			if m.shell.Tree() == nil {
				m.err = m.shell.Generate(m.depth)
			}
			if m.err == nil {
				m.err = m.shell.Solve(m.algorithm)
			}
		case key.Matches(msg, m.keys.Play):
			if pb.IsPlaying() {
				pb.Pause()
			} else {
				pb.Play()
			}
		case key.Matches(msg, m.keys.Step):
			pb.Step()
		case key.Matches(msg, m.keys.Back):
			pb.Back()
		case key.Matches(msg, m.keys.Reset):
			pb.Reset()
		case key.Matches(msg, m.keys.End):
			pb.Seek(pb.Len() - 1)
		case key.Matches(msg, m.keys.Faster):
			m.setInterval(m.interval / 2)
		case key.Matches(msg, m.keys.Slower):
			m.setInterval(m.interval * 2)
		}
	}
	return m, nil
}

func (m *model) setInterval(d time.Duration) {
	m.interval = min(max(d, minInterval), maxInterval)
	m.shell.Playback().SetInterval(m.interval)
}

func (m model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("gametrace"))
	sb.WriteString("  ")
	sb.WriteString(fmt.Sprintf("%s · depth %d · %v per step",
		m.algorithm.DisplayName(), m.depth, m.interval))
	if m.shell.Playback().IsPlaying() {
		sb.WriteString("  " + playingStyle.Render("▶ playing"))
	}
	sb.WriteString("\n\n")

	pb := m.shell.Playback()
	tree := m.shell.Tree()
	switch {
	case tree == nil:
		sb.WriteString(statusStyle.Render(pb.Message()))
		sb.WriteString("\n")
	default:
		st := pb.State()
		sb.WriteString(statusStyle.Render(statusLine(st, pb)))
		sb.WriteString("\n\n")
		sb.WriteString(renderTree(tree, st))
		if res := pb.Result(); res != nil && st.Done {
			sb.WriteString("\n")
			sb.WriteString(statsLine(res))
			sb.WriteString("\n")
		}
	}

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	if m.showLogs && m.logs != nil {
		sb.WriteString("\n")
		sb.WriteString(logStyle.Render(strings.TrimRight(m.logs.Tail(8), "\n")))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func statusLine(st playback.State, pb *playback.Controller) string {
	if st.Cursor < 0 {
		return "Press s to solve"
	}
	line := fmt.Sprintf("[%d/%d] %s", st.Cursor+1, st.Total, st.Message)
	if st.Step != nil && st.Step.HasBounds() {
		line += fmt.Sprintf("   α=%s β=%s", search.FormatBound(*st.Step.Alpha),
			search.FormatBound(*st.Step.Beta))
	}
	if st.Done {
		line += "   " + pb.Summary()
	}
	return line
}

func statsLine(res *search.Result) string {
	s := res.Stats()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("evaluations", s.Evaluations),
		statBox("updates", s.Updates),
		statBox("prunes", s.Prunes),
		statBox("unvisited", s.Unvisited),
		statBox("steps", s.Total),
	)
}

func statBox(label string, n int) string {
	return statBoxStyle.Render(fmt.Sprintf("%d\n%s", n, label))
}
