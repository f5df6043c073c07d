package tui

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogCapture is an io.Writer holding the last few log events in a ring, for
// the log pane. ConsoleWriter issues one Write per event.
type LogCapture struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func NewLogCapture(size int) *LogCapture {
	return &LogCapture{lines: make([]string, size)}
}

func (lc *LogCapture) Write(p []byte) (int, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.lines) == 0 {
		return len(p), nil
	}
	lc.lines[lc.next] = string(p)
	lc.next = (lc.next + 1) % len(lc.lines)
	if lc.next == 0 {
		lc.full = true
	}
	return len(p), nil
}

// ordered returns the held events oldest first. lc.mu must be held.
func (lc *LogCapture) ordered() []string {
	if !lc.full {
		return lc.lines[:lc.next]
	}
	out := make([]string, 0, len(lc.lines))
	out = append(out, lc.lines[lc.next:]...)
	return append(out, lc.lines[:lc.next]...)
}

func (lc *LogCapture) GetMessages() string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return strings.Join(lc.ordered(), "")
}

// Tail returns the last n events.
func (lc *LogCapture) Tail(n int) string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	events := lc.ordered()
	return strings.Join(events[max(len(events)-n, 0):], "")
}

func (lc *LogCapture) Clear() {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	clear(lc.lines)
	lc.next, lc.full = 0, false
}

// initLogging sends logs to a temp file and the in-memory capture, since
// anything written to the terminal would tear the TUI.
func (t *TUIApp) initLogging(debug bool) {
	t.logCapture = NewLogCapture(1000)

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = zerolog.ConsoleWriter{Out: t.logCapture, NoColor: true, TimeFormat: "15:04:05"}
	if f, err := os.CreateTemp("", "gametrace-tui-*.log"); err == nil {
		t.logFile = f
		w = zerolog.MultiLevelWriter(f, w)
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	if t.logFile != nil {
		log.Info().Str("logfile", t.logFile.Name()).Msg("tui-logging-initialized")
	}
}
