// Package tui is a full-screen playback viewer for minimax and alpha-beta
// traces.
package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/shell"
)

type TUIApp struct {
	shell      *shell.ShellController
	program    *tea.Program
	logCapture *LogCapture
	logFile    *os.File
}

func NewTUIApp(cfg *config.Config) *TUIApp {
	t := &TUIApp{}
	t.initLogging(cfg.GetBool(config.ConfigDebug))

	t.shell = shell.NewHeadlessController(cfg, io.Discard)
	t.program = tea.NewProgram(newModel(cfg, t.shell, t.logCapture), tea.WithAltScreen())
	return t
}

func (t *TUIApp) Run() error {
	defer t.cleanup()
	_, err := t.program.Run()
	return err
}

func (t *TUIApp) cleanup() {
	t.shell.Cleanup()
	if t.logFile != nil {
		if err := t.logFile.Close(); err != nil {
			log.Err(err).Msg("closing-log-file")
		}
	}
}
