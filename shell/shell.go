package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/playback"
	"github.com/domino14/gametrace/search"
	"github.com/domino14/gametrace/store"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoTree            = errors.New("please generate a tree first with the `gen` or `tree` command")
	errNoResult          = errors.New("please solve the tree first with the `solve` command")
)

type ShellController struct {
	l          *readline.Instance
	config     *config.Config
	writer     io.Writer
	gitVersion string

	tree    *gametree.Node
	player  *playback.Controller
	history *store.Store
	ctx     context.Context
	cancel  context.CancelFunc
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, gitVersion string) *ShellController {
	prompt := "gametrace"
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31m" + prompt + ">\033[0m ",
		HistoryFile:     "/tmp/gametrace_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stderr())
	sc.l = l
	sc.gitVersion = gitVersion
	l.Config.AutoComplete = NewShellCompleter(sc)
	return sc
}

// NewHeadlessController runs commands without a terminal; output goes to w.
// The TUI and tests use it.
func NewHeadlessController(cfg *config.Config, w io.Writer) *ShellController {
	return newController(cfg, w)
}

func newController(cfg *config.Config, w io.Writer) *ShellController {
	ctx, cancel := context.WithCancel(context.Background())
	sc := &ShellController{
		config: cfg,
		writer: w,
		player: playback.NewController(nil, cfg.GetDuration(config.ConfigPlaybackInterval)),
		ctx:    ctx,
		cancel: cancel,
	}
	sc.player.SetListener(sc.onPlaybackStep)
	return sc
}

func (sc *ShellController) onPlaybackStep(st playback.State) {
	line := fmt.Sprintf("[%d/%d] %s", st.Cursor+1, st.Total, st.Message)
	if st.Done {
		line += "\n" + sc.player.Summary()
	}
	sc.showMessage(line)
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.writer)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a command line into the command, its positional
// arguments and its -option value pairs. Options may repeat.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		// A negative number is an argument, not an option.
		if strings.HasPrefix(f, "-") && len(f) > 1 && !isNumber(f) {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			opt := f[1:]
			idx++
			options[opt] = append(options[opt], fields[idx])
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.dispatch(sig, line); err != nil {
		sc.showError(err)
	}
}

// Run executes one command line and returns its output message instead of
// printing it.
func (sc *ShellController) Run(line string) (string, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return "", err
	}
	resp, err := sc.standardModeSwitch(cmd, nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", nil
	}
	return resp.message, nil
}

func (sc *ShellController) dispatch(sig chan os.Signal, line string) error {
	cmd, err := extractFields(line)
	if err != nil {
		if errors.Is(err, errNoData) {
			return nil
		}
		return err
	}
	resp, err := sc.standardModeSwitch(cmd, sig)
	if err != nil {
		return err
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) standardModeSwitch(cmd *shellcmd, sig chan os.Signal) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye", "quit":
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, nil
	case "help":
		return sc.help(cmd)
	case "version":
		return msg("gametrace " + sc.gitVersion), nil
	case "gen":
		return sc.generate(cmd)
	case "tree":
		return sc.treeCmd(cmd)
	case "show":
		return sc.show(cmd)
	case "solve":
		return sc.solve(cmd)
	case "steps":
		return sc.steps(cmd)
	case "play":
		return sc.play(cmd)
	case "pause":
		return sc.pause(cmd)
	case "step", "n":
		return sc.step(cmd)
	case "back", "p":
		return sc.back(cmd)
	case "reset":
		return sc.reset(cmd)
	case "seek":
		return sc.seek(cmd)
	case "state", "s":
		return sc.state(cmd)
	case "compare":
		return sc.compare(cmd)
	case "export":
		return sc.export(cmd)
	case "import":
		return sc.importTrace(cmd)
	case "save":
		return sc.save(cmd)
	case "history":
		return sc.historyCmd(cmd)
	case "recall":
		return sc.recall(cmd)
	case "dot":
		return sc.dot(cmd)
	case "set":
		return sc.set(cmd)
	case "script":
		return sc.script(cmd)
	}
	log.Debug().Msgf("you said: %v", strconv.Quote(cmd.cmd))
	return nil, fmt.Errorf("unknown command %q; type `help` for a list", cmd.cmd)
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.dispatch(sig, line); err != nil {
			sc.showError(err)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops any playback or comparison and closes the history db.
func (sc *ShellController) Cleanup() {
	sc.player.Pause()
	sc.cancel()
	if sc.history != nil {
		if err := sc.history.Close(); err != nil {
			log.Err(err).Msg("closing-history-db")
		}
	}
}

// openHistory opens the history db on first use so that a shell session that
// never saves never creates the file.
func (sc *ShellController) openHistory() (*store.Store, error) {
	if sc.history != nil {
		return sc.history, nil
	}
	st, err := store.Open(sc.config.GetString(config.ConfigHistoryDB))
	if err != nil {
		return nil, err
	}
	sc.history = st
	return st, nil
}

func (sc *ShellController) setTree(tree *gametree.Node) {
	sc.tree = tree
	sc.player.Load(nil)
}

// setResult loads res for playback. The current tree becomes the unsolved
// form of res.Tree so it can be solved again.
func (sc *ShellController) setResult(res *search.Result) {
	sc.tree = res.Tree.Unsolved()
	sc.player.Load(res)
}
