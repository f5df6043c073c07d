package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"lukechampine.com/frand"

	"github.com/domino14/gametrace/analyzer"
	"github.com/domino14/gametrace/cache"
	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/playback"
	"github.com/domino14/gametrace/search"
	"github.com/domino14/gametrace/traceio"
)

// Trees deeper than this do not fit on a terminal.
const maxShellDepth = 8

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Int64Default(key string, defaultI int64) (int64, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.ParseInt(v[0], 10, 64)
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) rootRole(cmd *shellcmd) (gametree.Role, error) {
	if r := cmd.options.String("role"); r != "" {
		return gametree.ParseRole(r)
	}
	return gametree.ParseRole(sc.config.GetString(config.ConfigRootRole))
}

func (sc *ShellController) source(seed int64) gametree.Source {
	if seed == 0 {
		return gametree.DefaultSource()
	}
	return gametree.NewSeededSource(seed)
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	depth := sc.config.GetInt(config.ConfigDepth)
	if len(cmd.args) > 0 {
		d, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, fmt.Errorf("depth must be a number: %w", err)
		}
		depth = d
	}
	if depth > maxShellDepth {
		return nil, fmt.Errorf("depth %d is too deep to display; the maximum is %d", depth, maxShellDepth)
	}
	role, err := sc.rootRole(cmd)
	if err != nil {
		return nil, err
	}
	seed, err := cmd.options.Int64Default("seed", sc.config.GetInt64(config.ConfigSeed))
	if err != nil {
		return nil, err
	}
	tree, err := gametree.Build(depth, role, sc.source(seed))
	if err != nil {
		return nil, err
	}
	sc.setTree(tree)
	return msg(fmt.Sprintf("Generated a depth-%d tree with a %v root (%d leaves)\n%s",
		depth, role, len(tree.Leaves()), tree.ToDisplayText())), nil
}

func (sc *ShellController) treeCmd(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		if sc.tree == nil {
			return nil, errNoTree
		}
		return msg(gametree.Fingerprint(sc.tree)), nil
	}
	role, err := sc.rootRole(cmd)
	if err != nil {
		return nil, err
	}
	tree, err := gametree.Parse(strings.Join(cmd.args, ""), role)
	if err != nil {
		return nil, err
	}
	sc.setTree(tree)
	return msg(tree.ToDisplayText()), nil
}

// renderState writes the status line followed by the tree decorated with
// what the search has revealed so far.
func (sc *ShellController) renderState(st playback.State) string {
	var sb strings.Builder
	if st.Cursor < 0 {
		sb.WriteString("Tree ready; `solve` to search it")
	} else {
		fmt.Fprintf(&sb, "[%d/%d] %s", st.Cursor+1, st.Total, st.Message)
		if st.Step != nil && st.Step.HasBounds() {
			fmt.Fprintf(&sb, "  (α=%s β=%s)", search.FormatBound(*st.Step.Alpha),
				search.FormatBound(*st.Step.Beta))
		}
		if st.Done {
			sb.WriteString("\n")
			sb.WriteString(playback.Summary(sc.player.Result()))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(gametree.Display(sc.tree, st.Decorate))
	return sb.String()
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	if cmd.options.Bool("solved") {
		res := sc.player.Result()
		if res == nil {
			return nil, errNoResult
		}
		return msg(res.Tree.ToDisplayText()), nil
	}
	return msg(sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) solver(cmd *shellcmd) (*search.Solver, error) {
	name := sc.config.GetString(config.ConfigAlgorithm)
	if len(cmd.args) > 0 {
		name = cmd.args[0]
	}
	alg, err := search.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	s := search.NewSolver(alg)
	s.SetRunningUpdates(cmd.options.Bool("running"))
	s.SetPruningDisabled(cmd.options.Bool("nopruning"))
	s.SetVerification(sc.config.GetBool(config.ConfigVerify))
	return s, nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	s, err := sc.solver(cmd)
	if err != nil {
		return nil, err
	}
	res, err := cache.Solve(s, sc.tree)
	if err != nil {
		return nil, err
	}
	// A cache hit skips the solver's own check.
	if sc.config.GetBool(config.ConfigVerify) {
		if err := search.Verify(res); err != nil {
			return nil, err
		}
	}
	sc.player.Load(res)
	return msg(res.String() + "\n" + sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) steps(cmd *shellcmd) (*Response, error) {
	res := sc.player.Result()
	if res == nil {
		return nil, errNoResult
	}
	from, err := cmd.options.IntDefault("from", 1)
	if err != nil {
		return nil, err
	}
	to, err := cmd.options.IntDefault("to", res.Len())
	if err != nil {
		return nil, err
	}
	cursor := sc.player.Cursor()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, %d steps\n", res.Algorithm.DisplayName(), res.Len())
	for i := max(from, 1) - 1; i < min(to, res.Len()); i++ {
		marker := " "
		if i == cursor {
			marker = ">"
		}
		fmt.Fprintf(&sb, "%s%4d: %s\n", marker, i+1, res.Steps[i].String())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if sc.player.Result() == nil {
		return nil, errNoResult
	}
	if sc.player.Cursor() == sc.player.Len()-1 {
		return msg("Already at the last step; `reset` to watch again"), nil
	}
	sc.player.Play()
	return msg(fmt.Sprintf("Playing one step every %v; `pause` to stop",
		sc.config.GetDuration(config.ConfigPlaybackInterval))), nil
}

func (sc *ShellController) pause(cmd *shellcmd) (*Response, error) {
	sc.player.Pause()
	return msg(sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) step(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	return msg(sc.renderState(sc.player.Step())), nil
}

func (sc *ShellController) back(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	return msg(sc.renderState(sc.player.Back())), nil
}

func (sc *ShellController) reset(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	return msg(sc.renderState(sc.player.Reset())), nil
}

func (sc *ShellController) seek(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return nil, errNoTree
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: seek <step number>")
	}
	k, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	// Step numbers are shown 1-based.
	return msg(sc.renderState(sc.player.Seek(k - 1))), nil
}

func (sc *ShellController) state(cmd *shellcmd) (*Response, error) {
	if sc.tree == nil {
		return msg(sc.player.Message()), nil
	}
	return msg(sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) compare(cmd *shellcmd) (*Response, error) {
	trials, err := cmd.options.IntDefault("trials", sc.config.GetInt(config.ConfigCompareTrials))
	if err != nil {
		return nil, err
	}
	depth, err := cmd.options.IntDefault("depth", sc.config.GetInt(config.ConfigDepth))
	if err != nil {
		return nil, err
	}
	threads, err := cmd.options.IntDefault("threads", sc.config.GetInt(config.ConfigCompareThreads))
	if err != nil {
		return nil, err
	}
	seed, err := cmd.options.Int64Default("seed", sc.config.GetInt64(config.ConfigSeed))
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = int64(frand.Uint64n(1<<31)) + 1
	}
	role, err := sc.rootRole(cmd)
	if err != nil {
		return nil, err
	}
	an := analyzer.NewAnalyzer(analyzer.Options{
		Depth:    depth,
		Trials:   trials,
		Seed:     seed,
		Threads:  threads,
		RootRole: role,
	})
	report, err := an.Compare(sc.ctx)
	if err != nil {
		return nil, err
	}
	out := report.String()
	if cmd.options.Bool("hist") {
		var sb strings.Builder
		sb.WriteString(out)
		if err := report.WriteHistogram(&sb); err != nil {
			return nil, err
		}
		out = sb.String()
	}
	return msg(strings.TrimRight(out, "\n")), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("please provide a filename to save to")
	}
	res := sc.player.Result()
	if res == nil {
		return nil, errNoResult
	}
	filename := cmd.args[0]
	if err := traceio.WriteFile(filename, res); err != nil {
		return nil, err
	}
	return msg("exported to " + filename), nil
}

func (sc *ShellController) importTrace(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("please provide a filename to load from")
	}
	res, err := traceio.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.setResult(res)
	return msg(res.String() + "\n" + sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	res := sc.player.Result()
	if res == nil {
		return nil, errNoResult
	}
	st, err := sc.openHistory()
	if err != nil {
		return nil, err
	}
	id, err := st.Save(sc.ctx, strings.Join(cmd.args, " "), res)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("saved as #%d; `recall %d` to load it again", id, id)), nil
}

func (sc *ShellController) historyCmd(cmd *shellcmd) (*Response, error) {
	limit := 0
	if len(cmd.args) > 0 {
		l, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
		limit = l
	}
	st, err := sc.openHistory()
	if err != nil {
		return nil, err
	}
	entries, err := st.List(sc.ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return msg("no saved traces"), nil
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.String()
	}
	return msg(strings.Join(lines, "\n")), nil
}

func (sc *ShellController) recall(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: recall <id>")
	}
	id, err := strconv.ParseInt(cmd.args[0], 10, 64)
	if err != nil {
		return nil, err
	}
	st, err := sc.openHistory()
	if err != nil {
		return nil, err
	}
	e, err := st.Load(sc.ctx, id)
	if err != nil {
		return nil, err
	}
	sc.setResult(e.Result)
	return msg(e.Result.String() + "\n" + sc.renderState(sc.player.State())), nil
}

func (sc *ShellController) dot(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("please provide a filename for the dot output")
	}
	if sc.tree == nil {
		return nil, errNoTree
	}
	st := sc.player.State()
	if err := gametree.SaveDOT(sc.tree, st.Decorate, cmd.args[0]); err != nil {
		return nil, err
	}
	return msg("wrote " + cmd.args[0]), nil
}

// settable lists the config keys `set` may change at runtime.
var settable = []string{
	config.ConfigDepth,
	config.ConfigAlgorithm,
	config.ConfigRootRole,
	config.ConfigSeed,
	config.ConfigPlaybackInterval,
	config.ConfigVerify,
	config.ConfigCompareTrials,
	config.ConfigCompareThreads,
	config.ConfigHistoryDB,
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		keys := append([]string(nil), settable...)
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "%-18s %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", opt, sc.config.Get(opt))), nil
	}
	ret, err := sc.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	return msg("set " + opt + " to " + ret), nil
}

// Set validates and applies one setting.
func (sc *ShellController) Set(key, value string) (string, error) {
	var v any
	switch key {
	case config.ConfigDepth, config.ConfigCompareTrials, config.ConfigCompareThreads:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", err
		}
		if n < 0 || (key != config.ConfigDepth && n == 0) {
			return "", fmt.Errorf("%s must be positive", key)
		}
		v = n
	case config.ConfigSeed:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return "", err
		}
		v = n
	case config.ConfigAlgorithm:
		alg, err := search.ParseAlgorithm(value)
		if err != nil {
			return "", err
		}
		v = alg.String()
	case config.ConfigRootRole:
		r, err := gametree.ParseRole(value)
		if err != nil {
			return "", err
		}
		v = strings.ToLower(r.String())
	case config.ConfigPlaybackInterval:
		d, err := time.ParseDuration(value)
		if err != nil {
			return "", err
		}
		if d <= 0 {
			return "", errors.New("playback-interval must be positive")
		}
		sc.player.SetInterval(d)
		v = d
	case config.ConfigVerify:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", err
		}
		v = b
	case config.ConfigHistoryDB:
		if sc.history != nil {
			if err := sc.history.Close(); err != nil {
				return "", err
			}
			sc.history = nil
		}
		v = value
	default:
		return "", fmt.Errorf("%q cannot be set; settable: %s", key, strings.Join(settable, ", "))
	}
	sc.config.Set(key, v)
	return fmt.Sprint(v), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}
