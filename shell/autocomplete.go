package shell

import (
	"strings"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/gametrace/config"
)

// ShellCompleter completes command names, their -options, and the values
// those options and settings accept.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type completion struct {
	flags []string
	args  []string
}

var commandNames = []string{
	"help", "gen", "tree", "show", "solve", "steps", "play", "pause", "step",
	"back", "reset", "seek", "state", "compare", "export", "import", "save",
	"history", "recall", "dot", "set", "script", "version", "exit",
}

var completions = map[string]completion{
	"gen":     {flags: []string{"-role", "-seed"}},
	"tree":    {flags: []string{"-role"}},
	"show":    {flags: []string{"-solved"}},
	"solve":   {flags: []string{"-running", "-nopruning"}, args: []string{"minimax", "alphabeta"}},
	"steps":   {flags: []string{"-from", "-to"}},
	"compare": {flags: []string{"-trials", "-depth", "-threads", "-seed", "-role", "-hist"}},
	"set":     {args: settable},
	"help":    {args: []string{"gen", "tree", "solve", "play", "compare", "set", "script", "history"}},
}

var (
	bools = []string{"true", "false"}
	roles = []string{"max", "min"}
)

// optionValues are the closed sets of values an -option can take.
var optionValues = map[string][]string{
	"role":      roles,
	"running":   bools,
	"nopruning": bools,
	"solved":    bools,
	"hist":      bools,
}

var settingValues = map[string][]string{
	config.ConfigAlgorithm: {"minimax", "alphabeta"},
	config.ConfigRootRole:  roles,
	config.ConfigVerify:    bools,
}

// Do implements readline.AutoCompleter. It returns the remainder of every
// candidate that extends the word under the cursor, and that word's length.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	done, partial := splitForCompletion(string(line[:pos]))
	var out [][]rune
	for _, cand := range candidates(done, partial) {
		if rest, ok := strings.CutPrefix(cand, partial); ok {
			out = append(out, []rune(rest))
		}
	}
	return out, utf8.RuneCountInString(partial)
}

// splitForCompletion separates the finished words of text from the one
// still being typed, which is "" right after a space.
func splitForCompletion(text string) ([]string, string) {
	words, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote
		words = strings.Fields(text)
	}
	if len(words) == 0 || strings.HasSuffix(text, " ") {
		return words, ""
	}
	return words[:len(words)-1], words[len(words)-1]
}

func candidates(done []string, partial string) []string {
	if len(done) == 0 {
		return commandNames
	}
	cmd, prev := done[0], done[len(done)-1]
	if len(done) > 1 && strings.HasPrefix(prev, "-") {
		// Free-form values like -seed get nothing.
		return optionValues[strings.TrimPrefix(prev, "-")]
	}
	if cmd == "set" && len(done) > 1 {
		return settingValues[done[1]]
	}
	c := completions[cmd]
	if strings.HasPrefix(partial, "-") || len(c.args) == 0 {
		return c.flags
	}
	return c.args
}
