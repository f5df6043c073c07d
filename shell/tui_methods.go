package shell

import (
	"strconv"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/playback"
	"github.com/domino14/gametrace/search"
)

// Accessors for the TUI, which drives the same controller without a
// readline instance.

func (sc *ShellController) Tree() *gametree.Node {
	return sc.tree
}

func (sc *ShellController) Playback() *playback.Controller {
	return sc.player
}

func (sc *ShellController) Result() *search.Result {
	return sc.player.Result()
}

// SetPlaybackListener replaces the listener that prints each step. The TUI
// uses it to turn steps into redraws.
func (sc *ShellController) SetPlaybackListener(fn func(playback.State)) {
	sc.player.SetListener(fn)
}

func (sc *ShellController) Generate(depth int) error {
	_, err := sc.generate(&shellcmd{args: []string{strconv.Itoa(depth)}, options: CmdOptions{}})
	return err
}

func (sc *ShellController) Solve(alg search.Algorithm) error {
	_, err := sc.solve(&shellcmd{args: []string{alg.String()}, options: CmdOptions{}})
	return err
}

// Render is what `show` prints, or "" with no tree.
func (sc *ShellController) Render() string {
	if sc.tree == nil {
		return ""
	}
	return sc.renderState(sc.player.State())
}
