package shell

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/cjoudrey/gluahttp"
	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"

	"github.com/domino14/gametrace/traceio"
)

const scriptHTTPTimeout = 30 * time.Second

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("gametrace_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// command returns a lua function running the shell command name with the
// string argument appended as the rest of the line.
func command(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if lv := L.OptString(1, ""); lv != "" {
			line += " " + lv
		}
		return runLine(L, line)
	}
}

func runLine(L *lua.LState, line string) int {
	sc := getShell(L)
	out, err := sc.Run(line)
	if err != nil {
		log.Err(err).Str("line", line).Msg("error-executing-script-command")
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(out))
	// return number of results pushed to stack.
	return 1
}

func Run(L *lua.LState) int {
	return runLine(L, L.CheckString(1))
}

// Trace pushes the loaded trace as a JSON string, or nil with no trace.
func Trace(L *lua.LState) int {
	sc := getShell(L)
	res := sc.player.Result()
	if res == nil {
		L.Push(lua.LNil)
		return 1
	}
	var buf bytes.Buffer
	if err := traceio.Write(&buf, res, traceio.FormatJSON); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LString(buf.String()))
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("gametrace_shell", lsc)
	for _, name := range []string{"gen", "tree", "solve", "step", "back", "seek", "reset",
		"state", "steps", "compare", "set", "export", "import", "save", "recall"} {
		L.SetGlobal("gametrace_"+name, L.NewFunction(command(name)))
	}
	L.SetGlobal("gametrace_run", L.NewFunction(Run))
	L.SetGlobal("gametrace_trace", L.NewFunction(Trace))
	luajson.Preload(L)
	L.PreloadModule("http", gluahttp.NewHttpModule(&http.Client{Timeout: scriptHTTPTimeout}).Loader)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Str("script", filepath).Msg("script-failed")
		return nil, err
	}
	return msg("ran " + filepath), nil
}
