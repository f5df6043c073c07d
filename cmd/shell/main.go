package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/gametrace/config"
	"github.com/domino14/gametrace/shell"
)

var (
	GitVersion string
)

//go:embed gametrace.txt
var banner string

func initLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
}

// startCPUProfile returns the function that stops it. An empty path is a
// no-op.
func startCPUProfile(path string) func() {
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		panic("could not create CPU profile: " + err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		panic("could not start CPU profile: " + err.Error())
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func writeMemProfile(path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		panic("could not create memory profile: " + err.Error())
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		panic("could not write memory profile: " + err.Error())
	}
	log.Info().Str("path", path).Msg("wrote-memory-profile")
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// Positional args run as a single command, e.g.
	// `shell compare -trials 500`, without the banner.
	line := strings.TrimSpace(shellquote.Join(cfg.Args()...))
	if line == "" {
		fmt.Println(banner)
		fmt.Println(GitVersion)
	}

	initLogging(cfg.GetBool(config.ConfigDebug))
	log.Debug().Interface("config", cfg.SanitizedSettings()).Msg("loaded-config")
	stopCPUProfile := startCPUProfile(cfg.GetString(config.ConfigCPUProfile))

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("got quit signal...")
		close(done)
	}()

	sc := shell.NewShellController(cfg, GitVersion)
	if line == "" {
		go sc.Loop(sig)
	} else {
		sc.Execute(sig, line)
		select {
		case sig <- syscall.SIGINT:
		default:
			// `exit` already queued one
		}
	}
	<-done

	stopCPUProfile()
	writeMemProfile(cfg.GetString(config.ConfigMemProfile))
	sc.Cleanup()
	log.Info().Msg("gracefully shutting down")
}
