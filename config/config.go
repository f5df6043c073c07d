// Package config loads gametrace settings from defaults, GAMETRACE_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug            = "debug"
	ConfigDepth            = "depth"
	ConfigAlgorithm        = "algorithm"
	ConfigRootRole         = "root-role"
	ConfigSeed             = "seed"
	ConfigPlaybackInterval = "playback-interval"
	ConfigHistoryDB        = "history-db"
	ConfigCompareTrials    = "compare-trials"
	ConfigCompareThreads   = "compare-threads"
	ConfigVerify           = "verify"
	ConfigCPUProfile       = "cpu-profile"
	ConfigMemProfile       = "mem-profile"
)

const envPrefix = "GAMETRACE"

type Config struct {
	viper.Viper
}

// DefaultConfig returns a config holding only defaults. Tests use it
// directly.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigDepth, 3)
	c.SetDefault(ConfigAlgorithm, "minimax")
	c.SetDefault(ConfigRootRole, "max")
	c.SetDefault(ConfigSeed, int64(0))
	c.SetDefault(ConfigPlaybackInterval, 700*time.Millisecond)
	c.SetDefault(ConfigHistoryDB, "./gametrace-history.db")
	c.SetDefault(ConfigCompareTrials, 200)
	c.SetDefault(ConfigCompareThreads, runtime.NumCPU())
	c.SetDefault(ConfigVerify, false)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
}

// Load parses args as flags and binds them along with the environment.
// Unknown flags are an error. Positional arguments are left in Args.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("gametrace", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigDepth, 3, "depth of generated trees")
	fs.String(ConfigAlgorithm, "minimax", "search algorithm: minimax or alphabeta")
	fs.String(ConfigRootRole, "max", "role of the root node: max or min")
	fs.Int64(ConfigSeed, 0, "seed for tree generation; 0 picks a random tree each time")
	fs.Duration(ConfigPlaybackInterval, 700*time.Millisecond, "time between steps during playback")
	fs.String(ConfigHistoryDB, "./gametrace-history.db", "path of the sqlite solve history")
	fs.Int(ConfigCompareTrials, 200, "number of trees in a comparison run")
	fs.Int(ConfigCompareThreads, runtime.NumCPU(), "worker goroutines for comparisons")
	fs.Bool(ConfigVerify, false, "check every solve against the search invariants")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	c.Set("args", fs.Args())
	return nil
}

// Args are the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.GetStringSlice("args")
}

// SanitizedSettings returns all settings for logging. Nothing in this config
// is secret, but profiles paths are dropped when unset to keep the line short.
func (c *Config) SanitizedSettings() map[string]any {
	all := c.AllSettings()
	for _, k := range []string{ConfigCPUProfile, ConfigMemProfile} {
		if s, ok := all[k].(string); ok && s == "" {
			delete(all, k)
		}
	}
	delete(all, "args")
	return all
}
