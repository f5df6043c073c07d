package config

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetInt(ConfigDepth), 3)
	is.Equal(c.GetString(ConfigAlgorithm), "minimax")
	is.Equal(c.GetString(ConfigRootRole), "max")
	is.Equal(c.GetDuration(ConfigPlaybackInterval), 700*time.Millisecond)
	is.Equal(c.GetInt(ConfigCompareTrials), 200)
	is.True(!c.GetBool(ConfigDebug))
}

func TestFlagsOverrideEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("GAMETRACE_DEPTH", "2")
	t.Setenv("GAMETRACE_PLAYBACK_INTERVAL", "250ms")
	t.Setenv("GAMETRACE_ALGORITHM", "alphabeta")

	c := &Config{}
	is.NoErr(c.Load([]string{"--algorithm", "minimax", "--seed", "42", "solve"}))
	is.Equal(c.GetInt(ConfigDepth), 2)
	is.Equal(c.GetDuration(ConfigPlaybackInterval), 250*time.Millisecond)
	is.Equal(c.GetString(ConfigAlgorithm), "minimax")
	is.Equal(c.GetInt64(ConfigSeed), int64(42))
	is.Equal(c.Args(), []string{"solve"})
}

func TestBadFlag(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.True(c.Load([]string{"--no-such-flag"}) != nil)
}

func TestSanitizedSettings(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load(nil))
	s := c.SanitizedSettings()
	_, ok := s[ConfigCPUProfile]
	is.True(!ok)
	_, ok = s["args"]
	is.True(!ok)
	is.Equal(s[ConfigRootRole], "max")
}
