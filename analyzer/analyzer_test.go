package analyzer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/gametrace/gametree"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

func TestCompare(t *testing.T) {
	is := is.New(t)
	an := NewAnalyzer(Options{Depth: 3, Trials: 50, Seed: 100, Threads: 4, RootRole: gametree.Max})
	report, err := an.Compare(context.Background())
	is.NoErr(err)
	is.Equal(len(report.Trials), 50)
	is.Equal(report.Agreements, 50)
	for i, tr := range report.Trials {
		is.Equal(tr.Seed, int64(100+i))
		is.True(tr.AlphaBetaEvals <= tr.MinimaxEvals)
		is.True(tr.Reduction() >= 0)
	}
	is.True(report.AlphaBetaEvals.Mean() <= report.MinimaxEvals.Mean())
	is.True(strings.Contains(report.String(), "Value agreement: 50/50"))
}

func TestCompareDeterministic(t *testing.T) {
	is := is.New(t)
	opts := Options{Depth: 2, Trials: 20, Seed: 5, RootRole: gametree.Min}
	a, err := NewAnalyzer(opts).Compare(context.Background())
	is.NoErr(err)
	opts.Threads = 1
	b, err := NewAnalyzer(opts).Compare(context.Background())
	is.NoErr(err)
	is.Equal(a.Trials, b.Trials)
}

func TestCompareInvalid(t *testing.T) {
	is := is.New(t)
	_, err := NewAnalyzer(Options{Depth: 2}).Compare(context.Background())
	is.True(errors.Is(err, gametree.ErrInvalidArgument))
	_, err = NewAnalyzer(Options{Depth: -1, Trials: 1}).Compare(context.Background())
	is.True(errors.Is(err, gametree.ErrInvalidArgument))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewAnalyzer(Options{Depth: 1, Trials: 3}).Compare(ctx)
	is.True(errors.Is(err, context.Canceled))
}

func TestHistogram(t *testing.T) {
	is := is.New(t)
	report, err := NewAnalyzer(Options{Depth: 3, Trials: 30, Seed: 9, Threads: 2}).
		Compare(context.Background())
	is.NoErr(err)
	h := report.Histogram()
	is.Equal(h.Count, 30)
	total := 0
	for _, b := range h.Buckets {
		total += b.Count
	}
	is.Equal(total, 30)

	var buf bytes.Buffer
	is.NoErr(report.WriteHistogram(&buf))
	is.True(strings.HasPrefix(buf.String(), "Evals saved per tree (%):"))
}
