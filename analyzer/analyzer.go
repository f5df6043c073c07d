// Package analyzer measures how much alpha-beta pruning saves over plain
// minimax across many seeded trees.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/gametrace/gametree"
	"github.com/domino14/gametrace/search"
	"github.com/domino14/gametrace/stats"
)

const (
	DefaultConfidence = 95.0
	histogramBins     = 10
	histogramWidth    = 40
)

type Options struct {
	Depth    int
	Trials   int
	Seed     int64
	Threads  int
	RootRole gametree.Role
}

// TrialResult is the outcome of solving one seeded tree both ways.
type TrialResult struct {
	Seed           int64 `json:"seed"`
	MinimaxValue   int   `json:"minimax_value"`
	AlphaBetaValue int   `json:"alphabeta_value"`
	MinimaxEvals   int   `json:"minimax_evals"`
	AlphaBetaEvals int   `json:"alphabeta_evals"`
	MinimaxSteps   int   `json:"minimax_steps"`
	AlphaBetaSteps int   `json:"alphabeta_steps"`
	Prunes         int   `json:"prunes"`
}

func (t TrialResult) Agrees() bool {
	return t.MinimaxValue == t.AlphaBetaValue
}

// Reduction is the fraction of leaf evaluations alpha-beta avoided.
func (t TrialResult) Reduction() float64 {
	if t.MinimaxEvals == 0 {
		return 0
	}
	return 1 - float64(t.AlphaBetaEvals)/float64(t.MinimaxEvals)
}

type Report struct {
	Options    Options
	Trials     []TrialResult
	Agreements int

	MinimaxEvals   stats.Statistic
	AlphaBetaEvals stats.Statistic
	Reduction      stats.Statistic
}

type Analyzer struct {
	options Options
}

func NewAnalyzer(options Options) *Analyzer {
	if options.Threads <= 0 {
		options.Threads = runtime.NumCPU()
	}
	return &Analyzer{options: options}
}

// Compare builds Trials trees from consecutive seeds and solves each with
// both strategies. Trial results are kept in seed order whatever the
// scheduling.
func (an *Analyzer) Compare(ctx context.Context) (*Report, error) {
	opts := an.options
	if opts.Trials <= 0 {
		return nil, fmt.Errorf("%w: trials must be positive, got %d", gametree.ErrInvalidArgument, opts.Trials)
	}
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: negative depth %d", gametree.ErrInvalidArgument, opts.Depth)
	}
	log.Debug().Int("depth", opts.Depth).Int("trials", opts.Trials).
		Int64("seed", opts.Seed).Int("threads", opts.Threads).Msg("compare-config")

	tstart := time.Now()
	results := make([]TrialResult, opts.Trials)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Threads)
	for i := range results {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tr, err := runTrial(opts.Depth, opts.RootRole, opts.Seed+int64(i))
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Options: opts, Trials: results}
	for _, tr := range results {
		if tr.Agrees() {
			report.Agreements++
		} else {
			log.Error().Int64("seed", tr.Seed).Int("minimax", tr.MinimaxValue).
				Int("alphabeta", tr.AlphaBetaValue).Msg("value-disagreement")
		}
		report.MinimaxEvals.Push(float64(tr.MinimaxEvals))
		report.AlphaBetaEvals.Push(float64(tr.AlphaBetaEvals))
		report.Reduction.Push(tr.Reduction())
	}
	log.Info().Int("trials", opts.Trials).
		Int("agreements", report.Agreements).
		Float64("mean-reduction", report.Reduction.Mean()).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Msg("compare-returning")
	return report, nil
}

func runTrial(depth int, role gametree.Role, seed int64) (TrialResult, error) {
	tree, err := gametree.Build(depth, role, gametree.NewSeededSource(seed))
	if err != nil {
		return TrialResult{}, err
	}
	mm, err := search.NewMinimax().Solve(tree)
	if err != nil {
		return TrialResult{}, err
	}
	ab, err := search.NewAlphaBeta().Solve(tree)
	if err != nil {
		return TrialResult{}, err
	}
	return TrialResult{
		Seed:           seed,
		MinimaxValue:   mm.Value,
		AlphaBetaValue: ab.Value,
		MinimaxEvals:   mm.Count(search.ActionEvaluate),
		AlphaBetaEvals: ab.Count(search.ActionEvaluate),
		MinimaxSteps:   mm.Len(),
		AlphaBetaSteps: ab.Len(),
		Prunes:         ab.Count(search.ActionPrune),
	}, nil
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Trees: %d (depth %d, root %v, seeds %d..%d)\n",
		len(r.Trials), r.Options.Depth, r.Options.RootRole,
		r.Options.Seed, r.Options.Seed+int64(len(r.Trials))-1)
	fmt.Fprintf(&sb, "Value agreement: %d/%d\n", r.Agreements, len(r.Trials))
	fmt.Fprintf(&sb, "%-20s %s\n", "Minimax evals:", r.MinimaxEvals.String())
	fmt.Fprintf(&sb, "%-20s %s\n", "Alpha-Beta evals:", r.AlphaBetaEvals.String())
	fmt.Fprintf(&sb, "%-20s %.1f%% ± %.1f%% (%v%% CI)\n", "Evals saved:",
		100*r.Reduction.Mean(), 100*r.Reduction.ConfidenceInterval(DefaultConfidence),
		DefaultConfidence)
	return sb.String()
}

// Histogram buckets the per-trial share of evaluations saved, in percent.
func (r *Report) Histogram() histogram.Histogram {
	saved := make([]float64, len(r.Trials))
	for i, tr := range r.Trials {
		saved[i] = 100 * tr.Reduction()
	}
	return histogram.Hist(histogramBins, saved)
}

// WriteHistogram draws Histogram as a text bar chart.
func (r *Report) WriteHistogram(w io.Writer) error {
	if len(r.Trials) == 0 {
		return nil
	}
	fmt.Fprintln(w, "Evals saved per tree (%):")
	return histogram.Fprint(w, r.Histogram(), histogram.Linear(histogramWidth))
}
