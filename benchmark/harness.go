package benchmark

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/powerindex"
	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/quorum"
	"github.com/p2p-research-tools/fbas-reward-distributor/distributor"
)

// Config carries the sweep parameters shared by the performance and accuracy
// harnesses.
type Config struct {
	// Topology selects the synthetic generator.
	Topology Topology

	// MaxTopTierSize is the largest top tier swept.
	MaxTopTierSize int

	// Runs is the number of repetitions per top-tier size.
	Runs int

	// Jobs caps the number of measurement tasks running concurrently.
	// Values below 1 select one per CPU. Each task computes
	// single-threaded so durations stay comparable.
	Jobs int

	// SkipIntersectionCheck forwards the suppression flag to the ranking.
	SkipIntersectionCheck bool

	// Seed pins the sampling sub-seeds of the accuracy sweep. When nil,
	// every estimate draws a fresh seed.
	Seed *uint64

	// MaxExponent bounds the accuracy sweep sample counts at
	// 10^MaxExponent.
	MaxExponent int

	// ShowProgress renders a progress bar on stderr.
	ShowProgress bool
}

func (c Config) validate() error {
	if _, err := ParseTopology(string(c.Topology)); err != nil {
		return err
	}
	if c.MaxTopTierSize < 1 {
		return fmt.Errorf("max top tier size must be positive, got %d", c.MaxTopTierSize)
	}
	if c.MaxTopTierSize > 63 {
		return fmt.Errorf("max top tier size %d exceeds the exact enumeration limit of 63", c.MaxTopTierSize)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be positive, got %d", c.Runs)
	}
	return nil
}

func (c Config) jobs() int {
	if c.Jobs < 1 {
		return runtime.NumCPU()
	}
	return c.Jobs
}

// task identifies one measurement by its CSV resume key.
type task struct {
	size int
	run  int
}

// missingTasks lists every (size, run) pair of the sweep that has no
// existing result yet, in sweep order.
func (c Config) missingTasks(have map[task]bool) []task {
	var tasks []task
	for _, size := range c.Topology.SweepSizes(c.MaxTopTierSize) {
		for run := 0; run < c.Runs; run++ {
			if tk := (task{size: size, run: run}); !have[tk] {
				tasks = append(tasks, tk)
			}
		}
	}
	return tasks
}

// PerfResult is one timed measurement of the exact ranking pipeline.
type PerfResult struct {
	Size    int
	Run     int
	Seconds float64
}

// AccuracyResult is one approximation-error measurement.
type AccuracyResult struct {
	Size                   int
	Run                    int
	Samples                uint64
	MeanAbsError           float64
	MedianAbsError         float64
	MeanAbsPercentageError float64
}

// RunPerformance times the exact power-index ranking once per missing
// (size, run) pair and merges the new measurements with the existing ones,
// sorted by size then run. Existing rows are kept verbatim and never
// recomputed.
func RunPerformance(log zerolog.Logger, cfg Config, existing []PerfResult) ([]PerfResult, error) {
	log = log.With().Str("component", "benchmark").Logger()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	have := make(map[task]bool, len(existing))
	for _, r := range existing {
		have[task{size: r.Size, run: r.Run}] = true
	}
	tasks := cfg.missingTasks(have)
	log.Info().
		Str("topology", string(cfg.Topology)).
		Int("tasks", len(tasks)).
		Int("kept", len(existing)).
		Msg("starting performance sweep")

	results := make([]PerfResult, len(tasks))
	errs := make([]error, len(tasks))
	bar := newProgressBar(len(tasks), cfg.ShowProgress)
	pool := workerpool.New(cfg.jobs())
	for i, tk := range tasks {
		i, tk := i, tk
		pool.Submit(func() {
			defer func() { _ = bar.Add(1) }()
			seconds, err := timeExactRanking(log, cfg, tk)
			if err != nil {
				errs[i] = fmt.Errorf("size %d run %d: %w", tk.size, tk.run, err)
				return
			}
			results[i] = PerfResult{Size: tk.size, Run: tk.run, Seconds: seconds}
			LogMemoryUsage(log)
		})
	}
	pool.StopWait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := append(append([]PerfResult{}, existing...), results...)
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Size != merged[j].Size {
			return merged[i].Size < merged[j].Size
		}
		return merged[i].Run < merged[j].Run
	})
	return merged, nil
}

func timeExactRanking(log zerolog.Logger, cfg Config, tk task) (float64, error) {
	f, err := cfg.Topology.Generate(tk.size)
	if err != nil {
		return 0, err
	}
	started := time.Now()
	if _, err := distributor.Rank(log, f, distributor.Config{
		Algorithm:             distributor.PowerIndexEnum,
		SkipIntersectionCheck: cfg.SkipIntersectionCheck,
		Workers:               1,
	}); err != nil {
		return 0, err
	}
	seconds := time.Since(started).Seconds()
	log.Debug().
		Int("top_tier_size", tk.size).
		Int("run", tk.run).
		Float64("duration", seconds).
		Msg("performance sample recorded")
	return seconds, nil
}

// RunAccuracy measures, for every missing (size, run) pair, the deviation of
// the sampled indices from the exact ones at sample counts 10^1 up to
// 10^MaxExponent. Existing rows are kept verbatim; a (size, run) key with any
// existing rows is not recomputed.
func RunAccuracy(log zerolog.Logger, cfg Config, existing []AccuracyResult) ([]AccuracyResult, error) {
	log = log.With().Str("component", "benchmark").Logger()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxExponent < 1 {
		return nil, fmt.Errorf("max exponent must be positive, got %d", cfg.MaxExponent)
	}

	have := make(map[task]bool, len(existing))
	for _, r := range existing {
		have[task{size: r.Size, run: r.Run}] = true
	}
	tasks := cfg.missingTasks(have)
	log.Info().
		Str("topology", string(cfg.Topology)).
		Int("tasks", len(tasks)).
		Int("kept_rows", len(existing)).
		Msg("starting accuracy sweep")

	results := make([][]AccuracyResult, len(tasks))
	errs := make([]error, len(tasks))
	bar := newProgressBar(len(tasks), cfg.ShowProgress)
	pool := workerpool.New(cfg.jobs())
	for i, tk := range tasks {
		i, tk := i, tk
		pool.Submit(func() {
			defer func() { _ = bar.Add(1) }()
			rows, err := measureAccuracy(log, cfg, tk)
			if err != nil {
				errs[i] = fmt.Errorf("size %d run %d: %w", tk.size, tk.run, err)
				return
			}
			results[i] = rows
			LogMemoryUsage(log)
		})
	}
	pool.StopWait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := append([]AccuracyResult{}, existing...)
	for _, rows := range results {
		merged = append(merged, rows...)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		if a.Run != b.Run {
			return a.Run < b.Run
		}
		return a.Samples < b.Samples
	})
	return merged, nil
}

func measureAccuracy(log zerolog.Logger, cfg Config, tk task) ([]AccuracyResult, error) {
	f, err := cfg.Topology.Generate(tk.size)
	if err != nil {
		return nil, err
	}
	analyzer := quorum.NewAnalyzer(log, f, quorum.WithWorkers(1))
	topTier := analyzer.TopTier()
	exact, err := powerindex.ExactIndices(log, f, topTier, 1)
	if err != nil {
		return nil, err
	}

	members := topTier.Members()
	rows := make([]AccuracyResult, 0, cfg.MaxExponent)
	samples := uint64(1)
	for exponent := 1; exponent <= cfg.MaxExponent; exponent++ {
		samples *= 10
		estimate, err := powerindex.ApproxIndices(log, f, powerindex.ApproxConfig{
			Samples: samples,
			Seed:    cfg.subSeed(tk, samples),
			Workers: 1,
		})
		if err != nil {
			return nil, err
		}
		errStats, err := ErrorStats(exact, estimate.Indices, members)
		if err != nil {
			return nil, err
		}
		rows = append(rows, AccuracyResult{
			Size:                   tk.size,
			Run:                    tk.run,
			Samples:                samples,
			MeanAbsError:           errStats.MeanAbsError,
			MedianAbsError:         errStats.MedianAbsError,
			MeanAbsPercentageError: errStats.MeanAbsPercentageError,
		})
	}
	return rows, nil
}

// subSeed derives a distinct deterministic sampling seed per measurement, so
// estimates at different sample counts are independent draws rather than
// prefixes of one stream.
func (c Config) subSeed(tk task, samples uint64) *uint64 {
	if c.Seed == nil {
		return nil
	}
	seed := *c.Seed ^ uint64(tk.size)<<32 ^ uint64(tk.run)<<16 ^ samples
	return &seed
}

func newProgressBar(total int, show bool) *progressbar.ProgressBar {
	if show {
		return progressbar.Default(int64(total), "measuring")
	}
	return progressbar.DefaultSilent(int64(total))
}
