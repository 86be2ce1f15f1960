package powerindex

import (
	"fmt"
	"runtime"
	"time"

	"github.com/onflow/flow-go/crypto/random"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
	"github.com/p2p-research-tools/fbas-reward-distributor/utils/rand"
)

// ApproxConfig parameterizes the Monte Carlo estimation of the power index.
type ApproxConfig struct {
	// Samples is the number of random node orderings to draw. Required.
	Samples uint64

	// Seed pins the sampling seed for reproducible runs. When nil, a fresh
	// seed is drawn from the system entropy source and reported in the
	// result.
	Seed *uint64

	// Workers caps the number of concurrent sampling goroutines. Values
	// below 1 select one goroutine per CPU.
	Workers int
}

// ApproxResult holds the estimated indices together with the seed that
// produced them.
type ApproxResult struct {
	// Indices has one entry per node of the FBAS and sums to 1, except when
	// the system has no quorum at all, in which case all entries are 0.
	Indices []float64

	// Samples is the number of orderings that were drawn.
	Samples uint64

	// Seed is the sampling seed that was used. Rerunning with this seed and
	// the same sample count reproduces the estimate exactly, for any worker
	// count.
	Seed uint64
}

// ApproxIndices estimates the Shapley-Shubik index of every node by sampling
// random orderings of all nodes. For each ordering, nodes join one by one and
// the node whose arrival first gives the growing coalition a quorum is
// pivotal; a node's estimated index is its pivot frequency.
func ApproxIndices(log zerolog.Logger, f *fbas.Fbas, cfg ApproxConfig) (*ApproxResult, error) {
	log = log.With().Str("component", "power_index_approx").Logger()
	if cfg.Samples == 0 {
		return nil, fmt.Errorf("sample count must be positive")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		fresh, err := rand.Uint64()
		if err != nil {
			return nil, fmt.Errorf("could not draw sampling seed: %w", err)
		}
		seed = fresh
		log.Info().Uint64("seed", seed).Msg("drew fresh sampling seed")
	}

	n := f.NumNodes()
	if n == 0 {
		return &ApproxResult{Indices: []float64{}, Samples: cfg.Samples, Seed: seed}, nil
	}

	started := time.Now()
	batches := (cfg.Samples + batchSize - 1) / batchSize
	jobs := make(chan uint64, batches)
	for batch := uint64(0); batch < batches; batch++ {
		jobs <- batch
	}
	close(jobs)

	var g errgroup.Group
	partials := make(chan []uint64, workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			partial := make([]uint64, n)
			scratch := fbas.NewCoalition(n)
			for batch := range jobs {
				prg, err := prgForBatch(seed, batch)
				if err != nil {
					return err
				}
				count := uint64(batchSize)
				if remaining := cfg.Samples - batch*batchSize; remaining < count {
					count = remaining
				}
				if err := samplePivots(f, prg, count, scratch, partial); err != nil {
					return err
				}
			}
			partials <- partial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sampling failed: %w", err)
	}
	close(partials)

	counts := make([]uint64, n)
	for partial := range partials {
		for i, c := range partial {
			counts[i] += c
		}
	}

	// Whenever the system has a quorum, every ordering has exactly one
	// pivot, so the divisor equals the sample count.
	var pivots uint64
	for _, c := range counts {
		pivots += c
	}
	indices := make([]float64, n)
	if pivots > 0 {
		for i, c := range counts {
			indices[i] = float64(c) / float64(pivots)
		}
	}

	log.Debug().
		Uint64("samples", cfg.Samples).
		Uint64("seed", seed).
		Int("workers", workers).
		Dur("elapsed", time.Since(started)).
		Msg("approximate power indices computed")
	return &ApproxResult{Indices: indices, Samples: cfg.Samples, Seed: seed}, nil
}

// samplePivots draws count orderings from prg and increments the pivot
// counter of the first node whose arrival gives the growing coalition a
// quorum. Orderings without a pivot, possible only when the system has no
// quorum, count nothing.
func samplePivots(f *fbas.Fbas, prg random.Rand, count uint64, scratch fbas.Coalition, counts []uint64) error {
	n := f.NumNodes()
	for s := uint64(0); s < count; s++ {
		ordering, err := prg.Permutation(n)
		if err != nil {
			return fmt.Errorf("could not draw node ordering: %w", err)
		}
		walked := n
		for pos, id := range ordering {
			scratch.Add(fbas.NodeID(id))
			if f.ContainsQuorum(scratch) {
				counts[id]++
				walked = pos + 1
				break
			}
		}
		for _, id := range ordering[:walked] {
			scratch.Remove(fbas.NodeID(id))
		}
	}
	return nil
}
