// Package noderank computes a damped, iterative centrality score over the
// weighted trust edges induced by quorum-set membership.
package noderank

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

const (
	DefaultDamping       = 0.85
	DefaultEpsilon       = 1e-9
	DefaultMaxIterations = 100
)

// Config holds the iteration parameters of the propagation. Zero-value fields
// fall back to the package defaults.
type Config struct {
	Damping       float64
	Epsilon       float64
	MaxIterations int
}

// DefaultConfig returns the standard propagation parameters.
func DefaultConfig() Config {
	return Config{
		Damping:       DefaultDamping,
		Epsilon:       DefaultEpsilon,
		MaxIterations: DefaultMaxIterations,
	}
}

func (cfg Config) withDefaults() Config {
	if cfg.Damping == 0 {
		cfg.Damping = DefaultDamping
	}
	if cfg.Epsilon == 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return cfg
}

type edge struct {
	to     fbas.NodeID
	weight float64
}

// Rank scores every node by damped propagation over the trust graph: node A
// contributes to node B with weight 1/len(slice) for every validator list
// (root or nested) of A's quorum set in which B appears, and every node
// receives the teleportation term (1-d)/n each round. Iteration stops when
// the L1 change between rounds falls below Epsilon or after MaxIterations,
// whichever comes first; hitting the cap is not an error, the best estimate
// so far is returned. The result is normalized to sum to 1. Deterministic
// for a given graph and configuration.
func Rank(log zerolog.Logger, f *fbas.Fbas, cfg Config) []float64 {
	cfg = cfg.withDefaults()
	log = log.With().Str("component", "noderank").Logger()

	n := f.NumNodes()
	if n == 0 {
		return []float64{}
	}

	outEdges := buildTrustEdges(f)
	teleport := (1 - cfg.Damping) / float64(n)

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	next := make([]float64, n)

	start := time.Now()
	iterations := 0
	converged := false
	for ; iterations < cfg.MaxIterations; iterations++ {
		for i := range next {
			next[i] = teleport
		}
		for from, edges := range outEdges {
			contribution := cfg.Damping * scores[from]
			for _, e := range edges {
				next[e.to] += contribution * e.weight
			}
		}

		var delta float64
		for i := range scores {
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if delta < cfg.Epsilon {
			converged = true
			iterations++
			break
		}
	}

	normalize(scores)
	log.Debug().
		Int("iterations", iterations).
		Bool("converged", converged).
		Dur("elapsed", time.Since(start)).
		Msg("trust propagation finished")
	return scores
}

// buildTrustEdges collects, per node, one outgoing edge for every appearance
// of a peer in one of the node's quorum-set validator lists, weighted by the
// inverse size of that list.
func buildTrustEdges(f *fbas.Fbas) [][]edge {
	outEdges := make([][]edge, f.NumNodes())
	for i := range f.Nodes() {
		qs := f.Node(fbas.NodeID(i)).QuorumSet
		var edges []edge
		qs.VisitSets(func(set *fbas.QuorumSet) {
			if len(set.Validators) == 0 {
				return
			}
			weight := 1 / float64(len(set.Validators))
			for _, to := range set.Validators {
				edges = append(edges, edge{to: to, weight: weight})
			}
		})
		outEdges[i] = edges
	}
	return outEdges
}

func normalize(scores []float64) {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if sum == 0 {
		return
	}
	for i := range scores {
		scores[i] /= sum
	}
}
