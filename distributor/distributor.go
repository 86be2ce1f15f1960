// Package distributor wires the trust-graph model, the analysis engines and
// the reward allocator into the rank and distribute operations exposed by the
// command line tools.
package distributor

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/noderank"
	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/powerindex"
	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/quorum"
	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/reward"
	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// Ranking is the result of one scoring run.
type Ranking struct {
	// Entries are the report rows: score descending, ties broken by
	// ascending node ID, values rounded to three decimals.
	Entries []NodeScore

	// Scores is the raw, unrounded score vector indexed by node ID.
	Scores []float64

	// Seed is set when the sampling algorithm ran; rerunning with it and
	// the same sample count reproduces the scores exactly.
	Seed *uint64

	// Warnings carries non-fatal findings, such as a suppressed quorum
	// intersection violation.
	Warnings []string
}

// Distribution is a ranking together with the proportional reward split.
type Distribution struct {
	// Entries are the report rows, ordered like Ranking.Entries.
	Entries []NodeReward

	// Rewards is the raw reward vector indexed by node ID; it sums to the
	// configured total within floating tolerance.
	Rewards []float64

	// Scores is the raw score vector the split was derived from.
	Scores []float64

	Seed     *uint64
	Warnings []string
}

// Rank computes per-node influence scores with the configured algorithm.
//
// Quorum intersection is verified first: a violation aborts the run with a
// QuorumIntersectionError unless the check was suppressed, in which case it
// is logged at WARN level and attached to the result as a warning.
func Rank(log zerolog.Logger, f *fbas.Fbas, cfg Config) (*Ranking, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = log.With().Str("component", "distributor").Logger()

	analyzer := quorum.NewAnalyzer(log, f, quorum.WithWorkers(cfg.Workers))
	ranking := &Ranking{}
	if err := analyzer.VerifyIntersection(); err != nil {
		if !cfg.SkipIntersectionCheck {
			return nil, err
		}
		log.Warn().Err(err).Msg("quorum intersection violated, check suppressed")
		ranking.Warnings = append(ranking.Warnings, err.Error())
	}

	switch cfg.Algorithm {
	case NodeRank:
		ranking.Scores = noderank.Rank(log, f, noderank.Config{})
	case PowerIndexEnum:
		scores, err := powerindex.ExactIndices(log, f, analyzer.TopTier(), cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("exact power index failed: %w", err)
		}
		ranking.Scores = scores
	case PowerIndexApprox:
		result, err := powerindex.ApproxIndices(log, f, powerindex.ApproxConfig{
			Samples: cfg.Samples,
			Seed:    cfg.Seed,
			Workers: cfg.Workers,
		})
		if err != nil {
			return nil, fmt.Errorf("approximate power index failed: %w", err)
		}
		ranking.Scores = result.Indices
		seed := result.Seed
		ranking.Seed = &seed
	}
	ranking.Entries = scoreEntries(f, ranking.Scores, cfg.IncludePublicKeys)

	log.Info().
		Str("algorithm", string(cfg.Algorithm)).
		Int("nodes", f.NumNodes()).
		Msg("ranking computed")
	return ranking, nil
}

// Distribute computes the ranking and splits the configured total reward in
// proportion to the scores.
func Distribute(log zerolog.Logger, f *fbas.Fbas, cfg Config) (*Distribution, error) {
	ranking, err := Rank(log, f, cfg)
	if err != nil {
		return nil, err
	}
	rewards, err := reward.Distribute(ranking.Scores, cfg.TotalReward)
	if err != nil {
		return nil, err
	}
	return &Distribution{
		Entries:  rewardEntries(f, ranking.Scores, rewards, cfg.IncludePublicKeys),
		Rewards:  rewards,
		Scores:   ranking.Scores,
		Seed:     ranking.Seed,
		Warnings: ranking.Warnings,
	}, nil
}
