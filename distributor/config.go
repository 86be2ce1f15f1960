package distributor

import "fmt"

// Algorithm selects the scoring engine.
type Algorithm string

const (
	// NodeRank scores nodes with the damped trust-graph centrality.
	NodeRank Algorithm = "node-rank"

	// PowerIndexEnum computes exact Shapley-Shubik indices by coalition
	// enumeration over the top tier.
	PowerIndexEnum Algorithm = "power-index-enum"

	// PowerIndexApprox estimates Shapley-Shubik indices by permutation
	// sampling.
	PowerIndexApprox Algorithm = "power-index-approx"
)

// ParseAlgorithm returns the Algorithm named by s.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch alg := Algorithm(s); alg {
	case NodeRank, PowerIndexEnum, PowerIndexApprox:
		return alg, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q (supported: %s, %s, %s)",
			s, NodeRank, PowerIndexEnum, PowerIndexApprox)
	}
}

// Config carries the parameters of one analysis run.
type Config struct {
	// Algorithm selects the scoring engine.
	Algorithm Algorithm

	// Samples is the number of orderings drawn by PowerIndexApprox.
	// Required for that algorithm, ignored by the others.
	Samples uint64

	// Seed pins the sampling seed of PowerIndexApprox for reproducible
	// runs. When nil a fresh seed is drawn and reported in the result.
	Seed *uint64

	// SkipIntersectionCheck downgrades a quorum intersection violation from
	// a fatal error to a warning attached to the result.
	SkipIntersectionCheck bool

	// IncludePublicKeys copies node public keys into the report entries.
	IncludePublicKeys bool

	// TotalReward is the amount split by Distribute.
	TotalReward float64

	// Workers caps the number of concurrent analysis goroutines. Values
	// below 1 select one per CPU.
	Workers int
}

// Validate rejects configurations that would fail mid-computation.
func (c Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if c.Algorithm == PowerIndexApprox && c.Samples == 0 {
		return MissingParameterError{Parameter: "samples"}
	}
	return nil
}
