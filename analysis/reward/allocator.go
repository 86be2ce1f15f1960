// Package reward converts per-node influence scores into a proportional
// split of a fixed reward total.
package reward

import "fmt"

// Distribute splits total across the nodes in proportion to their scores:
// node i receives total * scores[i] / sum(scores). The returned slice has one
// entry per score and sums to total within floating tolerance; rounding
// residue is accepted and not corrected.
//
// It returns a DegenerateDistributionError when the scores sum to zero, since
// no proportional split exists. Scores must be nonnegative.
func Distribute(scores []float64, total float64) ([]float64, error) {
	sum := 0.0
	for i, score := range scores {
		if score < 0 {
			return nil, fmt.Errorf("score of node %d must be nonnegative, got %g", i, score)
		}
		sum += score
	}
	if sum == 0 {
		return nil, DegenerateDistributionError{NumScores: len(scores)}
	}

	rewards := make([]float64, len(scores))
	for i, score := range scores {
		rewards[i] = total * (score / sum)
	}
	return rewards, nil
}
