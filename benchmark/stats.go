package benchmark

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// AccuracyStats summarizes how far an estimated index vector deviates from
// the exact one over a set of nodes.
type AccuracyStats struct {
	MeanAbsError           float64
	MedianAbsError         float64
	MeanAbsPercentageError float64
}

// ErrorStats compares the estimated indices against the exact ones over the
// given nodes. The percentage error skips nodes with an exact index of zero.
func ErrorStats(exact, approx []float64, members []fbas.NodeID) (AccuracyStats, error) {
	if len(members) == 0 {
		return AccuracyStats{}, fmt.Errorf("no nodes to compare")
	}
	absErrors := make([]float64, 0, len(members))
	pctErrors := make([]float64, 0, len(members))
	for _, id := range members {
		diff := math.Abs(approx[id] - exact[id])
		absErrors = append(absErrors, diff)
		if exact[id] > 0 {
			pctErrors = append(pctErrors, 100*diff/exact[id])
		}
	}

	mae, err := stats.Mean(absErrors)
	if err != nil {
		return AccuracyStats{}, fmt.Errorf("could not compute mean absolute error: %w", err)
	}
	medae, err := stats.Median(absErrors)
	if err != nil {
		return AccuracyStats{}, fmt.Errorf("could not compute median absolute error: %w", err)
	}
	mape := 0.0
	if len(pctErrors) > 0 {
		mape, err = stats.Mean(pctErrors)
		if err != nil {
			return AccuracyStats{}, fmt.Errorf("could not compute mean absolute percentage error: %w", err)
		}
	}
	return AccuracyStats{
		MeanAbsError:           mae,
		MedianAbsError:         medae,
		MeanAbsPercentageError: mape,
	}, nil
}
