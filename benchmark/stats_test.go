package benchmark_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-research-tools/fbas-reward-distributor/benchmark"
	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// TestErrorStats checks the error summary on a hand-computed pair of index
// vectors. Node 2 is outside the measured set and must not contribute.
func TestErrorStats(t *testing.T) {
	exact := []float64{0.5, 0.5, 0}
	approx := []float64{0.4, 0.6, 0.3}

	s, err := benchmark.ErrorStats(exact, approx, []fbas.NodeID{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, s.MeanAbsError, 1e-12)
	assert.InDelta(t, 0.1, s.MedianAbsError, 1e-12)
	assert.InDelta(t, 20.0, s.MeanAbsPercentageError, 1e-9)
}

// TestErrorStatsSkipsZeroExact checks that the percentage error ignores nodes
// whose exact index is zero instead of dividing by it.
func TestErrorStatsSkipsZeroExact(t *testing.T) {
	exact := []float64{1, 0}
	approx := []float64{0.75, 0.25}

	s, err := benchmark.ErrorStats(exact, approx, []fbas.NodeID{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, s.MeanAbsError, 1e-12)
	assert.InDelta(t, 25.0, s.MeanAbsPercentageError, 1e-9)
}

// TestErrorStatsRequiresMembers checks the empty-set contract.
func TestErrorStatsRequiresMembers(t *testing.T) {
	_, err := benchmark.ErrorStats(nil, nil, nil)
	require.Error(t, err)
}
