package powerindex_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/powerindex"
	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
	"github.com/p2p-research-tools/fbas-reward-distributor/utils/unittest"
)

// TestExactSymmetricThirds checks that three interchangeable nodes split the
// power evenly.
func TestExactSymmetricThirds(t *testing.T) {
	f := unittest.SymmetricFbasFixture(3, 2)
	indices, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 1)
	require.NoError(t, err)
	require.Len(t, indices, 3)

	sum := 0.0
	for _, index := range indices {
		assert.InDelta(t, 1.0/3.0, index, 1e-12)
		sum += index
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// TestExactTwoOrgs checks the hand-computed indices of the bridged two-org
// topology: the bridge node is pivotal in 7/15 of all orderings, each
// organization member in 2/15.
func TestExactTwoOrgs(t *testing.T) {
	f := unittest.TwoOrgFbasFixture()
	indices, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 1)
	require.NoError(t, err)
	require.Len(t, indices, 5)

	assert.InDelta(t, 7.0/15.0, indices[0], 1e-12)
	for id := 1; id < 5; id++ {
		assert.InDelta(t, 2.0/15.0, indices[id], 1e-12)
	}
}

// TestExactIgnoresNodesOutsideScope checks that scoping the enumeration to
// the top tier zeroes the index of a node that merely watches it.
func TestExactIgnoresNodesOutsideScope(t *testing.T) {
	core := fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1, 2}}
	f, err := fbas.New([]fbas.Node{
		{PublicKey: "GCORE0", Active: true, QuorumSet: core},
		{PublicKey: "GCORE1", Active: true, QuorumSet: core},
		{PublicKey: "GCORE2", Active: true, QuorumSet: core},
		{PublicKey: "GWATCH", Active: true, QuorumSet: core},
	})
	require.NoError(t, err)

	indices, err := powerindex.ExactIndices(unittest.Logger(), f, fbas.NewCoalition(4, 0, 1, 2), 1)
	require.NoError(t, err)
	require.Len(t, indices, 4)

	for id := 0; id < 3; id++ {
		assert.InDelta(t, 1.0/3.0, indices[id], 1e-12)
	}
	assert.Zero(t, indices[3])
}

// TestExactParallelMatchesSequential crosses the parallel enumeration cutoff
// and checks worker-count invariance together with the expected values: the
// sixteen core nodes share the power evenly and the watcher gets none.
func TestExactParallelMatchesSequential(t *testing.T) {
	core := make([]fbas.NodeID, 16)
	for i := range core {
		core[i] = fbas.NodeID(i)
	}
	qs := fbas.QuorumSet{Threshold: 9, Validators: core}
	nodes := make([]fbas.Node, 17)
	for i := range nodes {
		nodes[i] = fbas.Node{
			PublicKey: fmt.Sprintf("GNODE%02d", i),
			Active:    true,
			QuorumSet: qs,
		}
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	sequential, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 1)
	require.NoError(t, err)
	parallel, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 4)
	require.NoError(t, err)

	require.Equal(t, sequential, parallel)
	for id := 0; id < 16; id++ {
		assert.InDelta(t, 1.0/16.0, sequential[id], 1e-12)
	}
	assert.Zero(t, sequential[16])
}

// TestExactScopeTooLarge checks the enumeration refuses scopes beyond 63
// nodes instead of silently overflowing the mask space.
func TestExactScopeTooLarge(t *testing.T) {
	f := unittest.SymmetricFbasFixture(64, 33)
	_, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 1)
	require.Error(t, err)
	assert.True(t, powerindex.IsScopeTooLargeError(err))
	assert.Contains(t, err.Error(), "64")
}

// TestExactNoQuorum checks that a system without any quorum yields an
// all-zero index vector rather than an error.
func TestExactNoQuorum(t *testing.T) {
	f := filteredNoQuorumFixture(t)
	indices, err := powerindex.ExactIndices(unittest.Logger(), f, f.AllNodes(), 1)
	require.NoError(t, err)
	require.Len(t, indices, 1)
	assert.Zero(t, indices[0])
}

// filteredNoQuorumFixture builds a one-node system whose quorum set became
// unsatisfiable when its second member was filtered out as inactive.
func filteredNoQuorumFixture(t *testing.T) *fbas.Fbas {
	pair := fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1}}
	full, err := fbas.New([]fbas.Node{
		{PublicKey: "GNODE00", Active: true, QuorumSet: pair},
		{PublicKey: "GNODE01", Active: false, QuorumSet: pair},
	})
	require.NoError(t, err)
	return full.FilterActive()
}
