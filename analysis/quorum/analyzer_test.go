package quorum_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-research-tools/fbas-reward-distributor/analysis/quorum"
	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
	"github.com/p2p-research-tools/fbas-reward-distributor/utils/unittest"
)

func members(quorums []fbas.Coalition) [][]fbas.NodeID {
	out := make([][]fbas.NodeID, 0, len(quorums))
	for _, q := range quorums {
		out = append(out, q.Members())
	}
	return out
}

// TestMinimalQuorumsSymmetric checks the enumeration on the symmetric 3-node,
// threshold-2 system: the minimal quorums are exactly the three 2-node
// subsets, in canonical order.
func TestMinimalQuorumsSymmetric(t *testing.T) {
	a := quorum.NewAnalyzer(unittest.Logger(), unittest.SymmetricFbasFixture(3, 2))

	assert.Equal(t, [][]fbas.NodeID{{0, 1}, {0, 2}, {1, 2}}, members(a.MinimalQuorums()))
}

func TestMinimalQuorumsNested(t *testing.T) {
	a := quorum.NewAnalyzer(unittest.Logger(), unittest.NestedFbasFixture())

	assert.Equal(t, [][]fbas.NodeID{{0, 1}, {0, 2, 3}, {1, 2, 3}}, members(a.MinimalQuorums()))
}

func TestMinimalQuorumsTwoOrgs(t *testing.T) {
	a := quorum.NewAnalyzer(unittest.Logger(), unittest.TwoOrgFbasFixture())

	assert.Equal(t, [][]fbas.NodeID{{0, 1, 2}, {0, 3, 4}}, members(a.MinimalQuorums()))
	assert.Equal(t, []fbas.NodeID{0, 1, 2, 3, 4}, a.TopTier().Members())
}

// TestTopTierExcludesWatcher checks that a node referencing the core without
// being referenced back takes part in no minimal quorum and stays outside the
// top tier.
func TestTopTierExcludesWatcher(t *testing.T) {
	core := []fbas.NodeID{0, 1, 2}
	nodes := make([]fbas.Node, 4)
	for i := range nodes {
		nodes[i] = fbas.Node{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: core}}
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	a := quorum.NewAnalyzer(unittest.Logger(), f)
	assert.Equal(t, [][]fbas.NodeID{{0, 1}, {0, 2}, {1, 2}}, members(a.MinimalQuorums()))
	assert.Equal(t, []fbas.NodeID{0, 1, 2}, a.TopTier().Members())
}

func TestCheckIntersectionHolds(t *testing.T) {
	a := quorum.NewAnalyzer(unittest.Logger(), unittest.SymmetricFbasFixture(3, 2))

	res := a.CheckIntersection()
	assert.True(t, res.Intersects)
	require.NoError(t, a.VerifyIntersection())
}

// TestCheckIntersectionViolated checks detection of two disjoint quorums in
// the split 4-node system.
func TestCheckIntersectionViolated(t *testing.T) {
	a := quorum.NewAnalyzer(unittest.Logger(), unittest.DisjointFbasFixture())

	res := a.CheckIntersection()
	require.False(t, res.Intersects)
	assert.Equal(t, []fbas.NodeID{0, 1}, res.Witness[0].Members())
	assert.Equal(t, []fbas.NodeID{2, 3}, res.Witness[1].Members())

	err := a.VerifyIntersection()
	require.Error(t, err)
	assert.True(t, quorum.IsQuorumIntersectionError(err))
	assert.Contains(t, err.Error(), "{0, 1}")
	assert.Contains(t, err.Error(), "{2, 3}")
}

func TestMinimalQuorumsScoped(t *testing.T) {
	f := unittest.DisjointFbasFixture()
	a := quorum.NewAnalyzer(unittest.Logger(), f, quorum.WithScope(fbas.NewCoalition(4, 0, 1)))

	assert.Equal(t, [][]fbas.NodeID{{0, 1}}, members(a.MinimalQuorums()))
	assert.True(t, a.CheckIntersection().Intersects)
}

// TestMinimalQuorumsWorkerCountInvariance checks that the parallel search
// returns the exact same canonical list as the sequential one. The symmetric
// 12-node, threshold-8 system has C(12,8) = 495 minimal quorums.
func TestMinimalQuorumsWorkerCountInvariance(t *testing.T) {
	f := unittest.SymmetricFbasFixture(12, 8)

	sequential := quorum.NewAnalyzer(unittest.Logger(), f, quorum.WithWorkers(1)).MinimalQuorums()
	parallel := quorum.NewAnalyzer(unittest.Logger(), f, quorum.WithWorkers(4)).MinimalQuorums()

	require.Len(t, sequential, 495)
	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.True(t, sequential[i].Equal(parallel[i]), "quorum %d differs", i)
	}

	for _, q := range sequential {
		assert.Equal(t, 8, q.Len())
	}
}

// TestMinimalQuorumsNoQuorum checks the degenerate system in which no
// coalition satisfies anyone: no minimal quorums, intersection passes
// vacuously. Filtering out one half of a mutually dependent pair leaves the
// survivor's threshold unreachable.
func TestMinimalQuorumsNoQuorum(t *testing.T) {
	nodes := []fbas.Node{
		{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1}}},
		{Active: false, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1}}},
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	a := quorum.NewAnalyzer(unittest.Logger(), f.FilterActive())
	assert.Empty(t, a.MinimalQuorums())
	assert.True(t, a.CheckIntersection().Intersects)
	assert.True(t, a.TopTier().IsEmpty())
}
