package fbas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
	"github.com/p2p-research-tools/fbas-reward-distributor/utils/unittest"
)

// TestIsQuorumSymmetric checks quorum satisfaction on the symmetric 3-node,
// threshold-2 system: every coalition of size >= 2 is a quorum, singletons
// and the empty set are not.
func TestIsQuorumSymmetric(t *testing.T) {
	f := unittest.SymmetricFbasFixture(3, 2)

	assert.False(t, f.IsQuorum(fbas.NewCoalition(3)))
	for i := 0; i < 3; i++ {
		assert.False(t, f.IsQuorum(fbas.NewCoalition(3, fbas.NodeID(i))))
	}

	twoNodeSubsets := [][]fbas.NodeID{{0, 1}, {0, 2}, {1, 2}}
	for _, members := range twoNodeSubsets {
		assert.True(t, f.IsQuorum(fbas.NewCoalition(3, members...)))
	}
	assert.True(t, f.IsQuorum(fbas.NewCoalition(3, 0, 1, 2)))
}

// TestIsQuorumNested checks satisfaction of nested quorum sets: the inner set
// counts as one unit once its own threshold is met.
func TestIsQuorumNested(t *testing.T) {
	f := unittest.NestedFbasFixture()

	assert.True(t, f.IsQuorum(fbas.NewCoalition(4, 0, 1)))
	// {2,3} satisfies the inner set but that is only one of the two required units
	assert.False(t, f.IsQuorum(fbas.NewCoalition(4, 2, 3)))
	assert.True(t, f.IsQuorum(fbas.NewCoalition(4, 0, 2, 3)))
	assert.True(t, f.IsQuorum(fbas.NewCoalition(4, 1, 2, 3)))
	// one inner member alone does not complete the inner set
	assert.False(t, f.IsQuorum(fbas.NewCoalition(4, 0, 2)))
}

// TestContainsQuorum checks the monotone closure of IsQuorum: a coalition
// containing a quorum plus unsatisfied members is not itself a quorum but
// still contains one.
func TestContainsQuorum(t *testing.T) {
	f := unittest.DisjointFbasFixture()

	c := fbas.NewCoalition(4, 0, 1, 2)
	assert.False(t, f.IsQuorum(c))
	assert.True(t, f.ContainsQuorum(c))

	assert.False(t, f.ContainsQuorum(fbas.NewCoalition(4, 0, 2)))
	assert.False(t, f.ContainsQuorum(fbas.NewCoalition(4)))
	assert.True(t, f.ContainsQuorum(fbas.NewCoalition(4, 2, 3)))
}

func TestNewValidatesThresholds(t *testing.T) {
	t.Run("threshold zero", func(t *testing.T) {
		_, err := fbas.New([]fbas.Node{
			{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 0}},
		})
		require.Error(t, err)
		assert.True(t, fbas.IsInvalidTopologyError(err))
	})

	t.Run("threshold exceeds member count", func(t *testing.T) {
		_, err := fbas.New([]fbas.Node{
			{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0}}},
		})
		require.Error(t, err)
		assert.True(t, fbas.IsInvalidTopologyError(err))
	})

	t.Run("dangling validator reference", func(t *testing.T) {
		_, err := fbas.New([]fbas.Node{
			{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 1, Validators: []fbas.NodeID{7}}},
		})
		require.Error(t, err)
		assert.True(t, fbas.IsInvalidTopologyError(err))
		assert.Contains(t, err.Error(), "7")
	})

	t.Run("invalid inner set", func(t *testing.T) {
		_, err := fbas.New([]fbas.Node{
			{Active: true, QuorumSet: fbas.QuorumSet{
				Threshold:  1,
				Validators: []fbas.NodeID{0},
				InnerSets:  []fbas.QuorumSet{{Threshold: 2, Validators: []fbas.NodeID{0}}},
			}},
		})
		require.Error(t, err)
		assert.True(t, fbas.IsInvalidTopologyError(err))
		assert.Contains(t, err.Error(), "inner quorum set 0")
	})

	t.Run("all offenders reported", func(t *testing.T) {
		_, err := fbas.New([]fbas.Node{
			{PublicKey: "GNODE00", Active: true, QuorumSet: fbas.QuorumSet{Threshold: 0}},
			{PublicKey: "GNODE01", Active: true, QuorumSet: fbas.QuorumSet{Threshold: 1, Validators: []fbas.NodeID{0}}},
			{PublicKey: "GNODE02", Active: true, QuorumSet: fbas.QuorumSet{Threshold: 9, Validators: []fbas.NodeID{0, 1}}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "node 0")
		assert.Contains(t, err.Error(), "node 2")
		assert.NotContains(t, err.Error(), "node 1")
	})
}

// TestFilterActive checks that inactive nodes are removed, references to them
// are dropped from remaining quorum sets, and IDs are re-assigned densely.
func TestFilterActive(t *testing.T) {
	all := []fbas.NodeID{0, 1, 2}
	nodes := []fbas.Node{
		{PublicKey: "GNODE00", Active: true, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: all}},
		{PublicKey: "GNODE01", Active: false, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: all}},
		{PublicKey: "GNODE02", Active: true, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: all}},
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	filtered := f.FilterActive()
	require.Equal(t, 2, filtered.NumNodes())

	// former node 2 is now node 1; public keys are preserved
	assert.Equal(t, "GNODE00", filtered.Node(0).PublicKey)
	assert.Equal(t, "GNODE02", filtered.Node(1).PublicKey)

	for id := fbas.NodeID(0); id < 2; id++ {
		qs := filtered.Node(id).QuorumSet
		assert.Equal(t, 2, qs.Threshold)
		assert.Equal(t, []fbas.NodeID{0, 1}, qs.Validators)
	}

	assert.True(t, filtered.IsQuorum(fbas.NewCoalition(2, 0, 1)))
}

// TestFilterActiveUnsatisfiable checks that thresholds are preserved even
// when dropping references leaves a quorum set unsatisfiable.
func TestFilterActiveUnsatisfiable(t *testing.T) {
	nodes := []fbas.Node{
		{Active: true, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1}}},
		{Active: false, QuorumSet: fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{0, 1}}},
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	filtered := f.FilterActive()
	require.Equal(t, 1, filtered.NumNodes())
	assert.Equal(t, 2, filtered.Node(0).QuorumSet.Threshold)
	assert.Equal(t, []fbas.NodeID{0}, filtered.Node(0).QuorumSet.Validators)
	assert.False(t, filtered.IsQuorum(fbas.NewCoalition(1, 0)))
}

// TestFilterActiveNested checks reference dropping inside nested sets.
func TestFilterActiveNested(t *testing.T) {
	qs := fbas.QuorumSet{
		Threshold:  2,
		Validators: []fbas.NodeID{0, 1},
		InnerSets:  []fbas.QuorumSet{{Threshold: 2, Validators: []fbas.NodeID{2, 3}}},
	}
	nodes := make([]fbas.Node, 4)
	for i := range nodes {
		nodes[i] = fbas.Node{Active: i != 3, QuorumSet: qs}
	}
	f, err := fbas.New(nodes)
	require.NoError(t, err)

	filtered := f.FilterActive()
	require.Equal(t, 3, filtered.NumNodes())
	inner := filtered.Node(0).QuorumSet.InnerSets[0]
	assert.Equal(t, 2, inner.Threshold)
	assert.Equal(t, []fbas.NodeID{2}, inner.Validators)
}

func TestAllNodes(t *testing.T) {
	f := unittest.SymmetricFbasFixture(4, 3)
	assert.Equal(t, []fbas.NodeID{0, 1, 2, 3}, f.AllNodes().Members())
}
