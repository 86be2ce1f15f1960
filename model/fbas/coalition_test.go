package fbas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

func TestCoalitionMembership(t *testing.T) {
	c := fbas.NewCoalition(8, 1, 3, 5)

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.IsEmpty())
	assert.True(t, c.Contains(1))
	assert.True(t, c.Contains(3))
	assert.False(t, c.Contains(0))
	assert.Equal(t, []fbas.NodeID{1, 3, 5}, c.Members())

	c.Add(0)
	assert.True(t, c.Contains(0))
	c.Remove(3)
	assert.False(t, c.Contains(3))
	assert.Equal(t, []fbas.NodeID{0, 1, 5}, c.Members())
}

// TestCoalitionWithWithout checks that With and Without leave the receiver
// unchanged.
func TestCoalitionWithWithout(t *testing.T) {
	c := fbas.NewCoalition(4, 0, 1)

	with := c.With(3)
	assert.True(t, with.Contains(3))
	assert.False(t, c.Contains(3))

	without := c.Without(1)
	assert.False(t, without.Contains(1))
	assert.True(t, c.Contains(1))
}

func TestCoalitionEqual(t *testing.T) {
	a := fbas.NewCoalition(6, 2, 4)
	b := fbas.NewCoalition(6, 2, 4)
	d := fbas.NewCoalition(6, 2, 5)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(d))

	// the zero value is an empty coalition and equals any other empty one
	var zero fbas.Coalition
	assert.True(t, zero.IsEmpty())
	assert.True(t, zero.Equal(fbas.NewCoalition(6)))
	assert.False(t, zero.Equal(a))
}

func TestCoalitionSetAlgebra(t *testing.T) {
	a := fbas.NewCoalition(8, 0, 1, 2)
	b := fbas.NewCoalition(8, 2, 3)
	d := fbas.NewCoalition(8, 4, 5)

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(d))

	union := a.Union(b)
	assert.Equal(t, []fbas.NodeID{0, 1, 2, 3}, union.Members())
	// inputs are untouched
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, b.Len())

	sub := fbas.NewCoalition(8, 1, 2)
	assert.True(t, sub.IsSubsetOf(a))
	assert.False(t, a.IsSubsetOf(sub))
	assert.True(t, a.IsSubsetOf(a))

	var zero fbas.Coalition
	assert.True(t, zero.IsSubsetOf(a))
	assert.False(t, a.IsSubsetOf(zero))
}

func TestCoalitionClone(t *testing.T) {
	a := fbas.NewCoalition(4, 0, 2)
	b := a.Clone()
	b.Add(1)

	require.True(t, b.Contains(1))
	require.False(t, a.Contains(1))
}

func TestCoalitionString(t *testing.T) {
	assert.Equal(t, "{0, 2, 5}", fbas.NewCoalition(8, 5, 0, 2).String())
	assert.Equal(t, "{}", fbas.NewCoalition(8).String())
}
