package fbas

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Coalition is a set of node IDs drawn from a fixed universe of nodes, backed
// by a multi-word bit vector. Quorum testing and power-index enumeration use
// coalitions pervasively, so membership tests, set algebra and popcounts are
// all O(universe/64) word operations without per-node allocations.
//
// The zero value is an empty, read-only coalition. NewCoalition allocates the
// backing store; Add and Remove are construction operations reserved for the
// owner of the instance. A coalition that has been handed to another component
// is treated as read-only from that point on.
type Coalition struct {
	bits *bitset.BitSet
}

// NewCoalition returns a coalition over a universe of `universe` node IDs,
// containing the given members.
func NewCoalition(universe int, members ...NodeID) Coalition {
	c := Coalition{bits: bitset.New(uint(universe))}
	for _, id := range members {
		c.bits.Set(uint(id))
	}
	return c
}

// Contains reports whether the node is a member of the coalition.
func (c Coalition) Contains(id NodeID) bool {
	return c.bits != nil && c.bits.Test(uint(id))
}

// Add inserts the node into the coalition in place.
func (c Coalition) Add(id NodeID) {
	c.bits.Set(uint(id))
}

// Remove deletes the node from the coalition in place.
func (c Coalition) Remove(id NodeID) {
	c.bits.Clear(uint(id))
}

// With returns a copy of the coalition with the node added. The receiver is
// left unchanged.
func (c Coalition) With(id NodeID) Coalition {
	out := c.Clone()
	out.bits.Set(uint(id))
	return out
}

// Without returns a copy of the coalition with the node removed. The receiver
// is left unchanged.
func (c Coalition) Without(id NodeID) Coalition {
	out := c.Clone()
	out.bits.Clear(uint(id))
	return out
}

// Clone returns an independent copy of the coalition.
func (c Coalition) Clone() Coalition {
	if c.bits == nil {
		return Coalition{}
	}
	return Coalition{bits: c.bits.Clone()}
}

// Len returns the number of members (population count).
func (c Coalition) Len() int {
	if c.bits == nil {
		return 0
	}
	return int(c.bits.Count())
}

// IsEmpty reports whether the coalition has no members.
func (c Coalition) IsEmpty() bool {
	return c.bits == nil || c.bits.None()
}

// Equal reports whether two coalitions have identical membership. Two empty
// coalitions are equal regardless of how they were constructed.
func (c Coalition) Equal(other Coalition) bool {
	if c.IsEmpty() || other.IsEmpty() {
		return c.IsEmpty() && other.IsEmpty()
	}
	return c.bits.Equal(other.bits)
}

// Intersects reports whether the coalitions share at least one member.
func (c Coalition) Intersects(other Coalition) bool {
	if c.bits == nil || other.bits == nil {
		return false
	}
	return c.bits.IntersectionCardinality(other.bits) > 0
}

// IsSubsetOf reports whether every member of c is also a member of other.
func (c Coalition) IsSubsetOf(other Coalition) bool {
	if c.IsEmpty() {
		return true
	}
	if other.bits == nil {
		return false
	}
	return other.bits.IsSuperSet(c.bits)
}

// Union returns a new coalition containing the members of both inputs.
func (c Coalition) Union(other Coalition) Coalition {
	if c.bits == nil {
		return other.Clone()
	}
	if other.bits == nil {
		return c.Clone()
	}
	return Coalition{bits: c.bits.Union(other.bits)}
}

// Members returns the member IDs in ascending order.
func (c Coalition) Members() []NodeID {
	if c.bits == nil {
		return nil
	}
	out := make([]NodeID, 0, c.bits.Count())
	for i, ok := c.bits.NextSet(0); ok; i, ok = c.bits.NextSet(i + 1) {
		out = append(out, NodeID(i))
	}
	return out
}

func (c Coalition) String() string {
	members := c.Members()
	parts := make([]string, 0, len(members))
	for _, id := range members {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
