// Package fbas models a federated Byzantine agreement system: a table of
// nodes, each declaring trust as a recursive quorum set, together with the
// quorum satisfaction primitives over node coalitions that every analysis
// engine builds on.
package fbas

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/hashicorp/go-multierror"
)

// Fbas is the full node table of a federated Byzantine agreement system,
// indexed by dense node ID. It is constructed once, validated, and read-only
// afterwards, so it can be shared across workers without locking.
type Fbas struct {
	nodes []Node

	// scratch holds reusable bit vectors for the quorum pruning loop, keeping
	// the hot enumeration paths free of per-call allocations.
	scratch sync.Pool
}

// New builds an Fbas from the given node list. Node IDs are assigned by
// position, overriding whatever the input carries. Every quorum set is
// validated; all offending nodes are reported together, each as an
// InvalidTopologyError.
func New(nodes []Node) (*Fbas, error) {
	var merr *multierror.Error
	for i := range nodes {
		nodes[i].ID = NodeID(i)
		if err := nodes[i].QuorumSet.validate(len(nodes)); err != nil {
			merr = multierror.Append(merr, InvalidTopologyError{
				NodeID:    NodeID(i),
				PublicKey: nodes[i].PublicKey,
				Err:       err,
			})
		}
	}
	if err := merr.ErrorOrNil(); err != nil {
		return nil, err
	}
	return newUnchecked(nodes), nil
}

// newUnchecked wires up an Fbas without validating quorum sets. FilterActive
// relies on this: dropping references can push a threshold above the remaining
// member count, which leaves the set unsatisfiable but is not a load error.
func newUnchecked(nodes []Node) *Fbas {
	f := &Fbas{nodes: nodes}
	n := uint(len(nodes))
	f.scratch.New = func() any {
		return bitset.New(n)
	}
	return f
}

// NumNodes returns the number of nodes in the table.
func (f *Fbas) NumNodes() int {
	return len(f.nodes)
}

// Nodes returns the node table. The returned slice and everything it
// references are read-only.
func (f *Fbas) Nodes() []Node {
	return f.nodes
}

// Node returns the node with the given ID.
func (f *Fbas) Node(id NodeID) Node {
	return f.nodes[id]
}

// AllNodes returns the coalition of every node in the table.
func (f *Fbas) AllNodes() Coalition {
	c := NewCoalition(len(f.nodes))
	for i := range f.nodes {
		c.Add(NodeID(i))
	}
	return c
}

// IsQuorum reports whether the candidate coalition is a quorum: it is
// non-empty and every member's quorum set is satisfied by the coalition
// itself.
func (f *Fbas) IsQuorum(c Coalition) bool {
	if c.IsEmpty() {
		return false
	}
	for i, ok := c.bits.NextSet(0); ok; i, ok = c.bits.NextSet(i + 1) {
		if !f.nodes[i].QuorumSet.SatisfiedBy(c) {
			return false
		}
	}
	return true
}

// ContainsQuorum reports whether some subset of the candidate coalition is a
// quorum. It prunes members whose quorum sets are not satisfied by the
// remaining set until a fixed point is reached; the candidate contains a
// quorum iff the fixed point is non-empty. Unlike IsQuorum, this predicate is
// monotone: adding members never turns a containing coalition into a
// non-containing one.
func (f *Fbas) ContainsQuorum(c Coalition) bool {
	if c.IsEmpty() {
		return false
	}
	buf := f.scratch.Get().(*bitset.BitSet)
	defer f.scratch.Put(buf)
	c.bits.CopyFull(buf)

	remaining := Coalition{bits: buf}
	for {
		removed := false
		for i, ok := buf.NextSet(0); ok; i, ok = buf.NextSet(i + 1) {
			if !f.nodes[i].QuorumSet.SatisfiedBy(remaining) {
				buf.Clear(i)
				removed = true
			}
		}
		if !removed {
			return buf.Any()
		}
		if buf.None() {
			return false
		}
	}
}

// FilterActive returns the reduced system in which inactive nodes are removed
// and every reference to them is dropped from the remaining quorum sets.
// Remaining nodes are re-indexed densely, preserving input order. Thresholds
// are never rewritten, so a quorum set can come out of the filter requiring
// more members than it has left; such a set is simply unsatisfiable.
func (f *Fbas) FilterActive() *Fbas {
	idMap := make([]NodeID, len(f.nodes))
	kept := make([]Node, 0, len(f.nodes))
	for i := range f.nodes {
		if !f.nodes[i].Active {
			idMap[i] = -1
			continue
		}
		idMap[i] = NodeID(len(kept))
		kept = append(kept, f.nodes[i])
	}
	for i := range kept {
		kept[i].ID = NodeID(i)
		kept[i].QuorumSet = remapQuorumSet(kept[i].QuorumSet, idMap)
	}
	return newUnchecked(kept)
}

// remapQuorumSet rebuilds a quorum set against a new ID assignment, dropping
// validators mapped to -1.
func remapQuorumSet(qs QuorumSet, idMap []NodeID) QuorumSet {
	out := QuorumSet{Threshold: qs.Threshold}
	for _, id := range qs.Validators {
		if mapped := idMap[id]; mapped >= 0 {
			out.Validators = append(out.Validators, mapped)
		}
	}
	for i := range qs.InnerSets {
		out.InnerSets = append(out.InnerSets, remapQuorumSet(qs.InnerSets[i], idMap))
	}
	return out
}
