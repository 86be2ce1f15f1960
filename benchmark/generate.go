// Package benchmark generates synthetic trust topologies and runs timed
// performance and approximation-accuracy sweeps over the analysis engines,
// persisting results as CSV.
package benchmark

import (
	"fmt"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// Topology selects a synthetic FBAS generator.
type Topology string

const (
	// TopologySymmetric generates systems in which every node declares the
	// same flat quorum set over all nodes, with a supermajority threshold.
	TopologySymmetric Topology = "symmetric"

	// TopologyStellar generates systems structured like the public Stellar
	// network top tier: three-node organizations with inner threshold 2,
	// joined under a supermajority threshold over the organizations.
	TopologyStellar Topology = "stellar"
)

// ParseTopology returns the Topology named by s.
func ParseTopology(s string) (Topology, error) {
	switch topology := Topology(s); topology {
	case TopologySymmetric, TopologyStellar:
		return topology, nil
	default:
		return "", fmt.Errorf("unknown topology %q (supported: %s, %s)", s, TopologySymmetric, TopologyStellar)
	}
}

// SweepSizes returns the top-tier sizes the generator can realize, in
// ascending order up to max. The stellar generator grows in whole
// organizations of three nodes.
func (t Topology) SweepSizes(max int) []int {
	var sizes []int
	switch t {
	case TopologyStellar:
		for size := 3; size <= max; size += 3 {
			sizes = append(sizes, size)
		}
	default:
		for size := 1; size <= max; size++ {
			sizes = append(sizes, size)
		}
	}
	return sizes
}

// Generate returns a synthetic FBAS whose top tier has the given size.
func (t Topology) Generate(size int) (*fbas.Fbas, error) {
	switch t {
	case TopologySymmetric:
		return symmetricFbas(size)
	case TopologyStellar:
		return stellarFbas(size)
	default:
		return nil, fmt.Errorf("unknown topology %q", string(t))
	}
}

// symmetricFbas builds size nodes that all declare the same quorum set: a
// supermajority threshold over every node. Quorum intersection holds and the
// top tier is the whole node set.
func symmetricFbas(size int) (*fbas.Fbas, error) {
	if size < 1 {
		return nil, fmt.Errorf("symmetric topology needs at least 1 node, got %d", size)
	}
	all := make([]fbas.NodeID, size)
	for i := range all {
		all[i] = fbas.NodeID(i)
	}
	qs := fbas.QuorumSet{Threshold: supermajority(size), Validators: all}
	nodes := make([]fbas.Node, size)
	for i := range nodes {
		nodes[i] = fbas.Node{
			PublicKey: syntheticKey(i),
			Active:    true,
			QuorumSet: qs,
		}
	}
	return fbas.New(nodes)
}

// stellarFbas builds size/3 organizations of three nodes each. Every node
// declares the same quorum set: a supermajority threshold over the
// organizations, each organization being an inner set requiring 2 of its 3
// members. Quorum intersection holds and the top tier is the whole node set.
func stellarFbas(size int) (*fbas.Fbas, error) {
	if size < 3 || size%3 != 0 {
		return nil, fmt.Errorf("stellar topology needs a positive multiple of 3 nodes, got %d", size)
	}
	orgs := size / 3
	inner := make([]fbas.QuorumSet, orgs)
	for o := range inner {
		members := []fbas.NodeID{fbas.NodeID(3 * o), fbas.NodeID(3*o + 1), fbas.NodeID(3*o + 2)}
		inner[o] = fbas.QuorumSet{Threshold: 2, Validators: members}
	}
	qs := fbas.QuorumSet{Threshold: supermajority(orgs), InnerSets: inner}
	nodes := make([]fbas.Node, size)
	for i := range nodes {
		nodes[i] = fbas.Node{
			PublicKey: syntheticKey(i),
			Active:    true,
			QuorumSet: qs,
		}
	}
	return fbas.New(nodes)
}

// supermajority returns the smallest threshold t with 3t > 2n, the byzantine
// supermajority rule. Two subsets meeting it always intersect.
func supermajority(n int) int {
	return 2*n/3 + 1
}

func syntheticKey(i int) string {
	return fmt.Sprintf("GBENCH%04d", i)
}
