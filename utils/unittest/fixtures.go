// Package unittest provides test fixtures for the analysis packages: small
// hand-verifiable trust topologies and a test logger.
package unittest

import (
	"fmt"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// SymmetricFbasFixture returns an n-node system in which every node declares
// the same quorum set: the given threshold over all n nodes. For threshold
// t > n/2 the minimal quorums are exactly the t-node subsets and quorum
// intersection holds.
func SymmetricFbasFixture(n, threshold int) *fbas.Fbas {
	all := make([]fbas.NodeID, n)
	for i := range all {
		all[i] = fbas.NodeID(i)
	}
	nodes := make([]fbas.Node, n)
	for i := range nodes {
		nodes[i] = fbas.Node{
			PublicKey: publicKeyFixture(i),
			Active:    true,
			QuorumSet: fbas.QuorumSet{Threshold: threshold, Validators: all},
		}
	}
	return mustFbas(nodes)
}

// TwoOrgFbasFixture returns the five-node system with two three-node
// organizations {0,1,2} and {0,3,4} bridged by node 0. Its minimal quorums
// are {0,1,2} and {0,3,4}, quorum intersection holds, and the exact
// Shapley-Shubik indices are [7/15, 2/15, 2/15, 2/15, 2/15].
func TwoOrgFbasFixture() *fbas.Fbas {
	nodes := []fbas.Node{
		{QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0, 1, 2, 3, 4}}},
		{QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0, 1, 2}}},
		{QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0, 1, 2}}},
		{QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0, 3, 4}}},
		{QuorumSet: fbas.QuorumSet{Threshold: 3, Validators: []fbas.NodeID{0, 3, 4}}},
	}
	for i := range nodes {
		nodes[i].PublicKey = publicKeyFixture(i)
		nodes[i].Active = true
	}
	return mustFbas(nodes)
}

// DisjointFbasFixture returns a four-node system split into two independent
// pairs, {0,1} and {2,3}, each requiring both of its members. The minimal
// quorums are the two pairs, which do not intersect.
func DisjointFbasFixture() *fbas.Fbas {
	pair := func(a, b fbas.NodeID) fbas.QuorumSet {
		return fbas.QuorumSet{Threshold: 2, Validators: []fbas.NodeID{a, b}}
	}
	nodes := []fbas.Node{
		{PublicKey: publicKeyFixture(0), Active: true, QuorumSet: pair(0, 1)},
		{PublicKey: publicKeyFixture(1), Active: true, QuorumSet: pair(0, 1)},
		{PublicKey: publicKeyFixture(2), Active: true, QuorumSet: pair(2, 3)},
		{PublicKey: publicKeyFixture(3), Active: true, QuorumSet: pair(2, 3)},
	}
	return mustFbas(nodes)
}

// NestedFbasFixture returns a four-node system in which every node requires
// two of: validator 0, validator 1, and the inner set {2,3} (threshold 2).
// Its minimal quorums are {0,1}, {0,2,3} and {1,2,3}.
func NestedFbasFixture() *fbas.Fbas {
	qs := fbas.QuorumSet{
		Threshold:  2,
		Validators: []fbas.NodeID{0, 1},
		InnerSets: []fbas.QuorumSet{
			{Threshold: 2, Validators: []fbas.NodeID{2, 3}},
		},
	}
	nodes := make([]fbas.Node, 4)
	for i := range nodes {
		nodes[i] = fbas.Node{
			PublicKey: publicKeyFixture(i),
			Active:    true,
			QuorumSet: qs,
		}
	}
	return mustFbas(nodes)
}

func publicKeyFixture(i int) string {
	return fmt.Sprintf("GNODE%02d", i)
}

func mustFbas(nodes []fbas.Node) *fbas.Fbas {
	f, err := fbas.New(nodes)
	if err != nil {
		panic(err)
	}
	return f
}
