package fbas

import (
	"fmt"
)

// QuorumSet is a node's declared trust structure: a threshold over direct
// validators and nested quorum sets. Nested sets are owned outright by their
// parent, so the structure is a finite tree and needs no cycle detection.
type QuorumSet struct {
	Threshold  int
	Validators []NodeID
	InnerSets  []QuorumSet
}

// SatisfiedBy reports whether the coalition satisfies the quorum set: at least
// Threshold of the direct validators and nested sets must be present in,
// respectively satisfied by, the coalition. A nested set counts as a single
// satisfied unit once its own threshold is met.
func (qs *QuorumSet) SatisfiedBy(c Coalition) bool {
	met := 0
	for _, id := range qs.Validators {
		if c.Contains(id) {
			met++
			if met >= qs.Threshold {
				return true
			}
		}
	}
	for i := range qs.InnerSets {
		if qs.InnerSets[i].SatisfiedBy(c) {
			met++
			if met >= qs.Threshold {
				return true
			}
		}
	}
	return met >= qs.Threshold
}

// VisitSets calls fn for the quorum set itself and for every nested set,
// depth first. The callback must not retain or modify the visited sets.
func (qs *QuorumSet) VisitSets(fn func(qs *QuorumSet)) {
	fn(qs)
	for i := range qs.InnerSets {
		qs.InnerSets[i].VisitSets(fn)
	}
}

// validate checks the threshold bounds of the quorum set and all nested sets,
// and that every validator reference points into a node table of the given
// size. It returns the first violation found within this set.
func (qs *QuorumSet) validate(numNodes int) error {
	members := len(qs.Validators) + len(qs.InnerSets)
	if qs.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1 (got %d)", qs.Threshold)
	}
	if qs.Threshold > members {
		return fmt.Errorf("threshold %d exceeds member count %d", qs.Threshold, members)
	}
	for _, id := range qs.Validators {
		if id < 0 || int(id) >= numNodes {
			return fmt.Errorf("validator reference %d outside node table of size %d", id, numNodes)
		}
	}
	for i := range qs.InnerSets {
		if err := qs.InnerSets[i].validate(numNodes); err != nil {
			return fmt.Errorf("inner quorum set %d: %w", i, err)
		}
	}
	return nil
}
