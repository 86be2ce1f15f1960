package quorum

import (
	"errors"
	"fmt"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// QuorumIntersectionError indicates that the topology admits two disjoint
// quorums. Rankings computed over such a topology are not meaningful: the
// safety assumption of every downstream algorithm is violated.
type QuorumIntersectionError struct {
	QuorumA fbas.Coalition
	QuorumB fbas.Coalition
}

func (e QuorumIntersectionError) Error() string {
	return fmt.Sprintf(
		"quorum intersection violated: quorums %s and %s are disjoint",
		e.QuorumA.String(), e.QuorumB.String(),
	)
}

// IsQuorumIntersectionError returns whether err is a QuorumIntersectionError.
func IsQuorumIntersectionError(err error) bool {
	var errQuorumIntersection QuorumIntersectionError
	return errors.As(err, &errQuorumIntersection)
}
