package fbas

import (
	"errors"
	"fmt"
)

// InvalidTopologyError indicates that a node declares a malformed quorum set:
// a threshold outside its valid bounds or a validator reference that points
// outside the node table. It is returned at load time, before any analysis.
type InvalidTopologyError struct {
	NodeID    NodeID
	PublicKey string
	Err       error
}

func (e InvalidTopologyError) Error() string {
	if e.PublicKey == "" {
		return fmt.Sprintf("invalid quorum set for node %d: %s", e.NodeID, e.Err.Error())
	}
	return fmt.Sprintf("invalid quorum set for node %d (%s): %s", e.NodeID, e.PublicKey, e.Err.Error())
}

func (e InvalidTopologyError) Unwrap() error {
	return e.Err
}

// IsInvalidTopologyError returns whether err is an InvalidTopologyError.
func IsInvalidTopologyError(err error) bool {
	var errInvalidTopology InvalidTopologyError
	return errors.As(err, &errInvalidTopology)
}
