package reward

import (
	"errors"
	"fmt"
)

// DegenerateDistributionError indicates that the score vector sums to zero,
// so no proportional split of the reward exists.
type DegenerateDistributionError struct {
	NumScores int
}

func (e DegenerateDistributionError) Error() string {
	return fmt.Sprintf("cannot distribute rewards: all %d scores are zero", e.NumScores)
}

// IsDegenerateDistributionError returns whether err is a
// DegenerateDistributionError.
func IsDegenerateDistributionError(err error) bool {
	var errDegenerate DegenerateDistributionError
	return errors.As(err, &errDegenerate)
}
