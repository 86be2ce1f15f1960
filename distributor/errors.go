package distributor

import (
	"errors"
	"fmt"
)

// MissingParameterError indicates that a parameter required by the selected
// algorithm was not provided.
type MissingParameterError struct {
	Parameter string
}

func (e MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Parameter)
}

// IsMissingParameterError returns whether err is a MissingParameterError.
func IsMissingParameterError(err error) bool {
	var errMissingParameter MissingParameterError
	return errors.As(err, &errMissingParameter)
}
