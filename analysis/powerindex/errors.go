package powerindex

import (
	"errors"
	"fmt"
)

// maxExactScope bounds the scope size of the exact enumeration. Coalitions
// are indexed by a 64-bit mask, and one bit is reserved so the mask count
// itself stays representable.
const maxExactScope = 63

// ScopeTooLargeError indicates that exact enumeration was requested for a
// scope whose coalition space cannot be enumerated. Callers should fall back
// to ApproxIndices.
type ScopeTooLargeError struct {
	Size int
}

func (e ScopeTooLargeError) Error() string {
	return fmt.Sprintf("scope of %d nodes exceeds the exact enumeration limit of %d", e.Size, maxExactScope)
}

// IsScopeTooLargeError returns whether err is a ScopeTooLargeError.
func IsScopeTooLargeError(err error) bool {
	var errScopeTooLarge ScopeTooLargeError
	return errors.As(err, &errScopeTooLarge)
}
