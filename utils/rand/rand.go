// Package rand is a wrapper around `crypto/rand` that uses the system RNG
// underneath to extract secure entropy.
//
// It is used to draw fresh sampling seeds when the caller does not pin one.
// This package does not implement any deterministic RNG (Pseudo-RNG) based on
// user input seeds. For the deterministic use-cases please use
// `flow-go/crypto/random`.
//
// Functions in this package may return an error if the underlying system
// implementation fails to read new randoms. When that happens, this package
// considers it an irrecoverable exception.
package rand

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Uint64 returns a random uint64.
//
// It returns:
//   - (0, exception) if crypto/rand fails to provide entropy which is likely a result of a system error.
//   - (random, nil) otherwise
func Uint64() (uint64, error) {
	// allocate a new memory at each call. Another possibility
	// is to use a global variable but that would make the package non thread safe
	buffer := make([]byte, 8)
	if _, err := rand.Read(buffer); err != nil { // checking err in crypto/rand.Read is enough
		return 0, fmt.Errorf("crypto/rand read failed: %w", err)
	}
	r := binary.LittleEndian.Uint64(buffer)
	return r, nil
}
