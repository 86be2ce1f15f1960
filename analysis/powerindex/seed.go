package powerindex

import (
	"encoding/binary"
	"fmt"

	"github.com/onflow/flow-go/crypto/hash"
	"github.com/onflow/flow-go/crypto/random"
)

// batchSize is the number of orderings drawn from a single PRG sub-stream.
// Samples are partitioned into batches as a function of the sample count
// alone, never of the worker count, so a pinned seed reproduces the same
// estimate on any machine.
const batchSize = 4096

// prgForBatch returns the deterministic random stream for one sample batch.
//
// The function hashes the 64-bit sampling seed to obtain the PRG seed.
// Hashing is required to uniformize the entropy over the output. The batch
// index customizes the stream (customizer in this implementation is up to
// 12-bytes long), making the sub-streams of distinct batches independent.
func prgForBatch(seed uint64, batch uint64) (random.Rand, error) {
	var source [8]byte
	binary.LittleEndian.PutUint64(source[:], seed)
	var prgSeed [hash.HashLenSHA3_256]byte
	hash.ComputeSHA3_256(&prgSeed, source[:])

	var customizer [8]byte
	binary.LittleEndian.PutUint64(customizer[:], batch)
	prg, err := random.NewChacha20PRG(prgSeed[:], customizer[:])
	if err != nil {
		return nil, fmt.Errorf("could not create ChaCha20 PRG for batch %d: %w", batch, err)
	}
	return prg, nil
}
