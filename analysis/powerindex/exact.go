// Package powerindex computes the Shapley-Shubik power index of the nodes in
// a federated byzantine agreement system. The index of a node is the
// probability, over a uniformly random ordering of all nodes, that the node
// is the one whose arrival first gives the growing coalition a quorum. It
// captures how often a node is decisive for consensus rather than how often
// it merely participates.
//
// ExactIndices enumerates all coalitions of a scope and is exact but
// exponential in the scope size. ApproxIndices estimates the index by
// sampling orderings and scales to arbitrary network sizes. Both return
// identical results for every worker count.
package powerindex

import (
	"math/big"
	"math/bits"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// sequentialScopeCutoff is the scope size below which the coalition space is
// enumerated on a single goroutine. Must be at least 6 so that every parallel
// range spans whole 64-mask words.
const sequentialScopeCutoff = 16

// ExactIndices computes the Shapley-Shubik index of every node by enumerating
// all 2^m coalitions over the m nodes of the scope. Nodes outside the scope
// receive index 0: callers are expected to pass the top tier, whose members
// are the only nodes that can ever be pivotal.
//
// The returned slice has one entry per node of the FBAS and sums to 1, except
// when the scope contains no quorum at all, in which case all entries are 0.
// Pivot counters are accumulated as exact rationals and rounded once, so the
// result does not depend on the worker count. Workers below 1 select one
// goroutine per CPU.
//
// It returns a ScopeTooLargeError when the scope exceeds 63 nodes.
func ExactIndices(log zerolog.Logger, f *fbas.Fbas, scope fbas.Coalition, workers int) ([]float64, error) {
	log = log.With().Str("component", "power_index_exact").Logger()
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	players := scope.Members()
	m := len(players)
	if m > maxExactScope {
		return nil, ScopeTooLargeError{Size: m}
	}
	indices := make([]float64, f.NumNodes())
	if m == 0 {
		return indices, nil
	}

	started := time.Now()
	table := winningTable(f, players, workers)
	counts := pivotCounts(table, m, workers)
	weights := orderingWeights(m)
	for p, perSize := range counts {
		index := new(big.Rat)
		for size, count := range perSize {
			if count == 0 {
				continue
			}
			term := new(big.Rat).SetUint64(count)
			index.Add(index, term.Mul(term, weights[size]))
		}
		indices[players[p]], _ = index.Float64()
	}

	var winningCoalitions uint64
	for _, word := range table {
		winningCoalitions += uint64(bits.OnesCount64(word))
	}
	log.Debug().
		Int("scope_size", m).
		Int("workers", workers).
		Uint64("winning_coalitions", winningCoalitions).
		Dur("elapsed", time.Since(started)).
		Msg("exact power indices computed")
	return indices, nil
}

// winningTable enumerates every subset of the players and records whether it
// contains a quorum, as a bitmap indexed by the subset mask. Mask bit p
// stands for players[p].
func winningTable(f *fbas.Fbas, players []fbas.NodeID, workers int) []uint64 {
	m := len(players)
	total := uint64(1) << uint(m)
	table := make([]uint64, (total+63)/64)

	if workers == 1 || m <= sequentialScopeCutoff {
		fillWinning(f, players, table, 0, total)
		return table
	}

	// The gray-code walk of a 64-aligned mask range stays within the
	// matching 64-aligned bitmap words, so concurrent fills never write
	// the same word.
	chunk := maskChunk(total, workers)
	var wg sync.WaitGroup
	for lo := uint64(0); lo < total; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > total {
			hi = total
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fillWinning(f, players, table, lo, hi)
		}()
	}
	wg.Wait()
	return table
}

// fillWinning marks the winning masks of [lo, hi). The range is walked in
// gray-code order so consecutive masks differ by a single membership toggle
// of the probed coalition.
func fillWinning(f *fbas.Fbas, players []fbas.NodeID, table []uint64, lo, hi uint64) {
	coalition := fbas.NewCoalition(f.NumNodes())
	mask := grayCode(lo)
	for p, id := range players {
		if mask&(1<<uint(p)) != 0 {
			coalition.Add(id)
		}
	}
	for i := lo; ; {
		if f.ContainsQuorum(coalition) {
			table[mask>>6] |= 1 << (mask & 63)
		}
		i++
		if i == hi {
			return
		}
		flip := uint(bits.TrailingZeros64(i))
		mask ^= 1 << flip
		if mask&(1<<flip) != 0 {
			coalition.Add(players[flip])
		} else {
			coalition.Remove(players[flip])
		}
	}
}

// grayCode returns the i-th value of the binary reflected gray code.
func grayCode(i uint64) uint64 {
	return i ^ (i >> 1)
}

// maskChunk splits total masks over the workers in 64-aligned ranges.
func maskChunk(total uint64, workers int) uint64 {
	chunk := (total/uint64(workers) + 63) / 64 * 64
	if chunk == 0 {
		chunk = 64
	}
	return chunk
}

func winning(table []uint64, mask uint64) bool {
	return table[mask>>6]&(1<<(mask&63)) != 0
}

// pivotCounts tallies, for every player p and coalition size k, the number of
// losing k-coalitions that p's arrival turns winning. Counters are integers,
// so merging the partial tallies of the workers is an exact commutative sum.
func pivotCounts(table []uint64, m, workers int) [][]uint64 {
	total := uint64(1) << uint(m)
	counts := newCountMatrix(m)

	if workers == 1 || m <= sequentialScopeCutoff {
		tallyPivots(table, m, counts, 0, total)
		return counts
	}

	chunk := maskChunk(total, workers)
	partials := make(chan [][]uint64, workers+1)
	var wg sync.WaitGroup
	for lo := uint64(0); lo < total; lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > total {
			hi = total
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial := newCountMatrix(m)
			tallyPivots(table, m, partial, lo, hi)
			partials <- partial
		}()
	}
	go func() {
		wg.Wait()
		close(partials)
	}()
	for partial := range partials {
		for p := range counts {
			for k := range counts[p] {
				counts[p][k] += partial[p][k]
			}
		}
	}
	return counts
}

func newCountMatrix(m int) [][]uint64 {
	counts := make([][]uint64, m)
	for p := range counts {
		counts[p] = make([]uint64, m)
	}
	return counts
}

func tallyPivots(table []uint64, m int, counts [][]uint64, lo, hi uint64) {
	for mask := lo; mask < hi; mask++ {
		if winning(table, mask) {
			continue // a pivot extends a losing coalition
		}
		size := bits.OnesCount64(mask)
		for p := 0; p < m; p++ {
			bit := uint64(1) << uint(p)
			if mask&bit != 0 {
				continue
			}
			if winning(table, mask|bit) {
				counts[p][size]++
			}
		}
	}
}

// orderingWeights returns, for every coalition size k, the probability that a
// uniformly random ordering of m players places a given player right after a
// given set of k predecessors: k!(m-1-k)!/m!.
func orderingWeights(m int) []*big.Rat {
	mFactorial := factorial(m)
	weights := make([]*big.Rat, m)
	for k := 0; k < m; k++ {
		numerator := new(big.Int).Mul(factorial(k), factorial(m-1-k))
		weights[k] = new(big.Rat).SetFrac(numerator, mFactorial)
	}
	return weights
}

func factorial(n int) *big.Int {
	return new(big.Int).MulRange(1, int64(n))
}
