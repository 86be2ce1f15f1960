// Package quorum enumerates the minimal quorums of a trust topology and
// answers the top-tier and quorum-intersection queries that gate every
// downstream ranking.
package quorum

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/p2p-research-tools/fbas-reward-distributor/model/fbas"
)

// maxPrefixDepth caps the number of include/exclude decisions expanded into
// parallel tasks, bounding the frontier at 2^maxPrefixDepth states.
const maxPrefixDepth = 10

// Analyzer owns the minimal-quorum enumeration for one topology. The search
// runs at most once; its result is memoized and shared by TopTier,
// CheckIntersection and VerifyIntersection. An Analyzer is safe for use from
// a single goroutine per method call; the underlying Fbas is never mutated.
type Analyzer struct {
	log     zerolog.Logger
	fbas    *fbas.Fbas
	scope   fbas.Coalition
	workers int

	once    sync.Once
	minimal []fbas.Coalition
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithScope restricts the search to subsets of the given coalition. The
// default scope is the full node set.
func WithScope(scope fbas.Coalition) Option {
	return func(a *Analyzer) {
		a.scope = scope
	}
}

// WithWorkers sets the number of parallel search workers. Values below 1
// fall back to the number of CPUs.
func WithWorkers(workers int) Option {
	return func(a *Analyzer) {
		a.workers = workers
	}
}

// NewAnalyzer creates an Analyzer for the given topology.
func NewAnalyzer(log zerolog.Logger, f *fbas.Fbas, opts ...Option) *Analyzer {
	a := &Analyzer{
		log:     log.With().Str("component", "quorum_analyzer").Logger(),
		fbas:    f,
		scope:   f.AllNodes(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	return a
}

// MinimalQuorums returns all quorums within the scope that contain no smaller
// quorum, in canonical order (ascending size, then ascending member IDs).
// The first call runs the exponential search; subsequent calls return the
// memoized result. Callers must treat the returned coalitions as read-only.
func (a *Analyzer) MinimalQuorums() []fbas.Coalition {
	a.once.Do(a.computeMinimalQuorums)
	return a.minimal
}

// TopTier returns the union of all minimal quorums: the nodes whose presence
// or absence decides quorum formation. Power-index enumeration restricts
// itself to this set.
func (a *Analyzer) TopTier() fbas.Coalition {
	union := fbas.NewCoalition(a.fbas.NumNodes())
	for _, q := range a.MinimalQuorums() {
		for _, id := range q.Members() {
			union.Add(id)
		}
	}
	return union
}

// IntersectionResult reports whether every pair of minimal quorums shares at
// least one node. When Intersects is false, Witness holds one disjoint pair.
type IntersectionResult struct {
	Intersects bool
	Witness    [2]fbas.Coalition
}

// CheckIntersection tests the quorum-intersection safety property by pairwise
// bit-set AND over the minimal-quorum list, stopping at the first disjoint
// pair. A topology without any quorum passes vacuously.
func (a *Analyzer) CheckIntersection() IntersectionResult {
	mq := a.MinimalQuorums()
	for i := 0; i < len(mq); i++ {
		for j := i + 1; j < len(mq); j++ {
			if !mq[i].Intersects(mq[j]) {
				return IntersectionResult{
					Intersects: false,
					Witness:    [2]fbas.Coalition{mq[i], mq[j]},
				}
			}
		}
	}
	return IntersectionResult{Intersects: true}
}

// VerifyIntersection returns a QuorumIntersectionError naming two disjoint
// quorums when the intersection property does not hold, and nil otherwise.
func (a *Analyzer) VerifyIntersection() error {
	res := a.CheckIntersection()
	if res.Intersects {
		return nil
	}
	return QuorumIntersectionError{
		QuorumA: res.Witness[0],
		QuorumB: res.Witness[1],
	}
}

// searchState is one branch of the include/exclude search tree: the members
// committed so far, the set still reachable (committed plus undecided), and
// the index of the next undecided scope node.
type searchState struct {
	current   fbas.Coalition
	available fbas.Coalition
	idx       int
}

func (a *Analyzer) computeMinimalQuorums() {
	start := time.Now()
	scopeIDs := a.scope.Members()

	var candidates []fbas.Coalition
	if a.fbas.ContainsQuorum(a.scope) {
		root := searchState{
			current:   fbas.NewCoalition(a.fbas.NumNodes()),
			available: a.scope.Clone(),
			idx:       0,
		}
		if a.workers <= 1 || len(scopeIDs) <= maxPrefixDepth {
			candidates = a.search(root, scopeIDs, candidates)
		} else {
			candidates = a.searchParallel(root, scopeIDs)
		}
	}

	a.minimal = filterMinimal(candidates)
	a.log.Debug().
		Int("scope_size", len(scopeIDs)).
		Int("minimal_quorums", len(a.minimal)).
		Dur("elapsed", time.Since(start)).
		Msg("minimal quorum search finished")
}

// search explores include/exclude branches of scopeIDs[state.idx:] depth
// first, mutating state.current and state.available in place with
// backtracking. Every quorum it meets is shrunk to a minimal one and
// collected; branches that can no longer contain a quorum are abandoned.
// Supersets of quorums are never explored: a branch halts as soon as its
// committed set is a quorum.
func (a *Analyzer) search(state searchState, scopeIDs []fbas.NodeID, found []fbas.Coalition) []fbas.Coalition {
	if a.fbas.IsQuorum(state.current) {
		return append(found, a.shrinkToMinimal(state.current))
	}
	if state.idx == len(scopeIDs) {
		return found
	}
	if !a.fbas.ContainsQuorum(state.available) {
		return found
	}

	next := scopeIDs[state.idx]
	state.idx++

	state.current.Add(next)
	found = a.search(state, scopeIDs, found)
	state.current.Remove(next)

	state.available.Remove(next)
	found = a.search(state, scopeIDs, found)
	state.available.Add(next)

	return found
}

// searchParallel expands the search tree to a fixed prefix depth, then runs
// the remaining branches as independent tasks on a worker pool. Workers share
// nothing but the read-only topology; their partial results are merged by
// concatenation, and filterMinimal canonicalizes the outcome so that it is
// identical for any worker count.
func (a *Analyzer) searchParallel(root searchState, scopeIDs []fbas.NodeID) []fbas.Coalition {
	depth := maxPrefixDepth
	if len(scopeIDs) < depth {
		depth = len(scopeIDs)
	}

	var candidates []fbas.Coalition
	var frontier []searchState
	candidates, frontier = a.expandFrontier(root, scopeIDs, depth, candidates, nil)

	jobs := make(chan searchState, len(frontier))
	for _, state := range frontier {
		jobs <- state
	}
	close(jobs)

	results := make(chan []fbas.Coalition, len(frontier))
	workersLeft := int64(a.workers)

	var g errgroup.Group
	for worker := 0; worker < a.workers; worker++ {
		g.Go(func() error {
			defer func() {
				if atomic.AddInt64(&workersLeft, -1) == 0 {
					close(results)
				}
			}()
			for state := range jobs {
				results <- a.search(state, scopeIDs, nil)
			}
			return nil
		})
	}

	for partial := range results {
		candidates = append(candidates, partial...)
	}
	_ = g.Wait()

	return candidates
}

// expandFrontier runs the search down to the given depth, recording quorums
// found on the way and snapshotting every surviving branch at the depth as an
// independent task.
func (a *Analyzer) expandFrontier(
	state searchState,
	scopeIDs []fbas.NodeID,
	depth int,
	found []fbas.Coalition,
	frontier []searchState,
) ([]fbas.Coalition, []searchState) {
	if a.fbas.IsQuorum(state.current) {
		return append(found, a.shrinkToMinimal(state.current)), frontier
	}
	if state.idx == len(scopeIDs) {
		return found, frontier
	}
	if !a.fbas.ContainsQuorum(state.available) {
		return found, frontier
	}
	if state.idx == depth {
		snapshot := searchState{
			current:   state.current.Clone(),
			available: state.available.Clone(),
			idx:       state.idx,
		}
		return found, append(frontier, snapshot)
	}

	next := scopeIDs[state.idx]
	state.idx++

	state.current.Add(next)
	found, frontier = a.expandFrontier(state, scopeIDs, depth, found, frontier)
	state.current.Remove(next)

	state.available.Remove(next)
	found, frontier = a.expandFrontier(state, scopeIDs, depth, found, frontier)
	state.available.Add(next)

	return found, frontier
}

// shrinkToMinimal removes members of the quorum one by one, keeping each
// removal that leaves a quorum behind. The result is a quorum from which no
// single node can be dropped; remaining non-minimal candidates are weeded out
// by filterMinimal.
func (a *Analyzer) shrinkToMinimal(q fbas.Coalition) fbas.Coalition {
	shrunk := q.Clone()
	for _, id := range q.Members() {
		shrunk.Remove(id)
		if !a.fbas.IsQuorum(shrunk) {
			shrunk.Add(id)
		}
	}
	return shrunk
}

// filterMinimal sorts candidates canonically (ascending size, then ascending
// member IDs), removes duplicates, and removes every candidate that has a
// recorded subset.
func filterMinimal(candidates []fbas.Coalition) []fbas.Coalition {
	type entry struct {
		coalition fbas.Coalition
		members   []fbas.NodeID
	}
	entries := make([]entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, entry{coalition: c, members: c.Members()})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].members, entries[j].members
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	kept := make([]fbas.Coalition, 0, len(entries))
	for _, e := range entries {
		dominated := false
		for _, k := range kept {
			if k.IsSubsetOf(e.coalition) {
				dominated = true
				break
			}
		}
		if !dominated {
			kept = append(kept, e.coalition)
		}
	}
	return kept
}
