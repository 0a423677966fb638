package pbc

import (
	"math/big"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/pbcount/ddnnfc/internal/ddnnf"
)

// Fingerprint is the 64-bit residual-formula fingerprint of spec.md §4.3:
// the scope's unassigned variables plus every active constraint's current
// partial sum, folded together with xxhash. Two distinct residual formulas
// may collide onto the same fingerprint; the specification accepts this
// risk explicitly rather than paying for an exact equality check on every
// lookup (see SPEC_FULL.md §D).
type Fingerprint uint64

// ComputeFingerprint computes the cache key for one component: its variables (the
// vertex set) and the constraints still active over it (the net set,
// excluding learned clauses — see DESIGN.md).
func ComputeFingerprint(f *Formula, vars []VarID, constraintIdx []int) Fingerprint {
	h := xxhash.New()

	sortedVars := append([]VarID(nil), vars...)
	sort.Slice(sortedVars, func(i, j int) bool { return sortedVars[i] < sortedVars[j] })
	var buf [4]byte
	for _, v := range sortedVars {
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		h.Write(buf[:])
	}

	sortedIdx := append([]int(nil), constraintIdx...)
	sort.Ints(sortedIdx)
	for _, ci := range sortedIdx {
		c := f.Constraints[ci]
		if !c.IsUnsatisfied() {
			continue
		}
		cHash := c.Hash()
		buf8 := make([]byte, 8)
		for i := 0; i < 8; i++ {
			buf8[i] = byte(cHash >> (8 * uint(i)))
		}
		h.Write(buf8)
	}

	return Fingerprint(h.Sum64())
}

// CacheEntry is what Cache stores for a fingerprint: the model count of
// that residual sub-problem, and the already-built d-DNNF subtree
// representing it. Reused subtrees are re-attached behind a fresh Edge
// with fresh literal annotations by the caller — the cache never stores
// Edge annotations itself, only the bare Node, since the same Node gets
// reused from different call sites with different forced literals.
type CacheEntry struct {
	Count *big.Int
	Node  *ddnnf.Node
}

// Cache is the component cache of spec.md §4.3: a map from residual-
// formula fingerprint to the previously computed result, plus the hit/miss
// counters needed for diagnostics.
type Cache struct {
	entries map[Fingerprint]CacheEntry
	hits    int
	misses  int
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Fingerprint]CacheEntry)}
}

// Lookup reports a cached result for fp, if any, bumping the hit/miss
// counters accordingly.
func (c *Cache) Lookup(fp Fingerprint) (CacheEntry, bool) {
	e, ok := c.entries[fp]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return e, ok
}

// Insert records fp's result. Per spec.md §4.3's "insert on leave" rule,
// solveComponent calls this only once per fingerprint: when composing the
// SecondDecision result of a branch over a component that still has at
// least one unsatisfied constraint. Trivially satisfied leaves (no
// components left, or a component with zero unsatisfied constraints) and
// the multi-component conjunction are never inserted here — their cost is
// already linear in the number of components, so memoizing them buys
// nothing and would only grow the cache.
func (c *Cache) Insert(fp Fingerprint, entry CacheEntry) {
	c.entries[fp] = entry
}

// Stats is a snapshot of the cache's hit/miss counts, reported by the CLI
// under --debug (SPEC_FULL.md §C.2).
type Stats struct {
	Hits   int
	Misses int
	Size   int
}

func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
}
