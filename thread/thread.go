// Package thread holds the per-worker scratch state a render thread owns
// for the lifetime of a render: pooled intersection stacks, the crackle
// and isosurface caches, and a thread-local RNG stream. Nothing in this
// package is safe to share across goroutines; one State belongs to exactly
// one worker.
package thread

import (
	"math/rand/v2"

	"povcore/stats"
)

// crackleCacheBudget bounds the crackle/Voronoi neighbour-cell cache so a
// long single-threaded render does not grow it without limit. The figure is
// advisory: each worker tracks its own approximate byte count and evicts
// the oldest entries once it is exceeded.
const crackleCacheBudget = 30 * 1024 * 1024

// CellKey addresses one crackle/Voronoi lattice cell.
type CellKey struct {
	X, Y, Z int32
}

// crackleEntry is cached per cell: the jittered feature point(s) that live
// in that lattice cell, generated once and reused by every ray that samples
// nearby.
type crackleEntry struct {
	points []Point3
	bytes  int
}

// Point3 is a minimal 3-tuple used by caches in this package so that it does
// not need to import the math package (avoiding a dependency edge that
// nothing else in the pack needs).
type Point3 struct {
	X, Y, Z float64
}

// IsoKey addresses a cached last-hit bisection segment for the isosurface
// primitive: object identity plus a quantized ray origin/direction, so a
// near-duplicate shadow ray can reuse the previous root bracket instead of
// re-walking the whole ray from scratch.
type IsoKey struct {
	ObjectID  uint64
	OriginKey [3]int64
	DirKey    [3]int64
}

type isoEntry struct {
	depth1, depth2 float64
}

// State is a render worker's private scratch pad.
type State struct {
	ID int

	rng *rand.Rand

	crackleCache      map[CellKey]crackleEntry
	crackleBytes      int
	crackleOrder      []CellKey
	isoCache          map[IsoKey]isoEntry
	sinCosCache       map[int32][2]float64
	functionVMScratch []float64

	Stats *stats.Block
}

// NewState builds a fresh per-thread scratch pad. seed should differ across
// workers (e.g. the worker index combined with a run-level seed) so that
// adaptive-sampling jitter does not correlate between threads.
func NewState(id int, seed uint64) *State {
	return &State{
		ID:           id,
		rng:          rand.New(rand.NewPCG(seed, uint64(id)*0x9E3779B97F4A7C15+1)),
		crackleCache: make(map[CellKey]crackleEntry),
		isoCache:     make(map[IsoKey]isoEntry),
		sinCosCache:  make(map[int32][2]float64),
		Stats:        stats.NewBlock(),
	}
}

// Float64 returns a uniform sample in [0,1) drawn from this thread's stream.
func (s *State) Float64() float64 {
	return s.rng.Float64()
}

// Uint64N returns a uniform sample in [0,n) from this thread's stream.
func (s *State) Uint64N(n uint64) uint64 {
	return s.rng.Uint64N(n)
}

// CrackleLookup returns the cached feature points for a cell, if present.
func (s *State) CrackleLookup(key CellKey) ([]Point3, bool) {
	e, ok := s.crackleCache[key]
	if !ok {
		return nil, false
	}
	return e.points, true
}

// CrackleStore inserts (or replaces) the feature points for a cell,
// evicting the oldest entries once the approximate byte budget is
// exceeded. Eviction is FIFO, not LRU: it is cheap and good enough for a
// cache whose purpose is to avoid recomputation within one coherent ray
// neighbourhood, not to model long-term reuse.
func (s *State) CrackleStore(key CellKey, points []Point3) {
	if _, exists := s.crackleCache[key]; exists {
		return
	}
	entryBytes := len(points)*24 + 32
	s.crackleCache[key] = crackleEntry{points: points, bytes: entryBytes}
	s.crackleOrder = append(s.crackleOrder, key)
	s.crackleBytes += entryBytes

	for s.crackleBytes > crackleCacheBudget && len(s.crackleOrder) > 0 {
		oldest := s.crackleOrder[0]
		s.crackleOrder = s.crackleOrder[1:]
		if e, ok := s.crackleCache[oldest]; ok {
			s.crackleBytes -= e.bytes
			delete(s.crackleCache, oldest)
		}
	}
}

// IsoLookup returns a cached root bracket for the isosurface primitive.
func (s *State) IsoLookup(key IsoKey) (float64, float64, bool) {
	e, ok := s.isoCache[key]
	if !ok {
		return 0, 0, false
	}
	return e.depth1, e.depth2, true
}

// IsoStore records a root bracket, overwriting whatever was cached for the
// same key. Unlike the crackle cache this one is unbounded in count but
// bounded in practice by distinct (object, quantized ray) pairs seen in a
// single render, which is small relative to total ray count.
func (s *State) IsoStore(key IsoKey, depth1, depth2 float64) {
	s.isoCache[key] = isoEntry{depth1: depth1, depth2: depth2}
}

// SinCos returns a cached (sin,cos) pair for an angle quantized to
// hundredths of a degree, used by the fractal pattern kinds that
// evaluate the same handful of angles very many times per pixel.
func (s *State) SinCos(quantizedDegrees int32, compute func() (float64, float64)) (float64, float64) {
	if v, ok := s.sinCosCache[quantizedDegrees]; ok {
		return v[0], v[1]
	}
	sin, cos := compute()
	s.sinCosCache[quantizedDegrees] = [2]float64{sin, cos}
	return sin, cos
}

// ScratchFloats returns a reusable []float64 of at least n capacity for the
// function-pattern VM's operand stack, growing it if necessary. Reusing
// this buffer across evaluations avoids an allocation per pattern sample.
func (s *State) ScratchFloats(n int) []float64 {
	if cap(s.functionVMScratch) < n {
		s.functionVMScratch = make([]float64, n)
	}
	return s.functionVMScratch[:n]
}
