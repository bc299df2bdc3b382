package shape

import "sync"

// IStack is a pooled, depth-sorted-by-caller container of Intersection
// records. Every AllIntersections call must leave the stack balanced: the
// caller's depth plus exactly the hits that call intentionally pushed,
// with cleanup mandatory on any early return (spec §4.3, testable
// property 1).
type IStack struct {
	records []Intersection
}

var istackPool = sync.Pool{
	New: func() any { return &IStack{records: make([]Intersection, 0, 16)} },
}

// AcquireIStack returns an empty stack from the pool.
func AcquireIStack() *IStack {
	s := istackPool.Get().(*IStack)
	s.records = s.records[:0]
	return s
}

// ReleaseIStack clears the stack and returns it to the pool.
func ReleaseIStack(s *IStack) {
	s.records = s.records[:0]
	istackPool.Put(s)
}

func (s *IStack) Push(i Intersection) {
	s.records = append(s.records, i)
}

func (s *IStack) Pop() (Intersection, bool) {
	if len(s.records) == 0 {
		return Intersection{}, false
	}
	top := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return top, true
}

func (s *IStack) Top() (Intersection, bool) {
	if len(s.records) == 0 {
		return Intersection{}, false
	}
	return s.records[len(s.records)-1], true
}

func (s *IStack) Len() int {
	return len(s.records)
}

// Truncate drops every record past index n, used to recover a balanced
// stack on an early return after a partial push.
func (s *IStack) Truncate(n int) {
	s.records = s.records[:n]
}

// Slice returns the records pushed since mark (typically s.Len() at the
// start of a call), without removing them.
func (s *IStack) Slice(mark int) []Intersection {
	return s.records[mark:]
}

// All returns every record currently on the stack.
func (s *IStack) All() []Intersection {
	return s.records
}

// SortByDepth orders the records pushed since mark by ascending Depth.
// Leaves do not sort (spec: "Hits are not sorted by the leaf; the caller
// sorts when needed"); the top-level trace calls this itself, and CSG
// compounds leave the hits they push unsorted.
func (s *IStack) SortByDepth(mark int) {
	recs := s.records[mark:]
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].Depth < recs[j-1].Depth; j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}
