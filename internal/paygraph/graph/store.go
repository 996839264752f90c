package graph

import (
	"fmt"

	"github.com/tidwall/btree"
)

// DegreeObserver is notified of every vertex degree change.
// from == 0 means the vertex is new; to == 0 means it was removed.
type DegreeObserver interface {
	DegreeChanged(vertex string, from, to int)
	Cleared()
}

// Store holds the windowed payment graph of a single stream.
// It is not safe for concurrent use: one processing loop owns it.
type Store struct {
	maxTs int64

	edges map[Key]int64  // edge -> last seen ts
	deg   map[string]int // vertex -> degree, only > 0 kept

	// eviction index, ordered by ts so a pass only touches expired edges
	byTs *btree.BTreeG[stamp]

	obs DegreeObserver
}

func NewStore(capHint int, obs DegreeObserver) *Store {
	if capHint < 0 {
		capHint = 0
	}
	return &Store{
		edges: make(map[Key]int64, capHint),
		deg:   make(map[string]int, capHint),
		byTs:  btree.NewBTreeGOptions(stampLess, btree.Options{NoLocks: true}),
		obs:   obs,
	}
}

func (s *Store) Empty() bool      { return len(s.edges) == 0 }
func (s *Store) MaxTs() int64     { return s.maxTs }
func (s *Store) NumEdges() int    { return len(s.edges) }
func (s *Store) NumVertices() int { return len(s.deg) }

func (s *Store) EdgeTs(k Key) (int64, bool) {
	ts, ok := s.edges[k]
	return ts, ok
}

func (s *Store) Degree(v string) (int, bool) {
	d, ok := s.deg[v]
	return d, ok
}

// Degrees returns a copy of the current degree multiset (unordered).
func (s *Store) Degrees() []int {
	out := make([]int, 0, len(s.deg))
	for _, d := range s.deg {
		out = append(out, d)
	}
	return out
}

// Reset drops everything and starts a new graph holding the single edge k.
func (s *Store) Reset(k Key, ts int64) {
	clear(s.edges)
	clear(s.deg)
	s.byTs.Clear()
	if s.obs != nil {
		s.obs.Cleared()
	}
	s.insert(k, ts)
	s.maxTs = ts
}

// Advance moves the watermark forward. It never moves it back.
func (s *Store) Advance(ts int64) {
	if ts > s.maxTs {
		s.maxTs = ts
	}
}

// Upsert inserts k, or refreshes its timestamp when ts is strictly more
// recent than the stored one. An older ts for an existing edge is a no-op.
func (s *Store) Upsert(k Key, ts int64) (inserted, updated bool) {
	old, ok := s.edges[k]
	if !ok {
		s.insert(k, ts)
		return true, false
	}
	if ts <= old {
		return false, false
	}
	s.byTs.Delete(stamp{ts: old, key: k})
	s.edges[k] = ts
	s.byTs.Set(stamp{ts: ts, key: k})
	return false, true
}

// EvictOlderThan removes every edge with anchor-ts >= width and returns how
// many were removed.
func (s *Store) EvictOlderThan(anchor, width int64) int {
	n := 0
	for {
		st, ok := s.byTs.Min()
		if !ok || anchor-st.ts < width {
			break
		}
		s.byTs.PopMin()
		delete(s.edges, st.key)
		s.decr(st.key.A)
		s.decr(st.key.B)
		n++
	}
	return n
}

func (s *Store) insert(k Key, ts int64) {
	s.edges[k] = ts
	s.byTs.Set(stamp{ts: ts, key: k})
	s.incr(k.A)
	s.incr(k.B)
}

func (s *Store) incr(v string) {
	d := s.deg[v]
	s.deg[v] = d + 1
	if s.obs != nil {
		s.obs.DegreeChanged(v, d, d+1)
	}
}

func (s *Store) decr(v string) {
	d, ok := s.deg[v]
	if !ok {
		// 索引和边集不同步，属于 bug
		panic(fmt.Sprintf("graph: decrement of unknown vertex %q", v))
	}
	if d > 1 {
		s.deg[v] = d - 1
	} else {
		delete(s.deg, v)
	}
	if s.obs != nil {
		s.obs.DegreeChanged(v, d, d-1)
	}
}

// Check verifies the store invariants against a window of the given width and
// returns the first violation found.
func (s *Store) Check(width int64) error {
	if len(s.edges) != s.byTs.Len() {
		return fmt.Errorf("graph: %d edges but %d index entries", len(s.edges), s.byTs.Len())
	}
	want := make(map[string]int, len(s.deg))
	for k, ts := range s.edges {
		if s.maxTs-ts >= width || ts > s.maxTs {
			return fmt.Errorf("graph: edge %s ts=%d outside window (max=%d width=%d)", k, ts, s.maxTs, width)
		}
		if _, ok := s.byTs.Get(stamp{ts: ts, key: k}); !ok {
			return fmt.Errorf("graph: edge %s ts=%d missing from index", k, ts)
		}
		want[k.A]++
		want[k.B]++
	}
	if len(want) != len(s.deg) {
		return fmt.Errorf("graph: %d vertices have edges but %d are stored", len(want), len(s.deg))
	}
	for v, d := range s.deg {
		if d < 1 {
			return fmt.Errorf("graph: vertex %q kept with degree %d", v, d)
		}
		if want[v] != d {
			return fmt.Errorf("graph: vertex %q degree=%d incident=%d", v, d, want[v])
		}
	}
	return nil
}
