package median

import "github.com/tidwall/btree"

type entry struct {
	deg    int
	vertex string
}

func entryLess(a, b entry) bool {
	if a.deg != b.deg {
		return a.deg < b.deg
	}
	return a.vertex < b.vertex
}

// Tracker keeps every vertex ordered by (degree, name) in a counted B-tree,
// so a degree change and a median query are both O(log n).
// It implements graph.DegreeObserver.
type Tracker struct {
	tree *btree.BTreeG[entry]
}

func NewTracker() *Tracker {
	return &Tracker{
		tree: btree.NewBTreeGOptions(entryLess, btree.Options{NoLocks: true}),
	}
}

func (t *Tracker) DegreeChanged(vertex string, from, to int) {
	if from > 0 {
		t.tree.Delete(entry{deg: from, vertex: vertex})
	}
	if to > 0 {
		t.tree.Set(entry{deg: to, vertex: vertex})
	}
}

func (t *Tracker) Cleared() { t.tree.Clear() }

func (t *Tracker) Len() int { return t.tree.Len() }

// Median equals Of over the tracked degrees.
func (t *Tracker) Median() float64 {
	n := t.tree.Len()
	if n == 0 {
		return 0
	}
	hi, _ := t.tree.GetAt(n / 2)
	lo := hi
	if n%2 == 0 {
		lo, _ = t.tree.GetAt(n/2 - 1)
	}
	return mid(lo.deg, hi.deg, n)
}
