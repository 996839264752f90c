package graph

// Key identifies an undirected payment relationship.
// A <= B always holds, so Key{} equality is symmetric in the two participants
// and the struct can be used directly as a map key.
type Key struct {
	A string
	B string
}

// NewKey orders the two participants lexicographically.
func NewKey(a, b string) Key {
	if b < a {
		a, b = b, a
	}
	return Key{A: a, B: b}
}

func (k Key) String() string { return k.A + "<->" + k.B }

// stamp is an entry of the eviction index: edges ordered by last-seen time.
type stamp struct {
	ts  int64
	key Key
}

func stampLess(x, y stamp) bool {
	if x.ts != y.ts {
		return x.ts < y.ts
	}
	if x.key.A != y.key.A {
		return x.key.A < y.key.A
	}
	return x.key.B < y.key.B
}
