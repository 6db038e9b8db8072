package learner

import "math/rand/v2"

// index keeps learned weights both by key and in rank order, so the
// strongest positive and negative corrections can be read without sorting.
//
// Ordering: weight DESC, then key ASC. In-order traversal walks from the
// largest weight to the smallest.
type index struct {
	root  *node
	byKey map[string]float64
}

// treap node
type node struct {
	key   string
	w     float64
	prio  uint64
	left  *node
	right *node
	size  int
}

// Entry is one learned weight.
type Entry struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

func newIndex() *index {
	return &index{byKey: make(map[string]float64)}
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aW, aKey) ranks ahead of (bW, bKey).
func before(aW float64, aKey string, bW float64, bKey string) bool {
	if aW != bW {
		return aW > bW
	}
	return aKey < bKey
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key string, w float64) *node {
	if n == nil {
		return &node{key: key, w: w, prio: rand.Uint64(), size: 1}
	}
	if before(w, key, n.w, n.key) {
		n.left = insert(n.left, key, w)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, w)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, key string, w float64) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.key == key && n.w == w:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, key, w)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, key, w)
		}
	case before(w, key, n.w, n.key):
		n.left = remove(n.left, key, w)
	default:
		n.right = remove(n.right, key, w)
	}
	fix(n)
	return n
}

func (ix *index) get(key string) (float64, bool) {
	w, ok := ix.byKey[key]
	return w, ok
}

// set overwrites the weight for key.
func (ix *index) set(key string, w float64) {
	if old, ok := ix.byKey[key]; ok {
		if old == w {
			return
		}
		ix.root = remove(ix.root, key, old)
	}
	ix.byKey[key] = w
	ix.root = insert(ix.root, key, w)
}

func (ix *index) len() int { return nsize(ix.root) }

// top returns up to n entries from the largest weight down.
func (ix *index) top(n int) []Entry {
	out := make([]Entry, 0, min(n, ix.len()))
	var walk func(*node)
	walk = func(nd *node) {
		if nd == nil || len(out) >= n {
			return
		}
		walk(nd.left)
		if len(out) < n {
			out = append(out, Entry{Key: nd.key, Weight: nd.w})
		}
		walk(nd.right)
	}
	walk(ix.root)
	return out
}

// bottom returns up to n entries from the smallest weight up.
func (ix *index) bottom(n int) []Entry {
	out := make([]Entry, 0, min(n, ix.len()))
	var walk func(*node)
	walk = func(nd *node) {
		if nd == nil || len(out) >= n {
			return
		}
		walk(nd.right)
		if len(out) < n {
			out = append(out, Entry{Key: nd.key, Weight: nd.w})
		}
		walk(nd.left)
	}
	walk(ix.root)
	return out
}

// snapshot copies the key map.
func (ix *index) snapshot() map[string]float64 {
	out := make(map[string]float64, len(ix.byKey))
	for k, v := range ix.byKey {
		out[k] = v
	}
	return out
}

// reset replaces the contents with m.
func (ix *index) reset(m map[string]float64) {
	ix.root = nil
	ix.byKey = make(map[string]float64, len(m))
	for k, v := range m {
		ix.set(k, v)
	}
}
