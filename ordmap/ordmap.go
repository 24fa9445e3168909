// Package ordmap implements an order-8 B-tree keyed by 64-bit integers,
// built on top of heap's owned-box primitive. It supports point lookup,
// mutable lookup, floor search, insert, and remove.
package ordmap

import (
	"sort"

	"nucleus/heap"
)

// Order is the maximum number of keys a node may hold.
const Order = 8

// MinKeys is the minimum number of keys a non-root node may hold after an
// operation completes: ceil((Order+1)/2) - 1.
const MinKeys = 4

// heapBox shortens the recurring *heap.Box[Node[V]] child-pointer type.
type heapBox[V any] = heap.Box[Node[V]]

// Node is one B-tree node: up to Order keys/values in ascending order, and
// for internal nodes, up to Order+1 owned child boxes. Leaves hold no
// children.
type Node[V any] struct {
	keys     []uint64
	values   []V
	children []*heap.Box[Node[V]]
}

func (n *Node[V]) isLeaf() bool {
	return len(n.children) == 0
}

// search returns the index of key in n.keys if present, and the index it
// would be inserted at (== the child to descend into) otherwise.
func (n *Node[V]) search(key uint64) (idx int, found bool) {
	i := sort.Search(len(n.keys), func(i int) bool { return n.keys[i] >= key })
	if i < len(n.keys) && n.keys[i] == key {
		return i, true
	}
	return i, false
}

// OrderedMap is an in-memory B-tree of order 8. It has no internal
// synchronization: it is single-writer by construction, and must be wrapped
// by an upper-layer lock if shared across callers.
type OrderedMap[V any] struct {
	pool *heap.ObjectPool
	root *heap.Box[Node[V]]
}

// New creates an empty map whose nodes are allocated from pool.
func New[V any](pool *heap.ObjectPool) *OrderedMap[V] {
	m := &OrderedMap[V]{pool: pool}
	m.root = heap.NewBox[Node[V]](pool)
	return m
}

// Get returns the value stored for key, if any.
func (m *OrderedMap[V]) Get(key uint64) (V, bool) {
	n := m.root.Get()
	for {
		idx, found := n.search(key)
		if found {
			return n.values[idx], true
		}
		if n.isLeaf() {
			var zero V
			return zero, false
		}
		n = n.children[idx].Get()
	}
}

// GetMut returns a pointer to the value stored for key, if any. The pointer
// is valid until the next structural mutation of the map.
func (m *OrderedMap[V]) GetMut(key uint64) (*V, bool) {
	n := m.root.Get()
	for {
		idx, found := n.search(key)
		if found {
			return &n.values[idx], true
		}
		if n.isLeaf() {
			return nil, false
		}
		n = n.children[idx].Get()
	}
}

// GetNearestFloor returns the key/value pair with the largest key <= query,
// or false if no such pair exists.
func (m *OrderedMap[V]) GetNearestFloor(query uint64) (uint64, V, bool) {
	var bestKey uint64
	var bestVal V
	haveBest := false

	n := m.root.Get()
	for {
		idx, found := n.search(query)
		if found {
			return n.keys[idx], n.values[idx], true
		}
		if idx > 0 {
			bestKey, bestVal, haveBest = n.keys[idx-1], n.values[idx-1], true
		}
		if n.isLeaf() {
			return bestKey, bestVal, haveBest
		}
		n = n.children[idx].Get()
	}
}
