package ordmap

import (
	"testing"
	"unsafe"

	"nucleus/heap"
	"nucleus/pagealloc"
)

func newTestMap[V any](t *testing.T) *OrderedMap[V] {
	t.Helper()
	pages := uint64(4096)
	words := uint64(65) // enough for a 4096-page single region tree
	pa := pagealloc.Init([]pagealloc.MemRange{{Base: 0, Length: pages * pagealloc.PageSize}}, make([]byte, words*8), nil)

	buf := make([]byte, heap.ChunkSize*2)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	pad := (heap.ChunkSize - addr%heap.ChunkSize) % heap.ChunkSize
	bootstrap := buf[pad : pad+heap.ChunkSize]

	h := heap.Init(pa, 0, bootstrap, nil)
	pool := heap.NewObjectPool(h, heap.SizeClass256)
	return New[V](pool)
}

func TestInsertGet(t *testing.T) {
	m := newTestMap[string](t)
	m.Insert(10, "a")
	m.Insert(20, "b")

	if v, ok := m.Get(10); !ok || v != "a" {
		t.Fatalf("Get(10) = (%q,%v), want (a,true)", v, ok)
	}
	if _, ok := m.Get(99); ok {
		t.Fatal("Get(99) should miss")
	}
}

func TestSplitAtRoot(t *testing.T) {
	m := newTestMap[int](t)
	for k := 1; k <= 9; k++ {
		m.Insert(uint64(k), k)
	}

	root := m.root.Get()
	if len(root.keys) != 1 || root.keys[0] != 5 {
		t.Fatalf("root keys = %v, want [5]", root.keys)
	}
	left := root.children[0].Get()
	right := root.children[1].Get()
	if !equalKeys(left.keys, []uint64{1, 2, 3, 4}) {
		t.Fatalf("left keys = %v, want [1 2 3 4]", left.keys)
	}
	if !equalKeys(right.keys, []uint64{6, 7, 8, 9}) {
		t.Fatalf("right keys = %v, want [6 7 8 9]", right.keys)
	}
}

// TestRemoveRotateFromRight builds a three-child root by hand (rather than
// via Insert) so the rotate-from-right path can be driven directly: a left
// child at exactly MinKeys, a middle sibling with one more than MinKeys to
// spare, and a right child untouched by the rebalance.
func TestRemoveRotateFromRight(t *testing.T) {
	m := newTestMap[int](t)

	root := m.root.Get()
	pool := m.pool
	left := heap.NewBox[Node[int]](pool)
	*left.Get() = Node[int]{keys: []uint64{10, 20, 30, 35}, values: []int{10, 20, 30, 35}}
	mid := heap.NewBox[Node[int]](pool)
	*mid.Get() = Node[int]{keys: []uint64{50, 60, 70, 75, 77}, values: []int{50, 60, 70, 75, 77}}
	right := heap.NewBox[Node[int]](pool)
	*right.Get() = Node[int]{keys: []uint64{90, 100, 110, 115}, values: []int{90, 100, 110, 115}}

	*root = Node[int]{
		keys:     []uint64{40, 80},
		values:   []int{40, 80},
		children: []*heapBox[int]{left, mid, right},
	}

	v, ok := m.Remove(10)
	if !ok || v != 10 {
		t.Fatalf("Remove(10) = (%d,%v), want (10,true)", v, ok)
	}

	root = m.root.Get()
	if !equalKeys(root.keys, []uint64{50, 80}) {
		t.Fatalf("root keys = %v, want [50 80]", root.keys)
	}
	gotLeft := root.children[0].Get()
	gotMid := root.children[1].Get()
	gotRight := root.children[2].Get()
	if !equalKeys(gotLeft.keys, []uint64{20, 30, 35, 40}) {
		t.Fatalf("left keys = %v, want [20 30 35 40]", gotLeft.keys)
	}
	if !equalKeys(gotMid.keys, []uint64{60, 70, 75, 77}) {
		t.Fatalf("mid keys = %v, want [60 70 75 77]", gotMid.keys)
	}
	if !equalKeys(gotRight.keys, []uint64{90, 100, 110, 115}) {
		t.Fatalf("right keys = %v, want unchanged", gotRight.keys)
	}
}

// TestRemoveMergesWhenNoSiblingCanSpare exercises the merge path: the
// underflowed child's only sibling sits exactly at MinKeys, so the only
// option is to fuse the underflowed child, the separator, and that sibling.
func TestRemoveMergesWhenNoSiblingCanSpare(t *testing.T) {
	m := newTestMap[int](t)

	root := m.root.Get()
	pool := m.pool
	left := heap.NewBox[Node[int]](pool)
	*left.Get() = Node[int]{keys: []uint64{10, 20, 30, 35}, values: []int{10, 20, 30, 35}}
	right := heap.NewBox[Node[int]](pool)
	*right.Get() = Node[int]{keys: []uint64{50, 60, 70, 75}, values: []int{50, 60, 70, 75}}

	*root = Node[int]{
		keys:     []uint64{40},
		values:   []int{40},
		children: []*heapBox[int]{left, right},
	}

	v, ok := m.Remove(10)
	if !ok || v != 10 {
		t.Fatalf("Remove(10) = (%d,%v), want (10,true)", v, ok)
	}

	root = m.root.Get()
	if !root.isLeaf() {
		t.Fatal("merging the only two children should collapse the root into a leaf")
	}
	want := []uint64{20, 30, 35, 40, 50, 60, 70, 75}
	if !equalKeys(root.keys, want) {
		t.Fatalf("root keys = %v, want %v", root.keys, want)
	}
}

func TestGetNearestFloor(t *testing.T) {
	m := newTestMap[string](t)
	m.Insert(10, "a")
	m.Insert(20, "b")
	m.Insert(40, "c")

	cases := []struct {
		query   uint64
		wantKey uint64
		wantVal string
		wantOK  bool
	}{
		{25, 20, "b", true},
		{10, 10, "a", true},
		{5, 0, "", false},
		{100, 40, "c", true},
	}
	for _, c := range cases {
		k, v, ok := m.GetNearestFloor(c.query)
		if ok != c.wantOK {
			t.Fatalf("GetNearestFloor(%d) ok = %v, want %v", c.query, ok, c.wantOK)
		}
		if ok && (k != c.wantKey || v != c.wantVal) {
			t.Fatalf("GetNearestFloor(%d) = (%d,%q), want (%d,%q)", c.query, k, v, c.wantKey, c.wantVal)
		}
	}
}

func TestInsertThenRemoveIsStructurallyClean(t *testing.T) {
	m := newTestMap[int](t)
	m.Insert(1, 100)
	v, ok := m.Remove(1)
	if !ok || v != 100 {
		t.Fatalf("Remove(1) = (%d,%v), want (100,true)", v, ok)
	}
	root := m.root.Get()
	if len(root.keys) != 0 || !root.isLeaf() {
		t.Fatal("map should be back to an empty leaf root")
	}
}

func equalKeys(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
