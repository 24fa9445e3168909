package heap

import "unsafe"

// Box is a single-owner handle to one pool-allocated value of type T. Go has
// no destructors, so the RAII "drop runs the destructor" contract from the
// source design becomes an explicit Free call; callers are expected to call
// it exactly once, the same discipline as (*os.File).Close.
type Box[T any] struct {
	ptr  *T
	pool *ObjectPool
}

// NewBox allocates a T from pool and returns an owning Box over it. The
// value starts zeroed. It panics if T doesn't fit the pool's size class —
// this core's stand-in for the static error Rust's const-generic size
// classes would catch at compile time.
func NewBox[T any](pool *ObjectPool) *Box[T] {
	if unsafe.Sizeof(*new(T)) > pool.size {
		panic("heap: T does not fit this pool's size class")
	}
	obj := pool.Alloc()
	ptr := (*T)(obj)
	*ptr = *new(T)
	return &Box[T]{ptr: ptr, pool: pool}
}

// Get returns the boxed value's address. It is the caller's responsibility
// not to retain it past Free.
func (b *Box[T]) Get() *T {
	return b.ptr
}

// Free runs T's destructor (zeroing, standing in for Drop) and returns the
// underlying object to its pool. b must not be used afterward.
func (b *Box[T]) Free() {
	*b.ptr = *new(T)
	b.pool.Free(unsafe.Pointer(b.ptr))
	b.ptr = nil
}
