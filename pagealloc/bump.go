package pagealloc

import (
	"sync/atomic"
	"unsafe"
)

// bump is the two-pass bump allocator PageAlloc.Init uses to lay out its
// own metadata. The mock pass (nil backing) only accumulates the required
// byte offset; the actual pass carves real []atomic.Uint64 overlays out of
// the caller-supplied backing store. Both passes must issue the same
// sequence of alignTo/alloc calls so their offsets agree.
type bump struct {
	backing []byte
	offset  uintptr
}

func (b *bump) alignTo(align uintptr) {
	b.offset = (b.offset + align - 1) &^ (align - 1)
}

// allocWordsMock reserves space for n words without touching memory.
func (b *bump) allocWordsMock(n uint64) {
	b.alignTo(unsafe.Alignof(atomic.Uint64{}))
	b.offset += uintptr(n) * unsafe.Sizeof(atomic.Uint64{})
}

// allocWords carves n words out of the backing store and returns them as an
// overlay slice of atomic.Uint64, zero-initialized.
func (b *bump) allocWords(n uint64) []atomic.Uint64 {
	b.alignTo(unsafe.Alignof(atomic.Uint64{}))
	if n == 0 {
		return nil
	}
	start := b.offset
	size := uintptr(n) * unsafe.Sizeof(atomic.Uint64{})
	b.offset = start + size

	raw := b.backing[start:b.offset]
	tree := unsafe.Slice((*atomic.Uint64)(unsafe.Pointer(&raw[0])), n)
	for i := range tree {
		tree[i].Store(0)
	}
	return tree
}
