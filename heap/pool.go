package heap

import "unsafe"

// SizeClass256 is the only object size class this core currently supports;
// NewObjectPool panics for any other size (spec calls for "a small
// enumerated set").
const SizeClass256 = 256

var supportedSizeClasses = [...]uintptr{SizeClass256}

func isSupportedSizeClass(size uintptr) bool {
	for _, s := range supportedSizeClasses {
		if s == size {
			return true
		}
	}
	return false
}

// ObjectPool allocates fixed-size objects out of slots pulled from a Heap.
// Free objects form a singly-linked list threaded through their own first
// word; the per-slot metadata word (see UpdateSlotMetadata) counts live
// objects so a slot can be returned to the heap once it holds none.
type ObjectPool struct {
	heap     *Heap
	size     uintptr
	freeList unsafe.Pointer
}

// NewObjectPool creates a pool for objects of the given size. It panics if
// size is not one of the supported size classes.
func NewObjectPool(h *Heap, size uintptr) *ObjectPool {
	if !isSupportedSizeClass(size) {
		panic("heap: unsupported object size class")
	}
	return &ObjectPool{heap: h, size: size}
}

// Alloc returns a pointer to size uninitialized bytes.
func (p *ObjectPool) Alloc() unsafe.Pointer {
	var obj unsafe.Pointer
	if p.freeList == nil {
		obj = p.newChunk()
	} else {
		obj = p.freeList
		p.freeList = *(*unsafe.Pointer)(obj)
	}
	UpdateSlotMetadata(obj, func(m *uint32) { *m++ })
	return obj
}

// Free returns a previously allocated object to the pool. When the owning
// slot's live count drops to zero, the slot's objects are unthreaded from
// the freelist and the slot is returned to the heap.
func (p *ObjectPool) Free(obj unsafe.Pointer) {
	var live uint32
	UpdateSlotMetadata(obj, func(m *uint32) {
		*m--
		live = *m
	})

	*(*unsafe.Pointer)(obj) = p.freeList
	p.freeList = obj

	if live == 0 {
		p.reclaimSlot(obj)
	}
}

// newChunk pulls a fresh slot from the heap, threads all but the last of its
// objects onto the freelist, and returns the last object ready to use for
// the allocation that triggered the new chunk.
func (p *ObjectPool) newChunk() unsafe.Pointer {
	slot := p.heap.AllocSlot()
	objsPerSlot := uintptr(SlotSize) / p.size

	for i := uintptr(0); i < objsPerSlot-2; i++ {
		obj := unsafe.Add(slot, i*p.size)
		next := unsafe.Add(slot, (i+1)*p.size)
		*(*unsafe.Pointer)(obj) = next
	}
	secondLast := unsafe.Add(slot, (objsPerSlot-2)*p.size)
	*(*unsafe.Pointer)(secondLast) = p.freeList
	p.freeList = slot

	return unsafe.Add(slot, (objsPerSlot-1)*p.size)
}

// reclaimSlot unthreads every freelist entry belonging to obj's slot, then
// returns the slot to the heap.
func (p *ObjectPool) reclaimSlot(obj unsafe.Pointer) {
	slotBase := uintptr(obj) &^ (SlotSize - 1)

	var head unsafe.Pointer
	tail := &head
	for cur := p.freeList; cur != nil; {
		next := *(*unsafe.Pointer)(cur)
		if uintptr(cur)&^(SlotSize-1) != slotBase {
			*tail = cur
			tail = (*unsafe.Pointer)(cur)
		}
		cur = next
	}
	*tail = nil
	p.freeList = head

	p.heap.FreeSlot(unsafe.Pointer(slotBase))
}
