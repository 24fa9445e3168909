// Package nucleus wires the page allocator, heap, and ordered map into a
// single boot sequence: boot handoff -> PageAlloc.Init -> Heap.Init -> pools
// for the supported size classes. This mirrors the teacher's memInit
// (pageInit then heapInit, in sequence, with a logf call at each step) and
// KernelMain's straight-line init-then-serve structure; it performs no logic
// of its own beyond sequencing and the logging hook.
package nucleus

import (
	"nucleus/heap"
	"nucleus/ordmap"
	"nucleus/pagealloc"
)

// MemKind classifies one boot memory-map entry. The core treats Usable,
// BootloaderReclaimable, and AcpiReclaimable uniformly as usable; Reserved
// (and any other kind) is skipped.
type MemKind int

const (
	Reserved MemKind = iota
	Usable
	BootloaderReclaimable
	AcpiReclaimable
)

func (k MemKind) usable() bool {
	return k == Usable || k == BootloaderReclaimable || k == AcpiReclaimable
}

// MemMapEntry is one boot memory-map record. Base and Length must be 4 KiB
// aligned; Init panics otherwise.
type MemMapEntry struct {
	Base   uint64
	Length uint64
	Kind   MemKind
}

// BootInfo is the opaque boot handoff value the core consumes: the
// higher-half direct-map offset and the firmware/bootloader memory map.
type BootInfo struct {
	HHDMBase uintptr
	MemMap   []MemMapEntry
}

// Core wires PageAlloc, Heap, and the object pools backing OrderedMap
// instances into one boot sequence. Diagnostics are opt-in via Init's logf
// argument (nil means silent), which Init passes on to PageAlloc and Heap.
type Core struct {
	Pages *pagealloc.PageAlloc
	Heap  *heap.Heap

	pool256 *heap.ObjectPool
	logf    func(string, ...any)
}

// LogFunc replaces the diagnostic sink recorded on c. PageAlloc and Heap keep
// the sink that was passed to Init, so their logging is not changed by it.
func (c *Core) LogFunc(f func(string, ...any)) {
	c.logf = f
}

// Init lays out PageAlloc over every usable entry in boot.MemMap using
// bumpRegion as allocator metadata storage, brings up the heap from
// bootstrapChunk, and prepares the object pools OrderedMap needs. It panics
// if boot.MemMap contains no usable entries, if any entry is misaligned, if
// allocator metadata doesn't fit bumpRegion, if any region needs a bitmap
// tree taller than pagealloc.MaxHeight, or if bootstrapChunk is
// misaligned — matching the boot-time failure table in §6/§7 of the core's
// external interface.
func Init(boot BootInfo, bumpRegion []byte, bootstrapChunk []byte, logf func(string, ...any)) *Core {
	var ranges []pagealloc.MemRange
	for _, e := range boot.MemMap {
		if e.Base%pagealloc.PageSize != 0 || e.Length%pagealloc.PageSize != 0 {
			panic("nucleus: boot memory map entry is not 4 KiB aligned")
		}
		if !e.Kind.usable() {
			continue
		}
		ranges = append(ranges, pagealloc.MemRange{Base: e.Base, Length: e.Length})
	}
	if len(ranges) == 0 {
		panic("nucleus: boot memory map contains no usable entries")
	}

	if logf != nil {
		logf("nucleus: laying out page allocator over %d usable range(s)", len(ranges))
	}
	pages := pagealloc.Init(ranges, bumpRegion, logf)

	if logf != nil {
		logf("nucleus: bringing up heap, hhdm base=%#x", boot.HHDMBase)
	}
	h := heap.Init(pages, boot.HHDMBase, bootstrapChunk, logf)

	c := &Core{
		Pages: pages,
		Heap:  h,
		logf:  logf,
	}
	c.pool256 = heap.NewObjectPool(h, heap.SizeClass256)
	return c
}

// NewOrderedMap creates an OrderedMap[V] whose nodes are carved from the
// core's 256-byte object pool. heap.NewBox, which allocates the root here
// and every later node, panics if sizeof(ordmap.Node[V]) exceeds the pool's
// size class — this core's stand-in for the "static error if T's size has no
// pool" failure mode. Node[V] holds its keys, values and children as slices,
// so its size does not depend on V.
func NewOrderedMap[V any](c *Core) *ordmap.OrderedMap[V] {
	return ordmap.New[V](c.pool256)
}
