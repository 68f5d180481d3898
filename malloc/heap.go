// Functions and methods are not thread safe.

package malloc

import "unsafe"

import s "github.com/prataprc/gosettings"

import "github.com/bnclabs/pbheap/api"
import "github.com/bnclabs/pbheap/log"
import "github.com/bnclabs/pbheap/mmap"

// header for each block's metadata, placed immediately before the
// payload. size records the useful portion of the block in bytes,
// exactly as requested, written once when the block is created and
// never mutated - a shrinking Realloc leaves it alone.
type header struct {
	size int64
}

const headersize = int64(unsafe.Sizeof(header{}))

const align = uintptr(Alignment)

// Heap is a single span of reserved address space that fills up
// strictly forward from a free cursor. Blocks are laid out as
// padding + header + payload; the padding only exists to land the
// payload on an Alignment boundary. The cursor never moves backward
// and address ranges handed out are never handed out again.
type Heap struct {
	start uintptr // first byte of the reserved region
	end   uintptr // one past the last usable byte
	free  uintptr // next unused byte, start <= free <= end

	region []byte // the reservation, held for Release

	// configuration
	capacity int64 // size of the address-space reservation

	// statistics
	nblocks    int64 // blocks created since the region came up
	mallocated int64 // sum of payload bytes across created blocks

	released bool
}

var _ api.Mallocer = (*Heap)(nil)

// NewHeap create a new heap. The reservation itself happens lazily
// on the first call to any of the heap's entry points, not here.
func NewHeap(setts s.Settings) *Heap {
	capacity := setts.Int64("capacity")
	if capacity <= 0 {
		panicerr("capacity %v should be positive", capacity)
	} else if capacity > Maxheapsize {
		panicerr("capacity %v exceeds %v", capacity, Maxheapsize)
	}
	return &Heap{capacity: capacity}
}

// initregion reserve the region backing this heap, first time around.
// Idempotent, called by every entry point. A failed reservation is
// fatal: without a region no allocation can ever succeed.
func (heap *Heap) initregion() {
	if heap.released {
		panicerr("heap released")
	} else if heap.start != 0 {
		return
	}
	region, err := mmap.Reserve(int(heap.capacity))
	if err != nil {
		log.Fatalf("malloc: reserving %v byte heap region: %v\n", heap.capacity, err)
	}
	heap.region = region
	heap.start = uintptr(unsafe.Pointer(&region[0]))
	heap.end = heap.start + uintptr(heap.capacity)
	heap.free = heap.start
	tracef("malloc: heap region %x-%x initialized\n", heap.start, heap.end)
}

//---- operations

// Alloc implement api.Mallocer{} interface. Expands into the region
// via pointer bumping. Returns nil when size is zero or when the
// request would overrun the region's end; in either case the heap is
// untouched except for the alignment padding, which stays consumed.
func (heap *Heap) Alloc(size int64) unsafe.Pointer {
	if size < 0 {
		panicerr("Alloc size %v is negative", size)
	}
	heap.initregion()

	// Keep free sizeof(header) short of a double-word boundary, so
	// that the payload, not the header, lands on the boundary. The
	// padding stays consumed, but the cursor never crosses end -
	// otherwise end-free below would wrap and a block would commit
	// outside the region.
	padding := (uintptr(headersize) + align - heap.free%align) % align
	if avail := heap.end - heap.free; padding > avail {
		padding = avail
	}
	heap.free += padding

	if size == 0 {
		return nil
	}
	if uint64(size)+uint64(headersize) > uint64(heap.end-heap.free) {
		tracef("malloc: alloc %v bytes: heap exhausted\n", size)
		return nil
	}

	headaddr, payload := heap.free, heap.free+uintptr(headersize)
	heap.free += uintptr(headersize) + uintptr(size)
	(*header)(unsafe.Pointer(headaddr)).size = size
	heap.nblocks++
	heap.mallocated += size
	tracef("malloc: block %v, %v bytes at %x\n", heap.nblocks, size, payload)
	return unsafe.Pointer(payload)
}

// Free implement api.Mallocer{} interface. A no-op by policy: blocks
// are never reclaimed or re-used. Accepts nil, and does not look at
// ptr at all in release builds; debug builds panic when ptr lies
// outside the heap or is misaligned.
func (heap *Heap) Free(ptr unsafe.Pointer) {
	if ptr != nil {
		checkptr(heap, ptr)
	}
	tracef("free(): %x\n", uintptr(ptr))
}

// Allocz implement api.Mallocer{} interface. Allocate a block of
// count*size bytes and zero its contents. The multiplication is
// unchecked beyond the platform integer. A nil result from Alloc is
// propagated without touching memory.
func (heap *Heap) Allocz(count, size int64) unsafe.Pointer {
	total := count * size
	ptr := heap.Alloc(total)
	if ptr != nil {
		block := unsafe.Slice((*byte)(ptr), total)
		for i := range block {
			block[i] = 0
		}
	}
	return ptr
}

// Realloc implement api.Mallocer{} interface. Resize the block at
// ptr to size bytes:
//
//	nil ptr          : same as Alloc(size).
//	size zero        : same as Free(ptr), returns nil.
//	size fits block  : ptr returned unchanged, header untouched.
//	size grows block : new block allocated, the old block's recorded
//	                   size worth of bytes copied over, old block
//	                   freed (a no-op). When the new allocation fails
//	                   returns nil and the old block stays valid.
func (heap *Heap) Realloc(ptr unsafe.Pointer, size int64) unsafe.Pointer {
	if ptr == nil {
		return heap.Alloc(size)
	}
	if size == 0 {
		heap.Free(ptr)
		return nil
	}
	checkptr(heap, ptr)

	oldsize := (*header)(unsafe.Pointer(uintptr(ptr) - uintptr(headersize))).size
	if size <= oldsize {
		return ptr
	}

	newptr := heap.Alloc(size)
	if newptr == nil {
		return nil
	}
	copy(unsafe.Slice((*byte)(newptr), size), unsafe.Slice((*byte)(ptr), oldsize))
	heap.Free(ptr)
	return newptr
}

// Chunklen implement api.Mallocer{} interface. Return the usable
// length of the block at ptr, the exact size requested when the
// block was created.
func (heap *Heap) Chunklen(ptr unsafe.Pointer) int64 {
	checkptr(heap, ptr)
	return (*header)(unsafe.Pointer(uintptr(ptr) - uintptr(headersize))).size
}

// Release implement api.Mallocer{} interface. Return the heap's
// reservation to the OS. The default contract holds the region for
// the life of the process; Release exists for embedders that own the
// Heap value. Any use of the heap after Release panics.
func (heap *Heap) Release() {
	if heap.released {
		panicerr("heap released")
	}
	if heap.region != nil {
		if err := mmap.Release(heap.region); err != nil {
			log.Fatalf("malloc: releasing heap region: %v\n", err)
		}
	}
	heap.start, heap.end, heap.free = 0, 0, 0
	heap.region, heap.released = nil, true
}

//---- statistics

// Info implement api.Mallocer{} interface. capacity is the
// configured reservation size, heap the bytes actually reserved
// (zero until first use), alloc the sum of payload bytes handed out
// and overhead the header and padding bytes consumed alongside them.
func (heap *Heap) Info() (capacity, heapmem, alloc, overhead int64) {
	capacity = heap.capacity
	if heap.start != 0 {
		heapmem = heap.capacity
		used := int64(heap.free - heap.start)
		alloc = heap.mallocated
		overhead = used - alloc
	}
	return
}

// Utilization implement api.Mallocer{} interface. Percentage of the
// reserved region consumed so far.
func (heap *Heap) Utilization() float64 {
	if heap.start == 0 {
		return 0
	}
	return (float64(heap.free-heap.start) / float64(heap.capacity)) * 100
}
