// Package api holds the interfaces implemented by pbheap allocators.
package api

import "unsafe"

// Mallocer interface for custom memory management. Semantically
// equivalent to the four standard dynamic-memory primitives, plus
// accounting.
type Mallocer interface {
	// Alloc a block of `n` bytes. Allocated blocks are always
	// double-word aligned. Returns nil for a zero-size request and
	// when the heap is exhausted.
	Alloc(n int64) unsafe.Pointer

	// Allocz a block of count*size bytes, zero filled. Propagates a
	// nil allocation unchanged.
	Allocz(count, size int64) unsafe.Pointer

	// Realloc the block at ptr to n bytes, in place when n fits
	// within the block, else by allocate-copy-abandon. Accepts nil
	// ptr, in which case it behaves like Alloc.
	Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer

	// Chunklen return the length of the block usable by application,
	// as recorded when the block was created.
	Chunklen(ptr unsafe.Pointer) int64

	// Free the block at ptr. Accepts nil. pbheap heaps never reclaim
	// freed blocks.
	Free(ptr unsafe.Pointer)

	// Release the heap and its address-space reservation.
	Release()

	// Info of memory accounting for this heap.
	Info() (capacity, heap, alloc, overhead int64)

	// Utilization percentage of the reserved region consumed.
	Utilization() float64
}
