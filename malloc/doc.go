// Package malloc supplies a pointer-bumping heap allocator, with a
// limited scope:
//
//   - Types and Functions exported by this package are not thread safe.
//   - The heap grows strictly forward from a free cursor; freed blocks
//     are never re-used and Free is a no-op by policy. Total memory
//     consumption is bounded by the region size and the sum of all
//     allocations ever made, not the sum of live allocations. Use it
//     for workloads where allocation volume is bounded and latency
//     matters more than footprint.
//   - Memory blocks allocated by this package are always double-word
//     (16 byte) aligned.
//   - The address space backing a heap is reserved from the OS once,
//     lazily, on the first call to any entry point, and is normally
//     held for the life of the process. It is never grown or shrunk.
//
// A Heap is empty to begin with and fills up as allocations are
// requested. Every block carries a fixed header immediately before
// the application-usable payload, recording the exact size requested
// for that block. Realloc consults the header to decide between
// returning the block unchanged and allocate-copy-abandon.
//
// Allocation failures are signaled, not thrown: a request that would
// overrun the region, or a zero-size request, returns nil. The only
// fatal condition is the initial reservation failing, which is
// reported through the log package and terminates the process.
package malloc

// TODO: wrap the commit of the free cursor behind an atomic CAS loop,
// as an opt-in, for callers that want to share one heap across
// goroutines.
