//go:build debug

package malloc

import "unsafe"

import "github.com/bnclabs/pbheap/log"

func tracef(fmsg string, args ...interface{}) {
	log.Debugf(fmsg, args...)
}

// checkptr validates a pointer's provenance: it must fall within the
// reserved region, leave room for a header, and sit on an Alignment
// boundary. Release builds compile this away; passing a pointer not
// obtained from this heap is undefined behavior there.
func checkptr(heap *Heap, ptr unsafe.Pointer) {
	addr := uintptr(ptr)
	if addr < heap.start+uintptr(headersize) || addr >= heap.end {
		panicerr("pointer %x outside heap region %x-%x", addr, heap.start, heap.end)
	} else if (addr % align) != 0 {
		panicerr("pointer %x is not %v byte aligned", addr, Alignment)
	}
}
