//go:build !debug

package malloc

import "unsafe"

func tracef(fmsg string, args ...interface{}) {
}

func checkptr(heap *Heap, ptr unsafe.Pointer) {
}
