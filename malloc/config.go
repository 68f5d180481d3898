package malloc

import s "github.com/prataprc/gosettings"

// Alignment every payload pointer returned by Alloc is aligned to
// this double-word boundary.
const Alignment = int64(16)

// Heapsize default address-space reservation for a heap, 2GB. Can be
// overridden with the "capacity" setting.
const Heapsize = int64(2 * 1024 * 1024 * 1024)

// Maxheapsize maximum reservation allowed for a single heap.
const Maxheapsize = int64(1024 * 1024 * 1024 * 1024) // 1TB

// Defaultsettings for NewHeap().
//
// "capacity" (int64, default: Heapsize)
//	Size, in bytes, of the address-space reservation backing the
//	heap. Reserved lazily on first use and never resized. Should
//	be positive and cannot exceed Maxheapsize.
func Defaultsettings() s.Settings {
	return s.Settings{
		"capacity": Heapsize,
	}
}
