//go:build windows

package mmap

import "unsafe"

import "golang.org/x/sys/windows"

// Reserve size bytes of anonymous, process-private, read/write
// address space.
func Reserve(size int) ([]byte, error) {
	addr, err := windows.VirtualAlloc(
		0, uintptr(size),
		windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Release the reservation back to the OS. Valid only on the exact
// slice returned by Reserve.
func Release(data []byte) error {
	addr := uintptr(unsafe.Pointer(&data[0]))
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
