//go:build unix

// Package mmap reserves large spans of anonymous virtual memory for
// the allocator's heap region. Reservations are process private,
// read/write and not backed by any file. There is one reservation
// per Heap, made once and normally held for the life of the process.
package mmap

import "golang.org/x/sys/unix"

// Reserve size bytes of anonymous, process-private, read/write
// address space.
func Reserve(size int) ([]byte, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_PRIVATE | unix.MAP_ANON
	return unix.Mmap(-1, 0, size, prot, flags)
}

// Release the reservation back to the OS. Valid only on the exact
// slice returned by Reserve.
func Release(data []byte) error {
	return unix.Munmap(data)
}
