// memtest exercises a pbheap heap from the outside, as a consumer of
// its contract: alignment probes, realloc size matrices, exhaustion
// behavior. Exits non-zero when any property is violated.
package main

import "fmt"
import "flag"
import "os"
import "unsafe"
import "math/rand"

import hm "github.com/dustin/go-humanize"
import s "github.com/prataprc/gosettings"

import "github.com/bnclabs/pbheap/malloc"

var options struct {
	capacity int64
	probes   int
	seed     int64
}

func argParse() {
	var capacity string

	flag.StringVar(&capacity, "capacity", "2GiB",
		"address-space reservation backing the heap, humanized")
	flag.IntVar(&options.probes, "probes", 100,
		"number of random alignment probes")
	flag.Int64Var(&options.seed, "seed", 42,
		"seed for the probe size generator")
	flag.Parse()

	bytes, err := hm.ParseBytes(capacity)
	if err != nil {
		fmt.Printf("bad -capacity %q: %v\n", capacity, err)
		os.Exit(2)
	}
	options.capacity = int64(bytes)
}

func main() {
	argParse()

	heap := malloc.NewHeap(s.Settings{"capacity": options.capacity})
	rnd := rand.New(rand.NewSource(options.seed))

	x, y, z := heap.Alloc(24), heap.Alloc(19), heap.Alloc(32)
	fmt.Printf("x = %#x\n", uintptr(x))
	fmt.Printf("y = %#x\n", uintptr(y))
	fmt.Printf("z = %#x\n", uintptr(z))

	failures := 0
	failures += checkalignment(heap, rnd)
	failures += checkshrink(heap)
	failures += checkequal(heap)
	failures += checkgrow(heap)
	failures += checkexhaustion()

	capacity, reserved, alloc, overhead := heap.Info()
	fmt.Printf("capacity %v, reserved %v, allocated %v, overhead %v\n",
		hm.IBytes(uint64(capacity)), hm.IBytes(uint64(reserved)),
		hm.IBytes(uint64(alloc)), hm.IBytes(uint64(overhead)))
	fmt.Printf("utilization %.6f%%\n", heap.Utilization())

	if failures > 0 {
		fmt.Printf("FAILED, %v violated properties\n", failures)
		os.Exit(1)
	}
	fmt.Println("OK")
}

// for random sizes under 100 bytes, returned pointers land on
// double-word boundaries; a zero size returns nil.
func checkalignment(heap *malloc.Heap, rnd *rand.Rand) (failures int) {
	for i := 0; i < options.probes; i++ {
		size := int64(rnd.Intn(100))
		ptr := heap.Alloc(size)
		if size == 0 {
			if ptr != nil {
				fmt.Printf("alignment: zero size returned %#x\n", uintptr(ptr))
				failures++
			}
			continue
		}
		if ptr == nil {
			fmt.Printf("alignment: alloc %v failed\n", size)
			failures++
		} else if uintptr(ptr)%uintptr(malloc.Alignment) != 0 {
			fmt.Printf("alignment: %#x for size %v\n", uintptr(ptr), size)
			failures++
		}
	}
	return failures
}

// shrinking a block preserves pointer identity.
func checkshrink(heap *malloc.Heap) (failures int) {
	oldsizes := []int64{2, 7, 10, 16, 21, 25, 29, 34, 38, 45}
	newsizes := []int64{1, 5, 9, 12, 7, 20, 16, 29, 3, 32}
	for i := range oldsizes {
		oldptr := heap.Alloc(oldsizes[i])
		if newptr := heap.Realloc(oldptr, newsizes[i]); newptr != oldptr {
			fmt.Printf("shrink: %v->%v moved %#x -> %#x\n",
				oldsizes[i], newsizes[i], uintptr(oldptr), uintptr(newptr))
			failures++
		}
	}
	return failures
}

// resizing a block to its own size preserves pointer identity.
func checkequal(heap *malloc.Heap) (failures int) {
	sizes := []int64{2, 7, 10, 16, 21, 25, 29, 34, 38, 45}
	for _, size := range sizes {
		oldptr := heap.Alloc(size)
		if newptr := heap.Realloc(oldptr, size); newptr != oldptr {
			fmt.Printf("equal: %v moved %#x -> %#x\n",
				size, uintptr(oldptr), uintptr(newptr))
			failures++
		}
	}
	return failures
}

// growing a block moves it and carries the old contents over.
func checkgrow(heap *malloc.Heap) (failures int) {
	oldsizes := []int64{2, 7, 10, 16, 21, 25, 29, 34, 38, 45}
	newsizes := []int64{3, 75, 15, 19, 29, 36, 31, 47, 56, 47}
	for i := range oldsizes {
		oldptr := heap.Alloc(oldsizes[i])
		oldblock := unsafe.Slice((*byte)(oldptr), oldsizes[i])
		for j := range oldblock {
			oldblock[j] = byte(i*16 + j)
		}
		newptr := heap.Realloc(oldptr, newsizes[i])
		if newptr == oldptr {
			fmt.Printf("grow: %v->%v did not move %#x\n",
				oldsizes[i], newsizes[i], uintptr(oldptr))
			failures++
			continue
		}
		newblock := unsafe.Slice((*byte)(newptr), oldsizes[i])
		for j := range newblock {
			if newblock[j] != byte(i*16+j) {
				fmt.Printf("grow: byte %v not copied for case %v\n", j, i)
				failures++
				break
			}
		}
	}
	return failures
}

// a dedicated small heap runs out; earlier blocks stay valid.
func checkexhaustion() (failures int) {
	heap := malloc.NewHeap(s.Settings{"capacity": int64(64 * 1024)})
	defer heap.Release()

	first := heap.Alloc(4096)
	block := unsafe.Slice((*byte)(first), 4096)
	for i := range block {
		block[i] = byte(i)
	}

	n := 1
	for heap.Alloc(4096) != nil {
		n++
		if n > 64 {
			fmt.Printf("exhaustion: heap never ran out\n")
			return failures + 1
		}
	}
	fmt.Printf("exhaustion: after %v blocks of 4096\n", n)

	for i := range block {
		if block[i] != byte(i) {
			fmt.Printf("exhaustion: byte %v clobbered\n", i)
			failures++
			break
		}
	}
	if x := heap.Chunklen(first); x != 4096 {
		fmt.Printf("exhaustion: header records %v\n", x)
		failures++
	}
	return failures
}
