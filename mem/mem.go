// Package mem simulates physical memory as a refcounted, freelist-backed
// page allocator. The teacher's mem package hands out pages from real
// RAM discovered at boot via a patched runtime (runtime.Get_phys) and
// maps them through a permanent direct map (Vdirect) set up by
// mem/dmap.go's CR3/CR4 bring-up code; neither has a hosted equivalent,
// so this package instead carves pages out of a single []byte arena
// allocated by Phys_init, keeping the teacher's refcounting, free-list,
// and Page_i contract shape (spec.md §4.6: frames are a finite, reference
// counted resource shared by the page cache and user address spaces).
package mem

import (
	"fmt"
	"sync"
	"sync/atomic"

	"pintos/util"
)

// PGSHIFT is the base-2 exponent for the page size.
const PGSHIFT uint = 12

// PGSIZE is the size of a single page in bytes.
const PGSIZE int = 1 << PGSHIFT

// PGOFFSET masks offsets within a page.
const PGOFFSET Pa_t = 0xfff

// PGMASK masks the page number of an address.
const PGMASK Pa_t = ^(PGOFFSET)

// PTE_P marks a page as present.
const PTE_P Pa_t = 1 << 0

// PTE_W marks a page writable.
const PTE_W Pa_t = 1 << 1

// PTE_U marks a page user-accessible.
const PTE_U Pa_t = 1 << 2

// PTE_D marks a page dirty (written since last clear).
const PTE_D Pa_t = 1 << 6

// PTE_A marks a page accessed, used by the clock eviction algorithm.
const PTE_A Pa_t = 1 << 5

// PTE_ADDR extracts the address bits of a PTE.
const PTE_ADDR Pa_t = PGMASK

// Pa_t represents a simulated physical address: a byte offset into the
// Arena_t's backing buffer.
type Pa_t uintptr

// Pg_t is a page-sized byte buffer, the unit the allocator hands out.
type Pg_t [PGSIZE]uint8

// Page_i abstracts physical page allocation, matching the teacher's
// Page_i so callers (the frame table, the supplemental page table) can
// be written against an interface rather than the concrete Arena_t.
type Page_i interface {
	Refpg_new() (*Pg_t, Pa_t, bool)
	Refcnt(Pa_t) int
	Dmap(Pa_t) *Pg_t
	Refup(Pa_t)
	Refdown(Pa_t) bool
}

type physpg_t struct {
	refcnt int32
	nexti  uint32
}

// Arena_t is a fixed-size pool of refcounted pages simulating physical
// memory. Unlike the teacher's Physmem_t there is no per-CPU free list
// (this kernel simulation is single-threaded-scheduler, not SMP) and no
// direct map setup: Dmap just slices into the backing buffer.
type Arena_t struct {
	sync.Mutex
	backing []byte
	pgs     []physpg_t
	npages  uint32
	freei   uint32
	freelen int32
}

const nilidx = ^uint32(0)

// MkArena allocates an arena of npages simulated physical pages.
func MkArena(npages int) *Arena_t {
	a := &Arena_t{
		backing: make([]byte, npages*PGSIZE),
		pgs:     make([]physpg_t, npages),
		npages:  uint32(npages),
	}
	a.freei = 0
	a.freelen = int32(npages)
	for i := 0; i < npages; i++ {
		a.pgs[i].refcnt = -1
		if i == npages-1 {
			a.pgs[i].nexti = nilidx
		} else {
			a.pgs[i].nexti = uint32(i + 1)
		}
	}
	return a
}

func (a *Arena_t) idx(p Pa_t) uint32 {
	return uint32(uintptr(p) >> PGSHIFT)
}

// Dmap returns the page-sized slice backing the given physical address.
func (a *Arena_t) Dmap(p Pa_t) *Pg_t {
	aligned := Pa_t(util.Rounddown(int(p), PGSIZE))
	idx := a.idx(aligned)
	off := int(idx) * PGSIZE
	return (*Pg_t)(a.backing[off : off+PGSIZE])
}

// Dmap8 returns a byte slice view of the page containing p, starting at
// p's offset within that page.
func (a *Arena_t) Dmap8(p Pa_t) []uint8 {
	off := int(p) & int(PGOFFSET)
	pg := a.Dmap(p - Pa_t(off))
	return pg[off:]
}

// Refcnt returns the current reference count of the page at p.
func (a *Arena_t) Refcnt(p Pa_t) int {
	idx := a.idx(p)
	return int(atomic.LoadInt32(&a.pgs[idx].refcnt))
}

// Refup increments the reference count of the page at p.
func (a *Arena_t) Refup(p Pa_t) {
	idx := a.idx(p)
	c := atomic.AddInt32(&a.pgs[idx].refcnt, 1)
	if c <= 0 {
		panic("refup of free page")
	}
}

// Refdown decrements the reference count of the page at p, returning the
// page to the free list once it reaches zero. It reports whether the
// page was freed.
func (a *Arena_t) Refdown(p Pa_t) bool {
	idx := a.idx(p)
	c := atomic.AddInt32(&a.pgs[idx].refcnt, -1)
	if c < 0 {
		panic("refdown of free page")
	}
	if c != 0 {
		return false
	}
	a.Lock()
	a.pgs[idx].nexti = a.freei
	a.freei = idx
	a.freelen++
	a.Unlock()
	return true
}

// Refpg_new allocates a zeroed page and returns it, the refcount is
// initialized to 1.
func (a *Arena_t) Refpg_new() (*Pg_t, Pa_t, bool) {
	a.Lock()
	if a.freei == nilidx {
		a.Unlock()
		return nil, 0, false
	}
	idx := a.freei
	a.freei = a.pgs[idx].nexti
	a.freelen--
	a.pgs[idx].refcnt = 1
	a.Unlock()

	p := Pa_t(idx) << Pa_t(PGSHIFT)
	pg := a.Dmap(p)
	for i := range pg {
		pg[i] = 0
	}
	return pg, p, true
}

// Alloc allocates a zeroed page, in the (Pa_t, *Pg_t, bool) order the
// fs package's Blockmem_i contract expects.
func (a *Arena_t) Alloc() (Pa_t, *Pg_t, bool) {
	pg, pa, ok := a.Refpg_new()
	return pa, pg, ok
}

// Free releases the page at pa back to the arena.
func (a *Arena_t) Free(pa Pa_t) {
	a.Refdown(pa)
}

// Pgcount reports the number of free pages remaining.
func (a *Arena_t) Pgcount() int {
	a.Lock()
	defer a.Unlock()
	return int(a.freelen)
}

// Physmem is the global simulated physical memory arena, installed by
// cmd/pintos at boot.
var Physmem *Arena_t

// Phys_init reserves npages of simulated physical memory and installs it
// as the global allocator.
func Phys_init(npages int) *Arena_t {
	Physmem = MkArena(npages)
	fmt.Printf("mem: reserved %v pages (%vKB)\n", npages, npages*PGSIZE/1024)
	return Physmem
}
