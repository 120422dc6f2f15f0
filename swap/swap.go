// Package swap manages the swap area: a bitmap of fixed-size slots on a
// second disk, each slot holding one evicted physical page (spec.md
// §4.7). Grounded on the teacher's fs/blk.go Disk_i contract (the same
// interface the buffer cache uses) and its free-map's bit-per-unit
// bitmap idea, generalized here to slots instead of sectors rather than
// pulled in as a separate dependency.
package swap

import (
	"sync"

	"pintos/device"
	"pintos/fs"
	"pintos/mem"
)

// PagesPerSlot is how many simulated physical pages one swap slot holds.
// spec.md §3 describes a slot as "S×8 contiguous sectors", i.e. one page
// when the disk's native sector is an eighth of a page (e.g. 512B
// sectors, 4096B pages); since this module's fs.BSIZE is already set to
// one full page (mem.PGSIZE), one block is one slot.
const PagesPerSlot = 1

// Table_t is the swap area: a Disk_i plus a bitmap of free/used slots.
type Table_t struct {
	sync.Mutex
	disk  fs.Disk_i
	nslots int
	bits  []uint64
	hand  int
}

// MkTable constructs a swap table over disk, whose sector count
// determines the number of slots (capacity / PagesPerSlot, spec.md
// §4.7).
func MkTable(disk fs.Disk_i) *Table_t {
	nslots := disk.Size() / PagesPerSlot
	return &Table_t{disk: disk, nslots: nslots, bits: make([]uint64, (nslots+63)/64)}
}

// DefaultSlots sizes the global swap area's backing in-memory disk; a
// real boot that wants swap backed by a host file instead calls Init
// with its own disk before any thread can fault.
const DefaultSlots = 512

// Default is the kernel's global swap area (spec.md §4.7: one shared
// swap device, not one per process). Init replaces it with a table over
// a different Disk_i, e.g. a dedicated host-file swap image.
var Default = MkTable(device.NewMemDisk(DefaultSlots))

// Init installs disk as the global swap area.
func Init(disk fs.Disk_i) { Default = MkTable(disk) }

func (t *Table_t) testbit(i int) bool { return t.bits[i/64]&(1<<uint(i%64)) != 0 }
func (t *Table_t) setbit(i int, v bool) {
	if v {
		t.bits[i/64] |= 1 << uint(i%64)
	} else {
		t.bits[i/64] &^= 1 << uint(i%64)
	}
}

// ScanAndFlip atomically reserves and returns a free slot index, or
// (-1, false) if the swap area is full (spec.md §4.7's scan_and_flip()).
func (t *Table_t) ScanAndFlip() (int, bool) {
	t.Lock()
	defer t.Unlock()
	for i := 0; i < t.nslots; i++ {
		idx := (t.hand + i) % t.nslots
		if !t.testbit(idx) {
			t.setbit(idx, true)
			t.hand = (idx + 1) % t.nslots
			return idx, true
		}
	}
	return -1, false
}

// Set marks slot used or free directly (spec.md §4.7's set()).
func (t *Table_t) Set(slot int, used bool) {
	t.Lock()
	defer t.Unlock()
	t.setbit(slot, used)
}

// WritePage writes pg's bytes to slot (spec.md §4.7: "a page write to
// swap writes S pages-worth of sectors"; here a slot is exactly one
// block, since fs.BSIZE already equals one page).
func (t *Table_t) WritePage(slot int, pg *mem.Pg_t) {
	b := fs.MkBlock(slot, "swap", swapBlockmem{}, t.disk, nil)
	b.Data = pg
	b.Write()
}

// ReadPage reads slot's bytes back into pg.
func (t *Table_t) ReadPage(slot int, pg *mem.Pg_t) {
	b := fs.MkBlock(slot, "swap", swapBlockmem{}, t.disk, nil)
	b.Data = pg
	b.Read()
}

type swapBlockmem struct{}

func (swapBlockmem) Alloc() (mem.Pa_t, *mem.Pg_t, bool) { return 0, &mem.Pg_t{}, true }
func (swapBlockmem) Free(mem.Pa_t)                      {}
