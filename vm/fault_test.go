package vm

import (
	"testing"

	"pintos/defs"
	"pintos/frame"
	"pintos/mem"
)

type backingStub struct {
	data []byte
}

func (b *backingStub) ReadAt(buf []byte, offset int) int {
	return copy(buf, b.data[offset:])
}

func (b *backingStub) WriteAt(buf []byte, offset int) (int, defs.Err_t) {
	return 0, 0
}

func mkCtx(arena *mem.Arena_t) *FaultCtx_t {
	return &FaultCtx_t{
		PageDir: MkPageDir(),
		Supp:    MkSupptable(),
		Arena:   arena,
		Frames:  frame.MkTable(),
	}
}

func TestFaultLazyLoadsFromBacking(t *testing.T) {
	arena := mem.MkArena(4)
	ctx := mkCtx(arena)

	content := make([]byte, mem.PGSIZE)
	for i := range content[:16] {
		content[i] = byte(i + 1)
	}
	back := &backingStub{data: content}
	ctx.Supp.Install(0x4000, &Supp_t{File: back, ReadBytes: 16, Writable: true})

	res := Fault(ctx, 0x4000, false, false)
	if res != FaultResolved {
		t.Fatalf("Fault() = %v, want FaultResolved", res)
	}
	pte, ok := ctx.PageDir.Lookup(0x4000)
	if !ok {
		t.Fatalf("expected a pte installed after a resolved fault")
	}
	pg := arena.Dmap(pte.Frame)
	for i := 0; i < 16; i++ {
		if pg[i] != byte(i+1) {
			t.Fatalf("pg[%d] = %x, want %x", i, pg[i], i+1)
		}
	}
	for i := 16; i < mem.PGSIZE; i++ {
		if pg[i] != 0 {
			t.Fatalf("pg[%d] = %x, want zero-filled tail", i, pg[i])
		}
	}
}

func TestFaultKillsOnMissingEntryWithoutStackGrowth(t *testing.T) {
	arena := mem.MkArena(4)
	ctx := mkCtx(arena)
	ctx.UserEsp = 0x8000000

	res := Fault(ctx, 0x1000, false, false)
	if res != FaultKill {
		t.Fatalf("Fault() = %v, want FaultKill for an unmapped, non-stack address", res)
	}
}

func TestFaultGrowsStackWithinCeiling(t *testing.T) {
	arena := mem.MkArena(4)
	ctx := mkCtx(arena)
	ctx.UserEsp = 0x80000000

	res := Fault(ctx, 0x80000000-4, true, false)
	if res != FaultResolved {
		t.Fatalf("Fault() = %v, want FaultResolved for a stack-growth access", res)
	}
}

// fakeSwap is a minimal SwapDevice_i that just remembers which slots
// are taken, enough to exercise evictOne's swap-out branch.
type fakeSwap struct {
	used map[int]bool
}

func (s *fakeSwap) ScanAndFlip() (int, bool) {
	if s.used == nil {
		s.used = make(map[int]bool)
	}
	for i := 0; i < 64; i++ {
		if !s.used[i] {
			s.used[i] = true
			return i, true
		}
	}
	return 0, false
}

func (s *fakeSwap) Set(slot int, used bool) { s.used[slot] = used }
func (s *fakeSwap) WritePage(slot int, pg *mem.Pg_t) {}
func (s *fakeSwap) ReadPage(slot int, pg *mem.Pg_t)  {}

// TestEvictionRecordsSwapOutOnVictimOwnersSupptable exercises eviction
// across two distinct address spaces sharing one frame table, the
// normal case since frame.Global is one table for every process: the
// frame that gets evicted to make room belongs to a different
// Supptable_t than the one the faulting thread is using, and the
// swap-out bookkeeping must land on the victim's own table.
func TestEvictionRecordsSwapOutOnVictimOwnersSupptable(t *testing.T) {
	arena := mem.MkArena(1) // room for exactly one resident page
	frames := frame.MkTable()
	sw := &fakeSwap{}

	ctxA := &FaultCtx_t{PageDir: MkPageDir(), Supp: MkSupptable(), Arena: arena, Frames: frames, Swap: sw}
	ctxB := &FaultCtx_t{PageDir: MkPageDir(), Supp: MkSupptable(), Arena: arena, Frames: frames, Swap: sw}

	ctxA.Supp.Install(0x4000, &Supp_t{File: &backingStub{data: make([]byte, mem.PGSIZE)}, Writable: true})
	if res := Fault(ctxA, 0x4000, false, false); res != FaultResolved {
		t.Fatalf("Fault(ctxA) = %v, want FaultResolved", res)
	}

	ctxB.Supp.Install(0x5000, &Supp_t{File: &backingStub{data: make([]byte, mem.PGSIZE)}, Writable: true})
	if res := Fault(ctxB, 0x5000, false, false); res != FaultResolved {
		t.Fatalf("Fault(ctxB) = %v, want FaultResolved (should evict ctxA's page)", res)
	}

	suppA, ok := ctxA.Supp.Lookup(0x4000)
	if !ok {
		t.Fatalf("ctxA's supplemental entry for the evicted page should still exist")
	}
	if !suppA.SwapOutFlag {
		t.Fatalf("eviction should have recorded the swap-out on the victim's own (ctxA's) supplemental entry, not been silently dropped")
	}
	if _, ok := ctxA.PageDir.Lookup(0x4000); ok {
		t.Fatalf("the evicted page should no longer be mapped in its owner's (ctxA's) page directory")
	}
}

func TestFaultKillsWriteToReadOnlyPresentPage(t *testing.T) {
	arena := mem.MkArena(4)
	ctx := mkCtx(arena)
	ctx.PageDir.Insert(0x4000, mem.Pa_t(0), false)

	res := Fault(ctx, 0x4000, true, true)
	if res != FaultKill {
		t.Fatalf("Fault() = %v, want FaultKill for a write fault on a read-only present page", res)
	}
}
