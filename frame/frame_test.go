package frame

import (
	"testing"

	"pintos/mem"
)

func TestPushAndFindVictimSkipsAccessed(t *testing.T) {
	tbl := MkTable()
	accessed := true
	tbl.Push(&Record_t{
		Pa:       mem.Pa_t(0),
		Vaddr:    0x1000,
		Accessed: func() bool { return accessed },
		ClearAccessed: func() {
			accessed = false
		},
	})
	tbl.Push(&Record_t{
		Pa:       mem.Pa_t(mem.PGSIZE),
		Vaddr:    0x2000,
		Accessed: func() bool { return false },
	})

	// The first record is accessed, so the clock algorithm should skip
	// it, clear its bit, and return the second (unaccessed) record.
	victim := tbl.FindVictim()
	if victim == nil {
		t.Fatalf("FindVictim returned nil")
	}
	if victim.Vaddr != 0x2000 {
		t.Fatalf("victim.Vaddr = %x, want 0x2000", victim.Vaddr)
	}
	if accessed {
		t.Fatalf("first record's accessed bit should have been cleared")
	}
}

func TestFindVictimSkipsStackPages(t *testing.T) {
	tbl := MkTable()
	tbl.Push(&Record_t{Pa: mem.Pa_t(0), Vaddr: 0x1000, IsStack: true})
	tbl.Push(&Record_t{Pa: mem.Pa_t(mem.PGSIZE), Vaddr: 0x2000, IsStack: false})

	victim := tbl.FindVictim()
	if victim == nil || victim.Vaddr != 0x2000 {
		t.Fatalf("expected the non-stack page as victim, got %+v", victim)
	}
}

func TestFindVictimEmptyTable(t *testing.T) {
	tbl := MkTable()
	if v := tbl.FindVictim(); v != nil {
		t.Fatalf("FindVictim on empty table = %+v, want nil", v)
	}
}

func TestDeleteAllFor(t *testing.T) {
	tbl := MkTable()
	pd1 := &struct{ x int }{1}
	pd2 := &struct{ x int }{2}
	tbl.Push(&Record_t{Pa: mem.Pa_t(0), Vaddr: 0x1000, PageDir: pd1})
	tbl.Push(&Record_t{Pa: mem.Pa_t(mem.PGSIZE), Vaddr: 0x2000, PageDir: pd2})
	tbl.Push(&Record_t{Pa: mem.Pa_t(2 * mem.PGSIZE), Vaddr: 0x3000, PageDir: pd1})

	out := tbl.DeleteAllFor(pd1)
	if len(out) != 2 {
		t.Fatalf("DeleteAllFor returned %d records, want 2", len(out))
	}
	if got := tbl.Len(); got != 1 {
		t.Fatalf("Len() after DeleteAllFor = %d, want 1", got)
	}
}

func TestAllocRunsEvictOnExhaustion(t *testing.T) {
	arena := mem.MkArena(1)
	_, _, _ = arena.Refpg_new() // exhaust the arena

	evictCalled := false
	evict := func() bool {
		if evictCalled {
			return false
		}
		evictCalled = true
		// pretend to free a page back to the arena
		arena.Refdown(mem.Pa_t(0))
		return true
	}

	_, _, ok := Alloc(arena, evict)
	if !ok {
		t.Fatalf("Alloc should succeed after eviction frees a page")
	}
	if !evictCalled {
		t.Fatalf("evict callback was never invoked")
	}
}
