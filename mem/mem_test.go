package mem

import "testing"

func TestArenaAllocAndFree(t *testing.T) {
	a := MkArena(4)
	if got := a.Pgcount(); got != 4 {
		t.Fatalf("Pgcount() = %d, want 4", got)
	}

	_, pa, ok := a.Refpg_new()
	if !ok {
		t.Fatalf("Refpg_new failed with free pages available")
	}
	if got := a.Pgcount(); got != 3 {
		t.Fatalf("Pgcount() after one alloc = %d, want 3", got)
	}
	if got := a.Refcnt(pa); got != 1 {
		t.Fatalf("Refcnt() = %d, want 1", got)
	}

	a.Refdown(pa)
	if got := a.Pgcount(); got != 4 {
		t.Fatalf("Pgcount() after free = %d, want 4", got)
	}
}

func TestArenaExhaustion(t *testing.T) {
	a := MkArena(1)
	_, _, ok := a.Refpg_new()
	if !ok {
		t.Fatalf("first alloc should succeed")
	}
	if _, _, ok := a.Refpg_new(); ok {
		t.Fatalf("second alloc on a one-page arena should fail")
	}
}

func TestArenaRefcounting(t *testing.T) {
	a := MkArena(2)
	_, pa, _ := a.Refpg_new()
	a.Refup(pa)
	if got := a.Refcnt(pa); got != 2 {
		t.Fatalf("Refcnt() after Refup = %d, want 2", got)
	}
	if freed := a.Refdown(pa); freed {
		t.Fatalf("Refdown should not free a page still referenced")
	}
	if freed := a.Refdown(pa); !freed {
		t.Fatalf("Refdown should free a page with no remaining references")
	}
}

func TestArenaNewPagesAreZeroed(t *testing.T) {
	a := MkArena(1)
	pg, pa, _ := a.Refpg_new()
	for i := range pg {
		pg[i] = 0xff
	}
	a.Refdown(pa)
	pg2, _, ok := a.Refpg_new()
	if !ok {
		t.Fatalf("re-alloc after free should succeed")
	}
	for i, b := range pg2 {
		if b != 0 {
			t.Fatalf("byte %d = %x, want zeroed page on fresh alloc", i, b)
		}
	}
}
