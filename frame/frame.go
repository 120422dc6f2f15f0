// Package frame implements the global frame table: one record per
// currently-resident physical page of user memory, with clock-algorithm
// victim selection (spec.md §4.6). Grounded on the teacher's fs/blk.go
// BlkList_t pattern (a container/list.List wrapper used for ordered
// record tracking, generalized here from disk blocks to physical frames)
// and wired to oommsg.OomCh the way the teacher's own frame allocator
// would signal memory pressure to a waiter.
package frame

import (
	"container/list"
	"sync"

	"pintos/mem"
	"pintos/oommsg"
)

// Record_t is one frame table entry: the page directory and virtual
// address it backs, and the thread that owns it (spec.md §3's "Frame
// record: { page_dir, virtual_addr, owner_thread }").
type Record_t struct {
	Pa        mem.Pa_t
	PageDir   interface{} // *vm.PageDir_t; kept as interface{} to avoid an import cycle (vm depends on frame)
	Vaddr     uintptr
	Owner     interface{} // *thread.Thread_t
	Supp      interface{} // *vm.Supptable_t of the owning thread, for eviction writeback/swap-out
	IsStack   bool
	Accessed  func() bool
	ClearAccessed func()
}

// Table_t is the global frame table.
type Table_t struct {
	sync.Mutex
	l *list.List
	byPa map[mem.Pa_t]*list.Element
}

// MkTable constructs an empty frame table.
func MkTable() *Table_t {
	return &Table_t{l: list.New(), byPa: make(map[mem.Pa_t]*list.Element)}
}

// Global is the kernel's one frame table, shared by every process
// (spec.md §4.6: "one global list of frame records," not one per
// address space) so FindVictim's clock hand sweeps every resident user
// page regardless of which thread faulted.
var Global = MkTable()

// Push records a newly resident frame (spec.md §4.6's push()).
func (t *Table_t) Push(r *Record_t) {
	t.Lock()
	defer t.Unlock()
	e := t.l.PushBack(r)
	t.byPa[r.Pa] = e
}

// FindVictim runs the clock algorithm: pop the oldest frame; if its
// accessed bit is set, or it's marked IsStack, clear the accessed bit
// and re-enqueue; otherwise return it (spec.md §4.6's find_victim()).
// The stack-growth heuristic is kept distinct from this dirty-stack
// marker per the Open Question resolution in spec.md §9.
func (t *Table_t) FindVictim() *Record_t {
	t.Lock()
	defer t.Unlock()
	for {
		e := t.l.Front()
		if e == nil {
			return nil
		}
		r := e.Value.(*Record_t)
		t.l.MoveToBack(e)
		if r.IsStack || (r.Accessed != nil && r.Accessed()) {
			if r.ClearAccessed != nil {
				r.ClearAccessed()
			}
			continue
		}
		t.l.Remove(e)
		delete(t.byPa, r.Pa)
		return r
	}
}

// DeleteOne removes the single frame record at vaddr for the given page
// directory (spec.md §4.6's delete_one()).
func (t *Table_t) DeleteOne(pageDir interface{}, vaddr uintptr) *Record_t {
	t.Lock()
	defer t.Unlock()
	var next *list.Element
	for e := t.l.Front(); e != nil; e = next {
		next = e.Next()
		r := e.Value.(*Record_t)
		if r.PageDir == pageDir && r.Vaddr == vaddr {
			t.l.Remove(e)
			delete(t.byPa, r.Pa)
			return r
		}
	}
	return nil
}

// DeleteAllFor removes every frame record owned by pageDir, returning
// them so the caller can free the associated physical memory (spec.md
// §4.6's delete_all_for(), used on process exit).
func (t *Table_t) DeleteAllFor(pageDir interface{}) []*Record_t {
	t.Lock()
	defer t.Unlock()
	var out []*Record_t
	var next *list.Element
	for e := t.l.Front(); e != nil; e = next {
		next = e.Next()
		r := e.Value.(*Record_t)
		if r.PageDir == pageDir {
			t.l.Remove(e)
			delete(t.byPa, r.Pa)
			out = append(out, r)
		}
	}
	return out
}

// Len reports the number of frames currently tracked (spec.md §8's
// testable invariant 2: equal to the number of resident user pages).
func (t *Table_t) Len() int {
	t.Lock()
	defer t.Unlock()
	return t.l.Len()
}

// Alloc allocates a physical page from arena, running the eviction path
// via evict when none is free (spec.md §4.9 step 2) and retrying; only
// when evict reports nothing was evicted does it post on oommsg.OomCh and
// block on Resume before retrying.
func Alloc(arena *mem.Arena_t, evict func() bool) (*mem.Pg_t, mem.Pa_t, bool) {
	for {
		if pg, pa, ok := arena.Refpg_new(); ok {
			return pg, pa, true
		}
		if !evict() {
			need := oommsg.Oommsg_t{Need: 1, Resume: make(chan bool)}
			oommsg.OomCh <- need
			<-need.Resume
		}
	}
}
