package vm

import (
	"pintos/frame"
	"pintos/mem"
)

// StackCeiling bounds how far below the initial stack pointer a stack
// may grow (spec.md §4.9 step 4's "within a configured stack ceiling").
const StackCeiling = 8 * 1024 * 1024 // 8MB, conventional default stack limit

// FaultCtx_t bundles everything Fault needs about the faulting thread's
// address space, passed in rather than imported directly to avoid a
// vm<->proc/thread import cycle (proc and thread both depend on vm).
type FaultCtx_t struct {
	PageDir  *PageDir_t
	Supp     *Supptable_t
	Arena    *mem.Arena_t
	Frames   *frame.Table_t
	Swap     SwapDevice_i
	UserEsp  uintptr
	Owner    interface{} // *thread.Thread_t, recorded in frame.Record_t
	IsStackPage func(vaddr uintptr) bool
}

// SwapDevice_i is the subset of swap.Table_t that Fault needs, kept
// narrow to avoid vm depending on the swap package's Disk_i plumbing.
type SwapDevice_i interface {
	ScanAndFlip() (int, bool)
	Set(slot int, used bool)
	WritePage(slot int, pg *mem.Pg_t)
	ReadPage(slot int, pg *mem.Pg_t)
}

// FaultResult_t tells the caller what happened so it can decide whether
// to resume the faulting thread or kill it.
type FaultResult_t int

const (
	FaultResolved FaultResult_t = iota
	FaultKill
)

// Fault implements the seven-step page-fault algorithm of spec.md §4.9.
// addr is the faulting virtual address; write reports whether the fault
// was a write attempt.
func Fault(ctx *FaultCtx_t, addr uintptr, write, present bool) FaultResult_t {
	// Step 7 (checked first, since it's a short-circuit): a write fault
	// against a page already present and not writable is a rights
	// violation.
	if present {
		if pte, ok := ctx.PageDir.Lookup(addr); ok {
			if write && !pte.Writable() {
				return FaultKill
			}
		}
		return FaultKill
	}

	base := pageBase(addr)

	// Step 2: allocate a physical page, running eviction if none free.
	pg, pa, ok := frame.Alloc(ctx.Arena, func() bool { return evictOne(ctx) })
	if !ok {
		return FaultKill
	}

	// Step 3/4: look up the supplemental entry.
	supp, found := ctx.Supp.Lookup(base)
	if !found {
		if isStackGrowth(ctx, addr) {
			supp = &Supp_t{ZeroBytes: mem.PGSIZE, Writable: true}
			ctx.Supp.Install(base, supp)
			found = true
		} else {
			ctx.Arena.Refdown(pa)
			return FaultKill
		}
	}

	if supp.SwapOutFlag {
		// Step 6: swapped out — read it back in.
		ctx.Swap.ReadPage(supp.SwapSlot, pg)
		ctx.Swap.Set(supp.SwapSlot, false)
		supp.SwapOutFlag = false
	} else {
		// Step 5: lazy-load from file, zero the rest.
		if supp.File != nil && supp.ReadBytes > 0 {
			supp.File.ReadAt(pg[:supp.ReadBytes], supp.FileOffset)
		}
		for i := supp.ReadBytes; i < mem.PGSIZE; i++ {
			pg[i] = 0
		}
	}

	ctx.PageDir.Insert(base, pa, supp.Writable)
	ctx.Frames.Push(&frame.Record_t{
		Pa:      pa,
		PageDir: ctx.PageDir,
		Vaddr:   base,
		Owner:   ctx.Owner,
		Supp:    ctx.Supp,
		IsStack: ctx.IsStackPage != nil && ctx.IsStackPage(base),
		Accessed: func() bool {
			pte, ok := ctx.PageDir.Lookup(base)
			return ok && pte.Accessed()
		},
		ClearAccessed: func() {
			if pte, ok := ctx.PageDir.Lookup(base); ok {
				pte.ClearAccessed()
			}
		},
	})
	return FaultResolved
}

// isStackGrowth implements the heuristic of spec.md §4.9 step 4: addr >=
// esp, addr == esp-4, or addr == esp-32, and within the stack ceiling.
func isStackGrowth(ctx *FaultCtx_t, addr uintptr) bool {
	esp := ctx.UserEsp
	within := addr >= esp || addr == esp-4 || addr == esp-32
	if !within {
		return false
	}
	if addr >= esp {
		return true
	}
	depth := esp - addr
	return depth <= StackCeiling
}

// evictOne runs one step of the clock eviction algorithm: find a
// victim, write it back (to its file if a dirty mmap page, else to
// swap), then free its physical frame. Returns false if there was
// nothing to evict.
//
// The frame table is global across every process (frame.Table_t.FindVictim
// walks one shared clock list), so the victim picked here is frequently
// owned by a different thread than the one that's faulting. Its
// supplemental entry must therefore come from the victim's own
// Supptable_t (carried on the frame record as Supp, stashed there by
// Fault's Push when the page was installed) rather than from ctx.Supp,
// which only describes the faulting thread's address space.
func evictOne(ctx *FaultCtx_t) bool {
	victim := ctx.Frames.FindVictim()
	if victim == nil {
		return false
	}
	vpd := victim.PageDir.(*PageDir_t)
	vsupp, _ := victim.Supp.(*Supptable_t)
	var supp *Supp_t
	if vsupp != nil {
		supp, _ = vsupp.Lookup(victim.Vaddr)
	}
	pte, _ := vpd.Lookup(victim.Vaddr)
	pg := ctx.Arena.Dmap(victim.Pa)

	if supp != nil && supp.MmapFlag && pte != nil && pte.Dirty() {
		supp.File.WriteAt(pg[:], supp.FileOffset)
	} else if supp != nil {
		slot, ok := ctx.Swap.ScanAndFlip()
		if !ok {
			return false
		}
		ctx.Swap.WritePage(slot, pg)
		supp.SwapOutFlag = true
		supp.SwapSlot = slot
	}

	vpd.Remove(victim.Vaddr)
	ctx.Arena.Refdown(victim.Pa)
	return true
}
