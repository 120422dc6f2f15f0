package proc

import (
	"sync/atomic"

	"pintos/defs"
	"pintos/fd"
	"pintos/mem"
	"pintos/thread"
	"pintos/vm"
)

var nextMid int64

// Mmap installs a file-backed mapping of length bytes starting at off
// in the file open on descriptor, at the first free address above the
// process's existing mappings (spec.md §4.12). Pages are not faulted in
// until first touched, same as an executable's segments.
func Mmap(t *thread.Thread_t, descriptor *fd.Fd_t, off, length int, shared, writable bool) (defs.Mid_t, defs.Err_t) {
	backing, ok := descriptorBacking(descriptor)
	if !ok {
		return 0, defs.EINVAL
	}

	addr := nextMmapAddr(t, length)
	mid := defs.Mid_t(atomic.AddInt64(&nextMid, 1))
	t.Mmaps = append(t.Mmaps, &thread.Mmap_t{Id: mid, Addr: addr, Length: length, Fops: backing, Shared: shared})

	for va := addr; va < addr+uintptr(length); va += mem.PGSIZE {
		fileOff := off + int(va-addr)
		t.Supp.Install(va, &vm.Supp_t{
			File:       backing,
			FileOffset: fileOff,
			ReadBytes:  mem.PGSIZE,
			Writable:   writable,
			MmapFlag:   true,
		})
	}
	return mid, 0
}

// Munmap tears down the mapping identified by mid: any dirty shared
// page is written back through its backing file, then its supplemental
// and page-directory entries are dropped (spec.md §4.12).
func Munmap(t *thread.Thread_t, mid defs.Mid_t) defs.Err_t {
	idx := -1
	var m *thread.Mmap_t
	for i, mm := range t.Mmaps {
		if mm.Id == mid {
			idx, m = i, mm
			break
		}
	}
	if m == nil {
		return defs.EINVAL
	}

	for va := m.Addr; va < m.Addr+uintptr(m.Length); va += mem.PGSIZE {
		if pte, ok := t.PageDir.Lookup(va); ok {
			if m.Shared && pte.Dirty() {
				if supp, ok := t.Supp.Lookup(va); ok {
					pg := physPage(t, pte)
					if pg != nil {
						supp.File.WriteAt(pg, supp.FileOffset)
					}
				}
			}
			t.PageDir.Remove(va)
		}
		t.Supp.Remove(va)
	}
	t.Mmaps = append(t.Mmaps[:idx], t.Mmaps[idx+1:]...)
	return 0
}

// physPage reads back the resident bytes of the frame a PTE maps, used
// to flush a dirty shared mapping on munmap. Returns nil if the page
// was never faulted in (nothing to write back).
func physPage(t *thread.Thread_t, pte *vm.PTE_t) []byte {
	if !pte.Present() {
		return nil
	}
	pg := mem.Physmem.Dmap(pte.Frame)
	return pg[:]
}

func descriptorBacking(descriptor *fd.Fd_t) (vm.Backing_i, bool) {
	b, ok := descriptor.Fops.(vm.Backing_i)
	return b, ok
}

// nextMmapAddr picks the first address above every existing mapping,
// page-aligned, the simplest placement strategy that satisfies spec.md
// §4.12's "non-overlapping" invariant without a general VMA allocator.
func nextMmapAddr(t *thread.Thread_t, length int) uintptr {
	addr := uintptr(0x10000000)
	for _, m := range t.Mmaps {
		end := m.Addr + uintptr(m.Length)
		if end > addr {
			addr = end
		}
	}
	return pageAlign(addr + mem.PGSIZE - 1)
}
