// Package proc implements process lifecycle: exec, wait, and exit
// (spec.md §4.11). Since this module simulates the whole kernel as a
// hosted Go library rather than running real compiled machine code atop
// a real CPU (the same constraint that limits the teacher's own tests
// to driving its filesystem directly, never booting actual user ELF
// binaries — see ufs/driver.go's role), a process's "user program" is
// supplied as a Go closure; exec still performs the real ELF program
// header walk and deny_write bookkeeping spec.md §4.11 describes, so
// the loader logic itself is fully exercised.
package proc

import (
	"debug/elf"
	"fmt"
	"sync"
	"sync/atomic"

	"pintos/circbuf"
	"pintos/defs"
	"pintos/fd"
	"pintos/frame"
	"pintos/fs"
	"pintos/mem"
	"pintos/swap"
	"pintos/thread"
	"pintos/vm"
)

// StackTop is the simulated top of a fresh process's user stack.
const StackTop = 0x7fffffff000

var nextPid int64
var nextTid int64

func allocPid() defs.Pid_t { return defs.Pid_t(atomic.AddInt64(&nextPid, 1)) }
func allocTid() defs.Tid_t { return defs.Tid_t(atomic.AddInt64(&nextTid, 1)) }

// Body_t is a process's user-level logic: a function given full access
// to its own thread control block (open files, address space, cwd),
// standing in for the instruction stream a real ELF binary would supply.
type Body_t func(t *thread.Thread_t)

// Exec loads path's ELF program headers into a fresh thread's address
// space, denies writes to the executable for the thread's lifetime, and
// spawns it on the scheduler (spec.md §4.11's loader steps 1-3 plus
// "wait for an rdy signal" becomes a direct child-record handoff here
// since there is no separate page-fault-driven first instruction to
// wait on).
func Exec(fsys *fs.Fs_t, sched *thread.Sched_t, parent *thread.Thread_t, path string, argv []string, body Body_t) (*thread.Child_t, defs.Err_t) {
	cwdSector := fsys.RootSec
	if parent != nil && parent.Cwd != nil {
		if f, ok := parent.Cwd.Fd.Fops.(interface{ Pathi() int }); ok {
			cwdSector = f.Pathi()
		}
	}
	sector, _, err := fsys.Resolve(path, cwdSector, false)
	if err != 0 {
		return nil, err
	}
	ip := fsys.Iopen(sector)
	if ip.IsDirectory() {
		fsys.Iclose(ip)
		return nil, defs.EISDIR
	}

	t := thread.MkThread(allocTid(), path, thread.PriDefault)
	t.ExecInode = ip
	t.UserEsp = StackTop

	entry, err := loadElf(fsys, ip, t)
	if err != 0 {
		fsys.Iclose(ip)
		return nil, err
	}
	ip.DenyWrite()

	rootIp := fsys.Iopen(fsys.RootSec)
	rootFd := &fd.Fd_t{Fops: fd.MkDirFops(fsys, rootIp, fsys.RootSec), Perms: fd.FD_READ}
	t.Cwd = fd.MkRootCwd(rootFd)
	t.OpenFiles[0] = &fd.Fd_t{Fops: fd.MkConsoleFops(), Perms: fd.FD_READ}
	t.OpenFiles[1] = &fd.Fd_t{Fops: fd.MkConsoleFops(), Perms: fd.FD_WRITE}

	child := &thread.Child_t{Tid: t.Tid, Pid: allocPid(), Done: make(chan struct{})}
	if parent != nil {
		parent.Children = append(parent.Children, child)
		t.Parent = parent
	}

	sched.Spawn(t, func() {
		defer exitCleanup(fsys, t, child)
		defer catchExit(t)
		// A real CPU would take its first page fault fetching the
		// instruction at the ELF entry point before executing anything;
		// Touch runs that fault through the same vm.Fault path a data
		// access later in body would (spec.md §4.11 loader step 4's
		// "jump to the entry point").
		Touch(t, pageAlign(entry), false)
		body(t)
	})
	return child, 0
}

// ExitSignal is panicked by syscalls.Exit to unwind a process body
// immediately, the way a real exit() syscall never returns to its
// caller. catchExit recovers it so only this thread's body unwinds,
// not the scheduler goroutine driving it.
type ExitSignal struct{ Code int }

func catchExit(t *thread.Thread_t) {
	if r := recover(); r != nil {
		sig, ok := r.(ExitSignal)
		if !ok {
			panic(r)
		}
		t.ExitCode = sig.Code
	}
}

// loadElf walks path's PT_LOAD segments and installs a lazily-faulted
// supplemental page table entry per page they cover (spec.md §4.9
// step 5's file-backed lazy load), the loader's actual page-install
// work (spec.md §4.11 loader step 3). Returns the ELF entry point so
// the caller can fault in the first instruction page before running.
func loadElf(fsys *fs.Fs_t, ip *fs.Inode_t, t *thread.Thread_t) (uintptr, defs.Err_t) {
	r := &inodeReaderAt{fsys: fsys, ip: ip}
	ef, err := elf.NewFile(r)
	if err != nil {
		return 0, defs.EINVAL
	}
	defer ef.Close()

	backing := fsBacking{fsys: fsys, ip: ip}
	for _, p := range ef.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		writable := p.Flags&elf.PF_W != 0
		base := pageAlign(uintptr(p.Vaddr))
		end := uintptr(p.Vaddr) + p.Memsz
		for va := base; va < end; va += mem.PGSIZE {
			fileOff := int64(va) - int64(p.Vaddr) + int64(p.Off)
			readBytes := 0
			if fileOff >= 0 && fileOff < int64(p.Filesz) {
				readBytes = int(p.Filesz) - int(fileOff)
				if readBytes > mem.PGSIZE {
					readBytes = mem.PGSIZE
				}
			}
			t.Supp.Install(va, &vm.Supp_t{
				File:       backing,
				FileOffset: int(fileOff),
				ReadBytes:  readBytes,
				ZeroBytes:  mem.PGSIZE - readBytes,
				Writable:   writable,
			})
		}
	}
	return uintptr(ef.Entry), 0
}

func pageAlign(v uintptr) uintptr { return v &^ uintptr(mem.PGSIZE-1) }

// inodeReaderAt adapts an fs.Inode_t to io.ReaderAt for debug/elf.
type inodeReaderAt struct {
	fsys *fs.Fs_t
	ip   *fs.Inode_t
}

func (r *inodeReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n := r.fsys.ReadAt(r.ip, p, int(off))
	if n == 0 {
		return 0, errEOF{}
	}
	return n, nil
}

type errEOF struct{}

func (errEOF) Error() string { return "EOF" }

// fsBacking implements vm.Backing_i over an open inode, for both
// lazy-loading an executable's segments and the mmap/munmap syscalls
// (spec.md §4.12).
type fsBacking struct {
	fsys *fs.Fs_t
	ip   *fs.Inode_t
}

func (b fsBacking) ReadAt(buf []byte, offset int) int { return b.fsys.ReadAt(b.ip, buf, offset) }
func (b fsBacking) WriteAt(buf []byte, offset int) (int, defs.Err_t) {
	return b.fsys.WriteAt(b.ip, buf, offset)
}

// stackGrowthSpan bounds how far below StackTop a page is still
// considered part of the stack region for IsStackPage's purposes
// (frame.Record_t.IsStack, which protects a resident stack page from
// clock eviction) rather than a candidate for stack growth itself,
// which vm.Fault already bounds via StackCeiling.
const stackGrowthSpan = vm.StackCeiling

// Touch simulates a user-mode memory access at addr by t, the
// integration point a real MMU's page-fault trap would provide: it runs
// the addr through the page-fault algorithm (vm.Fault) against t's own
// address space and the kernel's global frame table and swap area, and
// kills the process the way the kernel would for an unresolvable fault
// (spec.md §4.9: "the page is made resident and execution resumes, or
// the process is killed"; §4.11's exit status conventions: "one that
// faults or is killed by the kernel exits with -1"). A Body_t calls
// Touch wherever it would dereference a pointer into a lazily-loaded
// ELF segment, an mmap'd region, or the stack.
func Touch(t *thread.Thread_t, addr uintptr, write bool) {
	present := false
	if pte, ok := t.PageDir.Lookup(addr); ok {
		present = pte.Present()
	}
	ctx := &vm.FaultCtx_t{
		PageDir: t.PageDir,
		Supp:    t.Supp,
		Arena:   mem.Physmem,
		Frames:  frame.Global,
		Swap:    swap.Default,
		UserEsp: t.UserEsp,
		Owner:   t,
		IsStackPage: func(vaddr uintptr) bool {
			return vaddr <= t.UserEsp && t.UserEsp-vaddr <= stackGrowthSpan
		},
	}
	if vm.Fault(ctx, addr, write, present) == vm.FaultKill {
		Exit(t, -1)
	}
}

// Wait blocks the calling thread until the child identified by pid has
// exited, returning its exit code (spec.md §4.11's wait()). A pid may be
// waited on exactly once; a second call returns ESRCH.
func Wait(parent *thread.Thread_t, pid defs.Pid_t) (int, defs.Err_t) {
	var target *thread.Child_t
	for _, c := range parent.Children {
		if c.Pid == pid {
			target = c
			break
		}
	}
	if target == nil || target.Reaped {
		return -1, defs.ESRCH
	}
	<-target.Done
	target.Reaped = true
	return target.ExitCode, 0
}

var exitMu sync.Mutex

// Exit records the calling thread's exit status (spec.md §6: the
// console line "<name>: exit(<n>)") and unwinds its body immediately,
// the way the real exit() syscall never returns to its caller.
func Exit(t *thread.Thread_t, code int) {
	circbuf.Default.Write(fmt.Sprintf("%s: exit(%d)", t.Name, code))
	panic(ExitSignal{Code: code})
}

// exitCleanup runs when a process's body returns: tears down its
// address space, closes its files, re-enables writes to its executable,
// and publishes its exit status (spec.md §4.11's exit()).
func exitCleanup(fsys *fs.Fs_t, t *thread.Thread_t, child *thread.Child_t) {
	exitMu.Lock()
	defer exitMu.Unlock()

	for _, f := range t.OpenFiles {
		f.Fops.Close()
	}
	if ip, ok := t.ExecInode.(*fs.Inode_t); ok {
		ip.AllowWrite()
		fsys.Iclose(ip)
	}
	for len(t.Mmaps) > 0 {
		Munmap(t, t.Mmaps[0].Id)
	}
	for _, r := range frame.Global.DeleteAllFor(t.PageDir) {
		mem.Physmem.Refdown(r.Pa)
	}

	child.Exited = true
	child.ExitCode = t.ExitCode
	close(child.Done)
}
