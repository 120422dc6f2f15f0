// Package fdops defines the interface every open file descriptor
// implements (spec.md §4.4's file descriptor operations), and the small
// helper types that cross that interface boundary. The retrieval pack's
// copy of this package was pruned to its go.mod; this is a from-scratch
// reconstruction of the contract fd.Fd_t and the console stub in the
// teacher's ufs/driver.go establish at their call sites, narrowed to the
// operations this kernel's syscalls (spec.md §6) actually dispatch
// through it — no socket/network fd kind, since none appears in spec.md.
package fdops

import "pintos/defs"

// Userio_i abstracts a user-memory source or destination for a read or
// write, the way the teacher's circbuf.Copyin/Copyout take one. This
// module has no separate kernel/user address spaces to copy across, so
// the usual implementation (syscalls.Uio_t) just wraps a []byte.
type Userio_i interface {
	Uioread(dst []uint8) (int, defs.Err_t)
	Uiowrite(src []uint8) (int, defs.Err_t)
	Remains() int
	Totalsz() int
}

// Ready_t is a bitmask of readiness conditions.
type Ready_t uint8

const (
	R_READ Ready_t = 1 << iota
	R_WRITE
	R_ERROR
)

// Pollmsg_t describes one descriptor's poll request: which conditions
// the caller cares about, and whether to block until one is satisfied.
type Pollmsg_t struct {
	Events Ready_t
	Dowait bool
}

// Fdops_i is the set of operations any open file descriptor supports.
// Adapted from the call sites the teacher exercises against it (fd.Fd_t
// embeds one; ufs/driver.go's console_t stub implements a narrower
// ad-hoc version of it) and widened to the full set spec.md §6 needs:
// regular files, directories, and the console device. A descriptor
// backing a file mmap-able under spec.md §4.12 additionally implements
// vm.Backing_i (ReadAt/WriteAt) directly, rather than through a
// dedicated Mmapi method — proc's mmap syscall type-asserts for it.
type Fdops_i interface {
	Close() defs.Err_t
	Read(dst Userio_i) (int, defs.Err_t)
	Write(src Userio_i) (int, defs.Err_t)
	Seek(off int, whence int) (int, defs.Err_t)
	Reopen() defs.Err_t
	Fstat(st Stater_i) defs.Err_t
	Pathi() int
	Readdir() (name string, eof bool, err defs.Err_t)
	Truncate(newlen uint) defs.Err_t
}

// Stater_i is the narrow write-only view of stat.Stat_t that Fstat
// fills in, kept here instead of importing the stat package directly to
// avoid fdops depending on it for a single method set.
type Stater_i interface {
	Wdev(uint64)
	Wino(uint64)
	Wmode(uint64)
	Wsize(uint64)
	Wrdev(uint64)
	Wblocks(uint64)
	Wisdir(bool)
}
