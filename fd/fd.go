// Package fd implements the open file descriptor table entry and the
// per-process current-working-directory record (spec.md §3's "File
// descriptor" and "Process" cwd_sector fields). Kept close to the
// teacher's own fd.Fd_t/Cwd_t shape (fd/fd.go), generalized only in the
// interface it embeds: fdops.Fdops_i here is backed by this module's
// fs.Fs_t filesystem instead of the teacher's own.
package fd

import (
	"sync"

	"pintos/bpath"
	"pintos/defs"
	"pintos/fdops"
	"pintos/ustr"
)

// File descriptor permission bits.
const (
	FD_READ    = 0x1
	FD_WRITE   = 0x2
	FD_CLOEXEC = 0x4
)

// Fd_t represents an open file descriptor: operations plus the
// permission bits it was opened with.
type Fd_t struct {
	Fops  fdops.Fdops_i
	Perms int
}

// Copyfd duplicates an open file descriptor by reopening it (spec.md
// §4.11's fork/exec descriptor inheritance).
func Copyfd(fd *Fd_t) (*Fd_t, defs.Err_t) {
	nfd := &Fd_t{}
	*nfd = *fd
	if err := nfd.Fops.Reopen(); err != 0 {
		return nil, err
	}
	return nfd, 0
}

// Close_panic closes the descriptor and panics if that fails — used on
// paths where the caller has already verified the descriptor is valid
// and a close failure would indicate a filesystem invariant violation.
func Close_panic(f *Fd_t) {
	if f.Fops.Close() != 0 {
		panic("must succeed")
	}
}

// Cwd_t tracks a process's current working directory.
type Cwd_t struct {
	sync.Mutex
	Fd   *Fd_t
	Path ustr.Ustr
}

// Fullpath joins cwd with p if p is not already absolute.
func (cwd *Cwd_t) Fullpath(p ustr.Ustr) ustr.Ustr {
	if p.IsAbsolute() {
		return p
	}
	return cwd.Path.Extend(p)
}

// Canonicalpath resolves path components of p relative to cwd into a
// normalized absolute path (spec.md §4.4's path resolution).
func (cwd *Cwd_t) Canonicalpath(p ustr.Ustr) ustr.Ustr {
	return bpath.Canonicalize(cwd.Fullpath(p))
}

// MkRootCwd constructs a Cwd_t rooted at "/".
func MkRootCwd(fd *Fd_t) *Cwd_t {
	return &Cwd_t{Fd: fd, Path: ustr.MkUstrRoot()}
}
