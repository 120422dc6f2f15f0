// Package syscalls implements the system-call surface of spec.md §6,
// dispatching into the fs/fd/proc/vm layers this module already built.
// There is no real user/kernel address-space boundary to cross (the
// non-goals in spec.md §1 exclude real memory protection), so every
// call here takes and returns plain Go values instead of raw user
// pointers — the same simplification the teacher's own `ufs` test
// harness makes when it drives the filesystem directly rather than
// through a trap frame.
package syscalls

import (
	"pintos/defs"
	"pintos/fd"
	"pintos/fs"
	"pintos/proc"
	"pintos/stat"
	"pintos/thread"
	"pintos/ustr"
)

// Sys_t bundles the subsystems every syscall dispatches through.
type Sys_t struct {
	Fs       *fs.Fs_t
	Sched    *thread.Sched_t
	Shutdown func()
}

func cwdSector(fsys *fs.Fs_t, t *thread.Thread_t) int {
	if t.Cwd == nil {
		return fsys.RootSec
	}
	if p, ok := t.Cwd.Fd.Fops.(interface{ Pathi() int }); ok {
		return p.Pathi()
	}
	return fsys.RootSec
}

// Halt stops the kernel (spec.md §6's halt).
func (s *Sys_t) Halt() {
	if s.Shutdown != nil {
		s.Shutdown()
	}
}

// Exit terminates the calling thread with status (spec.md §6's
// exit(status)); it never returns.
func (s *Sys_t) Exit(t *thread.Thread_t, status int) {
	proc.Exit(t, status)
}

// Exec starts cmdline as a new process, returning its pid (spec.md §6's
// exec(cmdline) -> pid). body supplies the process's user-level logic,
// since this module cannot execute arbitrary compiled machine code.
func (s *Sys_t) Exec(t *thread.Thread_t, cmdline string, argv []string, body proc.Body_t) (defs.Pid_t, defs.Err_t) {
	child, err := proc.Exec(s.Fs, s.Sched, t, cmdline, argv, body)
	if err != 0 {
		return -1, err
	}
	return child.Pid, 0
}

// Wait blocks for pid's exit status (spec.md §6's wait(pid) -> status).
func (s *Sys_t) Wait(t *thread.Thread_t, pid defs.Pid_t) (int, defs.Err_t) {
	return proc.Wait(t, pid)
}

// Create makes a new, empty regular file (spec.md §6's create(name,
// init_size) -> bool).
func (s *Sys_t) Create(t *thread.Thread_t, name string, initSize int) bool {
	parentSec, leaf, err := s.Fs.Resolve(name, cwdSector(s.Fs, t), true)
	if err != 0 || leaf == "" {
		return false
	}
	sector, ok := s.Fs.Freemap.Allocate(1)
	if !ok {
		return false
	}
	if err := s.Fs.Icreate(sector, initSize, false); err != 0 {
		s.Fs.Freemap.Release(sector, 1)
		return false
	}
	dir := s.Fs.OpenDir(s.Fs.Iopen(parentSec))
	defer dir.Close()
	if err := dir.Add(leaf, sector); err != 0 {
		return false
	}
	return true
}

// Remove unlinks name (spec.md §6's remove(name) -> bool).
func (s *Sys_t) Remove(t *thread.Thread_t, name string) bool {
	parentSec, leaf, err := s.Fs.Resolve(name, cwdSector(s.Fs, t), true)
	if err != 0 || leaf == "" {
		return false
	}
	dir := s.Fs.OpenDir(s.Fs.Iopen(parentSec))
	defer dir.Close()
	sector, ok := dir.Lookup(leaf)
	if !ok {
		return false
	}
	if err := dir.Remove(leaf); err != 0 {
		return false
	}
	ip := s.Fs.Iopen(sector)
	s.Fs.Iremove(ip)
	s.Fs.Iclose(ip)
	return true
}

// Open opens name, returning a process-local descriptor number (spec.md
// §6's open(name) -> fd).
func (s *Sys_t) Open(t *thread.Thread_t, name string, perms int) (int, defs.Err_t) {
	sector, _, err := s.Fs.Resolve(name, cwdSector(s.Fs, t), false)
	if err != 0 {
		return -1, err
	}
	ip := s.Fs.Iopen(sector)
	var f *fd.Fd_t
	if ip.IsDirectory() {
		f = &fd.Fd_t{Fops: fd.MkDirFops(s.Fs, ip, sector), Perms: perms}
	} else {
		f = &fd.Fd_t{Fops: fd.MkFileFops(s.Fs, ip, sector, false), Perms: perms}
	}
	fdnum := t.NextFd
	t.NextFd++
	t.OpenFiles[fdnum] = f
	return fdnum, 0
}

// Filesize returns fd's length in bytes (spec.md §6's filesize(fd) ->
// int).
func (s *Sys_t) Filesize(t *thread.Thread_t, fdnum int) int {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return -1
	}
	var st stat.Stat_t
	if f.Fops.Fstat(&st) != 0 {
		return -1
	}
	return int(st.Size())
}

// Read reads up to len(buf) bytes from fd (spec.md §6's read(fd, buf,
// size) -> int). A negative size is the caller's responsibility to slice
// down to zero bytes before calling, per spec.md §9's note on negative
// lengths.
func (s *Sys_t) Read(t *thread.Thread_t, fdnum int, buf []byte) (int, defs.Err_t) {
	if len(buf) == 0 {
		return 0, 0
	}
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return -1, defs.EINVAL
	}
	return f.Fops.Read(MkUio(buf))
}

// Write writes buf to fd (spec.md §6's write(fd, buf, size) -> int).
func (s *Sys_t) Write(t *thread.Thread_t, fdnum int, buf []byte) (int, defs.Err_t) {
	if len(buf) == 0 {
		return 0, 0
	}
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return -1, defs.EINVAL
	}
	return f.Fops.Write(MkUio(buf))
}

// Seek repositions fd's cursor (spec.md §6's seek(fd, pos)).
func (s *Sys_t) Seek(t *thread.Thread_t, fdnum int, pos int) defs.Err_t {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return defs.EINVAL
	}
	_, err := f.Fops.Seek(pos, 0)
	return err
}

// Tell returns fd's current cursor (spec.md §6's tell(fd) -> pos).
func (s *Sys_t) Tell(t *thread.Thread_t, fdnum int) int {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return -1
	}
	pos, _ := f.Fops.Seek(0, 1)
	return pos
}

// Close closes fd (spec.md §6's close(fd)).
func (s *Sys_t) Close(t *thread.Thread_t, fdnum int) {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return
	}
	fd.Close_panic(f)
	delete(t.OpenFiles, fdnum)
}

// Chdir changes the calling thread's current directory (spec.md §6's
// chdir(dir)).
func (s *Sys_t) Chdir(t *thread.Thread_t, dir string) bool {
	sector, _, err := s.Fs.Resolve(dir, cwdSector(s.Fs, t), false)
	if err != 0 {
		return false
	}
	ip := s.Fs.Iopen(sector)
	if !ip.IsDirectory() {
		s.Fs.Iclose(ip)
		return false
	}
	old := t.Cwd.Fd
	t.Cwd.Lock()
	t.Cwd.Fd = &fd.Fd_t{Fops: fd.MkDirFops(s.Fs, ip, sector), Perms: fd.FD_READ}
	t.Cwd.Path = t.Cwd.Canonicalpath(ustr.Ustr(dir))
	t.Cwd.Unlock()
	fd.Close_panic(old)
	return true
}

// Mkdir creates a new, empty directory (spec.md §6's mkdir(dir) ->
// bool).
func (s *Sys_t) Mkdir(t *thread.Thread_t, dir string) bool {
	parentSec, leaf, err := s.Fs.Resolve(dir, cwdSector(s.Fs, t), true)
	if err != 0 || leaf == "" {
		return false
	}
	sector, ok := s.Fs.Freemap.Allocate(1)
	if !ok {
		return false
	}
	if err := s.Fs.CreateDir(sector, parentSec); err != 0 {
		s.Fs.Freemap.Release(sector, 1)
		return false
	}
	pdir := s.Fs.OpenDir(s.Fs.Iopen(parentSec))
	defer pdir.Close()
	if err := pdir.Add(leaf, sector); err != 0 {
		return false
	}
	return true
}

// Readdir returns the next entry name in a directory fd (spec.md §6's
// readdir(fd, name) -> bool; per-fd cursor per SPEC_FULL.md).
func (s *Sys_t) Readdir(t *thread.Thread_t, fdnum int) (string, bool) {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return "", false
	}
	name, eof, err := f.Fops.Readdir()
	if err != 0 || eof {
		return "", false
	}
	return name, true
}

// Isdir reports whether fd is a directory (spec.md §6's isdir(fd) ->
// bool).
func (s *Sys_t) Isdir(t *thread.Thread_t, fdnum int) bool {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return false
	}
	var st stat.Stat_t
	f.Fops.Fstat(&st)
	return st.Isdir()
}

// Inumber returns fd's inode number (spec.md §6's inumber(fd) -> int).
func (s *Sys_t) Inumber(t *thread.Thread_t, fdnum int) int {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return -1
	}
	return f.Fops.Pathi()
}

// Mmap maps fd into the calling thread's address space (spec.md §6's
// mmap(fd, addr) -> mid).
func (s *Sys_t) Mmap(t *thread.Thread_t, fdnum int, off, length int) (defs.Mid_t, defs.Err_t) {
	f, ok := t.OpenFiles[fdnum]
	if !ok {
		return 0, defs.EINVAL
	}
	return proc.Mmap(t, f, off, length, true, true)
}

// Munmap unmaps a previous mmap (spec.md §6's munmap(mid)).
func (s *Sys_t) Munmap(t *thread.Thread_t, mid defs.Mid_t) defs.Err_t {
	return proc.Munmap(t, mid)
}
