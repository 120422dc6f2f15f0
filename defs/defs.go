// Package defs holds the small set of types and sentinel values shared by
// every other package: the kernel error code, thread/process identifiers,
// and the page-size constants that both the filesystem and the virtual
// memory core are built around.
package defs

// Err_t is the kernel's sole error-reporting mechanism. It is always
// negative on failure and zero on success, mirroring a negated errno; no
// package in this module returns a Go error from a fallible kernel
// operation. Most syscalls translate Err_t into their own documented
// failure sentinel (false, -1, 0) at the syscalls boundary.
type Err_t int

// Sentinel error codes. Only the subset the filesystem, VM core, and
// process lifecycle actually produce.
const (
	EPERM    Err_t = -1
	ENOENT   Err_t = -2
	ESRCH    Err_t = -3
	EIO      Err_t = -5
	ENOMEM   Err_t = -12
	EACCES   Err_t = -13
	EFAULT   Err_t = -14
	EEXIST   Err_t = -17
	ENOTDIR  Err_t = -20
	EISDIR   Err_t = -21
	EINVAL   Err_t = -22
	ENOSPC   Err_t = -28
	ENAMETOOLONG Err_t = -36
	ENOTEMPTY    Err_t = -39
)

// Tid_t identifies a thread (and, since every process is represented by
// its first thread, a process) for the lifetime of the kernel.
type Tid_t int

// Pid_t identifies a process for exec/wait.
type Pid_t int

// Mid_t identifies a live mmap mapping within a single process.
type Mid_t int

// NoTid is returned by allocators when no identifier is available.
const NoTid Tid_t = -1
