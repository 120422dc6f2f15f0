// Package thread implements the kernel's thread control block, the
// cooperative single-CPU scheduler, and the synchronization primitives
// built on top of it (spec.md §4.10). There is no real CPU to preempt:
// each Thread_t runs in its own goroutine but only one holds the
// scheduler's token at a time, the same "exactly one runnable thread
// makes progress" guarantee the original cooperative kernel enforces by
// never interrupting outside of thread_yield/block points.
package thread

import (
	"pintos/accnt"
	"pintos/defs"
	"pintos/fd"
	"pintos/vm"
)

// State_t is a thread's scheduling state.
type State_t int

const (
	Running State_t = iota
	Ready
	Blocked
	Dying
)

// Priority bounds, matching the original's PRI_MIN/PRI_DEFAULT/PRI_MAX.
const (
	PriMin     = 0
	PriDefault = 31
	PriMax     = 63
)

// Mmap_t is one live mmap mapping owned by a thread/process (spec.md
// §4.12), kept here rather than in proc to avoid a thread<->proc cycle:
// proc.Mmap/Munmap operate on a Thread_t's Mmaps slice directly.
type Mmap_t struct {
	Id     defs.Mid_t
	Addr   uintptr
	Length int
	Fops   vm.Backing_i
	Shared bool
}

// Thread_t is the kernel's thread/process control block (spec.md §3's
// "Thread" record). Every process is represented by its first thread;
// child processes are just threads whose Parent is non-nil.
type Thread_t struct {
	accnt.Accnt_t

	Tid   defs.Tid_t
	Name  string
	State State_t

	Priority     int
	OrigPriority int
	AwaitingLock *Lock_t
	OwnedLocks   []*Lock_t

	// MLFQS bookkeeping (SPEC_FULL.md's supplemented MLFQS scheduler).
	RecentCpu Fixed_t
	Niceness  int

	WakeupTick int64

	Parent   *Thread_t
	Children []*Child_t

	OpenFiles map[int]*fd.Fd_t
	NextFd    int
	Cwd       *fd.Cwd_t

	Mmaps   []*Mmap_t
	NextMid defs.Mid_t

	PageDir *vm.PageDir_t
	Supp    *vm.Supptable_t
	UserEsp uintptr

	ExecInode interface{} // *fs.Inode_t of the running executable, deny_write'd for the thread's lifetime
	ExitCode  int

	run  chan struct{} // token: receive from this to be scheduled
	dead chan struct{} // closed once the thread's body returns
}

// Child_t records a child process's identity and exit status for its
// parent's wait() (spec.md §4.11).
type Child_t struct {
	Tid      defs.Tid_t
	Pid      defs.Pid_t
	Exited   bool
	ExitCode int
	Reaped   bool
	Done     chan struct{}
}

// MkThread constructs a new, not-yet-scheduled thread.
func MkThread(tid defs.Tid_t, name string, priority int) *Thread_t {
	return &Thread_t{
		Tid:          tid,
		Name:         name,
		State:        Blocked,
		Priority:     priority,
		OrigPriority: priority,
		OpenFiles:    make(map[int]*fd.Fd_t),
		NextFd:       2,
		PageDir:      vm.MkPageDir(),
		Supp:         vm.MkSupptable(),
		run:          make(chan struct{}),
		dead:         make(chan struct{}),
	}
}

// Donate raises t's effective priority to at least pri (spec.md §4.10's
// priority donation, invoked when a higher-priority thread blocks on a
// lock t holds). The donation chain is walked transitively through
// AwaitingLock since Biscuit/Pintos caps the depth at one nested lock in
// practice, but this walks to a fixed point to match the spec exactly.
func (t *Thread_t) Donate(pri int) {
	cur := t
	for cur != nil && cur.Priority < pri {
		cur.Priority = pri
		if cur.AwaitingLock == nil {
			break
		}
		cur = cur.AwaitingLock.holder
	}
}

// RecomputePriority restores a thread's priority to the maximum of its
// own base priority and any donations still outstanding from locks it
// holds (spec.md §4.10, invoked on lock release).
func (t *Thread_t) RecomputePriority() {
	best := t.OrigPriority
	for _, l := range t.OwnedLocks {
		if w := l.maxWaiterPriority(); w > best {
			best = w
		}
	}
	t.Priority = best
}
