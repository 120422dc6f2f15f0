package thread

import (
	"container/list"

	"golang.org/x/sync/semaphore"
)

// Lock_t is a mutual-exclusion lock with priority donation (spec.md
// §4.10). The binary mutual-exclusion state is tracked by a
// golang.org/x/sync/semaphore.Weighted of capacity 1 via its
// non-blocking TryAcquire/Release, since this module's cooperative
// scheduler — not the Go runtime — decides when a blocked thread's
// goroutine resumes; a thread that failed TryAcquire parks on the
// scheduler's own block list instead of blocking inside the semaphore.
type Lock_t struct {
	sem     *semaphore.Weighted
	holder  *Thread_t
	waiters *list.List // *Thread_t, insertion order; scanned for max priority
	sched   *Sched_t
}

// MkLock constructs an unheld lock scheduled by s.
func MkLock(s *Sched_t) *Lock_t {
	return &Lock_t{sem: semaphore.NewWeighted(1), waiters: list.New(), sched: s}
}

// Acquire blocks t until the lock is free, donating t's priority to the
// current holder (and transitively through any lock the holder itself
// awaits) while waiting.
func (l *Lock_t) Acquire(t *Thread_t) {
	for {
		if l.sem.TryAcquire(1) {
			l.holder = t
			t.OwnedLocks = append(t.OwnedLocks, l)
			return
		}
		t.AwaitingLock = l
		l.waiters.PushBack(t)
		if l.holder != nil {
			l.holder.Donate(t.Priority)
		}
		l.sched.Block(t)
		t.AwaitingLock = nil
		l.removeWaiter(t)
	}
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *Lock_t) TryAcquire(t *Thread_t) bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.holder = t
	t.OwnedLocks = append(t.OwnedLocks, l)
	return true
}

// Release gives up the lock, restores t's own priority (undoing any
// donation), and wakes the highest-priority waiter if any.
func (l *Lock_t) Release(t *Thread_t) {
	l.sem.Release(1)
	for i, o := range t.OwnedLocks {
		if o == l {
			t.OwnedLocks = append(t.OwnedLocks[:i], t.OwnedLocks[i+1:]...)
			break
		}
	}
	l.holder = nil
	t.RecomputePriority()
	if w := l.highestWaiter(); w != nil {
		l.sched.Wake(w)
	}
}

func (l *Lock_t) removeWaiter(t *Thread_t) {
	for e := l.waiters.Front(); e != nil; e = e.Next() {
		if e.Value.(*Thread_t) == t {
			l.waiters.Remove(e)
			return
		}
	}
}

func (l *Lock_t) highestWaiter() *Thread_t {
	var best *Thread_t
	for e := l.waiters.Front(); e != nil; e = e.Next() {
		t := e.Value.(*Thread_t)
		if best == nil || t.Priority > best.Priority {
			best = t
		}
	}
	return best
}

func (l *Lock_t) maxWaiterPriority() int {
	if w := l.highestWaiter(); w != nil {
		return w.Priority
	}
	return -1
}

// Sema_t is a counting semaphore. Unlike Lock_t, Up is not always
// paired with a prior Down by the same caller (a producer may signal
// before any consumer ever waits), which semaphore.Weighted's
// acquire/release accounting does not support cleanly — so this builds
// directly on the scheduler's block/wake queue instead (see DESIGN.md).
type Sema_t struct {
	value   int
	waiters *list.List
	sched   *Sched_t
}

// MkSema constructs a semaphore with the given initial value.
func MkSema(value int, s *Sched_t) *Sema_t {
	return &Sema_t{value: value, waiters: list.New(), sched: s}
}

// Down blocks t until the semaphore's value is positive, then consumes
// one unit.
func (s *Sema_t) Down(t *Thread_t) {
	for s.value == 0 {
		s.waiters.PushBack(t)
		s.sched.Block(t)
	}
	s.value--
}

// Up adds one unit, waking a waiter if any is parked.
func (s *Sema_t) Up() {
	s.value++
	if e := s.waiters.Front(); e != nil {
		s.waiters.Remove(e)
		s.sched.Wake(e.Value.(*Thread_t))
	}
}

// Cond_t is a Mesa-style condition variable associated with a Lock_t,
// the shape the original's synch.c condvar has (wait releases the lock,
// reacquires it before returning).
type Cond_t struct {
	waiters *list.List
	sched   *Sched_t
}

// MkCond constructs a condition variable scheduled by s.
func MkCond(s *Sched_t) *Cond_t {
	return &Cond_t{waiters: list.New(), sched: s}
}

// Wait releases l, blocks t until signaled, then reacquires l.
func (c *Cond_t) Wait(t *Thread_t, l *Lock_t) {
	c.waiters.PushBack(t)
	l.Release(t)
	c.sched.Block(t)
	l.Acquire(t)
}

// Signal wakes a single waiter, if any.
func (c *Cond_t) Signal() {
	if e := c.waiters.Front(); e != nil {
		c.waiters.Remove(e)
		c.sched.Wake(e.Value.(*Thread_t))
	}
}

// Broadcast wakes every waiter.
func (c *Cond_t) Broadcast() {
	for e := c.waiters.Front(); e != nil; e = c.waiters.Front() {
		c.waiters.Remove(e)
		c.sched.Wake(e.Value.(*Thread_t))
	}
}
