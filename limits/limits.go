// Package limits tracks system-wide resource ceilings: open frames,
// swap slots, buffer cache blocks, and live processes. Adapted from the
// teacher's limits package (same Sysatomic_t take/give accounting
// pattern), narrowed to the resources this kernel actually rations —
// the teacher's network/futex/arp counters have no collaborator here and
// are dropped (see DESIGN.md).
package limits

import "sync/atomic"

// Sysatomic_t is a numeric limit that can be atomically taken and given
// back. A negative running total means the limit has been exceeded and
// the attempted Taken() call is rolled back and reported as failure.
type Sysatomic_t int64

// Taken tries to reserve n units of the limit. It returns false, without
// changing the limit, when doing so would exceed it.
func (s *Sysatomic_t) Taken(n int64) bool {
	if n < 0 {
		panic("negative reservation")
	}
	g := atomic.AddInt64((*int64)(s), -n)
	if g >= 0 {
		return true
	}
	atomic.AddInt64((*int64)(s), n)
	return false
}

// Given returns n units to the limit.
func (s *Sysatomic_t) Given(n int64) {
	if n < 0 {
		panic("negative return")
	}
	atomic.AddInt64((*int64)(s), n)
}

// Take reserves a single unit.
func (s *Sysatomic_t) Take() bool { return s.Taken(1) }

// Give returns a single unit.
func (s *Sysatomic_t) Give() { s.Given(1) }

// Remaining reports the current number of free units.
func (s *Sysatomic_t) Remaining() int64 {
	return atomic.LoadInt64((*int64)(s))
}

// Syslimit_t holds the kernel's configured resource ceilings.
type Syslimit_t struct {
	// Number of physical frames available to user pages (spec.md §4.6).
	Frames Sysatomic_t
	// Number of swap slots available on the swap disk (spec.md §4.7).
	SwapSlots Sysatomic_t
	// Number of buffer-cache slots (spec.md §4.1); fixed at 64 but
	// modeled as a limit so exhaustion goes through the same
	// take/give accounting as every other resource.
	CacheSlots Sysatomic_t
	// Maximum number of live processes.
	Procs Sysatomic_t
}

// MkSysLimit returns the default set of limits.
func MkSysLimit(nframes, nswap, ncache, nprocs int64) *Syslimit_t {
	return &Syslimit_t{
		Frames:     Sysatomic_t(nframes),
		SwapSlots:  Sysatomic_t(nswap),
		CacheSlots: Sysatomic_t(ncache),
		Procs:      Sysatomic_t(nprocs),
	}
}

// Syslimit is the global, process-wide limit set; a caller may replace it
// via MkSysLimit + direct assignment.
var Syslimit = MkSysLimit(1<<16, 1<<12, 64, 1<<14)
