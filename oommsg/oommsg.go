// Package oommsg carries out-of-memory notifications from the frame
// table to whatever is waiting for physical pages to free up. Kept from
// the teacher's oommsg package (a one-struct, one-channel package there
// too) and wired into frame.Alloc's allocation path: when no frame is
// free and the eviction path finds nothing to evict, the allocator posts
// a Oommsg_t on OomCh and blocks on Resume instead of failing outright.
package oommsg

// OomCh is sent a request whenever an allocation finds no free frame and
// eviction fails to free one.
var OomCh = make(chan Oommsg_t)

// Oommsg_t is sent on OomCh when memory is exhausted. Need is the number
// of frames the requester is blocked on; Resume is signaled once a victim
// has been evicted and the requester should retry.
type Oommsg_t struct {
	Need   int
	Resume chan bool
}
