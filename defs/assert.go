package defs

import (
	"fmt"

	"pintos/caller"
	"pintos/circbuf"
)

// Assert halts the kernel when an invariant the implementation depends on
// for correctness (not a recoverable, caller-triggerable condition) does
// not hold: duplicate buffer-cache allocation, inode magic mismatch,
// priority-accounting inconsistency, and the like. Recoverable failures
// use Err_t sentinels instead; Assert is reserved for bugs.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		msg := fmt.Sprintf("kernel assertion failed: "+format, args...)
		circbuf.Default.Write(msg)
		caller.Callerdump(2)
		panic(msg)
	}
}
