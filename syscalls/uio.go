package syscalls

import "pintos/defs"

// Uio_t adapts a plain []byte to fdops.Userio_i. Real Pintos/Biscuit
// copy to and from a separate user address space page by page; this
// module has no such boundary (spec.md's non-goals exclude real
// user/kernel memory protection), so Uio_t just tracks how much of a
// single Go slice has been consumed.
type Uio_t struct {
	buf []byte
	off int
}

// MkUio wraps buf for use as a read source or write destination.
func MkUio(buf []byte) *Uio_t { return &Uio_t{buf: buf} }

func (u *Uio_t) Uioread(dst []uint8) (int, defs.Err_t) {
	n := copy(dst, u.buf[u.off:])
	u.off += n
	return n, 0
}

func (u *Uio_t) Uiowrite(src []uint8) (int, defs.Err_t) {
	n := copy(u.buf[u.off:], src)
	u.off += n
	return n, 0
}

func (u *Uio_t) Remains() int { return len(u.buf) - u.off }
func (u *Uio_t) Totalsz() int { return len(u.buf) }
