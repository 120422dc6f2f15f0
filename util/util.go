// Package util contains small generic helpers shared across the kernel:
// alignment arithmetic and fixed-width scalar packing. Kept from the
// teacher almost verbatim for the arithmetic helpers; Readn/Writen replace
// the teacher's unsafe-pointer slice reinterpretation with
// encoding/binary, used anywhere a handful of native ints need to be
// packed into (or read back from) a byte buffer — e.g. accnt's rusage
// encoding, and the fields of the on-disk inodes, dirents and superblock
// in fs/layout.go and fs/super.go.
package util

import "encoding/binary"

// Int is satisfied by all built-in integer types.
type Int interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Min returns the smaller of a and b.
func Min[T Int](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[T Int](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Rounddown aligns v down to the nearest multiple of b.
func Rounddown[T Int](v, b T) T {
	return v - (v % b)
}

// Roundup aligns v up to the nearest multiple of b.
func Roundup[T Int](v, b T) T {
	return Rounddown(v+b-1, b)
}

// Writen writes the low sz bytes of val into buf at the given offset,
// little-endian. sz must be 1, 2, 4, or 8.
func Writen(buf []uint8, sz, off, val int) {
	switch sz {
	case 1:
		buf[off] = uint8(val)
	case 2:
		binary.LittleEndian.PutUint16(buf[off:], uint16(val))
	case 4:
		binary.LittleEndian.PutUint32(buf[off:], uint32(val))
	case 8:
		binary.LittleEndian.PutUint64(buf[off:], uint64(val))
	default:
		panic("bad writen size")
	}
}

// Readn reads sz little-endian bytes from buf at the given offset and
// returns them as an int. sz must be 1, 2, 4, or 8.
func Readn(buf []uint8, sz, off int) int {
	switch sz {
	case 1:
		return int(buf[off])
	case 2:
		return int(binary.LittleEndian.Uint16(buf[off:]))
	case 4:
		return int(binary.LittleEndian.Uint32(buf[off:]))
	case 8:
		return int(binary.LittleEndian.Uint64(buf[off:]))
	default:
		panic("bad readn size")
	}
}
