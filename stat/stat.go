// Package stat mirrors a file's stat information, filled in by a
// descriptor's Fstat and by ufs.Kernel_t.Stat. Adapted from the teacher's stat package:
// the teacher packs Stat_t into bytes with a raw unsafe.Pointer cast
// (legitimate there because its stat buffer is assembled once and handed
// straight to a user-memory copy routine); this module instead uses
// encoding/binary; the teacher's own build tooling (kernel/chentry.go)
// already prefers encoding/binary over unsafe for on-disk/on-wire
// structures, and stat's byte form crosses the simulated user boundary
// the same way a wire format would.
package stat

import "encoding/binary"

// Stat_t mirrors a file's stat information.
type Stat_t struct {
	dev     uint64
	ino     uint64
	mode    uint64
	size    uint64
	rdev    uint64
	blocks  uint64
	isdir   uint64
}

// Wdev stores the device ID.
func (st *Stat_t) Wdev(v uint64) { st.dev = v }

// Wino stores the inode number.
func (st *Stat_t) Wino(v uint64) { st.ino = v }

// Wmode records the file mode.
func (st *Stat_t) Wmode(v uint64) { st.mode = v }

// Wsize records the file size.
func (st *Stat_t) Wsize(v uint64) { st.size = v }

// Wrdev stores the rdev field.
func (st *Stat_t) Wrdev(v uint64) { st.rdev = v }

// Wblocks stores the number of data blocks consumed.
func (st *Stat_t) Wblocks(v uint64) { st.blocks = v }

// Wisdir records whether the inode is a directory.
func (st *Stat_t) Wisdir(v bool) {
	if v {
		st.isdir = 1
	} else {
		st.isdir = 0
	}
}

// Mode returns the stored mode value.
func (st *Stat_t) Mode() uint64 { return st.mode }

// Size returns the stored size.
func (st *Stat_t) Size() uint64 { return st.size }

// Rdev returns the stored rdev.
func (st *Stat_t) Rdev() uint64 { return st.rdev }

// Rino returns the stored inode number (the inumber syscall's return
// value).
func (st *Stat_t) Rino() uint64 { return st.ino }

// Isdir reports whether the stat record describes a directory.
func (st *Stat_t) Isdir() bool { return st.isdir != 0 }

// Bytes serializes the structure to little-endian bytes for copying into
// the simulated user address space.
func (st *Stat_t) Bytes() []uint8 {
	buf := make([]uint8, 7*8)
	binary.LittleEndian.PutUint64(buf[0:], st.dev)
	binary.LittleEndian.PutUint64(buf[8:], st.ino)
	binary.LittleEndian.PutUint64(buf[16:], st.mode)
	binary.LittleEndian.PutUint64(buf[24:], st.size)
	binary.LittleEndian.PutUint64(buf[32:], st.rdev)
	binary.LittleEndian.PutUint64(buf[40:], st.blocks)
	binary.LittleEndian.PutUint64(buf[48:], st.isdir)
	return buf
}
