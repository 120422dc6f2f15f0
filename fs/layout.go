package fs

import "pintos/util"

// On-disk inode layout (spec.md §6, little-endian, one sector):
// self_sector:u32, info:u32, length:i32, direct[DIRECT_N]:i32,
// doubly_indirect:i32, magic:u32. DIRECT_N is chosen so the record is
// exactly BSIZE bytes: five fixed 4-byte fields (self_sector, info,
// length, doubly_indirect, magic) leaves (4096-20)/4 = 1019 direct
// slots.
const (
	InodeMagic = 0x494e4f44
	DIRECT_N   = (BSIZE - 5*4) / 4
	// IndirectN is the fan-out of one indirect block: S/4 entries.
	IndirectN = BSIZE / 4
	// Unallocated direct/indirect slots are encoded as 0 — sector 0 is
	// reserved for the superblock and can never be a valid data sector
	// (resolves the Open Question in spec.md §9 on which sentinel to use).
	UnallocSector = 0
)

// NAME_MAX bounds directory entry names to keep Ddirent_t's encoding
// aligned: in_use(1) + inode_sector(4) + name(NAME_MAX+1) = 32 bytes
// when NAME_MAX=26, giving NDIRENTS = BSIZE/32 = 128 entries per block.
const (
	NAME_MAX  = 26
	direntLen = 1 + 4 + (NAME_MAX + 1)
	NDIRENTS  = BSIZE / direntLen
)

// Dinode_t is the decoded form of an on-disk inode record.
type Dinode_t struct {
	SelfSector     int
	Info           int
	Length         int
	Direct         [DIRECT_N]int
	DoublyIndirect int
}

// infoIsDir / infoDepth bits (spec.md §3: "info — packed bits: bit 0 =
// is-directory; remaining bits = directory depth").
func infoIsDir(info int) bool { return info&1 != 0 }
func infoDepth(info int) int  { return info >> 1 }
func mkInfo(isdir bool, depth int) int {
	v := depth << 1
	if isdir {
		v |= 1
	}
	return v
}

// Encode packs d into a BSIZE-byte on-disk record. buf is a cache
// block's Data slice (b.Data[:]).
func (d *Dinode_t) Encode(buf []uint8) {
	off := 0
	util.Writen(buf, 4, off, d.SelfSector)
	off += 4
	util.Writen(buf, 4, off, d.Info)
	off += 4
	util.Writen(buf, 4, off, d.Length)
	off += 4
	for i := 0; i < DIRECT_N; i++ {
		util.Writen(buf, 4, off, d.Direct[i])
		off += 4
	}
	util.Writen(buf, 4, off, d.DoublyIndirect)
	off += 4
	util.Writen(buf, 4, off, InodeMagic)
}

// Decode unpacks d from a BSIZE-byte on-disk record. It panics if the
// magic number doesn't match (spec.md §7: "inode magic mismatch" is a
// programming-invariant failure, signaled as a fatal assertion).
func (d *Dinode_t) Decode(buf []uint8) {
	off := 0
	d.SelfSector = util.Readn(buf, 4, off)
	off += 4
	d.Info = util.Readn(buf, 4, off)
	off += 4
	d.Length = util.Readn(buf, 4, off)
	off += 4
	for i := 0; i < DIRECT_N; i++ {
		d.Direct[i] = util.Readn(buf, 4, off)
		off += 4
	}
	d.DoublyIndirect = util.Readn(buf, 4, off)
	off += 4
	magic := util.Readn(buf, 4, off)
	if magic != InodeMagic {
		panic("inode magic mismatch")
	}
}

// Ddirent_t is the decoded form of one on-disk directory entry.
type Ddirent_t struct {
	InUse       bool
	InodeSector int
	Name        string
}

func direntEncode(buf []uint8, off int, d *Ddirent_t) {
	if d.InUse {
		buf[off] = 1
	} else {
		buf[off] = 0
	}
	util.Writen(buf, 4, off+1, d.InodeSector)
	nb := []byte(d.Name)
	if len(nb) > NAME_MAX {
		panic("directory entry name too long")
	}
	copy(buf[off+5:off+5+NAME_MAX+1], nb)
	for i := len(nb); i < NAME_MAX+1; i++ {
		buf[off+5+i] = 0
	}
}

func direntDecode(buf []uint8, off int) Ddirent_t {
	d := Ddirent_t{InUse: buf[off] != 0, InodeSector: util.Readn(buf, 4, off+1)}
	nameBytes := buf[off+5 : off+5+NAME_MAX+1]
	n := 0
	for n < len(nameBytes) && nameBytes[n] != 0 {
		n++
	}
	d.Name = string(nameBytes[:n])
	return d
}
