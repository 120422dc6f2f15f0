package fs

import (
	"pintos/mem"
	"pintos/util"
)

// Superblock_t represents the on-disk super block of a filesystem: the
// root of all the other structures' bootstrapping (spec.md §4.5). Kept
// from the teacher's fs/super.go field-by-field, with fieldr/fieldw
// implemented here via util.Readn/Writen (the teacher's own versions did
// not survive the retrieval pack's pruning).
type Superblock_t struct {
	Data *mem.Pg_t
}

func fieldr(d *mem.Pg_t, field int) int {
	return util.Readn(d[:], 8, field*8)
}

func fieldw(d *mem.Pg_t, field int, v int) {
	util.Writen(d[:], 8, field*8, v)
}

// Loglen returns the length of the on-disk log in blocks. Unused by
// this filesystem (no write-ahead log, spec.md has none) but kept as a
// reserved field for layout compatibility with the teacher's superblock
// shape.
func (sb *Superblock_t) Loglen() int { return fieldr(sb.Data, 0) }

// Freemapblock gives the starting block of the free-map file's inode.
func (sb *Superblock_t) Freemapblock() int { return fieldr(sb.Data, 1) }

// Rootblock gives the sector of the root directory's inode.
func (sb *Superblock_t) Rootblock() int { return fieldr(sb.Data, 2) }

// Freeblock gives the starting block of the free block bitmap's data.
func (sb *Superblock_t) Freeblock() int { return fieldr(sb.Data, 3) }

// Freeblocklen returns the length (in sectors) of the free block bitmap.
func (sb *Superblock_t) Freeblocklen() int { return fieldr(sb.Data, 4) }

// Inodelen reports the number of blocks reserved for inodes.
func (sb *Superblock_t) Inodelen() int { return fieldr(sb.Data, 5) }

// Lastblock returns the address of the last block on the device.
func (sb *Superblock_t) Lastblock() int { return fieldr(sb.Data, 6) }

// SetLoglen updates the log length field.
func (sb *Superblock_t) SetLoglen(n int) { fieldw(sb.Data, 0, n) }

// SetFreemapblock records the free-map inode's sector.
func (sb *Superblock_t) SetFreemapblock(n int) { fieldw(sb.Data, 1, n) }

// SetRootblock records the root directory inode's sector.
func (sb *Superblock_t) SetRootblock(n int) { fieldw(sb.Data, 2, n) }

// SetFreeblock stores the start of the free block bitmap.
func (sb *Superblock_t) SetFreeblock(n int) { fieldw(sb.Data, 3, n) }

// SetFreeblocklen writes the free block bitmap length.
func (sb *Superblock_t) SetFreeblocklen(n int) { fieldw(sb.Data, 4, n) }

// SetInodelen writes the number of inode blocks.
func (sb *Superblock_t) SetInodelen(n int) { fieldw(sb.Data, 5, n) }

// SetLastblock stores the address of the last block on the disk.
func (sb *Superblock_t) SetLastblock(n int) { fieldw(sb.Data, 6, n) }
