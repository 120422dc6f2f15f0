// Package device provides Disk_i implementations backing the buffer
// cache (fs package) and the swap area (swap package). Grounded on the
// teacher's ufs/driver.go ahci_disk_t, a file-backed Disk_i stub used by
// Biscuit's own host test harness to drive its filesystem without real
// AHCI hardware; this module promotes that same technique to the
// kernel's only disk implementation, since the whole kernel now runs
// hosted (spec.md §1 non-goals exclude the disk driver itself).
package device

import (
	"os"
	"sync"

	"pintos/fs"
)

// FileDisk is a Disk_i backed by an *os.File, one sector per fs.BSIZE
// bytes. Mirrors ahci_disk_t's Seek-then-Read/Write-then-sync shape.
type FileDisk struct {
	sync.Mutex
	f      *os.File
	nsecs  int
}

// OpenFileDisk opens (creating if needed) a file-backed disk of the
// given sector count.
func OpenFileDisk(path string, nsecs int) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	sz := int64(nsecs) * int64(fs.BSIZE)
	if err := f.Truncate(sz); err != nil {
		f.Close()
		return nil, err
	}
	return &FileDisk{f: f, nsecs: nsecs}, nil
}

// Size reports the disk's sector count.
func (d *FileDisk) Size() int { return d.nsecs }

// Start services a block device request synchronously, matching the
// teacher's ahci_disk_t.Start: it performs the I/O inline, so the request
// is complete when Start returns. Blocks are left locked and referenced
// for the caller to release.
func (d *FileDisk) Start(req *fs.Bdev_req_t) bool {
	d.Lock()
	defer d.Unlock()

	switch req.Cmd {
	case fs.BDEV_READ:
		if req.Blks.Len() != 1 {
			panic("read: too many blocks")
		}
		blk := req.Blks.FrontBlock()
		d.seek(blk.Block)
		buf := make([]byte, fs.BSIZE)
		n, err := d.f.Read(buf)
		if n != fs.BSIZE || err != nil {
			panic(err)
		}
		copy(blk.Data[:], buf)
	case fs.BDEV_WRITE:
		for b := req.Blks.FrontBlock(); b != nil; b = req.Blks.NextBlock() {
			d.seek(b.Block)
			n, err := d.f.Write(b.Data[:])
			if n != fs.BSIZE || err != nil {
				panic(err)
			}
		}
	case fs.BDEV_FLUSH:
		d.f.Sync()
	}
	return false
}

func (d *FileDisk) seek(sector int) {
	if _, err := d.f.Seek(int64(sector)*int64(fs.BSIZE), 0); err != nil {
		panic(err)
	}
}

// Stats reports disk statistics; file-backed disks track none.
func (d *FileDisk) Stats() string { return "" }

// Close flushes and closes the backing file.
func (d *FileDisk) Close() error {
	d.f.Sync()
	return d.f.Close()
}

// MemDisk is a Disk_i backed entirely by memory, useful for tests that
// don't want filesystem side effects (mirrors the teacher's
// BootMemFS path).
type MemDisk struct {
	sync.Mutex
	secs [][fs.BSIZE]byte
}

// NewMemDisk allocates an in-memory disk of the given sector count.
func NewMemDisk(nsecs int) *MemDisk {
	return &MemDisk{secs: make([][fs.BSIZE]byte, nsecs)}
}

// Size reports the disk's sector count.
func (d *MemDisk) Size() int { return len(d.secs) }

// Start services a block device request against the in-memory array.
func (d *MemDisk) Start(req *fs.Bdev_req_t) bool {
	d.Lock()
	defer d.Unlock()

	switch req.Cmd {
	case fs.BDEV_READ:
		blk := req.Blks.FrontBlock()
		copy(blk.Data[:], d.secs[blk.Block][:])
	case fs.BDEV_WRITE:
		for b := req.Blks.FrontBlock(); b != nil; b = req.Blks.NextBlock() {
			copy(d.secs[b.Block][:], b.Data[:])
		}
	case fs.BDEV_FLUSH:
	}
	return false
}

// Stats reports disk statistics; in-memory disks track none.
func (d *MemDisk) Stats() string { return "" }
