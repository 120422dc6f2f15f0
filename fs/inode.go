package fs

import (
	"sync"

	"pintos/defs"
	"pintos/hashtable"
	"pintos/util"
)

// Inode_t is the in-memory inode record (spec.md §3): a sector opens to
// at most one in-memory inode (enforced by Fs_t.Iopen's open table,
// keyed by sector), open_count/removed_flag/deny_write_count track the
// lifecycle, and on_disk_copy is written back lazily.
type Inode_t struct {
	sync.Mutex
	Sector         int
	disk           Dinode_t
	OpenCount      int
	Removed        bool
	DenyWriteCount int
}

// Fs_t is the filesystem root: cache, free-map, superblock and the
// inode open table. Grounded on the teacher's ufs.Ufs_t composition
// (spec.md §4.5: "free-map itself is a file and uses the inode layer
// recursively... root directory and free-map are created before any
// other user content" — this implementation reserves the free-map's
// sectors directly instead, see freemap.go's doc comment).
type Fs_t struct {
	sync.Mutex
	Cache   *Cache_t
	Freemap *Freemap_t
	Super   *Superblock_t
	inodes  *hashtable.Hashtable_t // sector(int) -> *Inode_t
	RootSec int
}

// MkFs constructs a filesystem over disk, with cache capacity Ncache.
func MkFs(disk Disk_i, bm Blockmem_i) *Fs_t {
	c := MkCache(disk, bm)
	fs := &Fs_t{Cache: c, inodes: hashtable.MkHash(256)}
	return fs
}

// Format lays out a fresh filesystem: superblock at sector 0, a
// free-map bitmap region, then the root directory inode (spec.md §4.5's
// bootstrap ordering).
func (fs *Fs_t) Format(totalSectors int) {
	sb := fs.Cache.Get_zero(0, "superblock")
	for i := range sb.Data {
		sb.Data[i] = 0
	}
	fmapStart := 1
	// One bit per data sector; data sectors start right after the
	// free-map region and the root inode sector.
	fmapWords := wordsFor(totalSectors)
	fmapLen := (fmapWords*8 + BSIZE - 1) / BSIZE
	if fmapLen == 0 {
		fmapLen = 1
	}
	rootSec := fmapStart + fmapLen

	sbv := &Superblock_t{Data: sb.Data}
	sbv.SetFreeblock(fmapStart)
	sbv.SetFreeblocklen(fmapLen)
	sbv.SetRootblock(rootSec)
	sbv.SetLastblock(totalSectors - 1)
	fs.Cache.WriteDirty(sb)
	sb.Done("format")

	fs.Super = sbv
	fs.Freemap = MkFreemap(fs.Cache, fmapStart, totalSectors)
	// Reserve the sectors occupied by the superblock, the bitmap
	// itself, and the root inode so Allocate never hands them out.
	fs.Freemap.Create()
	fs.Freemap.Allocate(1) // sector 0 is handled by UnallocSector, but reserve it too
	for i := 0; i < fmapLen; i++ {
		fs.Freemap.Allocate(1)
	}
	fs.Freemap.Allocate(1) // reserve the root directory's own inode sector

	fs.RootSec = rootSec
	root := Dinode_t{SelfSector: rootSec, Info: mkInfo(true, 0)}
	fs.writeDinode(rootSec, &root)
	fs.Freemap.Close()
}

// Load opens an existing filesystem, reading the superblock and
// free-map back into memory.
func (fs *Fs_t) Load() {
	sb := fs.Cache.Get_fill(0, "superblock", false)
	sbv := &Superblock_t{Data: sb.Data}
	fs.Super = sbv
	fs.RootSec = sbv.Rootblock()
	lastblock := sbv.Lastblock()
	sb.Done("load")

	fs.Freemap = MkFreemap(fs.Cache, sbv.Freeblock(), lastblock+1)
	fs.Freemap.Load()
}

func (fs *Fs_t) writeDinode(sector int, d *Dinode_t) {
	b := fs.Cache.Get_zero(sector, "inode")
	d.Encode(b.Data[:])
	fs.Cache.WriteDirty(b)
	b.Done("writeDinode")
}

func (fs *Fs_t) readDinode(sector int) Dinode_t {
	b := fs.Cache.Get_fill(sector, "inode", false)
	var d Dinode_t
	d.Decode(b.Data[:])
	b.Done("readDinode")
	return d
}

// Iopen returns the single in-memory inode for sector, incrementing
// open_count; a fresh open reads the on-disk record (spec.md §4.3's
// open() contract).
func (fs *Fs_t) Iopen(sector int) *Inode_t {
	fs.Lock()
	if v, ok := fs.inodes.Get(sector); ok {
		ip := v.(*Inode_t)
		ip.Lock()
		ip.OpenCount++
		ip.Unlock()
		fs.Unlock()
		return ip
	}
	ip := &Inode_t{Sector: sector, disk: fs.readDinode(sector), OpenCount: 1}
	fs.inodes.Set(sector, ip)
	fs.Unlock()
	return ip
}

// Icreate allocates data sectors to cover length, writes the on-disk
// inode and zeroes the new data (spec.md §4.3's create()). On partial
// failure every sector allocated is released.
func (fs *Fs_t) Icreate(sector int, length int, isdir bool) defs.Err_t {
	d := Dinode_t{SelfSector: sector, Info: mkInfo(isdir, 0)}
	allocated, ok := fs.extend(&d, length)
	if !ok {
		fs.releaseSectors(allocated)
		return defs.ENOSPC
	}
	d.Length = length
	fs.writeDinode(sector, &d)
	return 0
}

// Iclose decrements open_count; at zero, if Removed is set, releases
// every data sector, every indirect block, the doubly-indirect block,
// and the inode sector itself (spec.md §4.3's close()).
func (fs *Fs_t) Iclose(ip *Inode_t) {
	ip.Lock()
	ip.OpenCount--
	done := ip.OpenCount == 0
	removed := ip.Removed
	d := ip.disk
	ip.Unlock()
	if !done {
		return
	}
	fs.Lock()
	fs.inodes.Del(ip.Sector)
	fs.Unlock()
	if removed {
		fs.releaseAll(&d)
		fs.Freemap.Release(ip.Sector, 1)
	}
}

// Iremove marks the inode removed; release happens once open_count
// drops to zero (spec.md §3's removed_flag invariant).
func (fs *Fs_t) Iremove(ip *Inode_t) {
	ip.Lock()
	ip.Removed = true
	ip.Unlock()
}

// Length returns the inode's current length.
func (ip *Inode_t) Length() int {
	ip.Lock()
	defer ip.Unlock()
	return ip.disk.Length
}

// IsDirectory reports whether the inode is a directory.
func (ip *Inode_t) IsDirectory() bool {
	ip.Lock()
	defer ip.Unlock()
	return infoIsDir(ip.disk.Info)
}

// GetLevel returns the directory-depth bits of the info field.
func (ip *Inode_t) GetLevel() int {
	ip.Lock()
	defer ip.Unlock()
	return infoDepth(ip.disk.Info)
}

// SetLevel updates the directory-depth bits, preserving is-directory.
func (ip *Inode_t) SetLevel(level int) {
	ip.Lock()
	defer ip.Unlock()
	ip.disk.Info = mkInfo(infoIsDir(ip.disk.Info), level)
}

// DenyWrite increments the deny-write counter (spec.md §4.3's
// deny_write(), used by the loader to protect a running executable).
func (ip *Inode_t) DenyWrite() {
	ip.Lock()
	defer ip.Unlock()
	ip.DenyWriteCount++
}

// AllowWrite decrements the deny-write counter.
func (ip *Inode_t) AllowWrite() {
	ip.Lock()
	defer ip.Unlock()
	if ip.DenyWriteCount > 0 {
		ip.DenyWriteCount--
	}
}

// Deniable reports whether writes are currently denied.
func (ip *Inode_t) Deniable() bool {
	ip.Lock()
	defer ip.Unlock()
	return ip.DenyWriteCount > 0
}

func sectorOf(d *Dinode_t, blockIdx int, fs *Fs_t) int {
	if blockIdx < DIRECT_N {
		return d.Direct[blockIdx]
	}
	idx := blockIdx - DIRECT_N
	indirectIdx := idx / IndirectN
	within := idx % IndirectN
	if d.DoublyIndirect == 0 {
		return 0
	}
	ib := fs.Cache.Get_fill(d.DoublyIndirect, "dind", false)
	indSector := util.Readn(ib.Data[:], 4, indirectIdx*4)
	ib.Done("sectorOf")
	if indSector == 0 {
		return 0
	}
	b := fs.Cache.Get_fill(indSector, "ind", false)
	sec := util.Readn(b.Data[:], 4, within*4)
	b.Done("sectorOf")
	return sec
}

// ReadAt reads up to len(buf) bytes at offset, clamped to the file's
// length (spec.md §4.3's read_at contract). Returns bytes read.
func (fs *Fs_t) ReadAt(ip *Inode_t, buf []byte, offset int) int {
	ip.Lock()
	d := ip.disk
	ip.Unlock()

	if offset >= d.Length || len(buf) <= 0 {
		return 0
	}
	n := len(buf)
	if offset+n > d.Length {
		n = d.Length - offset
	}
	got := 0
	for got < n {
		blockIdx := (offset + got) / BSIZE
		inBlock := (offset + got) % BSIZE
		tocopy := util.Min(BSIZE-inBlock, n-got)
		sec := sectorOf(&d, blockIdx, fs)
		if sec == UnallocSector {
			for i := 0; i < tocopy; i++ {
				buf[got+i] = 0
			}
		} else {
			b := fs.Cache.Get_fill(sec, "data", false)
			copy(buf[got:got+tocopy], b.Data[inBlock:inBlock+tocopy])
			b.Done("ReadAt")
		}
		got += tocopy
	}
	return got
}

// WriteAt writes len(buf) bytes at offset, extending the file first if
// offset+len(buf) > length (spec.md §4.3's write_at contract, including
// sparse zero-fill of any gap).
func (fs *Fs_t) WriteAt(ip *Inode_t, buf []byte, offset int) (int, defs.Err_t) {
	ip.Lock()
	d := ip.disk
	ip.Unlock()

	end := offset + len(buf)
	if end > d.Length {
		allocated, ok := fs.extend(&d, end)
		if !ok {
			fs.releaseSectors(allocated)
			return 0, defs.ENOSPC
		}
		d.Length = end
	}

	put := 0
	for put < len(buf) {
		blockIdx := (offset + put) / BSIZE
		inBlock := (offset + put) % BSIZE
		tocopy := util.Min(BSIZE-inBlock, len(buf)-put)
		sec := sectorOf(&d, blockIdx, fs)
		if sec == UnallocSector {
			panic("write_at into unallocated sector after extend")
		}
		b := fs.Cache.Get_fill(sec, "data", tocopy == BSIZE)
		copy(b.Data[inBlock:inBlock+tocopy], buf[put:put+tocopy])
		fs.Cache.WriteDirty(b)
		b.Done("WriteAt")
		put += tocopy
	}

	ip.Lock()
	ip.disk = d
	ip.Unlock()
	fs.writeDinode(d.SelfSector, &d)
	return put, 0
}

// extend grows d so it can address byte offset newlen-1, allocating
// direct/indirect/doubly-indirect sectors as needed and zeroing new data
// (spec.md §4.3's deterministic extension algorithm). It returns every
// sector it allocated, so callers can roll back on partial failure.
func (fs *Fs_t) extend(d *Dinode_t, newlen int) (allocated []int, ok bool) {
	curBlocks := util.Roundup(d.Length, BSIZE) / BSIZE
	if d.Length == 0 {
		curBlocks = 0
	}
	needBlocks := util.Roundup(newlen, BSIZE) / BSIZE

	for blockIdx := curBlocks; blockIdx < needBlocks; blockIdx++ {
		sec, aset, ok2 := fs.allocBlockSlot(d, blockIdx)
		allocated = append(allocated, aset...)
		if !ok2 {
			return allocated, false
		}
		zb := fs.Cache.Get_zero(sec, "data")
		for i := range zb.Data {
			zb.Data[i] = 0
		}
		fs.Cache.WriteDirty(zb)
		zb.Done("extend-zero")
		allocated = append(allocated, sec)
	}
	return allocated, true
}

// allocBlockSlot allocates (if necessary) the doubly-indirect and
// indirect blocks on the path to blockIdx, then a fresh data sector,
// recording the sector index in d's direct table or the appropriate
// indirect block. Returns the new data sector and any index/indirect
// sectors allocated along the way.
func (fs *Fs_t) allocBlockSlot(d *Dinode_t, blockIdx int) (dataSector int, allocated []int, ok bool) {
	datasec, ok := fs.Freemap.Allocate(1)
	if !ok {
		return 0, nil, false
	}

	if blockIdx < DIRECT_N {
		d.Direct[blockIdx] = datasec
		return datasec, nil, true
	}

	idx := blockIdx - DIRECT_N
	indirectIdx := idx / IndirectN
	within := idx % IndirectN

	if d.DoublyIndirect == 0 {
		dsec, ok2 := fs.Freemap.Allocate(1)
		if !ok2 {
			fs.Freemap.Release(datasec, 1)
			return 0, nil, false
		}
		zb := fs.Cache.Get_zero(dsec, "dind")
		for i := range zb.Data {
			zb.Data[i] = 0
		}
		fs.Cache.WriteDirty(zb)
		zb.Done("alloc-dind")
		d.DoublyIndirect = dsec
		allocated = append(allocated, dsec)
	}

	dib := fs.Cache.Get_fill(d.DoublyIndirect, "dind", false)
	indSector := util.Readn(dib.Data[:], 4, indirectIdx*4)
	if indSector == 0 {
		isec, ok2 := fs.Freemap.Allocate(1)
		if !ok2 {
			dib.Done("alloc-dind-read")
			fs.Freemap.Release(datasec, 1)
			return 0, allocated, false
		}
		zb := fs.Cache.Get_zero(isec, "ind")
		for i := range zb.Data {
			zb.Data[i] = 0
		}
		fs.Cache.WriteDirty(zb)
		zb.Done("alloc-ind")
		util.Writen(dib.Data[:], 4, indirectIdx*4, isec)
		fs.Cache.WriteDirty(dib)
		indSector = isec
		allocated = append(allocated, isec)
	}
	dib.Done("alloc-dind-read")

	ib := fs.Cache.Get_fill(indSector, "ind", false)
	util.Writen(ib.Data[:], 4, within*4, datasec)
	fs.Cache.WriteDirty(ib)
	ib.Done("alloc-ind-write")

	return datasec, allocated, true
}

// releaseSectors frees a list of sectors, used to unwind a partially
// completed extension (spec.md §4.3's failure policy).
func (fs *Fs_t) releaseSectors(secs []int) {
	for _, s := range secs {
		if s != UnallocSector {
			fs.Freemap.Release(s, 1)
		}
	}
}

// releaseAll frees every block the inode's direct + doubly-indirect
// chain transitively references, walking the recorded length to know
// exactly how many direct/indirect/doubly-indirect blocks are logically
// in use rather than scanning for non-zero entries (the Open Question
// resolution in spec.md §9: this avoids the original's off-by-one on the
// boundary sector).
func (fs *Fs_t) releaseAll(d *Dinode_t) {
	nblocks := util.Roundup(d.Length, BSIZE) / BSIZE
	for i := 0; i < util.Min(nblocks, DIRECT_N); i++ {
		if d.Direct[i] != UnallocSector {
			fs.Freemap.Release(d.Direct[i], 1)
		}
	}
	if nblocks <= DIRECT_N {
		return
	}
	remaining := nblocks - DIRECT_N
	nindirect := util.Roundup(remaining, IndirectN) / IndirectN
	if d.DoublyIndirect == UnallocSector {
		return
	}
	dib := fs.Cache.Get_fill(d.DoublyIndirect, "dind", false)
	for i := 0; i < nindirect; i++ {
		indSector := util.Readn(dib.Data[:], 4, i*4)
		if indSector == UnallocSector {
			continue
		}
		within := remaining - i*IndirectN
		if within > IndirectN {
			within = IndirectN
		}
		ib := fs.Cache.Get_fill(indSector, "ind", false)
		for j := 0; j < within; j++ {
			datasec := util.Readn(ib.Data[:], 4, j*4)
			if datasec != UnallocSector {
				fs.Freemap.Release(datasec, 1)
			}
		}
		ib.Done("releaseAll-ind")
		fs.Freemap.Release(indSector, 1)
	}
	dib.Done("releaseAll-dind")
	fs.Freemap.Release(d.DoublyIndirect, 1)
}
