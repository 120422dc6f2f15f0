package fd

import (
	"sync"

	"pintos/defs"
	"pintos/fdops"
	"pintos/fs"
)

// fsfops_t is an Fdops_i backed by a regular file's inode. Grounded on
// the shape the teacher's fd.Fd_t expects of whatever it embeds (an
// offset-tracking, reopen-by-refcount descriptor); the teacher's own
// fsfops_t was pruned from the retrieval pack, so this is rebuilt
// directly against fs.Fs_t's ReadAt/WriteAt/Iopen/Iclose contract.
type fsfops_t struct {
	sync.Mutex
	fs     *fs.Fs_t
	ip     *fs.Inode_t
	sector int
	offset int
	append bool
}

// MkFileFops constructs a descriptor for an already-open inode.
func MkFileFops(fsys *fs.Fs_t, ip *fs.Inode_t, sector int, appendMode bool) fdops.Fdops_i {
	return &fsfops_t{fs: fsys, ip: ip, sector: sector, append: appendMode}
}

func (f *fsfops_t) Close() defs.Err_t {
	f.fs.Iclose(f.ip)
	return 0
}

func (f *fsfops_t) Reopen() defs.Err_t {
	f.fs.Iopen(f.sector)
	return 0
}

func (f *fsfops_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	f.Lock()
	defer f.Unlock()
	buf := make([]byte, dst.Remains())
	n := f.fs.ReadAt(f.ip, buf, f.offset)
	if n == 0 {
		return 0, 0
	}
	wrote, err := dst.Uiowrite(buf[:n])
	f.offset += wrote
	return wrote, err
}

func (f *fsfops_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	f.Lock()
	defer f.Unlock()
	if f.ip.Deniable() {
		return 0, defs.EACCES
	}
	buf := make([]byte, src.Totalsz())
	n, err := src.Uioread(buf)
	if err != 0 {
		return 0, err
	}
	off := f.offset
	if f.append {
		off = f.ip.Length()
	}
	wrote, werr := f.fs.WriteAt(f.ip, buf[:n], off)
	if werr != 0 {
		return 0, werr
	}
	f.offset = off + wrote
	return wrote, 0
}

// Seek implements lseek (spec.md §6's seek/tell): whence 0 is absolute,
// 1 is relative to the current offset, 2 is relative to EOF.
func (f *fsfops_t) Seek(off int, whence int) (int, defs.Err_t) {
	f.Lock()
	defer f.Unlock()
	switch whence {
	case 0:
		f.offset = off
	case 1:
		f.offset += off
	case 2:
		f.offset = f.ip.Length() + off
	default:
		return 0, defs.EINVAL
	}
	if f.offset < 0 {
		f.offset = 0
	}
	return f.offset, 0
}

func (f *fsfops_t) Fstat(st fdops.Stater_i) defs.Err_t {
	st.Wino(uint64(f.sector))
	st.Wsize(uint64(f.ip.Length()))
	st.Wisdir(false)
	return 0
}

func (f *fsfops_t) Pathi() int { return f.sector }

func (f *fsfops_t) Readdir() (string, bool, defs.Err_t) {
	return "", true, defs.ENOTDIR
}

func (f *fsfops_t) Truncate(newlen uint) defs.Err_t {
	f.Lock()
	defer f.Unlock()
	if f.ip.Deniable() {
		return defs.EACCES
	}
	if int(newlen) <= f.ip.Length() {
		return 0
	}
	_, err := f.fs.WriteAt(f.ip, make([]byte, 0), int(newlen))
	return err
}

// ReadAt/WriteAt let fsfops_t double as a vm.Backing_i for mmap (spec.md
// §4.12): the mmap syscall type-asserts the descriptor's Fops to
// vm.Backing_i rather than going through a dedicated Fdops_i method.
func (f *fsfops_t) ReadAt(buf []byte, offset int) int {
	return f.fs.ReadAt(f.ip, buf, offset)
}

func (f *fsfops_t) WriteAt(buf []byte, offset int) (int, defs.Err_t) {
	return f.fs.WriteAt(f.ip, buf, offset)
}

// dirfops_t is an Fdops_i backed by a directory inode, supporting the
// readdir syscall (SPEC_FULL.md's supplemented per-fd directory cursor)
// instead of read/write.
type dirfops_t struct {
	sync.Mutex
	fs     *fs.Fs_t
	dir    *fs.Dir_t
	sector int
	cursor int
}

// MkDirFops constructs a descriptor for an already-open directory inode.
func MkDirFops(fsys *fs.Fs_t, ip *fs.Inode_t, sector int) fdops.Fdops_i {
	return &dirfops_t{fs: fsys, dir: fsys.OpenDir(ip), sector: sector}
}

func (d *dirfops_t) Close() defs.Err_t {
	d.dir.Close()
	return 0
}

func (d *dirfops_t) Reopen() defs.Err_t {
	d.fs.Iopen(d.sector)
	return 0
}

func (d *dirfops_t) Read(fdops.Userio_i) (int, defs.Err_t)  { return 0, defs.EISDIR }
func (d *dirfops_t) Write(fdops.Userio_i) (int, defs.Err_t) { return 0, defs.EISDIR }
func (d *dirfops_t) Seek(int, int) (int, defs.Err_t)        { return 0, defs.EISDIR }

func (d *dirfops_t) Fstat(st fdops.Stater_i) defs.Err_t {
	st.Wino(uint64(d.sector))
	st.Wisdir(true)
	return 0
}

func (d *dirfops_t) Pathi() int { return d.sector }

// Readdir returns the next directory entry name, advancing this
// descriptor's own cursor (spec.md §6's readdir, per-fd per SPEC_FULL.md).
func (d *dirfops_t) Readdir() (string, bool, defs.Err_t) {
	d.Lock()
	defer d.Unlock()
	name, next, ok := d.dir.Readdir(d.cursor)
	if !ok {
		return "", true, 0
	}
	d.cursor = next
	return name, false, 0
}

func (d *dirfops_t) Truncate(uint) defs.Err_t { return defs.EISDIR }
