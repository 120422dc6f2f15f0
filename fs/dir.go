package fs

import "pintos/defs"

// Dir_t is a directory: an inode whose content is a sequence of fixed-
// size Ddirent_t entries (spec.md §4.4). Operations go through the
// owning Fs_t so entry reads/writes route through the buffer cache like
// any other file data.
type Dir_t struct {
	Ip *Inode_t
	fs *Fs_t
}

// OpenDir wraps an already-open inode as a directory view. The caller
// is responsible for having verified ip.IsDirectory().
func (fs *Fs_t) OpenDir(ip *Inode_t) *Dir_t {
	return &Dir_t{Ip: ip, fs: fs}
}

// OpenRoot opens the root directory.
func (fs *Fs_t) OpenRoot() *Dir_t {
	return fs.OpenDir(fs.Iopen(fs.RootSec))
}

// CreateDir formats sector as a fresh, empty directory inode (spec.md
// §4.4's create(sector, parent_sector, initial_capacity) — the directory
// gets a "." entry for itself at index 0 and parent_sector is recorded as
// its ".." entry at index 1, so lookups for ".." resolve without a
// separate field, matching the teacher's implicit
// "." / ".." handling note).
func (fs *Fs_t) CreateDir(sector, parentSector int) defs.Err_t {
	if err := fs.Icreate(sector, BSIZE, true); err != 0 {
		return err
	}
	ip := fs.Iopen(sector)
	defer fs.Iclose(ip)
	dir := fs.OpenDir(ip)
	dir.addRaw(".", sector)
	dir.addRaw("..", parentSector)
	return 0
}

// Close closes the directory's underlying inode.
func (d *Dir_t) Close() { d.fs.Iclose(d.Ip) }

func (d *Dir_t) nentries() int {
	return d.Ip.Length() / direntLen
}

func (d *Dir_t) readEntry(i int) Ddirent_t {
	buf := make([]byte, direntLen)
	d.fs.ReadAt(d.Ip, buf, i*direntLen)
	return direntDecode(buf, 0)
}

func (d *Dir_t) writeEntry(i int, e Ddirent_t) {
	buf := make([]byte, direntLen)
	direntEncode(buf, 0, &e)
	d.fs.WriteAt(d.Ip, buf, i*direntLen)
}

func (d *Dir_t) addRaw(name string, sector int) {
	n := d.nentries()
	for i := 0; i < n; i++ {
		if !d.readEntry(i).InUse {
			d.writeEntry(i, Ddirent_t{InUse: true, InodeSector: sector, Name: name})
			return
		}
	}
	d.writeEntry(n, Ddirent_t{InUse: true, InodeSector: sector, Name: name})
}

// Lookup finds name among the directory's entries (spec.md §4.4's
// lookup()).
func (d *Dir_t) Lookup(name string) (sector int, ok bool) {
	n := d.nentries()
	for i := 0; i < n; i++ {
		e := d.readEntry(i)
		if e.InUse && e.Name == name {
			return e.InodeSector, true
		}
	}
	return 0, false
}

// Add inserts a new entry; the caller must already have verified name
// does not exist (spec.md §4.4: "for create the last component must NOT
// exist").
func (d *Dir_t) Add(name string, sector int) defs.Err_t {
	if _, ok := d.Lookup(name); ok {
		return defs.EEXIST
	}
	if len(name) > NAME_MAX {
		return defs.ENAMETOOLONG
	}
	d.addRaw(name, sector)
	return 0
}

// Remove clears the entry for name, if present.
func (d *Dir_t) Remove(name string) defs.Err_t {
	n := d.nentries()
	for i := 0; i < n; i++ {
		e := d.readEntry(i)
		if e.InUse && e.Name == name {
			d.writeEntry(i, Ddirent_t{})
			return 0
		}
	}
	return defs.ENOENT
}

// Readdir returns the next in-use entry at or after cursor, and the
// cursor value to resume from on the following call (spec.md §4.4's
// readdir(); the per-fd cursor itself is owned by the caller — fd/fd.go
// — since a directory may be read concurrently from multiple fds).
func (d *Dir_t) Readdir(cursor int) (name string, nextCursor int, ok bool) {
	n := d.nentries()
	for i := cursor; i < n; i++ {
		e := d.readEntry(i)
		if e.InUse && !(e.Name == "." || e.Name == "..") {
			return e.Name, i + 1, true
		}
	}
	return "", n, false
}

// Empty reports whether the directory contains only "." and "..".
func (d *Dir_t) Empty() bool {
	n := d.nentries()
	for i := 0; i < n; i++ {
		e := d.readEntry(i)
		if e.InUse && e.Name != "." && e.Name != ".." {
			return false
		}
	}
	return true
}
