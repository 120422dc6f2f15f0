package fs

import (
	"strings"

	"pintos/defs"
)

// Resolve walks path component by component starting at root if path is
// absolute, or at cwdSector otherwise (spec.md §4.4's path resolution
// algorithm). It returns the sector of the final component. If
// wantParent is true, it instead returns the parent directory's sector
// and the final component's name, without requiring the final component
// to exist — used by Create/Mkdir, whose last component must NOT exist.
func (fs *Fs_t) Resolve(path string, cwdSector int, wantParent bool) (sector int, leaf string, err defs.Err_t) {
	abs := strings.HasPrefix(path, "/")
	parts := splitPath(path)

	cur := cwdSector
	if abs || cwdSector == 0 {
		cur = fs.RootSec
	}
	if len(parts) == 0 {
		return cur, "", 0
	}

	for i, comp := range parts {
		last := i == len(parts)-1
		if last && wantParent {
			return cur, comp, 0
		}
		ip := fs.Iopen(cur)
		if !ip.IsDirectory() {
			fs.Iclose(ip)
			return 0, "", defs.ENOTDIR
		}
		dir := fs.OpenDir(ip)
		next, ok := dir.Lookup(comp)
		dir.Close()
		if !ok {
			return 0, "", defs.ENOENT
		}
		cur = next
	}
	return cur, "", 0
}

func splitPath(path string) []string {
	var parts []string
	for _, c := range strings.Split(path, "/") {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return parts
}
