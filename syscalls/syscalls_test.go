package syscalls

import (
	"bytes"
	"testing"

	"pintos/device"
	"pintos/fd"
	"pintos/fs"
	"pintos/mem"
	"pintos/thread"
)

const testNsecs = 4096
const testPhysPages = 512

// mkTestSys boots a fresh filesystem/scheduler pair and a thread whose
// cwd is the filesystem root, the same shape ufs.Kernel_t assembles but
// built directly here to keep syscalls's tests free of
// an import on ufs (which itself imports syscalls).
func mkTestSys(t *testing.T) (*Sys_t, *thread.Thread_t) {
	t.Helper()
	disk := device.NewMemDisk(testNsecs)
	arena := mem.MkArena(testPhysPages)
	fsys := fs.MkFs(disk, arena)
	fsys.Format(testNsecs)

	sched := thread.MkSched(false)
	sys := &Sys_t{Fs: fsys, Sched: sched}

	th := thread.MkThread(1, "test", thread.PriDefault)
	rootIp := fsys.Iopen(fsys.RootSec)
	rootFd := &fd.Fd_t{Fops: fd.MkDirFops(fsys, rootIp, fsys.RootSec), Perms: fd.FD_READ}
	th.Cwd = fd.MkRootCwd(rootFd)
	return sys, th
}

func TestCreateOpenWriteReadClose(t *testing.T) {
	sys, th := mkTestSys(t)

	if ok := sys.Create(th, "file.txt", 0); !ok {
		t.Fatalf("Create failed")
	}

	fdnum, err := sys.Open(th, "file.txt", fd.FD_READ|fd.FD_WRITE)
	if err != 0 {
		t.Fatalf("Open failed: %d", err)
	}

	want := []byte("hello")
	n, err := sys.Write(th, fdnum, want)
	if err != 0 || n != len(want) {
		t.Fatalf("Write() = (%d, %d), want (%d, 0)", n, err, len(want))
	}

	if err := sys.Seek(th, fdnum, 0); err != 0 {
		t.Fatalf("Seek failed: %d", err)
	}

	buf := make([]byte, len(want))
	n, err = sys.Read(th, fdnum, buf)
	if err != 0 || n != len(want) {
		t.Fatalf("Read() = (%d, %d), want (%d, 0)", n, err, len(want))
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("Read() = %q, want %q", buf, want)
	}

	sys.Close(th, fdnum)
	if _, ok := th.OpenFiles[fdnum]; ok {
		t.Fatalf("fd table should not contain fd after Close")
	}
}

func TestMkdirChdirReaddir(t *testing.T) {
	sys, th := mkTestSys(t)

	if ok := sys.Mkdir(th, "subdir"); !ok {
		t.Fatalf("Mkdir failed")
	}
	if ok := sys.Create(th, "subdir/inner", 0); !ok {
		t.Fatalf("Create inside subdir failed")
	}

	fdnum, err := sys.Open(th, "subdir", fd.FD_READ)
	if err != 0 {
		t.Fatalf("Open dir failed: %d", err)
	}
	if !sys.Isdir(th, fdnum) {
		t.Fatalf("Isdir() = false, want true")
	}

	found := false
	for {
		name, ok := sys.Readdir(th, fdnum)
		if !ok {
			break
		}
		if name == "inner" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Readdir never returned the entry just created")
	}

	if ok := sys.Chdir(th, "subdir"); !ok {
		t.Fatalf("Chdir failed")
	}
}

func TestRemove(t *testing.T) {
	sys, th := mkTestSys(t)
	if ok := sys.Create(th, "doomed", 0); !ok {
		t.Fatalf("Create failed")
	}
	if ok := sys.Remove(th, "doomed"); !ok {
		t.Fatalf("Remove failed")
	}
	if _, err := sys.Open(th, "doomed", fd.FD_READ); err == 0 {
		t.Fatalf("Open of a removed file should fail")
	}
}

func TestOpenNonexistentFails(t *testing.T) {
	sys, th := mkTestSys(t)
	if _, err := sys.Open(th, "nope", fd.FD_READ); err == 0 {
		t.Fatalf("Open of a nonexistent file should fail")
	}
}

func TestFilesizeAndInumber(t *testing.T) {
	sys, th := mkTestSys(t)
	if ok := sys.Create(th, "sized", 0); !ok {
		t.Fatalf("Create failed")
	}
	fdnum, err := sys.Open(th, "sized", fd.FD_READ|fd.FD_WRITE)
	if err != 0 {
		t.Fatalf("Open failed: %d", err)
	}
	sys.Write(th, fdnum, []byte("12345"))
	if got := sys.Filesize(th, fdnum); got != 5 {
		t.Fatalf("Filesize() = %d, want 5", got)
	}
	if got := sys.Inumber(th, fdnum); got <= 0 {
		t.Fatalf("Inumber() = %d, want a positive sector number", got)
	}
}
