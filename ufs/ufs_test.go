package ufs

import (
	"bytes"
	"testing"

	"pintos/ustr"
)

const testNsecs = 4096

func TestBootMemFSMkFileReadStat(t *testing.T) {
	k := BootMemFS(testNsecs)

	data := []byte("hello, pintos")
	if err := k.MkFile(ustr.Ustr("/greeting"), data); err != 0 {
		t.Fatalf("MkFile failed: %d", err)
	}

	got, err := k.Read(ustr.Ustr("/greeting"))
	if err != 0 {
		t.Fatalf("Read failed: %d", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Read() = %q, want %q", got, data)
	}

	st, err := k.Stat(ustr.Ustr("/greeting"))
	if err != 0 {
		t.Fatalf("Stat failed: %d", err)
	}
	if st.Isdir() {
		t.Fatalf("Stat().Isdir() = true, want false for a regular file")
	}
	if int(st.Size()) != len(data) {
		t.Fatalf("Stat().Size() = %d, want %d", st.Size(), len(data))
	}
}

func TestBootMemFSMkDir(t *testing.T) {
	k := BootMemFS(testNsecs)

	if err := k.MkDir(ustr.Ustr("/sub")); err != 0 {
		t.Fatalf("MkDir failed: %d", err)
	}
	st, err := k.Stat(ustr.Ustr("/sub"))
	if err != 0 {
		t.Fatalf("Stat failed: %d", err)
	}
	if !st.Isdir() {
		t.Fatalf("Stat().Isdir() = false, want true for a directory")
	}

	if err := k.MkFile(ustr.Ustr("/sub/nested"), []byte("x")); err != 0 {
		t.Fatalf("MkFile into subdirectory failed: %d", err)
	}
}

func TestRootCwdIsPopulated(t *testing.T) {
	k := BootMemFS(testNsecs)
	if k.RootCwd == nil {
		t.Fatalf("RootCwd should be populated after boot")
	}
}

func TestReadMissingFile(t *testing.T) {
	k := BootMemFS(testNsecs)
	if _, err := k.Read(ustr.Ustr("/nope")); err == 0 {
		t.Fatalf("Read of a nonexistent file should fail")
	}
}
