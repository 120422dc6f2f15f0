package ustr

import "testing"

func TestIsdotIsdotdot(t *testing.T) {
	if !Ustr(".").Isdot() {
		t.Fatalf(`"." should be Isdot`)
	}
	if Ustr("..").Isdot() {
		t.Fatalf(`".." should not be Isdot`)
	}
	if !Ustr("..").Isdotdot() {
		t.Fatalf(`".." should be Isdotdot`)
	}
	if Ustr("a").Isdotdot() {
		t.Fatalf(`"a" should not be Isdotdot`)
	}
}

func TestEq(t *testing.T) {
	if !Ustr("abc").Eq(Ustr("abc")) {
		t.Fatalf("equal strings should compare equal")
	}
	if Ustr("abc").Eq(Ustr("abd")) {
		t.Fatalf("differing strings should not compare equal")
	}
	if Ustr("abc").Eq(Ustr("ab")) {
		t.Fatalf("differing lengths should not compare equal")
	}
}

func TestMkUstrSliceTruncatesAtNUL(t *testing.T) {
	buf := []uint8{'h', 'i', 0, 'x', 'x'}
	got := MkUstrSlice(buf)
	if got.String() != "hi" {
		t.Fatalf("MkUstrSlice() = %q, want %q", got, "hi")
	}
}

func TestMkUstrSliceNoNUL(t *testing.T) {
	buf := []uint8{'h', 'i'}
	got := MkUstrSlice(buf)
	if got.String() != "hi" {
		t.Fatalf("MkUstrSlice() = %q, want %q", got, "hi")
	}
}

func TestExtend(t *testing.T) {
	got := Ustr("/a").Extend(Ustr("b"))
	if got.String() != "/a/b" {
		t.Fatalf("Extend() = %q, want %q", got, "/a/b")
	}
}

func TestExtendDoesNotMutateReceiver(t *testing.T) {
	base := Ustr("/a")
	_ = base.Extend(Ustr("b"))
	if base.String() != "/a" {
		t.Fatalf("Extend mutated its receiver: base = %q", base)
	}
}

func TestIsAbsolute(t *testing.T) {
	if !Ustr("/a").IsAbsolute() {
		t.Fatalf("/a should be absolute")
	}
	if Ustr("a").IsAbsolute() {
		t.Fatalf("a should not be absolute")
	}
	if Ustr("").IsAbsolute() {
		t.Fatalf("empty path should not be absolute")
	}
}

func TestIndexByte(t *testing.T) {
	if got := Ustr("a/b").IndexByte('/'); got != 1 {
		t.Fatalf("IndexByte('/') = %d, want 1", got)
	}
	if got := Ustr("abc").IndexByte('/'); got != -1 {
		t.Fatalf("IndexByte('/') = %d, want -1", got)
	}
}
