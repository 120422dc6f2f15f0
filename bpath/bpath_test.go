package bpath

import (
	"testing"

	"pintos/ustr"
)

func TestSplit(t *testing.T) {
	parts := Split(ustr.Ustr("/a//b/c/"))
	want := []string{"a", "b", "c"}
	if len(parts) != len(want) {
		t.Fatalf("Split() = %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i].String() != want[i] {
			t.Fatalf("Split()[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}

func TestCanonicalizeCollapsesDotAndDotDot(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/a/./b", "/a/b"},
		{"/a/b/../c", "/a/c"},
		{"/a/../../b", "/b"},
		{"/", "/"},
		{"/a//b", "/a/b"},
	}
	for _, c := range cases {
		got := Canonicalize(ustr.Ustr(c.in)).String()
		if got != c.want {
			t.Fatalf("Canonicalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestJoinRelative(t *testing.T) {
	got := Join(ustr.Ustr("/a/b"), ustr.Ustr("../c")).String()
	if got != "/a/c" {
		t.Fatalf("Join(/a/b, ../c) = %q, want /a/c", got)
	}
}

func TestJoinAbsoluteIgnoresBase(t *testing.T) {
	got := Join(ustr.Ustr("/a/b"), ustr.Ustr("/x/y")).String()
	if got != "/x/y" {
		t.Fatalf("Join with an absolute second arg = %q, want /x/y", got)
	}
}

func TestDirAndBase(t *testing.T) {
	if got := Dir(ustr.Ustr("/a/b/c")).String(); got != "/a/b" {
		t.Fatalf("Dir(/a/b/c) = %q, want /a/b", got)
	}
	if got := Base(ustr.Ustr("/a/b/c")).String(); got != "c" {
		t.Fatalf("Base(/a/b/c) = %q, want c", got)
	}
	if got := Dir(ustr.Ustr("/a")).String(); got != "/" {
		t.Fatalf("Dir(/a) = %q, want /", got)
	}
}
