package circbuf

import "testing"

func TestWriteAndLinesOrder(t *testing.T) {
	k := MkKlog(3)
	k.Write("a")
	k.Write("b")
	want := []string{"a", "b"}
	got := k.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines() = %v, want %v", got, want)
		}
	}
}

func TestOverwritesOldestOnceFull(t *testing.T) {
	k := MkKlog(2)
	k.Write("a")
	k.Write("b")
	k.Write("c") // should evict "a"

	want := []string{"b", "c"}
	got := k.Lines()
	if len(got) != len(want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Lines() = %v, want %v", got, want)
		}
	}
	if got := k.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestMkKlogPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MkKlog(0) should panic")
		}
	}()
	MkKlog(0)
}
