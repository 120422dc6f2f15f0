package hashtable

import "testing"

func TestSetGetDel(t *testing.T) {
	ht := MkHash(4)
	if _, ok := ht.Get(1); ok {
		t.Fatalf("Get on empty table should miss")
	}

	if _, added := ht.Set(1, "one"); !added {
		t.Fatalf("Set of a new key should report added=true")
	}
	v, ok := ht.Get(1)
	if !ok || v != "one" {
		t.Fatalf("Get(1) = (%v, %v), want (one, true)", v, ok)
	}

	if _, added := ht.Set(1, "uno"); added {
		t.Fatalf("Set of an existing key should report added=false")
	}
	v, ok = ht.Get(1)
	if !ok || v != "one" {
		t.Fatalf("Get(1) after Set of existing key = (%v, %v), want (one, true)", v, ok)
	}

	ht.Del(1)
	if _, ok := ht.Get(1); ok {
		t.Fatalf("Get after Del should miss")
	}
}

func TestSizeAndElems(t *testing.T) {
	ht := MkHash(8)
	ht.Set(1, "a")
	ht.Set(2, "b")
	ht.Set(3, "c")
	if got := ht.Size(); got != 3 {
		t.Fatalf("Size() = %d, want 3", got)
	}
	pairs := ht.Elems()
	if len(pairs) != 3 {
		t.Fatalf("Elems() returned %d pairs, want 3", len(pairs))
	}
}

func TestStringKeys(t *testing.T) {
	ht := MkHash(4)
	ht.Set("alpha", 1)
	ht.Set("beta", 2)
	v, ok := ht.Get("alpha")
	if !ok || v != 1 {
		t.Fatalf(`Get("alpha") = (%v, %v), want (1, true)`, v, ok)
	}
}

func TestDelOfMissingKeyPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("Del of a missing key should panic")
		}
	}()
	ht := MkHash(4)
	ht.Del(99)
}
