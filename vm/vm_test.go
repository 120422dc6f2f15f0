package vm

import (
	"testing"

	"pintos/mem"
)

func TestPageDirInsertLookupRemove(t *testing.T) {
	pd := MkPageDir()
	if _, ok := pd.Lookup(0x1000); ok {
		t.Fatalf("Lookup on empty page dir should miss")
	}

	pd.Insert(0x1000, mem.Pa_t(0), true)
	pte, ok := pd.Lookup(0x1000)
	if !ok {
		t.Fatalf("Lookup after Insert should hit")
	}
	if !pte.Present() || !pte.Writable() {
		t.Fatalf("inserted pte should be present and writable")
	}

	pd.Remove(0x1000)
	if _, ok := pd.Lookup(0x1000); ok {
		t.Fatalf("Lookup after Remove should miss")
	}
}

func TestPageDirInsertRoundsToPageBase(t *testing.T) {
	pd := MkPageDir()
	pd.Insert(0x1010, mem.Pa_t(0), false)
	if _, ok := pd.Lookup(0x1fff); !ok {
		t.Fatalf("Lookup of an address in the same page should hit")
	}
}

func TestPTEAccessedDirty(t *testing.T) {
	p := &PTE_t{Flags: mem.PTE_P | mem.PTE_A | mem.PTE_D}
	if !p.Accessed() || !p.Dirty() {
		t.Fatalf("expected both accessed and dirty set")
	}
	p.ClearAccessed()
	if p.Accessed() {
		t.Fatalf("ClearAccessed should clear the accessed bit")
	}
	if !p.Dirty() {
		t.Fatalf("ClearAccessed should not touch the dirty bit")
	}
}

func TestSupptableInstallLookupRemove(t *testing.T) {
	st := MkSupptable()
	st.Install(0x2000, &Supp_t{ReadBytes: 10})
	s, ok := st.Lookup(0x2000 + 5) // same page
	if !ok {
		t.Fatalf("Lookup should hit for an address in the installed page")
	}
	if s.ReadBytes != 10 {
		t.Fatalf("ReadBytes = %d, want 10", s.ReadBytes)
	}
	st.Remove(0x2000)
	if _, ok := st.Lookup(0x2000); ok {
		t.Fatalf("Lookup after Remove should miss")
	}
}
