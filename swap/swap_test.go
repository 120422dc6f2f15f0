package swap

import (
	"testing"

	"pintos/device"
	"pintos/mem"
)

func TestScanAndFlipAllocatesDistinctSlots(t *testing.T) {
	disk := device.NewMemDisk(8)
	tbl := MkTable(disk)

	s1, ok := tbl.ScanAndFlip()
	if !ok {
		t.Fatalf("ScanAndFlip failed with slots available")
	}
	s2, ok := tbl.ScanAndFlip()
	if !ok {
		t.Fatalf("ScanAndFlip failed with slots available")
	}
	if s1 == s2 {
		t.Fatalf("two allocations returned the same slot %d", s1)
	}
}

func TestScanAndFlipExhaustion(t *testing.T) {
	disk := device.NewMemDisk(2)
	tbl := MkTable(disk)
	for i := 0; i < tbl.nslots; i++ {
		if _, ok := tbl.ScanAndFlip(); !ok {
			t.Fatalf("ScanAndFlip failed before exhaustion at slot %d", i)
		}
	}
	if _, ok := tbl.ScanAndFlip(); ok {
		t.Fatalf("ScanAndFlip should fail once every slot is used")
	}
}

func TestSetFreesASlot(t *testing.T) {
	disk := device.NewMemDisk(4)
	tbl := MkTable(disk)
	slot, _ := tbl.ScanAndFlip()
	// Fill the remaining slots so the freed one is the only candidate.
	for i := 1; i < tbl.nslots; i++ {
		tbl.ScanAndFlip()
	}
	tbl.Set(slot, false)
	again, ok := tbl.ScanAndFlip()
	if !ok || again != slot {
		t.Fatalf("ScanAndFlip after Set(false) = (%d, %v), want reused slot %d", again, ok, slot)
	}
}

func TestWriteReadPageRoundTrip(t *testing.T) {
	disk := device.NewMemDisk(4)
	tbl := MkTable(disk)
	slot, ok := tbl.ScanAndFlip()
	if !ok {
		t.Fatalf("ScanAndFlip failed")
	}

	var out mem.Pg_t
	in := mem.Pg_t{}
	for i := range in[:32] {
		in[i] = byte(i)
	}
	tbl.WritePage(slot, &in)
	tbl.ReadPage(slot, &out)

	for i := range in[:32] {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %x, want %x", i, out[i], in[i])
		}
	}
}
