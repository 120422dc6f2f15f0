package fd

import (
	"testing"

	"pintos/circbuf"
	"pintos/defs"
)

// testUio is a minimal fdops.Userio_i backed by a plain []byte, just
// enough to drive consfops_t.Write/Read in isolation without importing
// the syscalls package (which itself imports fd).
type testUio struct {
	buf []byte
	off int
}

func (u *testUio) Uioread(dst []uint8) (int, defs.Err_t) {
	n := copy(dst, u.buf[u.off:])
	u.off += n
	return n, 0
}

func (u *testUio) Uiowrite(src []uint8) (int, defs.Err_t) {
	n := copy(u.buf[u.off:], src)
	u.off += n
	return n, 0
}

func (u *testUio) Remains() int { return len(u.buf) - u.off }
func (u *testUio) Totalsz() int { return len(u.buf) }

func TestConsoleWriteAppendsToKlog(t *testing.T) {
	c := MkConsoleFops()
	before := circbuf.Default.Len()

	msg := "hello from the console\n"
	n, err := c.Write(&testUio{buf: []byte(msg)})
	if err != 0 || n != len(msg) {
		t.Fatalf("Write() = (%d, %d), want (%d, 0)", n, err, len(msg))
	}

	lines := circbuf.Default.Lines()
	if circbuf.Default.Len() != before+1 {
		t.Fatalf("klog length = %d, want %d", circbuf.Default.Len(), before+1)
	}
	if lines[len(lines)-1] != msg {
		t.Fatalf("last klog line = %q, want %q", lines[len(lines)-1], msg)
	}
}

func TestConsoleSeekFails(t *testing.T) {
	c := MkConsoleFops()
	if _, err := c.Seek(0, 0); err != defs.EINVAL {
		t.Fatalf("Seek on console = %d, want EINVAL", err)
	}
}

func TestConsolePathiIsNegative(t *testing.T) {
	c := MkConsoleFops()
	if got := c.Pathi(); got != -1 {
		t.Fatalf("Pathi() = %d, want -1", got)
	}
}
