package fd

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"pintos/circbuf"
	"pintos/defs"
	"pintos/fdops"
)

// consfops_t is the console device descriptor (fd 0/1 at process start).
// Grounded on the teacher's ufs/driver.go console_t stub, but backed by
// real stdio plus circbuf.Default instead of always failing — this
// kernel's console is exercised by cmd/pintos, not just test harnesses.
type consfops_t struct {
	sync.Mutex
	in *bufio.Reader
}

var stdinOnce sync.Once
var stdinReader *bufio.Reader

// MkConsoleFops constructs the console descriptor shared by every
// process's fd 0 and 1.
func MkConsoleFops() fdops.Fdops_i {
	stdinOnce.Do(func() { stdinReader = bufio.NewReader(os.Stdin) })
	return &consfops_t{in: stdinReader}
}

func (c *consfops_t) Close() defs.Err_t  { return 0 }
func (c *consfops_t) Reopen() defs.Err_t { return 0 }

func (c *consfops_t) Read(dst fdops.Userio_i) (int, defs.Err_t) {
	c.Lock()
	defer c.Unlock()
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return 0, 0
	}
	wrote, werr := dst.Uiowrite([]byte(line))
	return wrote, werr
}

func (c *consfops_t) Write(src fdops.Userio_i) (int, defs.Err_t) {
	buf := make([]byte, src.Totalsz())
	n, err := src.Uioread(buf)
	if err != 0 {
		return 0, err
	}
	fmt.Print(string(buf[:n]))
	circbuf.Default.Write(string(buf[:n]))
	return n, 0
}

func (c *consfops_t) Seek(int, int) (int, defs.Err_t) { return 0, defs.EINVAL }

func (c *consfops_t) Fstat(st fdops.Stater_i) defs.Err_t {
	st.Wmode(1)
	return 0
}

func (c *consfops_t) Pathi() int { return -1 }

func (c *consfops_t) Readdir() (string, bool, defs.Err_t) { return "", true, defs.ENOTDIR }

func (c *consfops_t) Truncate(uint) defs.Err_t { return defs.EINVAL }
