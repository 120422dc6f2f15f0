// Command pintos boots the kernel: formats or loads a filesystem image,
// starts the cooperative scheduler and its background daemons, and runs
// until every thread has exited (spec.md §6's "Environment / command
// line": one flag selects round-robin vs. multilevel-feedback
// scheduling, another triggers file-system format on boot).
package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"pintos/circbuf"
	"pintos/device"
	"pintos/fs"
	"pintos/mem"
	"pintos/proc"
	"pintos/swap"
	"pintos/thread"
)

const (
	physPages = 8192
	nsecs     = 40000
	swapSecs  = 4096
)

func main() {
	image := flag.String("image", "pintos.img", "disk image path")
	sched := flag.String("sched", "rr", "scheduling policy: rr or mfqs")
	mkfsFlag := flag.Bool("mkfs", false, "format the filesystem before booting")
	run := flag.String("run", "", "path of the executable to run as the initial process")
	flag.Parse()

	if *sched != "rr" && *sched != "mfqs" {
		fmt.Fprintf(os.Stderr, "pintos: unknown -sched %q (want rr or mfqs)\n", *sched)
		os.Exit(1)
	}

	mem.Phys_init(physPages)

	disk, err := device.OpenFileDisk(*image, nsecs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pintos: %v\n", err)
		os.Exit(1)
	}
	defer disk.Close()

	fsys := fs.MkFs(disk, mem.Physmem)
	if *mkfsFlag {
		fsys.Format(nsecs)
	} else {
		fsys.Load()
	}

	// A dedicated swap image, separate from the filesystem disk, the
	// way a real machine reserves a distinct swap partition (spec.md
	// §4.7). It never needs to survive a reboot, so it's reformatted
	// fresh every run.
	swap.Init(device.NewMemDisk(swapSecs))

	thread.Sched = thread.MkSched(*sched == "mfqs")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	fsys.StartFlushd(gctx, g, fs.DefaultFlushPeriod)

	if *run != "" {
		args := flag.Args()
		// No real CPU interprets the loaded ELF's instructions here; the
		// loader still runs in full (program headers, lazy-load supplemental
		// entries, deny_write), only the instruction stream itself is a stub.
		body := func(t *thread.Thread_t) { proc.Exit(t, 0) }
		if _, err := proc.Exec(fsys, thread.Sched, nil, *run, args, body); err != 0 {
			fmt.Fprintf(os.Stderr, "pintos: exec %s: %d\n", *run, err)
			os.Exit(1)
		}
	}

	circbuf.Default.Write("pintos: booted")
	thread.Sched.Run()
	cancel()
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "pintos: %v\n", err)
	}
}
