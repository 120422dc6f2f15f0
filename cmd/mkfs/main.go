// Command mkfs formats a filesystem image and copies a host directory
// tree into it, the filesystem-bootstrap half of spec.md §6's "another
// [flag] triggers file-system format on boot" — split out as its own
// tool the way the teacher's own mkfs/mkfs.go is, rather than folded
// into the kernel binary itself.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"pintos/ufs"
	"pintos/ustr"
)

const nsecs = 40000 // matches the teacher mkfs's ndatablks order of magnitude

func copydata(src string, k *ufs.Kernel_t, dst ustr.Ustr) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()
	data, err := io.ReadAll(srcFile)
	if err != nil {
		return err
	}
	if rerr := k.MkFile(dst, data); rerr != 0 {
		return fmt.Errorf("mkfile %s: %d", dst, rerr)
	}
	return nil
}

func addfiles(k *ufs.Kernel_t, skeldir string) error {
	return filepath.WalkDir(skeldir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(path, skeldir)
		if rel == "" {
			return nil
		}
		dst := ustr.Ustr(rel)
		if d.IsDir() {
			if e := k.MkDir(dst); e != 0 {
				fmt.Printf("mkdir %s failed: %d\n", rel, e)
			}
			return nil
		}
		return copydata(path, k, dst)
	})
}

func main() {
	image := flag.String("image", "pintos.img", "output disk image path")
	skel := flag.String("skel", "", "host directory tree to copy into the image")
	flag.Parse()

	if *skel == "" {
		fmt.Fprintln(os.Stderr, "usage: mkfs -image=<path> -skel=<dir>")
		os.Exit(1)
	}

	k, err := ufs.BootFS(*image, nsecs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mkfs: %v\n", err)
		os.Exit(1)
	}

	if _, serr := k.Stat(ustr.MkUstrRoot()); serr != 0 {
		fmt.Fprintln(os.Stderr, "mkfs: not a valid fs: no root inode")
		os.Exit(1)
	}

	if err := addfiles(k, *skel); err != nil {
		fmt.Fprintf(os.Stderr, "mkfs: %v\n", err)
		os.Exit(1)
	}

	ufs.Shutdown(k)
}
