//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package fileutils

import (
	"os"

	"github.com/mrnavastar/mcpm/util"
	"golang.org/x/sys/unix"
)

// Lock is an exclusive flock held on the environment directory itself, so
// taking it leaves nothing behind on disk. The kernel drops it when the
// descriptor is closed, including on crash.
type Lock struct {
	file *os.File
}

func acquireLock(path string) (*Lock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.FileSystemError("open lock "+path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, util.FileSystemError("flock "+path, err)
	}
	return &Lock{file: f}, nil
}

// Release unlocks and closes the directory. Safe to call more than once.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
