//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package fileutils

// Lock is a no-op where flock is unavailable; concurrent mcpm processes can
// race on the manifest there.
type Lock struct{}

func acquireLock(path string) (*Lock, error) {
	return &Lock{}, nil
}

func (l *Lock) Release() {}
