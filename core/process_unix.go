//go:build !windows

package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isProcessAlive reports whether pid names a running process. EPERM means
// the process exists but belongs to another user.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
