//go:build unix

package daemon

import (
	stderrors "errors"

	"golang.org/x/sys/unix"
)

// processAlive checks pid with signal 0. EPERM means the process exists.
func processAlive(pid int) (bool, error) {
	err := unix.Kill(pid, 0)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, unix.EPERM):
		return true, nil
	case stderrors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, err
	}
}

// sendSignal delivers sig to pid. A process that is already gone is not an error.
func sendSignal(pid int, sig unix.Signal) error {
	err := unix.Kill(pid, sig)
	if err == nil || stderrors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
