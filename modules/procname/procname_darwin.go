//go:build darwin

package procname

import (
	"errors"
	"golang.org/x/sys/unix"
)

func lookup(pid int32) string {
	kp, err := unix.SysctlKinfoProc("kern.proc.pid", int(pid))
	// A pid without a process table entry yields an empty result, which
	// SysctlKinfoProc reports as EIO.
	if errors.Is(err, unix.EIO) {
		return Exited
	}
	if err != nil {
		return Unknown
	}

	name := unix.ByteSliceToString(kp.Proc.P_comm[:])
	if name == "" {
		return Exited
	}

	return name
}
