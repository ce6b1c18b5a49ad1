//go:build linux

package procname

import (
	"github.com/prometheus/procfs"
	"strings"
)

func lookup(pid int32) string {
	proc, err := procfs.NewProc(int(pid))
	if err != nil {
		return Unknown
	}

	comm, err := proc.Comm()
	if err != nil {
		return Unknown
	}

	comm = strings.TrimSpace(comm)
	if comm == "" {
		return Exited
	}

	return comm
}
