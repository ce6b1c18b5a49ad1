//go:build darwin

package watcher

import (
	"fmt"
	"github.com/Leantar/fsewatcher/modules/fsevents"
	"golang.org/x/sys/unix"
	"runtime"
	"sync"
	"unsafe"
)

const (
	// _IOW('s', 1, struct fsevent_clone_args)
	ioctlClone = 0x80187301
	// _IO('s', 102)
	ioctlWantExtendedInfo = 0x20007366

	fseReport = 1
)

// Mirrors struct fsevent_clone_args.
type cloneArgs struct {
	eventList       *int8
	numEvents       int32
	eventQueueDepth int32
	fd              *int32
}

// Device is a private event channel cloned from /dev/fsevents.
type Device struct {
	fd        int
	closeOnce sync.Once
}

// Open clones an event channel reporting every known event type and asks the
// kernel for extended per-event information.
func Open(conf Config) (*Device, error) {
	fd, err := unix.Open(DevicePath, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", DevicePath, err)
	}

	var events [fsevents.MaxEvents]int8
	for i := range events {
		events[i] = fseReport
	}

	cloneFd := int32(-1)
	args := cloneArgs{
		eventList:       &events[0],
		numEvents:       int32(len(events)),
		eventQueueDepth: conf.QueueDepth,
		fd:              &cloneFd,
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlClone, uintptr(unsafe.Pointer(&args)))
	runtime.KeepAlive(&events)
	runtime.KeepAlive(&cloneFd)
	_ = unix.Close(fd)
	if errno != 0 {
		return nil, fmt.Errorf("failed to clone fsevents channel: %w", errno)
	}

	_, _, errno = unix.Syscall(unix.SYS_IOCTL, uintptr(cloneFd), ioctlWantExtendedInfo, 0)
	if errno != 0 {
		_ = unix.Close(int(cloneFd))
		return nil, fmt.Errorf("failed to request extended info: %w", errno)
	}

	return &Device{fd: int(cloneFd)}, nil
}

// Read blocks until the kernel has queued events.
func (d *Device) Read(p []byte) (int, error) {
	n, err := unix.Read(d.fd, p)
	if err != nil {
		return 0, fmt.Errorf("failed to read events: %w", err)
	}
	if n <= 0 {
		return 0, ErrClosed
	}

	return n, nil
}

func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = unix.Close(d.fd)
	})
	return err
}
