package watcher

import (
	"errors"
)

const (
	DevicePath = "/dev/fsevents"

	// DefaultBufferSize is the size of a single device read.
	DefaultBufferSize = 131072
	// DefaultQueueDepth is the kernel side event queue depth, bounded by
	// MAX_KFS_EVENTS.
	DefaultQueueDepth = 4096
)

var (
	ErrUnsupported = errors.New("fsevents device is not supported on this platform")
	ErrClosed      = errors.New("fsevents device closed")
)

// Source delivers raw fsevents buffers. Each successful Read returns one or
// more whole records.
type Source interface {
	Read(p []byte) (int, error)
	Close() error
}

type Config struct {
	QueueDepth int32
}
