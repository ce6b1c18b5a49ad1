package fsevents

import (
	"errors"
	"fmt"
)

// Stream level errors. The decoder has lost alignment with the byte stream
// and nothing after the failing offset can be trusted.
var (
	ErrTruncated   = errors.New("record truncated")
	ErrInvalidType = errors.New("invalid event type")
)

// Record level errors. The kernel reported a condition this decoder does not
// reconstruct, but the record itself is well formed.
var (
	ErrEventsDropped         = errors.New("events dropped")
	ErrCombinedEvents        = errors.New("combined events")
	ErrContainsDroppedEvents = errors.New("contains dropped events")
)

// DecodeError records where in a buffer decoding failed.
type DecodeError struct {
	Offset  int
	RawType int32
	Err     error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrInvalidType) {
		typ, _ := SplitType(e.RawType)
		return fmt.Sprintf("offset %d: %v (type = %d)", e.Offset, e.Err, typ)
	}
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRecordLevel reports whether err concerns a single well formed record,
// so that a caller may skip it and continue with the next one.
func IsRecordLevel(err error) bool {
	return errors.Is(err, ErrEventsDropped) ||
		errors.Is(err, ErrCombinedEvents) ||
		errors.Is(err, ErrContainsDroppedEvents)
}
