package fsevents

// Event is one decoded kernel record.
type Event struct {
	RawType int32
	Type    int32
	Flags   uint32
	Pid     int32
	Args    []Arg

	// Terminated is false when the buffer ended before the argument list
	// terminator was seen.
	Terminated bool
}

// Name returns the display name of the event type.
func (e *Event) Name() string {
	return EventName(e.Type)
}

// Paths returns the values of all string arguments in order.
func (e *Event) Paths() []string {
	var paths []string
	for _, a := range e.Args {
		if a.Tag == ArgString {
			paths = append(paths, a.String())
		}
	}
	return paths
}

// Arg returns the first argument carrying tag.
func (e *Event) Arg(tag uint16) (Arg, bool) {
	for _, a := range e.Args {
		if a.Tag == tag {
			return a, true
		}
	}
	return Arg{}, false
}

// Decoder walks the records of a single read buffer.
type Decoder struct {
	buf []byte
	off int
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Reset points the decoder at a new buffer.
func (d *Decoder) Reset(buf []byte) {
	d.buf = buf
	d.off = 0
}

// More reports whether unread bytes remain in the buffer.
func (d *Decoder) More() bool {
	return d.off < len(d.buf)
}

// Offset returns the position of the next record.
func (d *Decoder) Offset() int {
	return d.off
}

// Next decodes the record at the current offset.
//
// A stream level error (ErrTruncated, ErrInvalidType) leaves the offset
// untouched and the buffer must be abandoned. On a record level error the
// returned event is still populated and the offset has moved past the
// record, so a caller may choose to skip it; see IsRecordLevel. A record
// level error takes precedence over a truncated argument in the same record.
func (d *Decoder) Next() (*Event, error) {
	start := d.off
	if start+headerSize > len(d.buf) {
		return nil, &DecodeError{Offset: start, Err: ErrTruncated}
	}

	raw := int32(byteOrder.Uint32(d.buf[start:]))
	pid := int32(byteOrder.Uint32(d.buf[start+4:]))
	typ, flags := SplitType(raw)

	ev := &Event{
		RawType: raw,
		Type:    typ,
		Flags:   flags,
		Pid:     pid,
	}

	var recordErr error
	switch {
	case raw == TypeEventsDropped:
		ev.Type = TypeInvalid
		recordErr = ErrEventsDropped
	case typ < TypeInvalid || typ >= MaxEvents:
		return nil, &DecodeError{Offset: start, RawType: raw, Err: ErrInvalidType}
	case flags&FlagCombinedEvents != 0:
		recordErr = ErrCombinedEvents
	case flags&FlagContainsDroppedEvents != 0:
		recordErr = ErrContainsDroppedEvents
	}

	off := start + headerSize
	for off < len(d.buf) {
		a, next, err := DecodeArg(d.buf, off)
		if err != nil {
			if recordErr != nil {
				// The flagged record runs to the end of the buffer.
				d.off = len(d.buf)
				return ev, &DecodeError{Offset: start, RawType: raw, Err: recordErr}
			}
			return nil, err
		}
		off = next
		if a.Done() {
			ev.Terminated = true
			break
		}
		ev.Args = append(ev.Args, a)
	}
	d.off = off

	if recordErr != nil {
		return ev, &DecodeError{Offset: start, RawType: raw, Err: recordErr}
	}
	return ev, nil
}

// AppendEvent appends a complete record, terminator included, to dst.
func AppendEvent(dst []byte, rawType, pid int32, args ...Arg) []byte {
	dst = byteOrder.AppendUint32(dst, uint32(rawType))
	dst = byteOrder.AppendUint32(dst, uint32(pid))
	for _, a := range args {
		dst = AppendArg(dst, a)
	}
	return AppendArg(dst, Arg{Tag: ArgDone})
}
