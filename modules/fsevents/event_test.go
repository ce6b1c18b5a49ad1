package fsevents

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func rawType(typ int32, flags uint32) int32 {
	return typ | int32(flags<<flagShift)
}

func TestDecoderNext(t *testing.T) {
	var buf []byte
	buf = AppendEvent(buf, TypeRename, 42,
		StringArg("/tmp/old"),
		Arg{Tag: ArgDev, Len: 4, Payload: []byte{1, 0, 0, 1}},
		StringArg("/tmp/new"),
	)
	buf = AppendEvent(buf, TypeDelete, 7, StringArg("/tmp/gone"))

	d := NewDecoder(buf)

	ev, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeRename, ev.Type)
	assert.Equal(t, int32(42), ev.Pid)
	assert.Equal(t, "FSE_RENAME", ev.Name())
	assert.True(t, ev.Terminated)
	assert.Equal(t, []string{"/tmp/old", "/tmp/new"}, ev.Paths())
	dev, ok := ev.Arg(ArgDev)
	require.True(t, ok)
	assert.Equal(t, uint16(4), dev.Len)

	require.True(t, d.More())
	ev, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeDelete, ev.Type)
	assert.Equal(t, []string{"/tmp/gone"}, ev.Paths())

	assert.False(t, d.More())
	assert.Equal(t, len(buf), d.Offset())
}

func TestDecoderUnterminatedRecord(t *testing.T) {
	buf := AppendEvent(nil, TypeChown, 1, StringArg("/x"))
	buf = buf[:len(buf)-2]

	d := NewDecoder(buf)
	ev, err := d.Next()
	require.NoError(t, err)
	assert.False(t, ev.Terminated)
	assert.Equal(t, []string{"/x"}, ev.Paths())
	assert.False(t, d.More())
}

func TestDecoderInvalidType(t *testing.T) {
	buf := AppendEvent(nil, MaxEvents, 1, StringArg("/x"))

	d := NewDecoder(buf)
	ev, err := d.Next()
	assert.Nil(t, ev)
	require.ErrorIs(t, err, ErrInvalidType)
	assert.False(t, IsRecordLevel(err))
	assert.Contains(t, err.Error(), "type = 11")
	assert.Equal(t, 0, d.Offset())
}

func TestDecoderNegativeRawType(t *testing.T) {
	// -1 masks to 0xfff, which is out of range.
	buf := AppendEvent(nil, -1, 1)
	_, err := NewDecoder(buf).Next()
	require.ErrorIs(t, err, ErrInvalidType)
}

func TestDecoderEventsDropped(t *testing.T) {
	var buf []byte
	buf = AppendEvent(buf, TypeEventsDropped, 0)
	buf = AppendEvent(buf, TypeCreateFile, 3, StringArg("/a"))

	d := NewDecoder(buf)
	ev, err := d.Next()
	require.ErrorIs(t, err, ErrEventsDropped)
	assert.True(t, IsRecordLevel(err))
	require.NotNil(t, ev)
	assert.Equal(t, TypeInvalid, ev.Type)
	assert.Equal(t, "FSE_INVALID", ev.Name())

	// The record was consumed so a lenient caller can carry on.
	ev, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, ev.Paths())
}

func TestDecoderFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags uint32
		want  error
	}{
		{"combined", FlagCombinedEvents, ErrCombinedEvents},
		{"contains dropped", FlagContainsDroppedEvents, ErrContainsDroppedEvents},
		{"both", FlagCombinedEvents | FlagContainsDroppedEvents, ErrCombinedEvents},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := AppendEvent(nil, rawType(TypeStatChanged, tt.flags), 9, StringArg("/s"))

			d := NewDecoder(buf)
			ev, err := d.Next()
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsRecordLevel(err))
			assert.Equal(t, TypeStatChanged, ev.Type)
			assert.Equal(t, tt.flags, ev.Flags)
			assert.False(t, d.More())
		})
	}
}

func TestDecoderFlaggedRecordWithShortArgument(t *testing.T) {
	full := AppendEvent(nil, rawType(TypeChown, FlagCombinedEvents), 4, StringArg("/some/path"))
	buf := full[:headerSize+6]

	d := NewDecoder(buf)
	ev, err := d.Next()
	require.ErrorIs(t, err, ErrCombinedEvents)
	assert.NotErrorIs(t, err, ErrTruncated)
	assert.True(t, IsRecordLevel(err))

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 0, de.Offset)

	require.NotNil(t, ev)
	assert.Equal(t, TypeChown, ev.Type)
	assert.Empty(t, ev.Args)
	assert.False(t, d.More())
}

func TestDecoderUnusedFlagsIgnored(t *testing.T) {
	buf := AppendEvent(nil, rawType(TypeXattrRemoved, 0x4), 9, StringArg("/s"))

	ev, err := NewDecoder(buf).Next()
	require.NoError(t, err)
	assert.Equal(t, TypeXattrRemoved, ev.Type)
}

func TestDecoderTruncation(t *testing.T) {
	full := AppendEvent(nil, TypeDelete, 1, StringArg("/some/path"))

	t.Run("header", func(t *testing.T) {
		_, err := NewDecoder(full[:6]).Next()
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("argument", func(t *testing.T) {
		_, err := NewDecoder(full[:headerSize+6]).Next()
		require.ErrorIs(t, err, ErrTruncated)

		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, headerSize, de.Offset)
	})
}

func TestDecoderReset(t *testing.T) {
	d := NewDecoder(AppendEvent(nil, TypeDelete, 1))
	_, err := d.Next()
	require.NoError(t, err)

	d.Reset(AppendEvent(nil, TypeCreateDir, 2, StringArg("/d")))
	assert.Equal(t, 0, d.Offset())
	ev, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeCreateDir, ev.Type)
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "FSE_CREATE_FILE", EventName(TypeCreateFile))
	assert.Equal(t, "FSE_XATTR_REMOVED", EventName(TypeXattrRemoved))
	assert.Equal(t, "FSE_INVALID", EventName(TypeInvalid))
	assert.Equal(t, "FSE_INVALID", EventName(MaxEvents))
}

func TestVnodeTypeName(t *testing.T) {
	assert.Equal(t, "VDIR", VnodeTypeName(VnodeType(0o040755)))
	assert.Equal(t, "VLNK", VnodeTypeName(VnodeType(0o120777)))
	assert.Equal(t, "VBAD", VnodeTypeName(99))
}
