package fsevents

// Event types as reported by the kernel. The low 12 bits of the raw type
// select one of these, the next 4 bits carry flags.
const (
	TypeInvalid           int32 = -1
	TypeCreateFile        int32 = 0
	TypeDelete            int32 = 1
	TypeStatChanged       int32 = 2
	TypeRename            int32 = 3
	TypeContentModified   int32 = 4
	TypeExchange          int32 = 5
	TypeFinderInfoChanged int32 = 6
	TypeCreateDir         int32 = 7
	TypeChown             int32 = 8
	TypeXattrModified     int32 = 9
	TypeXattrRemoved      int32 = 10

	MaxEvents = 11

	// TypeEventsDropped is the raw type of the record the kernel queues when
	// it had to discard events.
	TypeEventsDropped int32 = 999

	TypeMask  = 0x0fff
	FlagMask  = 0xf000
	flagShift = 12

	FlagCombinedEvents        uint32 = 0x0001
	FlagContainsDroppedEvents uint32 = 0x0002
)

// Argument tags.
const (
	ArgVnode  uint16 = 0x0001
	ArgString uint16 = 0x0002
	ArgPath   uint16 = 0x0003
	ArgInt32  uint16 = 0x0004
	ArgInt64  uint16 = 0x0005
	ArgRaw    uint16 = 0x0006
	ArgIno    uint16 = 0x0007
	ArgUid    uint16 = 0x0008
	ArgDev    uint16 = 0x0009
	ArgMode   uint16 = 0x000a
	ArgGid    uint16 = 0x000b
	ArgFinfo  uint16 = 0x000c

	MaxArgs = 12

	// ArgDone terminates an argument list. It is encoded as a bare tag.
	ArgDone uint16 = 0xb33f
)

const (
	headerSize    = 8
	tagSize       = 2
	argHeaderSize = 4
)

var eventNames = [MaxEvents]string{
	"FSE_CREATE_FILE",
	"FSE_DELETE",
	"FSE_STAT_CHANGED",
	"FSE_RENAME",
	"FSE_CONTENT_MODIFIED",
	"FSE_EXCHANGE",
	"FSE_FINDER_INFO_CHANGED",
	"FSE_CREATE_DIR",
	"FSE_CHOWN",
	"FSE_XATTR_MODIFIED",
	"FSE_XATTR_REMOVED",
}

var argNames = [MaxArgs + 1]string{
	"FSE_ARG_UNKNOWN", "FSE_ARG_VNODE", "FSE_ARG_STRING", "FSE_ARG_PATH",
	"FSE_ARG_INT32", "FSE_ARG_INT64", "FSE_ARG_RAW", "FSE_ARG_INO",
	"FSE_ARG_UID", "FSE_ARG_DEV", "FSE_ARG_MODE", "FSE_ARG_GID",
	"FSE_ARG_FINFO",
}

// EventName returns the display name of an event type. Codes outside the
// table map to FSE_INVALID.
func EventName(typ int32) string {
	if typ < 0 || typ >= MaxEvents {
		return "FSE_INVALID"
	}
	return eventNames[typ]
}

// ArgName returns the display name of an argument tag.
func ArgName(tag uint16) string {
	if tag == ArgDone {
		return "FSE_ARG_DONE"
	}
	if tag > MaxArgs {
		return argNames[0]
	}
	return argNames[tag]
}

// SplitType separates a raw header type into the event type and its flags.
func SplitType(raw int32) (int32, uint32) {
	return raw & TypeMask, (uint32(raw) & FlagMask) >> flagShift
}

// Vnode types, derived from the file type bits of a mode argument.
const (
	VNon = iota
	VReg
	VDir
	VBlk
	VChr
	VLnk
	VSock
	VFifo
	VBad
	VStr
	VCplx
)

var iftovt = [16]int{
	VNon, VFifo, VChr, VNon, VDir, VNon, VBlk, VNon,
	VReg, VNon, VLnk, VNon, VSock, VNon, VNon, VBad,
}

var vtypeNames = [...]string{
	"VNON", "VREG", "VDIR", "VBLK", "VCHR", "VLNK",
	"VSOCK", "VFIFO", "VBAD", "VSTR", "VCPLX",
}

// VnodeType maps the S_IFMT bits of mode to a vnode type.
func VnodeType(mode uint32) int {
	return iftovt[(mode&0o170000)>>12]
}

// VnodeTypeName returns the display name of a vnode type.
func VnodeTypeName(vtype int) string {
	if vtype < 0 || vtype >= len(vtypeNames) {
		return "VBAD"
	}
	return vtypeNames[vtype]
}
