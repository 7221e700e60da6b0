package vpack

// Head-byte constants for the wire format the builder emits. Multi-byte
// fields are always little-endian; strings and binary payloads are raw
// bytes. See the external interfaces table for the full layout.
const (
	headEmptyArray  = 0x01
	headArrayBase   = 0x02 // unindexed array, width 1/2/4/8 -> +0/+1/+2/+3
	headArrayIndexedBase = 0x06 // indexed array, width 1/2/4/8 -> +0/+1/+2/+3
	headEmptyObject = 0x0a
	headObjectIndexedBase = 0x0b // indexed object, width 1/2/4/8 -> +0/+1/+2/+3
	headCompactArray  = 0x13
	headCompactObject = 0x14

	headIllegal = 0x17
	headNull    = 0x18
	headFalse   = 0x19
	headTrue    = 0x1a
	headDouble  = 0x1b
	headUTCDate = 0x1c
	headExternal = 0x1d
	headMinKey  = 0x1e
	headMaxKey  = 0x1f

	headIntBase  = 0x20 // +0..+7 for 1..8 byte two's-complement int
	headUIntBase = 0x28 // +0..+7 for 1..8 byte little-endian uint

	headSmallIntPosBase = 0x30 // SmallInt 0..9
	headSmallIntNegBase = 0x3a // SmallInt -6..-1 (0x3a + (v+6))

	headStringShortBase = 0x40 // + length, for length in 0..126
	headStringLong       = 0xbf
	maxShortStringLen    = 126

	headBinaryBase = 0xbf // + width (1..8) giving the length-prefix width
)

// headOffsetWidthIndex maps the byte width of an offset-table entry to the
// index added to a base head byte (array/object, indexed/unindexed).
func headOffsetWidthIndex(width int) int {
	switch width {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		panic("invalid offset width")
	}
}
