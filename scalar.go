package vpack

import "math"

// encodeScalar writes v (any Kind except Array/Object, which are handled
// by pushContainer) and returns the offset of its head byte.
func (b *Builder) encodeScalar(v Value) (int, error) {
	switch v.Kind {
	case KindNull:
		return b.appendByte(headNull), nil
	case KindIllegal:
		return b.appendByte(headIllegal), nil
	case KindMinKey:
		return b.appendByte(headMinKey), nil
	case KindMaxKey:
		return b.appendByte(headMaxKey), nil
	case KindBool:
		if v.Bool {
			return b.appendByte(headTrue), nil
		}
		return b.appendByte(headFalse), nil
	case KindDouble:
		off := b.appendByte(headDouble)
		b.appendFixedLEBytes(math.Float64bits(v.Double), 8)
		return off, nil
	case KindExternal:
		if b.opts.DisallowExternals {
			return 0, builderErrf(ErrBuilderExternalsDisallowed, "external values are disabled")
		}
		off := b.appendByte(headExternal)
		b.appendRaw(v.Bytes)
		return off, nil
	case KindSmallInt:
		if v.Int < -6 || v.Int > 9 {
			return 0, builderErrf(ErrNumberOutOfRange, "SmallInt %d out of range [-6..9]", v.Int)
		}
		if v.Int >= 0 {
			return b.appendByte(byte(headSmallIntPosBase + v.Int)), nil
		}
		return b.appendByte(byte(headSmallIntNegBase + (v.Int + 6))), nil
	case KindInt:
		return b.addInt(v.Int), nil
	case KindUInt:
		return b.addUInt(v.UInt), nil
	case KindUTCDate:
		off := b.appendByte(headUTCDate)
		b.appendFixedLEBytes(uint64(v.Int), 8)
		return off, nil
	case KindString:
		return b.addString(v.Str), nil
	case KindBinary:
		return b.addBinary(v.Bytes), nil
	case KindBCD:
		return 0, builderErrf(ErrNotImplemented, "BCD encoding is not implemented")
	case KindCustom:
		return 0, builderErrf(ErrBuilderUnexpectedType, "Custom cannot be produced via the scalar path")
	case KindNone:
		return 0, builderErrf(ErrBuilderUnexpectedType, "None cannot be encoded")
	default:
		return 0, builderErrf(ErrBuilderUnexpectedType, "unexpected kind %v for scalar encoding", v.Kind)
	}
}

// addInt writes v as a 1..8 byte two's-complement little-endian integer,
// choosing the narrowest width that round-trips.
func (b *Builder) addInt(v int64) int {
	w := intWidth(v)
	off := b.appendByte(byte(headIntBase + w - 1))
	b.appendFixedLEBytes(uint64(v), w)
	return off
}

// addUInt writes v as a 1..8 byte little-endian unsigned integer.
func (b *Builder) addUInt(v uint64) int {
	w := uintWidth(v)
	off := b.appendByte(byte(headUIntBase + w - 1))
	b.appendFixedLEBytes(v, w)
	return off
}

func intWidth(v int64) int {
	for w := 1; w < 8; w++ {
		bits := uint(w) * 8
		lo := int64(-1) << (bits - 1)
		hi := ^lo
		if v >= lo && v <= hi {
			return w
		}
	}
	return 8
}

func uintWidth(v uint64) int {
	for w := 1; w < 8; w++ {
		if v < uint64(1)<<(uint(w)*8) {
			return w
		}
	}
	return 8
}

func (b *Builder) addString(s string) int {
	n := len(s)
	if n <= maxShortStringLen {
		off := b.appendByte(byte(headStringShortBase + n))
		b.appendRaw([]byte(s))
		return off
	}
	off := b.appendByte(headStringLong)
	b.appendFixedLEBytes(uint64(n), 8)
	b.appendRaw([]byte(s))
	return off
}

func (b *Builder) addBinary(data []byte) int {
	w := uintWidth(uint64(len(data)))
	off := b.appendByte(byte(headBinaryBase + w))
	b.appendFixedLEBytes(uint64(len(data)), w)
	b.appendRaw(data)
	return off
}
