// Package slice is a thin, read-only accessor over already-encoded
// VPack bytes. It mirrors the wire format the vpack.Builder emits but
// carries none of the builder's construction logic — a Slice never
// allocates or rewrites the bytes it points into.
package slice

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Head-byte constants, duplicated from the builder rather than imported,
// since a Slice reader is meant to work on bytes produced by any
// compliant writer, not just this package's own Builder.
const (
	headEmptyArray        = 0x01
	headArrayBase         = 0x02
	headArrayIndexedBase  = 0x06
	headEmptyObject       = 0x0a
	headObjectIndexedBase = 0x0b
	headCompactArray      = 0x13
	headCompactObject     = 0x14

	headIllegal  = 0x17
	headNull     = 0x18
	headFalse    = 0x19
	headTrue     = 0x1a
	headDouble   = 0x1b
	headUTCDate  = 0x1c
	headExternal = 0x1d
	headMinKey   = 0x1e
	headMaxKey   = 0x1f

	headIntBase  = 0x20
	headUIntBase = 0x28

	headSmallIntPosBase = 0x30
	headSmallIntNegBase = 0x3a

	headStringShortBase = 0x40
	headStringLong      = 0xbf
	headBinaryBase       = 0xbf
)

// Kind mirrors vpack.Kind for the read side.
type Kind int

const (
	KindNone Kind = iota
	KindNull
	KindBool
	KindDouble
	KindExternal
	KindSmallInt
	KindInt
	KindUInt
	KindUTCDate
	KindString
	KindArray
	KindObject
	KindBinary
	KindIllegal
	KindMinKey
	KindMaxKey
)

// Slice is a view into a byte slice starting at the head byte of one
// fully-encoded value.
type Slice struct {
	buf []byte // the whole backing buffer
	off int    // offset of this value's head byte within buf
}

// New wraps buf, assuming it starts at a value's head byte.
func New(buf []byte) Slice { return Slice{buf: buf, off: 0} }

func (s Slice) head() byte { return s.buf[s.off] }

// Kind reports the VPack type this Slice's head byte encodes.
func (s Slice) Kind() Kind {
	h := s.head()
	switch {
	case h == headEmptyArray || (h >= headArrayBase && h < headArrayBase+4) || (h >= headArrayIndexedBase && h < headArrayIndexedBase+4) || h == headCompactArray:
		return KindArray
	case h == headEmptyObject || (h >= headObjectIndexedBase && h < headObjectIndexedBase+4) || h == headCompactObject:
		return KindObject
	case h == headNull:
		return KindNull
	case h == headFalse || h == headTrue:
		return KindBool
	case h == headDouble:
		return KindDouble
	case h == headUTCDate:
		return KindUTCDate
	case h == headExternal:
		return KindExternal
	case h == headIllegal:
		return KindIllegal
	case h == headMinKey:
		return KindMinKey
	case h == headMaxKey:
		return KindMaxKey
	case h >= headIntBase && h < headIntBase+8:
		return KindInt
	case h >= headUIntBase && h < headUIntBase+8:
		return KindUInt
	case h >= headSmallIntPosBase && h < headSmallIntPosBase+10:
		return KindSmallInt
	case h >= headSmallIntNegBase && h < headSmallIntNegBase+6:
		return KindSmallInt
	case h >= headStringShortBase && h <= 0xbe:
		return KindString
	case h == headStringLong:
		return KindString
	case h > headBinaryBase:
		return KindBinary
	default:
		return KindNone
	}
}

func getFixedLE(buf []byte, width int) uint64 {
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	return v
}

// ByteSize returns the total number of bytes this value occupies.
func (s Slice) ByteSize() (int, error) {
	h := s.head()
	switch {
	case h == headEmptyArray || h == headEmptyObject:
		return 1, nil
	case h == headNull, h == headFalse, h == headTrue, h == headIllegal, h == headMinKey, h == headMaxKey:
		return 1, nil
	case h == headDouble, h == headUTCDate:
		return 9, nil
	case h == headExternal:
		return 0, fmt.Errorf("vpack: External has no statically known length")
	case h >= headIntBase && h < headIntBase+8:
		return 1 + int(h-headIntBase) + 1, nil
	case h >= headUIntBase && h < headUIntBase+8:
		return 1 + int(h-headUIntBase) + 1, nil
	case h >= headSmallIntPosBase && h < headSmallIntPosBase+10:
		return 1, nil
	case h >= headSmallIntNegBase && h < headSmallIntNegBase+6:
		return 1, nil
	case h >= headStringShortBase && h <= 0xbe:
		return 1 + int(h-headStringShortBase), nil
	case h == headStringLong:
		n := getFixedLE(s.buf[s.off+1:s.off+9], 8)
		return 9 + int(n), nil
	case h > headBinaryBase:
		w := int(h - headBinaryBase)
		n := getFixedLE(s.buf[s.off+1:s.off+1+w], w)
		return 1 + w + int(n), nil
	case h == headCompactArray || h == headCompactObject:
		v, _ := binary.Uvarint(s.buf[s.off+1:])
		return int(v), nil
	case (h >= headArrayBase && h < headArrayBase+4) || (h >= headArrayIndexedBase && h < headArrayIndexedBase+4) || (h >= headObjectIndexedBase && h < headObjectIndexedBase+4):
		w := widthFromHead(h)
		return int(getFixedLE(s.buf[s.off+1:s.off+1+w], w)), nil
	default:
		return 0, fmt.Errorf("vpack: unrecognized head byte 0x%02x", h)
	}
}

func widthFromHead(h byte) int {
	var k byte
	switch {
	case h >= headArrayBase && h < headArrayBase+4:
		k = h - headArrayBase
	case h >= headArrayIndexedBase && h < headArrayIndexedBase+4:
		k = h - headArrayIndexedBase
	case h >= headObjectIndexedBase && h < headObjectIndexedBase+4:
		k = h - headObjectIndexedBase
	}
	switch k {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}

// IsString / IsArray / IsObject / IsInteger report the coarse-grained
// type of the value.
func (s Slice) IsString() bool { return s.Kind() == KindString }
func (s Slice) IsArray() bool  { return s.Kind() == KindArray }
func (s Slice) IsObject() bool { return s.Kind() == KindObject }
func (s Slice) IsNull() bool   { return s.Kind() == KindNull }
func (s Slice) IsBool() bool   { return s.Kind() == KindBool }

// StringValue returns the decoded string payload.
func (s Slice) StringValue() (string, error) {
	h := s.head()
	switch {
	case h >= headStringShortBase && h <= 0xbe:
		n := int(h - headStringShortBase)
		return string(s.buf[s.off+1 : s.off+1+n]), nil
	case h == headStringLong:
		n := getFixedLE(s.buf[s.off+1:s.off+9], 8)
		return string(s.buf[s.off+9 : s.off+9+int(n)]), nil
	default:
		return "", fmt.Errorf("vpack: not a string (head 0x%02x)", h)
	}
}

// BoolValue returns the decoded boolean payload.
func (s Slice) BoolValue() (bool, error) {
	switch s.head() {
	case headTrue:
		return true, nil
	case headFalse:
		return false, nil
	default:
		return false, fmt.Errorf("vpack: not a bool")
	}
}

// DoubleValue returns the decoded double payload.
func (s Slice) DoubleValue() (float64, error) {
	if s.head() != headDouble {
		return 0, fmt.Errorf("vpack: not a double")
	}
	bits := getFixedLE(s.buf[s.off+1:s.off+9], 8)
	return math.Float64frombits(bits), nil
}

// IntValue returns the decoded signed integer payload (Int or SmallInt).
func (s Slice) IntValue() (int64, error) {
	h := s.head()
	switch {
	case h >= headSmallIntPosBase && h < headSmallIntPosBase+10:
		return int64(h - headSmallIntPosBase), nil
	case h >= headSmallIntNegBase && h < headSmallIntNegBase+6:
		return int64(h-headSmallIntNegBase) - 6, nil
	case h >= headIntBase && h < headIntBase+8:
		w := int(h-headIntBase) + 1
		v := getFixedLE(s.buf[s.off+1:s.off+1+w], w)
		return signExtend(v, w), nil
	default:
		return 0, fmt.Errorf("vpack: not an Int/SmallInt")
	}
}

func signExtend(v uint64, w int) int64 {
	bits := uint(w) * 8
	if bits == 64 {
		return int64(v)
	}
	signBit := uint64(1) << (bits - 1)
	if v&signBit != 0 {
		v |= ^uint64(0) << bits
	}
	return int64(v)
}

// UIntValue returns the decoded unsigned integer payload.
func (s Slice) UIntValue() (uint64, error) {
	h := s.head()
	if h < headUIntBase || h >= headUIntBase+8 {
		return 0, fmt.Errorf("vpack: not a UInt")
	}
	w := int(h-headUIntBase) + 1
	return getFixedLE(s.buf[s.off+1:s.off+1+w], w), nil
}

// UTCDateValue returns the decoded millisecond timestamp.
func (s Slice) UTCDateValue() (int64, error) {
	if s.head() != headUTCDate {
		return 0, fmt.Errorf("vpack: not a UTCDate")
	}
	return int64(getFixedLE(s.buf[s.off+1:s.off+9], 8)), nil
}

// BinaryValue returns the decoded binary payload.
func (s Slice) BinaryValue() ([]byte, error) {
	h := s.head()
	if h <= headBinaryBase {
		return nil, fmt.Errorf("vpack: not Binary")
	}
	w := int(h - headBinaryBase)
	n := getFixedLE(s.buf[s.off+1:s.off+1+w], w)
	start := s.off + 1 + w
	return s.buf[start : start+int(n)], nil
}

// Length returns the number of elements (array) or keys (object).
func (s Slice) Length() (int, error) {
	h := s.head()
	switch {
	case h == headEmptyArray, h == headEmptyObject:
		return 0, nil
	case h == headCompactArray || h == headCompactObject:
		total, err := s.ByteSize()
		if err != nil {
			return 0, err
		}
		end := s.off + total
		return decodeTrailingCount(s.buf[s.off:end]), nil
	case (h >= headArrayBase && h < headArrayBase+4):
		return s.arrayLengthNoTable()
	case (h >= headArrayIndexedBase && h < headArrayIndexedBase+4):
		return s.indexedArrayLength()
	case (h >= headObjectIndexedBase && h < headObjectIndexedBase+4):
		w := widthFromHead(h)
		return int(getFixedLE(s.buf[s.off+1+w:s.off+1+2*w], w)), nil
	default:
		return 0, fmt.Errorf("vpack: not an Array/Object")
	}
}

// indexedArrayLength reads an indexed array's element count. For widths
// 1/2/4 it sits right after the byteSize field, at a fixed offset; for
// width 8 the writer instead appends it as a trailing 8-byte field after
// the offset table (arrayclose.go avoids a fixed slot there for the
// widest containers), so the reader has to pull it from the end of the
// container instead.
func (s Slice) indexedArrayLength() (int, error) {
	w := widthFromHead(s.head())
	if w < 8 {
		return int(getFixedLE(s.buf[s.off+1+w:s.off+1+2*w], w)), nil
	}
	total, err := s.ByteSize()
	if err != nil {
		return 0, err
	}
	end := s.off + total
	return int(getFixedLE(s.buf[end-8:end], 8)), nil
}

func decodeTrailingCount(buf []byte) int {
	n := len(buf)
	c := 10
	if n < c {
		c = n
	}
	var tmp [10]byte
	for i := 0; i < c; i++ {
		tmp[i] = buf[n-1-i]
	}
	v, _ := binary.Uvarint(tmp[:c])
	return int(v)
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// arrayLengthNoTable recovers the element count of a no-table array by
// dividing by the constant stride (or reporting 1 for a single child);
// this mirrors the constraint the writer enforced when it chose this
// encoding.
func (s Slice) arrayLengthNoTable() (int, error) {
	total, err := s.ByteSize()
	if err != nil {
		return 0, err
	}
	w := widthFromHead(s.head())
	start, err := s.noTableDataStart(w)
	if err != nil {
		return 0, err
	}
	payloadLen := (s.off + total) - start
	first, err := s.At(0)
	if err != nil {
		// payload empty is impossible for a non-empty array head; surface
		// the error rather than guessing.
		return 0, err
	}
	firstLen, err := first.ByteSize()
	if err != nil {
		return 0, err
	}
	if payloadLen == firstLen {
		return 1, nil
	}
	if firstLen == 0 {
		return 0, fmt.Errorf("vpack: degenerate stride")
	}
	return payloadLen / firstLen, nil
}

// At returns the i-th element of an array.
func (s Slice) At(i int) (Slice, error) {
	h := s.head()
	switch {
	case h == headEmptyArray:
		return Slice{}, fmt.Errorf("vpack: index out of range")
	case h == headCompactArray:
		return s.atCompact(i)
	case h >= headArrayBase && h < headArrayBase+4:
		return s.atNoTable(i)
	case h >= headArrayIndexedBase && h < headArrayIndexedBase+4:
		return s.atIndexed(i)
	default:
		return Slice{}, fmt.Errorf("vpack: not an Array")
	}
}

// noTableDataStart locates the first sub-value of a no-table array. The
// writer only compacts the gap between the length field and the payload
// away for offset width 1; for wider widths it leaves the reserved
// header space zero-padded in place rather than moving the payload
// down, so the reader has to skip forward past the padding to find the
// first real head byte. No head byte is ever zero, so scanning for the
// first non-zero byte is exact.
func (s Slice) noTableDataStart(w int) (int, error) {
	off := s.off + 1 + w
	for off < len(s.buf) && s.buf[off] == 0 {
		off++
	}
	if off >= len(s.buf) {
		return 0, fmt.Errorf("vpack: no-table array payload not found")
	}
	return off, nil
}

func (s Slice) atNoTable(i int) (Slice, error) {
	w := widthFromHead(s.head())
	cur, err := s.noTableDataStart(w)
	if err != nil {
		return Slice{}, err
	}
	for j := 0; j <= i; j++ {
		el := Slice{buf: s.buf, off: cur}
		elLen, err := el.ByteSize()
		if err != nil {
			return Slice{}, err
		}
		if j == i {
			return el, nil
		}
		cur += elLen
	}
	return Slice{}, fmt.Errorf("vpack: index out of range")
}

func (s Slice) atIndexed(i int) (Slice, error) {
	w := widthFromHead(s.head())
	n, err := s.Length()
	if err != nil {
		return Slice{}, err
	}
	if i < 0 || i >= n {
		return Slice{}, fmt.Errorf("vpack: index out of range")
	}
	total, err := s.ByteSize()
	if err != nil {
		return Slice{}, err
	}
	tableLen := n * w
	if w == 8 {
		tableLen += 8
	}
	tableStart := s.off + total - tableLen
	off := int(getFixedLE(s.buf[tableStart+i*w:tableStart+(i+1)*w], w))
	return Slice{buf: s.buf, off: s.off + off}, nil
}

func (s Slice) atCompact(i int) (Slice, error) {
	w := widthFromHead(0) // unused
	_ = w
	cur := s.off + 1
	_, n := binary.Uvarint(s.buf[cur:])
	cur += n
	for j := 0; ; j++ {
		el := Slice{buf: s.buf, off: cur}
		elLen, err := el.ByteSize()
		if err != nil {
			return Slice{}, err
		}
		if j == i {
			return el, nil
		}
		cur += elLen
	}
}

// ForEachEntry calls fn once per key/value pair of an object, in
// on-disk order — insertion order for a compact object, hash-table slot
// order (not insertion order) for an indexed one. It stops and returns
// fn's error if fn returns non-nil.
func (s Slice) ForEachEntry(fn func(key string, val Slice) error) error {
	h := s.head()
	switch {
	case h == headEmptyObject:
		return nil
	case h == headCompactObject:
		return s.forEachCompact(fn)
	default:
		return s.forEachIndexed(fn)
	}
}

func (s Slice) forEachCompact(fn func(key string, val Slice) error) error {
	cur := s.off + 1
	_, n := binary.Uvarint(s.buf[cur:])
	cur += n
	total, err := s.ByteSize()
	if err != nil {
		return err
	}
	end := s.off + total
	count := decodeTrailingCount(s.buf[s.off:end])
	for j := 0; j < count; j++ {
		k := Slice{buf: s.buf, off: cur}
		kLen, err := k.ByteSize()
		if err != nil {
			return err
		}
		name, err := k.StringValue()
		if err != nil {
			return err
		}
		v := Slice{buf: s.buf, off: cur + kLen}
		vLen, err := v.ByteSize()
		if err != nil {
			return err
		}
		if err := fn(name, v); err != nil {
			return err
		}
		cur += kLen + vLen
	}
	return nil
}

func (s Slice) forEachIndexed(fn func(key string, val Slice) error) error {
	h := s.head()
	w := widthFromHead(h)
	nrSlots := int(getFixedLE(s.buf[s.off+1+2*w:s.off+1+2*w+4], 4))
	total, err := s.ByteSize()
	if err != nil {
		return err
	}
	tableLen := nrSlots * w
	tableStart := s.off + total - tableLen
	for i := 0; i < nrSlots; i++ {
		rel := int(getFixedLE(s.buf[tableStart+i*w:tableStart+(i+1)*w], w))
		if rel == 0 {
			continue
		}
		k := Slice{buf: s.buf, off: s.off + rel}
		name, err := k.StringValue()
		if err != nil {
			return err
		}
		kLen, err := k.ByteSize()
		if err != nil {
			return err
		}
		v := Slice{buf: s.buf, off: k.off + kLen}
		if err := fn(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value for key in an object.
func (s Slice) Get(key string) (Slice, bool, error) {
	h := s.head()
	switch {
	case h == headEmptyObject:
		return Slice{}, false, nil
	case h == headCompactObject:
		return s.getCompact(key)
	default:
		return s.getIndexed(key)
	}
}

func (s Slice) getCompact(key string) (Slice, bool, error) {
	cur := s.off + 1
	_, n := binary.Uvarint(s.buf[cur:])
	cur += n
	total, err := s.ByteSize()
	if err != nil {
		return Slice{}, false, err
	}
	end := s.off + total
	count := decodeTrailingCount(s.buf[s.off:end])
	for j := 0; j < count; j++ {
		k := Slice{buf: s.buf, off: cur}
		kLen, err := k.ByteSize()
		if err != nil {
			return Slice{}, false, err
		}
		name, err := k.StringValue()
		if err != nil {
			return Slice{}, false, err
		}
		v := Slice{buf: s.buf, off: cur + kLen}
		vLen, err := v.ByteSize()
		if err != nil {
			return Slice{}, false, err
		}
		if name == key {
			return v, true, nil
		}
		cur += kLen + vLen
	}
	return Slice{}, false, nil
}

func (s Slice) getIndexed(key string) (Slice, bool, error) {
	h := s.head()
	w := widthFromHead(h)
	n := int(getFixedLE(s.buf[s.off+1+w:s.off+1+2*w], w))
	nrSlots := int(getFixedLE(s.buf[s.off+1+2*w:s.off+1+2*w+4], 4))
	total, err := s.ByteSize()
	if err != nil {
		return Slice{}, false, err
	}
	tableLen := nrSlots * w
	tableStart := s.off + total - tableLen
	_ = n
	for i := 0; i < nrSlots; i++ {
		rel := int(getFixedLE(s.buf[tableStart+i*w:tableStart+(i+1)*w], w))
		if rel == 0 {
			continue
		}
		k := Slice{buf: s.buf, off: s.off + rel}
		name, err := k.StringValue()
		if err != nil {
			return Slice{}, false, err
		}
		if name == key {
			kLen, err := k.ByteSize()
			if err != nil {
				return Slice{}, false, err
			}
			v := Slice{buf: s.buf, off: k.off + kLen}
			return v, true, nil
		}
	}
	return Slice{}, false, nil
}
