package vpack

import "encoding/binary"

// Variable-length integer codec: 7 payload bits per byte, high bit set on
// every continuation byte and clear on the terminator.
//
// Two directions are used by the compact container form (§4.5/§4.6):
// forward-terminated for the leading byteSize field (terminator is the
// last byte written, read left to right like a normal varint) and
// reverse-terminated for the trailing count field, which a reader walks
// right to left from the end of the buffer without knowing in advance
// where it starts. The forward direction is exactly encoding/binary's
// Uvarint encoding, so it's used directly rather than reimplemented;
// only the reverse direction, which encoding/binary has no equivalent
// for, is hand-rolled below.

// putUvarint appends v as a forward-terminated varint and returns the
// number of bytes written.
func putUvarint(buf []byte, v uint64) int {
	return binary.PutUvarint(buf, v)
}

// appendUvarint grows b.buf and writes v as a forward-terminated varint.
func (b *Builder) appendUvarint(v uint64) {
	off := b.grow(maxVarintLen)
	n := putUvarint(b.buf[off:], v)
	b.buf = b.buf[:off+n]
}

// decodeUvarint reads a forward-terminated varint starting at buf[0].
func decodeUvarint(buf []byte) (v uint64, n int) {
	v, n = binary.Uvarint(buf)
	if n < 0 {
		return 0, 0
	}
	return v, n
}

// appendRuvarint appends v as a reverse-terminated varint: the bytes of
// an ordinary forward varint, written in reverse order, so a reader
// walking backwards from the end of the buffer sees the forward byte
// order and stops at the terminator (the original last byte, high bit
// clear), which is the first byte of the field in the buffer.
func appendRuvarint(buf []byte, v uint64) []byte {
	var tmp [maxVarintLen]byte
	n := putUvarint(tmp[:], v)
	off := len(buf)
	buf = append(buf, tmp[:n]...)
	for i, j := off, off+n-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

func (b *Builder) appendRuvarint(v uint64) {
	b.buf = appendRuvarint(b.buf, v)
}

// decodeRuvarintFromEnd reads a reverse-terminated varint whose last byte
// is buf[len(buf)-1]. It reconstructs the original forward-varint byte
// order by walking backwards from the end, then decodes normally; the
// standard decoder's own termination rule tells us how many bytes the
// value actually occupied, so no length is needed up front.
func decodeRuvarintFromEnd(buf []byte) (v uint64, rest []byte) {
	n := len(buf)
	c := maxVarintLen
	if n < c {
		c = n
	}
	var tmp [maxVarintLen]byte
	for i := 0; i < c; i++ {
		tmp[i] = buf[n-1-i]
	}
	v, vn := decodeUvarint(tmp[:c])
	return v, buf[:n-vn]
}

const maxVarintLen = 10 // ceil(64/7)

// variableValueLength returns the number of bytes a forward- or
// reverse-terminated varint encoding of n occupies; both directions use
// the same byte count since they differ only in byte order.
func variableValueLength(n uint64) int {
	l := 1
	for n >= 0x80 {
		n >>= 7
		l++
	}
	return l
}
