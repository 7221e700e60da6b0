package vpack

// isConstantStride reports whether the array's children are evenly
// spaced and fill the payload exactly, letting close() omit both the
// offset table and the subvalue count (the single-child case is folded
// into the same no-table path by the caller).
func isConstantStride(index []int, tos, pos int) bool {
	n := len(index)
	if n < 2 {
		return false
	}
	stride := index[1] - index[0]
	if stride <= 0 {
		return false
	}
	total := pos - tos - index[0]
	return total == n*stride
}

func maxUnsignedForWidth(w int) uint64 {
	if w >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(w*8)) - 1
}

// closeArrayFrame finalizes the top-of-stack array frame, choosing among
// the empty / compact / unindexed-constant-stride / indexed encodings.
func (b *Builder) closeArrayFrame() error {
	depth := len(b.stack) - 1
	frame := &b.stack[depth]
	tos := frame.tos
	index := frame.index

	if len(index) == 0 {
		b.closeEmptyContainer(tos, true)
		b.popFrame(depth)
		return nil
	}

	if frame.compact || b.opts.BuildUnindexedArrays {
		ok, err := b.tryCloseCompact(tos, index, true)
		if err != nil {
			return err
		}
		if ok {
			b.popFrame(depth)
			return nil
		}
		b.buf[tos] = headArrayIndexedBase
	}

	b.closeIndexedArray(tos, index)
	b.popFrame(depth)
	return nil
}

func (b *Builder) closeEmptyContainer(tos int, isArray bool) {
	if isArray {
		b.buf[tos] = headEmptyArray
	} else {
		b.buf[tos] = headEmptyObject
	}
	b.buf = b.buf[:tos+1]
}

// tryCloseCompact attempts the "[head][varint byteSize][payload][varint
// count]" encoding. It returns ok=false (no error) when the combined
// header would exceed 8 bytes, so the caller can fall back to the
// indexed path.
func (b *Builder) tryCloseCompact(tos int, index []int, isArray bool) (bool, error) {
	n := len(index)
	payloadLen := len(b.buf) - (tos + containerHeaderReserve + 1)
	nLen := variableValueLength(uint64(n))

	bLen := 1
	var byteSize int
	for i := 0; i < 4; i++ {
		byteSize = 1 + bLen + payloadLen + nLen
		newBLen := variableValueLength(uint64(byteSize))
		if newBLen == bLen {
			break
		}
		bLen = newBLen
	}
	if bLen+nLen > containerHeaderReserve {
		return false, nil
	}

	newPayloadStart := tos + 1 + bLen
	oldPayloadStart := tos + containerHeaderReserve + 1
	b.memmoveWithin(newPayloadStart, oldPayloadStart, payloadLen)

	if isArray {
		b.buf[tos] = headCompactArray
	} else {
		b.buf[tos] = headCompactObject
	}
	written := putUvarint(b.buf[tos+1:tos+1+bLen], uint64(byteSize))
	if written != bLen {
		panic("compact byteSize varint width mismatch")
	}
	countFieldStart := tos + byteSize - nLen
	putRuvarintAt(b.buf, countFieldStart, uint64(n), nLen)

	b.buf = b.buf[:tos+byteSize]
	return true, nil
}

// putRuvarintAt writes v as a width-byte reverse-terminated varint
// occupying buf[startOff : startOff+width], matching appendRuvarint's
// byte order so decodeRuvarintFromEnd can read it back from the end.
func putRuvarintAt(buf []byte, startOff int, v uint64, width int) {
	var tmp [maxVarintLen]byte
	n := putUvarint(tmp[:], v)
	if n != width {
		panic("ruvarint width mismatch")
	}
	for i := 0; i < width; i++ {
		buf[startOff+i] = tmp[width-1-i]
	}
}

// closeIndexedArray finalizes an array with an explicit offset table
// (or, for the single-child / constant-stride case, without one), at
// the narrowest width that fits.
func (b *Builder) closeIndexedArray(tos int, index []int) {
	n := len(index)
	pos := len(b.buf)
	needTable := !(n == 1 || isConstantStride(index, tos, pos))
	payloadLen := pos - (tos + containerHeaderReserve + 1)

	w, totalLen, moved := arrayWidthAndLength(payloadLen, n, needTable)

	if moved {
		prefixLen := 1 + w
		if needTable {
			prefixLen += w
		}
		b.memmoveWithin(tos+prefixLen, tos+containerHeaderReserve+1, payloadLen)
		delta := containerHeaderReserve + 1 - prefixLen
		for i := range index {
			index[i] -= delta
		}
	}

	// Payload now ends at tos + (moved ? prefixLen : 9) + payloadLen; the
	// offset table, if any, is appended right after it.
	payloadEnd := tos + totalPrefixFor(w, needTable, moved) + payloadLen
	b.buf = b.buf[:payloadEnd]

	if needTable {
		for _, off := range index {
			b.appendFixedLEBytes(uint64(off), w)
		}
		if w == 8 {
			b.appendFixedLEBytes(uint64(n), 8)
		}
	}

	headIdx := headOffsetWidthIndex(w)
	if needTable {
		b.buf[tos] = headArrayIndexedBase + byte(headIdx)
	} else {
		b.buf[tos] = headArrayBase + byte(headIdx)
	}
	putFixedLE(b.buf[tos+1:tos+1+w], uint64(totalLen), w)
	if w < 8 && needTable {
		putFixedLE(b.buf[tos+1+w:tos+1+2*w], uint64(n), w)
	}
}

func totalPrefixFor(w int, needTable, moved bool) int {
	if moved {
		p := 1 + w
		if needTable {
			p += w
		}
		return p
	}
	return containerHeaderReserve + 1
}

// arrayWidthAndLength picks the narrowest offset width w for which the
// finished container (byte-length field value totalLen) fits in w
// bytes, and reports whether the w=1 prefix-compaction move applies.
func arrayWidthAndLength(payloadLen, n int, needTable bool) (w int, totalLen int, moved bool) {
	tableBytes1 := 0
	if needTable {
		tableBytes1 = n
	}
	prefix1 := 1 + 1
	if needTable {
		prefix1++
	}
	l1 := prefix1 + payloadLen + tableBytes1
	if uint64(l1) <= maxUnsignedForWidth(1) {
		return 1, l1, true
	}

	for _, cand := range []int{2, 4, 8} {
		tableBytes := 0
		if needTable {
			tableBytes = n * cand
		}
		extra := 0
		if needTable && cand == 8 {
			extra = 8
		}
		l := containerHeaderReserve + 1 + payloadLen + tableBytes + extra
		if cand == 8 || uint64(l) <= maxUnsignedForWidth(cand) {
			return cand, l, false
		}
	}
	return 8, containerHeaderReserve + 1 + payloadLen, false
}

// popFrame pops the top stack frame, returning its index slice (cleared,
// capacity retained) to the per-depth reuse pool.
func (b *Builder) popFrame(depth int) {
	frame := &b.stack[depth]
	b.returnIndex(depth, frame.index[:0])
	b.stack = b.stack[:depth]
}
