package vpack

// objectExtraFieldsLen is the width of the nrSlots (4 bytes) and seed (1
// byte) fields that always follow the length/count fields of an indexed
// object header, at every offset width. Placing them at a fixed spot
// regardless of width is a deliberate simplification over the ambiguous
// width-dependent placement in the format this was distilled from: it
// keeps the header layout uniform and trivially derivable by a reader,
// at the cost of a few bytes for narrow objects.
const objectExtraFieldsLen = 4 + 1

func (b *Builder) closeObjectFrame() error {
	depth := len(b.stack) - 1
	frame := &b.stack[depth]
	tos := frame.tos
	index := frame.index

	if len(index) == 0 {
		b.closeEmptyContainer(tos, false)
		b.popFrame(depth)
		return nil
	}

	tryCompact := frame.compact || b.opts.BuildUnindexedObjects || len(index) == 1
	if tryCompact {
		ok, err := b.tryCloseCompact(tos, index, false)
		if err != nil {
			return err
		}
		if ok {
			b.popFrame(depth)
			return nil
		}
		b.buf[tos] = headObjectIndexedBase
	}

	if err := b.closeIndexedObject(tos, index); err != nil {
		return err
	}
	b.popFrame(depth)
	return nil
}

// closeIndexedObject builds the cuckoo hash table over the object's keys
// and emits the indexed encoding at the narrowest offset width that fits.
func (b *Builder) closeIndexedObject(tos int, index []int) error {
	ht, nrSlots, seed, err := b.computeCuckooHash(tos, index)
	if err != nil {
		return err
	}

	n := len(index)
	payloadLen := len(b.buf) - (tos + containerHeaderReserve + 1)

	for _, w := range []int{1, 2, 4, 8} {
		prefixLen := 1 + w + w + objectExtraFieldsLen
		tableBytes := nrSlots * w
		totalLen := prefixLen + payloadLen + tableBytes
		if w == 8 || uint64(totalLen) <= maxUnsignedForWidth(w) {
			b.writeIndexedObject(tos, w, totalLen, n, nrSlots, seed, ht, payloadLen)
			return nil
		}
	}
	panic("unreachable: width 8 always fits")
}

func (b *Builder) writeIndexedObject(tos, w, totalLen, n, nrSlots int, seed byte, ht []int, payloadLen int) {
	prefixLen := 1 + w + w + objectExtraFieldsLen
	oldPrefixLen := containerHeaderReserve + 1

	if prefixLen != oldPrefixLen {
		b.resizePrefix(tos, oldPrefixLen, prefixLen, payloadLen)
		delta := oldPrefixLen - prefixLen
		for i := range ht {
			if ht[i] != 0 {
				ht[i] -= delta
			}
		}
	}

	payloadEnd := tos + prefixLen + payloadLen
	b.buf = b.buf[:payloadEnd]
	for _, off := range ht {
		b.appendFixedLEBytes(uint64(off), w)
	}

	b.buf[tos] = headObjectIndexedBase + byte(headOffsetWidthIndex(w))
	putFixedLE(b.buf[tos+1:tos+1+w], uint64(totalLen), w)
	putFixedLE(b.buf[tos+1+w:tos+1+2*w], uint64(n), w)
	putFixedLE(b.buf[tos+1+2*w:tos+1+2*w+4], uint64(nrSlots), 4)
	b.buf[tos+1+2*w+4] = seed
}

// resizePrefix relocates the payload that follows a container's header
// when the finalized header turns out to be smaller or larger than the
// 9 bytes reserved at open time, adjusting buffer length accordingly.
// copy() (used by memmoveWithin) is overlap-safe in both directions.
func (b *Builder) resizePrefix(tos, oldPrefixLen, newPrefixLen, payloadLen int) {
	oldPayloadStart := tos + oldPrefixLen
	newPayloadStart := tos + newPrefixLen
	switch {
	case newPrefixLen < oldPrefixLen:
		b.memmoveWithin(newPayloadStart, oldPayloadStart, payloadLen)
	case newPrefixLen > oldPrefixLen:
		b.grow(newPrefixLen - oldPrefixLen)
		b.memmoveWithin(newPayloadStart, oldPayloadStart, payloadLen)
	}
}

// HasKey reports whether the currently open object has the given key.
// It only consults keys already written in the current frame; it is an
// error to call it when the top container is not an open object.
func (b *Builder) HasKey(key string) (bool, error) {
	frame, err := b.topObjectFrame()
	if err != nil {
		return false, err
	}
	_, found, err := b.scanKey(frame, key)
	return found, err
}

// GetKeyOffset returns the buffer offset of the value following key in
// the currently open object, or ok=false if absent.
func (b *Builder) GetKeyOffset(key string) (off int, ok bool, err error) {
	frame, err := b.topObjectFrame()
	if err != nil {
		return 0, false, err
	}
	return b.scanKey(frame, key)
}

func (b *Builder) topObjectFrame() (*stackFrame, error) {
	if len(b.stack) == 0 {
		return nil, builderErrf(ErrBuilderNeedOpenObject, "no open container")
	}
	top := &b.stack[len(b.stack)-1]
	if top.kind != frameObject {
		return nil, builderErrf(ErrBuilderNeedOpenObject, "top container is not an object")
	}
	return top, nil
}

func (b *Builder) scanKey(frame *stackFrame, key string) (off int, ok bool, err error) {
	for _, rel := range frame.index {
		keyOff := frame.tos + rel
		name, encLen, ferr := findAttrName(b.buf, keyOff)
		if ferr != nil {
			return 0, false, ferr
		}
		if string(name) == key {
			return keyOff + encLen, true, nil
		}
	}
	return 0, false, nil
}
