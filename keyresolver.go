package vpack

// findAttrName resolves the attribute name of a key whose encoded value
// starts at buf[pos]. It returns the name bytes, the total byte length
// of the encoded key (so the caller can skip past it to the value that
// follows), and an error if the key cannot be resolved.
//
// Most keys are plain strings (short or long form). A key may also be an
// attribute-translation indirection: an integer value standing in for a
// well-known attribute name, resolved through the process-wide
// AttributeTranslator. Resolution is transparent and takes one lookup:
// the translator returns the name as a plain string, which is returned
// as is and never re-interpreted as another indirection.
func findAttrName(buf []byte, pos int) (name []byte, encodedLen int, err error) {
	for {
		if pos >= len(buf) {
			return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "key offset %d out of range", pos)
		}
		head := buf[pos]
		switch {
		case head >= headStringShortBase && head <= 0xbe:
			n := int(head - headStringShortBase)
			start := pos + 1
			if start+n > len(buf) {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "truncated short string key")
			}
			return buf[start : start+n], 1 + n, nil
		case head == headStringLong:
			if pos+9 > len(buf) {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "truncated long string key header")
			}
			n := int(getFixedLE(buf[pos+1:pos+9], 8))
			start := pos + 9
			if start+n > len(buf) {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "truncated long string key")
			}
			return buf[start : start+n], 9 + n, nil
		default:
			id, idLen, ok := decodeAttrTranslationID(buf, pos)
			if !ok {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "key at offset %d is not a string or a translatable id (head 0x%02x)", pos, head)
			}
			if attributeTranslator == nil {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "no attribute translator installed to resolve id %d", id)
			}
			resolved, ok := attributeTranslator.TranslateIDToString(id)
			if !ok {
				return nil, 0, builderErrf(ErrBuilderUnexpectedValue, "attribute translator has no entry for id %d", id)
			}
			_ = idLen
			// The translated name is a plain string, returned directly;
			// encodedLen still refers to the original indirection's
			// footprint in the buffer, not the resolved string's.
			return []byte(resolved), idLen, nil
		}
	}
}

// decodeAttrTranslationID recognizes the narrow set of integer
// encodings that may stand in for an attribute name: SmallInt and UInt.
func decodeAttrTranslationID(buf []byte, pos int) (id uint64, encodedLen int, ok bool) {
	head := buf[pos]
	switch {
	case head >= headSmallIntPosBase && head < headSmallIntPosBase+10:
		return uint64(head - headSmallIntPosBase), 1, true
	case head >= headUIntBase && head < headUIntBase+8:
		w := int(head-headUIntBase) + 1
		if pos+1+w > len(buf) {
			return 0, 0, false
		}
		return getFixedLE(buf[pos+1:pos+1+w], w), 1 + w, true
	default:
		return 0, 0, false
	}
}
