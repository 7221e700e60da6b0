package vpack

import "github.com/vparc/vpack/slice"

// frameKind distinguishes the two container kinds a stack frame can hold.
type frameKind int

const (
	frameArray frameKind = iota
	frameObject
)

// stackFrame is the per-depth bookkeeping record for one open container:
// where its head byte lives (tos), the tos-relative offsets of its
// children (index — for objects, one entry per key), and, for objects,
// whether a key has been written without its matching value yet.
type stackFrame struct {
	kind       frameKind
	compact    bool // unindexed encoding requested at open time
	tos        int
	index      []int
	keyWritten bool
}

// Builder incrementally constructs a single VPack-encoded value into an
// owned, growable byte buffer. It is not safe for concurrent use; all
// operations are synchronous and there is no partial rollback on error —
// a Builder that returns an error should be discarded or Reset.
type Builder struct {
	buf      []byte
	stack    []stackFrame
	pool     [][]int // per-depth reuse of index slices across close/reopen
	opts     Options
	finished bool
}

// New creates a Builder with the given Options.
func New(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Reset clears the builder for reuse, retaining its buffer and per-depth
// index slice capacity to avoid reallocation.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
	b.stack = b.stack[:0]
	b.finished = false
}

// Size returns the number of bytes written so far.
func (b *Builder) Size() int { return len(b.buf) }

// Bytes returns the raw encoded buffer. It is only a complete VPack value
// once IsClosed reports true.
func (b *Builder) Bytes() []byte { return b.buf }

// IsClosed reports whether every opened container has been closed.
func (b *Builder) IsClosed() bool { return len(b.stack) == 0 }

// IsEmpty reports whether nothing has been written yet.
func (b *Builder) IsEmpty() bool { return len(b.buf) == 0 }

// Slice returns the completed top-level value as a read-only Slice. It
// fails with ErrBuilderNeedOpenCompound if any container is still open.
func (b *Builder) Slice() (slice.Slice, error) {
	if !b.IsClosed() {
		return slice.Slice{}, builderErrf(ErrBuilderNeedOpenCompound, "builder is not closed")
	}
	return slice.New(b.buf), nil
}

func (b *Builder) borrowIndex(depth int) []int {
	if depth < len(b.pool) && b.pool[depth] != nil {
		idx := b.pool[depth]
		b.pool[depth] = nil
		return idx[:0]
	}
	return nil
}

func (b *Builder) returnIndex(depth int, idx []int) {
	for len(b.pool) <= depth {
		b.pool = append(b.pool, nil)
	}
	b.pool[depth] = idx
}

// beforeAddChild validates the state-machine precondition for appending
// a child (isKey only applies to object containers): the top container
// must be in the right half-state, or there must be no open container
// and no top-level value yet.
func (b *Builder) beforeAddChild(isKey bool) error {
	if len(b.stack) == 0 {
		if isKey {
			return builderErrf(ErrBuilderNeedOpenObject, "Key called with no open object")
		}
		if b.finished {
			return builderErrf(ErrBuilderUnexpectedValue, "document already has a complete top-level value")
		}
		return nil
	}
	top := &b.stack[len(b.stack)-1]
	if top.kind == frameObject {
		if isKey {
			if top.keyWritten {
				return builderErrf(ErrBuilderKeyAlreadyWritten, "a key was already written; add its value before the next key")
			}
		} else if !top.keyWritten {
			return builderErrf(ErrBuilderUnexpectedValue, "cannot add a value to an object without a preceding key")
		}
	} else if isKey {
		return builderErrf(ErrBuilderNeedOpenObject, "Key called while the top container is an array")
	}
	return nil
}

// addChild validates preconditions, runs write to append the child's
// bytes, then records its offset into the parent frame (or marks the
// document finished if there is no parent).
func (b *Builder) addChild(isKey bool, write func() (int, error)) error {
	if err := b.beforeAddChild(isKey); err != nil {
		return err
	}
	parentDepth := len(b.stack) - 1

	off, err := write()
	if err != nil {
		return err
	}

	if parentDepth < 0 {
		b.finished = true
		return nil
	}
	parent := &b.stack[parentDepth]
	if parent.kind == frameArray {
		parent.index = append(parent.index, off-parent.tos)
	} else if isKey {
		parent.index = append(parent.index, off-parent.tos)
		parent.keyWritten = true
	} else {
		parent.keyWritten = false
	}
	return nil
}

// Add appends v as the next child of the currently open array, or as an
// object's value following a preceding Key call, or as the single
// top-level value if no container is open. Opening an Array or Object
// Value pushes a new stack frame that must later be closed with Close.
func (b *Builder) Add(v Value) error {
	switch v.Kind {
	case KindArray:
		unindexed := v.Unindexed
		return b.addChild(false, func() (int, error) { return b.pushContainer(frameArray, unindexed) })
	case KindObject:
		unindexed := v.Unindexed
		return b.addChild(false, func() (int, error) { return b.pushContainer(frameObject, unindexed) })
	default:
		return b.addChild(false, func() (int, error) { return b.encodeScalar(v) })
	}
}

// Key writes name as the next key of the currently open object.
func (b *Builder) Key(name string) error {
	return b.addChild(true, func() (int, error) { return b.addString(name), nil })
}

// OpenArray is shorthand for Add(Array(unindexed)).
func (b *Builder) OpenArray(unindexed bool) error {
	return b.Add(Array(unindexed))
}

// OpenObject is shorthand for Add(Object(unindexed)).
func (b *Builder) OpenObject(unindexed bool) error {
	return b.Add(Object(unindexed))
}

func (b *Builder) pushContainer(kind frameKind, unindexed bool) (int, error) {
	var head byte
	switch kind {
	case frameArray:
		if unindexed {
			head = headCompactArray
		} else {
			head = headArrayIndexedBase
		}
	case frameObject:
		if unindexed {
			head = headCompactObject
		} else {
			head = headObjectIndexedBase
		}
	}
	tos := b.reserveContainerHeader(head)
	depth := len(b.stack)
	idx := b.borrowIndex(depth)
	b.stack = append(b.stack, stackFrame{kind: kind, compact: unindexed, tos: tos, index: idx})
	return tos, nil
}

// Close finalizes the top-of-stack container.
func (b *Builder) Close() error {
	if len(b.stack) == 0 {
		return builderErrf(ErrBuilderNeedOpenCompound, "no open container to close")
	}
	switch b.stack[len(b.stack)-1].kind {
	case frameArray:
		return b.closeArrayFrame()
	default:
		return b.closeObjectFrame()
	}
}

// RemoveLast undoes the most recent Add/Key/Close-pending child of the
// currently open container, truncating the buffer back to that child's
// start offset.
func (b *Builder) RemoveLast() error {
	if len(b.stack) == 0 {
		return builderErrf(ErrBuilderNeedOpenCompound, "no open container")
	}
	top := &b.stack[len(b.stack)-1]
	if len(top.index) == 0 {
		return builderErrf(ErrBuilderNeedSubvalue, "no child to remove")
	}
	last := top.index[len(top.index)-1]
	top.index = top.index[:len(top.index)-1]
	b.buf = b.buf[:top.tos+last]
	if top.kind == frameObject {
		top.keyWritten = false
	}
	return nil
}

// AddString is a convenience for Add(String(s)), for array elements,
// object values and standalone strings; object keys are written with Key.
func (b *Builder) AddString(s string) error { return b.Add(String(s)) }

// AddExternal is a convenience for Add(External(ptrBytes)).
func (b *Builder) AddExternal(ptrBytes []byte) error { return b.Add(External(ptrBytes)) }

// AddUTCDate is a convenience for Add(UTCDate(millis)).
func (b *Builder) AddUTCDate(millis int64) error { return b.Add(UTCDate(millis)) }

// AddBinary is a convenience for Add(Binary(data)).
func (b *Builder) AddBinary(data []byte) error { return b.Add(Binary(data)) }
